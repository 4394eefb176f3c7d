package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/rcliao/taskwise/internal/domain"
)

// ConfigFileName is the document the persister reads and rewrites.
const ConfigFileName = "mise.toml"

// ConfigStore reads and writes a project's mise.toml and its task-file
// tree. Every load reads a fresh snapshot; save is one atomic full
// rewrite of the recognized top-level sections.
type ConfigStore struct {
	root string
}

func NewConfigStore(root string) (*ConfigStore, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, domain.PathNotFound(root)
	}
	return &ConfigStore{root: root}, nil
}

func (s *ConfigStore) Root() string { return s.root }

func (s *ConfigStore) ConfigPath() string {
	return filepath.Join(s.root, ConfigFileName)
}

// rawConfig mirrors the recognized top-level TOML sections. Task table
// values may be a string, an array, or a table, so they stay untyped
// until normalized.
type rawConfig struct {
	Tools      map[string]any `toml:"tools,omitempty"`
	Env        map[string]any `toml:"env,omitempty"`
	Tasks      map[string]any `toml:"tasks,omitempty"`
	Vars       map[string]any `toml:"vars,omitempty"`
	TaskConfig map[string]any `toml:"task_config,omitempty"`
}

// LoadConfig reads mise.toml. A missing file yields an empty config;
// only an unreadable or unparseable file is an error.
func (s *ConfigStore) LoadConfig() (*domain.MiseConfig, error) {
	data, err := os.ReadFile(s.ConfigPath())
	if os.IsNotExist(err) {
		return &domain.MiseConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	cfg := &domain.MiseConfig{
		Tools:      toStringMap(raw.Tools),
		Env:        toStringMap(raw.Env),
		Vars:       toStringMap(raw.Vars),
		TaskConfig: raw.TaskConfig,
	}

	// TOML unmarshalling loses key order, so task entries are re-sorted
	// by the byte offset of their declaration site. Only a task's own
	// [tasks.<name>] header or its key in a plain [tasks] table counts;
	// the name showing up in an env value, a comment, or another task's
	// run string must not move it.
	src := string(data)
	names := make([]string, 0, len(raw.Tasks))
	for name := range raw.Tasks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := declOffset(src, names[i]), declOffset(src, names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		cfg.Tasks = append(cfg.Tasks, domain.TaskEntry{
			Name:   name,
			Fields: normalizeTaskRecord(raw.Tasks[name]),
		})
	}
	return cfg, nil
}

var (
	tasksTablePattern = regexp.MustCompile(`(?m)^[ \t]*\[tasks\][ \t]*(?:#.*)?$`)
	anyHeaderPattern  = regexp.MustCompile(`(?m)^[ \t]*\[`)
)

// declOffset locates a task's declaration in the raw document: the
// [tasks.<name>] table header, or the name's key line inside a plain
// [tasks] table. len(src) when neither form is found.
func declOffset(src, name string) int {
	key := regexp.QuoteMeta(name)
	keyForms := `(?:"` + key + `"|'` + key + `'|` + key + `)`

	header := regexp.MustCompile(`(?m)^[ \t]*\[tasks\.` + keyForms + `\][ \t]*(?:#.*)?$`)
	if loc := header.FindStringIndex(src); loc != nil {
		return loc[0]
	}

	if sec := tasksTablePattern.FindStringIndex(src); sec != nil {
		body := src[sec[1]:]
		if end := anyHeaderPattern.FindStringIndex(body); end != nil {
			body = body[:end[0]]
		}
		entry := regexp.MustCompile(`(?m)^[ \t]*` + keyForms + `[ \t]*=`)
		if loc := entry.FindStringIndex(body); loc != nil {
			return sec[1] + loc[0]
		}
	}
	return len(src)
}

// normalizeTaskRecord folds the shorthand task forms (bare command
// string, command array) into the table form keyed by "run".
func normalizeTaskRecord(v any) map[string]any {
	switch rec := v.(type) {
	case map[string]any:
		return rec
	case string:
		return map[string]any{"run": rec}
	case []any:
		return map[string]any{"run": rec}
	default:
		return map[string]any{}
	}
}

func toStringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// SaveConfig rewrites mise.toml in full. Sections are emitted in a
// fixed order and task tables in declaration order; the write goes to a
// uniquely named temp file and is renamed into place.
func (s *ConfigStore) SaveConfig(cfg *domain.MiseConfig) error {
	var buf bytes.Buffer

	if err := encodeSection(&buf, "tools", cfg.Tools); err != nil {
		return err
	}
	if err := encodeSection(&buf, "env", cfg.Env); err != nil {
		return err
	}
	if err := encodeSection(&buf, "vars", cfg.Vars); err != nil {
		return err
	}
	if err := encodeSection(&buf, "task_config", cfg.TaskConfig); err != nil {
		return err
	}
	for i, entry := range cfg.Tasks {
		table := map[string]any{"tasks": map[string]any{entry.Name: entry.Fields}}
		out, err := toml.Marshal(table)
		if err != nil {
			return fmt.Errorf("failed to encode task %q: %w", entry.Name, err)
		}
		// The marshaler prefixes each chunk with a bare [tasks] header;
		// repeating it would redefine the table, so keep only the first.
		if i > 0 {
			out = bytes.TrimPrefix(out, []byte("[tasks]\n"))
		}
		buf.Write(out)
		buf.WriteByte('\n')
	}

	return s.writeAtomic(s.ConfigPath(), buf.Bytes())
}

func encodeSection[M ~map[string]V, V any](buf *bytes.Buffer, name string, section M) error {
	if len(section) == 0 {
		return nil
	}
	out, err := toml.Marshal(map[string]M{name: section})
	if err != nil {
		return fmt.Errorf("failed to encode [%s]: %w", name, err)
	}
	buf.Write(out)
	buf.WriteByte('\n')
	return nil
}

func (s *ConfigStore) writeAtomic(path string, data []byte) error {
	tempPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, path)
}
