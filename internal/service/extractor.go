package service

import (
	"fmt"
	"strings"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/storage"
)

// ConfigSource is the slice of storage the extractor needs.
type ConfigSource interface {
	LoadConfig() (*domain.MiseConfig, error)
	ListTaskFiles() ([]storage.TaskFile, error)
	ReadTaskFile(storage.TaskFile) (string, error)
}

// ExtractorOptions hold the classification thresholds. They are options
// rather than constants so callers can tune what counts as simple.
type ExtractorOptions struct {
	// SimpleMaxCommands is the largest run sequence still simple.
	SimpleMaxCommands int
	// ModerateMaxCommands is the largest run sequence still moderate.
	ModerateMaxCommands int
	// LongCommandChars promotes a single long command out of simple.
	LongCommandChars int
}

func DefaultExtractorOptions() ExtractorOptions {
	return ExtractorOptions{
		SimpleMaxCommands:   1,
		ModerateMaxCommands: 5,
		LongCommandChars:    120,
	}
}

// SkippedTask records an inline entry the extractor refused, with why.
type SkippedTask struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ExtractionResult is the task set plus the malformed entries that were
// skipped instead of failing the whole extraction.
type ExtractionResult struct {
	Tasks   []*domain.TaskDefinition `json:"tasks"`
	Skipped []SkippedTask            `json:"skipped,omitempty"`
}

// Extractor turns the document's task table and the task-file tree into
// TaskDefinitions. Every call reads a fresh snapshot.
type Extractor struct {
	source ConfigSource
	opts   ExtractorOptions
}

func NewExtractor(source ConfigSource, opts ExtractorOptions) *Extractor {
	return &Extractor{source: source, opts: opts}
}

func (e *Extractor) Extract() (*ExtractionResult, error) {
	cfg, err := e.source.LoadConfig()
	if err != nil {
		return nil, err
	}

	result := &ExtractionResult{}
	seen := make(map[string]bool)
	order := 0

	for _, entry := range cfg.Tasks {
		task, reason := e.inlineTask(entry, order)
		if task == nil {
			result.Skipped = append(result.Skipped, SkippedTask{Name: entry.Name, Reason: reason})
			continue
		}
		if seen[task.FullName()] {
			result.Skipped = append(result.Skipped, SkippedTask{Name: entry.Name, Reason: "duplicate full name"})
			continue
		}
		seen[task.FullName()] = true
		result.Tasks = append(result.Tasks, task)
		order++
	}

	files, err := e.source.ListTaskFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		task, err := e.fileTask(f, order)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedTask{Name: f.TaskName(), Reason: err.Error()})
			continue
		}
		if seen[task.FullName()] {
			result.Skipped = append(result.Skipped, SkippedTask{Name: f.TaskName(), Reason: "shadowed by inline task"})
			continue
		}
		seen[task.FullName()] = true
		result.Tasks = append(result.Tasks, task)
		order++
	}

	return result, nil
}

func (e *Extractor) inlineTask(entry domain.TaskEntry, order int) (*domain.TaskDefinition, string) {
	run := toStrings(entry.Fields["run"])
	if len(run) == 0 {
		return nil, "missing run command"
	}

	task := &domain.TaskDefinition{
		Name:        entry.Name,
		Domain:      domainForName(entry.Name),
		Description: toString(entry.Fields["description"]),
		Run:         run,
		Depends:     toStrings(entry.Fields["depends"]),
		DependsPost: toStrings(entry.Fields["depends_post"]),
		WaitFor:     toStrings(entry.Fields["wait_for"]),
		Sources:     toStrings(entry.Fields["sources"]),
		Outputs:     toStrings(entry.Fields["outputs"]),
		Env:         toStringMap(entry.Fields["env"]),
		Dir:         toString(entry.Fields["dir"]),
		Alias:       toString(entry.Fields["alias"]),
		Hidden:      toBool(entry.Fields["hide"]),
		Confirm:     toString(entry.Fields["confirm"]),
		DeclOrder:   order,
	}
	task.Complexity = e.Classify(run, false)
	if task.Description == "" {
		task.Description = summarize(run)
		task.AutoDescription = true
	}
	return task, ""
}

func (e *Extractor) fileTask(f storage.TaskFile, order int) (*domain.TaskDefinition, error) {
	body, err := e.source.ReadTaskFile(f)
	if err != nil {
		return nil, err
	}

	commands := scriptCommands(body)
	task := &domain.TaskDefinition{
		Name:        f.TaskName(),
		Domain:      domainForName(f.TaskName()),
		Description: scriptDescription(body),
		Run:         commands,
		FilePath:    f.Path,
		DeclOrder:   order,
	}
	task.Complexity = e.Classify(commands, true)
	if task.Description == "" {
		task.Description = summarize(commands)
		task.AutoDescription = true
	}
	return task, nil
}

// Classify derives complexity from the command sequence. File-backed
// tasks are never simple.
func (e *Extractor) Classify(commands []string, fileBacked bool) domain.TaskComplexity {
	n := len(commands)
	switch {
	case n > e.opts.ModerateMaxCommands:
		return domain.ComplexityComplex
	case fileBacked || n > e.opts.SimpleMaxCommands:
		return domain.ComplexityModerate
	case n == 1 && len(commands[0]) > e.opts.LongCommandChars:
		return domain.ComplexityModerate
	default:
		return domain.ComplexitySimple
	}
}

// domainForName maps the leading colon segment to a domain, falling
// back to the default when absent or unrecognized.
func domainForName(name string) domain.TaskDomain {
	head, _, found := strings.Cut(name, ":")
	if !found {
		return domain.DefaultDomain
	}
	d, err := domain.ParseDomain(head)
	if err != nil {
		return domain.DefaultDomain
	}
	return d
}

func summarize(commands []string) string {
	if len(commands) == 0 {
		return ""
	}
	first := commands[0]
	if len(first) > 60 {
		first = first[:57] + "..."
	}
	if len(commands) > 1 {
		return fmt.Sprintf("Runs %s (+%d more)", first, len(commands)-1)
	}
	return "Runs " + first
}

// scriptCommands extracts the executable lines of a script body,
// ignoring the shebang, comments, blanks, and shell option lines.
func scriptCommands(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "set ") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// scriptDescription uses the first leading comment, the conventional
// place for a one-line summary. The shebang and shell option lines may
// come before it.
func scriptDescription(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#!") || strings.HasPrefix(trimmed, "set ") {
			continue
		}
		if comment, ok := strings.CutPrefix(trimmed, "#"); ok {
			return strings.TrimSpace(comment)
		}
		break
	}
	return ""
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return val
	default:
		return nil
	}
}

func toStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}

func toBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
