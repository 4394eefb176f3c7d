package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TaskFilesDir is the conventional file-task tree, relative to the
// project root. Path segments under it encode domain/sub-domain and the
// leaf file name is the task's leaf name.
const TaskFilesDir = ".mise/tasks"

// TaskFile is one script discovered in the task-file tree.
type TaskFile struct {
	Path     string   // absolute path to the script
	Segments []string // relative path split on separators, e.g. [deploy, staging]
}

// TaskName joins the path segments into the colon-separated task name.
func (f TaskFile) TaskName() string {
	return strings.Join(f.Segments, ":")
}

// ListTaskFiles walks the task-file tree in deterministic (lexical walk)
// order. A missing tree is not an error; projects without file tasks are
// common.
func (s *ConfigStore) ListTaskFiles() ([]TaskFile, error) {
	dir := filepath.Join(s.root, TaskFilesDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []TaskFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, TaskFile{
			Path:     path,
			Segments: strings.Split(filepath.ToSlash(rel), "/"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan task files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ReadTaskFile returns the script body for a discovered task file.
func (s *ConfigStore) ReadTaskFile(f TaskFile) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read task file %s: %w", f.Path, err)
	}
	return string(data), nil
}

// WriteTaskFile creates or replaces a script at the given segments and
// returns its path. A shebang line is added when the body lacks one, and
// the file is made executable.
func (s *ConfigStore) WriteTaskFile(segments []string, body string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("task file needs at least one path segment")
	}
	path := filepath.Join(append([]string{s.root, TaskFilesDir}, segments...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create task directory: %w", err)
	}

	if !strings.HasPrefix(body, "#!") {
		body = "#!/usr/bin/env bash\nset -euo pipefail\n\n" + body
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		return "", fmt.Errorf("failed to write task file: %w", err)
	}
	return path, nil
}

// RemoveTaskFile deletes a script and prunes any directories left empty
// underneath the task tree.
func (s *ConfigStore) RemoveTaskFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove task file: %w", err)
	}

	root := filepath.Join(s.root, TaskFilesDir)
	for dir := filepath.Dir(path); dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}
	return nil
}
