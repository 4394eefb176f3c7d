package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644)
	require.NoError(t, err)
}

func TestNewConfigStore_MissingPath(t *testing.T) {
	_, err := NewConfigStore(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrPathNotFound)
}

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	cfg, err := store.LoadConfig()
	assert.NoError(t, err)
	assert.Empty(t, cfg.Tasks)
}

func TestLoadConfig_PreservesDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tools]
node = "20"

[tasks."test:unit"]
run = "go test ./..."

[tasks."build:app"]
run = "go build ./..."
depends = ["test:unit"]

[tasks."deploy:prod"]
run = ["./scripts/release.sh", "notify team"]
`)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"test:unit", "build:app", "deploy:prod"}, cfg.TaskNames())
	assert.Equal(t, "20", cfg.Tools["node"])

	entry, ok := cfg.Task("build:app")
	require.True(t, ok)
	assert.Equal(t, "go build ./...", entry.Fields["run"])
}

func TestLoadConfig_OrderIgnoresMentionsOutsideDeclarations(t *testing.T) {
	dir := t.TempDir()
	// "deploy" shows up in an env value, a comment, and another task's
	// run string before its own table; none of those are declarations.
	writeConfig(t, dir, `
[env]
TARGET = "deploy"

# deploy happens last
[tasks.build]
run = "make build && echo ready for deploy"

[tasks.test]
run = "make test"

[tasks.deploy]
run = "make deploy"
depends = ["build", "test"]
`)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "test", "deploy"}, cfg.TaskNames())
}

func TestLoadConfig_OrderMixedHeaderForms(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tasks]
fmt = "gofmt -w ."

[tasks."build:app"]
run = "go build ./..."

[tasks.vet]
run = "go vet ./..."
`)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"fmt", "build:app", "vet"}, cfg.TaskNames())
}

func TestLoadConfig_ShorthandTaskForms(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[tasks]
fmt = "gofmt -w ."
`)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg, err := store.LoadConfig()
	require.NoError(t, err)

	entry, ok := cfg.Task("fmt")
	require.True(t, ok)
	assert.Equal(t, "gofmt -w .", entry.Fields["run"])
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	cfg := &domain.MiseConfig{
		Tools: map[string]string{"go": "1.21"},
		Env:   map[string]string{"CGO_ENABLED": "0"},
	}
	cfg.SetTask(domain.TaskEntry{Name: "build:app", Fields: map[string]any{
		"run":         "go build ./...",
		"description": "Build everything",
	}})
	cfg.SetTask(domain.TaskEntry{Name: "test:unit", Fields: map[string]any{
		"run":     "go test ./...",
		"depends": []string{"build:app"},
	}})
	require.NoError(t, store.SaveConfig(cfg))

	loaded, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"build:app", "test:unit"}, loaded.TaskNames())
	assert.Equal(t, "1.21", loaded.Tools["go"])
	assert.Equal(t, "0", loaded.Env["CGO_ENABLED"])

	entry, ok := loaded.Task("test:unit")
	require.True(t, ok)
	assert.Equal(t, []any{"build:app"}, entry.Fields["depends"])

	// No stray temp files after the atomic rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTaskFiles_WriteListRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	path, err := store.WriteTaskFile([]string{"deploy", "staging"}, "kubectl apply -f k8s/")
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "#!/usr/bin/env bash")
	assert.Contains(t, string(body), "kubectl apply -f k8s/")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111)

	files, err := store.ListTaskFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "deploy:staging", files[0].TaskName())

	require.NoError(t, store.RemoveTaskFile(path))
	files, err = store.ListTaskFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	// The now-empty deploy/ directory is pruned too.
	_, err = os.Stat(filepath.Join(dir, TaskFilesDir, "deploy"))
	assert.True(t, os.IsNotExist(err))
}
