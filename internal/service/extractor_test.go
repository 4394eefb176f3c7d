package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/storage"
)

func newStore(t *testing.T, config string) *storage.ConfigStore {
	t.Helper()
	dir := t.TempDir()
	if config != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, storage.ConfigFileName), []byte(config), 0644))
	}
	store, err := storage.NewConfigStore(dir)
	require.NoError(t, err)
	return store
}

func findTask(tasks []*domain.TaskDefinition, fullName string) *domain.TaskDefinition {
	for _, t := range tasks {
		if t.FullName() == fullName {
			return t
		}
	}
	return nil
}

func TestExtract_InlineTasks(t *testing.T) {
	store := newStore(t, `
[tasks."build:app"]
run = "go build ./..."
description = "Build the binary"
sources = ["**/*.go"]
outputs = ["bin/app"]

[tasks."test:unit"]
run = ["go vet ./...", "go test ./..."]
depends = ["build:app"]
`)
	extractor := NewExtractor(store, DefaultExtractorOptions())
	result, err := extractor.Extract()
	require.NoError(t, err)
	require.Len(t, result.Tasks, 2)
	assert.Empty(t, result.Skipped)

	build := findTask(result.Tasks, "build:app")
	require.NotNil(t, build)
	assert.Equal(t, domain.DomainBuild, build.Domain)
	assert.Equal(t, "Build the binary", build.Description)
	assert.False(t, build.AutoDescription)
	assert.Equal(t, domain.ComplexitySimple, build.Complexity)
	assert.Equal(t, 0, build.DeclOrder)

	test := findTask(result.Tasks, "test:unit")
	require.NotNil(t, test)
	assert.Equal(t, domain.DomainTest, test.Domain)
	assert.Equal(t, []string{"build:app"}, test.Depends)
	assert.Equal(t, domain.ComplexityModerate, test.Complexity)
	assert.Equal(t, 1, test.DeclOrder)
}

func TestExtract_DomainFallback(t *testing.T) {
	store := newStore(t, `
[tasks.fmt]
run = "gofmt -w ."

[tasks."frontend:bundle"]
run = "npm run build"
`)
	result, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)

	fmtTask := findTask(result.Tasks, "build:fmt")
	require.NotNil(t, fmtTask, "bare name should pick up the default domain prefix")
	assert.Equal(t, domain.DefaultDomain, fmtTask.Domain)

	// Unrecognized prefix keeps the name but falls back to the default
	// domain for classification.
	bundle := findTask(result.Tasks, "frontend:bundle")
	require.NotNil(t, bundle)
	assert.Equal(t, domain.DefaultDomain, bundle.Domain)
}

func TestExtract_MalformedEntrySkippedNotFatal(t *testing.T) {
	store := newStore(t, `
[tasks."build:ok"]
run = "make"

[tasks."build:broken"]
description = "has no run"
`)
	result, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)

	require.Len(t, result.Tasks, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "build:broken", result.Skipped[0].Name)
	assert.Contains(t, result.Skipped[0].Reason, "run")
}

func TestExtract_GeneratedDescription(t *testing.T) {
	store := newStore(t, `
[tasks."clean:all"]
run = "rm -rf dist"
`)
	result, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "Runs rm -rf dist", result.Tasks[0].Description)
	assert.True(t, result.Tasks[0].AutoDescription)
}

func TestExtract_FileTasks(t *testing.T) {
	store := newStore(t, "")
	_, err := store.WriteTaskFile([]string{"deploy", "staging"}, "# Deploy to the staging cluster\nkubectl apply -f k8s/\nkubectl rollout status deploy/app")
	require.NoError(t, err)

	result, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)

	task := result.Tasks[0]
	assert.Equal(t, "deploy:staging", task.FullName())
	assert.Equal(t, domain.DomainDeploy, task.Domain)
	assert.True(t, task.IsFileTask())
	assert.Equal(t, "Deploy to the staging cluster", task.Description)
	assert.False(t, task.AutoDescription)
	assert.NotEqual(t, domain.ComplexitySimple, task.Complexity, "file tasks are never simple")
}

func TestExtract_FileTaskShadowedByInline(t *testing.T) {
	store := newStore(t, `
[tasks."deploy:staging"]
run = "echo staged"
`)
	_, err := store.WriteTaskFile([]string{"deploy", "staging"}, "kubectl apply -f k8s/")
	require.NoError(t, err)

	result, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.False(t, result.Tasks[0].IsFileTask())
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "shadowed")
}

func TestClassify_Thresholds(t *testing.T) {
	e := NewExtractor(nil, ExtractorOptions{SimpleMaxCommands: 1, ModerateMaxCommands: 3, LongCommandChars: 20})

	assert.Equal(t, domain.ComplexitySimple, e.Classify([]string{"make"}, false))
	assert.Equal(t, domain.ComplexityModerate, e.Classify([]string{"a", "b"}, false))
	assert.Equal(t, domain.ComplexityComplex, e.Classify([]string{"a", "b", "c", "d"}, false))
	assert.Equal(t, domain.ComplexityModerate, e.Classify([]string{"a command well past the length limit"}, false))
	assert.Equal(t, domain.ComplexityModerate, e.Classify([]string{"make"}, true))
}
