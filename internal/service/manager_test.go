package service

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func TestCreateTask_RoundTrip(t *testing.T) {
	store := newStore(t, "")
	manager := NewTaskManager(store, DefaultExtractorOptions())

	result, err := manager.CreateTask(PlacementRequest{
		Description: "deploy to production",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "deploy:production", result.FullName)
	assert.Equal(t, StorageInline, result.StorageForm)

	// Extracting right after creation yields the requested task.
	extraction, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)

	task := findTask(extraction.Tasks, "deploy:production")
	require.NotNil(t, task)
	assert.Equal(t, domain.DomainDeploy, task.Domain)
	assert.Equal(t, "deploy to production", task.Description)
	assert.Equal(t, domain.ComplexitySimple, task.Complexity)
}

func TestCreateTask_ComplexBecomesFileTask(t *testing.T) {
	store := newStore(t, "")
	manager := NewTaskManager(store, DefaultExtractorOptions())

	result, err := manager.CreateTask(PlacementRequest{
		Description:     "assemble and bundle the release artifacts",
		SuggestedName:   "release",
		ForceComplexity: "complex",
	})
	require.NoError(t, err)
	assert.Equal(t, StorageFile, result.StorageForm)
	require.NotEmpty(t, result.FilePath)

	_, err = os.Stat(result.FilePath)
	assert.NoError(t, err)

	extraction, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)

	task := findTask(extraction.Tasks, "build:release")
	require.NotNil(t, task)
	assert.True(t, task.IsFileTask())
	assert.NotEqual(t, domain.ComplexitySimple, task.Complexity)
}

func TestCreateTask_CollisionIsReported(t *testing.T) {
	store := newStore(t, `
[tasks."deploy:production"]
run = "./deploy.sh"
`)
	manager := NewTaskManager(store, DefaultExtractorOptions())

	result, err := manager.CreateTask(PlacementRequest{Description: "deploy to production"})
	require.NoError(t, err)
	assert.Equal(t, "deploy:production-2", result.FullName)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "already exists")
}

func TestRemoveTask_ReportsAffectedDependents(t *testing.T) {
	store := newStore(t, `
[tasks."setup:deps"]
run = "npm ci"

[tasks."build:app"]
run = "npm run build"
depends = ["setup:deps"]

[tasks."test:unit"]
run = "npm test"
depends = ["setup:deps"]
`)
	manager := NewTaskManager(store, DefaultExtractorOptions())

	result, err := manager.RemoveTask("setup:deps")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "setup:deps", result.Removed)
	assert.Equal(t, []string{"build:app", "test:unit"}, result.AffectedDependents)

	// Dependents are reported, not repaired: their records still name
	// the removed task.
	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"build:app", "test:unit"}, cfg.TaskNames())

	entry, ok := cfg.Task("build:app")
	require.True(t, ok)
	assert.Equal(t, []any{"setup:deps"}, entry.Fields["depends"])
}

func TestRemoveTask_FileTask(t *testing.T) {
	store := newStore(t, "")
	_, err := store.WriteTaskFile([]string{"deploy", "staging"}, "kubectl apply -f k8s/")
	require.NoError(t, err)

	manager := NewTaskManager(store, DefaultExtractorOptions())
	result, err := manager.RemoveTask("deploy:staging")
	require.NoError(t, err)
	assert.True(t, result.Success)

	extraction, err := NewExtractor(store, DefaultExtractorOptions()).Extract()
	require.NoError(t, err)
	assert.Empty(t, extraction.Tasks)
}

func TestRemoveTask_UnknownTask(t *testing.T) {
	store := newStore(t, `
[tasks."build:app"]
run = "make"
`)
	manager := NewTaskManager(store, DefaultExtractorOptions())

	result, err := manager.RemoveTask("build:ghost")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"build:app"}, result.AvailableTasks)
}
