package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	task := &TaskDefinition{Name: "frontend", Domain: DomainBuild}
	assert.Equal(t, "build:frontend", task.FullName())

	// A name that already carries a hierarchy is kept as-is.
	task = &TaskDefinition{Name: "test:unit:fast", Domain: DomainTest}
	assert.Equal(t, "test:unit:fast", task.FullName())
	assert.Equal(t, "fast", task.LeafName())
}

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain("deploy")
	assert.NoError(t, err)
	assert.Equal(t, DomainDeploy, d)

	d, err = ParseDomain("  Test ")
	assert.NoError(t, err)
	assert.Equal(t, DomainTest, d)

	_, err = ParseDomain("frontend")
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestParseComplexity(t *testing.T) {
	c, err := ParseComplexity("moderate")
	assert.NoError(t, err)
	assert.Equal(t, ComplexityModerate, c)

	_, err = ParseComplexity("extreme")
	assert.ErrorIs(t, err, ErrInvalidComplexity)
}

func TestAllDomains(t *testing.T) {
	domains := AllDomains()
	assert.Len(t, domains, 10)
	for _, d := range domains {
		assert.True(t, IsValidDomain(string(d)))
	}
}

func TestIsFileTask(t *testing.T) {
	task := &TaskDefinition{Name: "release", Domain: DomainDeploy}
	assert.False(t, task.IsFileTask())
	task.FilePath = ".mise/tasks/deploy/release"
	assert.True(t, task.IsFileTask())
}

func TestEffectiveCommand(t *testing.T) {
	task := &TaskDefinition{Run: []string{"go vet ./...", "go test ./..."}}
	assert.Equal(t, "go vet ./... && go test ./...", task.EffectiveCommand())
}

func TestMiseConfigTaskTable(t *testing.T) {
	cfg := &MiseConfig{}
	cfg.SetTask(TaskEntry{Name: "build:app", Fields: map[string]any{"run": "make"}})
	cfg.SetTask(TaskEntry{Name: "test:unit", Fields: map[string]any{"run": "go test ./..."}})

	entry, ok := cfg.Task("build:app")
	assert.True(t, ok)
	assert.Equal(t, "make", entry.Fields["run"])

	// Replacing keeps position.
	cfg.SetTask(TaskEntry{Name: "build:app", Fields: map[string]any{"run": "make all"}})
	assert.Equal(t, []string{"build:app", "test:unit"}, cfg.TaskNames())

	assert.True(t, cfg.RemoveTask("build:app"))
	assert.False(t, cfg.RemoveTask("build:app"))
	assert.Equal(t, []string{"test:unit"}, cfg.TaskNames())
}

func TestCycleError(t *testing.T) {
	err := NewCycleError([]string{"build:a", "build:b", "build:a"})
	assert.Contains(t, err.Error(), "build:a -> build:b")

	ce, ok := IsCycle(err)
	assert.True(t, ok)
	assert.Len(t, ce.Members, 3)
}
