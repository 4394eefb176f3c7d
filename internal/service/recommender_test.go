package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func TestRecommendTasks_GoProject(t *testing.T) {
	structure := &domain.ProjectStructure{
		RootPath:        "/tmp/app",
		PackageManagers: []string{"go"},
		Languages:       []string{"go"},
		HasCI:           true,
	}

	recs := RecommendTasks(structure, nil)
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Task.FullName())
	}
	assert.Equal(t, []string{"build:app", "test:unit", "lint:vet", "ci:check"}, names)

	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Priority, 1)
		assert.LessOrEqual(t, r.Priority, 10)
		assert.Equal(t, domain.EffortLow, r.EstimatedEffort)
		assert.NotEmpty(t, r.Reasoning)
		if r.Task.FullName() == "ci:check" {
			assert.Equal(t, []string{"test:unit", "lint:vet"}, r.Task.Depends)
			assert.Equal(t, r.Task.Depends, r.DependenciesNeeded)
		}
	}
}

func TestRecommendTasks_SkipsExistingNames(t *testing.T) {
	structure := &domain.ProjectStructure{
		PackageManagers: []string{"go"},
	}
	existing := []*domain.TaskDefinition{
		{Name: "unit", Domain: domain.DomainTest},
	}

	recs := RecommendTasks(structure, existing)
	for _, r := range recs {
		assert.NotEqual(t, "test:unit", r.Task.FullName())
	}
	require.Len(t, recs, 2)
}

func TestRecommendTasks_Deterministic(t *testing.T) {
	structure := &domain.ProjectStructure{
		PackageManagers: []string{"npm", "cargo"},
		HasDatabase:     true,
		HasDocs:         true,
	}

	first := RecommendTasks(structure, nil)
	second := RecommendTasks(structure, nil)
	assert.Equal(t, first, second)
}

func TestRecommendTasks_EmptyStructure(t *testing.T) {
	recs := RecommendTasks(&domain.ProjectStructure{RootPath: "/tmp/empty"}, nil)
	assert.Empty(t, recs)
}
