package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func task(name string, order int, deps ...string) *domain.TaskDefinition {
	d, _ := domain.ParseDomain(name[:indexByte(name, ':')])
	return &domain.TaskDefinition{
		Name:      name,
		Domain:    d,
		Run:       []string{"true"},
		Depends:   deps,
		DeclOrder: order,
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return len(s)
}

func TestBuild_ResolvesEdges(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("build:app", 0, "lint:code"),
		task("lint:code", 1),
		task("test:unit", 2, "build:app"),
	})

	assert.Equal(t, []string{"build:app", "lint:code", "test:unit"}, g.Names())
	assert.Equal(t, []string{"lint:code"}, g.HardDeps("build:app"))
	assert.Equal(t, []string{"test:unit"}, g.HardDependents("build:app"))
	assert.Empty(t, g.Dangling())
	assert.Nil(t, g.HardCycle())
}

func TestBuild_DanglingReferencesAreReported(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("build:app", 0, "setup:ghost"),
	})

	require.Len(t, g.Dangling(), 1)
	assert.Equal(t, "build:app", g.Dangling()[0].Task)
	assert.Equal(t, "setup:ghost", g.Dangling()[0].Ref)
	assert.Equal(t, EdgeHard, g.Dangling()[0].Kind)

	// The unresolvable edge is excluded from adjacency.
	assert.Empty(t, g.HardDeps("build:app"))
}

func TestHardCycle(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("build:a", 0, "build:b"),
		task("build:b", 1, "build:c"),
		task("build:c", 2, "build:a"),
		task("test:free", 3),
	})

	cycle := g.HardCycle()
	require.NotNil(t, cycle)
	assert.ElementsMatch(t, []string{"build:a", "build:b", "build:c"}, cycle.Members)
}

func TestWaitCycleIsNotAHardCycle(t *testing.T) {
	a := task("dev:server", 0)
	a.WaitFor = []string{"dev:db"}
	b := task("dev:db", 1)
	b.WaitFor = []string{"dev:server"}

	g := Build([]*domain.TaskDefinition{a, b})
	assert.Nil(t, g.HardCycle())
	assert.ElementsMatch(t, []string{"dev:server", "dev:db"}, g.WaitCycle())
}

func TestIsIsolated(t *testing.T) {
	lone := task("clean:tmp", 0)
	g := Build([]*domain.TaskDefinition{
		lone,
		task("build:app", 1, "lint:code"),
		task("lint:code", 2),
	})

	assert.True(t, g.IsIsolated("clean:tmp"))
	assert.False(t, g.IsIsolated("build:app"))
	assert.False(t, g.IsIsolated("lint:code"))
}

func TestReferencers(t *testing.T) {
	a := task("build:app", 0, "setup:deps")
	b := task("test:unit", 1)
	b.WaitFor = []string{"setup:deps"}
	c := task("setup:deps", 2)

	g := Build([]*domain.TaskDefinition{a, b, c})
	assert.Equal(t, []string{"build:app", "test:unit"}, g.Referencers("setup:deps"))
	assert.Empty(t, g.Referencers("build:app"))
}
