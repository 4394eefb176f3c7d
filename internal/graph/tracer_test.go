package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/taskwise/internal/domain"
)

func TestTraceChain_Diamond(t *testing.T) {
	// setup:deps -> {build:app, lint:code} -> test:unit
	g := Build([]*domain.TaskDefinition{
		task("setup:deps", 0),
		task("build:app", 1, "setup:deps"),
		task("lint:code", 2, "setup:deps"),
		task("test:unit", 3, "build:app", "lint:code"),
	})

	trace, err := g.TraceChain("test:unit")
	require.NoError(t, err)

	assert.Equal(t, []string{"setup:deps", "build:app", "lint:code"}, trace.Dependencies)
	assert.Empty(t, trace.Dependents)
	assert.Equal(t, []string{"setup:deps", "build:app", "lint:code", "test:unit"}, trace.ExecutionOrder)
	assert.Equal(t, [][]string{
		{"setup:deps"},
		{"build:app", "lint:code"},
		{"test:unit"},
	}, trace.Layers)
}

func TestTraceChain_LayersRespectDependencies(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("setup:deps", 0),
		task("db:migrate", 1, "setup:deps"),
		task("build:app", 2, "setup:deps"),
		task("test:unit", 3, "build:app"),
		task("test:integration", 4, "build:app", "db:migrate"),
		task("deploy:prod", 5, "test:unit", "test:integration"),
	})

	trace, err := g.TraceChain("deploy:prod")
	require.NoError(t, err)

	placed := map[string]int{}
	for i, layer := range trace.Layers {
		for _, name := range layer {
			placed[name] = i
		}
	}
	for name, layer := range placed {
		for _, dep := range g.HardDeps(name) {
			assert.Less(t, placed[dep], layer, "dep %s of %s must be in an earlier layer", dep, name)
		}
	}
}

func TestTraceChain_Dependents(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("build:app", 0),
		task("test:unit", 1, "build:app"),
		task("deploy:prod", 2, "test:unit"),
	})

	trace, err := g.TraceChain("build:app")
	require.NoError(t, err)
	assert.Empty(t, trace.Dependencies)
	assert.Equal(t, []string{"test:unit", "deploy:prod"}, trace.Dependents)
	assert.Equal(t, []string{"build:app"}, trace.ExecutionOrder)
}

func TestTraceChain_DeclarationOrderTieBreak(t *testing.T) {
	// Independent roots land in one layer; order follows declaration,
	// not lexical, order.
	g := Build([]*domain.TaskDefinition{
		task("test:zeta", 0),
		task("build:alpha", 1),
		task("ci:all", 2, "test:zeta", "build:alpha"),
	})

	trace, err := g.TraceChain("ci:all")
	require.NoError(t, err)
	assert.Equal(t, []string{"test:zeta", "build:alpha"}, trace.Layers[0])
}

func TestTraceChain_UnknownRoot(t *testing.T) {
	g := Build([]*domain.TaskDefinition{task("build:app", 0)})

	_, err := g.TraceChain("build:ghost")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTraceChain_CycleFromAnyMember(t *testing.T) {
	g := Build([]*domain.TaskDefinition{
		task("build:a", 0, "build:b"),
		task("build:b", 1, "build:c"),
		task("build:c", 2, "build:a"),
	})

	for _, root := range []string{"build:a", "build:b", "build:c"} {
		_, err := g.TraceChain(root)
		require.Error(t, err)
		ce, ok := domain.IsCycle(err)
		require.True(t, ok, "tracing %s should report a cycle", root)
		assert.ElementsMatch(t, []string{"build:a", "build:b", "build:c"}, ce.Members)
	}
}
