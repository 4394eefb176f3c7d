package graph

import (
	"sort"

	"github.com/rcliao/taskwise/internal/domain"
)

type EdgeKind string

const (
	// EdgeHard is a depends edge: the source must complete successfully
	// before the target runs.
	EdgeHard EdgeKind = "hard"
	// EdgePost is a depends_post edge: the source runs after the target
	// and its failure never blocks the target.
	EdgePost EdgeKind = "post"
	// EdgeWait is a wait_for edge: an ordering hint with no failure
	// propagation.
	EdgeWait EdgeKind = "wait"
)

// DanglingRef is a dependency reference to a task that does not exist.
type DanglingRef struct {
	Task string   `json:"task"`
	Ref  string   `json:"ref"`
	Kind EdgeKind `json:"kind"`
}

// Graph is the directed dependency graph over full task names. It is
// built once per call from an extracted task set and never mutated.
type Graph struct {
	byName map[string]*domain.TaskDefinition
	names  []string // declaration order

	hardDeps       map[string][]string // task -> resolved hard dependencies
	hardDependents map[string][]string // task -> tasks that hard-depend on it
	waitDeps       map[string][]string // task -> resolved wait_for targets
	postDeps       map[string][]string // task -> resolved depends_post targets

	dangling []DanglingRef
}

// Build constructs the graph. Unresolvable references are collected as
// dangling refs rather than dropped; the resolvable subset still
// answers queries.
func Build(tasks []*domain.TaskDefinition) *Graph {
	g := &Graph{
		byName:         make(map[string]*domain.TaskDefinition, len(tasks)),
		hardDeps:       make(map[string][]string),
		hardDependents: make(map[string][]string),
		waitDeps:       make(map[string][]string),
		postDeps:       make(map[string][]string),
	}

	ordered := make([]*domain.TaskDefinition, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DeclOrder < ordered[j].DeclOrder
	})

	for _, t := range ordered {
		name := t.FullName()
		if _, exists := g.byName[name]; exists {
			continue
		}
		g.byName[name] = t
		g.names = append(g.names, name)
	}

	for _, name := range g.names {
		t := g.byName[name]
		for _, ref := range t.Depends {
			if _, ok := g.byName[ref]; !ok {
				g.dangling = append(g.dangling, DanglingRef{Task: name, Ref: ref, Kind: EdgeHard})
				continue
			}
			g.hardDeps[name] = append(g.hardDeps[name], ref)
			g.hardDependents[ref] = append(g.hardDependents[ref], name)
		}
		for _, ref := range t.DependsPost {
			if _, ok := g.byName[ref]; !ok {
				g.dangling = append(g.dangling, DanglingRef{Task: name, Ref: ref, Kind: EdgePost})
				continue
			}
			g.postDeps[name] = append(g.postDeps[name], ref)
		}
		for _, ref := range t.WaitFor {
			if _, ok := g.byName[ref]; !ok {
				g.dangling = append(g.dangling, DanglingRef{Task: name, Ref: ref, Kind: EdgeWait})
				continue
			}
			g.waitDeps[name] = append(g.waitDeps[name], ref)
		}
	}

	return g
}

// Task returns the definition behind a full name.
func (g *Graph) Task(name string) (*domain.TaskDefinition, bool) {
	t, ok := g.byName[name]
	return t, ok
}

// Names returns all full names in declaration order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

func (g *Graph) Len() int { return len(g.names) }

// HardDeps returns the resolved hard dependencies of a task.
func (g *Graph) HardDeps(name string) []string { return g.hardDeps[name] }

// HardDependents returns the tasks that hard-depend on name.
func (g *Graph) HardDependents(name string) []string { return g.hardDependents[name] }

// Dangling returns every unresolvable reference found at build time.
func (g *Graph) Dangling() []DanglingRef { return g.dangling }

// IsIsolated reports whether a task has no resolved edges of any kind,
// in either direction.
func (g *Graph) IsIsolated(name string) bool {
	if len(g.hardDeps[name]) > 0 || len(g.hardDependents[name]) > 0 {
		return false
	}
	if len(g.postDeps[name]) > 0 || len(g.waitDeps[name]) > 0 {
		return false
	}
	for _, other := range g.names {
		if other == name {
			continue
		}
		for _, ref := range g.postDeps[other] {
			if ref == name {
				return false
			}
		}
		for _, ref := range g.waitDeps[other] {
			if ref == name {
				return false
			}
		}
	}
	return true
}

// Referencers returns every task whose depends, depends_post, or
// wait_for list names the given task, in declaration order. Unlike the
// resolved adjacency this also works for the task being removed.
func (g *Graph) Referencers(name string) []string {
	var out []string
	for _, other := range g.names {
		if other == name {
			continue
		}
		t := g.byName[other]
		if containsRef(t.Depends, name) || containsRef(t.DependsPost, name) || containsRef(t.WaitFor, name) {
			out = append(out, other)
		}
	}
	return out
}

func containsRef(refs []string, name string) bool {
	for _, r := range refs {
		if r == name {
			return true
		}
	}
	return false
}

// HardCycle checks the whole graph for a cycle among hard edges and
// returns an error naming the implicated tasks, or nil when acyclic.
func (g *Graph) HardCycle() *domain.CycleError {
	leftover := kahnLeftover(g.names, g.hardDeps)
	if len(leftover) == 0 {
		return nil
	}
	return domain.NewCycleError(leftover)
}

// WaitCycle reports tasks forming a cycle purely among wait_for edges.
// Such cycles are legal but worth flagging.
func (g *Graph) WaitCycle() []string {
	return kahnLeftover(g.names, g.waitDeps)
}

// kahnLeftover runs Kahn's algorithm over the given dependency map and
// returns the nodes that could not be placed in any topological order,
// i.e. the members of (or tasks trapped behind) a cycle. Input order is
// preserved in the result.
func kahnLeftover(names []string, deps map[string][]string) []string {
	indeg := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		for _, dep := range deps[name] {
			indeg[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(names))
	for _, name := range names {
		if indeg[name] == 0 {
			queue = append(queue, name)
		}
	}

	placed := make(map[string]bool, len(names))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		placed[n] = true
		for _, m := range dependents[n] {
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	var leftover []string
	for _, name := range names {
		if !placed[name] {
			leftover = append(leftover, name)
		}
	}
	return leftover
}
