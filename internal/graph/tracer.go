package graph

import (
	"container/heap"

	"github.com/rcliao/taskwise/internal/domain"
)

// Trace is the full dependency picture for one root task.
type Trace struct {
	Task string `json:"task"`

	// Dependencies is the transitive closure of hard dependencies.
	Dependencies []string `json:"dependencies"`
	// Dependents is the transitive closure of hard dependents.
	Dependents []string `json:"dependents"`

	// ExecutionOrder is a topological order over the root and its hard
	// dependency closure, tie-broken by declaration order.
	ExecutionOrder []string `json:"executionOrder"`

	// Layers partitions ExecutionOrder into maximal parallel groups:
	// every task's hard dependencies sit in strictly earlier layers.
	Layers [][]string `json:"layers"`
}

// TraceChain computes the trace for root. It fails with ErrTaskNotFound
// when root is not in the graph and with a CycleError naming the
// implicated tasks when the closure admits no topological order.
func (g *Graph) TraceChain(root string) (*Trace, error) {
	if _, ok := g.byName[root]; !ok {
		return nil, domain.TaskNotFound(root)
	}

	ancestors := g.closure(root, g.hardDeps)
	descendants := g.closure(root, g.hardDependents)

	// The execution set is the root plus everything it transitively
	// needs.
	inSet := make(map[string]bool, len(ancestors)+1)
	inSet[root] = true
	for _, name := range ancestors {
		inSet[name] = true
	}

	order, layers, leftover := g.schedule(inSet)
	if len(leftover) > 0 {
		return nil, domain.NewCycleError(leftover)
	}

	return &Trace{
		Task:           root,
		Dependencies:   ancestors,
		Dependents:     descendants,
		ExecutionOrder: order,
		Layers:         layers,
	}, nil
}

// closure walks the given adjacency transitively from start and returns
// the reached tasks in declaration order, excluding start itself.
func (g *Graph) closure(start string, adj map[string][]string) []string {
	seen := map[string]bool{start: true}
	stack := append([]string(nil), adj[start]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, adj[n]...)
	}

	var out []string
	for _, name := range g.names {
		if name != start && seen[name] {
			out = append(out, name)
		}
	}
	return out
}

// schedule runs a layered Kahn over the subgraph induced by inSet. The
// ready set is a min-heap keyed on declaration order, which makes both
// the flat order and the layer contents deterministic. Tasks that never
// become ready are returned as leftover (cycle members or trapped
// behind one), in declaration order.
func (g *Graph) schedule(inSet map[string]bool) (order []string, layers [][]string, leftover []string) {
	indeg := make(map[string]int, len(inSet))
	for name := range inSet {
		for _, dep := range g.hardDeps[name] {
			if inSet[dep] {
				indeg[name]++
			}
		}
	}

	ready := &declHeap{g: g}
	heap.Init(ready)
	for _, name := range g.names {
		if inSet[name] && indeg[name] == 0 {
			heap.Push(ready, name)
		}
	}

	placed := make(map[string]bool, len(inSet))
	for ready.Len() > 0 {
		// Everything currently ready forms one maximal parallel layer.
		layer := make([]string, 0, ready.Len())
		for ready.Len() > 0 {
			layer = append(layer, heap.Pop(ready).(string))
		}

		for _, n := range layer {
			placed[n] = true
			order = append(order, n)
		}
		for _, n := range layer {
			for _, m := range g.hardDependents[n] {
				if !inSet[m] {
					continue
				}
				indeg[m]--
				if indeg[m] == 0 {
					heap.Push(ready, m)
				}
			}
		}
		layers = append(layers, layer)
	}

	for _, name := range g.names {
		if inSet[name] && !placed[name] {
			leftover = append(leftover, name)
		}
	}
	return order, layers, leftover
}

// declHeap is a min-heap of full names keyed on declaration order.
type declHeap struct {
	g     *Graph
	items []string
}

func (h *declHeap) Len() int { return len(h.items) }

func (h *declHeap) Less(i, j int) bool {
	a, b := h.g.byName[h.items[i]], h.g.byName[h.items[j]]
	return a.DeclOrder < b.DeclOrder
}

func (h *declHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *declHeap) Push(x any) { h.items = append(h.items, x.(string)) }

func (h *declHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
