package service

import (
	"fmt"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/graph"
)

// PruneCandidate is one task flagged for pruning, with the reason.
// Candidates are advisory; the detector never removes anything.
type PruneCandidate struct {
	Task   string `json:"task"`
	Reason string `json:"reason"`
}

// RedundancyPolicy is one inspectable pruning heuristic. Policies are a
// plug point: these are string-matching heuristics with no precision
// guarantee, so callers can swap or drop them.
type RedundancyPolicy interface {
	Name() string
	Evaluate(tasks []*domain.TaskDefinition, g *graph.Graph) []PruneCandidate
}

// RedundancyDetector runs a set of policies and merges their findings,
// keeping the first reason per task.
type RedundancyDetector struct {
	policies []RedundancyPolicy
}

func NewRedundancyDetector(policies ...RedundancyPolicy) *RedundancyDetector {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	return &RedundancyDetector{policies: policies}
}

func DefaultPolicies() []RedundancyPolicy {
	return []RedundancyPolicy{
		isolatedPolicy{},
		duplicateRunPolicy{},
		supersededPolicy{},
	}
}

func (d *RedundancyDetector) FindCandidates(tasks []*domain.TaskDefinition, g *graph.Graph) []PruneCandidate {
	var out []PruneCandidate
	flagged := make(map[string]bool)
	for _, policy := range d.policies {
		for _, c := range policy.Evaluate(tasks, g) {
			if flagged[c.Task] {
				continue
			}
			flagged[c.Task] = true
			out = append(out, c)
		}
	}
	return out
}

// isolatedPolicy flags tasks with no edges in either direction and no
// source/output tracking: nothing depends on them and nothing shows
// they are wired into an incremental flow.
type isolatedPolicy struct{}

func (isolatedPolicy) Name() string { return "isolated" }

func (isolatedPolicy) Evaluate(tasks []*domain.TaskDefinition, g *graph.Graph) []PruneCandidate {
	var out []PruneCandidate
	for _, name := range g.Names() {
		t, _ := g.Task(name)
		if !g.IsIsolated(name) {
			continue
		}
		if len(t.Sources) > 0 || len(t.Outputs) > 0 {
			continue
		}
		out = append(out, PruneCandidate{
			Task:   name,
			Reason: "no dependencies, no dependents, and no source/output tracking; likely dead",
		})
	}
	return out
}

// duplicateRunPolicy flags tasks whose effective command is textually
// identical to an earlier task in the same domain.
type duplicateRunPolicy struct{}

func (duplicateRunPolicy) Name() string { return "duplicate-run" }

func (duplicateRunPolicy) Evaluate(tasks []*domain.TaskDefinition, g *graph.Graph) []PruneCandidate {
	var out []PruneCandidate
	firstByKey := make(map[string]string)
	for _, name := range g.Names() {
		t, _ := g.Task(name)
		cmd := t.EffectiveCommand()
		if cmd == "" {
			continue
		}
		key := string(t.Domain) + "\x00" + cmd
		if earlier, ok := firstByKey[key]; ok {
			out = append(out, PruneCandidate{
				Task:   name,
				Reason: fmt.Sprintf("runs the same command as %s in the same domain", earlier),
			})
			continue
		}
		firstByKey[key] = name
	}
	return out
}

// supersededPolicy flags an older task whose leaf name and effective
// command both match a newer task: the newer declaration has taken over.
type supersededPolicy struct{}

func (supersededPolicy) Name() string { return "superseded" }

func (supersededPolicy) Evaluate(tasks []*domain.TaskDefinition, g *graph.Graph) []PruneCandidate {
	var out []PruneCandidate
	names := g.Names()
	for i, name := range names {
		older, _ := g.Task(name)
		for _, newerName := range names[i+1:] {
			newer, _ := g.Task(newerName)
			if older.LeafName() != newer.LeafName() {
				continue
			}
			if older.EffectiveCommand() == "" || older.EffectiveCommand() != newer.EffectiveCommand() {
				continue
			}
			out = append(out, PruneCandidate{
				Task:   name,
				Reason: fmt.Sprintf("superseded by %s, which runs an identical command", newerName),
			})
			break
		}
	}
	return out
}
