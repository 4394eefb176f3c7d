package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/graph"
)

type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
	SeverityInfo    IssueSeverity = "info"
)

type IssueCategory string

const (
	CategoryCycle    IssueCategory = "cycle"
	CategoryDangling IssueCategory = "dangling-dependency"
	CategoryDomain   IssueCategory = "domain"
	CategoryOrphan   IssueCategory = "orphan"
	CategoryNaming   IssueCategory = "naming"
)

// Issue is one finding from the validation battery.
type Issue struct {
	Category IssueCategory `json:"category"`
	Severity IssueSeverity `json:"severity"`
	Task     string        `json:"task,omitempty"`
	Message  string        `json:"message"`
}

// ValidationReport is the full output of a validation run. Running the
// battery twice over an unchanged project yields identical reports.
type ValidationReport struct {
	TotalTasks  int      `json:"totalTasks"`
	DomainsUsed []string `json:"domainsUsed"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// HasErrors reports whether any issue is severity error.
func (r *ValidationReport) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

var namePattern = regexp.MustCompile(`^[a-z0-9:_-]+$`)

// entryPointLeaves are leaf names that conventionally stand alone and
// are not flagged as orphans.
var entryPointLeaves = map[string]bool{
	"all": true, "default": true, "dev": true, "start": true, "run": true,
	"setup": true, "install": true, "ci": true, "build": true, "test": true,
	"deploy": true, "clean": true,
}

// ValidateArchitecture runs the fixed battery over the full task set:
// hard cycles, dangling dependencies, domain-prefix consistency,
// orphans, and naming conventions. It never mutates anything.
func ValidateArchitecture(tasks []*domain.TaskDefinition, g *graph.Graph) *ValidationReport {
	report := &ValidationReport{TotalTasks: len(tasks)}

	inUse := make(map[domain.TaskDomain]bool)
	for _, t := range tasks {
		inUse[t.Domain] = true
	}
	for _, d := range domain.AllDomains() {
		if inUse[d] {
			report.DomainsUsed = append(report.DomainsUsed, string(d))
		}
	}

	if cycle := g.HardCycle(); cycle != nil {
		report.Issues = append(report.Issues, Issue{
			Category: CategoryCycle,
			Severity: SeverityError,
			Task:     cycle.Members[0],
			Message:  "circular hard dependency: " + strings.Join(cycle.Members, " -> "),
		})
	}
	if smell := g.WaitCycle(); len(smell) > 0 {
		report.Issues = append(report.Issues, Issue{
			Category: CategoryCycle,
			Severity: SeverityWarning,
			Task:     smell[0],
			Message:  "wait_for cycle (legal, but likely unintended): " + strings.Join(smell, " -> "),
		})
	}

	for _, ref := range g.Dangling() {
		report.Issues = append(report.Issues, Issue{
			Category: CategoryDangling,
			Severity: SeverityError,
			Task:     ref.Task,
			Message:  fmt.Sprintf("%s references %q, which does not exist", refField(ref.Kind), ref.Ref),
		})
	}

	for _, name := range g.Names() {
		t, _ := g.Task(name)

		head, _, _ := strings.Cut(name, ":")
		if !domain.IsValidDomain(head) {
			report.Issues = append(report.Issues, Issue{
				Category: CategoryDomain,
				Severity: SeverityWarning,
				Task:     name,
				Message:  fmt.Sprintf("domain prefix %q is not a recognized domain", head),
			})
		}

		if g.IsIsolated(name) && !entryPointLeaves[t.LeafName()] && t.Alias == "" {
			report.Issues = append(report.Issues, Issue{
				Category: CategoryOrphan,
				Severity: SeverityInfo,
				Task:     name,
				Message:  "no dependencies or dependents; confirm this task is still invoked",
			})
		}

		if !namePattern.MatchString(name) {
			report.Issues = append(report.Issues, Issue{
				Category: CategoryNaming,
				Severity: SeverityWarning,
				Task:     name,
				Message:  "name contains characters outside [a-z0-9:_-]",
			})
		}
		if t.Description == "" || t.AutoDescription {
			report.Issues = append(report.Issues, Issue{
				Category: CategoryNaming,
				Severity: SeverityInfo,
				Task:     name,
				Message:  "no authored description; only a generated summary",
			})
		}
	}

	report.Suggestions = suggestions(tasks, report)
	return report
}

func refField(kind graph.EdgeKind) string {
	switch kind {
	case graph.EdgePost:
		return "depends_post"
	case graph.EdgeWait:
		return "wait_for"
	default:
		return "depends"
	}
}

func suggestions(tasks []*domain.TaskDefinition, report *ValidationReport) []string {
	var out []string

	if len(tasks) > 0 {
		hasTest := false
		for _, t := range tasks {
			if t.Domain == domain.DomainTest {
				hasTest = true
				break
			}
		}
		if !hasTest {
			out = append(out, "No test tasks declared; add a test: task so CI has an entry point")
		}
	}

	untracked := 0
	for _, t := range tasks {
		if len(t.Sources) == 0 && len(t.Outputs) == 0 {
			untracked++
		}
	}
	if len(tasks) >= 3 && untracked == len(tasks) {
		out = append(out, "No task declares sources or outputs; adding them enables incremental runs")
	}

	if len(tasks) >= 5 && len(report.DomainsUsed) <= 1 {
		out = append(out, "All tasks share one domain; splitting by domain (build, test, lint) keeps names navigable")
	}

	return out
}
