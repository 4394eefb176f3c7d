package service

import (
	"fmt"

	"github.com/rcliao/taskwise/internal/domain"
)

// conventionTask is one conventional task a project shape implies.
type conventionTask struct {
	name     string
	domain   domain.TaskDomain
	desc     string
	run      string
	priority int
	source   string // what in the project motivates it
}

// RecommendTasks proposes conventional tasks the project is missing,
// derived from its detected structure. Recommendations whose full name
// already exists are skipped; output order is deterministic.
func RecommendTasks(structure *domain.ProjectStructure, existing []*domain.TaskDefinition) []domain.TaskRecommendation {
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.FullName()] = true
	}

	var conventions []conventionTask
	add := func(c ...conventionTask) { conventions = append(conventions, c...) }

	if structure.HasPackageManager("npm") {
		add(
			conventionTask{"build", domain.DomainBuild, "Build the frontend bundle", "npm run build", 9, "a package.json"},
			conventionTask{"unit", domain.DomainTest, "Run the JavaScript test suite", "npm test", 9, "a package.json"},
			conventionTask{"server", domain.DomainDev, "Start the development server", "npm run dev", 7, "a package.json"},
		)
	}
	if structure.HasPackageManager("cargo") {
		add(
			conventionTask{"release", domain.DomainBuild, "Build the release binary", "cargo build --release", 9, "a Cargo.toml"},
			conventionTask{"unit", domain.DomainTest, "Run cargo tests", "cargo test", 9, "a Cargo.toml"},
			conventionTask{"clippy", domain.DomainLint, "Lint with clippy", "cargo clippy -- -D warnings", 8, "a Cargo.toml"},
		)
	}
	if structure.HasPackageManager("go") {
		add(
			conventionTask{"app", domain.DomainBuild, "Build all Go packages", "go build ./...", 9, "a go.mod"},
			conventionTask{"unit", domain.DomainTest, "Run Go tests", "go test ./...", 9, "a go.mod"},
			conventionTask{"vet", domain.DomainLint, "Vet Go sources", "go vet ./...", 8, "a go.mod"},
		)
	}
	if structure.HasPackageManager("pip") {
		add(
			conventionTask{"unit", domain.DomainTest, "Run the Python test suite", "python -m pytest", 9, "a Python manifest"},
			conventionTask{"ruff", domain.DomainLint, "Lint Python sources", "ruff check .", 8, "a Python manifest"},
		)
	}
	if structure.HasDatabase {
		add(conventionTask{"migrate", domain.DomainDB, "Apply pending database migrations", "dbmate up", 7, "database artifacts"})
	}
	if structure.HasDocs {
		add(conventionTask{"site", domain.DomainDocs, "Build the documentation site", "mkdocs build", 5, "a docs directory"})
	}
	var ciGates []string
	if structure.HasCI {
		// ci:check is an aggregate gate over the test and lint
		// conventions above, not a command of its own.
		for _, c := range conventions {
			if c.domain == domain.DomainTest || c.domain == domain.DomainLint {
				ciGates = append(ciGates, string(c.domain)+":"+c.name)
			}
		}
		add(conventionTask{"check", domain.DomainCI, "Run everything CI runs, locally", "echo 'all checks passed'", 6, "CI configuration"})
	}

	var out []domain.TaskRecommendation
	for _, c := range conventions {
		task := domain.TaskDefinition{
			Name:        c.name,
			Domain:      c.domain,
			Description: c.desc,
			Run:         []string{c.run},
			Complexity:  domain.ComplexitySimple,
		}
		if c.domain == domain.DomainCI {
			task.Depends = ciGates
		}
		if taken[task.FullName()] {
			continue
		}
		taken[task.FullName()] = true
		out = append(out, domain.TaskRecommendation{
			Task:               task,
			Reasoning:          fmt.Sprintf("Projects with %s conventionally declare %s", c.source, task.FullName()),
			Priority:           c.priority,
			EstimatedEffort:    domain.EffortLow,
			DependenciesNeeded: task.Depends,
		})
	}
	return out
}
