package domain

import (
	"fmt"
	"strings"
)

type TaskDomain string

const (
	DomainBuild  TaskDomain = "build"
	DomainTest   TaskDomain = "test"
	DomainLint   TaskDomain = "lint"
	DomainDev    TaskDomain = "dev"
	DomainDeploy TaskDomain = "deploy"
	DomainDB     TaskDomain = "db"
	DomainCI     TaskDomain = "ci"
	DomainDocs   TaskDomain = "docs"
	DomainClean  TaskDomain = "clean"
	DomainSetup  TaskDomain = "setup"
)

// DefaultDomain is used when a task name carries no recognizable domain prefix.
const DefaultDomain = DomainBuild

// AllDomains returns the recognized domains in declaration order.
func AllDomains() []TaskDomain {
	return []TaskDomain{
		DomainBuild, DomainTest, DomainLint, DomainDev, DomainDeploy,
		DomainDB, DomainCI, DomainDocs, DomainClean, DomainSetup,
	}
}

func ParseDomain(s string) (TaskDomain, error) {
	d := TaskDomain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllDomains() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDomain, s)
}

// IsValidDomain reports whether s names a recognized domain.
func IsValidDomain(s string) bool {
	_, err := ParseDomain(s)
	return err == nil
}

type TaskComplexity string

const (
	ComplexitySimple   TaskComplexity = "simple"
	ComplexityModerate TaskComplexity = "moderate"
	ComplexityComplex  TaskComplexity = "complex"
)

func ParseComplexity(s string) (TaskComplexity, error) {
	c := TaskComplexity(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidComplexity, s)
}

// TaskDefinition is a single mise task, inline or file-backed.
type TaskDefinition struct {
	Name        string            `json:"name"`
	Domain      TaskDomain        `json:"domain"`
	Description string            `json:"description"`
	Run         []string          `json:"run"`
	Depends     []string          `json:"depends,omitempty"`
	DependsPost []string          `json:"dependsPost,omitempty"`
	WaitFor     []string          `json:"waitFor,omitempty"`
	Sources     []string          `json:"sources,omitempty"`
	Outputs     []string          `json:"outputs,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Dir         string            `json:"dir,omitempty"`
	Alias       string            `json:"alias,omitempty"`
	Hidden      bool              `json:"hidden,omitempty"`
	Confirm     string            `json:"confirm,omitempty"`
	Complexity  TaskComplexity    `json:"complexity"`
	FilePath    string            `json:"filePath,omitempty"`

	// AutoDescription marks a Description synthesized from the run
	// commands rather than authored in the config.
	AutoDescription bool `json:"-"`

	// DeclOrder is the task's index in original declaration order. It is
	// the tie-breaker for every deterministic ordering in the engine.
	DeclOrder int `json:"-"`
}

// FullName returns the domain-prefixed, colon-separated task name.
// Names that already contain a colon are taken as-is.
func (t *TaskDefinition) FullName() string {
	if strings.Contains(t.Name, ":") {
		return t.Name
	}
	return string(t.Domain) + ":" + t.Name
}

// LeafName returns the last colon-separated segment of the task name.
func (t *TaskDefinition) LeafName() string {
	parts := strings.Split(t.FullName(), ":")
	return parts[len(parts)-1]
}

// IsFileTask reports whether the task body lives in a script file.
func (t *TaskDefinition) IsFileTask() bool {
	return t.FilePath != ""
}

// EffectiveCommand is the run sequence joined into one comparable string.
func (t *TaskDefinition) EffectiveCommand() string {
	return strings.Join(t.Run, " && ")
}
