package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/taskwise/internal/domain"
)

type StorageForm string

const (
	// StorageInline keeps the task as a table entry in the document.
	StorageInline StorageForm = "inline"
	// StorageFile puts the body in a dedicated script under .mise/tasks.
	StorageFile StorageForm = "file"
)

// PlacementRequest describes a task to be created, in free text plus
// optional overrides.
type PlacementRequest struct {
	Description     string `json:"description"`
	SuggestedName   string `json:"suggestedName,omitempty"`
	ForceComplexity string `json:"forceComplexity,omitempty"`
	DomainHint      string `json:"domainHint,omitempty"`
}

// PlacementPlan is the planner's verdict: where the task belongs and in
// what form, plus the synthesized candidate definition.
type PlacementPlan struct {
	Success     bool                  `json:"success"`
	FullName    string                `json:"fullName"`
	Domain      domain.TaskDomain     `json:"domain"`
	Complexity  domain.TaskComplexity `json:"complexity"`
	StorageForm StorageForm           `json:"storageForm"`
	Task        domain.TaskDefinition `json:"task"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// domainKeywords scores free text against each domain. Scoring is a
// plain per-keyword hit count; ties resolve in domain declaration order.
var domainKeywords = map[domain.TaskDomain][]string{
	domain.DomainBuild:  {"build", "compile", "bundle", "webpack", "assets", "package"},
	domain.DomainTest:   {"test", "spec", "coverage", "unit", "integration", "e2e"},
	domain.DomainLint:   {"lint", "format", "fmt", "style", "typecheck", "eslint", "prettier"},
	domain.DomainDev:    {"dev", "serve", "watch", "server", "local", "reload"},
	domain.DomainDeploy: {"deploy", "release", "publish", "production", "ship", "staging"},
	domain.DomainDB:     {"database", "db", "migrate", "migration", "schema", "seed", "sql"},
	domain.DomainCI:     {"ci", "pipeline", "workflow", "action"},
	domain.DomainDocs:   {"docs", "documentation", "readme", "changelog"},
	domain.DomainClean:  {"clean", "remove", "delete", "reset", "purge", "prune"},
	domain.DomainSetup:  {"setup", "install", "init", "bootstrap", "configure"},
}

// Planner decides domain, complexity, name, and storage form for a new
// task. It holds the same thresholds the extractor classifies with, so
// planned and extracted complexity agree.
type Planner struct {
	opts ExtractorOptions
}

func NewPlanner(opts ExtractorOptions) *Planner {
	return &Planner{opts: opts}
}

// Plan builds a placement for the request. existing holds the full
// names already taken; collisions are disambiguated deterministically
// and reported, never silent.
func (p *Planner) Plan(req PlacementRequest, existing map[string]bool) (*PlacementPlan, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: empty description", domain.ErrMalformedTask)
	}

	var warnings []string

	d, err := p.chooseDomain(req)
	if err != nil {
		return nil, err
	}

	commands := commandSegments(req.Description)
	complexity := (&Extractor{opts: p.opts}).Classify(commands, false)
	if req.ForceComplexity != "" {
		complexity, err = domain.ParseComplexity(req.ForceComplexity)
		if err != nil {
			return nil, err
		}
	}

	name := req.SuggestedName
	if name == "" {
		name = slugForDescription(req.Description, d)
	}

	task := domain.TaskDefinition{
		Name:        name,
		Domain:      d,
		Description: req.Description,
		Run:         commands,
		Complexity:  complexity,
	}

	if existing[task.FullName()] {
		original := task.FullName()
		for i := 2; ; i++ {
			task.Name = fmt.Sprintf("%s-%d", name, i)
			if !existing[task.FullName()] {
				break
			}
		}
		warnings = append(warnings, fmt.Sprintf("%s already exists; renamed to %s", original, task.FullName()))
	}

	form := StorageInline
	if complexity == domain.ComplexityComplex {
		form = StorageFile
	}

	return &PlacementPlan{
		Success:     true,
		FullName:    task.FullName(),
		Domain:      d,
		Complexity:  complexity,
		StorageForm: form,
		Task:        task,
		Warnings:    warnings,
	}, nil
}

func (p *Planner) chooseDomain(req PlacementRequest) (domain.TaskDomain, error) {
	if req.DomainHint != "" {
		return domain.ParseDomain(req.DomainHint)
	}

	text := strings.ToLower(req.Description)
	best := domain.DefaultDomain
	bestScore := 0
	for _, d := range domain.AllDomains() {
		score := 0
		for _, kw := range domainKeywords[d] {
			if containsWord(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best, nil
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

var commandSeparator = regexp.MustCompile(`\s*(?:&&|;|\n)\s*`)

// commandSegments splits a description into command-shaped pieces the
// way the extractor counts run entries.
func commandSegments(description string) []string {
	parts := commandSeparator.Split(strings.TrimSpace(description), -1)
	var out []string
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var slugStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "in": true,
	"of": true, "the": true, "to": true, "with": true,
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugForDescription derives a short kebab-case leaf name. The domain's
// own token is dropped so names don't read deploy:deploy-production.
func slugForDescription(description string, d domain.TaskDomain) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(description)) {
		w = strings.Trim(nonSlug.ReplaceAllString(w, "-"), "-")
		if w == "" || slugStopwords[w] || w == string(d) {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return string(d)
	}
	return strings.Join(words, "-")
}
