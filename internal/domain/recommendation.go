package domain

type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// TaskRecommendation is a synthesized task the project would benefit from,
// with the reasoning behind it. Priority runs 1-10, higher first.
type TaskRecommendation struct {
	Task               TaskDefinition `json:"task"`
	Reasoning          string         `json:"reasoning"`
	Priority           int            `json:"priority"`
	EstimatedEffort    Effort         `json:"estimatedEffort"`
	DependenciesNeeded []string       `json:"dependenciesNeeded,omitempty"`
}
