package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/graph"
	"github.com/rcliao/taskwise/internal/service"
	"github.com/rcliao/taskwise/internal/storage"
)

// MCPServer dispatches taskwise methods. Every handler reads a fresh
// project snapshot: the server itself holds no per-project state.
type MCPServer struct {
	opts service.ExtractorOptions
}

func NewMCPServer(opts service.ExtractorOptions) *MCPServer {
	return &MCPServer{opts: opts}
}

// Shutdown releases server resources. There are none: all state lives
// on disk and every call re-reads it.
func (s *MCPServer) Shutdown() {}

func (s *MCPServer) HandleCommand(method string, params json.RawMessage) (interface{}, error) {
	log.Printf("Handling MCP command: %s", method)

	switch method {
	case "taskwise.analyze_project":
		return s.handleAnalyzeProject(params)
	case "taskwise.trace_task_chain":
		return s.handleTraceTaskChain(params)
	case "taskwise.create_task":
		return s.handleCreateTask(params)
	case "taskwise.validate_architecture":
		return s.handleValidateArchitecture(params)
	case "taskwise.prune_tasks":
		return s.handlePruneTasks(params)
	case "taskwise.remove_task":
		return s.handleRemoveTask(params)
	case "taskwise.get_task_recommendations":
		return taskRecommendationsGuidance(), nil
	case "taskwise.get_mise_architecture_rules":
		return architectureRulesGuidance(), nil
	case "taskwise.mise_task_expert_guidance":
		return expertGuidance(), nil
	case "taskwise.task_chain_analyst":
		return chainAnalystGuidance(), nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

// snapshot loads the store and extracts the current task set for a
// project path.
func (s *MCPServer) snapshot(projectPath string) (*storage.ConfigStore, *service.ExtractionResult, error) {
	store, err := storage.NewConfigStore(projectPath)
	if err != nil {
		return nil, nil, err
	}
	extraction, err := service.NewExtractor(store, s.opts).Extract()
	if err != nil {
		return nil, nil, err
	}
	return store, extraction, nil
}

// TaskSummary is the compact task shape returned over the wire.
type TaskSummary struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Command     string `json:"command"`
	Complexity  string `json:"complexity"`
	FileTask    bool   `json:"fileTask,omitempty"`
}

func summarize(t *domain.TaskDefinition) TaskSummary {
	return TaskSummary{
		Name:        t.FullName(),
		Domain:      string(t.Domain),
		Description: t.Description,
		Command:     t.EffectiveCommand(),
		Complexity:  string(t.Complexity),
		FileTask:    t.IsFileTask(),
	}
}

type ProjectParams struct {
	ProjectPath string `json:"projectPath"`
}

type AnalyzeProjectResult struct {
	ProjectPath      string                      `json:"projectPath"`
	Structure        *domain.ProjectStructure    `json:"projectStructure"`
	ExistingTasks    []TaskSummary               `json:"existingTasks"`
	RecommendedTasks []domain.TaskRecommendation `json:"recommendedTasks"`
	SkippedTasks     []service.SkippedTask       `json:"skippedTasks,omitempty"`
	Summary          AnalyzeSummary              `json:"summary"`
}

type AnalyzeSummary struct {
	TotalExisting    int      `json:"totalExisting"`
	TotalRecommended int      `json:"totalRecommended"`
	DomainsCovered   []string `json:"domainsCovered"`
}

func (s *MCPServer) handleAnalyzeProject(params json.RawMessage) (interface{}, error) {
	var p ProjectParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	structure, err := service.AnalyzeStructure(p.ProjectPath)
	if err != nil {
		return nil, err
	}
	_, extraction, err := s.snapshot(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	recs := service.RecommendTasks(structure, extraction.Tasks)

	result := &AnalyzeProjectResult{
		ProjectPath:      p.ProjectPath,
		Structure:        structure,
		RecommendedTasks: recs,
		SkippedTasks:     extraction.Skipped,
	}
	for _, t := range extraction.Tasks {
		result.ExistingTasks = append(result.ExistingTasks, summarize(t))
	}

	covered := make(map[string]bool)
	for _, rec := range recs {
		covered[string(rec.Task.Domain)] = true
	}
	for _, d := range domain.AllDomains() {
		if covered[string(d)] {
			result.Summary.DomainsCovered = append(result.Summary.DomainsCovered, string(d))
		}
	}
	result.Summary.TotalExisting = len(extraction.Tasks)
	result.Summary.TotalRecommended = len(recs)

	return result, nil
}

type TraceParams struct {
	ProjectPath string `json:"projectPath"`
	TaskName    string `json:"taskName"`
}

type TraceResult struct {
	ProjectPath    string                 `json:"projectPath"`
	Task           string                 `json:"task"`
	ExecutionOrder []string               `json:"executionOrder"`
	ParallelGroups [][]string             `json:"parallelGroups"`
	Dependencies   []string               `json:"dependencies"`
	Dependents     []string               `json:"dependents"`
	TaskDetails    map[string]TaskSummary `json:"taskDetails"`
	TotalSteps     int                    `json:"totalSteps"`
	AvailableTasks []string               `json:"availableTasks,omitempty"`
}

func (s *MCPServer) handleTraceTaskChain(params json.RawMessage) (interface{}, error) {
	var p TraceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	_, extraction, err := s.snapshot(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	g := graph.Build(extraction.Tasks)
	trace, err := g.TraceChain(p.TaskName)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			// A miss still tells the caller what is available.
			return &TraceResult{
				ProjectPath:    p.ProjectPath,
				Task:           p.TaskName,
				AvailableTasks: g.Names(),
			}, nil
		}
		return nil, err
	}

	result := &TraceResult{
		ProjectPath:    p.ProjectPath,
		Task:           trace.Task,
		ExecutionOrder: trace.ExecutionOrder,
		ParallelGroups: trace.Layers,
		Dependencies:   trace.Dependencies,
		Dependents:     trace.Dependents,
		TaskDetails:    make(map[string]TaskSummary, len(trace.ExecutionOrder)),
		TotalSteps:     len(trace.ExecutionOrder),
	}
	for _, name := range trace.ExecutionOrder {
		if t, ok := g.Task(name); ok {
			result.TaskDetails[name] = summarize(t)
		}
	}
	return result, nil
}

type CreateTaskParams struct {
	ProjectPath     string `json:"projectPath"`
	TaskDescription string `json:"taskDescription"`
	SuggestedName   string `json:"suggestedName,omitempty"`
	ForceComplexity string `json:"forceComplexity,omitempty"`
	DomainHint      string `json:"domainHint,omitempty"`
}

type CreateTaskResponse struct {
	ProjectPath string                    `json:"projectPath"`
	Result      *service.CreateTaskResult `json:"result"`
}

func (s *MCPServer) handleCreateTask(params json.RawMessage) (interface{}, error) {
	var p CreateTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	store, err := storage.NewConfigStore(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	manager := service.NewTaskManager(store, s.opts)
	result, err := manager.CreateTask(service.PlacementRequest{
		Description:     p.TaskDescription,
		SuggestedName:   p.SuggestedName,
		ForceComplexity: p.ForceComplexity,
		DomainHint:      p.DomainHint,
	})
	if err != nil {
		return nil, err
	}
	return &CreateTaskResponse{ProjectPath: p.ProjectPath, Result: result}, nil
}

type ValidateResult struct {
	ProjectPath  string                    `json:"projectPath"`
	Report       *service.ValidationReport `json:"report"`
	SkippedTasks []service.SkippedTask     `json:"skippedTasks,omitempty"`
}

func (s *MCPServer) handleValidateArchitecture(params json.RawMessage) (interface{}, error) {
	var p ProjectParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	_, extraction, err := s.snapshot(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	g := graph.Build(extraction.Tasks)
	return &ValidateResult{
		ProjectPath:  p.ProjectPath,
		Report:       service.ValidateArchitecture(extraction.Tasks, g),
		SkippedTasks: extraction.Skipped,
	}, nil
}

type PruneParams struct {
	ProjectPath string `json:"projectPath"`
	DryRun      *bool  `json:"dryRun,omitempty"`
}

type PruneResult struct {
	ProjectPath string                   `json:"projectPath"`
	DryRun      bool                     `json:"dryRun"`
	Candidates  []service.PruneCandidate `json:"candidates"`
	Removed     []string                 `json:"removed,omitempty"`
	Total       int                      `json:"total"`
}

func (s *MCPServer) handlePruneTasks(params json.RawMessage) (interface{}, error) {
	var p PruneParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	dryRun := p.DryRun == nil || *p.DryRun

	store, extraction, err := s.snapshot(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	g := graph.Build(extraction.Tasks)
	candidates := service.NewRedundancyDetector().FindCandidates(extraction.Tasks, g)

	result := &PruneResult{
		ProjectPath: p.ProjectPath,
		DryRun:      dryRun,
		Candidates:  candidates,
		Total:       len(candidates),
	}
	if dryRun {
		return result, nil
	}

	manager := service.NewTaskManager(store, s.opts)
	for _, c := range candidates {
		removal, err := manager.RemoveTask(c.Task)
		if err != nil {
			log.Printf("prune: skipping %s: %v", c.Task, err)
			continue
		}
		result.Removed = append(result.Removed, removal.Removed)
	}
	return result, nil
}

type RemoveTaskParams struct {
	ProjectPath string `json:"projectPath"`
	TaskName    string `json:"taskName"`
}

type RemoveTaskResponse struct {
	ProjectPath string                    `json:"projectPath"`
	Result      *service.RemoveTaskResult `json:"result"`
}

func (s *MCPServer) handleRemoveTask(params json.RawMessage) (interface{}, error) {
	var p RemoveTaskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	store, err := storage.NewConfigStore(p.ProjectPath)
	if err != nil {
		return nil, err
	}

	manager := service.NewTaskManager(store, s.opts)
	result, err := manager.RemoveTask(p.TaskName)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) && result != nil {
			// The structured result still carries the available names.
			return &RemoveTaskResponse{ProjectPath: p.ProjectPath, Result: result}, nil
		}
		return nil, err
	}
	return &RemoveTaskResponse{ProjectPath: p.ProjectPath, Result: result}, nil
}
