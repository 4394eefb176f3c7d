package service

import (
	"errors"
	"strings"

	"github.com/rcliao/taskwise/internal/domain"
	"github.com/rcliao/taskwise/internal/graph"
)

// TaskManager applies guided mutations: planner-backed creation and
// removal with dependent reporting. Each call re-reads the project and
// performs at most one write-back.
type TaskManager struct {
	store   ProjectStore
	planner *Planner
	opts    ExtractorOptions
}

func NewTaskManager(store ProjectStore, opts ExtractorOptions) *TaskManager {
	return &TaskManager{
		store:   store,
		planner: NewPlanner(opts),
		opts:    opts,
	}
}

// CreateTaskResult reports where a new task landed.
type CreateTaskResult struct {
	Success     bool        `json:"success"`
	FullName    string      `json:"fullName"`
	StorageForm StorageForm `json:"storageForm"`
	FilePath    string      `json:"filePath,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// CreateTask plans a placement for the request and persists it: an
// inline table entry for simple and moderate tasks, a script file for
// complex ones.
func (m *TaskManager) CreateTask(req PlacementRequest) (*CreateTaskResult, error) {
	extraction, err := NewExtractor(m.store, m.opts).Extract()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(extraction.Tasks))
	for _, t := range extraction.Tasks {
		existing[t.FullName()] = true
	}

	plan, err := m.planner.Plan(req, existing)
	if err != nil {
		return nil, err
	}

	result := &CreateTaskResult{
		Success:     true,
		FullName:    plan.FullName,
		StorageForm: plan.StorageForm,
		Warnings:    plan.Warnings,
	}

	if plan.StorageForm == StorageFile {
		body := scriptBody(plan.Task)
		path, err := m.store.WriteTaskFile(strings.Split(plan.FullName, ":"), body)
		if err != nil {
			return nil, err
		}
		result.FilePath = path
		return result, nil
	}

	cfg, err := m.store.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.SetTask(domain.TaskEntry{Name: plan.FullName, Fields: inlineFields(plan.Task)})
	if err := m.store.SaveConfig(cfg); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveTaskResult reports a removal and who it breaks. Dependents are
// NOT auto-repaired; the caller owns the follow-up, so the list is
// always complete.
type RemoveTaskResult struct {
	Success            bool     `json:"success"`
	Removed            string   `json:"removed,omitempty"`
	AffectedDependents []string `json:"affectedDependents,omitempty"`
	AvailableTasks     []string `json:"availableTasks,omitempty"`
}

// RemoveTask deletes a task's inline entry and/or script file. The name
// may be the full name or the bare declared name.
func (m *TaskManager) RemoveTask(name string) (*RemoveTaskResult, error) {
	extraction, err := NewExtractor(m.store, m.opts).Extract()
	if err != nil {
		return nil, err
	}

	var target *domain.TaskDefinition
	for _, t := range extraction.Tasks {
		if t.FullName() == name || t.Name == name {
			target = t
			break
		}
	}
	if target == nil {
		result := &RemoveTaskResult{Success: false}
		for _, t := range extraction.Tasks {
			result.AvailableTasks = append(result.AvailableTasks, t.FullName())
		}
		return result, domain.TaskNotFound(name)
	}

	g := graph.Build(extraction.Tasks)
	result := &RemoveTaskResult{
		Success:            true,
		Removed:            target.FullName(),
		AffectedDependents: g.Referencers(target.FullName()),
	}

	if target.IsFileTask() {
		if err := m.store.RemoveTaskFile(target.FilePath); err != nil {
			return nil, err
		}
	}

	cfg, err := m.store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RemoveTask(target.Name) || cfg.RemoveTask(target.FullName()) {
		if err := m.store.SaveConfig(cfg); err != nil {
			return nil, err
		}
	} else if !target.IsFileTask() {
		return nil, errors.New("task present in extraction but absent from document")
	}

	return result, nil
}

// inlineFields renders a definition as a document task record.
func inlineFields(t domain.TaskDefinition) map[string]any {
	fields := map[string]any{"description": t.Description}
	if len(t.Run) == 1 {
		fields["run"] = t.Run[0]
	} else {
		fields["run"] = t.Run
	}
	if len(t.Depends) > 0 {
		fields["depends"] = t.Depends
	}
	if len(t.DependsPost) > 0 {
		fields["depends_post"] = t.DependsPost
	}
	if len(t.WaitFor) > 0 {
		fields["wait_for"] = t.WaitFor
	}
	if len(t.Sources) > 0 {
		fields["sources"] = t.Sources
	}
	if len(t.Outputs) > 0 {
		fields["outputs"] = t.Outputs
	}
	if len(t.Env) > 0 {
		fields["env"] = t.Env
	}
	if t.Dir != "" {
		fields["dir"] = t.Dir
	}
	if t.Alias != "" {
		fields["alias"] = t.Alias
	}
	if t.Hidden {
		fields["hide"] = true
	}
	if t.Confirm != "" {
		fields["confirm"] = t.Confirm
	}
	return fields
}

func scriptBody(t domain.TaskDefinition) string {
	var b strings.Builder
	b.WriteString("#!/usr/bin/env bash\n")
	if t.Description != "" {
		b.WriteString("# " + t.Description + "\n")
	}
	b.WriteString("set -euo pipefail\n\n")
	for _, cmd := range t.Run {
		b.WriteString(cmd + "\n")
	}
	return b.String()
}
