package mcp

import (
	"fmt"
	"strings"

	"github.com/rcliao/taskwise/internal/service"
)

// FormatAnalysisAsMarkdown formats a project analysis as markdown
func FormatAnalysisAsMarkdown(result *AnalyzeProjectResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 🔍 Project Analysis: %s\n\n", result.ProjectPath))

	if s := result.Structure; s != nil {
		sb.WriteString("## Structure\n\n")
		if len(s.Languages) > 0 {
			sb.WriteString(fmt.Sprintf("- **Languages**: %s\n", strings.Join(s.Languages, ", ")))
		}
		if len(s.PackageManagers) > 0 {
			sb.WriteString(fmt.Sprintf("- **Package managers**: %s\n", strings.Join(s.PackageManagers, ", ")))
		}
		if len(s.Frameworks) > 0 {
			sb.WriteString(fmt.Sprintf("- **Frameworks**: %s\n", strings.Join(s.Frameworks, ", ")))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Existing Tasks (%d)\n\n", len(result.ExistingTasks)))
	if len(result.ExistingTasks) == 0 {
		sb.WriteString("No tasks declared yet.\n")
	}
	for _, t := range result.ExistingTasks {
		marker := ""
		if t.FileTask {
			marker = " 📄"
		}
		sb.WriteString(fmt.Sprintf("- **%s**%s (%s, %s)", t.Name, marker, t.Domain, t.Complexity))
		if t.Description != "" {
			sb.WriteString(fmt.Sprintf(" — %s", t.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if len(result.SkippedTasks) > 0 {
		sb.WriteString("## Skipped Entries\n\n")
		for _, s := range result.SkippedTasks {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", s.Name, s.Reason))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Recommended Tasks (%d)\n\n", len(result.RecommendedTasks)))
	if len(result.RecommendedTasks) == 0 {
		sb.WriteString("✅ No additional tasks recommended.\n")
	}
	for _, rec := range result.RecommendedTasks {
		sb.WriteString(fmt.Sprintf("- **%s** `%s`\n", rec.Task.FullName(), rec.Task.EffectiveCommand()))
		sb.WriteString(fmt.Sprintf("  %s\n", rec.Reasoning))
	}

	return strings.TrimSpace(sb.String())
}

// FormatTraceAsMarkdown formats a dependency chain trace as markdown
func FormatTraceAsMarkdown(result *TraceResult) string {
	var sb strings.Builder

	if len(result.AvailableTasks) > 0 && len(result.ExecutionOrder) == 0 {
		sb.WriteString(fmt.Sprintf("❌ **Task `%s` not found**\n\nAvailable tasks:\n", result.Task))
		for _, name := range result.AvailableTasks {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
		return strings.TrimSpace(sb.String())
	}

	sb.WriteString(fmt.Sprintf("# 🔗 Dependency Chain: %s\n\n", result.Task))
	sb.WriteString(fmt.Sprintf("**Total steps**: %d\n\n", result.TotalSteps))

	sb.WriteString("## Execution Order\n\n")
	for i, name := range result.ExecutionOrder {
		line := fmt.Sprintf("%d. %s", i+1, name)
		if d, ok := result.TaskDetails[name]; ok && d.Command != "" {
			line += fmt.Sprintf(" — `%s`", d.Command)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")

	if len(result.ParallelGroups) > 1 {
		sb.WriteString("## Parallel Groups\n\n")
		for i, group := range result.ParallelGroups {
			sb.WriteString(fmt.Sprintf("- Stage %d: %s\n", i+1, strings.Join(group, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(result.Dependents) > 0 {
		sb.WriteString(fmt.Sprintf("## Dependents\n\n- %s\n", strings.Join(result.Dependents, "\n- ")))
	}

	return strings.TrimSpace(sb.String())
}

// FormatValidationAsMarkdown formats a validation report as markdown
func FormatValidationAsMarkdown(result *ValidateResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# ✅ Architecture Validation: %s\n\n", result.ProjectPath))

	report := result.Report
	sb.WriteString(fmt.Sprintf("**Tasks**: %d  \n", report.TotalTasks))
	if len(report.DomainsUsed) > 0 {
		sb.WriteString(fmt.Sprintf("**Domains**: %s\n\n", strings.Join(report.DomainsUsed, ", ")))
	}

	if len(report.Issues) == 0 {
		sb.WriteString("🎉 No issues found.\n")
	} else {
		sb.WriteString(fmt.Sprintf("## Issues (%d)\n\n", len(report.Issues)))
		for _, issue := range report.Issues {
			icon := "ℹ️"
			switch issue.Severity {
			case service.SeverityError:
				icon = "🔴"
			case service.SeverityWarning:
				icon = "🟡"
			}
			sb.WriteString(fmt.Sprintf("- %s **%s**", icon, issue.Category))
			if issue.Task != "" {
				sb.WriteString(fmt.Sprintf(" `%s`", issue.Task))
			}
			sb.WriteString(fmt.Sprintf(": %s\n", issue.Message))
		}
		sb.WriteString("\n")
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range report.Suggestions {
			sb.WriteString(fmt.Sprintf("- 💡 %s\n", s))
		}
	}

	return strings.TrimSpace(sb.String())
}

// FormatPruneAsMarkdown formats prune candidates as markdown
func FormatPruneAsMarkdown(result *PruneResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# 🧹 Prune Report: %s\n\n", result.ProjectPath))

	if result.Total == 0 {
		sb.WriteString("✅ No redundant tasks found.\n")
		return strings.TrimSpace(sb.String())
	}

	mode := "dry run — nothing removed"
	if !result.DryRun {
		mode = fmt.Sprintf("%d removed", len(result.Removed))
	}
	sb.WriteString(fmt.Sprintf("**Candidates**: %d (%s)\n\n", result.Total, mode))

	for _, c := range result.Candidates {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Task, c.Reason))
	}

	return strings.TrimSpace(sb.String())
}
