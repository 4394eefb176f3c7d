package mcp

// Static guidance payloads. These four methods take no parameters and
// never touch a project; they exist so an MCP client can pull task
// organization advice without a round trip to docs.

func taskRecommendationsGuidance() map[string]interface{} {
	return map[string]interface{}{
		"best_practices": map[string]interface{}{
			"naming": []string{
				"Use hierarchical names with domains (build:dev, test:unit)",
				"Keep names short but descriptive",
				"Use consistent naming patterns across domains",
				"Avoid special characters except colons for hierarchy",
			},
			"organization": []string{
				"Group related tasks by domain (build, test, lint, deploy)",
				"Use sub-domains for environment or type (dev/prod, unit/e2e)",
				"Keep task files organized in the .mise/tasks/ directory",
				"One domain per file when using TOML format",
			},
			"dependencies": []string{
				"Declare explicit dependencies rather than relying on implicit ordering",
				"Avoid circular dependencies",
				"Use source/output tracking for incremental builds",
				"Keep dependency chains shallow when possible",
			},
			"performance": []string{
				"Use source tracking to avoid unnecessary rebuilds",
				"Parallelize independent tasks",
				"Cache expensive operations",
				"Use outputs to enable incremental workflows",
			},
		},
		"common_patterns": map[string]string{
			"build_pipeline": "lint → test → build → deploy",
			"development":    "install → dev (parallel with test:watch)",
			"ci_pipeline":    "install → lint → test → build → deploy",
			"release":        "test → build → version → publish",
		},
		"domain_guidelines": map[string]string{
			"build":  "Compilation, bundling, asset processing",
			"test":   "Unit, integration, e2e testing",
			"lint":   "Code quality, formatting, static analysis",
			"deploy": "Deployment, release, publishing",
			"dev":    "Development servers, hot reloading",
			"db":     "Database operations, migrations",
			"docs":   "Documentation generation, serving",
			"clean":  "Cleanup, reset operations",
		},
	}
}

func architectureRulesGuidance() map[string]interface{} {
	return map[string]interface{}{
		"architecture_principles": map[string]string{
			"domain_driven":       "Tasks are organized by functional domains (build, test, etc.)",
			"hierarchical":        "Use colon-separated names for sub-domains and environments",
			"dependency_explicit": "All dependencies should be explicitly declared",
			"source_aware":        "Track source files to enable incremental builds",
			"output_tracked":      "Define outputs for caching and dependency resolution",
		},
		"domain_hierarchy": map[string]interface{}{
			"build": map[string]interface{}{
				"purpose":         "Compilation, bundling, asset processing",
				"sub_domains":     []string{"dev", "prod", "watch", "clean"},
				"typical_sources": []string{"src/**/*", "package.json", "tsconfig.json"},
				"typical_outputs": []string{"dist/**/*", "build/**/*"},
			},
			"test": map[string]interface{}{
				"purpose":         "All forms of testing",
				"sub_domains":     []string{"unit", "integration", "e2e", "watch", "coverage"},
				"typical_sources": []string{"src/**/*", "test/**/*", "tests/**/*"},
				"typical_outputs": []string{"coverage/**/*", "test-results/**/*"},
			},
			"lint": map[string]interface{}{
				"purpose":         "Code quality and formatting",
				"sub_domains":     []string{"code", "types", "format", "fix"},
				"typical_sources": []string{"src/**/*", "test/**/*"},
				"typical_outputs": []string{"lint-results.json"},
			},
			"deploy": map[string]interface{}{
				"purpose":         "Deployment and publishing",
				"sub_domains":     []string{"staging", "prod", "preview"},
				"typical_sources": []string{"dist/**/*", "build/**/*"},
				"typical_outputs": []string{"deployment-info.json"},
			},
		},
		"complexity_levels": map[string]interface{}{
			"simple": map[string]interface{}{
				"description":     "Single command, no complex logic",
				"examples":        []string{"npm run build", "python -m pytest"},
				"characteristics": []string{"One-liner", "No conditionals", "Standard tools"},
			},
			"moderate": map[string]interface{}{
				"description":     "Multiple steps or conditional logic",
				"examples":        []string{"Build with environment checks", "Multi-stage testing"},
				"characteristics": []string{"2-5 commands", "Some conditionals", "Environment aware"},
			},
			"complex": map[string]interface{}{
				"description":     "Advanced workflows with multiple tools",
				"examples":        []string{"Full CI/CD pipeline", "Multi-environment deployment"},
				"characteristics": []string{"Many steps", "Complex logic", "Multiple tools"},
			},
		},
		"dependency_patterns": map[string]string{
			"sequential": "A → B → C (each step depends on the previous)",
			"parallel":   "A + B → C (independent tasks feeding into one)",
			"fan_out":    "A → B + C (one task enabling multiple)",
			"diamond":    "A → B + C → D (parallel middle, converging end)",
		},
	}
}

func expertGuidance() map[string]interface{} {
	return map[string]interface{}{
		"expert_tips": map[string]interface{}{
			"performance_optimization": []string{
				"Use source tracking to avoid unnecessary task execution",
				"Leverage outputs for proper caching and incremental builds",
				"Parallelize independent tasks with proper dependency declaration",
				"Use environment-specific tasks (dev vs prod) to optimize workflows",
				"Consider task granularity - too fine-grained can hurt performance",
			},
			"debugging_tasks": []string{
				"Use 'mise tasks ls' to see all available tasks",
				"Check 'mise tasks deps <task>' to understand dependencies",
				"Use 'mise run --dry-run <task>' to see what would execute",
				"Enable verbose output with 'mise run -v <task>' for debugging",
				"Check source/output tracking with 'mise tasks info <task>'",
			},
			"advanced_patterns": []string{
				"Use task templates for repetitive patterns",
				"Implement conditional tasks based on environment",
				"Create meta-tasks that orchestrate multiple workflows",
				"Use file watching for development workflows",
				"Implement proper cleanup tasks for each domain",
			},
		},
		"common_issues": map[string]interface{}{
			"circular_dependencies": map[string]string{
				"problem":    "Tasks depend on each other in a loop",
				"solution":   "Refactor to break the cycle, often by extracting common dependencies",
				"prevention": "Use dependency visualization tools regularly",
			},
			"slow_builds": map[string]string{
				"problem":    "Tasks take too long to execute",
				"solution":   "Implement proper source tracking and output caching",
				"prevention": "Design tasks with incremental builds in mind",
			},
			"missing_dependencies": map[string]string{
				"problem":    "Tasks fail because prerequisites aren't met",
				"solution":   "Explicitly declare all dependencies",
				"prevention": "Use validation tools to check architecture",
			},
		},
		"migration_strategies": map[string]interface{}{
			"from_npm_scripts": []string{
				"Map npm scripts to appropriate mise domains",
				"Convert package.json scripts to .mise/tasks/ files",
				"Add proper source/output tracking",
				"Implement dependency relationships",
			},
			"from_make": []string{
				"Convert Makefile targets to mise tasks",
				"Map make dependencies to mise dependencies",
				"Use mise's source tracking instead of file timestamps",
				"Organize by domain rather than alphabetically",
			},
			"from_just": []string{
				"Convert justfile recipes to mise tasks",
				"Maintain recipe organization but add domain structure",
				"Add source/output tracking for better caching",
				"Use mise's environment handling",
			},
		},
	}
}

func chainAnalystGuidance() map[string]interface{} {
	return map[string]interface{}{
		"analysis_techniques": map[string]string{
			"critical_path":        "Identify the longest chain of dependent tasks",
			"parallelization":      "Find tasks that can run concurrently",
			"bottleneck_detection": "Locate tasks that block multiple others",
			"redundancy_analysis":  "Find duplicate or unnecessary work",
		},
		"optimization_strategies": map[string]interface{}{
			"dependency_reduction": []string{
				"Remove unnecessary dependencies",
				"Use outputs instead of implicit dependencies",
				"Break large tasks into smaller, more focused ones",
			},
			"parallel_execution": []string{
				"Identify independent tasks that can run together",
				"Use proper dependency declaration to enable parallelism",
				"Consider resource constraints when parallelizing",
			},
			"caching_optimization": []string{
				"Implement proper source tracking",
				"Use outputs for intermediate results",
				"Cache expensive operations across runs",
			},
		},
		"performance_metrics": map[string]string{
			"execution_time":      "Total time from start to finish",
			"parallel_efficiency": "How well tasks utilize available parallelism",
			"cache_hit_rate":      "Percentage of tasks skipped due to caching",
			"dependency_depth":    "Maximum depth of dependency chains",
		},
		"visualization_tips": []string{
			"Use dependency graphs to understand task relationships",
			"Create execution timelines to identify bottlenecks",
			"Track cache hit rates over time",
			"Monitor parallel execution efficiency",
		},
	}
}
