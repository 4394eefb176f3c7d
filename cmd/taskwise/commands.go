package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/taskwise/internal/mcp"
	"github.com/rcliao/taskwise/internal/service"
)

var (
	projectPath string
	jsonOutput  bool

	createName       string
	createComplexity string
	createDomain     string
	pruneApply       bool
)

var (
	rootCmd = &cobra.Command{
		Use:   "taskwise",
		Short: "A dependency-graph engine for mise task configurations",
		Long: `Taskwise analyzes mise task configurations: it builds the task
dependency graph, traces execution chains, validates the architecture,
finds redundant tasks, and places new tasks by domain and complexity.

Without a subcommand it runs as an MCP server over stdio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the project structure and recommend tasks",
		Run:   runAnalyze,
	}

	traceCmd = &cobra.Command{
		Use:   "trace [task]",
		Short: "Trace a task's dependency chain and execution order",
		Args:  cobra.ExactArgs(1),
		Run:   runTrace,
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the task graph for cycles and structural issues",
		Run:   runValidate,
	}

	pruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Find redundant tasks (dry run unless --apply)",
		Run:   runPrune,
	}

	createCmd = &cobra.Command{
		Use:   "create [description]",
		Short: "Create a task from a description, placed by domain and complexity",
		Args:  cobra.ExactArgs(1),
		Run:   runCreate,
	}

	removeCmd = &cobra.Command{
		Use:   "remove [task]",
		Short: "Remove a task and report its dependents",
		Args:  cobra.ExactArgs(1),
		Run:   runRemove,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", ".", "Project root directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit raw JSON instead of markdown")

	createCmd.Flags().StringVar(&createName, "name", "", "Preferred leaf name for the task")
	createCmd.Flags().StringVar(&createComplexity, "complexity", "", "Override complexity (simple, moderate, complex)")
	createCmd.Flags().StringVar(&createDomain, "domain", "", "Force a domain (build, test, lint, ...)")
	pruneCmd.Flags().BoolVar(&pruneApply, "apply", false, "Remove the candidates instead of reporting them")

	rootCmd.AddCommand(serveCmd, analyzeCmd, traceCmd, validateCmd, pruneCmd, createCmd, removeCmd)
}

func newServer() *mcp.MCPServer {
	return mcp.NewMCPServer(service.DefaultExtractorOptions())
}

func runServe() error {
	transport := mcp.NewMCPTransport(newServer())
	return transport.Start()
}

// call dispatches one command through the same handler the MCP
// transport uses, so CLI and server behavior cannot drift.
func call(method string, params interface{}) interface{} {
	data, err := json.Marshal(params)
	if err != nil {
		log.Fatalf("Failed to encode parameters: %v", err)
	}
	result, err := newServer().HandleCommand(method, data)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return result
}

func printJSON(result interface{}) {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to format result: %v", err)
	}
	fmt.Println(string(output))
}

func runAnalyze(cmd *cobra.Command, args []string) {
	result := call("taskwise.analyze_project", mcp.ProjectParams{ProjectPath: projectPath})
	if jsonOutput {
		printJSON(result)
		return
	}
	fmt.Println(mcp.FormatAnalysisAsMarkdown(result.(*mcp.AnalyzeProjectResult)))
}

func runTrace(cmd *cobra.Command, args []string) {
	result := call("taskwise.trace_task_chain", mcp.TraceParams{
		ProjectPath: projectPath,
		TaskName:    args[0],
	})
	if jsonOutput {
		printJSON(result)
		return
	}
	fmt.Println(mcp.FormatTraceAsMarkdown(result.(*mcp.TraceResult)))
}

func runValidate(cmd *cobra.Command, args []string) {
	result := call("taskwise.validate_architecture", mcp.ProjectParams{ProjectPath: projectPath})
	report := result.(*mcp.ValidateResult)
	if jsonOutput {
		printJSON(report)
	} else {
		fmt.Println(mcp.FormatValidationAsMarkdown(report))
	}
	if report.Report.HasErrors() {
		os.Exit(1)
	}
}

func runPrune(cmd *cobra.Command, args []string) {
	dryRun := !pruneApply
	result := call("taskwise.prune_tasks", mcp.PruneParams{
		ProjectPath: projectPath,
		DryRun:      &dryRun,
	})
	if jsonOutput {
		printJSON(result)
		return
	}
	fmt.Println(mcp.FormatPruneAsMarkdown(result.(*mcp.PruneResult)))
}

func runCreate(cmd *cobra.Command, args []string) {
	result := call("taskwise.create_task", mcp.CreateTaskParams{
		ProjectPath:     projectPath,
		TaskDescription: args[0],
		SuggestedName:   createName,
		ForceComplexity: createComplexity,
		DomainHint:      createDomain,
	})
	if jsonOutput {
		printJSON(result)
		return
	}
	created := result.(*mcp.CreateTaskResponse).Result
	fmt.Printf("Created %s (%s)\n", created.FullName, created.StorageForm)
	if created.FilePath != "" {
		fmt.Printf("Script: %s\n", created.FilePath)
	}
	for _, w := range created.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}

func runRemove(cmd *cobra.Command, args []string) {
	result := call("taskwise.remove_task", mcp.RemoveTaskParams{
		ProjectPath: projectPath,
		TaskName:    args[0],
	})
	if jsonOutput {
		printJSON(result)
		return
	}
	removal := result.(*mcp.RemoveTaskResponse).Result
	if !removal.Success {
		fmt.Printf("Task %q not found. Available tasks:\n", args[0])
		for _, name := range removal.AvailableTasks {
			fmt.Printf("  %s\n", name)
		}
		os.Exit(1)
	}
	fmt.Printf("Removed %s\n", removal.Removed)
	if len(removal.AffectedDependents) > 0 {
		fmt.Println("Still referenced by:")
		for _, dep := range removal.AffectedDependents {
			fmt.Printf("  %s\n", dep)
		}
	}
}
