package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id,omitempty"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// MCPTransport handles JSON-RPC 2.0 communication over stdio
type MCPTransport struct {
	reader       *bufio.Reader
	writer       io.Writer
	server       *MCPServer
	lastActivity time.Time
	connected    bool
	mu           sync.Mutex
}

// NewMCPTransport creates a new MCP transport over stdio
func NewMCPTransport(server *MCPServer) *MCPTransport {
	return &MCPTransport{
		reader:       bufio.NewReader(os.Stdin),
		writer:       os.Stdout,
		server:       server,
		lastActivity: time.Now(),
		connected:    true,
	}
}

// Start begins the MCP server transport loop
func (t *MCPTransport) Start() error {
	for {
		// Wrap each request processing in panic recovery
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("MCP transport: Panic recovered: %v", r)
					errorResp := &JSONRPCResponse{
						JSONRPC: "2.0",
						Error: &JSONRPCError{
							Code:    InternalError,
							Message: "Internal server error",
						},
					}
					t.sendResponse(errorResp)
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			lineChan := make(chan []byte, 1)
			errChan := make(chan error, 1)

			go func() {
				line, err := t.reader.ReadBytes('\n')
				if err != nil {
					errChan <- err
				} else {
					lineChan <- line
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var line []byte
			select {
			case line = <-lineChan:
				t.updateActivity()
			case err := <-errChan:
				if err == io.EOF {
					log.Println("MCP transport: client disconnected")
					return io.EOF
				}
				return fmt.Errorf("failed to read from stdin: %w", err)
			case <-ctx.Done():
				if t.shouldTimeout() {
					log.Println("MCP transport: connection timeout")
					return fmt.Errorf("connection timeout")
				}
				// Idle clients are fine; wait longer before giving up.
				cancel()
				ctx, cancel = context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				select {
				case line = <-lineChan:
					t.updateActivity()
				case err := <-errChan:
					if err == io.EOF {
						return io.EOF
					}
					return fmt.Errorf("failed to read from stdin: %w", err)
				case <-ctx.Done():
					return fmt.Errorf("connection timeout after extended wait")
				}
			}

			response := t.processRequest(line)

			// Notifications produce no response
			if response != nil {
				if err := t.sendResponse(response); err != nil {
					if strings.Contains(err.Error(), "broken pipe") ||
						strings.Contains(err.Error(), "connection reset") {
						log.Printf("MCP transport: Client disconnected: %v", err)
						return io.EOF
					}
					return fmt.Errorf("failed to send response: %w", err)
				}
			}

			return nil
		}()

		if err != nil {
			if err == io.EOF {
				return nil // Clean disconnect
			}
			// Log error but continue processing
			log.Printf("MCP transport: Error processing request: %v", err)
		}
	}
}

// processRequest processes a JSON-RPC request and returns a response
func (t *MCPTransport) processRequest(data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			Error: &JSONRPCError{
				Code:    ParseError,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}
	}

	if req.JSONRPC != "2.0" {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &JSONRPCError{
				Code:    InvalidRequest,
				Message: "Invalid Request - JSON-RPC 2.0 required",
			},
		}
	}

	switch req.Method {
	case "initialize":
		return t.handleInitialize(req)
	case "initialized":
		// Notification - no response needed
		return nil
	case "shutdown":
		return t.handleShutdown(req)
	case "exit":
		fmt.Fprintf(os.Stderr, "Transport: Received exit command, calling server shutdown...\n")
		t.server.Shutdown()
		os.Exit(0)
		return nil
	case "tools/list":
		return t.handleToolsList(req)
	case "tools/call":
		return t.handleToolCall(req)
	default:
		return t.handleDirectMethod(req)
	}
}

// handleInitialize handles the MCP initialize request
func (t *MCPTransport) handleInitialize(req JSONRPCRequest) *JSONRPCResponse {
	type InitParams struct {
		ProtocolVersion string `json:"protocolVersion"`
		ClientInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"clientInfo,omitempty"`
	}

	var params InitParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &JSONRPCError{
					Code:    InvalidParams,
					Message: "Invalid params",
					Data:    err.Error(),
				},
			}
		}
	}

	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{
				"listChanged": false,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    "taskwise",
			"version": "1.0.0",
		},
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// updateActivity updates the last activity timestamp
func (t *MCPTransport) updateActivity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = time.Now()
}

// shouldTimeout checks if the connection should timeout based on inactivity
func (t *MCPTransport) shouldTimeout() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.lastActivity) > 10*time.Minute
}

// setConnected sets the connection status
func (t *MCPTransport) setConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// handleShutdown handles the MCP shutdown request
func (t *MCPTransport) handleShutdown(req JSONRPCRequest) *JSONRPCResponse {
	t.setConnected(false)
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  nil,
	}
}

// handleDirectMethod dispatches taskwise.* method calls straight to the
// server, bypassing the tools/call envelope.
func (t *MCPTransport) handleDirectMethod(req JSONRPCRequest) *JSONRPCResponse {
	result, err := t.server.HandleCommand(req.Method, req.Params)
	if err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &JSONRPCError{
				Code:    MethodNotFound,
				Message: err.Error(),
			},
		}
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleToolsList handles MCP tools list requests
func (t *MCPTransport) handleToolsList(req JSONRPCRequest) *JSONRPCResponse {
	projectPathProp := map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the project root",
	}

	tools := []map[string]interface{}{
		{
			"name":        "taskwise_analyze_project",
			"description": "Analyze a project's structure and recommend mise tasks it should declare",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProp,
				},
				"required": []string{"projectPath"},
			},
		},
		{
			"name":        "taskwise_trace_task_chain",
			"description": "Trace a task's dependency chain: execution order, parallel groups, and dependents",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProp,
					"taskName":    map[string]interface{}{"type": "string", "description": "Full task name, e.g. build:app"},
				},
				"required": []string{"projectPath", "taskName"},
			},
		},
		{
			"name":        "taskwise_create_task",
			"description": "Create a new task from a natural-language description, placed by domain and complexity",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath":     projectPathProp,
					"taskDescription": map[string]interface{}{"type": "string", "description": "What the task should do"},
					"suggestedName":   map[string]interface{}{"type": "string", "description": "Preferred leaf name"},
					"forceComplexity": map[string]interface{}{"type": "string", "enum": []string{"simple", "moderate", "complex"}, "description": "Override classified complexity"},
					"domainHint":      map[string]interface{}{"type": "string", "description": "Force a domain, e.g. build or test"},
				},
				"required": []string{"projectPath", "taskDescription"},
			},
		},
		{
			"name":        "taskwise_validate_architecture",
			"description": "Validate the task graph: cycles, dangling dependencies, naming and domain issues",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProp,
				},
				"required": []string{"projectPath"},
			},
		},
		{
			"name":        "taskwise_prune_tasks",
			"description": "Find redundant tasks, optionally removing them when dryRun is false",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProp,
					"dryRun":      map[string]interface{}{"type": "boolean", "description": "Report candidates without removing (default true)"},
				},
				"required": []string{"projectPath"},
			},
		},
		{
			"name":        "taskwise_remove_task",
			"description": "Remove a task and report which tasks still depend on it",
			"inputSchema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"projectPath": projectPathProp,
					"taskName":    map[string]interface{}{"type": "string", "description": "Full task name, e.g. build:app"},
				},
				"required": []string{"projectPath", "taskName"},
			},
		},
		// Static guidance tools: no parameters, no project access
		{
			"name":        "taskwise_get_task_recommendations",
			"description": "General best practices for mise task organization",
			"inputSchema": map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "additionalProperties": false},
		},
		{
			"name":        "taskwise_get_mise_architecture_rules",
			"description": "The architectural rules and domain patterns this engine follows",
			"inputSchema": map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "additionalProperties": false},
		},
		{
			"name":        "taskwise_mise_task_expert_guidance",
			"description": "Expert tips, troubleshooting advice, and migration strategies",
			"inputSchema": map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "additionalProperties": false},
		},
		{
			"name":        "taskwise_task_chain_analyst",
			"description": "Techniques for analyzing and optimizing task execution chains",
			"inputSchema": map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "additionalProperties": false},
		},
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": tools,
		},
	}
}

// handleToolCall handles MCP tool calls
func (t *MCPTransport) handleToolCall(req JSONRPCRequest) *JSONRPCResponse {
	type ToolCallParams struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments,omitempty"`
	}

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &JSONRPCError{
				Code:    InvalidParams,
				Message: "Invalid params",
				Data:    err.Error(),
			},
		}
	}

	var argsJSON json.RawMessage
	if params.Arguments != nil {
		var err error
		argsJSON, err = json.Marshal(params.Arguments)
		if err != nil {
			return &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &JSONRPCError{
					Code:    InternalError,
					Message: "Failed to serialize arguments",
					Data:    err.Error(),
				},
			}
		}
	}

	// Map MCP tool names back to internal command names
	var commandName string
	switch params.Name {
	case "taskwise_analyze_project":
		commandName = "taskwise.analyze_project"
	case "taskwise_trace_task_chain":
		commandName = "taskwise.trace_task_chain"
	case "taskwise_create_task":
		commandName = "taskwise.create_task"
	case "taskwise_validate_architecture":
		commandName = "taskwise.validate_architecture"
	case "taskwise_prune_tasks":
		commandName = "taskwise.prune_tasks"
	case "taskwise_remove_task":
		commandName = "taskwise.remove_task"
	case "taskwise_get_task_recommendations":
		commandName = "taskwise.get_task_recommendations"
	case "taskwise_get_mise_architecture_rules":
		commandName = "taskwise.get_mise_architecture_rules"
	case "taskwise_mise_task_expert_guidance":
		commandName = "taskwise.mise_task_expert_guidance"
	case "taskwise_task_chain_analyst":
		commandName = "taskwise.task_chain_analyst"
	default:
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &JSONRPCError{
				Code:    MethodNotFound,
				Message: fmt.Sprintf("Unknown tool: %s", params.Name),
			},
		}
	}

	result, err := t.server.HandleCommand(commandName, argsJSON)
	if err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &JSONRPCError{
				Code:    InternalError,
				Message: err.Error(),
			},
		}
	}

	// Return result in MCP tool call format
	var textContent string
	if str, ok := result.(string); ok {
		textContent = str
	} else {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &JSONRPCError{
					Code:    InternalError,
					Message: "Failed to serialize result",
					Data:    err.Error(),
				},
			}
		}
		textContent = string(resultJSON)
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": textContent,
				},
			},
		},
	}
}

// sendResponse sends a JSON-RPC response to stdout
func (t *MCPTransport) sendResponse(response *JSONRPCResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	return nil
}
