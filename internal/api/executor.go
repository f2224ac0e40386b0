package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolExecutor executes tool calls requested by the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) ToolResult
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

// ExecutorFunc adapts a function to the ToolExecutor interface.
type ExecutorFunc func(ctx context.Context, name string, input json.RawMessage) ToolResult

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, name string, input json.RawMessage) ToolResult {
	return f(ctx, name, input)
}

// JSONResult encodes v as the tool output.
func JSONResult(v any) ToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrorResult(fmt.Errorf("encode result: %w", err))
	}
	return ToolResult{Content: string(data)}
}

// ErrorResult reports a failed tool call to the model as {"error": "..."}.
func ErrorResult(err error) ToolResult {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return ToolResult{Content: string(data), IsError: true}
}
