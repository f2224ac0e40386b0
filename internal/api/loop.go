package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultMaxToolCalls bounds the lookups executed for one reply.
const DefaultMaxToolCalls = 8

// ToolLoop runs one tool round: the model may request lookups, they are
// executed, and a single follow-up produces the final text. The loop never
// recurses into a second round of tool calls.
type ToolLoop struct {
	runner   *Runner
	executor ToolExecutor
	onStream func(StreamEvent)
	maxCalls int
}

// StreamEvent represents a step of a tool round for streaming to a UI.
type StreamEvent struct {
	Type    string // "text", "tool_use", "tool_result", "ask_user", "done", "error"
	Content string
	Tool    string
	Input   json.RawMessage
}

// LoopResult contains the outcome of a tool round.
type LoopResult struct {
	Result    *Result
	ToolCalls int
	Skipped   int
}

// NewToolLoop creates a loop that executes lookups through executor.
func NewToolLoop(runner *Runner, executor ToolExecutor) *ToolLoop {
	return &ToolLoop{
		runner:   runner,
		executor: executor,
		maxCalls: DefaultMaxToolCalls,
	}
}

// SetStreamHandler sets a callback for streaming events during execution.
func (l *ToolLoop) SetStreamHandler(fn func(StreamEvent)) {
	l.onStream = fn
}

// SetMaxCalls overrides the per-round tool call cap.
func (l *ToolLoop) SetMaxCalls(n int) {
	if n > 0 {
		l.maxCalls = n
	}
}

func (l *ToolLoop) emit(event StreamEvent) {
	if l.onStream != nil {
		l.onStream(event)
	}
}

// Run executes the round. A text or ask_user first response is returned as
// is. Calls beyond the cap are answered with an error payload so the model
// still sees a result for every call it made.
func (l *ToolLoop) Run(ctx context.Context, req Request) (*LoopResult, error) {
	first, err := l.runner.Call(ctx, req)
	if err != nil {
		l.emit(StreamEvent{Type: "error", Content: err.Error()})
		return nil, err
	}

	out := &LoopResult{Result: first}
	switch first.Kind {
	case ResultAskUser:
		l.emit(StreamEvent{Type: "ask_user", Content: first.Ask.Question})
		return out, nil
	case ResultText:
		l.emit(StreamEvent{Type: "text", Content: first.Text})
		l.emit(StreamEvent{Type: "done"})
		return out, nil
	}

	outputs := make([]ToolOutput, 0, len(first.Calls))
	for i, call := range first.Calls {
		l.emit(StreamEvent{Type: "tool_use", Tool: call.Name, Input: call.Input})

		var res ToolResult
		if i >= l.maxCalls {
			res = ErrorResult(fmt.Errorf("tool call limit (%d) reached", l.maxCalls))
			out.Skipped++
		} else {
			res = l.execute(ctx, call)
			out.ToolCalls++
		}

		l.emit(StreamEvent{Type: "tool_result", Tool: call.Name, Content: truncate(res.Content, 500)})
		outputs = append(outputs, ToolOutput{
			CallID:  call.ID,
			Name:    call.Name,
			Content: res.Content,
			IsError: res.IsError,
		})
	}

	final, err := l.runner.FollowUp(ctx, req, first, outputs)
	if err != nil {
		l.emit(StreamEvent{Type: "error", Content: err.Error()})
		return out, err
	}
	out.Result = final
	l.emit(StreamEvent{Type: "text", Content: final.Text})
	l.emit(StreamEvent{Type: "done"})
	return out, nil
}

func (l *ToolLoop) execute(ctx context.Context, call ToolCall) ToolResult {
	if l.executor == nil {
		return ErrorResult(fmt.Errorf("tool '%s' not implemented", call.Name))
	}
	return l.executor.Execute(ctx, call.Name, call.Input)
}
