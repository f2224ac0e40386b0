package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// ResultKind discriminates a model response.
type ResultKind string

const (
	// ResultText is a plain text answer.
	ResultText ResultKind = "text"
	// ResultToolCalls asks the host to run one or more tools.
	ResultToolCalls ResultKind = "tool_calls"
	// ResultAskUser asks the customer for missing information.
	ResultAskUser ResultKind = "ask_user"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolOutput is the host's answer to a ToolCall.
type ToolOutput struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

// Request is a single model exchange.
type Request struct {
	System string
	Prompt string
	// Tools are the capabilities offered in the first phase.
	Tools []ToolSpec
	// AllowAsk offers the ask_user tool.
	AllowAsk bool
}

// Result is the structured reading of a model response.
type Result struct {
	Kind  ResultKind
	Text  string
	Calls []ToolCall
	Ask   *models.PendingQuestion

	// messages is the exchange so far, kept for the follow-up phase.
	messages []anthropic.MessageParam
}

// Runner performs model calls through a Client.
type Runner struct {
	client *Client
}

// NewRunner creates a new API runner.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Call performs the first phase of an exchange: the prompt goes out with the
// offered tools and the response is classified as text, tool calls, or a
// clarification request.
func (r *Runner) Call(ctx context.Context, req Request) (*Result, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
	}

	params := r.params(req, messages)
	params.Tools = toolParams(req)

	resp, err := r.client.sdk().Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}
	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	res, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	res.messages = append(messages, resp.ToParam())
	return res, nil
}

// FollowUp performs the second and final phase: tool outputs are sent back
// and the model must answer in text. Tools stay declared so the history is
// valid, but the model may not call them again.
func (r *Runner) FollowUp(ctx context.Context, req Request, first *Result, outputs []ToolOutput) (*Result, error) {
	if first == nil || first.Kind != ResultToolCalls {
		return nil, errors.New("follow-up requires a tool call result")
	}

	blocks := make([]anthropic.ContentBlockParamUnion, len(outputs))
	for i, o := range outputs {
		blocks[i] = anthropic.NewToolResultBlock(o.CallID, o.Content, o.IsError)
	}
	messages := append(append([]anthropic.MessageParam(nil), first.messages...), anthropic.NewUserMessage(blocks...))

	params := r.params(req, messages)
	params.Tools = toolParams(req)
	params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}

	resp, err := r.client.sdk().Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("API follow-up failed: %w", err)
	}
	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty follow-up response")
	}
	return &Result{Kind: ResultText, Text: text}, nil
}

// RunWithSystem executes a prompt with a system message and returns the text.
func (r *Runner) RunWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	res, err := r.Call(ctx, Request{System: systemPrompt, Prompt: userPrompt})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (r *Runner) params(req Request, messages []anthropic.MessageParam) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: r.client.maxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params
}

// parseResponse classifies a first-phase response. A clarification request
// wins over other tool calls.
func parseResponse(resp *anthropic.Message) (*Result, error) {
	res := &Result{Kind: ResultText}
	var text strings.Builder

	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)

		case anthropic.ToolUseBlock:
			if variant.Name == AskUserTool {
				var ask models.PendingQuestion
				if err := json.Unmarshal(variant.Input, &ask); err != nil {
					return nil, fmt.Errorf("parse ask_user input: %w", err)
				}
				res.Ask = &ask
				continue
			}
			res.Calls = append(res.Calls, ToolCall{ID: variant.ID, Name: variant.Name, Input: variant.Input})
		}
	}

	res.Text = text.String()
	switch {
	case res.Ask != nil:
		res.Kind = ResultAskUser
	case len(res.Calls) > 0:
		res.Kind = ResultToolCalls
	}
	return res, nil
}

func responseText(resp *anthropic.Message) string {
	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}
	return result.String()
}

// extractJSON returns the outermost JSON object in a model response.
func extractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no valid JSON found in response: %s", truncate(response, 200))
	}
	return response[start : end+1], nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
