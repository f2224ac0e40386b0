package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// AgentOption is one routing target offered to the classifier.
type AgentOption struct {
	Name        models.AgentName
	Description string
}

// classification is the JSON structure returned by the model.
type classification struct {
	NextAgent     string `json:"next_agent"`
	Task          string `json:"task"`
	Justification string `json:"justification"`
}

// Classifier decides the next step of a conversation with the model.
type Classifier struct {
	runner *Runner
	agents []AgentOption
}

// NewClassifier creates a classifier that routes among agents.
func NewClassifier(runner *Runner, agents []AgentOption) *Classifier {
	return &Classifier{runner: runner, agents: agents}
}

// Classify returns either a clarification request or a routing decision.
func (c *Classifier) Classify(ctx context.Context, history string) (*models.Classification, error) {
	res, err := c.runner.Call(ctx, Request{
		System:   fmt.Sprintf(classifierPrompt, c.roster()),
		Prompt:   fmt.Sprintf(classifierInput, history),
		AllowAsk: true,
	})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	if res.Kind == ResultAskUser {
		if strings.TrimSpace(res.Ask.Question) == "" {
			return nil, fmt.Errorf("classify: ask_user without a question")
		}
		return &models.Classification{Ask: res.Ask}, nil
	}

	return parseClassification(res.Text)
}

func (c *Classifier) roster() string {
	var sb strings.Builder
	for _, a := range c.agents {
		fmt.Fprintf(&sb, "- %s: %s\n", a.Name, a.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseClassification reads the routing JSON out of a model reply.
func parseClassification(text string) (*models.Classification, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parse classification: %w", err)
	}

	var out classification
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse classification: %w", err)
	}
	if strings.TrimSpace(out.NextAgent) == "" {
		return nil, fmt.Errorf("parse classification: missing next_agent")
	}

	return &models.Classification{
		NextAgent:     models.AgentName(strings.TrimSpace(out.NextAgent)),
		Task:          out.Task,
		Justification: out.Justification,
	}, nil
}
