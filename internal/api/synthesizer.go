package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Synthesizer rewrites a specialist reply into the final customer answer.
type Synthesizer struct {
	runner *Runner
}

// NewSynthesizer creates a synthesizer backed by runner.
func NewSynthesizer(runner *Runner) *Synthesizer {
	return &Synthesizer{runner: runner}
}

// Synthesize returns the polished answer to question.
func (s *Synthesizer) Synthesize(ctx context.Context, question, reply string) (string, error) {
	out, err := s.runner.RunWithSystem(ctx, "", fmt.Sprintf(synthesisPrompt, question, reply))
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("synthesize: empty response")
	}
	return out, nil
}

// Messenger produces the handoff message for escalated conversations.
type Messenger struct {
	runner *Runner
}

// NewMessenger creates a messenger backed by runner.
func NewMessenger(runner *Runner) *Messenger {
	return &Messenger{runner: runner}
}

// Escalate returns an empathetic handoff acknowledgement.
func (m *Messenger) Escalate(ctx context.Context, task, history string) (string, error) {
	out, err := m.runner.RunWithSystem(ctx, "", fmt.Sprintf(escalationPrompt, task, history))
	if err != nil {
		return "", fmt.Errorf("escalate: %w", err)
	}
	return strings.TrimSpace(out), nil
}
