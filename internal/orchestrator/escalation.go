package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/coverdesk/internal/deadline"
	"github.com/ShayCichocki/coverdesk/internal/router"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// DefaultEscalationMessage is sent when no messenger is available or the
// messenger fails. It acknowledges the request and promises human follow-up.
const DefaultEscalationMessage = "I understand this has been frustrating, and I'm sorry we couldn't resolve it here. " +
	"I've passed your conversation to a member of our customer care team, and a human representative will join shortly to help you."

// EscalationMessenger writes the hand-off message for an escalated conversation.
type EscalationMessenger interface {
	Escalate(ctx context.Context, task, history string) (string, error)
}

// EscalationRequest describes why a conversation is being handed off.
type EscalationRequest struct {
	// Task is the routing task, or the forced-escalation reason.
	Task string
	// History is the rendered conversation so far.
	History string
	// Forced is true when the iteration budget triggered the escalation.
	Forced bool
}

// EscalationHandler produces the terminal hand-off message.
// It never re-enters routing.
type EscalationHandler struct {
	messenger EscalationMessenger
	timeout   time.Duration
}

// NewEscalationHandler creates an escalation handler. A nil messenger always
// produces DefaultEscalationMessage.
func NewEscalationHandler(messenger EscalationMessenger, timeout time.Duration) *EscalationHandler {
	return &EscalationHandler{messenger: messenger, timeout: timeout}
}

// RequestFor builds the escalation request for an action on s.
func RequestFor(s *models.ConversationState, a models.Action) EscalationRequest {
	task := a.Task
	if task == "" {
		task = a.Reason
	}
	if task == "" {
		task = "Escalate the conversation to a human representative"
	}
	return EscalationRequest{
		Task:    task,
		History: s.HistoryText(),
		Forced:  a.Reason == router.ReasonMaxIterations,
	}
}

// Message returns the hand-off message. The returned error reports a
// messenger failure; the message is always usable.
func (h *EscalationHandler) Message(ctx context.Context, req EscalationRequest) (string, error) {
	if h.messenger == nil {
		return DefaultEscalationMessage, nil
	}

	msg, err := deadline.Run(ctx, h.timeout, func(ctx context.Context) (string, error) {
		return h.messenger.Escalate(ctx, req.Task, req.History)
	})
	if err != nil {
		return DefaultEscalationMessage, fmt.Errorf("escalation messenger: %w", err)
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return DefaultEscalationMessage, errors.New("escalation messenger returned an empty message")
	}
	return msg, nil
}
