package orchestrator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

var (
	// ErrReplyRequired is returned when a conversation waiting on a
	// clarification is processed without a reply.
	ErrReplyRequired = errors.New("conversation is awaiting a user reply")

	// ErrNilState is returned when ProcessTurn is called without a state.
	ErrNilState = errors.New("conversation state is nil")

	errEmptyReply = errors.New("specialist returned an empty reply")
)

// FailureKind classifies a recovered failure.
// None of these escape ProcessTurn; they are logged and handled in place.
type FailureKind string

const (
	// FailureClassification means the intent classifier failed or returned
	// something unusable. Routing falls back to general help.
	FailureClassification FailureKind = "classification_failure"
	// FailureToolExecution means a specialist call failed or timed out.
	// The user sees an "unable to retrieve" reply instead.
	FailureToolExecution FailureKind = "tool_execution_failure"
	// FailureIterationBudget means the routing budget ran out and the
	// conversation was escalated.
	FailureIterationBudget FailureKind = "iteration_budget_exceeded"
	// FailureMalformedReply means a clarification reply carried no identifier.
	// Routing continues and may ask again.
	FailureMalformedReply FailureKind = "malformed_user_reply"
	// FailureSynthesis means the final answer could not be generated.
	// The raw specialist reply is used instead.
	FailureSynthesis FailureKind = "synthesis_failure"
	// FailureEscalationMessage means the hand-off message could not be
	// generated. The standard message is used instead.
	FailureEscalationMessage FailureKind = "escalation_message_failure"
)

// failureNotice is the reply recorded in history when a specialist fails.
// It always contains "unable to retrieve" so the completion detector never
// reads it as an answer.
func failureNotice(role models.Role, err error) string {
	return fmt.Sprintf("I was unable to retrieve the information you asked for (%s): %v", role, err)
}

// recordFailure logs a recovered failure. Iteration budget exhaustion is
// logged at warn level so it is always visible.
func (o *Orchestrator) recordFailure(s *models.ConversationState, kind FailureKind, err error) {
	fields := []zap.Field{
		zap.String("conversation", s.ID),
		zap.String("failure", string(kind)),
		zap.Int("iteration", s.IterationCount),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	switch kind {
	case FailureIterationBudget, FailureToolExecution:
		o.logger.Warn("recovered failure", fields...)
	default:
		o.logger.Info("recovered failure", fields...)
	}

	o.emit(Event{
		Type:           EventFailure,
		ConversationID: s.ID,
		Iteration:      s.IterationCount,
		Failure:        kind,
		Err:            err,
	})
}
