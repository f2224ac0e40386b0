// Package router decides the next step of a conversation.
//
// Decisions follow a fixed priority list. The first five rules are pure
// functions of the conversation state; only when none of them applies is the
// intent classifier consulted.
package router

import (
	"github.com/ShayCichocki/coverdesk/internal/completion"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// DefaultMaxIterations bounds routing evaluations per conversation.
const DefaultMaxIterations = 5

// Fixed prompts and tasks used by the deterministic rules.
const (
	AskPolicyQuestion = "What is your policy number?"
	AskClaimQuestion  = "What is your claim ID?"
	MissingPolicy     = "policy number"
	MissingClaim      = "claim ID"

	ReasonMaxIterations = "max iterations reached"
	ReasonAnswered      = "specialist provided answer"
	ReasonClassifierEnd = "classifier marked the conversation resolved"

	BillingTask          = "Retrieve premium information"
	BillingJustification = "Policy number available"

	FallbackTask          = "Assist the user with their query."
	FallbackJustification = "intent classification unavailable"
)

// Evaluate applies the deterministic routing rules in priority order.
// It returns false when no rule matched and the classifier must decide.
func Evaluate(s *models.ConversationState, status completion.Status, maxIterations int) (models.Action, bool) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	switch {
	case s.IterationCount >= maxIterations:
		return models.Action{Kind: models.ActionEscalate, Reason: ReasonMaxIterations}, true

	case status == completion.NeedsPolicyNumber && !s.Identifiers.HasPolicy():
		return models.Action{
			Kind:        models.ActionAskUser,
			Question:    AskPolicyQuestion,
			MissingInfo: MissingPolicy,
		}, true

	case status == completion.NeedsClaimID && !s.Identifiers.HasClaim():
		return models.Action{
			Kind:        models.ActionAskUser,
			Question:    AskClaimQuestion,
			MissingInfo: MissingClaim,
		}, true

	case status == completion.Answered:
		return models.Action{Kind: models.ActionFinalize, Reason: ReasonAnswered}, true

	case s.Identifiers.HasPolicy() && !DispatchedSinceLastUser(s.History):
		return models.Action{
			Kind:          models.ActionDispatch,
			Target:        models.AgentBilling,
			Task:          BillingTask,
			Justification: BillingJustification,
		}, true
	}

	return models.Action{}, false
}

// DispatchedSinceLastUser reports whether a specialist has spoken after the
// most recent user turn.
func DispatchedSinceLastUser(history []models.Turn) bool {
	for i := len(history) - 1; i >= 0; i-- {
		switch {
		case history[i].Role == models.RoleUser:
			return false
		case history[i].Role.IsSpecialist():
			return true
		}
	}
	return false
}

// FallbackAction is the dispatch used when classification fails.
func FallbackAction() models.Action {
	return models.Action{
		Kind:          models.ActionDispatch,
		Target:        models.AgentGeneralHelp,
		Task:          FallbackTask,
		Justification: FallbackJustification,
	}
}

// FromClassification converts a classifier answer into an action.
// Unknown agents collapse to the general help fallback.
func FromClassification(c *models.Classification) models.Action {
	if c == nil {
		return FallbackAction()
	}

	if c.Ask != nil {
		if c.Ask.Question == "" {
			return FallbackAction()
		}
		return models.Action{
			Kind:        models.ActionAskUser,
			Question:    c.Ask.Question,
			MissingInfo: c.Ask.MissingInfo,
			Classified:  true,
		}
	}

	switch {
	case c.NextAgent == models.AgentHumanEscalation:
		return models.Action{
			Kind:          models.ActionEscalate,
			Target:        models.AgentHumanEscalation,
			Task:          c.Task,
			Justification: c.Justification,
			Reason:        c.Justification,
			Classified:    true,
		}
	case c.NextAgent == models.AgentEnd:
		return models.Action{Kind: models.ActionFinalize, Reason: ReasonClassifierEnd, Classified: true}
	case c.NextAgent.Valid():
		task := c.Task
		if task == "" {
			task = FallbackTask
		}
		return models.Action{
			Kind:          models.ActionDispatch,
			Target:        c.NextAgent,
			Task:          task,
			Justification: c.Justification,
			Classified:    true,
		}
	}

	a := FallbackAction()
	if c.Task != "" {
		a.Task = c.Task
	}
	a.Classified = true
	return a
}
