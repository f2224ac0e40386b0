package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role labels a history turn with its speaker.
type Role string

const (
	// RoleUser is the customer.
	RoleUser Role = "User"
	// RoleAssistant is the router speaking on its own behalf.
	RoleAssistant Role = "Assistant"
	// RolePolicy is the policy specialist.
	RolePolicy Role = "Policy Agent"
	// RoleBilling is the billing specialist.
	RoleBilling Role = "Billing Agent"
	// RoleClaims is the claims specialist.
	RoleClaims Role = "Claims Agent"
	// RoleGeneralHelp is the general help specialist.
	RoleGeneralHelp Role = "General Help Agent"
	// RoleEscalation is the human escalation specialist.
	RoleEscalation Role = "Human Escalation Agent"
)

// IsSpecialist reports whether r is one of the specialist labels.
func (r Role) IsSpecialist() bool {
	switch r {
	case RolePolicy, RoleBilling, RoleClaims, RoleGeneralHelp, RoleEscalation:
		return true
	default:
		return false
	}
}

// Turn is a single labeled message in the conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// String renders the turn as "Role: text".
func (t Turn) String() string {
	return string(t.Role) + ": " + t.Text
}

// PendingQuestion is the clarification the router is waiting on.
type PendingQuestion struct {
	Question    string `json:"question"`
	MissingInfo string `json:"missing_info"`
}

// Routing records the most recent routing decision.
type Routing struct {
	NextAction    ActionKind `json:"next_action,omitempty"`
	Target        AgentName  `json:"target,omitempty"`
	Task          string     `json:"task,omitempty"`
	Justification string     `json:"justification,omitempty"`
}

// Flags are the lifecycle flags of a conversation.
// EscalationRequired dominates the other two when set.
type Flags struct {
	AwaitingUserInput  bool `json:"awaiting_user_input"`
	ConversationEnded  bool `json:"conversation_ended"`
	EscalationRequired bool `json:"escalation_required"`
}

// ConversationState is the complete, serializable state of one conversation.
// Everything needed to resume a conversation lives here.
type ConversationState struct {
	ID             string           `json:"id"`
	Question       string           `json:"question"`
	History        []Turn           `json:"history"`
	Identifiers    Identifiers      `json:"identifiers"`
	IterationCount int              `json:"iteration_count"`
	Pending        *PendingQuestion `json:"pending,omitempty"`
	Routing        Routing          `json:"routing"`
	Flags          Flags            `json:"flags"`
	FinalAnswer    string           `json:"final_answer,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewConversation starts a conversation from the user's first question.
func NewConversation(question string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ID:        uuid.NewString(),
		Question:  question,
		History:   []Turn{{Role: RoleUser, Text: question}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a turn to the end of the history.
func (s *ConversationState) Append(role Role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text})
	s.UpdatedAt = time.Now().UTC()
}

// HistoryText renders the history as newline-joined "Role: text" lines.
func (s *ConversationState) HistoryText() string {
	lines := make([]string, len(s.History))
	for i, t := range s.History {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

// IsTerminal reports whether the conversation has ended or been escalated.
func (s *ConversationState) IsTerminal() bool {
	return s.Flags.ConversationEnded || s.Flags.EscalationRequired
}

// IsAwaiting reports whether the conversation is paused on a clarification.
func (s *ConversationState) IsAwaiting() bool {
	return !s.IsTerminal() && s.Flags.AwaitingUserInput && s.Pending != nil
}

// Status summarizes the lifecycle as a single word for display and storage.
func (s *ConversationState) Status() ConversationStatus {
	switch {
	case s.Flags.EscalationRequired:
		return StatusEscalated
	case s.Flags.ConversationEnded:
		return StatusResolved
	case s.Flags.AwaitingUserInput:
		return StatusAwaiting
	default:
		return StatusActive
	}
}

// Clone returns a deep copy of the state.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.History = append([]Turn(nil), s.History...)
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return &c
}

// ConversationStatus is the persisted lifecycle summary.
type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusAwaiting  ConversationStatus = "awaiting_user"
	StatusResolved  ConversationStatus = "resolved"
	StatusEscalated ConversationStatus = "escalated"
)
