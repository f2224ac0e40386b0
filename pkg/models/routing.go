package models

// AgentName identifies a specialist handler.
type AgentName string

const (
	AgentPolicy          AgentName = "policy_agent"
	AgentBilling         AgentName = "billing_agent"
	AgentClaims          AgentName = "claims_agent"
	AgentGeneralHelp     AgentName = "general_help_agent"
	AgentHumanEscalation AgentName = "human_escalation_agent"

	// AgentEnd is the classifier's way of saying the conversation is resolved.
	AgentEnd AgentName = "end"
)

// Valid returns true if the name is one of the five specialists.
func (n AgentName) Valid() bool {
	switch n {
	case AgentPolicy, AgentBilling, AgentClaims, AgentGeneralHelp, AgentHumanEscalation:
		return true
	default:
		return false
	}
}

// ActionKind is what the router decided to do next.
type ActionKind string

const (
	ActionAskUser  ActionKind = "ask_user"
	ActionDispatch ActionKind = "dispatch"
	ActionFinalize ActionKind = "finalize"
	ActionEscalate ActionKind = "escalate"
)

// Terminal reports whether the action ends the conversation.
func (k ActionKind) Terminal() bool {
	return k == ActionFinalize || k == ActionEscalate
}

// Action is a single routing decision.
type Action struct {
	Kind          ActionKind `json:"kind"`
	Target        AgentName  `json:"target,omitempty"`
	Task          string     `json:"task,omitempty"`
	Justification string     `json:"justification,omitempty"`
	Question      string     `json:"question,omitempty"`
	MissingInfo   string     `json:"missing_info,omitempty"`
	Reason        string     `json:"reason,omitempty"`

	// Classified is true when the intent classifier chose this action.
	Classified bool `json:"classified,omitempty"`
}

// Classification is the intent classifier's answer: either a clarification
// request (Ask is non-nil) or a routing choice.
type Classification struct {
	Ask           *PendingQuestion `json:"ask,omitempty"`
	NextAgent     AgentName        `json:"next_agent,omitempty"`
	Task          string           `json:"task,omitempty"`
	Justification string           `json:"justification,omitempty"`
}
