// Package specialist maps agent names to the handlers that answer for them.
package specialist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/coverdesk/internal/api"
	"github.com/ShayCichocki/coverdesk/internal/faq"
	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// Lookup names the record lookups a specialist may call.
const (
	LookupPolicyDetails     = "get_policy_details"
	LookupAutoPolicyDetails = "get_auto_policy_details"
	LookupBillingInfo       = "get_billing_info"
	LookupPaymentHistory    = "get_payment_history"
	LookupClaimStatus       = "get_claim_status"
)

// Request is what a specialist receives when dispatched.
type Request struct {
	// Task is the routing task description.
	Task string
	// Question is the user's original question.
	Question    string
	Identifiers models.Identifiers
	// History is the rendered conversation history.
	History string
}

// Specialist answers one domain of questions.
type Specialist interface {
	Handle(ctx context.Context, req Request) (string, error)
}

// HandlerFunc adapts a function to the Specialist interface.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Definition is the static description of one specialist.
type Definition struct {
	Name    models.AgentName
	Role    models.Role
	Lookups []string
	// Description is shown to the intent classifier.
	Description string
}

// Definitions lists every specialist in routing order.
var Definitions = []Definition{
	{
		Name:        models.AgentPolicy,
		Role:        models.RolePolicy,
		Lookups:     []string{LookupPolicyDetails, LookupAutoPolicyDetails},
		Description: "Handles policy coverage, limits, deductibles and vehicle details.",
	},
	{
		Name:        models.AgentBilling,
		Role:        models.RoleBilling,
		Lookups:     []string{LookupBillingInfo, LookupPaymentHistory},
		Description: "Handles premiums, invoices, due dates, balances and payment history.",
	},
	{
		Name:        models.AgentClaims,
		Role:        models.RoleClaims,
		Lookups:     []string{LookupClaimStatus},
		Description: "Handles claim filing and claim status questions.",
	},
	{
		Name:        models.AgentGeneralHelp,
		Role:        models.RoleGeneralHelp,
		Description: "Handles general insurance questions using the FAQ knowledge base.",
	},
	{
		Name:        models.AgentHumanEscalation,
		Role:        models.RoleEscalation,
		Description: "Hands the conversation to a human representative.",
	},
}

// Entry binds a definition to its handler.
type Entry struct {
	Definition
	Handler Specialist
}

// Allows reports whether the entry may call the named lookup.
func (e Entry) Allows(lookup string) bool {
	for _, l := range e.Lookups {
		if l == lookup {
			return true
		}
	}
	return false
}

// Table is the dispatch table from agent name to specialist.
type Table struct {
	entries map[models.AgentName]Entry
}

// NewTable builds a table from the static definitions and the given handlers.
// A general help handler is required since every unknown name resolves to it.
func NewTable(handlers map[models.AgentName]Specialist) (*Table, error) {
	if handlers[models.AgentGeneralHelp] == nil {
		return nil, fmt.Errorf("general help handler is required")
	}

	t := &Table{entries: make(map[models.AgentName]Entry, len(Definitions))}
	for _, def := range Definitions {
		t.entries[def.Name] = Entry{Definition: def, Handler: handlers[def.Name]}
	}
	return t, nil
}

// Resolve returns the entry for name, falling back to general help for
// unknown names or names without a handler.
func (t *Table) Resolve(name models.AgentName) Entry {
	if e, ok := t.entries[name]; ok && e.Handler != nil {
		return e
	}
	return t.entries[models.AgentGeneralHelp]
}

// Dispatch resolves name and invokes its handler.
// The resolved entry is returned even when the handler fails.
func (t *Table) Dispatch(ctx context.Context, name models.AgentName, req Request) (Entry, string, error) {
	e := t.Resolve(name)
	reply, err := e.Handler.Handle(ctx, req)
	if err != nil {
		return e, "", fmt.Errorf("%s: %w", e.Name, err)
	}
	return e, reply, nil
}

// DefinitionFor returns the static definition for name.
func DefinitionFor(name models.AgentName) (Definition, bool) {
	for _, d := range Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// NewDefaultTable builds the table with the model-backed specialists.
// Escalation has no handler since the router escalates directly.
func NewDefaultTable(runner *api.Runner, store RecordStore, searcher faq.Searcher, topK int, logger *zap.Logger) (*Table, error) {
	handlers := map[models.AgentName]Specialist{
		models.AgentGeneralHelp: NewGeneralHelp(runner, searcher, topK, logger),
	}
	for _, name := range []models.AgentName{models.AgentPolicy, models.AgentBilling, models.AgentClaims} {
		s, err := NewRecordSpecialist(runner, store, name, logger)
		if err != nil {
			return nil, err
		}
		handlers[name] = s
	}
	return NewTable(handlers)
}

// AgentOptions lists the routing targets for the intent classifier.
func AgentOptions() []api.AgentOption {
	out := make([]api.AgentOption, len(Definitions))
	for i, d := range Definitions {
		out[i] = api.AgentOption{Name: d.Name, Description: d.Description}
	}
	return out
}
