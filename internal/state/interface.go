package state

import (
	"io"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// ConversationStore handles conversation persistence operations.
type ConversationStore interface {
	SaveConversation(s *models.ConversationState) error
	GetConversation(id string) (*models.ConversationState, error)
	ListConversations(status *models.ConversationStatus, limit int) ([]ConversationSummary, error)
	DeleteConversation(id string) error
}

// RecordStore handles the customer record lookups used by specialists.
type RecordStore interface {
	GetPolicyDetails(policyNumber string) (*PolicyDetails, error)
	GetAutoPolicyDetails(policyNumber string) (*AutoPolicyDetails, error)
	GetBillingInfo(policyNumber, customerID string) (*BillingInfo, error)
	GetPaymentHistory(policyNumber string) ([]Payment, error)
	GetClaimStatus(claimID, policyNumber string) (*Claim, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// StateStore composes every persistence capability.
type StateStore interface {
	io.Closer
	Migrator
	ConversationStore
	RecordStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore        = (*DB)(nil)
	_ ConversationStore = (*DB)(nil)
	_ RecordStore       = (*DB)(nil)
)
