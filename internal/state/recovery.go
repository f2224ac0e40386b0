package state

import (
	"fmt"
	"time"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// InterruptedConversation is a conversation that stopped mid-turn: it is
// neither waiting on the customer nor finished.
type InterruptedConversation struct {
	ConversationID string
	Question       string
	Iteration      int
	LastActivity   time.Time
}

// RecoveryManager handles detection and recovery of interrupted conversations.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a new RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted lists active conversations that have not been
// updated for at least staleAfter.
func (rm *RecoveryManager) CheckForInterrupted(staleAfter time.Duration) ([]InterruptedConversation, error) {
	status := models.StatusActive
	convs, err := rm.db.ListConversations(&status, 0)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	cutoff := time.Now().Add(-staleAfter)
	var out []InterruptedConversation
	for _, c := range convs {
		if c.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, InterruptedConversation{
			ConversationID: c.ID,
			Question:       c.Question,
			Iteration:      c.Iteration,
			LastActivity:   c.UpdatedAt,
		})
	}
	return out, nil
}

// Resume loads an interrupted conversation so the caller can continue the
// routing loop from its saved state.
func (rm *RecoveryManager) Resume(id string) (*models.ConversationState, error) {
	s, err := rm.db.GetConversation(id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if s.IsTerminal() {
		return nil, fmt.Errorf("conversation %s is already %s", id, s.Status())
	}
	return s, nil
}

// Clean deletes an interrupted conversation.
func (rm *RecoveryManager) Clean(id string) error {
	if _, err := rm.db.GetConversation(id); err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	return rm.db.DeleteConversation(id)
}
