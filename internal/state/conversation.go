package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// ConversationSummary is the listing view of a saved conversation.
type ConversationSummary struct {
	ID        string                    `json:"id"`
	Question  string                    `json:"question"`
	Status    models.ConversationStatus `json:"status"`
	Iteration int                       `json:"iteration"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// SaveConversation inserts or replaces the stored state of a conversation.
func (db *DB) SaveConversation(s *models.ConversationState) error {
	if s == nil || s.ID == "" {
		return errors.New("save conversation: missing id")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = db.Exec(`
		INSERT INTO conversations (id, question, status, iteration, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			iteration = excluded.iteration,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, s.ID, s.Question, string(s.Status()), s.IterationCount, string(data),
		formatTime(s.CreatedAt), formatTime(updated))
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// GetConversation loads a conversation by ID.
// Returns ErrNotFound if no conversation has that ID.
func (db *DB) GetConversation(id string) (*models.ConversationState, error) {
	var data string
	err := db.QueryRow(`SELECT state FROM conversations WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	var s models.ConversationState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &s, nil
}

// ListConversations lists conversations, most recently updated first,
// optionally filtered by status. A limit of zero or less returns all rows.
func (db *DB) ListConversations(status *models.ConversationStatus, limit int) ([]ConversationSummary, error) {
	query := `SELECT id, question, status, iteration, created_at, updated_at FROM conversations`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY updated_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []ConversationSummary
	for rows.Next() {
		var c ConversationSummary
		var created, updated string
		if err := rows.Scan(&c.ID, &c.Question, &c.Status, &c.Iteration, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedAt, _ = parseTime(created)
		c.UpdatedAt, _ = parseTime(updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConversation deletes a conversation by ID.
func (db *DB) DeleteConversation(id string) error {
	_, err := db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
