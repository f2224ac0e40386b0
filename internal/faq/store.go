package faq

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ShayCichocki/coverdesk/internal/state"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9]*`)

// stopWords are dropped from search queries.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "will": true,
	"with": true, "not": true, "but": true, "you": true, "your": true,
	"can": true, "do": true, "does": true, "did": true, "my": true,
	"me": true, "what": true, "how": true, "why": true, "when": true,
	"which": true, "who": true, "would": true, "could": true, "should": true,
	"about": true, "tell": true, "please": true, "there": true, "any": true,
}

// Store is the FTS5-backed FAQ table.
type Store struct {
	db *state.DB
}

// NewStore creates a store over a migrated database.
func NewStore(db *state.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts entries, replacing the answer of any existing question.
func (s *Store) Upsert(entries []Entry) (int, error) {
	var n int
	err := s.db.Transaction(func(tx *sql.Tx) error {
		var err error
		n, err = upsert(tx, entries)
		return err
	})
	return n, err
}

// Replace swaps the whole FAQ set for entries.
func (s *Store) Replace(entries []Entry) (int, error) {
	var n int
	err := s.db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM faqs`); err != nil {
			return fmt.Errorf("clear faqs: %w", err)
		}
		var err error
		n, err = upsert(tx, entries)
		return err
	})
	return n, err
}

func upsert(tx *sql.Tx, entries []Entry) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO faqs (question, answer, category, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(question) DO UPDATE SET
				answer = excluded.answer,
				category = excluded.category,
				updated_at = excluded.updated_at
		`, e.Question, e.Answer, e.Category, now)
		if err != nil {
			return 0, fmt.Errorf("upsert faq %q: %w", e.Question, err)
		}
	}
	return len(entries), nil
}

// Count returns the number of stored FAQs.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM faqs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count faqs: %w", err)
	}
	return n, nil
}

// Search returns up to topK FAQs matching any keyword of query, best first.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	match := MatchExpression(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT f.question, f.answer, f.category, bm25(faqs_fts) AS score
		FROM faqs_fts
		JOIN faqs f ON f.id = faqs_fts.rowid
		WHERE faqs_fts MATCH ?
		ORDER BY score
		LIMIT ?
	`, match, topK)
	if err != nil {
		return nil, fmt.Errorf("search faqs: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var raw float64
		if err := rows.Scan(&r.Question, &r.Answer, &r.Category, &raw); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		// bm25 is lower-is-better; flip it so callers sort descending.
		r.Score = -raw
		out = append(out, r)
	}
	return out, rows.Err()
}

// MatchExpression builds an FTS5 query that ORs the quoted keywords of text.
// Quoting keeps user punctuation from being read as FTS5 syntax.
func MatchExpression(text string) string {
	seen := make(map[string]bool)
	var terms []string
	for _, word := range wordPattern.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if len(lower) < 3 || stopWords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		terms = append(terms, `"`+lower+`"`)
	}
	return strings.Join(terms, " OR ")
}
