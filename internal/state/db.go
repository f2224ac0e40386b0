// Package state provides SQLite-based persistence for coverdesk: saved
// conversations, the customer record tables the specialists look up, and
// the FAQ knowledge base.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenWithDriver.
const (
	// DriverPure is the pure Go driver. It supports FTS5 out of the box.
	DriverPure = "sqlite"
	// DriverCGO is the cgo driver. FTS5 needs the sqlite_fts5 build tag.
	DriverCGO = "sqlite3"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps an SQLite database connection with coverdesk-specific operations.
type DB struct {
	conn   *sql.DB
	path   string
	driver string
	mu     sync.RWMutex
}

// DefaultDBPath returns the path to the default coverdesk database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "coverdesk", "coverdesk.db")
}

// Open opens an SQLite database at the given path with the pure Go driver.
func Open(path string) (*DB, error) {
	return OpenWithDriver(DriverPure, path)
}

// OpenWithDriver opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func OpenWithDriver(driver, path string) (*DB, error) {
	switch driver {
	case "":
		driver = DriverPure
	case DriverPure, DriverCGO:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{
		conn:   conn,
		path:   path,
		driver: driver,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Driver returns the name of the SQL driver in use.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Conversations},
		{2, migrationV2Records},
		{3, migrationV3FAQ},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Conversations = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	iteration INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_status ON conversations(status);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
`

const migrationV2Records = `
CREATE TABLE IF NOT EXISTS customers (
	customer_id TEXT PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	email TEXT,
	phone TEXT,
	date_of_birth TEXT,
	state TEXT
);

CREATE TABLE IF NOT EXISTS policies (
	policy_number TEXT PRIMARY KEY,
	customer_id TEXT REFERENCES customers(customer_id),
	policy_type TEXT,
	start_date TEXT,
	premium_amount REAL,
	billing_frequency TEXT,
	status TEXT
);

CREATE TABLE IF NOT EXISTS auto_policy_details (
	policy_number TEXT PRIMARY KEY REFERENCES policies(policy_number),
	vehicle_vin TEXT,
	vehicle_make TEXT,
	vehicle_model TEXT,
	vehicle_year INTEGER,
	liability_limit REAL,
	collision_deductible REAL,
	comprehensive_deductible REAL,
	uninsured_motorist INTEGER NOT NULL DEFAULT 0,
	rental_car_coverage INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS billing (
	bill_id TEXT PRIMARY KEY,
	policy_number TEXT REFERENCES policies(policy_number),
	billing_date TEXT,
	due_date TEXT,
	amount_due REAL,
	status TEXT
);

CREATE TABLE IF NOT EXISTS payments (
	payment_id TEXT PRIMARY KEY,
	bill_id TEXT REFERENCES billing(bill_id),
	payment_date TEXT,
	amount REAL,
	payment_method TEXT,
	transaction_id TEXT,
	status TEXT
);

CREATE TABLE IF NOT EXISTS claims (
	claim_id TEXT PRIMARY KEY,
	policy_number TEXT REFERENCES policies(policy_number),
	claim_date TEXT,
	incident_type TEXT,
	estimated_loss REAL,
	status TEXT
);

CREATE INDEX IF NOT EXISTS idx_policies_customer_id ON policies(customer_id);
CREATE INDEX IF NOT EXISTS idx_billing_policy_number ON billing(policy_number);
CREATE INDEX IF NOT EXISTS idx_payments_bill_id ON payments(bill_id);
CREATE INDEX IF NOT EXISTS idx_claims_policy_number ON claims(policy_number);
`

const migrationV3FAQ = `
CREATE TABLE IF NOT EXISTS faqs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL UNIQUE,
	answer TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS faqs_fts USING fts5(
	question,
	answer,
	content='faqs',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS faqs_ai AFTER INSERT ON faqs BEGIN
	INSERT INTO faqs_fts(rowid, question, answer)
	VALUES (new.id, new.question, new.answer);
END;

CREATE TRIGGER IF NOT EXISTS faqs_ad AFTER DELETE ON faqs BEGIN
	INSERT INTO faqs_fts(faqs_fts, rowid, question, answer)
	VALUES ('delete', old.id, old.question, old.answer);
END;

CREATE TRIGGER IF NOT EXISTS faqs_au AFTER UPDATE ON faqs BEGIN
	INSERT INTO faqs_fts(faqs_fts, rowid, question, answer)
	VALUES ('delete', old.id, old.question, old.answer);
	INSERT INTO faqs_fts(rowid, question, answer)
	VALUES (new.id, new.question, new.answer);
END;
`

// Exec executes a query that doesn't return rows.
func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows.
func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.conn.QueryRow(query, args...)
}

// Transaction runs the given function within a transaction.
func (db *DB) Transaction(fn func(tx *sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// PurgeOldConversations deletes conversations not updated within the given
// duration. Returns the number of conversations deleted.
func (db *DB) PurgeOldConversations(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	result, err := db.Exec(`DELETE FROM conversations WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old conversations: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return count, nil
}
