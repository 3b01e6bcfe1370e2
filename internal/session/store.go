// Package session persists documents, wizard sessions and per-step text
// snapshots in sqlite, so each step can hand its output forward without the
// caller re-supplying the document.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSessionNotFound  = errors.New("session not found")
)

// Document is an uploaded source text.
type Document struct {
	ID        string
	Name      string
	Text      string
	CreatedAt time.Time
}

// Session tracks one wizard run over a document.
type Session struct {
	ID          string
	DocumentID  string
	CurrentStep string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path. ":memory:" works for
// tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		document_id  TEXT NOT NULL,
		current_step TEXT NOT NULL DEFAULT 'document',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_document ON sessions(document_id);

	CREATE TABLE IF NOT EXISTS snapshots (
		session_id TEXT NOT NULL,
		step       TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, step)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveDocument stores a new document and returns it with a fresh id.
func (s *Store) SaveDocument(name, text string) (Document, error) {
	doc := Document{ID: uuid.NewString(), Name: name, Text: text, CreatedAt: time.Now().UTC()}
	_, err := s.db.Exec(
		`INSERT INTO documents (id, name, text, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Name, doc.Text, doc.CreatedAt,
	)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// Document fetches a document by id.
func (s *Store) Document(id string) (Document, error) {
	var doc Document
	err := s.db.QueryRow(
		`SELECT id, name, text, created_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Name, &doc.Text, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// CreateSession starts a new wizard session over a document.
func (s *Store) CreateSession(documentID string) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		CurrentStep: "document",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, document_id, current_step, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.DocumentID, sess.CurrentStep, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Session fetches a session by id.
func (s *Store) Session(id string) (Session, error) {
	var sess Session
	err := s.db.QueryRow(
		`SELECT id, document_id, current_step, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.DocumentID, &sess.CurrentStep, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// LatestSession returns the most recently updated session, if any. It is the
// last link in the session resolution fallback chain.
func (s *Store) LatestSession() (Session, bool, error) {
	var sess Session
	err := s.db.QueryRow(
		`SELECT id, document_id, current_step, created_at, updated_at FROM sessions ORDER BY updated_at DESC, created_at DESC LIMIT 1`,
	).Scan(&sess.ID, &sess.DocumentID, &sess.CurrentStep, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// SetStep records the session's current wizard step.
func (s *Store) SetStep(sessionID, step string) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET current_step = ?, updated_at = ? WHERE id = ?`,
		step, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SaveSnapshot stores (or replaces) the named modified text for one step.
func (s *Store) SaveSnapshot(sessionID, step, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (session_id, step, text, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, step) DO UPDATE SET text = excluded.text, created_at = excluded.created_at`,
		sessionID, step, text, time.Now().UTC(),
	)
	return err
}

// Snapshot retrieves the modified text saved for one step.
func (s *Store) Snapshot(sessionID, step string) (string, bool, error) {
	var text string
	err := s.db.QueryRow(
		`SELECT text FROM snapshots WHERE session_id = ? AND step = ?`, sessionID, step,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
