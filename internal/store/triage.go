package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Swipe actions. The schema enforces the same set with a CHECK constraint,
// so an unknown action fails at write time.
const (
	ActionKeep    = "keep"
	ActionDismiss = "dismiss"
)

// Swipe is a user's triage verdict on one document. A document has at most
// one swipe at any time.
type Swipe struct {
	DocumentID string    `json:"document_id"`
	Action     string    `json:"action"`
	SwipedAt   time.Time `json:"swiped_at"`
	Title      string    `json:"title,omitempty"` // joined from documents for undo reporting
}

// RecordSwipe writes a decision for the document, replacing any prior one.
// A decision for an unknown document returns ErrNotFound.
func (s *Store) RecordSwipe(documentID, action string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO swipes (document_id, action, swiped_at) VALUES (?, ?, ?)`,
		documentID, action, time.Now(),
	)
	if isFKViolation(err) {
		return ErrNotFound
	}
	return err
}

// LastSwipe returns the most recent decision across the whole store,
// or ErrNotFound when no decisions exist.
func (s *Store) LastSwipe() (*Swipe, error) {
	var sw Swipe
	err := s.db.QueryRow(`
		SELECT s.document_id, s.action, s.swiped_at, d.title
		FROM swipes s
		JOIN documents d ON d.id = s.document_id
		ORDER BY s.swiped_at DESC
		LIMIT 1`).Scan(&sw.DocumentID, &sw.Action, &sw.SwipedAt, &sw.Title)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sw, nil
}

// GetSwipe returns the decision for a document, or ErrNotFound.
func (s *Store) GetSwipe(documentID string) (*Swipe, error) {
	var sw Swipe
	err := s.db.QueryRow(
		`SELECT document_id, action, swiped_at FROM swipes WHERE document_id = ?`,
		documentID,
	).Scan(&sw.DocumentID, &sw.Action, &sw.SwipedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sw, nil
}

// DeleteSwipe removes the decision for a document, returning it to the
// undecided queue.
func (s *Store) DeleteSwipe(documentID string) error {
	_, err := s.db.Exec(`DELETE FROM swipes WHERE document_id = ?`, documentID)
	return err
}

// CountSwipes returns the number of recorded decisions.
func (s *Store) CountSwipes() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM swipes`).Scan(&count)
	return count, err
}

// Summary is memoized summarizer output for one document. Entries never
// expire; staleness is accepted.
type Summary struct {
	DocumentID string    `json:"document_id"`
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"key_points"`
	CreatedAt  time.Time `json:"created_at"`
}

// PutSummary stores summarizer output for a document.
func (s *Store) PutSummary(documentID, summary string, keyPoints []string) error {
	points, err := json.Marshal(keyPoints)
	if err != nil {
		points = []byte("[]")
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO summaries (document_id, summary, key_points, created_at) VALUES (?, ?, ?, ?)`,
		documentID, summary, string(points), time.Now(),
	)
	return err
}

// GetSummary returns the cached summary for a document, or ErrNotFound.
func (s *Store) GetSummary(documentID string) (*Summary, error) {
	var sum Summary
	var points sql.NullString
	err := s.db.QueryRow(
		`SELECT document_id, summary, key_points, created_at FROM summaries WHERE document_id = ?`,
		documentID,
	).Scan(&sum.DocumentID, &sum.Summary, &points, &sum.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if points.Valid && points.String != "" {
		if err := json.Unmarshal([]byte(points.String), &sum.KeyPoints); err != nil {
			sum.KeyPoints = nil
		}
	}
	return &sum, nil
}

// ReadEntry is one append-only line of the read log.
type ReadEntry struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url"`
	ReadAt     time.Time `json:"read_at"`
}

// InsertRead appends a read log entry for the document. An unknown
// document returns ErrNotFound.
func (s *Store) InsertRead(documentID, title, sourceURL string) error {
	_, err := s.db.Exec(
		`INSERT INTO reads (document_id, title, source_url, read_at) VALUES (?, ?, ?, ?)`,
		documentID, title, sourceURL, time.Now(),
	)
	if isFKViolation(err) {
		return ErrNotFound
	}
	return err
}

// RecentReads returns the most recent read log entries, newest first.
func (s *Store) RecentReads(limit int) ([]ReadEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, document_id, title, source_url, read_at FROM reads ORDER BY read_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ReadEntry
	for rows.Next() {
		var e ReadEntry
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Title, &e.SourceURL, &e.ReadAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
