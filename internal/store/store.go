package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup matches no row, or when a write
// references a document that does not exist.
var ErrNotFound = errors.New("not found")

// isFKViolation reports whether err is a foreign key constraint failure,
// i.e. a write referencing a nonexistent document.
func isFKViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// Store wraps the SQLite library database. It owns all persistent state:
// mirrored documents, swipe decisions, cached summaries, and the read log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the library database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT,
		author TEXT,
		category TEXT,
		summary TEXT,
		source_url TEXT,
		image_url TEXT,
		word_count INTEGER,
		reading_time TEXT,
		saved_at TIMESTAMP,
		location TEXT,
		tags TEXT,
		synced_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_saved ON documents(saved_at);
	CREATE INDEX IF NOT EXISTS idx_documents_synced ON documents(synced_at);

	CREATE TABLE IF NOT EXISTS swipes (
		document_id TEXT PRIMARY KEY REFERENCES documents(id),
		action TEXT NOT NULL CHECK(action IN ('keep', 'dismiss')),
		swiped_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS summaries (
		document_id TEXT PRIMARY KEY REFERENCES documents(id),
		summary TEXT NOT NULL,
		key_points TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT REFERENCES documents(id),
		title TEXT,
		source_url TEXT,
		read_at TIMESTAMP NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
