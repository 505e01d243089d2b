package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Document is a remote library item mirrored locally. Documents are only
// ever written by the sync engine's upsert; they are never deleted.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Summary     string    `json:"summary"` // remote-provided blurb, not the cached LLM summary
	SourceURL   string    `json:"source_url"`
	ImageURL    string    `json:"image_url"`
	WordCount   int       `json:"word_count"`
	ReadingTime string    `json:"reading_time"`
	SavedAt     time.Time `json:"saved_at"`
	Location    string    `json:"location"` // new, later, shortlist, archive
	Tags        []string  `json:"tags"`
	SyncedAt    time.Time `json:"synced_at"`
}

const documentColumns = `id, title, author, category, summary, source_url, image_url,
	word_count, reading_time, saved_at, location, tags, synced_at`

// UpsertDocument inserts or overwrites a document keyed by its remote id,
// stamping synced_at with the current time.
func (s *Store) UpsertDocument(d *Document) error {
	d.SyncedAt = time.Now()

	query := `
	INSERT INTO documents (` + documentColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		author = excluded.author,
		category = excluded.category,
		summary = excluded.summary,
		source_url = excluded.source_url,
		image_url = excluded.image_url,
		word_count = excluded.word_count,
		reading_time = excluded.reading_time,
		saved_at = excluded.saved_at,
		location = excluded.location,
		tags = excluded.tags,
		synced_at = excluded.synced_at
	`

	_, err := s.db.Exec(query,
		d.ID, d.Title, d.Author, d.Category, d.Summary, d.SourceURL, d.ImageURL,
		d.WordCount, d.ReadingTime, d.SavedAt, d.Location, encodeTags(d.Tags), d.SyncedAt,
	)
	return err
}

// Watermark returns the latest synced_at across all documents.
// ok is false when the store is empty, meaning the next sync is a full one.
func (s *Store) Watermark() (t time.Time, ok bool, err error) {
	err = s.db.QueryRow(`SELECT synced_at FROM documents ORDER BY synced_at DESC LIMIT 1`).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// GetDocument retrieves a document by id, or ErrNotFound.
func (s *Store) GetDocument(id string) (*Document, error) {
	row := s.db.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// NextUndecided returns the undecided document at the given offset in
// saved_at-descending order, or nil when the offset is past the end.
func (s *Store) NextUndecided(offset int) (*Document, error) {
	row := s.db.QueryRow(`
		SELECT d.id, d.title, d.author, d.category, d.summary, d.source_url, d.image_url,
			d.word_count, d.reading_time, d.saved_at, d.location, d.tags, d.synced_at
		FROM documents d
		LEFT JOIN swipes s ON s.document_id = d.id
		WHERE s.document_id IS NULL
		ORDER BY d.saved_at DESC
		LIMIT 1 OFFSET ?`, offset)

	doc, err := scanDocument(row)
	if err == ErrNotFound {
		return nil, nil
	}
	return doc, err
}

// CountUndecided returns the number of documents with no swipe decision.
func (s *Store) CountUndecided() (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM documents d
		LEFT JOIN swipes s ON s.document_id = d.id
		WHERE s.document_id IS NULL`).Scan(&count)
	return count, err
}

// CountDocuments returns the total number of mirrored documents.
func (s *Store) CountDocuments() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// ListExportable returns documents with a non-empty source URL in
// saved_at-ascending order, for the Karakeep export.
func (s *Store) ListExportable() ([]*Document, error) {
	rows, err := s.db.Query(`
		SELECT ` + documentColumns + ` FROM documents
		WHERE source_url IS NOT NULL AND source_url != ''
		ORDER BY saved_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var d Document
	var savedAt sql.NullTime
	var tags sql.NullString
	err := row.Scan(
		&d.ID, &d.Title, &d.Author, &d.Category, &d.Summary, &d.SourceURL, &d.ImageURL,
		&d.WordCount, &d.ReadingTime, &savedAt, &d.Location, &tags, &d.SyncedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if savedAt.Valid {
		d.SavedAt = savedAt.Time
	}
	if tags.Valid {
		d.Tags = decodeTags(tags.String)
	}
	return &d, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeTags parses the stored tag blob. Older rows may hold a JSON object
// keyed by tag name instead of an array; anything unreadable means no tags.
func decodeTags(raw string) []string {
	if raw == "" || raw == "[]" || raw == "{}" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}

	var set map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &set); err == nil {
		tags := make([]string, 0, len(set))
		for k := range set {
			if k != "" {
				tags = append(tags, k)
			}
		}
		return tags
	}

	return nil
}
