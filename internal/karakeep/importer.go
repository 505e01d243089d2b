package karakeep

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/user/skim/internal/store"
)

// importDelay paces bookmark creation so the server isn't hammered.
const importDelay = 300 * time.Millisecond

// Tracker records import outcomes in a standalone SQLite database, kept
// separate from the main library so the import can never corrupt it.
type Tracker struct {
	db *sql.DB
}

// OpenTracker opens (creating if needed) the import tracking database.
func OpenTracker(path string) (*Tracker, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			readwise_id TEXT PRIMARY KEY,
			karakeep_id TEXT,
			status TEXT,
			imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create imports table: %w", err)
	}

	return &Tracker{db: db}, nil
}

// Close closes the tracking database.
func (t *Tracker) Close() error {
	return t.db.Close()
}

// Imported returns the set of document ids already imported successfully.
// Errors are excluded so failed documents get retried on the next pass.
func (t *Tracker) Imported() (map[string]bool, error) {
	rows, err := t.db.Query(`SELECT readwise_id FROM imports WHERE status IN ('created', 'exists')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

// Record upserts the outcome for one document.
func (t *Tracker) Record(readwiseID, karakeepID, status string) error {
	_, err := t.db.Exec(`
		INSERT INTO imports (readwise_id, karakeep_id, status, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(readwise_id) DO UPDATE SET
			karakeep_id = excluded.karakeep_id,
			status = excluded.status,
			imported_at = excluded.imported_at`,
		readwiseID, nullable(karakeepID), status, time.Now(),
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Bookmarker is the remote side of an import.
type Bookmarker interface {
	CreateBookmark(doc *store.Document) (*Bookmark, error)
	AttachTags(bookmarkID string, tagNames []string) error
}

// Importer copies exportable documents into Karakeep.
type Importer struct {
	store   *store.Store
	tracker *Tracker
	client  Bookmarker
	log     *slog.Logger

	// DryRun reports what would be imported without touching the server.
	DryRun bool
}

// NewImporter creates an importer over st, recording progress in tracker.
func NewImporter(st *store.Store, tracker *Tracker, client Bookmarker, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, tracker: tracker, client: client, log: logger}
}

// Stats summarizes one import pass.
type Stats struct {
	Created int
	Exists  int
	Skipped int
	Errors  int
}

// Run imports every document that has a source URL and hasn't been
// imported yet. Individual failures are recorded and the pass continues.
func (im *Importer) Run(ctx context.Context) (*Stats, error) {
	docs, err := im.store.ListExportable()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	done, err := im.tracker.Imported()
	if err != nil {
		return nil, fmt.Errorf("load import history: %w", err)
	}

	im.log.Info("starting import", "documents", len(docs), "already_imported", len(done), "dry_run", im.DryRun)

	stats := &Stats{}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if done[doc.ID] {
			stats.Skipped++
			continue
		}

		tags := buildTags(doc)

		if im.DryRun {
			im.log.Info("would import", "n", i+1, "of", len(docs), "title", docTitle(doc), "tags", tags)
			continue
		}

		if err := im.importOne(doc, tags, stats); err != nil {
			im.log.Error("import failed", "title", docTitle(doc), "error", err)
			if recErr := im.tracker.Record(doc.ID, "", "error"); recErr != nil {
				return stats, fmt.Errorf("record import error: %w", recErr)
			}
			stats.Errors++
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(importDelay):
		}
	}

	im.log.Info("import finished",
		"created", stats.Created, "exists", stats.Exists,
		"skipped", stats.Skipped, "errors", stats.Errors)
	return stats, nil
}

func (im *Importer) importOne(doc *store.Document, tags []string, stats *Stats) error {
	bookmark, err := im.client.CreateBookmark(doc)
	if err != nil {
		return err
	}

	status := "created"
	if bookmark.AlreadyExists {
		status = "exists"
		stats.Exists++
	} else {
		stats.Created++
	}
	if err := im.tracker.Record(doc.ID, bookmark.ID, status); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	// Attach tags even for pre-existing bookmarks; the call is idempotent.
	return im.client.AttachTags(bookmark.ID, tags)
}

// buildTags derives the Karakeep tag set for a document: a fixed marker
// tag, category and location tags, plus the document's own tags.
func buildTags(doc *store.Document) []string {
	tags := []string{"from-readwise"}

	if doc.Category != "" {
		tags = append(tags, "readwise-"+doc.Category)
	}

	if doc.Location != "" {
		if doc.Location == "new" {
			tags = append(tags, "readwise-inbox")
		} else {
			tags = append(tags, "readwise-"+doc.Location)
		}
	}

	for _, tag := range doc.Tags {
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

func docTitle(doc *store.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return doc.SourceURL
}
