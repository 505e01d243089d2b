package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "skim.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDoc(id string, savedAt time.Time) *Document {
	return &Document{
		ID:          id,
		Title:       "Title " + id,
		Author:      "Author",
		Category:    "article",
		Summary:     "A blurb",
		SourceURL:   "https://example.com/" + id,
		WordCount:   1200,
		ReadingTime: "6 min",
		SavedAt:     savedAt,
		Location:    "new",
		Tags:        []string{"go", "reading"},
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)

	doc := testDoc("doc1", time.Now())
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	firstSynced := doc.SyncedAt

	time.Sleep(2 * time.Millisecond)
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := s.CountDocuments()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("document count = %d, want 1", count)
	}

	got, err := s.GetDocument("doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.SyncedAt.After(firstSynced) {
		t.Errorf("synced_at did not advance: %v vs %v", got.SyncedAt, firstSynced)
	}
	if got.Title != doc.Title || got.Location != doc.Location {
		t.Errorf("fields changed on idempotent upsert: %+v", got)
	}
}

func TestUpsertOverwritesFields(t *testing.T) {
	s := newTestStore(t)

	doc := testDoc("doc1", time.Now())
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	doc.Title = "Updated Title"
	doc.Location = "later"
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	got, err := s.GetDocument("doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("title = %q, want %q", got.Title, "Updated Title")
	}
	if got.Location != "later" {
		t.Errorf("location = %q, want %q", got.Location, "later")
	}
}

func TestWatermark(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.Watermark(); err != nil || ok {
		t.Fatalf("empty store watermark: ok=%v err=%v, want ok=false", ok, err)
	}

	if err := s.UpsertDocument(testDoc("doc1", time.Now())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first, ok, err := s.Watermark()
	if err != nil || !ok {
		t.Fatalf("watermark after insert: ok=%v err=%v", ok, err)
	}

	time.Sleep(2 * time.Millisecond)
	if err := s.UpsertDocument(testDoc("doc2", time.Now())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, _, err := s.Watermark()
	if err != nil {
		t.Fatalf("watermark: %v", err)
	}
	if second.Before(first) {
		t.Errorf("watermark moved backwards: %v -> %v", first, second)
	}
}

func TestSwipeActionConstraint(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertDocument(testDoc("doc1", time.Now())); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RecordSwipe("doc1", "keep"); err != nil {
		t.Fatalf("valid action rejected: %v", err)
	}
	if err := s.RecordSwipe("doc1", "archive"); err == nil {
		t.Error("expected CHECK constraint violation for action=archive")
	}

	sw, err := s.GetSwipe("doc1")
	if err != nil {
		t.Fatalf("get swipe: %v", err)
	}
	if sw.Action != "keep" {
		t.Errorf("action = %q, want untouched %q", sw.Action, "keep")
	}
}

func TestSwipeForeignKey(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordSwipe("ghost", "keep"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordSwipe on unknown document = %v, want ErrNotFound", err)
	}
	if err := s.InsertRead("ghost", "Ghost", "https://example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("InsertRead on unknown document = %v, want ErrNotFound", err)
	}
}

func TestSwipeReplacesPriorDecision(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertDocument(testDoc("doc1", time.Now())); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RecordSwipe("doc1", "keep"); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if err := s.RecordSwipe("doc1", "dismiss"); err != nil {
		t.Fatalf("re-swipe: %v", err)
	}

	count, _ := s.CountSwipes()
	if count != 1 {
		t.Errorf("swipe count = %d, want 1", count)
	}
	sw, _ := s.GetSwipe("doc1")
	if sw.Action != "dismiss" {
		t.Errorf("action = %q, want %q", sw.Action, "dismiss")
	}
}

func TestUndecidedQueueOrderAndOffset(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := s.UpsertDocument(testDoc(id, base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if err := s.RecordSwipe("second", "keep"); err != nil {
		t.Fatalf("swipe: %v", err)
	}

	count, err := s.CountUndecided()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("undecided count = %d, want 2", count)
	}

	// newest saved first
	doc, err := s.NextUndecided(0)
	if err != nil || doc == nil {
		t.Fatalf("next(0): doc=%v err=%v", doc, err)
	}
	if doc.ID != "third" {
		t.Errorf("next(0) = %q, want %q", doc.ID, "third")
	}

	doc, err = s.NextUndecided(1)
	if err != nil || doc == nil {
		t.Fatalf("next(1): doc=%v err=%v", doc, err)
	}
	if doc.ID != "first" {
		t.Errorf("next(1) = %q, want %q", doc.ID, "first")
	}

	// past the end
	doc, err = s.NextUndecided(2)
	if err != nil {
		t.Fatalf("next(2): %v", err)
	}
	if doc != nil {
		t.Errorf("next(2) = %v, want nil", doc)
	}
}

func TestLastSwipeAndDelete(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	s.UpsertDocument(testDoc("a", now))
	s.UpsertDocument(testDoc("b", now))

	if _, err := s.LastSwipe(); err != ErrNotFound {
		t.Fatalf("LastSwipe on empty = %v, want ErrNotFound", err)
	}

	if err := s.RecordSwipe("a", "keep"); err != nil {
		t.Fatalf("swipe a: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := s.RecordSwipe("b", "dismiss"); err != nil {
		t.Fatalf("swipe b: %v", err)
	}

	last, err := s.LastSwipe()
	if err != nil {
		t.Fatalf("last swipe: %v", err)
	}
	if last.DocumentID != "b" {
		t.Errorf("last swipe = %q, want %q", last.DocumentID, "b")
	}
	if last.Title != "Title b" {
		t.Errorf("last swipe title = %q, want joined document title", last.Title)
	}

	if err := s.DeleteSwipe("b"); err != nil {
		t.Fatalf("delete swipe: %v", err)
	}
	last, err = s.LastSwipe()
	if err != nil {
		t.Fatalf("last swipe after delete: %v", err)
	}
	if last.DocumentID != "a" {
		t.Errorf("last swipe after delete = %q, want %q", last.DocumentID, "a")
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.UpsertDocument(testDoc("doc1", time.Now()))

	if _, err := s.GetSummary("doc1"); err != ErrNotFound {
		t.Fatalf("GetSummary miss = %v, want ErrNotFound", err)
	}

	points := []string{"point 1", "point 2"}
	if err := s.PutSummary("doc1", "A great article.", points); err != nil {
		t.Fatalf("put summary: %v", err)
	}

	sum, err := s.GetSummary("doc1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if sum.Summary != "A great article." {
		t.Errorf("summary = %q", sum.Summary)
	}
	if len(sum.KeyPoints) != 2 || sum.KeyPoints[0] != "point 1" {
		t.Errorf("key points = %v", sum.KeyPoints)
	}
}

func TestReadLog(t *testing.T) {
	s := newTestStore(t)
	s.UpsertDocument(testDoc("doc1", time.Now()))

	for range 2 {
		if err := s.InsertRead("doc1", "Title doc1", "https://example.com/doc1"); err != nil {
			t.Fatalf("insert read: %v", err)
		}
	}

	reads, err := s.RecentReads(20)
	if err != nil {
		t.Fatalf("recent reads: %v", err)
	}
	if len(reads) != 2 {
		t.Fatalf("reads = %d, want 2", len(reads))
	}
	if reads[0].ID <= reads[1].ID {
		t.Errorf("expected newest first, got ids %d, %d", reads[0].ID, reads[1].ID)
	}
}

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"array", `["go","reading"]`, 2},
		{"legacy object", `{"go":{},"reading":{}}`, 2},
		{"empty object", `{}`, 0},
		{"empty string", "", 0},
		{"garbage", `not json at all`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeTags(tt.raw)
			if len(got) != tt.want {
				t.Errorf("decodeTags(%q) = %v, want %d tags", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTagsSurviveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	doc := testDoc("doc1", time.Now())
	doc.Tags = []string{"alpha", "beta"}
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetDocument("doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "alpha" {
		t.Errorf("tags = %v, want [alpha beta]", got.Tags)
	}
}
