package ui

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/skim/internal/queue"
	"github.com/user/skim/internal/store"
)

type fakeMover struct {
	mu    sync.Mutex
	moves map[string]string
}

func (f *fakeMover) Move(documentID, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moves == nil {
		f.moves = make(map[string]string)
	}
	f.moves[documentID] = location
	return nil
}

type fakeSummarizer struct {
	calls int
}

func (f *fakeSummarizer) Summarize(documentID, title string) (*store.Summary, error) {
	f.calls++
	return &store.Summary{DocumentID: documentID, Summary: "short version", KeyPoints: []string{"one"}}, nil
}

func newTestModel(t *testing.T, docs ...*store.Document) (*Model, *fakeSummarizer) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "skim.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	for _, doc := range docs {
		if err := st.UpsertDocument(doc); err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}

	q := queue.New(st, &fakeMover{}, nil)
	t.Cleanup(q.Wait)
	summarizer := &fakeSummarizer{}
	return NewModel(q, summarizer), summarizer
}

// drive runs a command chain to completion, feeding each produced message
// back into the model the way the bubbletea runtime would.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		switch msg := cmd().(type) {
		case nil:
			return
		case tea.BatchMsg:
			for _, sub := range msg {
				drive(t, m, sub)
			}
			return
		case spinner.TickMsg:
			// Spinner ticks reschedule themselves forever; skip them.
			return
		default:
			_, cmd = m.Update(msg)
		}
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testDoc(id string, savedAt time.Time) *store.Document {
	return &store.Document{
		ID:        id,
		Title:     "Doc " + id,
		SourceURL: "https://example.com/" + id,
		SavedAt:   savedAt,
	}
}

func TestInitLoadsNewestDocument(t *testing.T) {
	now := time.Now()
	m, _ := newTestModel(t,
		testDoc("old", now.Add(-time.Hour)),
		testDoc("fresh", now),
	)

	drive(t, m, m.loadNext())

	if m.state != StateTriaging {
		t.Fatalf("state = %v", m.state)
	}
	if m.doc == nil || m.doc.ID != "fresh" {
		t.Errorf("doc = %+v, want fresh", m.doc)
	}
	if m.remaining != 2 {
		t.Errorf("remaining = %d", m.remaining)
	}
}

func TestKeepAdvancesToNext(t *testing.T) {
	now := time.Now()
	m, _ := newTestModel(t,
		testDoc("a", now.Add(-time.Minute)),
		testDoc("b", now),
	)
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('k'))
	drive(t, m, cmd)

	if m.doc == nil || m.doc.ID != "a" {
		t.Errorf("doc after keep = %+v, want a", m.doc)
	}
	if m.remaining != 1 {
		t.Errorf("remaining = %d", m.remaining)
	}
}

func TestDismissLastDocumentEmptiesQueue(t *testing.T) {
	m, _ := newTestModel(t, testDoc("only", time.Now()))
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('d'))
	drive(t, m, cmd)

	if m.state != StateEmpty {
		t.Errorf("state = %v, want StateEmpty", m.state)
	}
	if !strings.Contains(m.View(), "Inbox zero") {
		t.Errorf("view missing empty message:\n%s", m.View())
	}
}

func TestUndoRestoresDocument(t *testing.T) {
	m, _ := newTestModel(t, testDoc("a", time.Now()))
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('d'))
	drive(t, m, cmd)
	if m.state != StateEmpty {
		t.Fatalf("state = %v", m.state)
	}

	_, cmd = m.Update(keyPress('u'))
	drive(t, m, cmd)

	if m.doc == nil || m.doc.ID != "a" {
		t.Errorf("doc after undo = %+v, want a", m.doc)
	}
	if !strings.Contains(m.statusMessage, "Doc a") {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestUndoWithNoDecisions(t *testing.T) {
	m, _ := newTestModel(t, testDoc("a", time.Now()))
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('u'))
	drive(t, m, cmd)

	if m.messageType != "error" {
		t.Errorf("messageType = %q, want error", m.messageType)
	}
	if m.doc == nil || m.doc.ID != "a" {
		t.Errorf("doc = %+v, should be unchanged", m.doc)
	}
}

func TestSummarizeShowsResult(t *testing.T) {
	m, summarizer := newTestModel(t, testDoc("a", time.Now()))
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('s'))
	if m.state != StateSummarizing {
		t.Fatalf("state = %v, want StateSummarizing", m.state)
	}
	drive(t, m, cmd)

	if m.state != StateTriaging {
		t.Errorf("state = %v", m.state)
	}
	if m.summary == nil || m.summary.Summary != "short version" {
		t.Errorf("summary = %+v", m.summary)
	}
	if !strings.Contains(m.View(), "short version") {
		t.Errorf("view missing summary:\n%s", m.View())
	}

	// A second press is a no-op once the summary is on screen.
	_, cmd = m.Update(keyPress('s'))
	drive(t, m, cmd)
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}
}

func TestSummarizeWithoutBackend(t *testing.T) {
	m, _ := newTestModel(t, testDoc("a", time.Now()))
	m.summarizer = nil
	drive(t, m, m.loadNext())

	_, cmd := m.Update(keyPress('s'))
	if cmd != nil {
		t.Error("expected no command without a summarizer")
	}
	if m.messageType != "error" {
		t.Errorf("messageType = %q", m.messageType)
	}
}

func TestMarkRead(t *testing.T) {
	m, _ := newTestModel(t, testDoc("a", time.Now()))
	drive(t, m, m.loadNext())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drive(t, m, cmd)

	if m.messageType != "success" {
		t.Errorf("messageType = %q, status = %q", m.messageType, m.statusMessage)
	}
	reads, err := m.queue.RecentReads(10)
	if err != nil {
		t.Fatalf("RecentReads: %v", err)
	}
	if len(reads) != 1 || reads[0].Title != "Doc a" {
		t.Errorf("reads = %+v", reads)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrap = %q, want %q", got, want)
	}
	if wrap("short", 0) != "short" {
		t.Error("zero width should be a passthrough")
	}
}
