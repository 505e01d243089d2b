// Package ui is the terminal triage view: one card at a time, swipe with
// the keyboard.
package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/user/skim/internal/queue"
	"github.com/user/skim/internal/store"
)

type State int

const (
	StateLoading State = iota
	StateTriaging
	StateSummarizing
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateTriaging:
		return "Triaging"
	case StateSummarizing:
		return "Summarizing"
	case StateEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Summarizer matches the summarize service surface the view needs.
type Summarizer interface {
	Summarize(documentID, title string) (*store.Summary, error)
}

type Model struct {
	state  State
	width  int
	height int
	styles Styles
	keys   KeyMap

	queue      *queue.Service
	summarizer Summarizer

	doc       *store.Document
	remaining int
	summary   *store.Summary

	spinner       spinner.Model
	statusMessage string
	messageType   string
	showHelp      bool
}

// NewModel creates the triage view. summarizer may be nil when no LLM is
// configured; the summarize key then reports that instead of crashing.
func NewModel(q *queue.Service, summarizer Summarizer) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		state:      StateLoading,
		styles:     DefaultStyles(),
		keys:       DefaultKeyMap(),
		queue:      q,
		summarizer: summarizer,
		spinner:    sp,
	}
}

// Run starts the TUI event loop.
func Run(q *queue.Service, summarizer Summarizer) error {
	p := tea.NewProgram(NewModel(q, summarizer), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type nextDocMsg struct {
	doc       *store.Document
	remaining int
}

type summaryMsg struct {
	summary *store.Summary
}

type undoneMsg struct {
	title string
}

type statusMsg struct {
	text    string
	msgType string
}

type errMsg struct {
	err error
}

func (m *Model) loadNext() tea.Cmd {
	return func() tea.Msg {
		doc, remaining, err := m.queue.Next(0)
		if err != nil {
			return errMsg{err}
		}
		return nextDocMsg{doc: doc, remaining: remaining}
	}
}

func (m *Model) swipe(action string) tea.Cmd {
	doc := m.doc
	return func() tea.Msg {
		if err := m.queue.Swipe(doc.ID, action); err != nil {
			return errMsg{err}
		}
		doc, remaining, err := m.queue.Next(0)
		if err != nil {
			return errMsg{err}
		}
		return nextDocMsg{doc: doc, remaining: remaining}
	}
}

func (m *Model) undo() tea.Cmd {
	return func() tea.Msg {
		title, err := m.queue.Undo()
		if err != nil {
			return errMsg{err}
		}
		return undoneMsg{title: title}
	}
}

func (m *Model) summarizeDoc() tea.Cmd {
	doc := m.doc
	return func() tea.Msg {
		summary, err := m.summarizer.Summarize(doc.ID, doc.Title)
		if err != nil {
			return errMsg{err}
		}
		return summaryMsg{summary: summary}
	}
}

func (m *Model) markRead() tea.Cmd {
	doc := m.doc
	return func() tea.Msg {
		if err := m.queue.RecordRead(doc.ID, doc.Title, doc.SourceURL); err != nil {
			return errMsg{err}
		}
		return statusMsg{text: "logged as read", msgType: "success"}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadNext())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case nextDocMsg:
		m.doc = msg.doc
		m.remaining = msg.remaining
		m.summary = nil
		if m.doc == nil {
			m.state = StateEmpty
		} else {
			m.state = StateTriaging
		}
		return m, nil

	case summaryMsg:
		m.summary = msg.summary
		m.state = StateTriaging
		return m, nil

	case undoneMsg:
		m.statusMessage = "restored: " + msg.title
		m.messageType = "success"
		m.state = StateLoading
		return m, m.loadNext()

	case statusMsg:
		m.statusMessage = msg.text
		m.messageType = msg.msgType
		return m, nil

	case errMsg:
		m.statusMessage = msg.err.Error()
		m.messageType = "error"
		if m.state == StateLoading || m.state == StateSummarizing {
			m.state = StateTriaging
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.queue.Wait()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		m.statusMessage = ""
		return m, m.undo()

	case key.Matches(msg, m.keys.Refresh):
		m.state = StateLoading
		m.statusMessage = ""
		return m, m.loadNext()
	}

	// Everything below needs a document on screen.
	if m.state != StateTriaging || m.doc == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Keep):
		m.statusMessage = ""
		return m, m.swipe(store.ActionKeep)

	case key.Matches(msg, m.keys.Dismiss):
		m.statusMessage = ""
		return m, m.swipe(store.ActionDismiss)

	case key.Matches(msg, m.keys.Summarize):
		if m.summarizer == nil {
			m.statusMessage = "no summarizer configured"
			m.messageType = "error"
			return m, nil
		}
		if m.summary != nil {
			return m, nil
		}
		m.state = StateSummarizing
		return m, tea.Batch(m.spinner.Tick, m.summarizeDoc())

	case key.Matches(msg, m.keys.Open):
		if m.doc.SourceURL == "" {
			return m, nil
		}
		if err := openURL(m.doc.SourceURL); err != nil {
			m.statusMessage = err.Error()
			m.messageType = "error"
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.doc.SourceURL == "" {
			return m, nil
		}
		if err := clipboard.WriteAll(m.doc.SourceURL); err != nil {
			m.statusMessage = fmt.Sprintf("copy failed: %v", err)
			m.messageType = "error"
		} else {
			m.statusMessage = "url copied"
			m.messageType = "success"
		}
		return m, nil

	case key.Matches(msg, m.keys.Read):
		return m, m.markRead()
	}

	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	header := m.styles.Title.Render("SKIM")
	if m.remaining > 0 {
		header += m.styles.Meta.Render(fmt.Sprintf("  %d left", m.remaining))
	}
	b.WriteString(header + "\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View() + " loading...\n")

	case StateEmpty:
		b.WriteString(m.styles.Meta.Render("Inbox zero. Nothing left to triage.") + "\n")

	case StateTriaging, StateSummarizing:
		b.WriteString(m.renderCard())
	}

	if m.statusMessage != "" {
		style := m.styles.Meta
		switch m.messageType {
		case "error":
			style = m.styles.Error
		case "success":
			style = m.styles.Success
		}
		b.WriteString("\n" + style.Render(m.statusMessage) + "\n")
	}

	b.WriteString("\n" + m.renderHelp())
	return b.String()
}

func (m *Model) renderCard() string {
	if m.doc == nil {
		return ""
	}

	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var card strings.Builder
	card.WriteString(m.styles.Highlight.Render(truncate(m.doc.Title, width)) + "\n")

	meta := make([]string, 0, 3)
	if m.doc.Author != "" {
		meta = append(meta, m.doc.Author)
	}
	if m.doc.Category != "" {
		meta = append(meta, m.doc.Category)
	}
	if m.doc.ReadingTime != "" {
		meta = append(meta, m.doc.ReadingTime)
	}
	if len(meta) > 0 {
		card.WriteString(m.styles.Meta.Render(strings.Join(meta, " · ")) + "\n")
	}

	if m.doc.Summary != "" {
		card.WriteString("\n" + m.styles.Normal.Render(wrap(m.doc.Summary, width)) + "\n")
	}

	if m.state == StateSummarizing {
		card.WriteString("\n" + m.spinner.View() + " summarizing...\n")
	} else if m.summary != nil {
		card.WriteString("\n" + m.styles.Summary.Render(wrap(m.summary.Summary, width-2)) + "\n")
		for _, point := range m.summary.KeyPoints {
			card.WriteString(m.styles.Summary.Render("• "+truncate(point, width-4)) + "\n")
		}
	}

	return m.styles.Card.Render(card.String())
}

func (m *Model) renderHelp() string {
	if !m.showHelp {
		return m.styles.Help.Render("k keep · d dismiss · u undo · s summarize · ? help")
	}

	var lines []string
	for _, binding := range m.keys.Keys() {
		help := binding.Help()
		lines = append(lines, fmt.Sprintf("%-8s %s", help.Key, help.Desc))
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

func truncate(s string, maxLen int) string {
	if runewidth.StringWidth(s) > maxLen {
		return runewidth.Truncate(s, maxLen, "…")
	}
	return s
}

// wrap does naive word wrapping for card bodies.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		w := runewidth.StringWidth(word)
		if lineLen > 0 && lineLen+1+w > width {
			b.WriteString("\n")
			lineLen = 0
		} else if i > 0 {
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += w
	}
	return b.String()
}

func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
