package summarize

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/skim/internal/store"
)

// ContentFetcher retrieves full article text from the catalog.
type ContentFetcher interface {
	Content(documentID string) (string, error)
}

// Summarizer produces a summary for one article.
type Summarizer interface {
	Summarize(title, content string) (*Result, error)
}

// Service memoizes summaries: each document hits the LLM at most once,
// and only successful results are cached.
type Service struct {
	store   *store.Store
	fetcher ContentFetcher
	client  Summarizer
	log     *slog.Logger
}

// NewService creates a summarization service backed by st for caching.
func NewService(st *store.Store, fetcher ContentFetcher, client Summarizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, fetcher: fetcher, client: client, log: logger}
}

// Summarize returns the cached summary for documentID, or generates and
// caches a new one. Failures are never cached, so a later call retries.
func (s *Service) Summarize(documentID, title string) (*store.Summary, error) {
	cached, err := s.store.GetSummary(documentID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	content, err := s.fetcher.Content(documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch content: %w", err)
	}
	if content == "" {
		return nil, fmt.Errorf("no content available for document %s", documentID)
	}

	start := time.Now()
	result, err := s.client.Summarize(title, content)
	if err != nil {
		return nil, err
	}
	s.log.Info("summarized document", "id", documentID, "duration", time.Since(start).Round(time.Millisecond))

	if err := s.store.PutSummary(documentID, result.Summary, result.KeyPoints); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	return s.store.GetSummary(documentID)
}
