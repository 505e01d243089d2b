// Package queue serves undecided documents for review and records swipe
// decisions, mirroring each one to the remote library best-effort.
package queue

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/user/skim/internal/readwise"
	"github.com/user/skim/internal/store"
)

var (
	// ErrInvalidAction rejects swipe actions outside {keep, dismiss}.
	ErrInvalidAction = errors.New("invalid action")

	// ErrNothingToUndo is returned when no decision exists to revert.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Mover relocates documents in the remote library. Mirror calls are
// fire-and-forget: a failure never affects the local decision.
type Mover interface {
	Move(documentID, location string) error
}

// Service is the triage queue over the store's undecided documents.
type Service struct {
	store   *store.Store
	catalog Mover
	log     *slog.Logger
	mirrors sync.WaitGroup
}

// New creates a triage queue. A nil logger falls back to slog.Default.
func New(st *store.Store, catalog Mover, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, catalog: catalog, log: logger}
}

// Next returns the undecided document at the given offset, newest saved
// first, along with the total undecided count. A nil document with no
// error means the offset is past the end of the queue.
func (s *Service) Next(offset int) (*store.Document, int, error) {
	if offset < 0 {
		offset = 0
	}

	remaining, err := s.store.CountUndecided()
	if err != nil {
		return nil, 0, fmt.Errorf("count undecided: %w", err)
	}

	doc, err := s.store.NextUndecided(offset)
	if err != nil {
		return nil, 0, fmt.Errorf("next undecided: %w", err)
	}

	return doc, remaining, nil
}

// Swipe records a triage decision for the document, replacing any prior
// one, then mirrors it to the remote collection (keep goes to shortlist,
// dismiss to archive) without waiting for the result.
func (s *Service) Swipe(documentID, action string) error {
	if action != store.ActionKeep && action != store.ActionDismiss {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	if err := s.store.RecordSwipe(documentID, action); err != nil {
		return fmt.Errorf("record swipe: %w", err)
	}

	target := readwise.LocationShortlist
	if action == store.ActionDismiss {
		target = readwise.LocationArchive
	}
	s.mirror(documentID, target)

	return nil
}

// Undo reverts the most recent decision across the whole store and moves
// the document back to the inbox remotely. Returns the restored title.
func (s *Service) Undo() (string, error) {
	last, err := s.store.LastSwipe()
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNothingToUndo
	}
	if err != nil {
		return "", fmt.Errorf("find last swipe: %w", err)
	}

	if err := s.store.DeleteSwipe(last.DocumentID); err != nil {
		return "", fmt.Errorf("delete swipe: %w", err)
	}

	s.mirror(last.DocumentID, readwise.LocationNew)

	return last.Title, nil
}

// RecordRead appends a read log entry for the document.
func (s *Service) RecordRead(documentID, title, sourceURL string) error {
	return s.store.InsertRead(documentID, title, sourceURL)
}

// RecentReads returns the latest read log entries, newest first.
// A non-positive limit defaults to 20.
func (s *Service) RecentReads(limit int) ([]store.ReadEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.RecentReads(limit)
}

// mirror dispatches the remote relocation after the local write committed.
// Failures are logged and swallowed.
func (s *Service) mirror(documentID, location string) {
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		if err := s.catalog.Move(documentID, location); err != nil {
			s.log.Warn("remote move failed",
				"document_id", documentID, "location", location, "error", err)
		}
	}()
}

// Wait blocks until all dispatched mirror calls have finished. Used on
// shutdown and in tests.
func (s *Service) Wait() {
	s.mirrors.Wait()
}
