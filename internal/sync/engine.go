// Package sync reconciles the remote library into the local store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/skim/internal/readwise"
	"github.com/user/skim/internal/store"
)

// ErrSyncInProgress is returned when a run is requested while another is
// still active. The caller gets a zero result, not a queued run.
var ErrSyncInProgress = errors.New("sync already in progress")

const pageSize = 100

// syncFields is the response field subset requested from the remote;
// everything the documents table persists, nothing more.
var syncFields = []string{
	"title", "author", "category", "summary", "source_url",
	"image_url", "word_count", "reading_time", "saved_at", "tags",
}

// Catalog is the remote listing surface the engine consumes.
type Catalog interface {
	List(p readwise.ListParams) (*readwise.ListResponse, error)
}

// Engine mirrors the remote collections into the store. At most one run
// is active at a time; overlapping calls fail fast with ErrSyncInProgress.
type Engine struct {
	store   *store.Store
	catalog Catalog
	log     *slog.Logger

	running atomic.Bool

	mu         sync.Mutex
	lastSyncAt time.Time
	lastCount  int
}

// Result reports one sync run.
type Result struct {
	Updated     int  `json:"updated"`
	Incremental bool `json:"incremental"`
}

// Status is the engine's bookkeeping, surfaced to the boundary layer.
type Status struct {
	InProgress    bool      `json:"inProgress"`
	LastSyncAt    time.Time `json:"lastSyncAt"`
	LastSyncCount int       `json:"lastSyncCount"`
}

// New creates a sync engine. A nil logger falls back to slog.Default.
func New(st *store.Store, catalog Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, catalog: catalog, log: logger}
}

// Run synchronizes every mirrored collection, in order. A transport or
// decode failure aborts the failing collection's remaining pages but keeps
// everything already upserted and still visits the later collections;
// the aggregate error reports what went wrong.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	watermark, incremental, err := e.store.Watermark()
	if err != nil {
		return Result{}, fmt.Errorf("read watermark: %w", err)
	}

	result := Result{Incremental: incremental}
	var errs []error

	for _, location := range readwise.SyncLocations {
		n, err := e.syncLocation(ctx, location, watermark)
		result.Updated += n
		if err != nil {
			e.log.Error("location sync aborted",
				"location", location, "synced", n, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", location, err))
			continue
		}
		e.log.Info("location synced", "location", location, "count", n)
	}

	e.mu.Lock()
	e.lastSyncAt = time.Now()
	e.lastCount = result.Updated
	e.mu.Unlock()

	return result, errors.Join(errs...)
}

// syncLocation drains one collection's pages in cursor order, upserting
// every record. Returns how many records were written before any failure.
func (e *Engine) syncLocation(ctx context.Context, location string, after time.Time) (int, error) {
	params := readwise.ListParams{
		Location:     location,
		PageSize:     pageSize,
		Fields:       syncFields,
		UpdatedAfter: after,
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		page, err := e.catalog.List(params)
		if err != nil {
			return total, err
		}

		for i := range page.Results {
			if err := e.upsertItem(&page.Results[i], location); err != nil {
				return total, fmt.Errorf("upsert %s: %w", page.Results[i].ID, err)
			}
			total++
		}

		params.Cursor = page.NextPageCursor
		if params.Cursor == nil {
			return total, nil
		}
	}
}

func (e *Engine) upsertItem(item *readwise.Item, location string) error {
	return e.store.UpsertDocument(&store.Document{
		ID:          item.ID,
		Title:       item.Title,
		Author:      item.Author,
		Category:    item.Category,
		Summary:     item.Summary,
		SourceURL:   item.SourceURL,
		ImageURL:    item.ImageURL,
		WordCount:   item.WordCount,
		ReadingTime: item.ReadingTime,
		SavedAt:     item.SavedAt.Time,
		Location:    location,
		Tags:        item.Tags,
	})
}

// Status reports whether a run is active and when the last one finished.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		InProgress:    e.running.Load(),
		LastSyncAt:    e.lastSyncAt,
		LastSyncCount: e.lastCount,
	}
}

// RunPeriodic syncs once immediately, then on every tick until ctx is
// cancelled. Failures are logged and retried on the next tick.
func (e *Engine) RunPeriodic(ctx context.Context, interval time.Duration) {
	e.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runLogged(ctx)
		}
	}
}

func (e *Engine) runLogged(ctx context.Context) {
	result, err := e.Run(ctx)
	if err != nil {
		e.log.Error("sync finished with errors",
			"updated", result.Updated, "incremental", result.Incremental, "error", err)
		return
	}
	e.log.Info("sync complete",
		"updated", result.Updated, "incremental", result.Incremental)
}
