package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/quotekeeper/internal/app"

// SyncState is a state of the sync state machine.
type SyncState string

const (
	SyncIdle      SyncState = "idle"
	SyncSyncing   SyncState = "syncing"
	SyncSucceeded SyncState = "succeeded"
	SyncFailed    SyncState = "failed"
)

// SyncResult describes one call to SyncOnce.
type SyncResult struct {
	// Skipped is true when another cycle was already in flight.
	Skipped  bool      `json:"skipped"`
	Fetched  int       `json:"fetched"`
	Merged   int       `json:"merged"`
	SyncedAt time.Time `json:"synced_at,omitzero"`
}

// SyncStatus is the snapshot handed to observers and the renderer.
type SyncStatus struct {
	State        SyncState `json:"state"`
	LastResult   SyncState `json:"last_result,omitempty"`
	LastSyncTime time.Time `json:"last_sync_time,omitzero"`
	HasSynced    bool      `json:"has_synced"`
	LastError    string    `json:"last_error,omitempty"`
	LastMerged   int       `json:"last_merged"`
}

// SyncOptions tunes the schedule and batch sizes.
type SyncOptions struct {
	// Interval between scheduled cycles. Zero disables the ticker.
	Interval time.Duration

	// BatchSize bounds how many remote records one cycle fetches.
	BatchSize int

	// RunOnStart runs a cycle as soon as Start is called.
	RunOnStart bool

	// PublishConcurrency bounds in-flight posts in Publish.
	PublishConcurrency int
}

// SyncEngineConfig contains the engine's dependencies.
type SyncEngineConfig struct {
	Store    *QuoteStore
	Source   ports.RemoteQuoteSource
	Meta     ports.KeyValueStore
	Executor *Executor
	Options  SyncOptions
	Logger   *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// SyncEngine reconciles the quote store with the remote source, on a
// schedule and on demand. Triggers that arrive while a cycle is running are
// coalesced into a skipped result rather than queued.
type SyncEngine struct {
	store  *QuoteStore
	source ports.RemoteQuoteSource
	meta   ports.KeyValueStore
	exec   *Executor
	opts   SyncOptions
	logger *slog.Logger
	now    func() time.Time

	inFlight atomic.Bool

	mu        sync.RWMutex
	status    SyncStatus
	observers []func(SyncStatus)

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	cycles metric.Int64Counter
	merged metric.Int64Counter
}

// NewSyncEngine creates an idle engine.
func NewSyncEngine(cfg SyncEngineConfig) (*SyncEngine, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	if cfg.Source == nil {
		return nil, errors.New("remote source is required")
	}

	if cfg.Meta == nil {
		return nil, errors.New("metadata store is required")
	}

	logger := logging.Component(cfg.Logger, "sync_engine")

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	meter := otel.Meter(instrumentationName)

	cycles, err := meter.Int64Counter(
		"quotes.sync.cycles",
		metric.WithDescription("Sync cycles by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cycle counter: %w", err)
	}

	merged, err := meter.Int64Counter(
		"quotes.sync.merged",
		metric.WithDescription("Quotes added or changed by sync merges"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating merge counter: %w", err)
	}

	return &SyncEngine{
		store:  cfg.Store,
		source: cfg.Source,
		meta:   cfg.Meta,
		exec:   exec,
		opts:   cfg.Options,
		logger: logger,
		now:    now,
		status: SyncStatus{State: SyncIdle},
		cycles: cycles,
		merged: merged,
	}, nil
}

// LoadMetadata restores the last successful sync time from storage.
func (e *SyncEngine) LoadMetadata(ctx context.Context) {
	raw, found, err := e.meta.Get(ctx, ports.KeyLastSync)
	if err != nil {
		e.logger.WarnContext(ctx, "reading sync metadata failed",
			slog.Any("error", domain.NewPersistenceError("get", ports.KeyLastSync, err)),
		)

		return
	}

	if !found {
		return
	}

	ts, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		e.logger.WarnContext(ctx, "ignoring corrupt sync metadata", slog.Any("error", err))

		return
	}

	e.mu.Lock()
	e.status.LastSyncTime = ts
	e.status.HasSynced = true
	e.mu.Unlock()
}

// Subscribe registers fn to receive every status transition.
// fn runs on the goroutine doing the sync and must not block.
func (e *SyncEngine) Subscribe(fn func(SyncStatus)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, fn)
}

// Status returns the current status snapshot.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.status
}

// SyncOnce runs one fetch-and-merge cycle.
//
// A fetch failure leaves the store untouched and returns an error wrapping
// domain.ErrUnavailable. On success the fetched quotes are merged with
// incoming-wins precedence and the sync time is persisted.
func (e *SyncEngine) SyncOnce(ctx context.Context) (SyncResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		e.logger.DebugContext(ctx, "sync in flight, trigger coalesced")
		e.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "skipped")))

		return SyncResult{Skipped: true}, nil
	}
	defer e.inFlight.Store(false)

	e.transition(func(st *SyncStatus) { st.State = SyncSyncing }, true)

	result, err := Execute(ctx, e.exec, e.cycle(), e.opts.BatchSize)
	if err != nil {
		e.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		e.transition(func(st *SyncStatus) {
			st.State = SyncFailed
			st.LastResult = SyncFailed
			st.LastError = err.Error()
		}, true)
	} else {
		e.cycles.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "succeeded")))
		e.merged.Add(ctx, int64(result.Merged))
		e.transition(func(st *SyncStatus) {
			st.State = SyncSucceeded
			st.LastResult = SyncSucceeded
			st.LastSyncTime = result.SyncedAt
			st.HasSynced = true
			st.LastError = ""
			st.LastMerged = result.Merged
		}, true)

		e.logger.InfoContext(ctx, "sync succeeded",
			slog.Int("fetched", result.Fetched),
			slog.Int("merged", result.Merged),
		)
	}

	e.transition(func(st *SyncStatus) { st.State = SyncIdle }, false)

	return result, err
}

// fetchedBatch carries a verified batch through archive and respond.
type fetchedBatch struct {
	quotes   []domain.Quote
	merged   int
	syncedAt time.Time
}

func (e *SyncEngine) cycle() Operation[int, []ports.RemoteRecord, *fetchedBatch, SyncResult] {
	return Operation[int, []ports.RemoteRecord, *fetchedBatch, SyncResult]{
		Name: "sync_cycle",

		Validate: func(_ context.Context, limit int) error {
			if limit <= 0 {
				return domain.NewValidationErrorWithValue("batch_size", "must be positive", limit)
			}

			return nil
		},

		Perform: func(ctx context.Context, limit int) ([]ports.RemoteRecord, error) {
			records, err := e.source.FetchBatch(ctx, limit)
			if err != nil {
				if !domain.IsUnavailable(err) {
					err = fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
				}

				return nil, err
			}

			return records, nil
		},

		Verify: func(ctx context.Context, limit int, records []ports.RemoteRecord) (*fetchedBatch, error) {
			if len(records) > limit {
				records = records[:limit]
			}

			batch := &fetchedBatch{quotes: make([]domain.Quote, 0, len(records))}

			for _, rec := range records {
				q, err := domain.NewQuote(rec.Title, domain.SentinelCategory)
				if err != nil {
					e.logger.DebugContext(ctx, "dropping remote record", slog.Int("id", rec.ID), slog.Any("error", err))

					continue
				}

				batch.quotes = append(batch.quotes, q)
			}

			return batch, nil
		},

		Archive: func(ctx context.Context, _ int, batch *fetchedBatch) error {
			merged, err := e.store.MergeIncoming(ctx, batch.quotes, domain.IncomingWins)
			if err != nil {
				return err
			}

			batch.merged = merged
			batch.syncedAt = e.now().UTC()

			stamp := []byte(batch.syncedAt.Format(time.RFC3339Nano))
			if err := e.meta.Set(ctx, ports.KeyLastSync, stamp); err != nil {
				e.logger.ErrorContext(ctx, "persisting sync time failed",
					slog.Any("error", domain.NewPersistenceError("set", ports.KeyLastSync, err)),
				)
			}

			return nil
		},

		Respond: func(_ context.Context, _ int, batch *fetchedBatch) (SyncResult, error) {
			return SyncResult{
				Fetched:  len(batch.quotes),
				Merged:   batch.merged,
				SyncedAt: batch.syncedAt,
			}, nil
		},
	}
}

// transition applies fn to the status and, when notify is set, hands the
// new snapshot to every observer outside the lock.
func (e *SyncEngine) transition(fn func(*SyncStatus), notify bool) {
	e.mu.Lock()
	fn(&e.status)
	snapshot := e.status
	observers := slices.Clone(e.observers)
	e.mu.Unlock()

	if !notify {
		return
	}

	for _, observe := range observers {
		observe(snapshot)
	}
}

// Start launches the scheduler. It is a no-op if already running.
func (e *SyncEngine) Start(ctx context.Context) {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)

	go e.run(ctx)

	e.logger.InfoContext(ctx, "sync scheduler started",
		slog.Duration("interval", e.opts.Interval),
		slog.Bool("run_on_start", e.opts.RunOnStart),
	)
}

func (e *SyncEngine) run(ctx context.Context) {
	defer e.wg.Done()

	if e.opts.RunOnStart {
		e.trigger(ctx)
	}

	if e.opts.Interval <= 0 {
		<-ctx.Done()

		return
	}

	ticker := time.NewTicker(e.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.trigger(ctx)
		}
	}
}

// trigger runs a scheduled cycle. Failures are already logged by the
// executor and surface through Status; the next attempt waits for the next tick.
func (e *SyncEngine) trigger(ctx context.Context) {
	_, _ = e.SyncOnce(ctx)
}

// Stop cancels the scheduler and waits for it to exit. Safe to call more than once.
func (e *SyncEngine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.cancel == nil {
		return
	}

	e.cancel()
	e.wg.Wait()
	e.cancel = nil

	e.logger.Info("sync scheduler stopped")
}

// Publish posts quotes to the remote with bounded concurrency. Failures are
// logged only; the store is never touched. It returns how many posts succeeded.
func (e *SyncEngine) Publish(ctx context.Context, quotes ...domain.Quote) int {
	errs := ForEachLimit(ctx, e.opts.PublishConcurrency, quotes, func(ctx context.Context, q domain.Quote) error {
		return e.source.PostRecord(ctx, ports.RemoteRecord{
			Title:    q.Text,
			Body:     q.Text,
			Category: q.Category,
		})
	})

	sent := 0

	for i, err := range errs {
		if err != nil {
			e.logger.WarnContext(ctx, "publishing quote failed",
				slog.String("category", quotes[i].Category),
				slog.Any("error", err),
			)

			continue
		}

		sent++
	}

	return sent
}
