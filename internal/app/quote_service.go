// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// QuoteService is the surface a UI shell calls. It never renders anything;
// it hands back values the shell turns into markup.
type QuoteService struct {
	store   *QuoteStore
	filter  *FilterState
	engine  *SyncEngine
	session ports.KeyValueStore
	random  domain.RandomSource
	logger  *slog.Logger

	background sync.WaitGroup
}

// QuoteServiceConfig contains the service's dependencies.
type QuoteServiceConfig struct {
	Store  *QuoteStore
	Filter *FilterState

	// Engine is optional; without it sync calls report unavailable and
	// added quotes are not published.
	Engine *SyncEngine

	// Session holds ephemeral per-process state such as the last viewed quote.
	Session ports.KeyValueStore

	// Random defaults to domain.DefaultRandom.
	Random domain.RandomSource
	Logger *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil || cfg.Filter == nil || cfg.Session == nil {
		panic("quote service requires a store, a filter and a session store")
	}

	random := cfg.Random
	if random == nil {
		random = domain.DefaultRandom
	}

	return &QuoteService{
		store:   cfg.Store,
		filter:  cfg.Filter,
		engine:  cfg.Engine,
		session: cfg.Session,
		random:  random,
		logger:  logging.Component(cfg.Logger, "quote_service"),
	}
}

// lastViewed is the session record of the quote on screen.
type lastViewed struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

func (s *QuoteService) pool(ctx context.Context) []domain.Quote {
	return domain.FilteredPool(s.store.Quotes(), s.filter.Get(ctx))
}

// CurrentSelection returns the last viewed quote if it is still in the
// filtered pool, otherwise a fresh pick.
func (s *QuoteService) CurrentSelection(ctx context.Context) domain.Selection {
	pool := s.pool(ctx)

	if last, ok := s.readLastViewed(ctx); ok {
		want := domain.Quote{Text: last.Text, Category: last.Category}
		if idx := slices.IndexFunc(pool, want.Equal); idx >= 0 {
			return domain.SelectionAt(pool[idx], idx)
		}
	}

	return s.pick(ctx, pool)
}

// NextQuote picks a fresh quote from the filtered pool and remembers it.
func (s *QuoteService) NextQuote(ctx context.Context) domain.Selection {
	return s.pick(ctx, s.pool(ctx))
}

func (s *QuoteService) pick(ctx context.Context, pool []domain.Quote) domain.Selection {
	sel := domain.PickRandom(pool, s.random)
	if !sel.Empty() {
		s.remember(ctx, sel)
	}

	return sel
}

// remember records sel as the quote on screen.
func (s *QuoteService) remember(ctx context.Context, sel domain.Selection) {
	data, err := json.Marshal(lastViewed{Index: sel.Index, Text: sel.Quote.Text, Category: sel.Quote.Category})
	if err == nil {
		err = s.session.Set(ctx, ports.KeyLastViewed, data)
	}

	if err != nil {
		s.logger.WarnContext(ctx, "remembering last viewed quote failed",
			slog.Any("error", domain.NewPersistenceError("set", ports.KeyLastViewed, err)),
		)
	}
}

func (s *QuoteService) readLastViewed(ctx context.Context) (lastViewed, bool) {
	var last lastViewed

	raw, found, err := s.session.Get(ctx, ports.KeyLastViewed)
	if err != nil || !found {
		return last, false
	}

	if err := json.Unmarshal(raw, &last); err != nil {
		return last, false
	}

	return last, true
}

// AvailableCategories returns the distinct categories in the store, sorted.
func (s *QuoteService) AvailableCategories() []string {
	return s.store.Categories()
}

// Quotes returns every stored quote in order.
func (s *QuoteService) Quotes() []domain.Quote {
	return s.store.Quotes()
}

// AddQuote stores a new quote, makes it the current selection, and
// publishes it to the remote in the background. A quote outside the active
// filter does not become current. Publish failures are logged only.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := s.store.Add(ctx, text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	// Add appends, so the new record is the last match in the pool.
	pool := s.pool(ctx)
	for i := len(pool) - 1; i >= 0; i-- {
		if pool[i].Equal(q) {
			s.remember(ctx, domain.SelectionAt(pool[i], i))
			break
		}
	}

	if s.engine != nil {
		publishCtx := context.WithoutCancel(ctx)

		s.background.Go(func() {
			s.engine.Publish(publishCtx, q)
		})
	}

	return q, nil
}

// Filter returns the selected category.
func (s *QuoteService) Filter(ctx context.Context) string {
	return s.filter.Get(ctx)
}

// SetFilter changes the selected category. A category that is not in the
// store is accepted; it yields an empty pool until a matching quote arrives.
func (s *QuoteService) SetFilter(ctx context.Context, category string) error {
	if err := s.filter.Set(ctx, category); err != nil {
		return err
	}

	selected := s.filter.Get(ctx)
	if selected != domain.FilterAll && !slices.Contains(s.store.Categories(), selected) {
		s.logger.WarnContext(ctx, "filter matches no stored quote", slog.String("category", selected))
	}

	return nil
}

// ImportDocument merges a JSON document into the store.
func (s *QuoteService) ImportDocument(ctx context.Context, r io.Reader) (ImportResult, error) {
	return s.store.Import(ctx, r)
}

// ExportDocument renders the whole store as a JSON document.
func (s *QuoteService) ExportDocument() ([]byte, error) {
	return ExportDocument(s.store.Quotes())
}

// SyncNow runs a sync cycle immediately.
func (s *QuoteService) SyncNow(ctx context.Context) (SyncResult, error) {
	if s.engine == nil {
		return SyncResult{}, domain.NewUnavailableError("sync", "remote sync is disabled")
	}

	return s.engine.SyncOnce(ctx)
}

// SyncStatus reports the sync engine's state. Without an engine it is
// always idle and never synced.
func (s *QuoteService) SyncStatus() SyncStatus {
	if s.engine == nil {
		return SyncStatus{State: SyncIdle}
	}

	return s.engine.Status()
}

// Close waits for background publishes to finish.
func (s *QuoteService) Close() {
	s.background.Wait()
}
