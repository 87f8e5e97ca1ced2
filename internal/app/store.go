package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// QuoteStore owns the ordered quote collection and every way it can change.
// All mutations hold the write lock across mutate and persist, so a sync merge
// and a manual add never interleave their whole-collection writes.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []domain.Quote
	kv     ports.KeyValueStore
	logger *slog.Logger
}

// NewQuoteStore creates a store seeded with the default quotes.
// Call Load to replace them with persisted state.
func NewQuoteStore(kv ports.KeyValueStore, logger *slog.Logger) *QuoteStore {
	if kv == nil {
		panic("quote store requires a key-value store")
	}

	return &QuoteStore{
		quotes: domain.DefaultQuotes(),
		kv:     kv,
		logger: logging.Component(logger, "quote_store"),
	}
}

// Load replaces the collection with the persisted one. Absent, unreadable or
// corrupt data, or data with no valid entry, falls back to the defaults.
func (s *QuoteStore) Load(ctx context.Context) {
	loaded := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(loaded) == 0 {
		s.quotes = domain.DefaultQuotes()

		return
	}

	s.quotes = loaded
}

func (s *QuoteStore) readPersisted(ctx context.Context) []domain.Quote {
	raw, found, err := s.kv.Get(ctx, ports.KeyQuotes)
	if err != nil {
		s.logger.WarnContext(ctx, "reading quotes failed, using defaults",
			slog.Any("error", domain.NewPersistenceError("get", ports.KeyQuotes, err)),
		)

		return nil
	}

	if !found {
		s.logger.InfoContext(ctx, "no persisted quotes, using defaults")

		return nil
	}

	elements, err := decodeDocument(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "persisted quotes are corrupt, using defaults", slog.Any("error", err))

		return nil
	}

	quotes := make([]domain.Quote, 0, len(elements))

	for _, el := range elements {
		q, err := decodeQuote(el)
		if err != nil {
			continue
		}

		quotes = append(quotes, q)
	}

	if dropped := len(elements) - len(quotes); dropped > 0 {
		s.logger.WarnContext(ctx, "dropped invalid persisted quotes", slog.Int("dropped", dropped))
	}

	return quotes
}

// Save writes the whole collection through the key-value store.
func (s *QuoteStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx)
}

func (s *QuoteStore) saveLocked(ctx context.Context) error {
	data, err := ExportDocument(s.quotes)
	if err != nil {
		return domain.NewPersistenceError("set", ports.KeyQuotes, err)
	}

	if err := s.kv.Set(ctx, ports.KeyQuotes, data); err != nil {
		return domain.NewPersistenceError("set", ports.KeyQuotes, err)
	}

	return nil
}

// persistLocked saves and logs a failure. The in-memory collection stays
// authoritative for the rest of the session.
func (s *QuoteStore) persistLocked(ctx context.Context) {
	if err := s.saveLocked(ctx); err != nil {
		s.logger.ErrorContext(ctx, "persisting quotes failed", slog.Any("error", err))
	}
}

// Add validates and appends one quote, then persists.
func (s *QuoteStore) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)
	s.persistLocked(ctx)

	s.logger.DebugContext(ctx, "quote added", slog.String("category", q.Category))

	return q, nil
}

// MergeIncoming reconciles candidates with the collection.
//
// A candidate conflicts with a stored record that has the same text,
// whatever its category. IncomingWins replaces that record in place and
// LocalWins keeps it. Candidates without a conflict are appended, and a
// candidate already stored verbatim is left alone.
// The returned count covers records added or actually changed; the store is
// persisted once when it is non-zero.
func (s *QuoteStore) MergeIncoming(ctx context.Context, candidates []domain.Quote, precedence domain.Precedence) (int, error) {
	if !precedence.Valid() {
		return 0, domain.NewValidationErrorWithValue("precedence", "unknown merge policy", string(precedence))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0

	for _, candidate := range candidates {
		q, err := domain.NewQuote(candidate.Text, candidate.Category)
		if err != nil {
			s.logger.DebugContext(ctx, "skipping invalid merge candidate", slog.Any("error", err))

			continue
		}

		if slices.ContainsFunc(s.quotes, q.Equal) {
			continue
		}

		idx := slices.IndexFunc(s.quotes, func(existing domain.Quote) bool {
			return existing.Text == q.Text
		})

		switch {
		case idx < 0:
			s.quotes = append(s.quotes, q)
			changed++
		case precedence == domain.IncomingWins:
			s.quotes[idx] = q
			changed++
		}
	}

	if changed > 0 {
		s.persistLocked(ctx)
	}

	return changed, nil
}

// Quotes returns a copy of the collection in insertion order.
func (s *QuoteStore) Quotes() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Categories returns the distinct categories, sorted.
func (s *QuoteStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]string, 0, len(s.quotes))
	for _, q := range s.quotes {
		categories = append(categories, q.Category)
	}

	slices.Sort(categories)

	return slices.Compact(categories)
}

// decodeQuote runs one array element through the same validation as Add.
func decodeQuote(raw json.RawMessage) (domain.Quote, error) {
	var rec quoteRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Quote{}, domain.NewValidationError("", fmt.Sprintf("malformed entry: %v", err))
	}

	return domain.NewQuote(rec.Text, rec.Category)
}
