package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// FilterState is the persisted selected category.
// It is read lazily on first use and written through on every change.
type FilterState struct {
	mu     sync.Mutex
	value  string
	loaded bool
	kv     ports.KeyValueStore
	logger *slog.Logger
}

// NewFilterState creates a filter backed by kv.
func NewFilterState(kv ports.KeyValueStore, logger *slog.Logger) *FilterState {
	if kv == nil {
		panic("filter state requires a key-value store")
	}

	return &FilterState{
		kv:     kv,
		logger: logging.Component(logger, "filter_state"),
	}
}

// Get returns the selected category, or domain.FilterAll when none was stored.
func (f *FilterState) Get(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return f.value
	}

	f.value = domain.FilterAll

	raw, found, err := f.kv.Get(ctx, ports.KeySelectedCategory)

	switch {
	case err != nil:
		f.logger.WarnContext(ctx, "reading filter failed, using all",
			slog.Any("error", domain.NewPersistenceError("get", ports.KeySelectedCategory, err)),
		)
	case found:
		if v := strings.TrimSpace(string(raw)); v != "" {
			f.value = v
		}
	}

	f.loaded = true

	return f.value
}

// Set selects a category and persists it immediately. A blank value is
// rejected. A persist failure is logged and the selection still applies.
func (f *FilterState) Set(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return domain.NewValidationError("category", "must not be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.value = category
	f.loaded = true

	if err := f.kv.Set(ctx, ports.KeySelectedCategory, []byte(category)); err != nil {
		f.logger.ErrorContext(ctx, "persisting filter failed",
			slog.Any("error", domain.NewPersistenceError("set", ports.KeySelectedCategory, err)),
		)
	}

	return nil
}
