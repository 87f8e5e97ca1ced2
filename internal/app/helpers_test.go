package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seededStore returns a loaded store over a memory KV holding quotes.
func seededStore(t *testing.T, quotes ...domain.Quote) (*QuoteStore, *memory.Store) {
	t.Helper()

	kv := memory.New("test")

	if len(quotes) > 0 {
		data, err := ExportDocument(quotes)
		require.NoError(t, err)
		require.NoError(t, kv.Set(context.Background(), ports.KeyQuotes, data))
	}

	store := NewQuoteStore(kv, discardLogger())
	store.Load(context.Background())

	return store, kv
}

// persistedQuotes decodes what the store last wrote.
func persistedQuotes(t *testing.T, kv ports.KeyValueStore) []domain.Quote {
	t.Helper()

	raw, found, err := kv.Get(context.Background(), ports.KeyQuotes)
	require.NoError(t, err)
	require.True(t, found, "quotes were never persisted")

	var records []quoteRecord
	require.NoError(t, json.Unmarshal(raw, &records))

	quotes := make([]domain.Quote, len(records))
	for i, r := range records {
		quotes[i] = domain.Quote{Text: r.Text, Category: r.Category}
	}

	return quotes
}

func qt(text, category string) domain.Quote {
	return domain.Quote{Text: text, Category: category}
}
