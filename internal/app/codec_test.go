package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/mocks"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

func TestExportDocument(t *testing.T) {
	data, err := ExportDocument([]domain.Quote{qt("a", "b"), qt(`say "hi"`, "c")})

	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "text": "a",
    "category": "b"
  },
  {
    "text": "say \"hi\"",
    "category": "c"
  }
]`, string(data))
}

func TestExportDocument_Empty(t *testing.T) {
	data, err := ExportDocument(nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestQuoteStore_ImportFormatErrors(t *testing.T) {
	docs := map[string]string{
		"empty":         "",
		"not JSON":      "{{{",
		"object":        `{"text":"a","category":"b"}`,
		"string":        `"quotes"`,
		"null":          "null",
		"trailing junk": `[{"text":"a","category":"b"}] x`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			// No Set expectation: nothing may be written.
			kv := mocks.NewMockKeyValueStore(t)
			store := NewQuoteStore(kv, discardLogger())

			result, err := store.Import(context.Background(), strings.NewReader(doc))

			require.ErrorIs(t, err, domain.ErrFormat)
			assert.Equal(t, ImportResult{}, result)
			assert.Equal(t, domain.DefaultQuotes(), store.Quotes())
		})
	}
}

func TestQuoteStore_ImportCounts(t *testing.T) {
	store, kv := seededStore(t, qt("existing", "Design"))

	doc := `[
		{"text":"existing","category":"Design"},
		{"text":"existing","category":"Other"},
		{"text":"fresh","category":"New"},
		{"text":"fresh","category":"New"},
		{"text":"","category":"New"},
		{"text":"missing category"},
		42,
		{"text":"  trimmed  ","category":" New "}
	]`

	result, err := store.Import(context.Background(), strings.NewReader(doc))

	require.NoError(t, err)
	assert.Equal(t, ImportResult{Accepted: 3, Duplicates: 2, Rejected: 3}, result)
	assert.Equal(t, []domain.Quote{
		qt("existing", "Design"),
		qt("existing", "Other"),
		qt("fresh", "New"),
		qt("trimmed", "New"),
	}, store.Quotes())
	assert.Equal(t, store.Quotes(), persistedQuotes(t, kv))
}

func TestQuoteStore_ImportThenMergeKeepsRecordsDistinct(t *testing.T) {
	store, kv := seededStore(t, qt("x", "Design"))

	_, err := store.Import(context.Background(), strings.NewReader(`[{"text":"x","category":"Server"}]`))
	require.NoError(t, err)
	require.Equal(t, []domain.Quote{qt("x", "Design"), qt("x", "Server")}, store.Quotes())

	count, err := store.MergeIncoming(context.Background(), []domain.Quote{qt("x", domain.SentinelCategory)}, domain.IncomingWins)

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, []domain.Quote{qt("x", "Design"), qt("x", "Server")}, store.Quotes())
	assert.Equal(t, store.Quotes(), persistedQuotes(t, kv))
}

func TestQuoteStore_ImportSavesOnce(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Set(mock.Anything, ports.KeyQuotes, mock.Anything).Return(nil).Once()

	store := NewQuoteStore(kv, discardLogger())

	result, err := store.Import(context.Background(),
		strings.NewReader(`[{"text":"a","category":"x"},{"text":"b","category":"x"},{"text":"c","category":"y"}]`))

	require.NoError(t, err)
	assert.Equal(t, 3, result.Accepted)
}

func TestQuoteStore_ImportNothingNewSkipsSave(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	store := NewQuoteStore(kv, discardLogger())

	data, err := ExportDocument(domain.DefaultQuotes())
	require.NoError(t, err)

	result, err := store.Import(context.Background(), bytes.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, ImportResult{Duplicates: len(domain.DefaultQuotes())}, result)
}

func TestQuoteStore_ImportReadError(t *testing.T) {
	store, _ := seededStore(t)
	cause := errors.New("read failed")

	_, err := store.Import(context.Background(), iotest.ErrReader(cause))

	require.ErrorIs(t, err, cause)
	assert.False(t, domain.IsFormat(err))
}

func TestImportExportRoundTrip(t *testing.T) {
	source, _ := seededStore(t)
	_, err := source.Add(context.Background(), "Ship early", "Process")
	require.NoError(t, err)
	_, err = source.Add(context.Background(), "Measure twice", "Craft")
	require.NoError(t, err)

	doc, err := ExportDocument(source.Quotes())
	require.NoError(t, err)

	target, _ := seededStore(t)

	result, err := target.Import(context.Background(), bytes.NewReader(doc))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, source.Quotes(), target.Quotes())
}
