package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// ExportFilename is the suggested name for a downloaded export.
const ExportFilename = "quotes_export.json"

// quoteRecord is the wire shape of one quote in a document and in storage.
type quoteRecord struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ImportResult counts what happened to each element of an imported document.
type ImportResult struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

// ExportDocument renders quotes as an indented JSON array in the given order.
func ExportDocument(quotes []domain.Quote) ([]byte, error) {
	records := make([]quoteRecord, len(quotes))
	for i, q := range quotes {
		records[i] = quoteRecord{Text: q.Text, Category: q.Category}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// decodeDocument splits a document into its array elements without
// interpreting them.
func decodeDocument(data []byte) ([]json.RawMessage, error) {
	if !json.Valid(data) {
		return nil, domain.NewFormatError("not valid JSON", nil)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, domain.NewFormatError("top-level value must be an array", nil)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, domain.NewFormatError("reading array", err)
	}

	return elements, nil
}

// Import reads a whole document from r and merges it into the store.
//
// Elements failing validation are rejected. Elements equal to a stored quote,
// including one accepted earlier from the same document, count as duplicates.
// The rest are appended in document order and the store is persisted once.
// A document that is not a JSON array changes nothing.
func (s *QuoteStore) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	data, err := io.ReadAll(r)
	if err != nil {
		return result, fmt.Errorf("reading import document: %w", err)
	}

	elements, err := decodeDocument(data)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, el := range elements {
		q, err := decodeQuote(el)
		if err != nil {
			result.Rejected++

			continue
		}

		if s.containsLocked(q) {
			result.Duplicates++

			continue
		}

		s.quotes = append(s.quotes, q)
		result.Accepted++
	}

	if result.Accepted > 0 {
		s.persistLocked(ctx)
	}

	s.logger.InfoContext(ctx, "import finished",
		slog.Int("accepted", result.Accepted),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("rejected", result.Rejected),
	)

	return result, nil
}

func (s *QuoteStore) containsLocked(q domain.Quote) bool {
	for _, existing := range s.quotes {
		if existing.Equal(q) {
			return true
		}
	}

	return false
}
