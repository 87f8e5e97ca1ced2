package dto

import (
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// QuoteResponse is one quote.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Remote   bool   `json:"remote"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category, Remote: q.IsRemote()}
}

// SelectionResponse is the quote currently on display. Quote is null when the
// filtered pool is empty.
type SelectionResponse struct {
	Quote  *QuoteResponse `json:"quote"`
	Index  int            `json:"index"`
	Filter string         `json:"filter"`
}

// NewSelectionResponse converts a selection made under filter.
func NewSelectionResponse(sel domain.Selection, filter string) SelectionResponse {
	resp := SelectionResponse{Index: -1, Filter: filter}

	if !sel.Empty() {
		q := NewQuoteResponse(sel.Quote)
		resp.Quote = &q
		resp.Index = sel.Index
	}

	return resp
}

// AddQuoteRequest is the body of POST /api/v1/quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notblank,max=2000"`
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// CategoriesResponse lists categories and the active filter.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Filter     string   `json:"filter"`
}

// FilterRequest is the body of PUT /api/v1/filter.
type FilterRequest struct {
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// FilterResponse reports the active filter.
type FilterResponse struct {
	Category string `json:"category"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
	Total      int `json:"total"`
}

// NewImportResponse converts an import result; Total is the store size after
// the import.
func NewImportResponse(r app.ImportResult, total int) ImportResponse {
	return ImportResponse{Accepted: r.Accepted, Duplicates: r.Duplicates, Rejected: r.Rejected, Total: total}
}

// SyncStatusResponse reports the sync engine state.
type SyncStatusResponse struct {
	State        string     `json:"state"`
	LastResult   string     `json:"lastResult,omitempty"`
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
	LastMerged   int        `json:"lastMerged"`
}

// NewSyncStatusResponse converts a sync status.
func NewSyncStatusResponse(s app.SyncStatus) SyncStatusResponse {
	resp := SyncStatusResponse{
		State:      string(s.State),
		LastResult: string(s.LastResult),
		LastError:  s.LastError,
		LastMerged: s.LastMerged,
	}

	if s.HasSynced {
		t := s.LastSyncTime.UTC()
		resp.LastSyncTime = &t
	}

	return resp
}

// SyncResultResponse reports one manual sync.
type SyncResultResponse struct {
	Skipped bool               `json:"skipped"`
	Fetched int                `json:"fetched"`
	Merged  int                `json:"merged"`
	Status  SyncStatusResponse `json:"status"`
}

// NewSyncResultResponse converts a sync result and the status after it.
func NewSyncResultResponse(r app.SyncResult, s app.SyncStatus) SyncResultResponse {
	return SyncResultResponse{
		Skipped: r.Skipped,
		Fetched: r.Fetched,
		Merged:  r.Merged,
		Status:  NewSyncStatusResponse(s),
	}
}
