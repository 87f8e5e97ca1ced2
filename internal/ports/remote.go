package ports

import "context"

// RemoteRecord is one record exchanged with the remote quote source.
// Only Title carries quote text; the other fields are passed through opaquely.
type RemoteRecord struct {
	ID       int
	Title    string
	Body     string
	Category string
}

// RemoteQuoteSource is the remote collaborator the sync engine reconciles with.
//
// Key considerations:
//   - Timeouts come from the adapter's HTTP client, not from callers
//   - Failures are returned as domain.ErrUnavailable (or wrap it)
type RemoteQuoteSource interface {
	// FetchBatch returns at most limit records.
	FetchBatch(ctx context.Context, limit int) ([]RemoteRecord, error)

	// PostRecord sends one record to the remote.
	PostRecord(ctx context.Context, record RemoteRecord) error
}
