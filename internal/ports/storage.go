// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Keep interfaces small and focused
package ports

import "context"

// Storage keys shared by every KeyValueStore implementation.
const (
	// KeyQuotes holds the JSON array of {text, category}.
	KeyQuotes = "quotes"

	// KeySelectedCategory holds the raw filter string.
	KeySelectedCategory = "selected_category"

	// KeyLastSync holds the RFC 3339 time of the last successful sync.
	KeyLastSync = "last_sync"

	// KeyLastViewed holds the quote last shown to the user (session store only).
	KeyLastViewed = "last_viewed"
)

// KeyValueStore is the durable persistence medium behind the quote store.
// Values are opaque bytes; writes replace the whole value for a key.
//
// Implementations return raw infrastructure errors. The application layer
// wraps them in domain.PersistenceError.
type KeyValueStore interface {
	// Get returns the value for key. found is false when the key is absent;
	// that is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}
