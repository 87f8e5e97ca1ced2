// Package domain contains core business entities and rules.
package domain

import "strings"

// SentinelCategory marks a quote whose text came from the remote source.
const SentinelCategory = "Server"

// FilterAll is the filter value that selects every category.
const FilterAll = "all"

// Quote is a piece of text filed under a category.
// This is a domain entity - it has no knowledge of external systems.
// Values are immutable; build them with NewQuote so the invariants hold.
type Quote struct {
	// Text is the quotation itself, never blank.
	Text string

	// Category groups quotes for filtering, never blank.
	Category string
}

// NewQuote trims and validates both fields.
// It is the single validation path for every way a quote enters the store.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	if category == "" {
		return Quote{}, NewValidationError("category", "must not be empty")
	}

	return Quote{Text: text, Category: category}, nil
}

// Equal reports structural (text, category) equality.
func (q Quote) Equal(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category
}

// IsRemote reports whether the quote carries the remote provenance marker.
func (q Quote) IsRemote() bool {
	return q.Category == SentinelCategory
}

// Precedence decides which side wins when a merge finds two records with the same text.
type Precedence string

const (
	// IncomingWins replaces the stored record with the incoming one.
	IncomingWins Precedence = "incoming-wins"

	// LocalWins keeps the stored record and discards the incoming one.
	LocalWins Precedence = "local-wins"
)

// Valid reports whether p is a known policy.
func (p Precedence) Valid() bool {
	return p == IncomingWins || p == LocalWins
}

// DefaultQuotes returns the built-in seed collection. Never empty.
func DefaultQuotes() []Quote {
	return []Quote{
		{Text: "The best way to get started is to quit talking and begin doing.", Category: "Motivation"},
		{Text: "Code is like humor. When you have to explain it, it's bad.", Category: "Programming"},
		{Text: "Simplicity is the ultimate sophistication.", Category: "Design"},
	}
}
