package domain

import "time"

// InsightWithBook is an insight joined with its owning book.
// For orphaned insights the book is the placeholder from PlaceholderBookFor.
type InsightWithBook struct {
	Insight
	Book Book `json:"book"`
}

// BookWithInsights is a book joined with the insights that reference it,
// plus the display stats computed for ordering.
type BookWithInsights struct {
	Book
	Insights     []Insight `json:"insights"`
	InsightCount int       `json:"insight_count"`
	// LastUpdated is the most recent insight's creation time, or the book's
	// own creation time when the book has no insights.
	LastUpdated time.Time `json:"last_updated"`
}
