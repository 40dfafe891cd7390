package view

import (
	"slices"
	"strings"

	"github.com/marginalia-app/marginalia-server/internal/domain"
)

// SortInsightsByRecency returns the insights sorted newest-CreatedAt-first.
// Ties break on id so the order is stable across map iterations.
func SortInsightsByRecency(insights []domain.Insight) []domain.Insight {
	sorted := slices.Clone(insights)
	slices.SortFunc(sorted, func(a, b domain.Insight) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// SortJoinedInsightsByRecency is SortInsightsByRecency over joined records.
func SortJoinedInsightsByRecency(insights []domain.InsightWithBook) []domain.InsightWithBook {
	sorted := slices.Clone(insights)
	slices.SortFunc(sorted, func(a, b domain.InsightWithBook) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// SortBooksByActivity returns the books sorted by insight count descending,
// tie-broken by most-recently-updated, then by id for stability.
func SortBooksByActivity(books []domain.BookWithInsights) []domain.BookWithInsights {
	sorted := slices.Clone(books)
	slices.SortFunc(sorted, func(a, b domain.BookWithInsights) int {
		if a.InsightCount != b.InsightCount {
			return b.InsightCount - a.InsightCount
		}
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}
