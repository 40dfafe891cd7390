// Package view provides the pure, memoizable projections over store
// snapshots: joining insights with their books, filtering, sorting, and
// limiting for presentation. Nothing here mutates store state.
package view

import (
	"sync"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/store"
)

// JoinInsightsWithBooks produces an InsightWithBook for every insight in the
// snapshot. An insight whose book is missing gets the placeholder book rather
// than breaking the view.
func JoinInsightsWithBooks(insights *store.InsightSnapshot, books *store.BookSnapshot) []domain.InsightWithBook {
	out := make([]domain.InsightWithBook, 0, insights.Len())
	for _, ins := range insights.Insights() {
		book, ok := books.Book(ins.BookID)
		if !ok {
			book = domain.PlaceholderBookFor(&ins)
		}
		out = append(out, domain.InsightWithBook{Insight: ins, Book: book})
	}
	return out
}

// JoinBooksWithInsights produces a BookWithInsights for every book, resolving
// each book's insights through the byBookID index (O(1) per book rather than
// a scan). LastUpdated is the newest insight's creation time, falling back to
// the book's own creation time for books without insights.
func JoinBooksWithInsights(books *store.BookSnapshot, insights *store.InsightSnapshot) []domain.BookWithInsights {
	out := make([]domain.BookWithInsights, 0, books.Len())
	for _, book := range books.Books() {
		bookInsights := insights.ForBook(book.ID)

		lastUpdated := book.CreatedAt
		for _, ins := range bookInsights {
			if ins.CreatedAt.After(lastUpdated) {
				lastUpdated = ins.CreatedAt
			}
		}

		out = append(out, domain.BookWithInsights{
			Book:         book,
			Insights:     SortInsightsByRecency(bookInsights),
			InsightCount: len(bookInsights),
			LastUpdated:  lastUpdated,
		})
	}
	return out
}

// Builder memoizes the joined projections on snapshot identity. Snapshots are
// immutable and replaced wholesale on every store mutation, so pointer
// equality is a complete change check.
type Builder struct {
	mu sync.Mutex

	insightsSnap *store.InsightSnapshot
	booksSnap    *store.BookSnapshot

	insightsWithBooks []domain.InsightWithBook
	booksWithInsights []domain.BookWithInsights
}

// NewBuilder creates an empty view builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// InsightsWithBooks returns the joined insight list, sorted newest-first,
// recomputing only when either snapshot changed identity.
func (b *Builder) InsightsWithBooks(insights *store.InsightSnapshot, books *store.BookSnapshot) []domain.InsightWithBook {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stale(insights, books) {
		b.recompute(insights, books)
	}
	return b.insightsWithBooks
}

// BooksWithInsights returns the joined book list, sorted by activity,
// recomputing only when either snapshot changed identity.
func (b *Builder) BooksWithInsights(insights *store.InsightSnapshot, books *store.BookSnapshot) []domain.BookWithInsights {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stale(insights, books) {
		b.recompute(insights, books)
	}
	return b.booksWithInsights
}

func (b *Builder) stale(insights *store.InsightSnapshot, books *store.BookSnapshot) bool {
	return b.insightsSnap != insights || b.booksSnap != books
}

func (b *Builder) recompute(insights *store.InsightSnapshot, books *store.BookSnapshot) {
	b.insightsSnap = insights
	b.booksSnap = books
	b.insightsWithBooks = SortJoinedInsightsByRecency(JoinInsightsWithBooks(insights, books))
	b.booksWithInsights = SortBooksByActivity(JoinBooksWithInsights(books, insights))
}
