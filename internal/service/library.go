// Package service contains the orchestration layer that sequences operations
// across the independent book and insight stores.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/errors"
	"github.com/marginalia-app/marginalia-server/internal/storage"
	"github.com/marginalia-app/marginalia-server/internal/store"
)

// Library coordinates the cross-store invariants: whenever an insight is
// added, updated, or deleted, the owning book's UpdatedAt is refreshed. The
// two stores never call each other; this service sequences them. There is no
// two-phase rollback — if the insight write succeeds and the book touch
// fails, the insight stays persisted and the secondary failure is logged.
type Library struct {
	books    *store.BookStore
	insights *store.InsightStore
	adapter  *storage.Adapter
	logger   *slog.Logger
}

// NewLibrary creates the coordinator over the two stores.
func NewLibrary(books *store.BookStore, insights *store.InsightStore, adapter *storage.Adapter, logger *slog.Logger) *Library {
	return &Library{
		books:    books,
		insights: insights,
		adapter:  adapter,
		logger:   logger,
	}
}

// Initialize loads both stores from durable storage. This is the explicit
// load step that replaces the source app's load-on-import side effect; call
// it once at process start.
func (l *Library) Initialize(ctx context.Context) error {
	if err := l.books.Load(ctx); err != nil {
		return err
	}
	if err := l.insights.Load(ctx); err != nil {
		return err
	}
	l.logger.Info("library initialized",
		"books", l.books.Snapshot().Len(),
		"insights", l.insights.Snapshot().Len(),
	)
	return nil
}

// Books returns the current book snapshot.
func (l *Library) Books() *store.BookSnapshot {
	return l.books.Snapshot()
}

// Insights returns the current insight snapshot.
func (l *Library) Insights() *store.InsightSnapshot {
	return l.insights.Snapshot()
}

// GetBook returns a book by id.
func (l *Library) GetBook(bookID string) (*domain.Book, error) {
	return l.books.Get(bookID)
}

// GetInsight returns an insight by id.
func (l *Library) GetInsight(insightID string) (*domain.Insight, error) {
	return l.insights.Get(insightID)
}

// FindBookByTitleAndAuthor looks up a book by its normalized (title, author) pair.
func (l *Library) FindBookByTitleAndAuthor(title, author string) (*domain.Book, bool) {
	return l.books.FindByTitleAndAuthor(title, author)
}

// FindOrCreateBook returns the existing book matching the normalized
// (title, author) pair, creating it when absent. This is the find-before-create
// uniqueness policy; it is not a hard constraint.
func (l *Library) FindOrCreateBook(ctx context.Context, title, author string) (*domain.Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.Validation("book title is required")
	}
	if strings.TrimSpace(author) == "" {
		author = domain.UnknownBookAuthor
	}

	if book, ok := l.books.FindByTitleAndAuthor(title, author); ok {
		return book, nil
	}
	return l.books.Create(ctx, title, author)
}

// UpdateBook applies a partial update and bumps the book's UpdatedAt.
func (l *Library) UpdateBook(ctx context.Context, bookID string, update domain.BookUpdate) (*domain.Book, error) {
	return l.books.Update(ctx, bookID, update)
}

// AddInsight validates the payload, adds the insight, then touches the owning
// book so it bubbles up in activity ordering. Fails fast before touching
// either store when the book reference is missing.
func (l *Library) AddInsight(ctx context.Context, data domain.Insight) (*domain.Insight, error) {
	if data.BookID == "" {
		return nil, errors.Validation("insight is missing book_id")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	ins, err := l.insights.Add(ctx, data)
	if err != nil {
		return nil, err
	}

	l.touchBook(ctx, ins.BookID, "add")
	return ins, nil
}

// UpdateInsight validates the merged result, updates the insight, and touches
// the owning book — but only if the updated insight's book matches the bookID
// the caller passed, guarding against caller mismatch.
func (l *Library) UpdateInsight(ctx context.Context, insightID string, update domain.InsightUpdate, bookID string) (*domain.Insight, error) {
	current, err := l.insights.Get(insightID)
	if err != nil {
		return nil, err
	}

	// Validate the would-be result at the boundary; the store trusts it.
	merged := *current
	update.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	ins, err := l.insights.Update(ctx, insightID, update)
	if err != nil {
		return nil, err
	}

	if ins.BookID == bookID {
		l.touchBook(ctx, ins.BookID, "update")
	} else {
		l.logger.Warn("skipping book touch, caller book mismatch",
			"insight_id", insightID,
			"insight_book_id", ins.BookID,
			"caller_book_id", bookID,
		)
	}
	return ins, nil
}

// DeleteInsight deletes the insight (idempotent) and then touches the book.
// The caller supplies the owning book id since the insight is already gone
// and its BookID can no longer be read back.
func (l *Library) DeleteInsight(ctx context.Context, insightID, bookID string) error {
	if err := l.insights.Delete(ctx, insightID); err != nil {
		return err
	}

	if bookID != "" {
		l.touchBook(ctx, bookID, "delete")
	}
	return nil
}

// ResetCollection removes a persisted collection and reloads the owning store,
// leaving it empty. Destructive; exposed for the debug surface only.
func (l *Library) ResetCollection(ctx context.Context, c storage.Collection) error {
	if !c.Valid() {
		return errors.Validationf("unknown collection %q", c)
	}
	if err := l.adapter.Remove(c); err != nil {
		return err
	}

	switch c {
	case storage.CollectionBooks:
		return l.books.Load(ctx)
	case storage.CollectionInsights:
		return l.insights.Load(ctx)
	}
	return nil
}

// touchBook bumps the book's UpdatedAt with an empty update. A failure here
// is a partial success: the insight mutation is already persisted, so the
// secondary failure is logged and surfaced no further.
func (l *Library) touchBook(ctx context.Context, bookID, op string) {
	if _, err := l.books.Update(ctx, bookID, domain.BookUpdate{}); err != nil {
		l.logger.Warn("book touch failed after insight mutation",
			"book_id", bookID,
			"op", op,
			"error", err,
		)
	}
}
