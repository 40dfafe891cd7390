// Package store owns the in-memory indexed state for Marginalia: a books
// store and an insights store, each holding O(1) lookup maps rebuilt from the
// durable adapter at startup and persisted write-through on every mutation.
//
// Mutations are copy-on-write: each successful write publishes a fresh
// immutable snapshot through an atomic pointer, so readers always see a
// consistent state and can use snapshot identity for memoized recomputation.
// Writers are serialized per store by a mutex; the stores never mutate a
// published snapshot.
package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/errors"
	"github.com/marginalia-app/marginalia-server/internal/id"
	"github.com/marginalia-app/marginalia-server/internal/storage"
)

// BookSnapshot is an immutable view of the books map.
// Callers must not mutate the returned values.
type BookSnapshot struct {
	books map[string]domain.Book
}

// Book returns the book with the given id.
func (s *BookSnapshot) Book(bookID string) (domain.Book, bool) {
	b, ok := s.books[bookID]
	return b, ok
}

// Books returns the id-keyed book map. Read-only by contract.
func (s *BookSnapshot) Books() map[string]domain.Book {
	return s.books
}

// Len returns the number of books.
func (s *BookSnapshot) Len() int {
	return len(s.books)
}

// BookStore is the canonical owner of the Book collection.
type BookStore struct {
	adapter *storage.Adapter
	logger  *slog.Logger

	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[BookSnapshot]
}

// NewBookStore creates an empty book store. Call Load before first use.
func NewBookStore(adapter *storage.Adapter, logger *slog.Logger) *BookStore {
	s := &BookStore{
		adapter: adapter,
		logger:  logger,
	}
	s.snap.Store(&BookSnapshot{books: map[string]domain.Book{}})
	return s
}

// Load reads the full collection from the adapter and rebuilds the map from
// scratch. Safe to call again to force a full reload.
func (s *BookStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	items, err := storage.Get[domain.Book](s.adapter, storage.CollectionBooks)
	if err != nil {
		return err
	}

	books := make(map[string]domain.Book, len(items))
	for _, b := range items {
		books[b.ID] = b
	}

	s.mu.Lock()
	s.snap.Store(&BookSnapshot{books: books})
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("books loaded", "count", len(books))
	}
	return nil
}

// Snapshot returns the current immutable snapshot.
func (s *BookStore) Snapshot() *BookSnapshot {
	return s.snap.Load()
}

// Get returns the book with the given id, or ErrNotFound.
func (s *BookStore) Get(bookID string) (*domain.Book, error) {
	if b, ok := s.snap.Load().books[bookID]; ok {
		return &b, nil
	}
	return nil, errors.NotFoundf("book %s not found", bookID)
}

// FindByTitleAndAuthor scans for a case-insensitive, whitespace-trimmed match
// and returns the first hit. O(n) over the books map, which is fine at
// personal-library scale.
func (s *BookStore) FindByTitleAndAuthor(title, author string) (*domain.Book, bool) {
	for _, b := range s.snap.Load().books {
		if b.MatchesTitleAuthor(title, author) {
			found := b
			return &found, true
		}
	}
	return nil, false
}

// Create trims the inputs, assigns a fresh id and timestamps, and inserts the
// new book. The write is write-through: the snapshot is only published after
// the full collection has been persisted, so a failed write leaves the
// externally visible state untouched.
func (s *BookStore) Create(ctx context.Context, title, author string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate book id")
	}

	book := domain.Book{
		Title:  strings.TrimSpace(title),
		Author: strings.TrimSpace(author),
	}
	book.ID = bookID
	book.InitTimestamps()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	books := cloneBooks(cur.books)
	books[book.ID] = book

	if err := s.persist(books); err != nil {
		return nil, err
	}
	s.snap.Store(&BookSnapshot{books: books})

	if s.logger != nil {
		s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	}
	return &book, nil
}

// Update merges the partial update over the existing book and always bumps
// UpdatedAt, even when the update is empty. An empty update is how the
// coordinator touches a book after its insights change.
// Returns ErrNotFound if the id is absent.
func (s *BookStore) Update(ctx context.Context, bookID string, update domain.BookUpdate) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	book, ok := cur.books[bookID]
	if !ok {
		return nil, errors.NotFoundf("book %s not found", bookID)
	}

	update.Apply(&book)
	book.Touch()

	books := cloneBooks(cur.books)
	books[bookID] = book

	if err := s.persist(books); err != nil {
		return nil, err
	}
	s.snap.Store(&BookSnapshot{books: books})

	return &book, nil
}

// persist writes the entire collection. Serialize-all-on-write is the
// deliberate persistence policy at this scale.
func (s *BookStore) persist(books map[string]domain.Book) error {
	items := make([]domain.Book, 0, len(books))
	for _, b := range books {
		items = append(items, b)
	}
	return storage.Set(s.adapter, storage.CollectionBooks, items)
}

func cloneBooks(src map[string]domain.Book) map[string]domain.Book {
	dst := make(map[string]domain.Book, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
