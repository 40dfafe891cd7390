package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/errors"
	"github.com/marginalia-app/marginalia-server/internal/storage"
)

func setupInsightStore(t *testing.T) (*InsightStore, *storage.Adapter, func()) {
	t.Helper()

	adapter, cleanup := setupTestAdapter(t)
	s := NewInsightStore(adapter, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, adapter, cleanup
}

func testInsight(bookID string, category domain.Category) domain.Insight {
	ins := domain.Insight{
		BookID:   bookID,
		Category: category,
		Note:     "a reflection",
	}
	if category == domain.CategoryQuote {
		ins.Excerpt = "a quoted passage"
		ins.Note = ""
	}
	return ins
}

// requireIndexConsistent asserts the byBookID invariant: the index is exactly
// the partition of insights by book, with no empty sets.
func requireIndexConsistent(t *testing.T, snap *InsightSnapshot) {
	t.Helper()

	indexed := 0
	for bookID, ids := range snap.ByBookID() {
		require.NotEmpty(t, ids, "index holds an empty set for book %s", bookID)
		for insightID := range ids {
			ins, ok := snap.Insight(insightID)
			require.True(t, ok, "index references missing insight %s", insightID)
			require.Equal(t, bookID, ins.BookID)
			indexed++
		}
	}
	require.Equal(t, snap.Len(), indexed, "index does not cover every insight exactly once")
}

// TestInsightStore_Add tests adding and retrieving an insight
func TestInsightStore_Add(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ins, err := s.Add(context.Background(), testInsight("book-1", domain.CategoryThought))
	require.NoError(t, err)

	assert.NotEmpty(t, ins.ID)
	assert.Equal(t, "book-1", ins.BookID)
	assert.False(t, ins.CreatedAt.IsZero())
	assert.NotNil(t, ins.Tags)

	got, err := s.Get(ins.ID)
	require.NoError(t, err)
	assert.Equal(t, ins.Note, got.Note)

	requireIndexConsistent(t, s.Snapshot())
}

// TestInsightStore_Get_NotFound tests getting a nonexistent insight
func TestInsightStore_Get_NotFound(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	_, err := s.Get("ins-nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

// TestInsightStore_Index tests the index across adds to multiple books
func TestInsightStore_Index(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	a1, err := s.Add(ctx, testInsight("book-a", domain.CategoryThought))
	require.NoError(t, err)
	a2, err := s.Add(ctx, testInsight("book-a", domain.CategoryQuote))
	require.NoError(t, err)
	b1, err := s.Add(ctx, testInsight("book-b", domain.CategoryIdea))
	require.NoError(t, err)

	snap := s.Snapshot()
	requireIndexConsistent(t, snap)

	forA := snap.ForBook("book-a")
	ids := []string{forA[0].ID, forA[1].ID}
	assert.ElementsMatch(t, []string{a1.ID, a2.ID}, ids)

	forB := snap.ForBook("book-b")
	require.Len(t, forB, 1)
	assert.Equal(t, b1.ID, forB[0].ID)

	assert.Nil(t, snap.ForBook("book-c"))
}

// TestInsightStore_Update tests partial updates and that the owning book is immutable
func TestInsightStore_Update(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	ins, err := s.Add(ctx, testInsight("book-1", domain.CategoryThought))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	note := "revised reflection"
	tags := []string{"work"}
	updated, err := s.Update(ctx, ins.ID, domain.InsightUpdate{
		Note: &note,
		Tags: &tags,
	})
	require.NoError(t, err)

	assert.Equal(t, note, updated.Note)
	assert.Equal(t, tags, updated.Tags)
	assert.Equal(t, "book-1", updated.BookID)
	assert.Equal(t, ins.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(ins.UpdatedAt))

	requireIndexConsistent(t, s.Snapshot())
}

// TestInsightStore_Update_NotFound tests updating a nonexistent insight
func TestInsightStore_Update_NotFound(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	_, err := s.Update(context.Background(), "ins-nope", domain.InsightUpdate{})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

// TestInsightStore_Delete tests deletion and the empty-set garbage collection
func TestInsightStore_Delete(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	first, err := s.Add(ctx, testInsight("book-1", domain.CategoryThought))
	require.NoError(t, err)
	second, err := s.Add(ctx, testInsight("book-1", domain.CategoryIdea))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, first.ID))

	snap := s.Snapshot()
	requireIndexConsistent(t, snap)
	_, err = s.Get(first.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	require.Len(t, snap.ForBook("book-1"), 1)

	// Deleting the last insight removes the book's index entry entirely.
	require.NoError(t, s.Delete(ctx, second.ID))
	snap = s.Snapshot()
	requireIndexConsistent(t, snap)
	_, ok := snap.ByBookID()["book-1"]
	assert.False(t, ok)
}

// TestInsightStore_Delete_Idempotent tests that deleting twice is a no-op
func TestInsightStore_Delete_Idempotent(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	ins, err := s.Add(ctx, testInsight("book-1", domain.CategoryThought))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ins.ID))
	assert.NoError(t, s.Delete(ctx, ins.ID))
	assert.NoError(t, s.Delete(ctx, "ins-never-existed"))
}

// TestInsightStore_WriteThrough tests that the index is rebuilt correctly on reload
func TestInsightStore_WriteThrough(t *testing.T) {
	s, adapter, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := s.Add(ctx, testInsight("book-a", domain.CategoryThought))
	require.NoError(t, err)
	_, err = s.Add(ctx, testInsight("book-a", domain.CategoryQuote))
	require.NoError(t, err)
	_, err = s.Add(ctx, testInsight("book-b", domain.CategoryQuestion))
	require.NoError(t, err)

	fresh := NewInsightStore(adapter, nil)
	require.NoError(t, fresh.Load(ctx))

	snap := fresh.Snapshot()
	assert.Equal(t, 3, snap.Len())
	requireIndexConsistent(t, snap)
	assert.Len(t, snap.ForBook("book-a"), 2)
	assert.Len(t, snap.ForBook("book-b"), 1)
}

// TestInsightStore_SnapshotIsolation tests that published snapshots never change
// under later mutations
func TestInsightStore_SnapshotIsolation(t *testing.T) {
	s, _, cleanup := setupInsightStore(t)
	defer cleanup()

	ctx := context.Background()
	ins, err := s.Add(ctx, testInsight("book-1", domain.CategoryThought))
	require.NoError(t, err)

	before := s.Snapshot()
	require.NoError(t, s.Delete(ctx, ins.ID))

	// The old snapshot still holds the insight; the new one does not.
	_, ok := before.Insight(ins.ID)
	assert.True(t, ok)
	_, ok = s.Snapshot().Insight(ins.ID)
	assert.False(t, ok)
	requireIndexConsistent(t, before)
}
