package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/marginalia-app/marginalia-server/internal/domain"
	"github.com/marginalia-app/marginalia-server/internal/errors"
	"github.com/marginalia-app/marginalia-server/internal/id"
	"github.com/marginalia-app/marginalia-server/internal/storage"
)

// InsightSnapshot is an immutable view of the insights map and the derived
// book→insight-ids index. Callers must not mutate the returned values.
//
// Invariant: byBookID is exactly the partition of insights by BookID, and no
// entry maps to an empty set.
type InsightSnapshot struct {
	insights map[string]domain.Insight
	byBookID map[string]map[string]struct{}
}

// Insight returns the insight with the given id.
func (s *InsightSnapshot) Insight(insightID string) (domain.Insight, bool) {
	ins, ok := s.insights[insightID]
	return ins, ok
}

// Insights returns the id-keyed insight map. Read-only by contract.
func (s *InsightSnapshot) Insights() map[string]domain.Insight {
	return s.insights
}

// ByBookID returns the derived book→insight-ids index. Read-only by contract.
func (s *InsightSnapshot) ByBookID() map[string]map[string]struct{} {
	return s.byBookID
}

// ForBook resolves the index entry for a book into insights, skipping any id
// that fails to resolve.
func (s *InsightSnapshot) ForBook(bookID string) []domain.Insight {
	ids, ok := s.byBookID[bookID]
	if !ok {
		return nil
	}
	out := make([]domain.Insight, 0, len(ids))
	for insightID := range ids {
		if ins, ok := s.insights[insightID]; ok {
			out = append(out, ins)
		}
	}
	return out
}

// Len returns the number of insights.
func (s *InsightSnapshot) Len() int {
	return len(s.insights)
}

// InsightStore is the canonical owner of the Insight collection plus the
// derived byBookID secondary index.
type InsightStore struct {
	adapter *storage.Adapter
	logger  *slog.Logger

	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[InsightSnapshot]
}

// NewInsightStore creates an empty insight store. Call Load before first use.
func NewInsightStore(adapter *storage.Adapter, logger *slog.Logger) *InsightStore {
	s := &InsightStore{
		adapter: adapter,
		logger:  logger,
	}
	s.snap.Store(emptyInsightSnapshot())
	return s
}

func emptyInsightSnapshot() *InsightSnapshot {
	return &InsightSnapshot{
		insights: map[string]domain.Insight{},
		byBookID: map[string]map[string]struct{}{},
	}
}

// Load rebuilds both the main map and the byBookID index from the persisted
// array in one pass. Safe to call again to force a full reload.
func (s *InsightStore) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	items, err := storage.Get[domain.Insight](s.adapter, storage.CollectionInsights)
	if err != nil {
		return err
	}

	insights := make(map[string]domain.Insight, len(items))
	byBookID := make(map[string]map[string]struct{})
	for _, ins := range items {
		insights[ins.ID] = ins
		addToIndex(byBookID, ins.BookID, ins.ID)
	}

	s.mu.Lock()
	s.snap.Store(&InsightSnapshot{insights: insights, byBookID: byBookID})
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("insights loaded", "count", len(insights), "books_indexed", len(byBookID))
	}
	return nil
}

// Snapshot returns the current immutable snapshot.
func (s *InsightStore) Snapshot() *InsightSnapshot {
	return s.snap.Load()
}

// Get returns the insight with the given id, or ErrNotFound.
func (s *InsightStore) Get(insightID string) (*domain.Insight, error) {
	if ins, ok := s.snap.Load().insights[insightID]; ok {
		return &ins, nil
	}
	return nil, errors.NotFoundf("insight %s not found", insightID)
}

// Add assigns a fresh id and timestamps and inserts the insight into both the
// main map and the per-book index set, creating the set if absent. The
// discriminant fields (excerpt/note) are trusted as already validated at the
// boundary. The snapshot is only published after the persist succeeds.
func (s *InsightStore) Add(ctx context.Context, data domain.Insight) (*domain.Insight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	insightID, err := id.Generate(id.PrefixInsight)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate insight id")
	}

	ins := data
	ins.ID = insightID
	ins.InitTimestamps()
	if ins.Tags == nil {
		ins.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	insights := cloneInsights(cur.insights)
	insights[ins.ID] = ins

	byBookID := cloneIndex(cur.byBookID, ins.BookID)
	addToIndex(byBookID, ins.BookID, ins.ID)

	if err := s.persist(insights); err != nil {
		return nil, err
	}
	s.snap.Store(&InsightSnapshot{insights: insights, byBookID: byBookID})

	if s.logger != nil {
		s.logger.Info("insight added", "insight_id", ins.ID, "book_id", ins.BookID, "category", string(ins.Category))
	}
	return &ins, nil
}

// Update merges the partial update over the existing insight and bumps
// UpdatedAt. BookID is not updatable through this operation, so the byBookID
// index is untouched. Returns ErrNotFound if the id is absent.
func (s *InsightStore) Update(ctx context.Context, insightID string, update domain.InsightUpdate) (*domain.Insight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	ins, ok := cur.insights[insightID]
	if !ok {
		return nil, errors.NotFoundf("insight %s not found", insightID)
	}

	update.Apply(&ins)
	ins.Touch()

	insights := cloneInsights(cur.insights)
	insights[insightID] = ins

	if err := s.persist(insights); err != nil {
		return nil, err
	}
	// The index can be reused as-is since BookID cannot change.
	s.snap.Store(&InsightSnapshot{insights: insights, byBookID: cur.byBookID})

	return &ins, nil
}

// Delete removes the insight from the main map and from its book's index set,
// garbage-collecting the set if it becomes empty. Deleting an absent id is a
// no-op, not an error.
func (s *InsightStore) Delete(ctx context.Context, insightID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	ins, ok := cur.insights[insightID]
	if !ok {
		return nil
	}

	insights := cloneInsights(cur.insights)
	delete(insights, insightID)

	byBookID := cloneIndex(cur.byBookID, ins.BookID)
	if ids, ok := byBookID[ins.BookID]; ok {
		delete(ids, insightID)
		if len(ids) == 0 {
			delete(byBookID, ins.BookID)
		}
	}

	if err := s.persist(insights); err != nil {
		return err
	}
	s.snap.Store(&InsightSnapshot{insights: insights, byBookID: byBookID})

	if s.logger != nil {
		s.logger.Info("insight deleted", "insight_id", insightID, "book_id", ins.BookID)
	}
	return nil
}

// persist writes the entire collection, matching the adapter's
// serialize-all-on-write layout.
func (s *InsightStore) persist(insights map[string]domain.Insight) error {
	items := make([]domain.Insight, 0, len(insights))
	for _, ins := range insights {
		items = append(items, ins)
	}
	return storage.Set(s.adapter, storage.CollectionInsights, items)
}

func cloneInsights(src map[string]domain.Insight) map[string]domain.Insight {
	dst := make(map[string]domain.Insight, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// cloneIndex copies the outer index map and deep-copies the id set for the
// book about to change. Untouched sets are shared between snapshots; they are
// never mutated after publication.
func cloneIndex(src map[string]map[string]struct{}, bookID string) map[string]map[string]struct{} {
	dst := make(map[string]map[string]struct{}, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	if ids, ok := src[bookID]; ok {
		clone := make(map[string]struct{}, len(ids)+1)
		for insightID := range ids {
			clone[insightID] = struct{}{}
		}
		dst[bookID] = clone
	}
	return dst
}

func addToIndex(idx map[string]map[string]struct{}, bookID, insightID string) {
	ids, ok := idx[bookID]
	if !ok {
		ids = make(map[string]struct{})
		idx[bookID] = ids
	}
	ids[insightID] = struct{}{}
}
