package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticedesk/noticedesk-backend/internal/common"
)

var dateSort = []SortKey{{Field: FieldPrimaryDate, Ascending: true}}

func eventRec(id, title string, day int, state string) RawRecord {
	fields := map[string]interface{}{
		FieldTitle:       title,
		FieldPrimaryDate: time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC),
	}
	if state != "" {
		fields[FieldState] = state
	}
	return RawRecord{ID: id, Kind: KindEvent, CreatedAt: time.Now(), Fields: fields}
}

func TestMemoryQueryPredicates(t *testing.T) {
	mem := NewMemoryClient()
	mem.Seed(
		eventRec("e1", "Alpha", 1, "active"),
		eventRec("e2", "Beta", 2, "archived"),
		eventRec("e3", "Gamma", 3, ""),
	)
	ctx := context.Background()

	t.Run("equals", func(t *testing.T) {
		recs, err := mem.Query(ctx, KindEvent, []Predicate{{Field: FieldState, Op: OpEquals, Value: "archived"}}, dateSort, 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "e2", recs[0].ID)
	})

	t.Run("not-equals matches absent field", func(t *testing.T) {
		recs, err := mem.Query(ctx, KindEvent, []Predicate{{Field: FieldState, Op: OpNotEquals, Value: "archived"}}, dateSort, 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "e1", recs[0].ID)
		assert.Equal(t, "e3", recs[1].ID)
	})

	t.Run("less-or-equal on dates", func(t *testing.T) {
		cutoff := time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)
		recs, err := mem.Query(ctx, KindEvent, []Predicate{{Field: FieldPrimaryDate, Op: OpLessOrEqual, Value: cutoff}}, dateSort, 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
	})

	t.Run("limit", func(t *testing.T) {
		recs, err := mem.Query(ctx, KindEvent, nil, dateSort, 2)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("kind isolation", func(t *testing.T) {
		recs, err := mem.Query(ctx, KindActivePost, nil, dateSort, 0)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestMemoryQueryRejectsUnindexedSort(t *testing.T) {
	mem := NewMemoryClient()
	_, err := mem.Query(context.Background(), KindEvent, nil, []SortKey{{Field: FieldNotes, Ascending: true}}, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = mem.Query(context.Background(), KindEvent, nil, nil, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestMemorySortDescending(t *testing.T) {
	mem := NewMemoryClient()
	mem.Seed(eventRec("e1", "Alpha", 1, ""), eventRec("e2", "Beta", 5, ""), eventRec("e3", "Gamma", 3, ""))

	recs, err := mem.Query(context.Background(), KindEvent, nil, []SortKey{{Field: FieldPrimaryDate, Ascending: false}}, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"e2", "e3", "e1"}, []string{recs[0].ID, recs[1].ID, recs[2].ID})
}

func TestMemorySaveAssignsID(t *testing.T) {
	mem := NewMemoryClient()
	ctx := context.Background()

	rec := eventRec("", "New Event", 4, "")
	saved, err := mem.Save(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	// Upsert keeps the id and the creation timestamp.
	saved.Fields[FieldTitle] = "Renamed"
	again, err := mem.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)
	assert.Equal(t, 1, mem.Len())
}

func TestMemoryFetchAndDelete(t *testing.T) {
	mem := NewMemoryClient()
	mem.Seed(eventRec("e1", "Alpha", 1, ""))
	ctx := context.Background()

	rec, err := mem.Fetch(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", rec.Fields[FieldTitle])

	_, err = mem.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)

	require.NoError(t, mem.Delete(ctx, "e1"))
	assert.ErrorIs(t, mem.Delete(ctx, "e1"), common.ErrRecordNotFound)
}

func TestMemoryCancelledContext(t *testing.T) {
	mem := NewMemoryClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mem.Query(ctx, KindEvent, nil, dateSort, 0)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
