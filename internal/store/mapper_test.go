package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticedesk/noticedesk-backend/internal/domain"
)

var (
	created = time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	starts  = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
)

func TestEventMapperDefaults(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
		check  func(t *testing.T, e domain.Event)
	}{
		{
			name:   "missing title gets default",
			fields: map[string]interface{}{FieldPrimaryDate: starts},
			check: func(t *testing.T, e domain.Event) {
				assert.Equal(t, "Untitled Event", e.Title)
			},
		},
		{
			name:   "missing start falls back to end date",
			fields: map[string]interface{}{FieldTitle: "Picnic", FieldSecondaryDate: starts},
			check: func(t *testing.T, e domain.Event) {
				assert.Equal(t, starts, e.StartsAt)
			},
		},
		{
			name:   "missing dates fall back to record creation",
			fields: map[string]interface{}{FieldTitle: "Picnic"},
			check: func(t *testing.T, e domain.Event) {
				assert.Equal(t, created, e.StartsAt)
				assert.Equal(t, created, e.EndsAt)
			},
		},
		{
			name: "archived_at without state still yields archived",
			fields: map[string]interface{}{
				FieldTitle:      "Old Event",
				FieldArchivedAt: starts,
			},
			check: func(t *testing.T, e domain.Event) {
				assert.Equal(t, domain.StateArchived, e.State)
				require.NotNil(t, e.ArchivedAt)
				assert.Equal(t, starts, *e.ArchivedAt)
			},
		},
		{
			name: "archived state without timestamp keeps the invariant",
			fields: map[string]interface{}{
				FieldTitle: "Old Event",
				FieldState: "archived",
			},
			check: func(t *testing.T, e domain.Event) {
				assert.Equal(t, domain.StateArchived, e.State)
				require.NotNil(t, e.ArchivedAt)
				assert.Equal(t, created, *e.ArchivedAt)
			},
		},
		{
			name: "RFC3339 string dates are tolerated",
			fields: map[string]interface{}{
				FieldTitle:       "Cached Event",
				FieldPrimaryDate: starts.Format(time.RFC3339),
			},
			check: func(t *testing.T, e domain.Event) {
				assert.True(t, e.StartsAt.Equal(starts))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RawRecord{ID: "r1", Kind: KindEvent, CreatedAt: created, Fields: tt.fields}
			tt.check(t, EventMapper{}.ToEntity(rec))
		})
	}
}

func TestEventMapperRoundTrip(t *testing.T) {
	e := domain.Event{
		ID:       "e1",
		Title:    "Team Meeting",
		StartsAt: starts,
		EndsAt:   starts.Add(time.Hour),
		State:    domain.StateActive,
		Location: "Room 4",
		LinkURL:  "https://example.org/agenda",
	}

	rec := EventMapper{}.ToRecord(e)
	assert.Equal(t, KindEvent, rec.Kind)

	back := EventMapper{}.ToEntity(rec)
	assert.Equal(t, e, back)
}

func TestEventMapperOmitsEmptyFields(t *testing.T) {
	rec := EventMapper{}.ToRecord(domain.Event{Title: "Minimal", StartsAt: starts, State: domain.StateActive})

	for _, absent := range []string{FieldLinkURL, FieldLocation, FieldNotes, FieldAttachmentID, FieldArchivedAt} {
		_, ok := rec.Fields[absent]
		assert.False(t, ok, "field %s should be omitted", absent)
	}
}

func TestPostMapperDateFallbackChain(t *testing.T) {
	uploaded := starts.Add(-48 * time.Hour)

	t.Run("primary date wins", func(t *testing.T) {
		rec := RawRecord{ID: "p1", Kind: KindActivePost, CreatedAt: created, Fields: map[string]interface{}{
			FieldTitle: "News", FieldPrimaryDate: starts, "uploaded_at": uploaded,
		}}
		assert.Equal(t, starts, PostMapper{}.ToEntity(rec).PostedAt)
	})

	t.Run("uploaded_at drift key is second", func(t *testing.T) {
		rec := RawRecord{ID: "p2", Kind: KindActivePost, CreatedAt: created, Fields: map[string]interface{}{
			FieldTitle: "News", "uploaded_at": uploaded,
		}}
		assert.Equal(t, uploaded, PostMapper{}.ToEntity(rec).PostedAt)
	})

	t.Run("record creation is last", func(t *testing.T) {
		rec := RawRecord{ID: "p3", Kind: KindActivePost, CreatedAt: created, Fields: map[string]interface{}{
			FieldTitle: "News",
		}}
		assert.Equal(t, created, PostMapper{}.ToEntity(rec).PostedAt)
	})
}

func TestPostMapperStateFollowsKind(t *testing.T) {
	archivedAt := starts.Add(24 * time.Hour)

	rec := RawRecord{ID: "p1", Kind: KindArchivedPost, CreatedAt: created, Fields: map[string]interface{}{
		FieldTitle: "Old News", FieldPrimaryDate: starts, FieldArchivedAt: archivedAt,
	}}
	p := PostMapper{}.ToEntity(rec)
	assert.Equal(t, domain.StateArchived, p.State)
	require.NotNil(t, p.ArchivedAt)
	assert.Equal(t, archivedAt, *p.ArchivedAt)

	// The inverse picks the record kind from the entity state.
	assert.Equal(t, KindArchivedPost, PostMapper{}.ToRecord(p).Kind)
	assert.Equal(t, KindActivePost, PostMapper{}.ToRecord(p.WithUnarchived()).Kind)
}

func TestAttachmentMapperDefaults(t *testing.T) {
	rec := RawRecord{ID: "a1", Kind: KindAttachment, CreatedAt: created, Fields: map[string]interface{}{}}
	a := AttachmentMapper{}.ToEntity(rec)
	assert.Equal(t, "Untitled Document", a.Title)
	assert.Equal(t, created, a.UploadedAt)
}
