package repository

import (
	"fmt"
	"strings"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/notify"
	"github.com/noticedesk/noticedesk-backend/internal/store"
)

// loadSort orders both partition queries by the indexed date field,
// with title as tiebreaker. Never the opaque id alone.
var loadSort = []store.SortKey{
	{Field: store.FieldPrimaryDate, Ascending: true},
	{Field: store.FieldTitle, Ascending: true},
}

// NewEventRepository builds the calendar event repository. Events live
// in a single record kind; the state field splits the partitions, and
// archiving mutates the record in place.
func NewEventRepository(client store.Client, bus *notify.Bus, gen *store.Generator) *Repository[domain.Event] {
	return New(client, bus, Options[domain.Event]{
		Topic:  notify.TopicEventsChanged,
		Mapper: store.EventMapper{},
		Active: Partition{
			Kind: store.KindEvent,
			Predicates: []store.Predicate{
				{Field: store.FieldState, Op: store.OpNotEquals, Value: string(domain.StateArchived)},
			},
		},
		Archived: Partition{
			Kind: store.KindEvent,
			Predicates: []store.Predicate{
				{Field: store.FieldState, Op: store.OpEquals, Value: string(domain.StateArchived)},
			},
		},
		Sort:      loadSort,
		Lifecycle: InPlace[domain.Event]{},
		Fallback:  gen.SampleEvents,
		Validate:  validateEvent,
	})
}

// NewPostRepository builds the news post repository. Active and
// archived posts are distinct record kinds, so lifecycle transitions
// replace the record (new id) instead of mutating it.
func NewPostRepository(client store.Client, bus *notify.Bus, gen *store.Generator) *Repository[domain.Post] {
	return New(client, bus, Options[domain.Post]{
		Topic:     notify.TopicPostsChanged,
		Mapper:    store.PostMapper{},
		Active:    Partition{Kind: store.KindActivePost},
		Archived:  Partition{Kind: store.KindArchivedPost},
		Sort:      loadSort,
		Lifecycle: CopyReplace[domain.Post]{},
		Fallback:  gen.SamplePosts,
		Validate:  validatePost,
	})
}

func validateEvent(e domain.Event) (domain.Event, error) {
	if strings.TrimSpace(e.Title) == "" {
		return e, fmt.Errorf("%w: event title is required", common.ErrInvalidInput)
	}
	link, err := common.NormalizeLinkURL(e.LinkURL)
	if err != nil {
		return e, err
	}
	e.LinkURL = link
	if !e.EndsAt.IsZero() && !e.StartsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		return e, fmt.Errorf("%w: event end precedes start", common.ErrInvalidInput)
	}
	return e, nil
}

func validatePost(p domain.Post) (domain.Post, error) {
	if strings.TrimSpace(p.Title) == "" {
		return p, fmt.Errorf("%w: post title is required", common.ErrInvalidInput)
	}
	link, err := common.NormalizeLinkURL(p.LinkURL)
	if err != nil {
		return p, err
	}
	p.LinkURL = link
	return p, nil
}
