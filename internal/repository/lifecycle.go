package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/store"
)

// Lifecycle enforces the Active -> Archived -> Active transitions and
// the remote side effects each one requires. Delete is terminal from
// either state and handled by the repository directly.
type Lifecycle[T domain.Entity[T]] interface {
	Archive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, now time.Time) (T, error)
	Unarchive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, now time.Time) (T, error)
}

func guardTransition[T domain.Entity[T]](e T, want domain.State) error {
	if e.EntityState() != want {
		return fmt.Errorf("%w: entity %s is %s, want %s",
			common.ErrInvalidTransition, e.EntityID(), e.EntityState(), want)
	}
	return nil
}

// InPlace archives by mutating the same remote record; the id is
// preserved across archive and unarchive. Used for events, whose
// record kind carries lifecycle state in a field.
type InPlace[T domain.Entity[T]] struct{}

func (InPlace[T]) Archive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, now time.Time) (T, error) {
	var zero T
	if err := guardTransition(e, domain.StateActive); err != nil {
		return zero, err
	}
	saved, err := client.Save(ctx, mapper.ToRecord(e.WithArchived(now)))
	if err != nil {
		return zero, err
	}
	return mapper.ToEntity(saved), nil
}

func (InPlace[T]) Unarchive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, _ time.Time) (T, error) {
	var zero T
	if err := guardTransition(e, domain.StateArchived); err != nil {
		return zero, err
	}
	saved, err := client.Save(ctx, mapper.ToRecord(e.WithUnarchived()))
	if err != nil {
		return zero, err
	}
	return mapper.ToEntity(saved), nil
}

// CopyReplace archives by saving a new record of the opposite kind and
// then deleting the original. Used for posts, where the remote schema
// keeps active and archived posts as distinct record kinds, so each
// transition yields a new id. Ordering invariant: create-then-delete,
// never delete-then-create. When the trailing delete fails the saved
// replacement is returned together with ErrPartialReconciliation; the
// original must stay visible for manual resolution, never re-deleted
// or re-created automatically.
type CopyReplace[T domain.Entity[T]] struct{}

func (CopyReplace[T]) Archive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, now time.Time) (T, error) {
	var zero T
	if err := guardTransition(e, domain.StateActive); err != nil {
		return zero, err
	}
	return replace(ctx, client, mapper, e, e.WithArchived(now))
}

func (CopyReplace[T]) Unarchive(ctx context.Context, client store.Client, mapper store.Mapper[T], e T, _ time.Time) (T, error) {
	var zero T
	if err := guardTransition(e, domain.StateArchived); err != nil {
		return zero, err
	}
	return replace(ctx, client, mapper, e, e.WithUnarchived())
}

func replace[T domain.Entity[T]](ctx context.Context, client store.Client, mapper store.Mapper[T], original, replacement T) (T, error) {
	var zero T
	saved, err := client.Save(ctx, mapper.ToRecord(replacement.WithID("")))
	if err != nil {
		return zero, err
	}
	result := mapper.ToEntity(saved)
	if err := client.Delete(ctx, original.EntityID()); err != nil {
		return result, fmt.Errorf("%w: replacement %s saved, original %s still present: %v",
			common.ErrPartialReconciliation, result.EntityID(), original.EntityID(), err)
	}
	return result, nil
}
