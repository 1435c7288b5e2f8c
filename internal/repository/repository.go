package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noticedesk/noticedesk-backend/internal/common"
	"github.com/noticedesk/noticedesk-backend/internal/domain"
	"github.com/noticedesk/noticedesk-backend/internal/notify"
	"github.com/noticedesk/noticedesk-backend/internal/store"
	"github.com/noticedesk/noticedesk-backend/pkg/logger"
)

// LoadState is the repository's load lifecycle
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateError   LoadState = "error"
)

// Partition describes one remote query: a record kind plus the
// predicate conjunction selecting the partition's records.
type Partition struct {
	Kind       store.Kind
	Predicates []store.Predicate
}

// Options wires one repository to its entity kind
type Options[T domain.Entity[T]] struct {
	// Topic is published after every successful mutation.
	Topic    string
	Mapper   store.Mapper[T]
	Active   Partition
	Archived Partition
	// Sort orders load queries; must include an indexed field.
	Sort      []store.SortKey
	Lifecycle Lifecycle[T]
	// Fallback supplies sample entities for the Active partition when
	// the store is empty or unreachable.
	Fallback func() []T
	// Validate normalizes and checks an entity before any write.
	Validate func(T) (T, error)
}

// Snapshot is the repository state exposed to the view layer. Views
// react to this alone; no store-specific recovery happens above the
// repository boundary.
type Snapshot[T any] struct {
	State    LoadState `json:"state"`
	Active   []T       `json:"active"`
	Archived []T       `json:"archived"`
	// Fallback marks the collection as locally generated sample data.
	Fallback bool `json:"fallback"`
	// LastError is the retryable banner message; empty when healthy.
	LastError string `json:"last_error,omitempty"`
}

// Repository owns the authoritative in-memory collection for one
// entity kind, split into Active and Archived partitions. All
// collection mutations are serialized by the repository's own mutex;
// the only suspension points are store calls, which happen outside it.
type Repository[T domain.Entity[T]] struct {
	client store.Client
	bus    *notify.Bus
	opts   Options[T]

	mu       sync.Mutex
	state    LoadState
	active   []T
	archived []T
	fallback bool
	lastErr  error
	// epoch guards against a stale load response overwriting a newer
	// one: each Load bumps it and only the matching epoch may install.
	epoch uint64
}

// New creates a repository. Load must be called before the collection
// is meaningful.
func New[T domain.Entity[T]](client store.Client, bus *notify.Bus, opts Options[T]) *Repository[T] {
	return &Repository[T]{
		client: client,
		bus:    bus,
		opts:   opts,
		state:  StateIdle,
	}
}

// Load fetches both partitions and replaces the collection atomically.
// Zero results install fallback data with the collection flagged as
// sample-sourced; a store failure installs fallback data too but
// leaves the repository in StateError with a retryable error surfaced,
// so the admin never sees a blank failure screen.
func (r *Repository[T]) Load(ctx context.Context) error {
	r.mu.Lock()
	r.epoch++
	myEpoch := r.epoch
	r.state = StateLoading
	r.mu.Unlock()

	activeRecs, errActive := r.client.Query(ctx, r.opts.Active.Kind, r.opts.Active.Predicates, r.opts.Sort, 0)
	archivedRecs, errArchived := r.client.Query(ctx, r.opts.Archived.Kind, r.opts.Archived.Predicates, r.opts.Sort, 0)

	loadErr := errActive
	if loadErr == nil {
		loadErr = errArchived
	}

	var active, archived []T
	if loadErr == nil {
		// Partition by the mapped entity's state, not by source query:
		// drift repair can move a record across partitions (a stray
		// archived_at on an otherwise active record, for example).
		for _, e := range r.mapRecords(append(activeRecs, archivedRecs...)) {
			if e.EntityState() == domain.StateArchived {
				archived = append(archived, e)
			} else {
				active = append(active, e)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.epoch != myEpoch {
		// A newer Load superseded this one; drop the stale response.
		return nil
	}

	switch {
	case loadErr != nil:
		r.state = StateError
		r.active = r.opts.Fallback()
		r.archived = nil
		r.fallback = true
		r.lastErr = loadErr
		logger.GetLogger().Warn().Err(loadErr).Str("topic", r.opts.Topic).Msg("load failed, serving fallback data")
		return loadErr
	case len(active) == 0 && len(archived) == 0:
		r.state = StateLoaded
		r.active = r.opts.Fallback()
		r.archived = nil
		r.fallback = true
		r.lastErr = nil
	default:
		r.state = StateLoaded
		r.active = active
		r.archived = archived
		r.fallback = false
		r.lastErr = nil
	}
	return nil
}

func (r *Repository[T]) mapRecords(recs []store.RawRecord) []T {
	out := make([]T, len(recs))
	for i, rec := range recs {
		out[i] = r.opts.Mapper.ToEntity(rec)
	}
	return out
}

// Snapshot returns a copy of the current state and collections
func (r *Repository[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := Snapshot[T]{
		State:    r.state,
		Active:   append([]T(nil), r.active...),
		Archived: append([]T(nil), r.archived...),
		Fallback: r.fallback,
	}
	if r.lastErr != nil {
		snap.LastError = r.lastErr.Error()
	}
	return snap
}

// Get looks up an entity in either partition
func (r *Repository[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, _, ok := r.findLocked(id)
	return e, ok
}

// Create persists a new active entity. The draft is applied to the
// local collection under a pending id before the store confirms, and
// removed again if the save fails.
func (r *Repository[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	draft = draft.WithUnarchived()
	if r.opts.Validate != nil {
		d, err := r.opts.Validate(draft)
		if err != nil {
			return zero, err
		}
		draft = d
	}

	pendingID := "pending-" + uuid.NewString()
	r.mu.Lock()
	r.active = append(r.active, draft.WithID(pendingID))
	r.mu.Unlock()

	saved, err := r.client.Save(ctx, r.opts.Mapper.ToRecord(draft.WithID("")))
	if err != nil {
		r.mu.Lock()
		r.active = removeByID(r.active, pendingID)
		r.mu.Unlock()
		return zero, err
	}

	entity := r.opts.Mapper.ToEntity(saved)
	r.mu.Lock()
	r.active = replaceByID(r.active, pendingID, entity)
	r.mu.Unlock()
	r.bus.Publish(r.opts.Topic)
	return entity, nil
}

// Update applies mutate optimistically and persists the result. The
// previous value is restored if the save fails. Lifecycle state must
// not change here; archive and unarchive are separate operations.
func (r *Repository[T]) Update(ctx context.Context, id string, mutate func(T) T) (T, error) {
	var zero T

	r.mu.Lock()
	old, part, ok := r.findLocked(id)
	if !ok {
		r.mu.Unlock()
		return zero, fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}
	updated := mutate(old).WithID(id)
	if updated.EntityState() != old.EntityState() {
		r.mu.Unlock()
		return zero, fmt.Errorf("%w: update must not change lifecycle state of %s", common.ErrInvalidTransition, id)
	}
	if r.opts.Validate != nil {
		u, err := r.opts.Validate(updated)
		if err != nil {
			r.mu.Unlock()
			return zero, err
		}
		updated = u
	}
	r.setLocked(part, updated)
	r.mu.Unlock()

	saved, err := r.client.Save(ctx, r.opts.Mapper.ToRecord(updated))
	if err != nil {
		r.mu.Lock()
		r.setLocked(part, old)
		r.mu.Unlock()
		r.reconcileNotFound(err)
		return zero, err
	}

	entity := r.opts.Mapper.ToEntity(saved)
	r.mu.Lock()
	r.setLocked(part, entity)
	r.mu.Unlock()
	r.bus.Publish(r.opts.Topic)
	return entity, nil
}

// Archive moves an active entity to the archived partition via the
// lifecycle strategy. On partial reconciliation failure the original
// stays visible in the active partition alongside the archived copy.
func (r *Repository[T]) Archive(ctx context.Context, id string) (T, error) {
	var zero T
	r.mu.Lock()
	e, _, ok := r.findLocked(id)
	r.mu.Unlock()
	if !ok {
		return zero, fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}

	archived, err := r.opts.Lifecycle.Archive(ctx, r.client, r.opts.Mapper, e, time.Now())
	if err != nil && !errors.Is(err, common.ErrPartialReconciliation) {
		r.reconcileNotFound(err)
		return zero, err
	}

	r.mu.Lock()
	if err == nil {
		r.active = removeByID(r.active, id)
	}
	r.archived = replaceByID(r.archived, archived.EntityID(), archived)
	r.mu.Unlock()
	r.bus.Publish(r.opts.Topic)
	return archived, err
}

// Unarchive moves an archived entity back to the active partition. For
// copy-and-replace kinds this republishes under a new id.
func (r *Repository[T]) Unarchive(ctx context.Context, id string) (T, error) {
	var zero T
	r.mu.Lock()
	e, _, ok := r.findLocked(id)
	r.mu.Unlock()
	if !ok {
		return zero, fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}

	restored, err := r.opts.Lifecycle.Unarchive(ctx, r.client, r.opts.Mapper, e, time.Now())
	if err != nil && !errors.Is(err, common.ErrPartialReconciliation) {
		r.reconcileNotFound(err)
		return zero, err
	}

	r.mu.Lock()
	if err == nil {
		r.archived = removeByID(r.archived, id)
	}
	r.active = replaceByID(r.active, restored.EntityID(), restored)
	r.mu.Unlock()
	r.bus.Publish(r.opts.Topic)
	return restored, err
}

// Delete removes an entity from the store and, on success, from
// whichever partition holds it. The collection is untouched on
// failure.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, _, ok := r.findLocked(id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}

	if err := r.client.Delete(ctx, id); err != nil {
		r.reconcileNotFound(err)
		return err
	}

	r.mu.Lock()
	r.active = removeByID(r.active, id)
	r.archived = removeByID(r.archived, id)
	r.mu.Unlock()
	r.bus.Publish(r.opts.Topic)
	return nil
}

// reconcileNotFound reloads in the background when the store reports a
// record missing: it was likely deleted elsewhere and the local
// collection is stale.
func (r *Repository[T]) reconcileNotFound(err error) {
	if errors.Is(err, common.ErrRecordNotFound) {
		go func() {
			_ = r.Load(context.Background())
		}()
	}
}

type partitionRef int

const (
	partActive partitionRef = iota
	partArchived
)

func (r *Repository[T]) findLocked(id string) (T, partitionRef, bool) {
	for _, e := range r.active {
		if e.EntityID() == id {
			return e, partActive, true
		}
	}
	for _, e := range r.archived {
		if e.EntityID() == id {
			return e, partArchived, true
		}
	}
	var zero T
	return zero, partActive, false
}

func (r *Repository[T]) setLocked(part partitionRef, e T) {
	if part == partActive {
		r.active = replaceByID(r.active, e.EntityID(), e)
	} else {
		r.archived = replaceByID(r.archived, e.EntityID(), e)
	}
}

func removeByID[T domain.Entity[T]](list []T, id string) []T {
	out := list[:0]
	for _, e := range list {
		if e.EntityID() != id {
			out = append(out, e)
		}
	}
	return out
}

// replaceByID swaps the entry with the given id, or appends when the
// id is absent (e.g. it was removed concurrently).
func replaceByID[T domain.Entity[T]](list []T, id string, e T) []T {
	for i, existing := range list {
		if existing.EntityID() == id {
			list[i] = e
			return list
		}
	}
	return append(list, e)
}
