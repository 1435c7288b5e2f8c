package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noticedesk/noticedesk-backend/internal/common"
)

// MemoryClient is an in-process record store. It backs development mode
// when MySQL is unavailable and doubles as a deterministic test store.
type MemoryClient struct {
	mu      sync.Mutex
	records map[string]RawRecord
}

// NewMemoryClient creates an empty in-memory store
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{records: make(map[string]RawRecord)}
}

// Seed inserts records directly, bypassing Save semantics. Test helper.
func (m *MemoryClient) Seed(recs ...RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		m.records[rec.ID] = rec.Clone()
	}
}

// Len returns the number of stored records. Test helper.
func (m *MemoryClient) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MemoryClient) Query(ctx context.Context, kind Kind, predicates []Predicate, sortKeys []SortKey, limit int) ([]RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	if !HasIndexedSort(sortKeys) {
		return nil, fmt.Errorf("%w: query sort must include an indexed field", common.ErrInvalidInput)
	}

	m.mu.Lock()
	var matched []RawRecord
	for _, rec := range m.records {
		if rec.Kind != kind {
			continue
		}
		if matchesAll(rec, predicates) {
			matched = append(matched, rec.Clone())
		}
	}
	m.mu.Unlock()

	sortRecords(matched, sortKeys)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryClient) Fetch(ctx context.Context, id string) (RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return RawRecord{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return RawRecord{}, fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}
	return rec.Clone(), nil
}

func (m *MemoryClient) Save(ctx context.Context, rec RawRecord) (RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return RawRecord{}, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := rec.Clone()
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if existing, ok := m.records[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	m.records[saved.ID] = saved
	return saved.Clone(), nil
}

func (m *MemoryClient) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: %s", common.ErrRecordNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func matchesAll(rec RawRecord, predicates []Predicate) bool {
	for _, p := range predicates {
		if !matches(rec, p) {
			return false
		}
	}
	return true
}

func matches(rec RawRecord, p Predicate) bool {
	val, present := rec.Fields[p.Field]
	switch p.Op {
	case OpEquals:
		return present && equalValues(val, p.Value)
	case OpNotEquals:
		// An absent field is "not equal" to any literal, matching the
		// remote store's null semantics.
		return !present || !equalValues(val, p.Value)
	case OpLessOrEqual:
		if !present {
			return false
		}
		cmp, ok := compareValues(val, p.Value)
		return ok && cmp <= 0
	default:
		return false
	}
}

func equalValues(a, b interface{}) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// compareValues orders two field values when both can be coerced to a
// common type. Times may arrive as time.Time or RFC3339 strings
// (cache round trips stringify them).
func compareValues(a, b interface{}) (int, bool) {
	if at, aok := coerceTime(a); aok {
		if bt, bok := coerceTime(b); bok {
			return at.Compare(bt), true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func coerceTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func sortRecords(recs []RawRecord, keys []SortKey) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, k := range keys {
			cmp, ok := compareValues(recs[i].Fields[k.Field], recs[j].Fields[k.Field])
			if !ok || cmp == 0 {
				continue
			}
			if k.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}
