package store

import (
	"context"
	"time"
)

// Kind identifies a remote record kind. Active and archived posts are
// distinct kinds in the remote schema; events carry their lifecycle
// state in a field instead.
type Kind string

const (
	KindEvent        Kind = "Event"
	KindActivePost   Kind = "ActivePost"
	KindArchivedPost Kind = "ArchivedPost"
	KindAttachment   Kind = "Attachment"
)

// Op is a predicate operator supported by the remote store
type Op string

const (
	OpEquals      Op = "eq"
	OpNotEquals   Op = "ne"
	OpLessOrEqual Op = "le"
)

// Predicate is one (field, operator, literal) condition; a query's
// predicates are combined as a conjunction.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// SortKey orders query results by a record field
type SortKey struct {
	Field     string
	Ascending bool
}

// Record field names shared by all kinds. The store only indexes
// FieldPrimaryDate and FieldTitle; every query must sort by at least
// one of them, never by the opaque id alone.
const (
	FieldTitle         = "title"
	FieldState         = "state"
	FieldPrimaryDate   = "primary_date"
	FieldSecondaryDate = "secondary_date"
	FieldArchivedAt    = "archived_at"
	FieldAttachmentID  = "attachment_id"
	FieldLinkURL       = "link_url"
	FieldLocation      = "location"
	FieldNotes         = "notes"
	FieldContent       = "content"
	FieldBlobRef       = "blob_ref"
)

// indexedFields are the fields a sort key may legally use
var indexedFields = map[string]bool{
	FieldPrimaryDate: true,
	FieldTitle:       true,
}

// HasIndexedSort reports whether at least one sort key is backed by an
// indexed field.
func HasIndexedSort(sort []SortKey) bool {
	for _, s := range sort {
		if indexedFields[s.Field] {
			return true
		}
	}
	return false
}

// RawRecord is a flat field map as the remote store sees it. CreatedAt
// is the store-side record creation timestamp, used as the last date
// fallback by the mapper.
type RawRecord struct {
	ID        string                 `json:"id"`
	Kind      Kind                   `json:"kind"`
	CreatedAt time.Time              `json:"created_at"`
	Fields    map[string]interface{} `json:"fields"`
}

// Clone returns a deep-enough copy (the field map is copied; values are
// treated as immutable).
func (r RawRecord) Clone() RawRecord {
	fields := make(map[string]interface{}, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// Client is the remote record store boundary. All calls honor context
// cancellation and carry a bounded timeout; none block beyond it.
type Client interface {
	// Query returns records of kind matching all predicates, ordered by
	// sort. Sort must include at least one indexed field. limit <= 0
	// means no limit.
	Query(ctx context.Context, kind Kind, predicates []Predicate, sort []SortKey, limit int) ([]RawRecord, error)
	// Fetch returns the record with the given id.
	Fetch(ctx context.Context, id string) (RawRecord, error)
	// Save upserts keyed by id; an empty id lets the store assign one.
	// The stored record, including any assigned id, is returned.
	Save(ctx context.Context, rec RawRecord) (RawRecord, error)
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}
