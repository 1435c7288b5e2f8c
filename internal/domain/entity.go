package domain

import "time"

// State is the lifecycle partition an entity occupies
type State string

const (
	StateActive   State = "active"
	StateArchived State = "archived"
)

// Entity is the constraint shared by Event and Post. Modifier methods
// return a copy so repositories can stage optimistic changes and roll
// them back without aliasing surprises.
type Entity[T any] interface {
	EntityID() string
	EntityTitle() string
	EntityState() State
	// PrimaryDate is the main sort/display date (event start, post date).
	PrimaryDate() time.Time
	// SearchText is the haystack for case-insensitive filtering.
	SearchText() string

	WithID(id string) T
	WithArchived(at time.Time) T
	WithUnarchived() T
}
