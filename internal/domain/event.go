package domain

import (
	"strings"
	"time"
)

// Event is a calendar event managed by admins
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	StartsAt     time.Time  `json:"starts_at"`
	EndsAt       time.Time  `json:"ends_at"`
	State        State      `json:"state"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	AttachmentID string     `json:"attachment_id,omitempty"`
	LinkURL      string     `json:"link_url,omitempty"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func (e Event) EntityID() string     { return e.ID }
func (e Event) EntityTitle() string  { return e.Title }
func (e Event) EntityState() State   { return e.State }
func (e Event) PrimaryDate() time.Time { return e.StartsAt }

func (e Event) SearchText() string {
	return strings.Join([]string{e.Title, e.Location, e.Notes}, " ")
}

func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}

func (e Event) WithArchived(at time.Time) Event {
	e.State = StateArchived
	e.ArchivedAt = &at
	return e
}

func (e Event) WithUnarchived() Event {
	e.State = StateActive
	e.ArchivedAt = nil
	return e
}
