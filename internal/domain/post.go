package domain

import (
	"strings"
	"time"
)

// Post is a published news post. The remote store keeps active and
// archived posts as distinct record kinds, so archive/unarchive of a
// post replaces the record rather than mutating it in place.
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	PostedAt     time.Time  `json:"posted_at"`
	ScheduledFor time.Time  `json:"scheduled_for,omitempty"`
	State        State      `json:"state"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	AttachmentID string     `json:"attachment_id,omitempty"`
	LinkURL      string     `json:"link_url,omitempty"`
	Content      string     `json:"content,omitempty"`
}

func (p Post) EntityID() string       { return p.ID }
func (p Post) EntityTitle() string    { return p.Title }
func (p Post) EntityState() State     { return p.State }
func (p Post) PrimaryDate() time.Time { return p.PostedAt }

func (p Post) SearchText() string {
	return strings.Join([]string{p.Title, p.Content}, " ")
}

func (p Post) WithID(id string) Post {
	p.ID = id
	return p
}

func (p Post) WithArchived(at time.Time) Post {
	p.State = StateArchived
	p.ArchivedAt = &at
	return p
}

func (p Post) WithUnarchived() Post {
	p.State = StateActive
	p.ArchivedAt = nil
	return p
}
