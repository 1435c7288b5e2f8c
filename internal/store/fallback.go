package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noticedesk/noticedesk-backend/internal/domain"
)

// Generator produces sample entities shown when the remote store is
// empty or unreachable, so admins never face a blank failure screen.
// One shared instance serves every repository, keeping fallback shapes
// consistent across views. The built-in set is anchored to the current
// week; a YAML seed file can replace it.
type Generator struct {
	events      []domain.Event
	posts       []domain.Post
	attachments []domain.Attachment
}

type seedFile struct {
	Events []struct {
		Title    string    `yaml:"title"`
		StartsAt time.Time `yaml:"starts_at"`
		EndsAt   time.Time `yaml:"ends_at"`
		Location string    `yaml:"location"`
		Notes    string    `yaml:"notes"`
	} `yaml:"events"`
	Posts []struct {
		Title    string    `yaml:"title"`
		PostedAt time.Time `yaml:"posted_at"`
		Content  string    `yaml:"content"`
		LinkURL  string    `yaml:"link_url"`
	} `yaml:"posts"`
	Attachments []struct {
		Title      string    `yaml:"title"`
		UploadedAt time.Time `yaml:"uploaded_at"`
	} `yaml:"attachments"`
}

// NewGenerator builds a generator, loading seedPath when non-empty
func NewGenerator(seedPath string) (*Generator, error) {
	g := &Generator{}
	if seedPath != "" {
		data, err := os.ReadFile(seedPath)
		if err != nil {
			return nil, fmt.Errorf("read fallback seed %s: %w", seedPath, err)
		}
		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("parse fallback seed %s: %w", seedPath, err)
		}
		g.fromSeed(seed)
		return g, nil
	}
	g.builtin(time.Now().Truncate(24 * time.Hour))
	return g, nil
}

func (g *Generator) fromSeed(seed seedFile) {
	for i, e := range seed.Events {
		ends := e.EndsAt
		if ends.IsZero() {
			ends = e.StartsAt
		}
		g.events = append(g.events, domain.Event{
			ID:       fmt.Sprintf("sample-event-%d", i+1),
			Title:    e.Title,
			StartsAt: e.StartsAt,
			EndsAt:   ends,
			State:    domain.StateActive,
			Location: e.Location,
			Notes:    e.Notes,
		})
	}
	for i, p := range seed.Posts {
		g.posts = append(g.posts, domain.Post{
			ID:       fmt.Sprintf("sample-post-%d", i+1),
			Title:    p.Title,
			PostedAt: p.PostedAt,
			State:    domain.StateActive,
			Content:  p.Content,
			LinkURL:  p.LinkURL,
		})
	}
	for i, a := range seed.Attachments {
		g.attachments = append(g.attachments, domain.Attachment{
			ID:         fmt.Sprintf("sample-attachment-%d", i+1),
			Title:      a.Title,
			UploadedAt: a.UploadedAt,
		})
	}
}

func (g *Generator) builtin(anchor time.Time) {
	at := func(days, hour int) time.Time {
		return anchor.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
	}

	g.events = []domain.Event{
		{
			ID: "sample-event-1", Title: "Community Open House",
			StartsAt: at(2, 10), EndsAt: at(2, 12),
			State: domain.StateActive, Location: "Main Hall",
			Notes: "Doors open half an hour early.",
		},
		{
			ID: "sample-event-2", Title: "Volunteer Orientation",
			StartsAt: at(5, 18), EndsAt: at(5, 20),
			State: domain.StateActive, Location: "Room 204",
		},
		{
			ID: "sample-event-3", Title: "Board Meeting",
			StartsAt: at(9, 19), EndsAt: at(9, 21),
			State: domain.StateActive, Location: "Conference Room",
		},
	}
	g.posts = []domain.Post{
		{
			ID: "sample-post-1", Title: "Welcome to the Notice Board",
			PostedAt: at(-1, 9), State: domain.StateActive,
			Content: "This is sample content shown while the record store is unavailable.",
		},
		{
			ID: "sample-post-2", Title: "Weekly Update",
			PostedAt: at(-3, 9), State: domain.StateActive,
			Content: "Highlights from around the community.",
		},
	}
	g.attachments = []domain.Attachment{
		{ID: "sample-attachment-1", Title: "Weekly Bulletin", UploadedAt: at(-1, 8)},
		{ID: "sample-attachment-2", Title: "Monthly Newsletter", UploadedAt: at(-7, 8)},
	}
}

// SampleEvents returns a fresh copy of the sample events
func (g *Generator) SampleEvents() []domain.Event {
	out := make([]domain.Event, len(g.events))
	copy(out, g.events)
	return out
}

// SamplePosts returns a fresh copy of the sample posts
func (g *Generator) SamplePosts() []domain.Post {
	out := make([]domain.Post, len(g.posts))
	copy(out, g.posts)
	return out
}

// SampleAttachments returns a fresh copy of the sample attachments
func (g *Generator) SampleAttachments() []domain.Attachment {
	out := make([]domain.Attachment, len(g.attachments))
	copy(out, g.attachments)
	return out
}
