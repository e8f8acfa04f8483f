// Package events announces post and message lifecycle changes to the admin
// live feed and, optionally, to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/domain"
)

type Type string

const (
	PostCreated     Type = "post.created"
	PostUpdated     Type = "post.updated"
	PostDeleted     Type = "post.deleted"
	MessageReceived Type = "message.received"
	StatsUpdated    Type = "stats.updated"
)

type Event struct {
	Type      Type      `json:"type"`
	PostID    string    `json:"post_id,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	Title     string    `json:"title,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier is what the services depend on. Notify never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

func PostEvent(t Type, p *domain.Post) Event {
	return Event{
		Type:      t,
		PostID:    p.ID,
		Slug:      p.Slug.Get(domain.LocaleEN),
		Title:     p.Title.Get(domain.LocaleTR),
		Timestamp: time.Now().UTC(),
	}
}

func MessageEvent(m *domain.Message) Event {
	return Event{
		Type:      MessageReceived,
		MessageID: m.ID,
		Title:     m.Subject,
		Timestamp: time.Now().UTC(),
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
