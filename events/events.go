// Package events publishes artifact lifecycle notifications. Delivery is
// best effort: a failed notification is logged and never fails the operation
// that raised it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ArticleCreated   Type = "article.created"
	ArticlePublished Type = "article.published"
	SlideCreated     Type = "slide.created"
	SummaryCreated   Type = "summary.created"
)

type Event struct {
	Type       Type       `json:"type"`
	ID         uuid.UUID  `json:"id"`
	ThreadID   *uuid.UUID `json:"thread_id,omitempty"`
	Title      string     `json:"title"`
	URL        string     `json:"url,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
