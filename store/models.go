package store

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole is who authored a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether r is one of the known roles.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// SummaryStatusDraft is the status given to every new summary. Other values
// are free-form.
const SummaryStatusDraft = "draft"

// Thread is one conversation. Title stays nil until it is generated or set.
type Thread struct {
	ID        uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Title     *string   `gorm:"column:title;size:255" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at;precision:6;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:6;not null;index" json:"updated_at"`
}

func (Thread) TableName() string {
	return "threads"
}

// Message is append-only: there is no update or single-message delete.
type Message struct {
	ID        uuid.UUID   `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ThreadID  uuid.UUID   `gorm:"column:thread_id;type:char(36);not null;index:idx_messages_thread_created,priority:1" json:"thread_id"`
	Role      MessageRole `gorm:"column:role;size:20;not null" json:"role"`
	Content   string      `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"column:created_at;precision:6;not null;index:idx_messages_thread_created,priority:2" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

type Summary struct {
	ID        uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ThreadID  uuid.UUID `gorm:"column:thread_id;type:char(36);not null;index" json:"thread_id"`
	Title     string    `gorm:"column:title;size:255;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Status    string    `gorm:"column:status;size:50;not null" json:"status"`
	NotionURL *string   `gorm:"column:notion_url;size:500" json:"notion_url"`
	CreatedAt time.Time `gorm:"column:created_at;precision:6;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;precision:6;not null" json:"updated_at"`
}

func (Summary) TableName() string {
	return "summaries"
}

// Article is a long-form document. Status and ExternalURL change together,
// exactly once, when the article is published.
type Article struct {
	ID          uuid.UUID     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ThreadID    uuid.UUID     `gorm:"column:thread_id;type:char(36);not null;index" json:"thread_id"`
	Title       string        `gorm:"column:title;size:255;not null" json:"title"`
	Content     string        `gorm:"column:content;type:text;not null" json:"content"`
	Status      ArticleStatus `gorm:"column:status;size:20;not null;default:draft" json:"status"`
	ExternalURL *string       `gorm:"column:external_url;size:500" json:"external_url"`
	CreatedAt   time.Time     `gorm:"column:created_at;precision:6;not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;precision:6;not null" json:"updated_at"`
}

func (Article) TableName() string {
	return "articles"
}

func (a *Article) Published() bool {
	return a.Status == ArticleStatusPublished
}

// Slide is a Marp deck. ThreadID is nil for standalone decks and for decks
// whose thread was deleted.
type Slide struct {
	ID        uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ThreadID  *uuid.UUID `gorm:"column:thread_id;type:char(36);index" json:"thread_id"`
	Title     string     `gorm:"column:title;size:255;not null" json:"title"`
	Content   string     `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time  `gorm:"column:created_at;precision:6;not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;precision:6;not null" json:"updated_at"`
}

func (Slide) TableName() string {
	return "slides"
}

// AllModels lists every persisted model, in migration order.
func AllModels() []any {
	return []any{&Thread{}, &Message{}, &Summary{}, &Article{}, &Slide{}}
}
