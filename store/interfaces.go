package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrNotDraft is returned when a publish transition finds the article
	// already out of draft.
	ErrNotDraft = errors.New("article is not a draft")
)

type ThreadStore interface {
	CreateThread(ctx context.Context, thread *Thread) error
	GetThread(ctx context.Context, id uuid.UUID) (*Thread, error)
	// ListThreads orders by updated_at descending.
	ListThreads(ctx context.Context) ([]Thread, error)
	SetThreadTitle(ctx context.Context, id uuid.UUID, title string) (*Thread, error)
	// DeleteThread removes the thread with its messages, summaries and
	// articles, and detaches its slides.
	DeleteThread(ctx context.Context, id uuid.UUID) error
}

type MessageStore interface {
	// AppendMessage inserts msg and advances the thread's updated_at.
	AppendMessage(ctx context.Context, msg *Message) error
	// ListMessages orders by created_at ascending.
	ListMessages(ctx context.Context, threadID uuid.UUID) ([]Message, error)
}

type SummaryStore interface {
	CreateSummary(ctx context.Context, summary *Summary) error
	GetSummary(ctx context.Context, id uuid.UUID) (*Summary, error)
	ListSummaries(ctx context.Context, threadID *uuid.UUID) ([]Summary, error)
	UpdateSummary(ctx context.Context, id uuid.UUID, patch SummaryPatch) (*Summary, error)
}

type ArticleStore interface {
	CreateArticle(ctx context.Context, article *Article) error
	GetArticle(ctx context.Context, id uuid.UUID) (*Article, error)
	ListArticles(ctx context.Context, threadID *uuid.UUID) ([]Article, error)
	LatestArticle(ctx context.Context, threadID uuid.UUID) (*Article, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, patch DocumentPatch) (*Article, error)
	// MarkArticlePublished moves a draft to published with url in one
	// conditional update. ErrNotDraft if the article is no longer a draft.
	MarkArticlePublished(ctx context.Context, id uuid.UUID, url string) (*Article, error)
}

type SlideStore interface {
	CreateSlide(ctx context.Context, slide *Slide) error
	GetSlide(ctx context.Context, id uuid.UUID) (*Slide, error)
	ListSlides(ctx context.Context, threadID *uuid.UUID) ([]Slide, error)
	LatestSlide(ctx context.Context, threadID uuid.UUID) (*Slide, error)
	UpdateSlide(ctx context.Context, id uuid.UUID, patch DocumentPatch) (*Slide, error)
	DeleteSlide(ctx context.Context, id uuid.UUID) error
}

// DocumentPatch is a partial update of an article or slide. Nil fields are
// left unchanged.
type DocumentPatch struct {
	Title   *string
	Content *string
}

func (p DocumentPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

type SummaryPatch struct {
	Title     *string
	Content   *string
	Status    *string
	NotionURL *string
}

func (p SummaryPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Status == nil && p.NotionURL == nil
}
