// Package artifact turns conversations into articles, slide decks and
// summaries, and owns their lifecycle after creation.
package artifact

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"chat_artifact_publisher/events"
	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/logging"
	"chat_artifact_publisher/store"
)

var (
	ErrEmptyThread  = errors.New("thread has no messages")
	ErrEmptyTitle   = errors.New("title is empty")
	ErrEmptyContent = errors.New("content is empty")
	ErrEmptyStatus  = errors.New("status is empty")
	ErrEmptyComment = errors.New("comment is empty")
)

// HistorySource loads a thread's conversation, oldest first.
type HistorySource interface {
	History(ctx context.Context, threadID uuid.UUID) ([]generator.Message, error)
}

// Generator is the part of generator.Agent used to produce documents.
type Generator interface {
	GenerateArticle(ctx context.Context, history []generator.Message) (generator.Draft, error)
	GenerateSlide(ctx context.Context, history []generator.Message) (generator.Draft, error)
	Summarize(ctx context.Context, history []generator.Message) (generator.Draft, error)
	GenerateTags(ctx context.Context, title, content string) []generator.Tag
	ReviseDocument(ctx context.Context, prev generator.Draft, comment string) (generator.Draft, error)
}

type Manager struct {
	history   HistorySource
	gen       Generator
	articles  store.ArticleStore
	slides    store.SlideStore
	summaries store.SummaryStore
	notifier  events.Notifier
}

// NewManager wires the manager. A nil notifier drops lifecycle events.
func NewManager(history HistorySource, gen Generator, articles store.ArticleStore, slides store.SlideStore,
	summaries store.SummaryStore, notifier events.Notifier) *Manager {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &Manager{
		history:   history,
		gen:       gen,
		articles:  articles,
		slides:    slides,
		summaries: summaries,
		notifier:  notifier,
	}
}

// conversation returns the thread's history, or ErrEmptyThread when there is
// nothing to generate from.
func (m *Manager) conversation(ctx context.Context, threadID uuid.UUID) ([]generator.Message, error) {
	history, err := m.history.History(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrEmptyThread
	}
	return history, nil
}

// GenerateArticle writes a new draft article from the thread. Nothing is
// stored when generation fails.
func (m *Manager) GenerateArticle(ctx context.Context, threadID uuid.UUID) (*store.Article, error) {
	ctx = logging.WithFields(ctx, logging.Fields{ThreadID: threadID.String(), Component: "artifact"})
	history, err := m.conversation(ctx, threadID)
	if err != nil {
		return nil, err
	}
	draft, err := m.gen.GenerateArticle(ctx, history)
	if err != nil {
		slog.WarnContext(ctx, "article generation failed", "error", err)
		return nil, err
	}
	article := &store.Article{ThreadID: threadID, Title: draft.Title, Content: draft.Markdown}
	if err := m.articles.CreateArticle(ctx, article); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "article generated", "article_id", article.ID, "title", article.Title)
	m.notifier.Notify(ctx, events.Event{Type: events.ArticleCreated, ID: article.ID, ThreadID: &article.ThreadID, Title: article.Title})
	return article, nil
}

// GenerateSlide writes a new Marp deck bound to the thread.
func (m *Manager) GenerateSlide(ctx context.Context, threadID uuid.UUID) (*store.Slide, error) {
	ctx = logging.WithFields(ctx, logging.Fields{ThreadID: threadID.String(), Component: "artifact"})
	history, err := m.conversation(ctx, threadID)
	if err != nil {
		return nil, err
	}
	draft, err := m.gen.GenerateSlide(ctx, history)
	if err != nil {
		slog.WarnContext(ctx, "slide generation failed", "error", err)
		return nil, err
	}
	slide := &store.Slide{ThreadID: &threadID, Title: draft.Title, Content: draft.Markdown}
	if err := m.slides.CreateSlide(ctx, slide); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "slide generated", "slide_id", slide.ID, "title", slide.Title)
	m.notifier.Notify(ctx, events.Event{Type: events.SlideCreated, ID: slide.ID, ThreadID: slide.ThreadID, Title: slide.Title})
	return slide, nil
}

// GenerateSummary writes a draft summary of the thread.
func (m *Manager) GenerateSummary(ctx context.Context, threadID uuid.UUID) (*store.Summary, error) {
	ctx = logging.WithFields(ctx, logging.Fields{ThreadID: threadID.String(), Component: "artifact"})
	history, err := m.conversation(ctx, threadID)
	if err != nil {
		return nil, err
	}
	draft, err := m.gen.Summarize(ctx, history)
	if err != nil {
		slog.WarnContext(ctx, "summary generation failed", "error", err)
		return nil, err
	}
	return m.createSummary(ctx, threadID, draft.Title, draft.Markdown)
}

// CreateSummary stores a caller-written summary as a draft.
func (m *Manager) CreateSummary(ctx context.Context, threadID uuid.UUID, title, content string) (*store.Summary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return m.createSummary(ctx, threadID, title, content)
}

func (m *Manager) createSummary(ctx context.Context, threadID uuid.UUID, title, content string) (*store.Summary, error) {
	summary := &store.Summary{ThreadID: threadID, Title: title, Content: content, Status: store.SummaryStatusDraft}
	if err := m.summaries.CreateSummary(ctx, summary); err != nil {
		return nil, err
	}
	m.notifier.Notify(ctx, events.Event{Type: events.SummaryCreated, ID: summary.ID, ThreadID: &summary.ThreadID, Title: summary.Title})
	return summary, nil
}

// CreateSlide stores a caller-written deck. threadID may be nil.
func (m *Manager) CreateSlide(ctx context.Context, threadID *uuid.UUID, title, content string) (*store.Slide, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	slide := &store.Slide{ThreadID: threadID, Title: title, Content: content}
	if err := m.slides.CreateSlide(ctx, slide); err != nil {
		return nil, err
	}
	m.notifier.Notify(ctx, events.Event{Type: events.SlideCreated, ID: slide.ID, ThreadID: slide.ThreadID, Title: slide.Title})
	return slide, nil
}

// GenerateTags suggests tags for an article. It always returns at least one.
func (m *Manager) GenerateTags(ctx context.Context, title, content string) []generator.Tag {
	return m.gen.GenerateTags(ctx, title, content)
}

func (m *Manager) GetArticle(ctx context.Context, id uuid.UUID) (*store.Article, error) {
	return m.articles.GetArticle(ctx, id)
}

func (m *Manager) ListArticles(ctx context.Context, threadID *uuid.UUID) ([]store.Article, error) {
	return m.articles.ListArticles(ctx, threadID)
}

func (m *Manager) LatestArticle(ctx context.Context, threadID uuid.UUID) (*store.Article, error) {
	return m.articles.LatestArticle(ctx, threadID)
}

// UpdateArticle edits title and content. The publish state is changed only
// by MarkPublished.
func (m *Manager) UpdateArticle(ctx context.Context, id uuid.UUID, patch store.DocumentPatch) (*store.Article, error) {
	if err := checkDocumentPatch(&patch); err != nil {
		return nil, err
	}
	return m.articles.UpdateArticle(ctx, id, patch)
}

// ReviseArticle rewrites a draft article from an editor comment and stores the
// result in place. Published articles are not revised.
func (m *Manager) ReviseArticle(ctx context.Context, id uuid.UUID, comment string) (*store.Article, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}
	ctx = logging.WithFields(ctx, logging.Fields{ArtifactID: id.String(), Component: "artifact"})
	article, err := m.articles.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Published() {
		return nil, store.ErrNotDraft
	}
	draft, err := m.gen.ReviseDocument(ctx, generator.Draft{Title: article.Title, Markdown: article.Content}, comment)
	if err != nil {
		slog.WarnContext(ctx, "article revision failed", "error", err)
		return nil, err
	}
	patch := store.DocumentPatch{Title: &draft.Title, Content: &draft.Markdown}
	if err := checkDocumentPatch(&patch); err != nil {
		return nil, err
	}
	revised, err := m.articles.UpdateArticle(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "article revised", "title", revised.Title)
	return revised, nil
}

// MarkPublished records a successful publish. store.ErrNotDraft means another
// publish got there first.
func (m *Manager) MarkPublished(ctx context.Context, id uuid.UUID, url string) (*store.Article, error) {
	article, err := m.articles.MarkArticlePublished(ctx, id, url)
	if err != nil {
		return nil, err
	}
	m.notifier.Notify(ctx, events.Event{Type: events.ArticlePublished, ID: article.ID, ThreadID: &article.ThreadID, Title: article.Title, URL: url})
	return article, nil
}

func (m *Manager) GetSlide(ctx context.Context, id uuid.UUID) (*store.Slide, error) {
	return m.slides.GetSlide(ctx, id)
}

func (m *Manager) ListSlides(ctx context.Context, threadID *uuid.UUID) ([]store.Slide, error) {
	return m.slides.ListSlides(ctx, threadID)
}

func (m *Manager) LatestSlide(ctx context.Context, threadID uuid.UUID) (*store.Slide, error) {
	return m.slides.LatestSlide(ctx, threadID)
}

func (m *Manager) UpdateSlide(ctx context.Context, id uuid.UUID, patch store.DocumentPatch) (*store.Slide, error) {
	if err := checkDocumentPatch(&patch); err != nil {
		return nil, err
	}
	return m.slides.UpdateSlide(ctx, id, patch)
}

func (m *Manager) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	return m.slides.DeleteSlide(ctx, id)
}

func (m *Manager) GetSummary(ctx context.Context, id uuid.UUID) (*store.Summary, error) {
	return m.summaries.GetSummary(ctx, id)
}

func (m *Manager) ListSummaries(ctx context.Context, threadID *uuid.UUID) ([]store.Summary, error) {
	return m.summaries.ListSummaries(ctx, threadID)
}

// UpdateSummary accepts any non-blank status; the set of statuses is not
// fixed here.
func (m *Manager) UpdateSummary(ctx context.Context, id uuid.UUID, patch store.SummaryPatch) (*store.Summary, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, ErrEmptyTitle
		}
		patch.Title = &t
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, ErrEmptyContent
	}
	if patch.Status != nil {
		st := strings.TrimSpace(*patch.Status)
		if st == "" {
			return nil, ErrEmptyStatus
		}
		patch.Status = &st
	}
	return m.summaries.UpdateSummary(ctx, id, patch)
}

func checkDocumentPatch(patch *store.DocumentPatch) error {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return ErrEmptyTitle
		}
		patch.Title = &t
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
