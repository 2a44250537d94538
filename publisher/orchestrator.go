package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/logging"
	"chat_artifact_publisher/store"
)

const tracerName = "chat_artifact_publisher/publisher"

// ValidationError means the caller's input cannot be published as given.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PublishError means the platform rejected the post or could not be reached.
// The article is left in draft.
type PublishError struct {
	Platform string
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed: %v", e.Platform, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ArticleRepository is the part of the artifact manager the orchestrator needs.
type ArticleRepository interface {
	GetArticle(ctx context.Context, id uuid.UUID) (*store.Article, error)
	MarkPublished(ctx context.Context, id uuid.UUID, url string) (*store.Article, error)
}

type Result struct {
	URL              string `json:"url"`
	AlreadyPublished bool   `json:"already_published"`
}

type Orchestrator struct {
	articles ArticleRepository
	platform Platform
}

func NewOrchestrator(articles ArticleRepository, platform Platform) *Orchestrator {
	return &Orchestrator{articles: articles, platform: platform}
}

// Publish posts a draft article with the approved tags and records the
// returned URL. Publishing an already published article changes nothing and
// returns the stored URL.
func (o *Orchestrator) Publish(ctx context.Context, articleID uuid.UUID, tags []generator.Tag) (Result, error) {
	ctx = logging.WithFields(ctx, logging.Fields{ArtifactID: articleID.String(), Component: "publisher"})

	article, err := o.articles.GetArticle(ctx, articleID)
	if err != nil {
		return Result{}, err
	}
	if article.Published() {
		url := ""
		if article.ExternalURL != nil {
			url = *article.ExternalURL
		}
		slog.WarnContext(ctx, "article already published, skipping", "url", url)
		return Result{URL: url, AlreadyPublished: true}, nil
	}

	approved := cleanTags(tags)
	if len(approved) == 0 {
		return Result{}, &ValidationError{Field: "tags", Message: "at least one non-blank tag is required"}
	}

	url, err := o.post(ctx, Post{Title: article.Title, Content: article.Content, Tags: approved})
	if err != nil {
		slog.ErrorContext(ctx, "publish failed, article stays draft", "platform", o.platform.Name(), "error", err)
		return Result{}, &PublishError{Platform: o.platform.Name(), Err: err}
	}

	if _, err := o.articles.MarkPublished(ctx, articleID, url); err != nil {
		return Result{}, fmt.Errorf("record publish of %s: %w", articleID, err)
	}
	slog.InfoContext(ctx, "article published", "platform", o.platform.Name(), "url", url)
	return Result{URL: url}, nil
}

func (o *Orchestrator) post(ctx context.Context, p Post) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "publisher.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("publisher.platform", o.platform.Name()),
			attribute.Int("publisher.tags", len(p.Tags)),
		))
	defer span.End()

	url, err := o.platform.Post(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return url, nil
}

// cleanTags trims names and drops blanks and duplicates.
func cleanTags(tags []generator.Tag) []generator.Tag {
	out := make([]generator.Tag, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		name := strings.TrimSpace(t.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, generator.Tag{Name: name})
	}
	return out
}
