package generator

import (
	"context"
	"errors"
	"log/slog"
)

const fallbackTitleRunes = 40

// Agent 负责根据对话历史生成回复、文章、幻灯片、摘要、标题与标签。
// It is the only caller of the LLMClient.
type Agent struct {
	llm   LLMClient
	model string
}

// NewAgent wraps llm. model overrides the client's default model when set.
func NewAgent(llm LLMClient, model string) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm, model: model}, nil
}

func (a *Agent) generate(ctx context.Context, purpose Purpose, prompt Prompt) (string, error) {
	opts := OptionsFor(purpose)
	opts.Model = a.model
	return a.llm.Generate(ctx, prompt.Messages(), opts)
}

// Reply produces the assistant's next chat message for history, which must
// already contain the latest user message.
func (a *Agent) Reply(ctx context.Context, history []Message) (string, error) {
	prompt, purpose := ChatPrompt(history)
	slog.DebugContext(ctx, "composing chat reply", "purpose", purpose.String(), "history_len", len(history))
	return a.generate(ctx, purpose, prompt)
}

// GenerateArticle writes a Markdown article from the conversation.
func (a *Agent) GenerateArticle(ctx context.Context, history []Message) (Draft, error) {
	return a.generateDocument(ctx, PurposeArticle, history)
}

// GenerateSlide writes a Marp slide deck from the conversation.
func (a *Agent) GenerateSlide(ctx context.Context, history []Message) (Draft, error) {
	return a.generateDocument(ctx, PurposeSlide, history)
}

// Summarize writes a condensed summary of the conversation.
func (a *Agent) Summarize(ctx context.Context, history []Message) (Draft, error) {
	return a.generateDocument(ctx, PurposeSummary, history)
}

// ReviseDocument rewrites prev according to an editor comment. A revision
// that drops the heading keeps the previous title.
func (a *Agent) ReviseDocument(ctx context.Context, prev Draft, comment string) (Draft, error) {
	raw, err := a.generate(ctx, PurposeRevision, Compose(PurposeRevision, PromptContext{Text: prev.Markdown, Comment: comment}))
	if err != nil {
		return Draft{}, err
	}
	draft := ParseDocument(raw)
	if draft.Title == "" {
		draft.Title = prev.Title
	}
	return draft, nil
}

// generateDocument falls back to a generated title when the document has no
// heading of its own. A failed title call keeps the document and titles it
// with an excerpt instead.
func (a *Agent) generateDocument(ctx context.Context, purpose Purpose, history []Message) (Draft, error) {
	raw, err := a.generate(ctx, purpose, Compose(purpose, PromptContext{History: history}))
	if err != nil {
		return Draft{}, err
	}
	draft := ParseDocument(raw)
	if draft.Title == "" {
		title, err := a.GenerateTitle(ctx, raw)
		if err != nil {
			slog.WarnContext(ctx, "title generation failed, using excerpt", "purpose", purpose.String(), "error", err)
			title = fallbackTitle(raw)
		}
		draft.Title = title
	}
	return draft, nil
}

// GenerateTitle returns a non-empty single-line title for content. Model
// failures are returned; an empty model answer falls back to an excerpt.
func (a *Agent) GenerateTitle(ctx context.Context, content string) (string, error) {
	raw, err := a.generate(ctx, PurposeTitle, Compose(PurposeTitle, PromptContext{Text: content}))
	if err != nil {
		return "", err
	}
	if title := ParseTitle(raw); title != "" {
		return title, nil
	}
	return fallbackTitle(content), nil
}

func fallbackTitle(content string) string {
	if title := excerpt(content, fallbackTitleRunes); title != "" {
		return title
	}
	return "Untitled"
}

// GenerateTags never fails: generation errors, parse errors and empty results
// all degrade to the single FallbackTag.
func (a *Agent) GenerateTags(ctx context.Context, title, content string) []Tag {
	raw, err := a.generate(ctx, PurposeTags, Compose(PurposeTags, PromptContext{Title: title, Text: content}))
	if err != nil {
		slog.WarnContext(ctx, "tag generation failed, using fallback tag", "error", err)
		return []Tag{FallbackTag}
	}
	tags, err := ParseTags(raw)
	if err != nil {
		slog.WarnContext(ctx, "tag parsing failed, using fallback tag", "error", err, "raw", excerpt(raw, 120))
		return []Tag{FallbackTag}
	}
	if len(tags) == 0 {
		return []Tag{FallbackTag}
	}
	return tags
}
