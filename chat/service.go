// Package chat manages threads and their messages, and produces the
// assistant's replies.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/logging"
	"chat_artifact_publisher/store"
)

var (
	ErrInvalidRole  = errors.New("invalid message role")
	ErrEmptyContent = errors.New("message content is empty")
	ErrEmptyTitle   = errors.New("title is empty")
)

// Generator is the part of generator.Agent the conversation needs.
type Generator interface {
	Reply(ctx context.Context, history []generator.Message) (string, error)
	GenerateTitle(ctx context.Context, content string) (string, error)
}

type Service struct {
	threads  store.ThreadStore
	messages store.MessageStore
	gen      Generator
}

func NewService(threads store.ThreadStore, messages store.MessageStore, gen Generator) *Service {
	return &Service{threads: threads, messages: messages, gen: gen}
}

func (s *Service) CreateThread(ctx context.Context) (*store.Thread, error) {
	thread := &store.Thread{}
	if err := s.threads.CreateThread(ctx, thread); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "thread created", "thread_id", thread.ID)
	return thread, nil
}

func (s *Service) GetThread(ctx context.Context, id uuid.UUID) (*store.Thread, error) {
	return s.threads.GetThread(ctx, id)
}

func (s *Service) ListThreads(ctx context.Context) ([]store.Thread, error) {
	return s.threads.ListThreads(ctx)
}

func (s *Service) RenameThread(ctx context.Context, id uuid.UUID, title string) (*store.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return s.threads.SetThreadTitle(ctx, id, title)
}

func (s *Service) DeleteThread(ctx context.Context, id uuid.UUID) error {
	if err := s.threads.DeleteThread(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "thread deleted", "thread_id", id)
	return nil
}

// ListMessages returns the thread's messages oldest first.
func (s *Service) ListMessages(ctx context.Context, threadID uuid.UUID) ([]store.Message, error) {
	if _, err := s.threads.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, threadID)
}

// History returns the thread's messages in the shape the generator takes.
func (s *Service) History(ctx context.Context, threadID uuid.UUID) ([]generator.Message, error) {
	msgs, err := s.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	history := make([]generator.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, generator.Message{Role: string(m.Role), Content: m.Content})
	}
	return history, nil
}

// CreateMessage appends a message to the thread. An empty role means user.
// For user messages the assistant reply and the thread title are generated
// afterwards; their failures never fail the call.
func (s *Service) CreateMessage(ctx context.Context, threadID uuid.UUID, content string, role store.MessageRole) (*store.Message, error) {
	if role == "" {
		role = store.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	ctx = logging.WithFields(ctx, logging.Fields{ThreadID: threadID.String(), Component: "chat"})
	msg := &store.Message{ThreadID: threadID, Role: role, Content: content}
	if err := s.messages.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	if role == store.RoleUser {
		s.replyBestEffort(ctx, threadID)
		s.titleBestEffort(ctx, threadID, content)
	}
	return msg, nil
}

// Reply generates the assistant's answer to the thread's history and appends
// it. Nothing is appended when generation fails.
func (s *Service) Reply(ctx context.Context, threadID uuid.UUID) (*store.Message, error) {
	history, err := s.History(ctx, threadID)
	if err != nil {
		return nil, err
	}
	text, err := s.gen.Reply(ctx, history)
	if err != nil {
		return nil, err
	}
	reply := &store.Message{ThreadID: threadID, Role: store.RoleAssistant, Content: text}
	if err := s.messages.AppendMessage(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *Service) replyBestEffort(ctx context.Context, threadID uuid.UUID) {
	if _, err := s.Reply(ctx, threadID); err != nil {
		slog.WarnContext(ctx, "assistant reply skipped", "error", err)
	}
}

// titleBestEffort names a thread after its first user message.
func (s *Service) titleBestEffort(ctx context.Context, threadID uuid.UUID, content string) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil || thread.Title != nil {
		return
	}
	msgs, err := s.messages.ListMessages(ctx, threadID)
	if err != nil {
		return
	}
	users := 0
	for _, m := range msgs {
		if m.Role == store.RoleUser {
			users++
		}
	}
	if users != 1 {
		return
	}
	title, err := s.gen.GenerateTitle(ctx, content)
	if err != nil {
		slog.WarnContext(ctx, "thread title skipped", "error", err)
		return
	}
	if _, err := s.threads.SetThreadTitle(ctx, threadID, title); err != nil {
		slog.WarnContext(ctx, "thread title not saved", "error", err)
	}
}

// GenerateTitle returns a single-line title for content.
func (s *Service) GenerateTitle(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return s.gen.GenerateTitle(ctx, content)
}
