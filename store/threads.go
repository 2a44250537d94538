package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateThread(ctx context.Context, thread *Thread) error {
	if thread.ID == uuid.Nil {
		thread.ID = uuid.New()
	}
	now := s.now()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	if err := s.conn(ctx).Create(thread).Error; err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	return nil
}

func (s *Store) GetThread(ctx context.Context, id uuid.UUID) (*Thread, error) {
	var thread Thread
	if err := s.conn(ctx).First(&thread, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &thread, nil
}

func (s *Store) ListThreads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := s.conn(ctx).Order("updated_at DESC").Find(&threads).Error; err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}

func (s *Store) SetThreadTitle(ctx context.Context, id uuid.UUID, title string) (*Thread, error) {
	res := s.conn(ctx).Model(&Thread{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "updated_at": s.now()})
	if res.Error != nil {
		return nil, fmt.Errorf("set thread title: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetThread(ctx, id)
}

func (s *Store) DeleteThread(ctx context.Context, id uuid.UUID) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("thread_id = ?", id).Delete(&Summary{}).Error; err != nil {
			return fmt.Errorf("delete summaries: %w", err)
		}
		if err := tx.Where("thread_id = ?", id).Delete(&Article{}).Error; err != nil {
			return fmt.Errorf("delete articles: %w", err)
		}
		if err := tx.Model(&Slide{}).Where("thread_id = ?", id).
			Updates(map[string]any{"thread_id": nil, "updated_at": s.now()}).Error; err != nil {
			return fmt.Errorf("detach slides: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&Thread{})
		if res.Error != nil {
			return fmt.Errorf("delete thread: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AppendMessage commits msg before returning so a following ListMessages
// sees it.
func (s *Store) AppendMessage(ctx context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	msg.CreatedAt = s.now()
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Thread{}, "id = ?", msg.ThreadID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		if err := tx.Model(&Thread{}).Where("id = ?", msg.ThreadID).Update("updated_at", msg.CreatedAt).Error; err != nil {
			return fmt.Errorf("touch thread: %w", err)
		}
		return nil
	})
}

func (s *Store) ListMessages(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	var msgs []Message
	err := s.conn(ctx).Where("thread_id = ?", threadID).Order("created_at ASC").Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
