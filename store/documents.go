package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) threadExists(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Select("id").First(&Thread{}, "id = ?", id).Error; err != nil {
		return notFound(err)
	}
	return nil
}

// updateRow applies fields to the row of model with id and reloads it into
// model. A missing row is ErrNotFound.
func (s *Store) updateRow(ctx context.Context, model any, id uuid.UUID, fields map[string]any) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(model, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if len(fields) == 0 {
			return nil
		}
		fields["updated_at"] = s.now()
		if err := tx.Model(model).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(model, "id = ?", id).Error
	})
}

func documentFields(p DocumentPatch) map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	return fields
}

// Summaries

func (s *Store) CreateSummary(ctx context.Context, summary *Summary) error {
	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	if summary.Status == "" {
		summary.Status = SummaryStatusDraft
	}
	now := s.now()
	summary.CreatedAt, summary.UpdatedAt = now, now
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.threadExists(tx, summary.ThreadID); err != nil {
			return err
		}
		if err := tx.Create(summary).Error; err != nil {
			return fmt.Errorf("create summary: %w", err)
		}
		return nil
	})
}

func (s *Store) GetSummary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	var summary Summary
	if err := s.conn(ctx).First(&summary, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &summary, nil
}

func (s *Store) ListSummaries(ctx context.Context, threadID *uuid.UUID) ([]Summary, error) {
	var summaries []Summary
	if err := s.conn(ctx).Scopes(byCreatedDesc(threadID)).Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return summaries, nil
}

func (s *Store) UpdateSummary(ctx context.Context, id uuid.UUID, patch SummaryPatch) (*Summary, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.NotionURL != nil {
		fields["notion_url"] = *patch.NotionURL
	}
	var summary Summary
	if err := s.updateRow(ctx, &summary, id, fields); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Articles

func (s *Store) CreateArticle(ctx context.Context, article *Article) error {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	article.Status = ArticleStatusDraft
	article.ExternalURL = nil
	now := s.now()
	article.CreatedAt, article.UpdatedAt = now, now
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.threadExists(tx, article.ThreadID); err != nil {
			return err
		}
		if err := tx.Create(article).Error; err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		return nil
	})
}

func (s *Store) GetArticle(ctx context.Context, id uuid.UUID) (*Article, error) {
	var article Article
	if err := s.conn(ctx).First(&article, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &article, nil
}

func (s *Store) ListArticles(ctx context.Context, threadID *uuid.UUID) ([]Article, error) {
	var articles []Article
	if err := s.conn(ctx).Scopes(byCreatedDesc(threadID)).Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *Store) LatestArticle(ctx context.Context, threadID uuid.UUID) (*Article, error) {
	var article Article
	if err := s.conn(ctx).Scopes(byCreatedDesc(&threadID)).Take(&article).Error; err != nil {
		return nil, notFound(err)
	}
	return &article, nil
}

func (s *Store) UpdateArticle(ctx context.Context, id uuid.UUID, patch DocumentPatch) (*Article, error) {
	var article Article
	if err := s.updateRow(ctx, &article, id, documentFields(patch)); err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *Store) MarkArticlePublished(ctx context.Context, id uuid.UUID, url string) (*Article, error) {
	res := s.conn(ctx).Model(&Article{}).
		Where("id = ? AND status = ?", id, ArticleStatusDraft).
		Updates(map[string]any{
			"status":       ArticleStatusPublished,
			"external_url": url,
			"updated_at":   s.now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("mark article published: %w", res.Error)
	}
	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotDraft
	}
	return article, nil
}

// Slides

func (s *Store) CreateSlide(ctx context.Context, slide *Slide) error {
	if slide.ID == uuid.Nil {
		slide.ID = uuid.New()
	}
	now := s.now()
	slide.CreatedAt, slide.UpdatedAt = now, now
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if slide.ThreadID != nil {
			if err := s.threadExists(tx, *slide.ThreadID); err != nil {
				return err
			}
		}
		if err := tx.Create(slide).Error; err != nil {
			return fmt.Errorf("create slide: %w", err)
		}
		return nil
	})
}

func (s *Store) GetSlide(ctx context.Context, id uuid.UUID) (*Slide, error) {
	var slide Slide
	if err := s.conn(ctx).First(&slide, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &slide, nil
}

func (s *Store) ListSlides(ctx context.Context, threadID *uuid.UUID) ([]Slide, error) {
	var slides []Slide
	if err := s.conn(ctx).Scopes(byCreatedDesc(threadID)).Find(&slides).Error; err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	return slides, nil
}

func (s *Store) LatestSlide(ctx context.Context, threadID uuid.UUID) (*Slide, error) {
	var slide Slide
	if err := s.conn(ctx).Scopes(byCreatedDesc(&threadID)).Take(&slide).Error; err != nil {
		return nil, notFound(err)
	}
	return &slide, nil
}

func (s *Store) UpdateSlide(ctx context.Context, id uuid.UUID, patch DocumentPatch) (*Slide, error) {
	var slide Slide
	if err := s.updateRow(ctx, &slide, id, documentFields(patch)); err != nil {
		return nil, err
	}
	return &slide, nil
}

func (s *Store) DeleteSlide(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&Slide{})
	if res.Error != nil {
		return fmt.Errorf("delete slide: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
