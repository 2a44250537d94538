package artifact_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chat_artifact_publisher/artifact"
	"chat_artifact_publisher/chat"
	"chat_artifact_publisher/config"
	"chat_artifact_publisher/events"
	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/store"
)

type fakeGenerator struct {
	articleFn func(ctx context.Context, history []generator.Message) (generator.Draft, error)
	slideFn   func(ctx context.Context, history []generator.Message) (generator.Draft, error)
	summaryFn func(ctx context.Context, history []generator.Message) (generator.Draft, error)
	reviseFn  func(ctx context.Context, prev generator.Draft, comment string) (generator.Draft, error)
}

func (f *fakeGenerator) GenerateArticle(ctx context.Context, history []generator.Message) (generator.Draft, error) {
	return f.articleFn(ctx, history)
}

func (f *fakeGenerator) GenerateSlide(ctx context.Context, history []generator.Message) (generator.Draft, error) {
	return f.slideFn(ctx, history)
}

func (f *fakeGenerator) Summarize(ctx context.Context, history []generator.Message) (generator.Draft, error) {
	return f.summaryFn(ctx, history)
}

func (f *fakeGenerator) ReviseDocument(ctx context.Context, prev generator.Draft, comment string) (generator.Draft, error) {
	return f.reviseFn(ctx, prev, comment)
}

func (f *fakeGenerator) GenerateTags(context.Context, string, string) []generator.Tag {
	return []generator.Tag{generator.FallbackTag}
}

// silentReplies never answers, so seeded threads hold only what the test wrote.
type silentReplies struct{}

func (silentReplies) Reply(context.Context, []generator.Message) (string, error) {
	return "", errors.New("no replies in this suite")
}

func (silentReplies) GenerateTitle(context.Context, string) (string, error) {
	return "", errors.New("no titles in this suite")
}

type recordingNotifier struct {
	events []events.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		db       *store.Store
		chats    *chat.Service
		gen      *fakeGenerator
		notifier *recordingNotifier
		manager  *artifact.Manager
		thread   *store.Thread
	)

	seed := func(contents ...string) {
		roles := []store.MessageRole{store.RoleUser, store.RoleAssistant}
		for i, c := range contents {
			_, err := chats.CreateMessage(ctx, thread.ID, c, roles[i%2])
			Expect(err).NotTo(HaveOccurred())
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = store.Open(config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		chats = chat.NewService(db, db, silentReplies{})
		gen = &fakeGenerator{
			articleFn: func(_ context.Context, history []generator.Message) (generator.Draft, error) {
				return generator.Draft{Title: "Promises in Practice", Markdown: "# Promises in Practice\n\nbody"}, nil
			},
			slideFn: func(context.Context, []generator.Message) (generator.Draft, error) {
				return generator.Draft{Title: "Promises", Markdown: "---\nmarp: true\n---\n\n# Promises\n"}, nil
			},
			summaryFn: func(context.Context, []generator.Message) (generator.Draft, error) {
				return generator.Draft{Title: "Summary", Markdown: "# Summary\n\n- point"}, nil
			},
		}
		notifier = &recordingNotifier{}
		manager = artifact.NewManager(chats, gen, db, db, db, notifier)

		thread, err = chats.CreateThread(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("GenerateArticle", func() {
		It("creates a draft article from a thread with messages", func() {
			seed("explain promises", "A promise is...", "write a Qiita post")
			var seen []generator.Message
			gen.articleFn = func(_ context.Context, history []generator.Message) (generator.Draft, error) {
				seen = history
				return generator.Draft{Title: "Promises in Practice", Markdown: "# Promises in Practice\n\nbody"}, nil
			}

			article, err := manager.GenerateArticle(ctx, thread.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(article.Status).To(Equal(store.ArticleStatusDraft))
			Expect(article.Title).NotTo(BeEmpty())
			Expect(article.Content).NotTo(BeEmpty())
			Expect(article.ThreadID).To(Equal(thread.ID))
			Expect(article.ExternalURL).To(BeNil())
			Expect(seen).To(HaveLen(3))
			Expect(seen[2].Content).To(Equal("write a Qiita post"))

			Expect(notifier.events).To(HaveLen(1))
			Expect(notifier.events[0].Type).To(Equal(events.ArticleCreated))
			Expect(notifier.events[0].ID).To(Equal(article.ID))
		})

		It("keeps earlier drafts and reports the newest as latest", func() {
			seed("explain promises")
			first, err := manager.GenerateArticle(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			second, err := manager.GenerateArticle(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())

			latest, err := manager.LatestArticle(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.ID).To(Equal(second.ID))

			all, err := manager.ListArticles(ctx, &thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[1].ID).To(Equal(first.ID))
		})

		It("stores nothing when generation fails", func() {
			seed("explain promises")
			gen.articleFn = func(context.Context, []generator.Message) (generator.Draft, error) {
				return generator.Draft{}, &generator.GenerationError{Provider: "fake", Err: errors.New("quota")}
			}

			_, err := manager.GenerateArticle(ctx, thread.ID)

			Expect(generator.IsGenerationError(err)).To(BeTrue())
			all, err := manager.ListArticles(ctx, &thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
			Expect(notifier.events).To(BeEmpty())
		})

		It("refuses an empty thread", func() {
			_, err := manager.GenerateArticle(ctx, thread.ID)
			Expect(err).To(MatchError(artifact.ErrEmptyThread))
		})

		It("reports a missing thread", func() {
			_, err := manager.GenerateArticle(ctx, uuid.New())
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("ReviseArticle", func() {
		var article *store.Article

		BeforeEach(func() {
			seed("explain promises")
			var err error
			article, err = manager.GenerateArticle(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rewrites the draft in place", func() {
			var gotPrev generator.Draft
			var gotComment string
			gen.reviseFn = func(_ context.Context, prev generator.Draft, comment string) (generator.Draft, error) {
				gotPrev, gotComment = prev, comment
				return generator.Draft{Title: "Promises, Briefly", Markdown: "# Promises, Briefly\n\nshort"}, nil
			}

			revised, err := manager.ReviseArticle(ctx, article.ID, "  shorten it ")

			Expect(err).NotTo(HaveOccurred())
			Expect(gotComment).To(Equal("shorten it"))
			Expect(gotPrev.Markdown).To(Equal(article.Content))
			Expect(revised.ID).To(Equal(article.ID))
			Expect(revised.Title).To(Equal("Promises, Briefly"))
			Expect(revised.Status).To(Equal(store.ArticleStatusDraft))

			all, err := manager.ListArticles(ctx, &thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("leaves the article untouched when revision fails", func() {
			gen.reviseFn = func(context.Context, generator.Draft, string) (generator.Draft, error) {
				return generator.Draft{}, &generator.GenerationError{Provider: "fake", Err: errors.New("down")}
			}
			_, err := manager.ReviseArticle(ctx, article.ID, "shorten")
			Expect(generator.IsGenerationError(err)).To(BeTrue())

			stored, err := manager.GetArticle(ctx, article.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Content).To(Equal(article.Content))
		})

		It("rejects blank comments, published articles and unknown ids", func() {
			_, err := manager.ReviseArticle(ctx, article.ID, "  ")
			Expect(err).To(MatchError(artifact.ErrEmptyComment))

			_, err = manager.ReviseArticle(ctx, uuid.New(), "shorten")
			Expect(err).To(MatchError(store.ErrNotFound))

			_, err = manager.MarkPublished(ctx, article.ID, "https://qiita.com/u/items/1")
			Expect(err).NotTo(HaveOccurred())
			_, err = manager.ReviseArticle(ctx, article.ID, "shorten")
			Expect(err).To(MatchError(store.ErrNotDraft))
		})
	})

	Describe("slides", func() {
		It("binds generated decks to the thread", func() {
			seed("make this a slide deck")
			slide, err := manager.GenerateSlide(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(slide.ThreadID).NotTo(BeNil())
			Expect(*slide.ThreadID).To(Equal(thread.ID))

			latest, err := manager.LatestSlide(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest.ID).To(Equal(slide.ID))
		})

		It("creates standalone decks and survives thread deletion", func() {
			standalone, err := manager.CreateSlide(ctx, nil, " Deck ", "---\n# Deck")
			Expect(err).NotTo(HaveOccurred())
			Expect(standalone.ThreadID).To(BeNil())
			Expect(standalone.Title).To(Equal("Deck"))

			seed("slides please")
			bound, err := manager.GenerateSlide(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(chats.DeleteThread(ctx, thread.ID)).To(Succeed())

			detached, err := manager.GetSlide(ctx, bound.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detached.ThreadID).To(BeNil())
		})

		It("validates patches and deletes", func() {
			slide, err := manager.CreateSlide(ctx, nil, "Deck", "---")
			Expect(err).NotTo(HaveOccurred())

			blank := "  "
			_, err = manager.UpdateSlide(ctx, slide.ID, store.DocumentPatch{Title: &blank})
			Expect(err).To(MatchError(artifact.ErrEmptyTitle))

			content := "---\n# New"
			updated, err := manager.UpdateSlide(ctx, slide.ID, store.DocumentPatch{Content: &content})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Content).To(Equal(content))
			Expect(updated.Title).To(Equal("Deck"))

			Expect(manager.DeleteSlide(ctx, slide.ID)).To(Succeed())
			_, err = manager.GetSlide(ctx, slide.ID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("summaries", func() {
		It("generates and updates with an open status set", func() {
			seed("explain promises")
			summary, err := manager.GenerateSummary(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Status).To(Equal(store.SummaryStatusDraft))

			status := " exported "
			updated, err := manager.UpdateSummary(ctx, summary.ID, store.SummaryPatch{Status: &status})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal("exported"))

			empty := ""
			_, err = manager.UpdateSummary(ctx, summary.ID, store.SummaryPatch{Status: &empty})
			Expect(err).To(MatchError(artifact.ErrEmptyStatus))
		})

		It("creates caller-written summaries as drafts", func() {
			summary, err := manager.CreateSummary(ctx, thread.ID, "Notes", "content")
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Status).To(Equal(store.SummaryStatusDraft))

			_, err = manager.CreateSummary(ctx, thread.ID, "Notes", " ")
			Expect(err).To(MatchError(artifact.ErrEmptyContent))

			list, err := manager.ListSummaries(ctx, &thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})
	})

	Describe("MarkPublished", func() {
		It("moves a draft to published once", func() {
			seed("explain promises")
			article, err := manager.GenerateArticle(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())

			published, err := manager.MarkPublished(ctx, article.ID, "https://example.com/post/1")
			Expect(err).NotTo(HaveOccurred())
			Expect(published.Status).To(Equal(store.ArticleStatusPublished))
			Expect(*published.ExternalURL).To(Equal("https://example.com/post/1"))
			Expect(notifier.events[len(notifier.events)-1].Type).To(Equal(events.ArticlePublished))

			_, err = manager.MarkPublished(ctx, article.ID, "https://example.com/post/2")
			Expect(err).To(MatchError(store.ErrNotDraft))
		})
	})
})
