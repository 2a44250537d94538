package publisher_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/publisher"
	"chat_artifact_publisher/store"
)

type fakeArticles struct {
	articles map[uuid.UUID]*store.Article
}

func (f *fakeArticles) GetArticle(_ context.Context, id uuid.UUID) (*store.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeArticles) MarkPublished(_ context.Context, id uuid.UUID, url string) (*store.Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if a.Status != store.ArticleStatusDraft {
		return nil, store.ErrNotDraft
	}
	a.Status = store.ArticleStatusPublished
	a.ExternalURL = &url
	return a, nil
}

type fakePlatform struct {
	postFn func(ctx context.Context, post publisher.Post) (string, error)
	posts  []publisher.Post
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) Post(ctx context.Context, post publisher.Post) (string, error) {
	f.posts = append(f.posts, post)
	return f.postFn(ctx, post)
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx      context.Context
		repo     *fakeArticles
		platform *fakePlatform
		orch     *publisher.Orchestrator
		article  *store.Article
	)

	BeforeEach(func() {
		ctx = context.Background()
		article = &store.Article{
			ID:       uuid.New(),
			ThreadID: uuid.New(),
			Title:    "Go generics",
			Content:  "# Go generics\n\nbody",
			Status:   store.ArticleStatusDraft,
		}
		repo = &fakeArticles{articles: map[uuid.UUID]*store.Article{article.ID: article}}
		platform = &fakePlatform{postFn: func(context.Context, publisher.Post) (string, error) {
			return "https://example.com/post/1", nil
		}}
		orch = publisher.NewOrchestrator(repo, platform)
	})

	It("publishes a draft and records the url", func() {
		res, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: "go"}})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.URL).To(Equal("https://example.com/post/1"))
		Expect(res.AlreadyPublished).To(BeFalse())
		Expect(article.Status).To(Equal(store.ArticleStatusPublished))
		Expect(*article.ExternalURL).To(Equal("https://example.com/post/1"))
		Expect(platform.posts).To(HaveLen(1))
		Expect(platform.posts[0].Title).To(Equal("Go generics"))
	})

	It("leaves the article in draft when the platform fails", func() {
		platform.postFn = func(context.Context, publisher.Post) (string, error) {
			return "", errors.New("503 service unavailable")
		}

		_, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: "go"}})

		var pubErr *publisher.PublishError
		Expect(errors.As(err, &pubErr)).To(BeTrue())
		Expect(pubErr.Platform).To(Equal("fake"))
		Expect(article.Status).To(Equal(store.ArticleStatusDraft))
		Expect(article.ExternalURL).To(BeNil())
	})

	It("rejects a tag list that is blank after trimming", func() {
		_, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: "  "}, {Name: ""}})

		var valErr *publisher.ValidationError
		Expect(errors.As(err, &valErr)).To(BeTrue())
		Expect(valErr.Field).To(Equal("tags"))
		Expect(platform.posts).To(BeEmpty())
	})

	It("trims and de-duplicates tags", func() {
		_, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: " go "}, {Name: "Go"}, {Name: ""}, {Name: "generics"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(platform.posts[0].Tags).To(Equal([]generator.Tag{{Name: "go"}, {Name: "generics"}}))
	})

	It("treats publishing a published article as a no-op", func() {
		_, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: "go"}})
		Expect(err).NotTo(HaveOccurred())

		platform.postFn = func(context.Context, publisher.Post) (string, error) {
			return "https://example.com/post/2", nil
		}
		res, err := orch.Publish(ctx, article.ID, []generator.Tag{{Name: "go"}})

		Expect(err).NotTo(HaveOccurred())
		Expect(res.AlreadyPublished).To(BeTrue())
		Expect(res.URL).To(Equal("https://example.com/post/1"))
		Expect(*article.ExternalURL).To(Equal("https://example.com/post/1"))
		Expect(platform.posts).To(HaveLen(1))
	})

	It("reports an unknown article", func() {
		_, err := orch.Publish(ctx, uuid.New(), []generator.Tag{{Name: "go"}})
		Expect(err).To(MatchError(store.ErrNotFound))
	})
})
