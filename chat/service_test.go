package chat_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chat_artifact_publisher/chat"
	"chat_artifact_publisher/config"
	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/store"
)

type fakeGenerator struct {
	replyFn func(ctx context.Context, history []generator.Message) (string, error)
	titleFn func(ctx context.Context, content string) (string, error)
	seen    [][]generator.Message
}

func (f *fakeGenerator) Reply(ctx context.Context, history []generator.Message) (string, error) {
	f.seen = append(f.seen, history)
	return f.replyFn(ctx, history)
}

func (f *fakeGenerator) GenerateTitle(ctx context.Context, content string) (string, error) {
	return f.titleFn(ctx, content)
}

func openStore() *store.Store {
	db, err := store.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(db.Close)
	return db
}

var _ = Describe("Service", func() {
	var (
		ctx    context.Context
		db     *store.Store
		gen    *fakeGenerator
		svc    *chat.Service
		thread *store.Thread
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openStore()
		gen = &fakeGenerator{
			replyFn: func(context.Context, []generator.Message) (string, error) {
				return "A promise represents a future value.", nil
			},
			titleFn: func(context.Context, string) (string, error) {
				return "JavaScript Promises", nil
			},
		}
		svc = chat.NewService(db, db, gen)
		var err error
		thread, err = svc.CreateThread(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("CreateMessage", func() {
		It("appends the user message and an assistant reply", func() {
			msg, err := svc.CreateMessage(ctx, thread.ID, "How do Promises work?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Role).To(Equal(store.RoleUser))

			msgs, err := svc.ListMessages(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[0].Content).To(Equal("How do Promises work?"))
			Expect(msgs[1].Role).To(Equal(store.RoleAssistant))
			Expect(msgs[1].Content).To(Equal("A promise represents a future value."))

			Expect(gen.seen).To(HaveLen(1))
			Expect(gen.seen[0]).To(Equal([]generator.Message{{Role: "user", Content: "How do Promises work?"}}))
		})

		It("keeps the user message and succeeds when the reply fails", func() {
			gen.replyFn = func(context.Context, []generator.Message) (string, error) {
				return "", &generator.GenerationError{Provider: "fake", Err: errors.New("timeout")}
			}

			_, err := svc.CreateMessage(ctx, thread.ID, "How do Promises work?", store.RoleUser)
			Expect(err).NotTo(HaveOccurred())

			msgs, err := svc.ListMessages(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(store.RoleUser))
		})

		It("does not reply to assistant messages", func() {
			_, err := svc.CreateMessage(ctx, thread.ID, "seeded answer", store.RoleAssistant)
			Expect(err).NotTo(HaveOccurred())
			Expect(gen.seen).To(BeEmpty())
		})

		It("titles the thread after the first user message only", func() {
			_, err := svc.CreateMessage(ctx, thread.ID, "How do Promises work?", "")
			Expect(err).NotTo(HaveOccurred())
			got, err := svc.GetThread(ctx, thread.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).NotTo(BeNil())
			Expect(*got.Title).To(Equal("JavaScript Promises"))

			gen.titleFn = func(context.Context, string) (string, error) { return "Other", nil }
			_, err = svc.CreateMessage(ctx, thread.ID, "And async/await?", "")
			Expect(err).NotTo(HaveOccurred())
			got, _ = svc.GetThread(ctx, thread.ID)
			Expect(*got.Title).To(Equal("JavaScript Promises"))
		})

		It("rejects unknown roles and blank content", func() {
			_, err := svc.CreateMessage(ctx, thread.ID, "hi", store.MessageRole("tool"))
			Expect(err).To(MatchError(chat.ErrInvalidRole))

			_, err = svc.CreateMessage(ctx, thread.ID, "  \n ", "")
			Expect(err).To(MatchError(chat.ErrEmptyContent))
		})

		It("reports a missing thread", func() {
			_, err := svc.CreateMessage(ctx, uuid.New(), "hi", "")
			Expect(err).To(MatchError(store.ErrNotFound))
		})
	})

	Describe("threads", func() {
		It("renames with a trimmed title", func() {
			got, err := svc.RenameThread(ctx, thread.ID, "  Promises  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.Title).To(Equal("Promises"))

			_, err = svc.RenameThread(ctx, thread.ID, " ")
			Expect(err).To(MatchError(chat.ErrEmptyTitle))
		})

		It("deletes a thread and its messages", func() {
			_, err := svc.CreateMessage(ctx, thread.ID, "hello", "")
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.DeleteThread(ctx, thread.ID)).To(Succeed())
			_, err = svc.ListMessages(ctx, thread.ID)
			Expect(err).To(MatchError(store.ErrNotFound))

			threads, err := svc.ListThreads(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(threads).To(BeEmpty())
		})
	})
})
