package generator_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"chat_artifact_publisher/generator"
)

type fakeLLM struct {
	generateFn func(ctx context.Context, messages []generator.Message, opts generator.Options) (string, error)
	calls      [][]generator.Message
	options    []generator.Options
}

func (f *fakeLLM) Generate(ctx context.Context, messages []generator.Message, opts generator.Options) (string, error) {
	f.calls = append(f.calls, messages)
	f.options = append(f.options, opts)
	return f.generateFn(ctx, messages, opts)
}

func respond(text string) func(context.Context, []generator.Message, generator.Options) (string, error) {
	return func(context.Context, []generator.Message, generator.Options) (string, error) {
		return text, nil
	}
}

var _ = Describe("Agent", func() {
	var (
		ctx   context.Context
		llm   *fakeLLM
		agent *generator.Agent
	)

	BeforeEach(func() {
		ctx = context.Background()
		llm = &fakeLLM{}
		var err error
		agent, err = generator.NewAgent(llm, "test-model")
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires an llm client", func() {
		_, err := generator.NewAgent(nil, "")
		Expect(err).To(HaveOccurred())
	})

	Describe("GenerateTags", func() {
		It("returns the tags found in the model output", func() {
			llm.generateFn = respond(`["JavaScript","Promises","非同期"]`)

			tags := agent.GenerateTags(ctx, "How to use Promises", "...")

			Expect(tags).To(Equal([]generator.Tag{{Name: "JavaScript"}, {Name: "Promises"}, {Name: "非同期"}}))
			Expect(llm.options[0].Model).To(Equal("test-model"))
			Expect(llm.options[0].MaxOutputTokens).To(Equal(generator.OptionsFor(generator.PurposeTags).MaxOutputTokens))
		})

		It("falls back to a single tag on malformed output", func() {
			llm.generateFn = respond("not json")
			Expect(agent.GenerateTags(ctx, "t", "c")).To(Equal([]generator.Tag{generator.FallbackTag}))
		})

		It("falls back to a single tag when the list has no strings", func() {
			llm.generateFn = respond("[1, 2]")
			Expect(agent.GenerateTags(ctx, "t", "c")).To(Equal([]generator.Tag{generator.FallbackTag}))
		})

		It("falls back to a single tag when generation fails", func() {
			llm.generateFn = func(context.Context, []generator.Message, generator.Options) (string, error) {
				return "", &generator.GenerationError{Provider: "fake", Err: errors.New("quota")}
			}
			Expect(agent.GenerateTags(ctx, "t", "c")).To(HaveLen(1))
		})
	})

	Describe("GenerateTitle", func() {
		It("returns a single-line title", func() {
			llm.generateFn = respond("Understanding\nPromises\n")
			title, err := agent.GenerateTitle(ctx, "explain promises")
			Expect(err).NotTo(HaveOccurred())
			Expect(title).To(Equal("Understanding Promises"))
		})

		It("stays non-empty and newline-free across calls", func() {
			answers := []string{"Promise basics", "  \n  "}
			llm.generateFn = func(context.Context, []generator.Message, generator.Options) (string, error) {
				next := answers[0]
				answers = answers[1:]
				return next, nil
			}
			for range 2 {
				title, err := agent.GenerateTitle(ctx, "explain\npromises")
				Expect(err).NotTo(HaveOccurred())
				Expect(title).NotTo(BeEmpty())
				Expect(title).NotTo(ContainSubstring("\n"))
			}
		})

		It("surfaces generation failures", func() {
			llm.generateFn = func(context.Context, []generator.Message, generator.Options) (string, error) {
				return "", &generator.GenerationError{Provider: "fake", Err: errors.New("down")}
			}
			_, err := agent.GenerateTitle(ctx, "x")
			Expect(generator.IsGenerationError(err)).To(BeTrue())
		})
	})

	Describe("GenerateArticle", func() {
		history := []generator.Message{
			{Role: generator.RoleUser, Content: "explain promises"},
			{Role: generator.RoleAssistant, Content: "A promise is..."},
			{Role: generator.RoleUser, Content: "write a Qiita post"},
		}

		It("uses the document heading as title and keeps the body verbatim", func() {
			body := "# Promises in Practice\n\n## Overview\n..."
			llm.generateFn = respond(body)

			draft, err := agent.GenerateArticle(ctx, history)

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Title).To(Equal("Promises in Practice"))
			Expect(draft.Markdown).To(Equal(body))
			Expect(llm.calls).To(HaveLen(1))
			Expect(llm.calls[0][0].Role).To(Equal(generator.RoleSystem))
			Expect(llm.calls[0][1].Content).To(ContainSubstring("user: explain promises"))
		})

		It("asks for a title when the document has no heading", func() {
			llm.generateFn = func(_ context.Context, msgs []generator.Message, opts generator.Options) (string, error) {
				if opts.MaxOutputTokens == generator.OptionsFor(generator.PurposeTitle).MaxOutputTokens {
					return "Generated Title", nil
				}
				return "plain body without heading", nil
			}

			draft, err := agent.GenerateArticle(ctx, history)

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Title).To(Equal("Generated Title"))
			Expect(llm.calls).To(HaveLen(2))
		})

		It("keeps the document and uses an excerpt when the title call fails", func() {
			llm.generateFn = func(_ context.Context, _ []generator.Message, opts generator.Options) (string, error) {
				if opts.MaxOutputTokens == generator.OptionsFor(generator.PurposeTitle).MaxOutputTokens {
					return "", &generator.GenerationError{Provider: "fake", Err: errors.New("rate limited")}
				}
				return "plain body\nwithout heading", nil
			}

			draft, err := agent.GenerateArticle(ctx, history)

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Markdown).To(Equal("plain body\nwithout heading"))
			Expect(draft.Title).To(Equal("plain body without heading"))
			Expect(llm.calls).To(HaveLen(2))
		})

		It("surfaces generation failures", func() {
			llm.generateFn = func(context.Context, []generator.Message, generator.Options) (string, error) {
				return "", &generator.GenerationError{Provider: "fake", Err: errors.New("timeout")}
			}
			_, err := agent.GenerateSlide(ctx, history)
			Expect(generator.IsGenerationError(err)).To(BeTrue())
		})
	})

	Describe("ReviseDocument", func() {
		prev := generator.Draft{Title: "Promises", Markdown: "# Promises\n\nlong intro"}

		It("sends the draft and the comment and parses the revision", func() {
			llm.generateFn = respond("# Promises, Briefly\n\nshort intro")

			draft, err := agent.ReviseDocument(ctx, prev, "shorten the intro")

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Title).To(Equal("Promises, Briefly"))
			Expect(draft.Markdown).To(Equal("# Promises, Briefly\n\nshort intro"))
			Expect(llm.calls[0]).To(HaveLen(2))
			Expect(llm.calls[0][1].Content).To(ContainSubstring("long intro"))
			Expect(llm.calls[0][1].Content).To(ContainSubstring("shorten the intro"))
		})

		It("keeps the previous title when the heading is dropped", func() {
			llm.generateFn = respond("short intro only")
			draft, err := agent.ReviseDocument(ctx, prev, "shorten")
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Title).To(Equal("Promises"))
			Expect(llm.calls).To(HaveLen(1))
		})

		It("surfaces generation failures", func() {
			llm.generateFn = func(context.Context, []generator.Message, generator.Options) (string, error) {
				return "", &generator.GenerationError{Provider: "fake", Err: errors.New("down")}
			}
			_, err := agent.ReviseDocument(ctx, prev, "x")
			Expect(generator.IsGenerationError(err)).To(BeTrue())
		})
	})

	Describe("Reply", func() {
		It("switches to the output-focused prompt when the user asks for slides", func() {
			llm.generateFn = respond("Sure, the deck will cover...")

			reply, err := agent.Reply(ctx, []generator.Message{{Role: generator.RoleUser, Content: "make this a slide deck"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(HavePrefix("Sure"))
			Expect(strings.Contains(llm.calls[0][0].Content, "structured document")).To(BeTrue())
		})
	})
})

var _ = Describe("MockLLM", func() {
	It("produces parseable output for every purpose", func() {
		agent, err := generator.NewAgent(generator.MockLLM{}, "")
		Expect(err).NotTo(HaveOccurred())
		ctx := context.Background()
		history := []generator.Message{{Role: generator.RoleUser, Content: "explain promises"}}

		Expect(agent.GenerateTags(ctx, "t", "c")).To(HaveLen(2))

		article, err := agent.GenerateArticle(ctx, history)
		Expect(err).NotTo(HaveOccurred())
		Expect(article.Title).NotTo(BeEmpty())

		revised, err := agent.ReviseDocument(ctx, article, "shorter")
		Expect(err).NotTo(HaveOccurred())
		Expect(revised.Title).NotTo(BeEmpty())

		deck, err := agent.GenerateSlide(ctx, history)
		Expect(err).NotTo(HaveOccurred())
		Expect(deck.Markdown).To(ContainSubstring("marp: true"))
		Expect(deck.Title).NotTo(BeEmpty())
	})
})
