package generator

import (
	"fmt"
	"strings"
)

// Purpose selects the system prompt template and generation options.
type Purpose int

const (
	PurposeChat Purpose = iota
	PurposeChatOutputFocused
	PurposeArticle
	PurposeSlide
	PurposeTitle
	PurposeTags
	PurposeSummary
	PurposeRevision
)

func (p Purpose) String() string {
	switch p {
	case PurposeChat:
		return "chat"
	case PurposeChatOutputFocused:
		return "chat-output-focused"
	case PurposeArticle:
		return "article"
	case PurposeSlide:
		return "slide"
	case PurposeTitle:
		return "title"
	case PurposeTags:
		return "tags"
	case PurposeSummary:
		return "summary"
	case PurposeRevision:
		return "revision"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Messages flattens the prompt into the ordered list sent to the model:
// system first, then history, then the user prompt when there is one.
func (p Prompt) Messages() []Message {
	msgs := make([]Message, 0, len(p.History)+2)
	if p.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: p.System})
	}
	msgs = append(msgs, p.History...)
	if p.User != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: p.User})
	}
	return msgs
}

// PromptContext is the input to Compose. Conversation purposes read History;
// title uses Text; tags use Title and Text; revision uses Text and Comment.
type PromptContext struct {
	History []Message
	Text    string
	Title   string
	Comment string
}

// Compose builds the prompt for purpose. It does no I/O.
func Compose(purpose Purpose, pc PromptContext) Prompt {
	switch purpose {
	case PurposeChat:
		return Prompt{System: chatSystemPrompt, History: pc.History}
	case PurposeChatOutputFocused:
		return Prompt{System: chatOutputFocusedSystemPrompt, History: pc.History}
	case PurposeArticle:
		return Prompt{
			System: articleSystemPrompt,
			User:   "Conversation:\n\n" + joinConversation(pc.History) + "\n\nWrite the article now.",
		}
	case PurposeSlide:
		return Prompt{
			System: slideSystemPrompt,
			User:   "Conversation:\n\n" + joinConversation(pc.History) + "\n\nWrite the slide deck now.",
		}
	case PurposeSummary:
		return Prompt{
			System: summarySystemPrompt,
			User:   "Conversation:\n\n" + joinConversation(pc.History),
		}
	case PurposeRevision:
		return Prompt{
			System: revisionSystemPrompt,
			User:   "Current draft:\n\n" + pc.Text + "\n\nEditor comment: " + pc.Comment + "\n\nOutput the full revised Markdown.",
		}
	case PurposeTitle:
		return Prompt{System: titleSystemPrompt, User: pc.Text}
	case PurposeTags:
		var sb strings.Builder
		if pc.Title != "" {
			sb.WriteString("Title: ")
			sb.WriteString(pc.Title)
			sb.WriteString("\n\n")
		}
		sb.WriteString("Content:\n")
		sb.WriteString(truncateRunes(pc.Text, maxTagContentRunes))
		return Prompt{System: tagsSystemPrompt, User: sb.String()}
	default:
		panic(fmt.Sprintf("generator: unknown purpose %d", int(purpose)))
	}
}

// ChatPrompt composes the reply prompt for history. When the latest user
// message asks for an article or slides, the output-focused variant is used
// so the reply already steers toward the document.
func ChatPrompt(history []Message) (Prompt, Purpose) {
	purpose := PurposeChat
	if ClassifyIntent(lastUserContent(history)) != IntentNone {
		purpose = PurposeChatOutputFocused
	}
	return Compose(purpose, PromptContext{History: history}), purpose
}

// OptionsFor returns the token budget and temperature for purpose.
func OptionsFor(purpose Purpose) Options {
	switch purpose {
	case PurposeArticle, PurposeSlide:
		return Options{MaxOutputTokens: 4096, Temperature: 0.7}
	case PurposeRevision:
		return Options{MaxOutputTokens: 4096, Temperature: 0.4}
	case PurposeTitle:
		return Options{MaxOutputTokens: 64, Temperature: 0.5}
	case PurposeTags:
		return Options{MaxOutputTokens: 256, Temperature: 0.3}
	case PurposeSummary:
		return Options{MaxOutputTokens: 1024, Temperature: 0.5}
	default:
		return Options{MaxOutputTokens: 1024, Temperature: 0.7}
	}
}

const maxTagContentRunes = 6000

func joinConversation(history []Message) string {
	parts := make([]string, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := m.Role
		if role == "" {
			role = RoleUser
		}
		parts = append(parts, role+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}

func lastUserContent(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}
