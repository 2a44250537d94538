package generator

import (
	"context"
	"fmt"
)

// Role of a chat message sent to the model.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the ordered conversation handed to the model.
type Message struct {
	Role    string
	Content string
}

// Options bound a single generation. MaxOutputTokens is the backpressure
// mechanism; an empty Model means the client's configured model.
type Options struct {
	MaxOutputTokens int
	Temperature     float64
	Model           string
}

// LLMClient 抽象大模型客户端，便于替换/Mock。
// Implementations return *GenerationError for every failure and never retry.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLMFromConfig picks the client implementation for settings.Provider.
func NewLLMFromConfig(settings LLMSettings) (LLMClient, error) {
	switch settings.Provider {
	case "openai":
		return NewOpenAILLMFromConfig(&settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(&settings)
	case "anthropic":
		return NewAnthropicLLMFromConfig(&settings)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", settings.Provider)
	}
}
