package generator

import (
	"context"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// The reply shape follows the system prompt it was given.
type MockLLM struct{}

func (m MockLLM) Generate(_ context.Context, messages []Message, _ Options) (string, error) {
	var system, last string
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = msg.Content
			continue
		}
		last = msg.Content
	}

	switch system {
	case tagsSystemPrompt:
		return `["general", "draft"]`, nil
	case titleSystemPrompt:
		return "自动生成示例标题", nil
	case slideSystemPrompt:
		var sb strings.Builder
		sb.WriteString("---\nmarp: true\n---\n\n# 自动生成示例标题\n\n---\n\n## 要点\n\n")
		sb.WriteString(excerpt(last, 200))
		sb.WriteString("\n")
		return sb.String(), nil
	case revisionSystemPrompt:
		return "# 自动生成示例标题\n\n（mock 修订）" + excerpt(last, 500) + "\n", nil
	case articleSystemPrompt, summarySystemPrompt:
		// 很简单地把用户输入拼接成 Markdown。
		var sb strings.Builder
		sb.WriteString("# 自动生成示例标题\n\n")
		sb.WriteString("这里是一段自动生成的摘要，概述全文要点。\n\n")
		sb.WriteString("## 正文\n\n")
		sb.WriteString("```\n")
		sb.WriteString(excerpt(last, 500))
		sb.WriteString("\n```\n")
		return sb.String(), nil
	default:
		return "（mock）" + excerpt(last, 200), nil
	}
}
