package publisher

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"chat_artifact_publisher/config"
	"chat_artifact_publisher/generator"
)

// Post is what a platform receives. BaseDir resolves relative image paths
// in Content; it is empty for stored articles.
type Post struct {
	Title   string
	Content string
	Tags    []generator.Tag
	BaseDir string
}

// Platform posts an article to an external site and returns its URL.
type Platform interface {
	Name() string
	Post(ctx context.Context, post Post) (string, error)
}

// NewPlatform builds the platform selected by cfg.Platform. A nil client gets
// a 60s timeout.
func NewPlatform(cfg config.PublisherConfig, client *http.Client) (Platform, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	switch cfg.Platform {
	case "qiita":
		return NewQiita(cfg.Qiita, client)
	case "wechat":
		return NewWeChat(cfg.WeChat, client)
	default:
		return nil, fmt.Errorf("publish platform %q not supported", cfg.Platform)
	}
}

var leadingH1Re = regexp.MustCompile(`\A\s*#\s+([^\n]*)\n+`)

// stripTitleHeading drops a leading "# title" line that repeats the title,
// since both platforms render the title separately.
func stripTitleHeading(content, title string) string {
	m := leadingH1Re.FindStringSubmatch(content)
	if m == nil || strings.TrimSpace(m[1]) != strings.TrimSpace(title) {
		return content
	}
	return content[len(m[0]):]
}
