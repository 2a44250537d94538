package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"chat_artifact_publisher/config"
)

// Qiita accepts at most five tags per item.
const qiitaMaxTags = 5

// Qiita posts items through the Qiita API v2.
type Qiita struct {
	cfg    config.QiitaConfig
	client *http.Client
}

func NewQiita(cfg config.QiitaConfig, client *http.Client) (*Qiita, error) {
	if cfg.Token == "" {
		return nil, errors.New("qiita token missing; provide publisher.qiita.token or QIITA_TOKEN")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://qiita.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Qiita{cfg: cfg, client: client}, nil
}

func (q *Qiita) Name() string { return "qiita" }

type qiitaTag struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

type qiitaItemRequest struct {
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	Tags    []qiitaTag `json:"tags"`
	Private bool       `json:"private"`
}

type qiitaItemResp struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type qiitaErrorResp struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (q *Qiita) Post(ctx context.Context, post Post) (string, error) {
	tags := make([]qiitaTag, 0, qiitaMaxTags)
	for _, t := range post.Tags {
		if len(tags) == qiitaMaxTags {
			slog.WarnContext(ctx, "qiita allows five tags, dropping the rest", "tags", len(post.Tags))
			break
		}
		tags = append(tags, qiitaTag{Name: t.Name, Versions: []string{}})
	}
	body, err := json.Marshal(qiitaItemRequest{
		Title:   post.Title,
		Body:    stripTitleHeading(post.Content, post.Title),
		Tags:    tags,
		Private: q.cfg.Private,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.cfg.BaseURL+"/api/v2/items", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+q.cfg.Token)

	resp, err := q.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var data qiitaErrorResp
		if json.Unmarshal(raw, &data) == nil && data.Message != "" {
			return "", fmt.Errorf("qiita: %d %s: %s", resp.StatusCode, data.Type, data.Message)
		}
		return "", fmt.Errorf("qiita: unexpected status %d", resp.StatusCode)
	}

	var data qiitaItemResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("qiita: decode response: %w", err)
	}
	if data.URL == "" {
		return "", errors.New("qiita: response has no url")
	}
	slog.InfoContext(ctx, "qiita item created", "item_id", data.ID, "url", data.URL)
	return data.URL, nil
}
