package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark"

	"chat_artifact_publisher/config"
)

const (
	accessTokenPath  = "/cgi-bin/token"
	addMaterialPath  = "/cgi-bin/material/add_material"
	uploadImgPath    = "/cgi-bin/media/uploadimg"
	addDraftPath     = "/cgi-bin/draft/add"
	wechatDigestSize = 120
)

// 40001/42001: access_token 无效或过期，下次调用时重新获取。
var tokenErrCodes = map[int]bool{40001: true, 40014: true, 42001: true}

type wechatResp struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type accessTokenResp struct {
	wechatResp
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type uploadMaterialResp struct {
	wechatResp
	MediaID string `json:"media_id"`
	URL     string `json:"url"`
}

type wechatArticle struct {
	Title              string `json:"title"`
	Author             string `json:"author"`
	Digest             string `json:"digest"`
	Content            string `json:"content"`
	ThumbMediaID       string `json:"thumb_media_id"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
}

type addDraftPayload struct {
	Articles []wechatArticle `json:"articles"`
}

// WeChat creates drafts in a WeChat official account. Posts land in the
// draft box; the returned URL is "wechat://draft/<media_id>".
type WeChat struct {
	cfg    config.WeChatConfig
	client *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	thumbID     string
}

func NewWeChat(cfg config.WeChatConfig, client *http.Client) (*WeChat, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("wechat config must include app_id and app_secret")
	}
	if cfg.ThumbMediaID == "" && cfg.CoverPath == "" {
		return nil, errors.New("wechat config must include thumb_media_id or cover_path")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.weixin.qq.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &WeChat{cfg: cfg, client: client, thumbID: cfg.ThumbMediaID}, nil
}

func (w *WeChat) Name() string { return "wechat" }

// Post converts markdown to WeChat-friendly HTML, uploads local images and
// creates a draft.
func (w *WeChat) Post(ctx context.Context, post Post) (string, error) {
	token, err := w.token(ctx)
	if err != nil {
		return "", err
	}

	body := stripTitleHeading(post.Content, post.Title)
	body, err = w.replaceMarkdownImages(ctx, token, body, post.BaseDir)
	if err != nil {
		return "", err
	}
	contentHTML, err := mdToHTML(body)
	if err != nil {
		return "", err
	}
	contentHTML = normalizeForWeChat(contentHTML) + hashtagFooter(post)

	thumbID, err := w.thumbMediaID(ctx, token)
	if err != nil {
		return "", err
	}

	mediaID, err := w.addDraft(ctx, token, wechatArticle{
		Title:        post.Title,
		Author:       w.cfg.Author,
		Digest:       defaultDigest(body, wechatDigestSize),
		Content:      contentHTML,
		ThumbMediaID: thumbID,
	})
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "wechat draft created", "media_id", mediaID)
	return "wechat://draft/" + mediaID, nil
}

// token returns the cached access token, fetching a new one when it is
// missing or about to expire.
func (w *WeChat) token(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.accessToken != "" && time.Now().Before(w.expiresAt) {
		return w.accessToken, nil
	}

	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", w.cfg.AppID)
	q.Set("secret", w.cfg.AppSecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.BaseURL+accessTokenPath+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	var data accessTokenResp
	if err := w.do(req, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("failed to get access_token: %d %s", data.ErrCode, data.ErrMsg)
	}
	ttl := time.Duration(data.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	w.accessToken = data.AccessToken
	w.expiresAt = time.Now().Add(ttl - 5*time.Minute)
	return w.accessToken, nil
}

func (w *WeChat) invalidateToken() {
	w.mu.Lock()
	w.accessToken = ""
	w.mu.Unlock()
}

// check turns an errcode reply into an error.
func (w *WeChat) check(action string, r wechatResp) error {
	if r.ErrCode == 0 {
		return nil
	}
	if tokenErrCodes[r.ErrCode] {
		w.invalidateToken()
	}
	return fmt.Errorf("failed to %s: %d %s", action, r.ErrCode, r.ErrMsg)
}

func (w *WeChat) do(req *http.Request, out any) error {
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wechat: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (w *WeChat) thumbMediaID(ctx context.Context, token string) (string, error) {
	w.mu.Lock()
	cached := w.thumbID
	w.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	q := url.Values{}
	q.Set("access_token", token)
	q.Set("type", "image")
	data, err := w.uploadFile(ctx, w.cfg.BaseURL+addMaterialPath+"?"+q.Encode(), w.cfg.CoverPath)
	if err != nil {
		return "", err
	}
	if err := w.check("upload cover", data.wechatResp); err != nil {
		return "", err
	}
	if data.MediaID == "" {
		return "", errors.New("failed to upload cover: empty media_id")
	}
	w.mu.Lock()
	w.thumbID = data.MediaID
	w.mu.Unlock()
	slog.InfoContext(ctx, "wechat cover uploaded", "path", w.cfg.CoverPath, "media_id", data.MediaID)
	return data.MediaID, nil
}

func (w *WeChat) uploadContentImage(ctx context.Context, token, imagePath string) (string, error) {
	q := url.Values{}
	q.Set("access_token", token)
	data, err := w.uploadFile(ctx, w.cfg.BaseURL+uploadImgPath+"?"+q.Encode(), imagePath)
	if err != nil {
		return "", err
	}
	if err := w.check("upload content image", data.wechatResp); err != nil {
		return "", err
	}
	if data.URL == "" {
		return "", errors.New("failed to upload content image: empty url")
	}
	return data.URL, nil
}

func (w *WeChat) uploadFile(ctx context.Context, endpoint, path string) (uploadMaterialResp, error) {
	var data uploadMaterialResp
	file, err := os.Open(path)
	if err != nil {
		return data, err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return data, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return data, err
	}
	if err := writer.Close(); err != nil {
		return data, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return data, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	err = w.do(req, &data)
	return data, err
}

func (w *WeChat) addDraft(ctx context.Context, token string, art wechatArticle) (string, error) {
	body, err := json.Marshal(addDraftPayload{Articles: []wechatArticle{art}})
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("access_token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+addDraftPath+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var data uploadMaterialResp
	if err := w.do(req, &data); err != nil {
		return "", err
	}
	if err := w.check("add draft", data.wechatResp); err != nil {
		return "", err
	}
	if data.MediaID == "" {
		return "", errors.New("failed to add draft: empty media_id")
	}
	return data.MediaID, nil
}

var imgRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)

// replaceMarkdownImages 把本地图片上传到微信并替换为返回的 URL，远程图片与 data URI 保持不变。
func (w *WeChat) replaceMarkdownImages(ctx context.Context, token, md, baseDir string) (string, error) {
	matches := imgRe.FindAllStringSubmatchIndex(md, -1)
	if len(matches) == 0 {
		return md, nil
	}

	var b strings.Builder
	last := 0
	for _, match := range matches {
		start, end := match[2], match[3]
		b.WriteString(md[last:start])
		last = end

		ref := strings.TrimSpace(md[start:end])
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "data:") {
			b.WriteString(ref)
			continue
		}
		localPath := ref
		if !filepath.IsAbs(localPath) && baseDir != "" {
			if _, err := os.Stat(localPath); err != nil {
				localPath = filepath.Join(baseDir, ref)
			}
		}
		uploaded, err := w.uploadContentImage(ctx, token, localPath)
		if err != nil {
			return "", err
		}
		b.WriteString(uploaded)
	}
	b.WriteString(md[last:])
	return b.String(), nil
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var (
	olRe = regexp.MustCompile(`(?s)<ol[^>]*>(.*?)</ol>`)
	ulRe = regexp.MustCompile(`(?s)<ul[^>]*>(.*?)</ul>`)
	liRe = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	hRe  = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
)

var headingSizes = map[string]string{
	"1": "24px",
	"2": "22px",
	"3": "20px",
	"4": "18px",
	"5": "16px",
	"6": "15px",
}

// WeChat 会弱化部分列表和标题标签，导致有序列表合并、标题样式丢失。
// 这里在上传前把列表展开、把标题转成带字号的段落，让排版更稳定。
func normalizeForWeChat(doc string) string {
	doc = convertHeadingsForWeChat(doc)
	return flattenListsForWeChat(doc)
}

func flattenListsForWeChat(doc string) string {
	doc = olRe.ReplaceAllStringFunc(doc, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for i, item := range items {
			fmt.Fprintf(&b, "<p>%d. %s</p>", i+1, strings.TrimSpace(item[1]))
		}
		return b.String()
	})
	return ulRe.ReplaceAllStringFunc(doc, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for _, item := range items {
			b.WriteString("<p>• ")
			b.WriteString(strings.TrimSpace(item[1]))
			b.WriteString("</p>")
		}
		return b.String()
	})
}

func convertHeadingsForWeChat(doc string) string {
	return hRe.ReplaceAllStringFunc(doc, func(block string) string {
		parts := hRe.FindStringSubmatch(block)
		size := headingSizes[parts[1]]
		return fmt.Sprintf(`<p style="font-size:%s;font-weight:700;margin:1em 0 0.6em;">%s</p>`, size, strings.TrimSpace(parts[2]))
	})
}

// 公众号草稿没有标签字段，标签以话题形式附在文末。
func hashtagFooter(post Post) string {
	if len(post.Tags) == 0 {
		return ""
	}
	names := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		names = append(names, "#"+html.EscapeString(strings.ReplaceAll(t.Name, " ", "")))
	}
	return `<p style="color:#888;">` + strings.Join(names, " ") + "</p>"
}

func defaultDigest(md string, limit int) string {
	joined := strings.Join(strings.Fields(md), " ")
	if utf8.RuneCountInString(joined) <= limit {
		return joined
	}
	return string([]rune(joined)[:limit])
}
