package generator

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	headingRe     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	frontMatterRe = regexp.MustCompile(`(?s)\A\s*---\n.*?\n---\n`)
	newlinesRe    = regexp.MustCompile(`[\r\n]+`)
	tagListRe     = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseTitle turns raw model text into a single-line title. It never fails;
// the result may be empty when the model returned only whitespace.
func ParseTitle(raw string) string {
	title := newlinesRe.ReplaceAllString(raw, " ")
	title = strings.TrimSpace(title)
	title = strings.TrimLeft(title, "# ")
	title = strings.Trim(title, "\"'「」`")
	return strings.TrimSpace(title)
}

// ParseDocument keeps raw as the document body verbatim and picks the first
// "# " heading (outside front matter) as the title.
func ParseDocument(raw string) Draft {
	return Draft{
		Title:    extractTitle(raw),
		Markdown: raw,
	}
}

func extractTitle(md string) string {
	body := frontMatterRe.ReplaceAllString(md, "")
	m := headingRe.FindStringSubmatch(body)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ParseTags extracts the first bracketed JSON array from raw and keeps its
// non-blank string elements. A missing list or invalid JSON is a *ParseError;
// an array without usable strings yields an empty slice and no error.
func ParseTags(raw string) ([]Tag, error) {
	list := tagListRe.FindString(raw)
	if list == "" {
		return nil, &ParseError{Kind: "tags", Err: ErrNoTagList}
	}
	var items []any
	if err := json.Unmarshal([]byte(list), &items); err != nil {
		return nil, &ParseError{Kind: "tags", Err: err}
	}
	tags := make([]Tag, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags = append(tags, Tag{Name: name})
	}
	return tags, nil
}

// excerpt returns a single-line prefix of s of at most limit runes.
func excerpt(s string, limit int) string {
	return truncateRunes(strings.Join(strings.Fields(s), " "), limit)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
