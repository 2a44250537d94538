package generator

import "strings"

// Intent is what the latest user message asks for.
type Intent int

const (
	IntentNone Intent = iota
	IntentArticle
	IntentSlide
)

func (i Intent) String() string {
	switch i {
	case IntentArticle:
		return "article"
	case IntentSlide:
		return "slide"
	default:
		return "none"
	}
}

// Keywords are matched lowercase as substrings.
var articleKeywords = []string{
	"turn into an article",
	"turn this into an article",
	"turn it into an article",
	"write an article",
	"make an article",
	"make this an article",
	"write a qiita post",
	"qiita article",
	"post to qiita",
	"blog it",
	"blog post",
	"記事にして",
	"記事化",
	"記事を書いて",
	"記事を作",
	"qiitaに",
}

var slideKeywords = []string{
	"turn into a slide deck",
	"slide deck",
	"slides",
	"presentation",
	"make a deck",
	"スライド",
	"プレゼン",
	"資料にして",
}

// ClassifyIntent checks the article keywords first, so a message that matches
// both lists is an article request.
func ClassifyIntent(text string) Intent {
	if text == "" {
		return IntentNone
	}
	lower := strings.ToLower(text)
	if containsAny(lower, articleKeywords) {
		return IntentArticle
	}
	if containsAny(lower, slideKeywords) {
		return IntentSlide
	}
	return IntentNone
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
