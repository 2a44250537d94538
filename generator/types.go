package generator

// Draft 是模型产出的稿件（Markdown 形式）：文章、幻灯片或摘要。
type Draft struct {
	Title    string
	Markdown string
}

// Tag is a transient article tag; it is never persisted.
type Tag struct {
	Name string `json:"name"`
}

// FallbackTag is used whenever tag extraction yields nothing.
var FallbackTag = Tag{Name: "general"}
