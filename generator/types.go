package generator

// Style is the article genre. The set is closed.
type Style string

const (
	StyleTechnical Style = "technical"
	StyleMarketing Style = "marketing"
	StyleTutorial  Style = "tutorial"
	StyleOpinion   Style = "opinion"
	StyleNews      Style = "news"
)

// Styles lists every accepted style in display order.
var Styles = []Style{StyleTechnical, StyleMarketing, StyleTutorial, StyleOpinion, StyleNews}

const (
	DefaultStyle    = StyleTechnical
	DefaultAudience = "general readers"
	DefaultTone     = "professional"
	DefaultLength   = 1500
	DefaultLanguage = "en"

	MinLength = 300
	MaxLength = 10000
)

// ArticleConfig is a validated article request. Build it with ParseConfig.
type ArticleConfig struct {
	Topic    string   `json:"topic"`
	Style    Style    `json:"style"`
	Audience string   `json:"audience"`
	Tone     string   `json:"tone"`
	Length   int      `json:"length"`
	Language string   `json:"language"`
	Keywords []string `json:"keywords"`
}

// Source is one reference cited by the article.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ArticleResult is the structured article recovered from the final agent output.
type ArticleResult struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Content   string   `json:"content"`
	WordCount int      `json:"wordCount"`
	Tags      []string `json:"tags"`
	Sources   []Source `json:"sources"`
}
