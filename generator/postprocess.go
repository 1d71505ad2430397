package generator

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	metadataBlockRe = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")
	headingStartRe  = regexp.MustCompile(`(?m)^#\s+`)
	titleRe         = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	codeFenceRe     = regexp.MustCompile("(?s)```.*?```")
	markdownMarkRe  = regexp.MustCompile("[#*`\\[\\]()_~>|-]")
	latinWordRe     = regexp.MustCompile(`[a-zA-Z]+`)
	cjkCharRe       = regexp.MustCompile(`[\x{3000}-\x{9fff}]`)
	slugInvalidRe   = regexp.MustCompile(`[^a-z0-9\x{3000}-\x{9fff}]+`)
)

const fallbackSlug = "article"

// editorMetadata is the JSON block the editor appends to the article.
type editorMetadata struct {
	Title     string
	Slug      string
	Tags      []string
	Sources   []Source
	WordCount int
}

// ParseEditorOutput recovers the article and its metadata from the final
// session text. It never fails: missing or malformed metadata falls back to
// values derived from the text and from cfg.
func ParseEditorOutput(text string, cfg ArticleConfig) ArticleResult {
	var meta editorMetadata
	content := text
	if loc := metadataBlockRe.FindStringSubmatchIndex(text); loc != nil {
		meta = decodeMetadata(text[loc[2]:loc[3]])
		content = strings.TrimSpace(text[:loc[0]])
	}

	// Drop orchestrator chatter in front of the article heading.
	if idx := headingStartRe.FindStringIndex(content); idx != nil && idx[0] > 0 {
		content = strings.TrimSpace(content[idx[0]:])
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		if m := titleRe.FindStringSubmatch(content); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if title == "" {
		title = cfg.Topic
	}

	// An explicit slug is normalized too; Custom_Slug becomes custom-slug.
	slug := Slugify(meta.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		slug = Slugify(cfg.Topic)
	}
	if slug == "" {
		slug = fallbackSlug
	}

	wordCount := meta.WordCount
	if wordCount <= 0 {
		wordCount = CountWords(content)
	}

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	sources := meta.Sources
	if sources == nil {
		sources = []Source{}
	}

	return ArticleResult{
		Title:     title,
		Slug:      slug,
		Content:   content,
		WordCount: wordCount,
		Tags:      tags,
		Sources:   sources,
	}
}

// decodeMetadata decodes each field on its own so one malformed field does
// not discard the others. Invalid JSON yields empty metadata.
func decodeMetadata(raw string) editorMetadata {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return editorMetadata{}
	}

	var meta editorMetadata
	decode := func(key string, v any) {
		if b, ok := fields[key]; ok {
			_ = json.Unmarshal(b, v)
		}
	}
	decode("title", &meta.Title)
	decode("slug", &meta.Slug)
	decode("tags", &meta.Tags)
	decode("sources", &meta.Sources)

	var wc float64
	decode("wordCount", &wc)
	if wc > 0 {
		meta.WordCount = int(wc)
	}
	return meta
}

// Slugify lower-cases s and collapses every run of characters outside ASCII
// letters, digits and the CJK range into one hyphen. Valid slugs are
// returned unchanged.
func Slugify(s string) string {
	slug := strings.ToLower(s)
	slug = slugInvalidRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// CountWords counts Latin words plus individual CJK characters, ignoring
// fenced code and Markdown markers.
func CountWords(text string) int {
	clean := codeFenceRe.ReplaceAllString(text, "")
	clean = markdownMarkRe.ReplaceAllString(clean, " ")
	return len(latinWordRe.FindAllString(clean, -1)) + len(cjkCharRe.FindAllString(clean, -1))
}
