package publisher

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"article_craft_agent/generator"
)

const (
	headerDelimiter   = "---"
	maxDescription    = 160
	maxFilenameSlug   = 80
	defaultFileSlug   = "article"
	dateLayout        = "2006-01-02"
	articleFileSuffix = ".md"
)

var filenameInvalidRe = regexp.MustCompile(`[^a-z0-9\x{3000}-\x{9fff}]+`)

// Publisher renders articles with a header block and writes them to disk.
type Publisher struct {
	now       func() time.Time
	writeHTML bool
	verbose   bool
	logger    *log.Logger
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithHTML also writes an HTML rendering next to the Markdown file.
func WithHTML() Option {
	return func(p *Publisher) { p.writeHTML = true }
}

// WithClock overrides the clock used for header dates and filenames.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func New(verbose bool, logger *log.Logger, opts ...Option) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	p := &Publisher{now: time.Now, verbose: verbose, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// Save writes result under outputDir, creating it if needed, and returns the file path.
func (p *Publisher) Save(result generator.ArticleResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	date := p.now()
	path := filepath.Join(outputDir, Filename(result.Slug, date))
	doc := Frontmatter(result, date) + "\n\n" + result.Content + "\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing article: %w", err)
	}
	p.infof("Wrote %s (%d bytes)", path, len(doc))

	if p.writeHTML {
		html, err := RenderHTML(result.Content)
		if err != nil {
			return "", err
		}
		htmlPath := strings.TrimSuffix(path, articleFileSuffix) + ".html"
		if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
			return "", fmt.Errorf("writing html: %w", err)
		}
		p.infof("Wrote %s", htmlPath)
	}
	return path, nil
}

// Frontmatter renders the header block, delimiters included.
func Frontmatter(result generator.ArticleResult, date time.Time) string {
	lines := []string{
		headerDelimiter,
		fmt.Sprintf(`title: "%s"`, escapeQuoted(result.Title)),
		fmt.Sprintf(`date: "%s"`, date.UTC().Format(dateLayout)),
		fmt.Sprintf(`slug: "%s"`, escapeQuoted(result.Slug)),
	}
	if len(result.Tags) == 0 {
		lines = append(lines, "tags: []")
	} else {
		lines = append(lines, "tags:")
		for _, tag := range result.Tags {
			lines = append(lines, fmt.Sprintf(`  - "%s"`, escapeQuoted(tag)))
		}
	}
	lines = append(lines,
		fmt.Sprintf(`description: "%s"`, escapeQuoted(Description(result.Content))),
		fmt.Sprintf("wordCount: %d", result.WordCount),
	)
	if len(result.Sources) > 0 {
		lines = append(lines, "sources:")
		for _, src := range result.Sources {
			lines = append(lines,
				fmt.Sprintf(`  - title: "%s"`, escapeQuoted(src.Title)),
				fmt.Sprintf(`    url: "%s"`, escapeQuoted(src.URL)),
			)
		}
	}
	lines = append(lines, headerDelimiter)
	return strings.Join(lines, "\n")
}

// escapeQuoted makes s safe inside a double-quoted header value.
func escapeQuoted(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Description is the first body line that is neither blank nor a heading,
// cut to 160 characters.
func Description(content string) string {
	var first string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		first = trimmed
		break
	}
	runes := []rune(first)
	if len(runes) <= maxDescription {
		return first
	}
	return string(runes[:maxDescription-3]) + "..."
}

// Filename is "<date>-<slug>.md" with the slug reduced to filesystem-safe
// characters and at most 80 of them.
func Filename(slug string, date time.Time) string {
	safe := filenameInvalidRe.ReplaceAllString(strings.ToLower(slug), "-")
	safe = strings.Trim(safe, "-")
	if runes := []rune(safe); len(runes) > maxFilenameSlug {
		safe = strings.TrimRight(string(runes[:maxFilenameSlug]), "-")
	}
	if safe == "" {
		safe = defaultFileSlug
	}
	return date.UTC().Format(dateLayout) + "-" + safe + articleFileSuffix
}
