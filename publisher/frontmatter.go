package publisher

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var documentRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n(.*)$`)

// ParseFrontmatter splits a saved article into its header fields and body.
// Text without a readable header comes back whole with an empty map.
func ParseFrontmatter(text string) (map[string]any, string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	m := documentRe.FindStringSubmatch(text)
	if m == nil {
		return map[string]any{}, text
	}

	fields := map[string]any{}
	if err := yaml.Unmarshal([]byte(m[1]), &fields); err != nil {
		return map[string]any{}, text
	}
	return fields, strings.TrimPrefix(m[2], "\n")
}
