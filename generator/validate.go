package generator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldError reports one invalid request field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(path, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ParseConfig validates raw request fields and fills in defaults.
// Keys follow the JSON names of ArticleConfig. The returned error, if any,
// is always a *ValidationError.
func ParseConfig(raw map[string]any) (ArticleConfig, error) {
	verr := &ValidationError{}
	cfg := ArticleConfig{
		Style:    DefaultStyle,
		Audience: DefaultAudience,
		Tone:     DefaultTone,
		Length:   DefaultLength,
		Language: DefaultLanguage,
		Keywords: []string{},
	}

	if topic, ok := stringField(raw, "topic", verr); ok {
		cfg.Topic = strings.TrimSpace(topic)
		if cfg.Topic == "" {
			verr.add("topic", "Topic is required")
		}
	} else if raw["topic"] == nil {
		verr.add("topic", "Topic is required")
	}

	if s, ok := stringField(raw, "style", verr); ok && s != "" {
		if style, known := lookupStyle(s); known {
			cfg.Style = style
		} else {
			verr.add("style", "invalid style %q, expected one of %s", s, styleList())
		}
	}
	if s, ok := stringField(raw, "audience", verr); ok && strings.TrimSpace(s) != "" {
		cfg.Audience = strings.TrimSpace(s)
	}
	if s, ok := stringField(raw, "tone", verr); ok && strings.TrimSpace(s) != "" {
		cfg.Tone = strings.TrimSpace(s)
	}
	if s, ok := stringField(raw, "language", verr); ok && strings.TrimSpace(s) != "" {
		cfg.Language = strings.TrimSpace(s)
	}

	if v, present := raw["length"]; present && v != nil {
		if n, err := toInt(v); err != nil {
			verr.add("length", "%s", err.Error())
		} else if n < MinLength || n > MaxLength {
			verr.add("length", "must be between %d and %d", MinLength, MaxLength)
		} else {
			cfg.Length = n
		}
	}

	if v, present := raw["keywords"]; present && v != nil {
		kws, err := toKeywords(v)
		if err != nil {
			verr.add("keywords", "%s", err.Error())
		} else {
			cfg.Keywords = kws
		}
	}

	if len(verr.Fields) > 0 {
		return ArticleConfig{}, verr
	}
	return cfg, nil
}

func stringField(raw map[string]any, key string, verr *ValidationError) (string, bool) {
	v, present := raw[key]
	if !present || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		verr.add(key, "expected string, received %T", v)
		return "", false
	}
	return s, true
}

func lookupStyle(s string) (Style, bool) {
	for _, st := range Styles {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func styleList() string {
	names := make([]string, len(Styles))
	for i, s := range Styles {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func toInt(v any) (int, error) {
	var f float64
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, received %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, received %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected number, received %v", f)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, received %v", f)
	}
	return int(f), nil
}

// toKeywords trims entries, drops empty ones and removes duplicates keeping first occurrence.
func toKeywords(v any) ([]string, error) {
	var items []string
	switch list := v.(type) {
	case []string:
		items = list
	case []any:
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, received %T", i, item)
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("expected array of strings, received %T", v)
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		kw := strings.TrimSpace(item)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out, nil
}
