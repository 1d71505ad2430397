package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldPaths(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	paths := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{"topic": "  Go generics  "})
	require.NoError(t, err)

	assert.Equal(t, "Go generics", cfg.Topic)
	assert.Equal(t, StyleTechnical, cfg.Style)
	assert.Equal(t, "general readers", cfg.Audience)
	assert.Equal(t, "professional", cfg.Tone)
	assert.Equal(t, 1500, cfg.Length)
	assert.Equal(t, "en", cfg.Language)
	assert.Empty(t, cfg.Keywords)
	assert.NotNil(t, cfg.Keywords)
}

func TestParseConfigTopicRequired(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"missing":    {},
		"empty":      {"topic": ""},
		"whitespace": {"topic": "   "},
		"null":       {"topic": nil},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(raw)
			require.Error(t, err)
			assert.Equal(t, []string{"topic"}, fieldPaths(t, err))
		})
	}
}

func TestParseConfigLengthBounds(t *testing.T) {
	cases := []struct {
		length any
		want   int
		ok     bool
	}{
		{300, 300, true},
		{10000, 10000, true},
		{float64(2000), 2000, true},
		{"750", 750, true},
		{299, 0, false},
		{10001, 0, false},
		{1500.5, 0, false},
		{"many", 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		cfg, err := ParseConfig(map[string]any{"topic": "x", "length": tc.length})
		if !tc.ok {
			require.Error(t, err, "length %v", tc.length)
			assert.Equal(t, []string{"length"}, fieldPaths(t, err))
			continue
		}
		require.NoError(t, err, "length %v", tc.length)
		assert.Equal(t, tc.want, cfg.Length)
	}
}

func TestParseConfigStyle(t *testing.T) {
	for _, s := range Styles {
		cfg, err := ParseConfig(map[string]any{"topic": "x", "style": string(s)})
		require.NoError(t, err)
		assert.Equal(t, s, cfg.Style)
	}

	_, err := ParseConfig(map[string]any{"topic": "x", "style": "poetry"})
	require.Error(t, err)
	assert.Equal(t, []string{"style"}, fieldPaths(t, err))
	assert.Contains(t, err.Error(), "technical, marketing, tutorial, opinion, news")

	cfg, err := ParseConfig(map[string]any{"topic": "x", "style": ""})
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle, cfg.Style)
}

func TestParseConfigKeywords(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{
		"topic":    "x",
		"keywords": []any{" wasm ", "", "runtime", "wasm"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"wasm", "runtime"}, cfg.Keywords)

	cfg, err = ParseConfig(map[string]any{"topic": "x", "keywords": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Keywords)

	_, err = ParseConfig(map[string]any{"topic": "x", "keywords": []any{"a", 3}})
	require.Error(t, err)
	assert.Equal(t, []string{"keywords"}, fieldPaths(t, err))
}

func TestParseConfigCollectsEveryField(t *testing.T) {
	_, err := ParseConfig(map[string]any{
		"style":    "poetry",
		"audience": 12,
		"length":   50,
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"topic", "style", "audience", "length"}, fieldPaths(t, err))
}

func TestParseConfigTrimsOptionalStrings(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{
		"topic":    "x",
		"audience": "  frontend devs ",
		"tone":     "   ",
		"language": "ja",
	})
	require.NoError(t, err)
	assert.Equal(t, "frontend devs", cfg.Audience)
	assert.Equal(t, DefaultTone, cfg.Tone)
	assert.Equal(t, "ja", cfg.Language)
}
