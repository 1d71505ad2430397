package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"article_craft_agent/generator"
	"article_craft_agent/publisher"
	"article_craft_agent/server"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs([]string{"Introduction", "to", "WebAssembly"})
	require.NoError(t, err)

	assert.Equal(t, "Introduction to WebAssembly", opts.topic)
	assert.Equal(t, 1.0, opts.budgetUSD)
	assert.Equal(t, "./output", opts.outputDir)
	assert.Equal(t, "config/config.json", opts.configPath)
	assert.False(t, opts.verbose)

	cfg, err := generator.ParseConfig(opts.raw)
	require.NoError(t, err)
	assert.Equal(t, generator.StyleTechnical, cfg.Style)
	assert.Equal(t, 1500, cfg.Length)
	assert.Empty(t, cfg.Keywords)
}

func TestParseArgsInterspersedFlags(t *testing.T) {
	opts, err := parseArgs([]string{
		"React Server Components",
		"-s", "tutorial",
		"-a", "frontend devs",
		"-l", "2000",
		"-v",
		"--keywords", "rsc, react ,",
		"--max-budget", "2.5",
		"--language", "ja",
		"--dry-run",
	})
	require.NoError(t, err)

	assert.Equal(t, "React Server Components", opts.topic)
	assert.True(t, opts.verbose)
	assert.True(t, opts.dryRun)
	assert.Equal(t, 2.5, opts.budgetUSD)

	cfg, err := generator.ParseConfig(opts.raw)
	require.NoError(t, err)
	assert.Equal(t, generator.StyleTutorial, cfg.Style)
	assert.Equal(t, "frontend devs", cfg.Audience)
	assert.Equal(t, 2000, cfg.Length)
	assert.Equal(t, "ja", cfg.Language)
	assert.Equal(t, []string{"rsc", "react"}, cfg.Keywords)
}

func TestParseArgsInvalidLengthSurfacesInValidation(t *testing.T) {
	opts, err := parseArgs([]string{"x", "--length", "abc"})
	require.NoError(t, err)

	_, err = generator.ParseConfig(opts.raw)
	var verr *generator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "length", verr.Fields[0].Path)
}

func TestParseArgsRejectsBadBudget(t *testing.T) {
	for _, v := range []string{"0", "-1", "lots"} {
		_, err := parseArgs([]string{"x", "--max-budget", v})
		assert.Error(t, err, v)
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"x", "--nope"})
	assert.Error(t, err)
}

func TestParseArgsHelpAndServe(t *testing.T) {
	opts, err := parseArgs([]string{"-h"})
	require.NoError(t, err)
	assert.True(t, opts.help)
	assert.Empty(t, opts.topic)

	opts, err = parseArgs([]string{"--serve", "--addr", ":9090"})
	require.NoError(t, err)
	assert.True(t, opts.serve)
	assert.Equal(t, ":9090", opts.addr)
}

func TestBuildSession(t *testing.T) {
	cfg := publisher.Config{}
	cfg.ApplyEnv(func(string) string { return "" })

	s, err := buildSession(cfg, "t")
	require.NoError(t, err)
	assert.IsType(t, &generator.ClaudeSession{}, s)

	cfg.LLM.Provider = publisher.ProviderMock
	s, err = buildSession(cfg, "t")
	require.NoError(t, err)
	assert.IsType(t, &generator.MockSession{}, s)

	cfg.LLM.Provider = publisher.ProviderOpenAI
	s, err = buildSession(cfg, "t")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", s.(*generator.OpenAISession).Model)

	cfg.LLM.Provider = publisher.ProviderDeepSeek
	_, err = buildSession(cfg, "t")
	assert.Error(t, err)

	cfg.LLM.Provider = "palm"
	_, err = buildSession(cfg, "t")
	assert.Error(t, err)
}

func TestParseArgsAcceptsServerArgsForDashTopic(t *testing.T) {
	cfg, err := generator.ParseConfig(map[string]any{
		"topic":    "-v flags explained",
		"style":    "tutorial",
		"keywords": []string{"flag", "cli"},
	})
	require.NoError(t, err)

	opts, err := parseArgs(server.CLIArgs(cfg, 2.5, true, "mock"))
	require.NoError(t, err)
	assert.Equal(t, "-v flags explained", opts.topic)
	assert.True(t, opts.verbose)
	assert.Equal(t, "mock", opts.backend)
	assert.Equal(t, 2.5, opts.budgetUSD)
	assert.Equal(t, "./output", opts.outputDir)

	parsed, err := generator.ParseConfig(opts.raw)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}
