package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const usage = `
articlecraft - AI-powered blog article generator

Usage:
  articlecraft "<topic>" [options]
  articlecraft --serve [--addr :8080]

Options:
  -s, --style <style>        Article style: technical, marketing, tutorial, opinion, news (default: technical)
  -a, --audience <audience>  Target audience (default: "general readers")
  -t, --tone <tone>          Writing tone (default: "professional")
  -l, --length <words>       Target word count (default: 1500)
      --language <lang>      Language code: en, ja, etc. (default: en)
  -k, --keywords <words>     Comma-separated keywords
  -v, --verbose              Show detailed pipeline progress
      --dry-run              Show config without generating
      --max-budget <usd>     Max budget in USD (default: 1.00)
  -o, --output-dir <dir>     Output directory (default: ./output)
      --backend <name>       Agent backend: claude, openai, mock (default: from config, else claude)
      --config <path>        Path to config.json (default: config/config.json)
      --html                 Also write an HTML rendering of the article
      --preview              Render the saved article in the terminal
      --serve                Start the HTTP API instead of generating
      --addr <addr>          Listen address for --serve
  -h, --help                 Show this help

Examples:
  articlecraft "Introduction to WebAssembly"
  articlecraft "React Server Components" -s technical -a "frontend devs" -l 2000 -v
  articlecraft "AIエージェントの活用事例" --style marketing --language ja
  articlecraft "Test" --dry-run
`

type cliOptions struct {
	topic string
	// raw holds the article fields in the shape generator.ParseConfig expects.
	raw map[string]any

	verbose    bool
	dryRun     bool
	help       bool
	html       bool
	preview    bool
	serve      bool
	budgetUSD  float64
	outputDir  string
	backend    string
	configPath string
	addr       string
}

// parseArgs accepts flags before or after the positional topic words.
func parseArgs(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("articlecraft", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		opts     cliOptions
		style    string
		audience string
		tone     string
		length   string
		language string
		keywords string
		budget   string
	)
	fs.StringVar(&style, "style", "technical", "article style")
	fs.StringVar(&style, "s", "technical", "article style (shorthand)")
	fs.StringVar(&audience, "audience", "general readers", "target audience")
	fs.StringVar(&audience, "a", "general readers", "target audience (shorthand)")
	fs.StringVar(&tone, "tone", "professional", "writing tone")
	fs.StringVar(&tone, "t", "professional", "writing tone (shorthand)")
	fs.StringVar(&length, "length", "1500", "target word count")
	fs.StringVar(&length, "l", "1500", "target word count (shorthand)")
	fs.StringVar(&language, "language", "en", "language code")
	fs.StringVar(&keywords, "keywords", "", "comma-separated keywords")
	fs.StringVar(&keywords, "k", "", "comma-separated keywords (shorthand)")
	fs.BoolVar(&opts.verbose, "verbose", false, "show pipeline progress")
	fs.BoolVar(&opts.verbose, "v", false, "verbose (shorthand)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "show config without generating")
	fs.StringVar(&budget, "max-budget", "1.00", "max budget in USD")
	fs.StringVar(&opts.outputDir, "output-dir", "./output", "output directory")
	fs.StringVar(&opts.outputDir, "o", "./output", "output directory (shorthand)")
	fs.StringVar(&opts.backend, "backend", "", "agent backend: claude, openai, mock")
	fs.StringVar(&opts.configPath, "config", "config/config.json", "path to config.json")
	fs.BoolVar(&opts.html, "html", false, "also write HTML")
	fs.BoolVar(&opts.preview, "preview", false, "render the article in the terminal")
	fs.BoolVar(&opts.serve, "serve", false, "start web server")
	fs.StringVar(&opts.addr, "addr", "", "http listen address when --serve")
	fs.BoolVar(&opts.help, "help", false, "show help")
	fs.BoolVar(&opts.help, "h", false, "show help (shorthand)")

	var positionals []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return cliOptions{}, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		positionals = append(positionals, rest[0])
		rest = rest[1:]
	}

	b, err := strconv.ParseFloat(strings.TrimSpace(budget), 64)
	if err != nil || b <= 0 {
		return cliOptions{}, fmt.Errorf("--max-budget must be a positive number, got %q", budget)
	}
	opts.budgetUSD = b

	opts.topic = strings.Join(positionals, " ")
	var kws []string
	if keywords != "" {
		kws = strings.Split(keywords, ",")
	}
	opts.raw = map[string]any{
		"topic":    opts.topic,
		"style":    style,
		"audience": audience,
		"tone":     tone,
		"length":   length,
		"language": language,
		"keywords": kws,
	}
	return opts, nil
}
