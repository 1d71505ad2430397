package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"

	"article_craft_agent/generator"
	"article_craft_agent/publisher"
	"article_craft_agent/sandbox"
	"article_craft_agent/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := publisher.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)
	if opts.backend != "" {
		cfg.LLM.Provider = opts.backend
	}

	// Web server mode
	if opts.serve {
		if err := serve(cfg, opts.addr); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if opts.help || opts.topic == "" {
		fmt.Print(usage)
		return
	}

	articleCfg, err := generator.ParseConfig(opts.raw)
	if err != nil {
		var verr *generator.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "Invalid configuration:")
			for _, f := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Path, f.Message)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	outputDir, err := filepath.Abs(opts.outputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.dryRun {
		pretty, _ := json.MarshalIndent(articleCfg, "", "  ")
		fmt.Println("--- Dry Run ---")
		fmt.Println("Config:", string(pretty))
		fmt.Printf("Max budget: $%g\n", opts.budgetUSD)
		fmt.Printf("Output dir: %s\n", outputDir)
		fmt.Printf("Backend: %s\n", cfg.Provider())
		return
	}

	session, err := buildSession(cfg, articleCfg.Topic)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := log.New(os.Stdout, "", 0)
	var pubOpts []publisher.Option
	if opts.html {
		pubOpts = append(pubOpts, publisher.WithHTML())
	}
	pub := publisher.New(opts.verbose, out, pubOpts...)
	agent, err := generator.NewAgent(session, pub, cfg.Credential(), out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := agent.Generate(ctx, generator.Options{
		Config:       articleCfg,
		Verbose:      opts.verbose,
		MaxBudgetUSD: opts.budgetUSD,
		OutputDir:    outputDir,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Pipeline failed:", err)
		os.Exit(1)
	}

	if opts.preview {
		if err := preview(report.Article.Content); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func buildSession(cfg publisher.Config, topic string) (generator.Session, error) {
	switch cfg.Provider() {
	case publisher.ProviderClaude:
		return generator.NewClaudeSession(), nil
	case publisher.ProviderOpenAI:
		return generator.NewOpenAISessionFromConfig(llmSettings(cfg))
	case publisher.ProviderDeepSeek:
		// DeepSeek exposes an OpenAI-compatible API and needs an explicit base_url.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAISessionFromConfig(llmSettings(cfg))
	case publisher.ProviderMock:
		return &generator.MockSession{Messages: generator.SampleArticleMessages(topic)}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider())
	}
}

func llmSettings(cfg publisher.Config) *generator.LLMSettings {
	model := cfg.LLM.Model
	if model == "" {
		model = "gpt-4o"
	}
	return &generator.LLMSettings{
		Provider:  cfg.LLM.Provider,
		Model:     model,
		FastModel: cfg.LLM.FastModel,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
	}
}

func serve(cfg publisher.Config, addr string) error {
	srv, err := server.New(&sandbox.LocalProvisioner{}, server.Options{
		APISecret:  cfg.APISecret,
		RepoURL:    cfg.RepoURL,
		RepoBranch: cfg.RepoBranch,
		Credential: cfg.Credential(),
		Provider:   cfg.Provider(),
	}, log.Default())
	if err != nil {
		return err
	}
	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}
	if listen == "" {
		listen = ":8080"
	}
	log.Printf("Starting web server on %s", listen)
	return http.ListenAndServe(listen, srv.Routes())
}

func preview(md string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return err
	}
	fmt.Print(rendered)
	return nil
}
