package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// ArticleWriter persists a parsed article and returns the written path.
type ArticleWriter interface {
	Save(result ArticleResult, outputDir string) (string, error)
}

// Credential is the backend secret together with the variable it is read from.
type Credential struct {
	Variable string
	Value    string
}

// Agent drives the orchestrator session and turns its last text into a saved article.
type Agent struct {
	session Session
	writer  ArticleWriter
	cred    Credential
	logger  *log.Logger
}

func NewAgent(session Session, writer ArticleWriter, cred Credential, logger *log.Logger) (*Agent, error) {
	if session == nil {
		return nil, errors.New("agent session backend is required")
	}
	if writer == nil {
		return nil, errors.New("article writer is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Agent{session: session, writer: writer, cred: cred, logger: logger}, nil
}

// Options are the per-run inputs of Generate.
type Options struct {
	Config       ArticleConfig
	Verbose      bool
	MaxBudgetUSD float64
	OutputDir    string
}

// Report summarizes a finished run.
type Report struct {
	RunID        string
	Path         string
	Article      ArticleResult
	TotalCostUSD float64
	Subtype      string
	NumTurns     int
}

// Generate runs the whole pipeline. Stream errors are returned unchanged and
// nothing is written in that case.
func (a *Agent) Generate(ctx context.Context, opts Options) (*Report, error) {
	if strings.TrimSpace(a.cred.Value) == "" {
		variable := a.cred.Variable
		if variable == "" {
			variable = "ANTHROPIC_API_KEY"
		}
		return nil, &CredentialError{Variable: variable}
	}

	cfg := opts.Config
	run := newRun(opts.MaxBudgetUSD, opts.Verbose, a.logger)
	if opts.Verbose {
		a.logger.Printf("--- Pipeline Start ---")
		a.logger.Printf("Run: %s", run.ID)
		a.logger.Printf("Topic: %s", cfg.Topic)
		a.logger.Printf("Style: %s | Length: %d words", cfg.Style, cfg.Length)
		a.logger.Printf("Budget: $%.2f", opts.MaxBudgetUSD)
	}

	req := SessionRequest{
		Prompt:         BuildOrchestratorPrompt(cfg),
		Agents:         BuildAgents(cfg),
		AllowedTools:   DefaultAllowedTools,
		PermissionMode: DefaultPermissionMode,
		MaxBudgetUSD:   opts.MaxBudgetUSD,
		APIKey:         a.cred.Value,
	}
	for msg, err := range a.session.Query(ctx, req) {
		if err != nil {
			return nil, err
		}
		run.observe(msg)
	}

	result := ParseEditorOutput(run.FinalText(), cfg)
	path, err := a.writer.Save(result, opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("saving article: %w", err)
	}

	a.logger.Printf("Article saved: %s", path)
	a.logger.Printf("Title: %s", result.Title)
	a.logger.Printf("Words: %d", result.WordCount)
	a.logger.Printf("Tags: %s", strings.Join(result.Tags, ", "))
	a.logger.Printf("Cost: $%.4f", run.TotalCostUSD())

	return &Report{
		RunID:        run.ID,
		Path:         path,
		Article:      result,
		TotalCostUSD: run.TotalCostUSD(),
		Subtype:      run.subtype,
		NumTurns:     run.numTurns,
	}, nil
}
