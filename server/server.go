package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"article_craft_agent/generator"
	"article_craft_agent/publisher"
	"article_craft_agent/sandbox"
)

const (
	defaultBranch     = "main"
	defaultBudgetUSD  = 1.0
	defaultTimeout    = 5 * time.Minute
	defaultOutputDir  = "output"
	defaultGenerateCm = "./bin/articlecraft"
)

var defaultInstallCommand = []string{"go", "build", "-o", "bin/articlecraft", "."}

// Options configure the generate endpoint. Secrets and repository settings
// come from the caller, never from the environment.
type Options struct {
	APISecret  string
	RepoURL    string
	RepoBranch string
	// Credential is forwarded to the CLI process inside the host.
	Credential generator.Credential
	// Provider, when set, is passed to the CLI as --backend.
	Provider        string
	InstallCommand  []string
	GenerateCommand string
	Timeout         time.Duration
}

type Server struct {
	provisioner sandbox.Provisioner
	opts        Options
	logger      *log.Logger
}

func New(provisioner sandbox.Provisioner, opts Options, logger *log.Logger) (*Server, error) {
	if provisioner == nil {
		return nil, errors.New("sandbox provisioner required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if len(opts.InstallCommand) == 0 {
		opts.InstallCommand = defaultInstallCommand
	}
	if opts.GenerateCommand == "" {
		opts.GenerateCommand = defaultGenerateCm
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Server{provisioner: provisioner, opts: opts, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	return logMiddleware(s.logger, mux)
}

// --- Handlers ---

type articlePayload struct {
	Filename    string         `json:"filename"`
	Frontmatter map[string]any `json:"frontmatter"`
	Content     string         `json:"content"`
	HTML        string         `json:"html,omitempty"`
}

type logsPayload struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

type generateResp struct {
	Success bool           `json:"success"`
	Article articlePayload `json:"article"`
	Logs    logsPayload    `json:"logs"`
}

type errorResp struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type generateReq struct {
	config     generator.ArticleConfig
	budgetUSD  float64
	verbose    bool
	repoURL    string
	repoBranch string
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResp{Error: "method_not_allowed", Details: "Method not allowed"})
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorResp{Error: "unauthorized", Details: "Unauthorized"})
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid_request", Details: err.Error()})
		return
	}
	req, err := s.parseRequest(body)
	if err != nil {
		var verr *generator.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid_request", Details: verr.Fields})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid_request", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.Timeout)
	defer cancel()
	resp, err := s.generate(ctx, req)
	if err != nil {
		s.logger.Printf("generate %q failed: %v", req.config.Topic, err)
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "backend", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.opts.APISecret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.APISecret)) == 1
}

func (s *Server) parseRequest(body map[string]any) (generateReq, error) {
	req := generateReq{budgetUSD: defaultBudgetUSD}
	verr := &generator.ValidationError{}

	cfg, err := generator.ParseConfig(body)
	if err != nil {
		var cfgErr *generator.ValidationError
		if !errors.As(err, &cfgErr) {
			return req, err
		}
		verr.Fields = append(verr.Fields, cfgErr.Fields...)
	}
	req.config = cfg

	if v, ok := body["maxBudgetUsd"]; ok && v != nil {
		f, isNum := v.(float64)
		if !isNum || f <= 0 {
			verr.Fields = append(verr.Fields, generator.FieldError{Path: "maxBudgetUsd", Message: "must be a positive number"})
		} else {
			req.budgetUSD = f
		}
	}
	if v, ok := body["verbose"].(bool); ok {
		req.verbose = v
	}

	req.repoURL = s.opts.RepoURL
	if req.repoURL == "" {
		req.repoURL, _ = body["repoUrl"].(string)
	}
	req.repoBranch = s.opts.RepoBranch
	if req.repoBranch == "" {
		req.repoBranch, _ = body["repoBranch"].(string)
	}
	if req.repoBranch == "" {
		req.repoBranch = defaultBranch
	}

	if len(verr.Fields) > 0 {
		return req, verr
	}
	return req, nil
}

func (s *Server) generate(ctx context.Context, req generateReq) (generateResp, error) {
	if req.repoURL == "" {
		return generateResp{}, errors.New("GIT_REPO_URL is required")
	}

	s.logger.Printf("Creating sandbox from repo: %s", req.repoURL)
	host, err := s.provisioner.Create(ctx, sandbox.Source{URL: req.repoURL, Branch: req.repoBranch})
	if err != nil {
		return generateResp{}, &generator.BackendError{Op: "creating sandbox", Err: err}
	}
	s.logger.Printf("Sandbox created: %s", host.ID())
	defer func() {
		s.logger.Printf("Stopping sandbox %s", host.ID())
		if err := host.Stop(context.WithoutCancel(ctx)); err != nil {
			s.logger.Printf("stop sandbox %s: %v", host.ID(), err)
		}
	}()

	install := s.opts.InstallCommand
	res, err := host.RunCommand(ctx, install[0], install[1:], nil)
	if err != nil || res.ExitCode != 0 {
		return generateResp{}, &generator.BackendError{Op: "installing dependencies", ExitCode: res.ExitCode, Stdout: res.Stdout, Stderr: res.Stderr, Err: err}
	}

	env := map[string]string{}
	if s.opts.Credential.Variable != "" {
		env[s.opts.Credential.Variable] = s.opts.Credential.Value
	}
	s.logger.Printf("Generating article for: %s", req.config.Topic)
	gen, err := host.RunCommand(ctx, s.opts.GenerateCommand, CLIArgs(req.config, req.budgetUSD, req.verbose, s.opts.Provider), env)
	if err != nil || gen.ExitCode != 0 {
		return generateResp{}, &generator.BackendError{Op: "article generation", ExitCode: gen.ExitCode, Stdout: gen.Stdout, Stderr: gen.Stderr, Err: err}
	}

	ls, err := host.RunCommand(ctx, "ls", []string{"-1", defaultOutputDir}, nil)
	if err != nil || ls.ExitCode != 0 {
		return generateResp{}, &generator.BackendError{Op: "listing output", ExitCode: ls.ExitCode, Stderr: ls.Stderr, Err: err}
	}
	latest := lastLine(ls.Stdout)
	if latest == "" {
		return generateResp{}, &generator.BackendError{Op: "collecting article", Err: errors.New("no article file was generated")}
	}

	s.logger.Printf("Downloading article: %s", latest)
	data, err := host.ReadFile(ctx, path.Join(defaultOutputDir, latest))
	if err != nil {
		return generateResp{}, &generator.BackendError{Op: "reading generated article", Err: err}
	}

	frontmatter, content := publisher.ParseFrontmatter(string(data))
	html, err := publisher.RenderHTML(content)
	if err != nil {
		return generateResp{}, err
	}
	return generateResp{
		Success: true,
		Article: articlePayload{Filename: latest, Frontmatter: frontmatter, Content: content, HTML: html},
		Logs:    logsPayload{Stdout: gen.Stdout, Stderr: gen.Stderr},
	}, nil
}

// --- Helpers ---

// CLIArgs mirrors the CLI flags of the article binary. The topic follows
// "--" so a leading dash is never read as a flag.
func CLIArgs(cfg generator.ArticleConfig, budgetUSD float64, verbose bool, provider string) []string {
	args := []string{
		"--style", string(cfg.Style),
		"--audience", cfg.Audience,
		"--tone", cfg.Tone,
		"--length", strconv.Itoa(cfg.Length),
		"--language", cfg.Language,
		"--max-budget", strconv.FormatFloat(budgetUSD, 'f', -1, 64),
		"--output-dir", "./" + defaultOutputDir,
	}
	if len(cfg.Keywords) > 0 {
		args = append(args, "--keywords", strings.Join(cfg.Keywords, ","))
	}
	if provider != "" {
		args = append(args, "--backend", provider)
	}
	if verbose {
		args = append(args, "--verbose")
	}
	return append(args, "--", cfg.Topic)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
