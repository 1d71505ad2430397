package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"article_craft_agent/generator"
)

// Config is the process configuration shared by the CLI and the server.
type Config struct {
	LLM             *LLMConfig `json:"llm,omitempty"`
	AnthropicAPIKey string     `json:"anthropic_api_key,omitempty"`
	ServerAddr      string     `json:"server_addr,omitempty"`
	APISecret       string     `json:"api_secret,omitempty"`
	RepoURL         string     `json:"repo_url,omitempty"`
	RepoBranch      string     `json:"repo_branch,omitempty"`
}

// LLMConfig selects and configures the agent-session backend.
type LLMConfig struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	FastModel string `json:"fast_model,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
}

const (
	ProviderClaude   = "claude"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderMock     = "mock"
)

// LoadConfig reads JSON config from disk. A missing file yields an empty config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment values onto cfg. Non-empty variables win over the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.LLM == nil {
		c.LLM = &LLMConfig{}
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	set(&c.APISecret, "API_SECRET")
	set(&c.RepoURL, "GIT_REPO_URL")
	set(&c.RepoBranch, "GIT_REPO_BRANCH")
	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.LLM.APIKey, "OPENAI_API_KEY")
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		if strings.HasPrefix(port, ":") {
			c.ServerAddr = port
		} else {
			c.ServerAddr = ":" + port
		}
	}
}

// Provider is the configured backend name, claude when unset.
func (c Config) Provider() string {
	if c.LLM == nil || c.LLM.Provider == "" {
		return ProviderClaude
	}
	return c.LLM.Provider
}

// Credential returns the secret the selected backend authenticates with.
func (c Config) Credential() generator.Credential {
	switch c.Provider() {
	case ProviderOpenAI, ProviderDeepSeek:
		return generator.Credential{Variable: "OPENAI_API_KEY", Value: c.LLM.APIKey}
	case ProviderMock:
		return generator.Credential{Variable: "MOCK", Value: "mock"}
	default:
		return generator.Credential{Variable: "ANTHROPIC_API_KEY", Value: c.AnthropicAPIKey}
	}
}
