package generator

import (
	"context"
	"iter"
)

// Session is the agent-session backend: it runs one multi-turn conversation
// and yields its messages in delivery order. Budget enforcement and agent
// sequencing happen inside the backend.
type Session interface {
	Query(ctx context.Context, req SessionRequest) iter.Seq2[Message, error]
}

// DefaultAllowedTools are the capabilities granted to the orchestrating agent.
var DefaultAllowedTools = []string{"Read", "Write", "Glob", "Grep", "Task", "WebSearch", "WebFetch"}

const DefaultPermissionMode = "bypassPermissions"

// SessionRequest carries everything a backend needs to start a session.
type SessionRequest struct {
	Prompt         string
	Agents         map[string]AgentSpec
	AllowedTools   []string
	PermissionMode string
	MaxBudgetUSD   float64
	APIKey         string
}

// MessageType distinguishes assistant output from the terminal result.
type MessageType string

const (
	MessageAssistant MessageType = "assistant"
	MessageResult    MessageType = "result"
)

// ContentBlock is one block of an assistant message. Only text blocks carry Text.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message is one event of the session stream.
type Message struct {
	Type MessageType
	// Content is set for assistant messages.
	Content []ContentBlock
	// ParentToolUseID is non-empty when a delegated sub-agent produced the message.
	ParentToolUseID string
	// Result is set on the terminal message.
	Result *ResultInfo
}

// ResultInfo describes how a session ended.
type ResultInfo struct {
	Subtype      string
	TotalCostUSD float64
	NumTurns     int
	IsError      bool
}

// LLMSettings configures the concrete backends.
type LLMSettings struct {
	Provider  string
	Model     string
	FastModel string
	APIKey    string
	BaseURL   string
}
