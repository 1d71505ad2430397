package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ClaudeSession runs sessions through the claude CLI in print mode and
// decodes its stream-json output.
type ClaudeSession struct {
	// Binary defaults to "claude".
	Binary string
	// Dir is the working directory of the CLI process.
	Dir string
	// ExtraArgs are appended after the generated arguments.
	ExtraArgs []string
	// WaitDelay bounds how long Wait blocks on output pipes after the
	// process is gone. Zero means defaultWaitDelay.
	WaitDelay time.Duration
}

const defaultWaitDelay = 5 * time.Second

func NewClaudeSession() *ClaudeSession {
	return &ClaudeSession{Binary: "claude"}
}

// Query starts the CLI and yields one Message per stream event.
func (c *ClaudeSession) Query(ctx context.Context, req SessionRequest) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		args, err := c.args(req)
		if err != nil {
			yield(Message{}, err)
			return
		}

		bin := c.Binary
		if bin == "" {
			bin = "claude"
		}
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Dir = c.Dir
		cmd.Env = append(os.Environ(), "ANTHROPIC_API_KEY="+req.APIKey)
		cmd.WaitDelay = c.WaitDelay
		if cmd.WaitDelay <= 0 {
			cmd.WaitDelay = defaultWaitDelay
		}

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield(Message{}, &BackendError{Op: "claude session", Err: err})
			return
		}
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Start(); err != nil {
			yield(Message{}, &BackendError{Op: "starting claude", Err: err})
			return
		}

		sawResult := false
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			msg, ok := decodeStreamLine(scanner.Bytes())
			if !ok {
				continue
			}
			if msg.Type == MessageResult {
				sawResult = true
			}
			if !yield(msg, nil) {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				return
			}
		}
		if scanErr := scanner.Err(); scanErr != nil {
			// stdout is no longer drained, so the child could block on it forever.
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			yield(Message{}, &BackendError{Op: "reading claude output", Stderr: stderr.String(), Err: scanErr})
			return
		}

		if err := cmd.Wait(); err != nil {
			if ctx.Err() != nil {
				yield(Message{}, ctx.Err())
				return
			}
			// A result event already describes how the session ended.
			if sawResult {
				return
			}
			exitCode := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}
			yield(Message{}, &BackendError{Op: "claude session", ExitCode: exitCode, Stderr: stderr.String(), Err: err})
		}
	}
}

func (c *ClaudeSession) args(req SessionRequest) ([]string, error) {
	args := []string{
		"-p", req.Prompt,
		"--output-format", "stream-json",
		"--verbose",
	}
	if len(req.Agents) > 0 {
		agents, err := json.Marshal(req.Agents)
		if err != nil {
			return nil, fmt.Errorf("encoding agents: %w", err)
		}
		args = append(args, "--agents", string(agents))
	}
	if len(req.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(req.AllowedTools, ","))
	}
	if req.PermissionMode != "" {
		args = append(args, "--permission-mode", req.PermissionMode)
	}
	if req.MaxBudgetUSD > 0 {
		args = append(args, "--max-budget-usd", strconv.FormatFloat(req.MaxBudgetUSD, 'f', -1, 64))
	}
	return append(args, c.ExtraArgs...), nil
}

// streamEvent represents a line from claude's stream-json output
type streamEvent struct {
	Type            string         `json:"type"`
	Subtype         string         `json:"subtype,omitempty"`
	Message         *streamMessage `json:"message,omitempty"`
	ParentToolUseID *string        `json:"parent_tool_use_id,omitempty"`
	TotalCostUSD    float64        `json:"total_cost_usd,omitempty"`
	NumTurns        int            `json:"num_turns,omitempty"`
	IsError         bool           `json:"is_error,omitempty"`
}

type streamMessage struct {
	Content []ContentBlock `json:"content"`
}

// decodeStreamLine maps assistant and result events; everything else is skipped.
func decodeStreamLine(line []byte) (Message, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Message{}, false
	}
	var ev streamEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return Message{}, false
	}

	switch ev.Type {
	case "assistant":
		msg := Message{Type: MessageAssistant}
		if ev.Message != nil {
			msg.Content = ev.Message.Content
		}
		if ev.ParentToolUseID != nil {
			msg.ParentToolUseID = *ev.ParentToolUseID
		}
		return msg, true
	case "result":
		return Message{
			Type: MessageResult,
			Result: &ResultInfo{
				Subtype:      ev.Subtype,
				TotalCostUSD: ev.TotalCostUSD,
				NumTurns:     ev.NumTurns,
				IsError:      ev.IsError,
			},
		}, true
	default:
		return Message{}, false
	}
}
