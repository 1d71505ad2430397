package generator

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStreamLine(t *testing.T) {
	msg, ok := decodeStreamLine([]byte(`{"type":"assistant","message":{"content":[{"type":"text","text":"hello"},{"type":"tool_use","id":"t1"}]},"parent_tool_use_id":null}`))
	require.True(t, ok)
	assert.Equal(t, MessageAssistant, msg.Type)
	assert.Equal(t, []ContentBlock{{Type: "text", Text: "hello"}, {Type: "tool_use"}}, msg.Content)
	assert.Empty(t, msg.ParentToolUseID)

	msg, ok = decodeStreamLine([]byte(`{"type":"assistant","message":{"content":[{"type":"text","text":"sub"}]},"parent_tool_use_id":"toolu_01"}`))
	require.True(t, ok)
	assert.Equal(t, "toolu_01", msg.ParentToolUseID)

	msg, ok = decodeStreamLine([]byte(`{"type":"result","subtype":"success","total_cost_usd":0.1234,"num_turns":9,"is_error":false}`))
	require.True(t, ok)
	assert.Equal(t, MessageResult, msg.Type)
	require.NotNil(t, msg.Result)
	assert.Equal(t, "success", msg.Result.Subtype)
	assert.InDelta(t, 0.1234, msg.Result.TotalCostUSD, 1e-9)
	assert.Equal(t, 9, msg.Result.NumTurns)

	msg, ok = decodeStreamLine([]byte(`{"type":"result","subtype":"error_max_budget_usd","total_cost_usd":1.01,"is_error":true}`))
	require.True(t, ok)
	assert.True(t, msg.Result.IsError)

	for _, line := range []string{
		``,
		`   `,
		`not json`,
		`{"type":"system","subtype":"init"}`,
		`{"type":"user","message":{"content":[]}}`,
	} {
		_, ok := decodeStreamLine([]byte(line))
		assert.False(t, ok, line)
	}
}

func TestClaudeArgs(t *testing.T) {
	cfg := testConfig()
	session := &ClaudeSession{ExtraArgs: []string{"--model", "opus"}}
	args, err := session.args(SessionRequest{
		Prompt:         "orchestrate",
		Agents:         BuildAgents(cfg),
		AllowedTools:   DefaultAllowedTools,
		PermissionMode: DefaultPermissionMode,
		MaxBudgetUSD:   0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"-p", "orchestrate", "--output-format", "stream-json", "--verbose"}, args[:5])
	assert.Equal(t, []string{"--model", "opus"}, args[len(args)-2:])

	flags := map[string]string{}
	for i := 5; i+1 < len(args)-2; i += 2 {
		flags[args[i]] = args[i+1]
	}
	assert.Equal(t, "Read,Write,Glob,Grep,Task,WebSearch,WebFetch", flags["--allowedTools"])
	assert.Equal(t, "bypassPermissions", flags["--permission-mode"])
	assert.Equal(t, "0.5", flags["--max-budget-usd"])

	var agents map[string]AgentSpec
	require.NoError(t, json.Unmarshal([]byte(flags["--agents"]), &agents))
	assert.Equal(t, BuildAgents(cfg), agents)
}

func TestClaudeArgsOmitsUnsetOptions(t *testing.T) {
	args, err := (&ClaudeSession{}).args(SessionRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "p", "--output-format", "stream-json", "--verbose"}, args)
}

func fakeClaude(t *testing.T, script string) *ClaudeSession {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake claude binary is a shell script")
	}
	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return &ClaudeSession{Binary: path, WaitDelay: 500 * time.Millisecond}
}

func TestClaudeQueryStreamsEvents(t *testing.T) {
	session := fakeClaude(t, `echo '{"type":"system","subtype":"init"}'
echo '{"type":"assistant","message":{"content":[{"type":"text","text":"# Done"}]}}'
echo '{"type":"result","subtype":"success","total_cost_usd":0.2,"num_turns":3}'
`)
	msgs, err := collect(t, session, SessionRequest{Prompt: "p", APIKey: "k"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "# Done", msgs[0].Content[0].Text)
	assert.Equal(t, "success", msgs[1].Result.Subtype)
}

func TestClaudeQueryNonZeroExit(t *testing.T) {
	session := fakeClaude(t, "echo 'invalid api key' >&2\nexit 4\n")
	_, err := collect(t, session, SessionRequest{Prompt: "p", APIKey: "k"})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, 4, backendErr.ExitCode)
	assert.Contains(t, backendErr.Stderr, "invalid api key")
}

func TestClaudeQueryOversizedLineDoesNotHang(t *testing.T) {
	session := fakeClaude(t, `head -c 17000000 /dev/zero | tr '\0' 'a'
echo
echo '{"type":"result","subtype":"success"}'
sleep 30
`)

	done := make(chan error, 1)
	go func() {
		_, err := collect(t, session, SessionRequest{Prompt: "p", APIKey: "k"})
		done <- err
	}()

	select {
	case err := <-done:
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "reading claude output", backendErr.Op)
		assert.ErrorIs(t, err, bufio.ErrTooLong)
	case <-time.After(20 * time.Second):
		t.Fatal("Query did not return after an oversized stream line")
	}
}
