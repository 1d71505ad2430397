package generator

import (
	"fmt"
	"strings"
)

// CredentialError is returned before any remote work when the backend credential is missing.
type CredentialError struct {
	Variable string
}

func (e *CredentialError) Error() string {
	return e.Variable + " environment variable is not set"
}

// BackendError wraps a failure of the agent-session backend or the execution host.
type BackendError struct {
	Op       string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *BackendError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		sb.WriteString(": ")
		sb.WriteString(s)
	}
	return sb.String()
}

func (e *BackendError) Unwrap() error { return e.Err }
