// Package sandbox provisions execution hosts that run the article CLI on
// behalf of the network entry point.
package sandbox

import "context"

// Source is the repository a host is provisioned from.
type Source struct {
	URL    string
	Branch string
}

// CommandResult is the outcome of one command. A non-zero ExitCode is not an error.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Host runs commands and reads files inside one provisioned workspace.
// Callers must Stop every host they create.
type Host interface {
	ID() string
	RunCommand(ctx context.Context, name string, args []string, env map[string]string) (CommandResult, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stop(ctx context.Context) error
}

// Provisioner creates hosts.
type Provisioner interface {
	Create(ctx context.Context, src Source) (Host, error)
}
