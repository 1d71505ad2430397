package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// LocalProvisioner clones the source into a temporary directory on this
// machine. It offers no isolation beyond a separate working directory.
type LocalProvisioner struct {
	// Git defaults to "git".
	Git string
	// BaseDir is where workspaces are created; empty means os.TempDir.
	BaseDir string
}

func (p *LocalProvisioner) Create(ctx context.Context, src Source) (Host, error) {
	if src.URL == "" {
		return nil, errors.New("sandbox: repository url is required")
	}
	dir, err := os.MkdirTemp(p.BaseDir, "articlecraft-")
	if err != nil {
		return nil, fmt.Errorf("sandbox: creating workspace: %w", err)
	}

	git := p.Git
	if git == "" {
		git = "git"
	}
	args := []string{"clone", "--depth", "1"}
	if src.Branch != "" {
		args = append(args, "--branch", src.Branch)
	}
	args = append(args, src.URL, dir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, git, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("sandbox: cloning %s: %w: %s", src.URL, err, strings.TrimSpace(stderr.String()))
	}

	return &LocalHost{id: uuid.NewString(), dir: dir}, nil
}

// LocalHost is a workspace directory on the local machine.
type LocalHost struct {
	id  string
	dir string
}

// NewLocalHost wraps an existing directory. Stop removes it.
func NewLocalHost(dir string) *LocalHost {
	return &LocalHost{id: uuid.NewString(), dir: dir}
}

func (h *LocalHost) ID() string  { return h.id }
func (h *LocalHost) Dir() string { return h.dir }

func (h *LocalHost) RunCommand(ctx context.Context, name string, args []string, env map[string]string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = h.dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("sandbox: running %s: %w", name, err)
	}
	return res, nil
}

// ReadFile reads path relative to the workspace; paths escaping it are rejected.
func (h *LocalHost) ReadFile(_ context.Context, path string) ([]byte, error) {
	root, err := os.OpenRoot(h.dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return root.ReadFile(path)
}

func (h *LocalHost) Stop(_ context.Context) error {
	return os.RemoveAll(h.dir)
}
