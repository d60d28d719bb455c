package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Process is one running agent invocation. Stdout carries the structured
// event stream; Stderr is buffered and only read after Wait for diagnostics.
type Process interface {
	Stdout() io.Reader
	Wait() error
	Stderr() string
}

// ProcessRunner starts the external agent process. Injected so the Executor
// is testable with a fake process instead of a real CLI binary.
type ProcessRunner interface {
	Start(ctx context.Context, bin string, args ...string) (Process, error)
}

// ExecRunner runs the agent binary via os/exec. The context governs the
// process lifetime: cancellation or deadline expiry kills the process.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Start(ctx context.Context, bin string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("agent.ExecRunner.Start: stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("agent.ExecRunner.Start: %w", err)
	}

	return &execProcess{cmd: cmd, stdout: stdout, stderr: &stderr}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr *bytes.Buffer
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) Wait() error {
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("agent.execProcess.Wait: %w", err)
	}
	return nil
}

func (p *execProcess) Stderr() string { return p.stderr.String() }
