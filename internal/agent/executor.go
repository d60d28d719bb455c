package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/domain"
)

// NoOutputSentinel is reported when the agent exits cleanly without emitting
// any textual deltas, so consumers can distinguish "nothing to say" from a
// parse failure.
const NoOutputSentinel = "(agent produced no textual output)"

// compactDirective asks the agent to summarize and shrink its own
// conversational context.
const compactDirective = "/compact"

const (
	defaultTimeout        = 2 * time.Minute
	defaultCompactTimeout = 30 * time.Second
)

// Executor invokes the external agent binary and normalizes its event stream
// into ExecutionResults. Agent-side failures (spawn, timeout, non-zero exit)
// become failed results, never Go errors; nothing raises past this boundary.
type Executor struct {
	runner         ProcessRunner
	bin            string
	maxTurns       int
	timeout        time.Duration
	compactTimeout time.Duration
}

func NewExecutor(runner ProcessRunner, bin string, maxTurns int, timeout, compactTimeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if compactTimeout <= 0 {
		compactTimeout = defaultCompactTimeout
	}
	return &Executor{
		runner:         runner,
		bin:            bin,
		maxTurns:       maxTurns,
		timeout:        timeout,
		compactTimeout: compactTimeout,
	}
}

// Execute runs one agent invocation to completion under the wall-clock
// timeout and returns the normalized result.
func (e *Executor) Execute(ctx context.Context, req domain.TaskRequest) *domain.ExecutionResult {
	args := e.buildArgs(req.Prompt, req.ResumeToken)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	proc, err := e.runner.Start(runCtx, e.bin, args...)
	if err != nil {
		return &domain.ExecutionResult{
			ErrorDetail: "failed to start agent process: " + err.Error(),
		}
	}

	acc := newStreamAccumulator()
	readLines(proc.Stdout(), acc.addLine)

	waitErr := proc.Wait()

	result := &domain.ExecutionResult{
		Output:         acc.output.String(),
		AgentSessionID: acc.sessionID,
		ToolsUsed:      acc.tools,
		ModifiedFiles:  acc.files,
		Events:         acc.events,
	}

	switch {
	case waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.ErrorDetail = fmt.Sprintf("agent timed out after %s", e.timeout)
	case waitErr != nil:
		detail := "agent exited with error: " + waitErr.Error()
		if stderr := proc.Stderr(); stderr != "" {
			detail += "\n" + truncate(stderr, 2000)
		}
		result.ErrorDetail = detail
	default:
		result.Success = true
		if result.Output == "" {
			result.Output = NoOutputSentinel
		}
	}

	return result
}

// Compact asks the agent to compact an existing session's context. Runs under
// a shorter timeout than Execute; the caller treats failure as non-fatal.
func (e *Executor) Compact(ctx context.Context, agentSessionID string) error {
	if agentSessionID == "" {
		return errors.New("agent.Executor.Compact: empty session id")
	}

	args := []string{
		"-p", compactDirective,
		"--output-format", "stream-json",
		"--verbose",
		"--max-turns", "1",
		"--resume", agentSessionID,
	}

	runCtx, cancel := context.WithTimeout(ctx, e.compactTimeout)
	defer cancel()

	proc, err := e.runner.Start(runCtx, e.bin, args...)
	if err != nil {
		return fmt.Errorf("agent.Executor.Compact: %w", err)
	}

	// Drain stdout so the process is not blocked on a full pipe; compaction
	// output is not surfaced.
	_, _ = io.Copy(io.Discard, proc.Stdout())

	if waitErr := proc.Wait(); waitErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("agent.Executor.Compact: timed out after %s", e.compactTimeout)
		}
		return fmt.Errorf("agent.Executor.Compact: %w", waitErr)
	}

	return nil
}

func (e *Executor) buildArgs(prompt, resumeToken string) []string {
	args := []string{
		"-p", prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--max-turns", strconv.Itoa(e.maxTurns),
	}
	if resumeToken != "" {
		args = append(args, "--resume", resumeToken)
	}
	return args
}

// readLines feeds each newline-delimited line from r to fn. Unlike a capped
// bufio.Scanner, an oversized line never aborts the read; it is delivered
// whole and the stream continues, so one pathological event cannot discard
// the rest of the response.
func readLines(r io.Reader, fn func(string)) {
	reader := bufio.NewReaderSize(r, 256*1024)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fn(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Msg("agent: stream read ended early")
			}
			return
		}
	}
}
