package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies the result of one command.
type Kind int

const (
	// Success means the tool exited with status 0.
	Success Kind = iota
	// ToolError means the tool ran but reported failure.
	ToolError
	// LaunchFailure means the tool could not be found or started.
	LaunchFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ToolError:
		return "tool-error"
	case LaunchFailure:
		return "launch-failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of running one command of a batch.
type Outcome struct {
	Command  string
	Args     []string
	Kind     Kind
	Stderr   string
	Err      error
	Duration time.Duration
}

// OK reports whether the command succeeded.
func (o Outcome) OK() bool {
	return o.Kind == Success
}

// runFunc starts the tool, waits for it and returns its captured stderr.
type runFunc func(ctx context.Context, name string, args []string, dir string) ([]byte, error)

// Dispatcher runs command batches against a fixed external tool.
type Dispatcher struct {
	tool       string
	workingDir string
	timeout    time.Duration
	run        runFunc
}

// New creates a dispatcher for tool. Commands run in workingDir ("" for the
// process working directory) and are killed after timeout (0 disables it).
func New(tool, workingDir string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		tool:       ResolveTool(tool, workingDir),
		workingDir: workingDir,
		timeout:    timeout,
		run:        execRun,
	}
}

// Tool returns the resolved tool path.
func (d *Dispatcher) Tool() string {
	return d.tool
}

// ResolveTool prefers a bare tool name found in dir over a PATH lookup,
// since the tool is normally shipped next to the config file.
func ResolveTool(tool, dir string) string {
	if tool == "" || filepath.IsAbs(tool) || strings.ContainsAny(tool, `/\`) {
		return tool
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return tool
		}
		dir = wd
	}
	candidate := filepath.Join(dir, tool)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return tool
}

// Dispatch runs every command of batch in order. A failing command never
// stops the ones after it and nothing is retried. fn, if non-nil, is called
// after each command.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []string, fn func(Outcome)) []Outcome {
	if fn == nil {
		fn = func(Outcome) {}
	}

	outcomes := make([]Outcome, 0, len(batch))
	for _, command := range batch {
		o := d.runOne(ctx, command)
		fn(o)
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (d *Dispatcher) runOne(ctx context.Context, command string) Outcome {
	start := time.Now()
	o := Outcome{
		Command: command,
		Args:    SplitArgs(command),
	}

	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	stderr, err := d.run(runCtx, d.tool, o.Args, d.workingDir)
	o.Duration = time.Since(start)
	o.Stderr = strings.TrimSpace(string(stderr))

	var exitErr interface{ ExitCode() int }
	switch {
	case err == nil:
		o.Kind = Success
	case errors.As(err, &exitErr):
		o.Kind = ToolError
		o.Err = err
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			o.Err = fmt.Errorf("killed after %s: %w", d.timeout, context.DeadlineExceeded)
		}
	default:
		o.Kind = LaunchFailure
		o.Err = err
	}
	return o
}

func execRun(ctx context.Context, name string, args []string, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Don't wait forever on grandchildren holding stderr open after a kill
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	return stderr.Bytes(), err
}
