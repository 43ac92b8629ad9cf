package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is what an external tool reported
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Runner runs an external tool to completion. A non-zero exit is reported
// in the Result, not as an error; errors mean the tool could not run or was
// cancelled.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, name string, args ...string) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs tools as child processes
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if ctx.Err() != nil {
		res.ExitStatus = -1
		return res, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitStatus = exitErr.ExitCode()
	default:
		res.ExitStatus = -1
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}
