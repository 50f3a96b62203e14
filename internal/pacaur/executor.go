package pacaur

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Runner is the command-execution surface the reconciler needs. Mutating
// commands go through Run and stream their output; probing queries go
// through Capture. Splitting the two keeps the dry-run guarantee checkable:
// a run in check mode must never call Run.
type Runner interface {
	// Run executes a mutating command. dir, when non-empty, is the working
	// directory for the child process.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Capture executes a read-only query and returns its stdout.
	Capture(ctx context.Context, name string, args ...string) (string, error)
	// LookPath reports the full path of name when installed on the host.
	LookPath(name string) (string, error)
}

// Executor provides a consistent interface for executing commands.
// Children are isolated in their own process group so that a cancelled
// context can kill the whole tree.
type Executor struct{}

func NewExecutor() *Executor {
	return &Executor{}
}

// Run executes the given command, wiring up stdio and watching for cancel.
func (e *Executor) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	// stderr streams to the terminal and is kept for the error message
	var stderr bytes.Buffer
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	cmd.Env = os.Environ()

	// isolate process group for context-based cleanup
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	pgid := cmd.Process.Pid

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			syscall.Kill(-pgid, syscall.SIGKILL)
		case <-done:
		}
	}()

	if waitErr := cmd.Wait(); waitErr != nil {
		if ctx.Err() != nil {
			time.Sleep(100 * time.Millisecond)
			return fmt.Errorf("command aborted: %v", ctx.Err())
		}
		return &CommandError{Cmd: name, ExitCode: exitCode(waitErr), Stderr: stderr.String()}
	}
	return nil
}

// Capture executes a read-only command and returns its stdout. A non-zero
// exit surfaces as a *CommandError carrying the captured stderr; callers
// probing for state (is this package installed?) treat that as a negative
// answer rather than a failure.
func (e *Executor) Capture(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{Cmd: name, ExitCode: exitCode(err), Stderr: stderr.String()}
	}
	return stdout.String(), nil
}

func (e *Executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
