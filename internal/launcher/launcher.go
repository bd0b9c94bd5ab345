// Package launcher performs the single bounded start attempt. The child is
// spawned in its own process group and the group is SIGKILLed when the
// deadline expires, so no descendant outlives the run. Exactly one attempt is
// made per run; a spawn failure is recorded in the outcome, never retried
// with another strategy.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/iambrandonn/envcheck/internal/target"
)

// DefaultTimeout bounds the attempt when no override is configured.
const DefaultTimeout = 3 * time.Second

// Outcome is the observable result of the one attempt. Produced once,
// immutable afterwards.
type Outcome struct {
	ExitCode    *int // set only when the child exited on its own
	TimedOut    bool
	LaunchError string // set when the child never started or was interrupted
	Duration    time.Duration
}

// CommandLine builds the argv and working directory for the chosen strategy.
// interpreter is the resolved runtime binary; when the prober found nothing
// the canonical name is used so the spawn failure surfaces in the outcome.
func CommandLine(t *target.Target, strategy target.StartStrategy, interpreter string) ([]string, string, error) {
	workdir := ""
	if t.Kind == target.KindDirectory {
		workdir = t.Path
	}

	switch strategy {
	case target.DirectExecute:
		if t.Kind == target.KindCommand {
			return t.Command, "", nil
		}
		return []string{t.Entrypoint}, workdir, nil

	case target.PackageManagerInvoke:
		return t.Command, workdir, nil

	case target.InterpreterInvoke:
		if t.Entrypoint == "" {
			return nil, "", fmt.Errorf("interpreter invoke without entrypoint")
		}
		exe := interpreter
		if exe == "" {
			exe = canonicalName(t.Runtime)
		}
		if t.Runtime == target.RuntimeGo {
			return []string{exe, "run", t.Entrypoint}, workdir, nil
		}
		return []string{exe, t.Entrypoint}, workdir, nil
	}
	return nil, "", fmt.Errorf("no command line for strategy %s", strategy)
}

// Run starts argv in its own process group and waits until it exits or the
// timeout elapses. On timeout (or cancellation of ctx) the whole group is
// killed and reaped before Run returns, so the child handle is always
// released on every exit path.
func Run(ctx context.Context, argv []string, workdir string, timeout time.Duration, logger *slog.Logger) *Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workdir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	logger.Debug("starting attempt", "argv", argv, "workdir", workdir, "timeout", timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		logger.Debug("spawn failed", "error", err)
		return &Outcome{
			LaunchError: spawnErrorKind(err),
			Duration:    time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
		duration := time.Since(start)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Debug("attempt timed out", "duration", duration)
			return &Outcome{TimedOut: true, Duration: duration}
		}
		logger.Debug("attempt interrupted", "duration", duration)
		return &Outcome{LaunchError: "interrupted", Duration: duration}

	case err := <-done:
		duration := time.Since(start)
		code := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				logger.Debug("wait failed", "error", err)
				return &Outcome{LaunchError: "wait_error", Duration: duration}
			}
			code = exitErr.ExitCode()
		}
		logger.Debug("attempt exited", "exit_code", code, "duration", duration)
		return &Outcome{ExitCode: &code, Duration: duration}
	}
}

func spawnErrorKind(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return "not_found"
	case errors.Is(err, os.ErrPermission):
		return "permission_denied"
	}
	return "spawn_error"
}

func canonicalName(rt target.Runtime) string {
	switch rt {
	case target.RuntimePython:
		return "python3"
	case target.RuntimeNode:
		return "node"
	case target.RuntimeBash:
		return "bash"
	case target.RuntimeGo:
		return "go"
	}
	return string(rt)
}
