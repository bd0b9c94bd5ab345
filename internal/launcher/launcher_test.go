package launcher

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iambrandonn/envcheck/internal/target"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCleanExit(t *testing.T) {
	outcome := Run(context.Background(), []string{"true"}, "", time.Second, testLogger())

	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 0, *outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
	assert.Empty(t, outcome.LaunchError)
}

func TestRunNonZeroExit(t *testing.T) {
	outcome := Run(context.Background(), []string{"false"}, "", time.Second, testLogger())

	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 1, *outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
}

func TestRunTimeoutKillsChild(t *testing.T) {
	start := time.Now()
	outcome := Run(context.Background(), []string{"sleep", "100"}, "", 200*time.Millisecond, testLogger())

	assert.True(t, outcome.TimedOut)
	assert.Nil(t, outcome.ExitCode)
	// The child must be reaped promptly, not after its own 100s sleep.
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunTimeoutKillsProcessGroup(t *testing.T) {
	// The shell spawns a grandchild; the group kill must take both down.
	outcome := Run(context.Background(),
		[]string{"sh", "-c", "sleep 100 & wait"}, "", 200*time.Millisecond, testLogger())

	assert.True(t, outcome.TimedOut)
}

func TestRunMissingBinary(t *testing.T) {
	outcome := Run(context.Background(), []string{"no-such-binary-envcheck"}, "", time.Second, testLogger())

	assert.Equal(t, "not_found", outcome.LaunchError)
	assert.Nil(t, outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	outcome := Run(ctx, []string{"sleep", "100"}, "", time.Minute, testLogger())

	assert.False(t, outcome.TimedOut)
	assert.Equal(t, "interrupted", outcome.LaunchError)
}

func TestRunUsesWorkdir(t *testing.T) {
	dir := t.TempDir()
	outcome := Run(context.Background(), []string{"sh", "-c", "test \"$(pwd)\" = \"$0\"", dir}, dir, time.Second, testLogger())

	require.NotNil(t, outcome.ExitCode)
	assert.Equal(t, 0, *outcome.ExitCode)
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name        string
		target      *target.Target
		strategy    target.StartStrategy
		interpreter string
		wantArgv    []string
		wantDir     string
	}{
		{
			name: "command direct execute",
			target: &target.Target{
				Kind:    target.KindCommand,
				Command: []string{"echo", "hi"},
			},
			strategy: target.DirectExecute,
			wantArgv: []string{"echo", "hi"},
		},
		{
			name: "executable file direct execute",
			target: &target.Target{
				Kind:       target.KindFile,
				Path:       "/tmp/run.sh",
				Entrypoint: "/tmp/run.sh",
			},
			strategy: target.DirectExecute,
			wantArgv: []string{"/tmp/run.sh"},
		},
		{
			name: "interpreter invoke",
			target: &target.Target{
				Kind:       target.KindFile,
				Entrypoint: "/tmp/app.py",
				Runtime:    target.RuntimePython,
			},
			strategy:    target.InterpreterInvoke,
			interpreter: "/usr/bin/python3",
			wantArgv:    []string{"/usr/bin/python3", "/tmp/app.py"},
		},
		{
			name: "go run invoke",
			target: &target.Target{
				Kind:       target.KindDirectory,
				Path:       "/proj",
				Entrypoint: "/proj/main.go",
				Runtime:    target.RuntimeGo,
			},
			strategy:    target.InterpreterInvoke,
			interpreter: "/usr/local/go/bin/go",
			wantArgv:    []string{"/usr/local/go/bin/go", "run", "/proj/main.go"},
			wantDir:     "/proj",
		},
		{
			name: "missing interpreter falls back to canonical name",
			target: &target.Target{
				Kind:       target.KindFile,
				Entrypoint: "/tmp/app.js",
				Runtime:    target.RuntimeNode,
			},
			strategy: target.InterpreterInvoke,
			wantArgv: []string{"node", "/tmp/app.js"},
		},
		{
			name: "package manager invoke",
			target: &target.Target{
				Kind:    target.KindDirectory,
				Path:    "/proj",
				Command: []string{"npm", "start"},
				Runtime: target.RuntimeNode,
			},
			strategy: target.PackageManagerInvoke,
			wantArgv: []string{"npm", "start"},
			wantDir:  "/proj",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, dir, err := CommandLine(tt.target, tt.strategy, tt.interpreter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgv, argv)
			assert.Equal(t, tt.wantDir, dir)
		})
	}
}

func TestCommandLineInterpreterInvokeNeedsEntrypoint(t *testing.T) {
	_, _, err := CommandLine(&target.Target{Kind: target.KindDirectory}, target.InterpreterInvoke, "")
	require.Error(t, err)
}
