package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		resetFlag(rootCmd, "timeout")
		resetFlag(rootCmd, "log")
		resetFlag(rootCmd, "log-level")
		rootCmd.SetArgs(nil)
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlag(cmd *cobra.Command, name string) {
	if flag := lookupFlag(cmd, name); flag != nil {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.PersistentFlags().Lookup(name)
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

var advisoryWords = map[string]bool{
	"try": true, "should": true, "recommend": true, "consider": true, "please": true,
}

func assertNoAdvisoryLanguage(t *testing.T, lines []string) {
	t.Helper()
	for _, line := range lines {
		words := strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
			return r < 'a' || r > 'z'
		})
		for _, word := range words {
			assert.False(t, advisoryWords[word], "fact line carries advisory language: %q", line)
		}
	}
}

func TestCheckLibraryDirectorySucceeds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\n"), 0o644))
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, dir, "--log", logPath)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out)

	lines := readLog(t, logPath)
	assert.LessOrEqual(t, len(lines), 10)
	assert.Contains(t, lines, "input: dir="+dir)
	assert.Contains(t, lines, "project_type: library")
	assert.Contains(t, lines, "run: not_applicable")
	assertNoAdvisoryLanguage(t, lines)
}

func TestCheckFailingCommand(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "false", "--log", logPath)
	assert.Equal(t, "FAIL\n", out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	lines := readLog(t, logPath)
	assert.Contains(t, lines, "run: exit_code=1")
	assertNoAdvisoryLanguage(t, lines)
}

func TestCheckSucceedingCommand(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "true", "--log", logPath)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out)

	lines := readLog(t, logPath)
	assert.Contains(t, lines, "run: exit_code=0")
}

func TestCheckTimeoutFails(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "sleep 100", "--log", logPath, "--timeout", "300ms")
	assert.Equal(t, "FAIL\n", out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	assert.Contains(t, readLog(t, logPath), "run: timeout")
}

func TestCheckMissingPathFailsWithoutAttempt(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "/no/such/file", "--log", logPath)
	assert.Equal(t, "FAIL\n", out)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	lines := readLog(t, logPath)
	assert.Contains(t, lines, "input: not_found")
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, "run:"), "no attempt fact expected, got %q", line)
	}
}

func TestCheckMissingBinaryFails(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "no-such-binary-envcheck --flag", "--log", logPath)
	assert.Equal(t, "FAIL\n", out)
	require.Error(t, err)

	assert.Contains(t, readLog(t, logPath), "run: not_found")
}

func TestCheckLogNeverExceedsTenLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("print('hi')\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("[project]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\nrequests\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".venv"), 0o755))
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	_, _ = runRoot(t, dir, "--log", logPath, "--timeout", "2s")

	lines := readLog(t, logPath)
	assert.LessOrEqual(t, len(lines), 10)

	// The attempt outcome must survive the line budget.
	found := false
	for _, line := range lines {
		if strings.HasPrefix(line, "run:") {
			found = true
		}
	}
	assert.True(t, found, "attempt fact missing from log: %v", lines)
}

func TestCheckIsIdempotent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	first, err1 := runRoot(t, "true", "--log", logPath)
	second, err2 := runRoot(t, "true", "--log", logPath)
	assert.Equal(t, first, second)
	assert.Equal(t, err1 == nil, err2 == nil)
}

func TestCheckSubcommand(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "envcheck.log")

	out, err := runRoot(t, "check", "true", "--log", logPath)
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS\n", out)
}

func TestCheckRejectsBadLogLevel(t *testing.T) {
	_, err := runRoot(t, "true", "--log-level", "loud")
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "bad flag value is a usage error, not a verdict")
}
