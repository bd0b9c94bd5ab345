// Package cli wires the envcheck command line. The root command with a bare
// target argument is equivalent to 'envcheck check <target>'.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "envcheck <target>",
	Short: "Check whether a target can be started on this host",
	Long: `envcheck classifies a target (file, directory, or command string),
makes exactly one bounded attempt to start it, and reports a binary verdict:
one line on stdout ("SUCCESS" or "FAIL") with exit code 0 or 1. Up to 10
fact lines describing the run are written to the log file.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().Duration("timeout", 0, "Launch attempt timeout (default 3s)")
	rootCmd.PersistentFlags().String("log", "", "Fact log path (default ./envcheck.log)")
	rootCmd.PersistentFlags().String("log-level", "info", "Diagnostic log level (debug, info, warn, error)")
}

// ExitError carries the process exit code mapped from the verdict.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		// Flag or usage error: the verdict protocol never ran.
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}
