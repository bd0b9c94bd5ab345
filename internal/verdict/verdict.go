// Package verdict maps a start strategy and attempt outcome to the binary
// SUCCESS/FAIL result. Resolve is pure and total: every (strategy, outcome)
// pair in its domain maps to exactly one verdict, with no partial states.
package verdict

import (
	"github.com/iambrandonn/envcheck/internal/launcher"
	"github.com/iambrandonn/envcheck/internal/target"
)

// Verdict is the binary result of a run.
type Verdict string

const (
	Success Verdict = "SUCCESS"
	Fail    Verdict = "FAIL"
)

// ExitCode maps the verdict to the process exit code.
func (v Verdict) ExitCode() int {
	if v == Success {
		return 0
	}
	return 1
}

// Resolve derives the verdict. A NotApplicable strategy means the target has
// no runnable entry point and is trivially startable. Otherwise the outcome
// decides: timeout and spawn failure are FAIL, exit code zero is SUCCESS,
// anything else is FAIL.
func Resolve(strategy target.StartStrategy, outcome *launcher.Outcome) Verdict {
	if strategy == target.NotApplicable {
		return Success
	}
	if outcome == nil {
		return Fail
	}
	if outcome.TimedOut || outcome.LaunchError != "" {
		return Fail
	}
	if outcome.ExitCode != nil && *outcome.ExitCode == 0 {
		return Success
	}
	return Fail
}
