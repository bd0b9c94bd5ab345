// Package target classifies the single CLI input into a file, directory, or
// command target and selects the start strategy for it. Classification is a
// pure inspection pass: it reads the filesystem but never modifies it, and
// the same input against the same tree always yields the same result.
package target

import (
	"errors"
)

// Kind identifies what the input resolved to.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "dir"
	KindCommand   Kind = "command"
)

// Runtime names the interpreter family needed to start the target.
type Runtime string

const (
	RuntimePython  Runtime = "python"
	RuntimeNode    Runtime = "node"
	RuntimeBash    Runtime = "bash"
	RuntimeGo      Runtime = "go"
	RuntimeUnknown Runtime = "unknown"
)

// ProjectType distinguishes runnable applications from library-only projects.
type ProjectType string

const (
	ProjectApp     ProjectType = "app"
	ProjectLibrary ProjectType = "library"
	ProjectUnknown ProjectType = "unknown"
)

// StartStrategy is the single mechanism chosen to attempt starting the
// target. Exactly one strategy is ever attempted; the candidate list returned
// by Classify is informational and never retried.
type StartStrategy string

const (
	DirectExecute        StartStrategy = "direct_execute"
	InterpreterInvoke    StartStrategy = "interpreter_invoke"
	PackageManagerInvoke StartStrategy = "package_manager_invoke"
	NotApplicable        StartStrategy = "not_applicable"
)

// Target is the classified input. Immutable once returned by Classify.
type Target struct {
	Kind        Kind
	Path        string   // absolute path for file/dir inputs
	Entrypoint  string   // absolute path of the file to start, if any
	Command     []string // argv for command inputs and PackageManagerInvoke
	Runtime     Runtime
	ProjectType ProjectType
	Executable  bool // entrypoint has an executable bit set
}

// ErrInvalidTarget marks inputs that cannot be classified into anything
// startable. It maps straight to a FAIL verdict with no launch attempt.
var ErrInvalidTarget = errors.New("invalid target")

// InvalidTargetError wraps ErrInvalidTarget together with the fact line that
// describes why classification rejected the input.
type InvalidTargetError struct {
	Fact string
}

func (e *InvalidTargetError) Error() string { return e.Fact }

func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }
