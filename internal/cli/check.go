package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iambrandonn/envcheck/internal/config"
	"github.com/iambrandonn/envcheck/internal/factlog"
	"github.com/iambrandonn/envcheck/internal/launcher"
	"github.com/iambrandonn/envcheck/internal/probe"
	"github.com/iambrandonn/envcheck/internal/target"
	"github.com/iambrandonn/envcheck/internal/verdict"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <target>",
	Short: "Run the detection and single-attempt launch protocol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	level, err := parseLogLevel(flagString(cmd, "log-level"))
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), level).With("run_id", uuid.NewString())

	cfg := config.Default()
	if timeout := flagDuration(cmd, "timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}
	if path := flagString(cmd, "log"); path != "" {
		cfg.LogPath = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := factlog.New(cfg.MaxLogLines)
	log.AddFact(probe.Platform())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	t, strategy, candidates, err := target.Classify(args[0])
	if err != nil {
		var invalid *target.InvalidTargetError
		if errors.As(err, &invalid) {
			log.Add(factlog.PriorityTarget, "%s", invalid.Fact)
		}
		for _, f := range probe.Workspace() {
			log.AddFact(f)
		}
		logger.Debug("classification rejected input", "error", err)
		return finish(cmd, cfg, log, verdict.Fail, logger)
	}

	addTargetFacts(log, t, strategy)
	logger.Debug("classified target",
		"kind", t.Kind, "strategy", strategy, "candidates", candidates)

	interpreter, facts := probe.Project(ctx, t, cfg.VersionProbeTimeout)
	for _, f := range facts {
		log.AddFact(f)
	}
	for _, f := range probe.Workspace() {
		log.AddFact(f)
	}

	var outcome *launcher.Outcome
	if strategy == target.NotApplicable {
		log.Add(factlog.PriorityAttempt, "run: not_applicable")
	} else {
		argv, workdir, err := launcher.CommandLine(t, strategy, interpreter)
		if err != nil {
			log.Add(factlog.PriorityAttempt, "run: no_command_line")
			logger.Debug("no command line for target", "error", err)
			return finish(cmd, cfg, log, verdict.Fail, logger)
		}
		outcome = launcher.Run(ctx, argv, workdir, cfg.Timeout, logger)
		addOutcomeFacts(log, outcome)
	}

	return finish(cmd, cfg, log, verdict.Resolve(strategy, outcome), logger)
}

// finish writes the fact log, then prints the verdict line, then maps the
// verdict to the exit code. A log write failure goes to stderr and never
// changes the verdict or exit code.
func finish(cmd *cobra.Command, cfg *config.Config, log *factlog.Log, v verdict.Verdict, logger *slog.Logger) error {
	if err := log.Write(cfg.LogPath); err != nil {
		logger.Error("fact log write failed", "error", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(v))
	if code := v.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func addTargetFacts(log *factlog.Log, t *target.Target, strategy target.StartStrategy) {
	switch t.Kind {
	case target.KindCommand:
		log.Add(factlog.PriorityTarget, "input: command=%s", commandSummary(t.Command))
	case target.KindFile:
		log.Add(factlog.PriorityTarget, "input: file=%s", t.Path)
		log.Add(factlog.PriorityTarget, "executable: %s", yesNo(t.Executable))
	case target.KindDirectory:
		log.Add(factlog.PriorityTarget, "input: dir=%s", t.Path)
		if t.Entrypoint != "" {
			log.Add(factlog.PriorityTarget, "entrypoint: %s", filepath.Base(t.Entrypoint))
		} else {
			log.Add(factlog.PriorityTarget, "entrypoint: none")
		}
	}
	if t.ProjectType != target.ProjectUnknown {
		log.Add(factlog.PriorityTarget, "project_type: %s", t.ProjectType)
	}
	log.Add(factlog.PriorityTarget, "strategy: %s", strategy)
}

func addOutcomeFacts(log *factlog.Log, outcome *launcher.Outcome) {
	switch {
	case outcome.TimedOut:
		log.Add(factlog.PriorityAttempt, "run: timeout")
	case outcome.LaunchError != "":
		log.Add(factlog.PriorityAttempt, "run: %s", outcome.LaunchError)
	case outcome.ExitCode != nil:
		log.Add(factlog.PriorityAttempt, "run: exit_code=%d", *outcome.ExitCode)
	}
	log.Add(factlog.PriorityExtra, "run_duration_ms: %d", outcome.Duration.Milliseconds())
}

func commandSummary(argv []string) string {
	const head = 6
	if len(argv) > head {
		return strings.Join(argv[:head], " ") + " ..."
	}
	return strings.Join(argv, " ")
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func flagString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return value
}

func flagDuration(cmd *cobra.Command, name string) time.Duration {
	value, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return 0
	}
	return value
}
