// Package probe collects read-only facts about the host environment: the
// platform, the interpreter the target needs, and the manifest files around
// it. Probing is best effort: a probe that cannot answer produces an
// absence fact, never an error, so a degraded host still yields a valid
// fact list.
package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/iambrandonn/envcheck/internal/factlog"
	"github.com/iambrandonn/envcheck/internal/target"
)

// DefaultVersionTimeout bounds the interpreter version subprocess.
const DefaultVersionTimeout = 2 * time.Second

const maxVersionLen = 120

// Platform returns the OS/architecture fact.
func Platform() factlog.Fact {
	return factlog.Fact{
		Priority: factlog.PriorityPlatform,
		Text:     "platform: " + runtime.GOOS + "_" + runtime.GOARCH,
	}
}

// Workspace returns the working directory and environment presence facts.
// They rank below runtime and manifest facts in the log ordering.
func Workspace() []factlog.Fact {
	var facts []factlog.Fact
	if wd, err := os.Getwd(); err == nil {
		facts = append(facts, factlog.Fact{
			Priority: factlog.PriorityExtra,
			Text:     "workdir: " + wd,
		})
	}
	facts = append(facts, factlog.Fact{
		Priority: factlog.PriorityExtra,
		Text:     "env_path: " + presence(os.Getenv("PATH") != ""),
	})
	return facts
}

// Project resolves the interpreter for the target's runtime and collects the
// manifest facts around the target. The returned interpreter path is empty
// when the runtime binary is absent from PATH.
func Project(ctx context.Context, t *target.Target, versionTimeout time.Duration) (string, []factlog.Fact) {
	var facts []factlog.Fact

	interpreter := resolveInterpreter(t.Runtime)
	switch {
	case t.Runtime == target.RuntimeUnknown:
	case interpreter == "":
		facts = append(facts, factlog.Fact{
			Priority: factlog.PriorityRuntime,
			Text:     "runtime: missing",
		})
	default:
		facts = append(facts, factlog.Fact{
			Priority: factlog.PriorityRuntime,
			Text:     "runtime_version: " + interpreterVersion(ctx, interpreter, t.Runtime, versionTimeout),
		})
	}

	facts = append(facts, manifestFacts(t)...)
	return interpreter, facts
}

func resolveInterpreter(rt target.Runtime) string {
	lookup := func(names ...string) string {
		for _, name := range names {
			if path, err := exec.LookPath(name); err == nil {
				return path
			}
		}
		return ""
	}
	switch rt {
	case target.RuntimePython:
		return lookup("python3", "python")
	case target.RuntimeNode:
		return lookup("node")
	case target.RuntimeBash:
		return lookup("bash", "sh")
	case target.RuntimeGo:
		return lookup("go")
	}
	return ""
}

func interpreterVersion(ctx context.Context, exe string, rt target.Runtime, timeout time.Duration) string {
	if timeout <= 0 {
		timeout = DefaultVersionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"--version"}
	if rt == target.RuntimeGo {
		args = []string{"version"}
	}
	out, err := exec.CommandContext(ctx, exe, args...).CombinedOutput()
	line := firstLine(string(out))
	if err != nil && line == "" {
		return "error"
	}
	if line == "" {
		return "unknown"
	}
	return line
}

func manifestFacts(t *target.Target) []factlog.Fact {
	base := projectBase(t)
	if base == "" {
		return nil
	}

	var facts []factlog.Fact
	add := func(priority int, text string) {
		facts = append(facts, factlog.Fact{Priority: priority, Text: text})
	}
	filePresent := func(name string) bool {
		info, err := os.Stat(filepath.Join(base, name))
		return err == nil && info.Mode().IsRegular()
	}
	dirPresent := func(name string) bool {
		info, err := os.Stat(filepath.Join(base, name))
		return err == nil && info.IsDir()
	}

	switch t.Runtime {
	case target.RuntimePython:
		add(factlog.PriorityProject, "pyproject: "+presence(filePresent("pyproject.toml")))
		add(factlog.PriorityProject, "requirements_txt: "+presence(filePresent("requirements.txt")))
		venv := dirPresent(".venv") || dirPresent("venv") || dirPresent("env")
		add(factlog.PriorityProject, "venv: "+presence(venv))
		facts = append(facts, requirementsFact(base)...)
	case target.RuntimeNode:
		add(factlog.PriorityProject, "package_json: "+presence(filePresent("package.json")))
		lock := filePresent("package-lock.json") || filePresent("yarn.lock") || filePresent("pnpm-lock.yaml")
		add(factlog.PriorityProject, "lockfile: "+presence(lock))
		add(factlog.PriorityProject, "node_modules: "+presence(dirPresent("node_modules")))
	case target.RuntimeGo:
		add(factlog.PriorityProject, "go_mod: "+presence(filePresent("go.mod")))
	}
	return facts
}

// requirementsFact counts the packages declared in requirements.txt. The
// original import check needs the interpreter itself, so only the declared
// count is recorded.
func requirementsFact(base string) []factlog.Fact {
	path := filepath.Join(base, "requirements.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return []factlog.Fact{{
			Priority: factlog.PriorityExtra,
			Text:     "deps_probe: requirements_read_error",
		}}
	}

	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "-") {
			continue
		}
		if strings.Contains(s, "://") || strings.HasPrefix(s, "git+") {
			continue
		}
		count++
	}
	return []factlog.Fact{{
		Priority: factlog.PriorityExtra,
		Text:     "deps_declared: " + strconv.Itoa(count),
	}}
}

func projectBase(t *target.Target) string {
	if t.Kind == target.KindDirectory && t.Path != "" {
		return t.Path
	}
	if t.Entrypoint != "" {
		return filepath.Dir(t.Entrypoint)
	}
	return ""
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "absent"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	line = strings.TrimSpace(line)
	if len(line) > maxVersionLen {
		line = line[:maxVersionLen]
	}
	return line
}
