package target

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// entrypointPatterns is the discovery priority for directory inputs. The
// first existing name wins; after that the first sorted glob match per
// extension is used.
var entrypointPatterns = []string{
	"main.py", "run.py", "app.py",
	"index.js", "main.js",
	"run.sh", "main.sh",
	"main.go",
}

var entrypointGlobs = []string{"*.sh", "*.js", "*.go"}

// Classify inspects the raw input and returns the immutable Target, the
// strategy to attempt, and the ordered informational candidate list.
//
// Precedence is deterministic: path existence is checked before command
// tokenization. An input that exists on disk is always a file or directory
// target. A non-existent input that still looks like a path (contains a
// separator or starts with '.' or '~') names something that is not there and
// is rejected rather than reinterpreted as a command.
func Classify(input string) (*Target, StartStrategy, []StartStrategy, error) {
	raw := strings.TrimSpace(input)
	if unquoted, wrapped := stripQuotes(raw); wrapped && pathExists(unquoted) {
		raw = unquoted
	}

	if info, err := os.Stat(raw); err == nil {
		abs, absErr := filepath.Abs(raw)
		if absErr != nil {
			abs = raw
		}
		if info.IsDir() {
			return classifyDirectory(abs)
		}
		return classifyFile(abs, info.Mode())
	}

	if looksLikePath(raw) {
		return nil, NotApplicable, nil, &InvalidTargetError{Fact: "input: not_found"}
	}

	argv, err := SplitWords(raw)
	if err != nil {
		return nil, NotApplicable, nil, &InvalidTargetError{Fact: "command: parse_error"}
	}
	if len(argv) == 0 {
		return nil, NotApplicable, nil, &InvalidTargetError{Fact: "command: empty"}
	}

	t := &Target{
		Kind:        KindCommand,
		Command:     argv,
		Runtime:     runtimeFromCommand(argv),
		ProjectType: ProjectApp,
	}
	return t, DirectExecute, []StartStrategy{DirectExecute}, nil
}

func classifyDirectory(dir string) (*Target, StartStrategy, []StartStrategy, error) {
	entrypoint := findEntrypoint(dir)

	if script := startScript(dir); script {
		t := &Target{
			Kind:        KindDirectory,
			Path:        dir,
			Entrypoint:  entrypoint,
			Command:     []string{"npm", "start"},
			Runtime:     RuntimeNode,
			ProjectType: ProjectApp,
		}
		candidates := []StartStrategy{PackageManagerInvoke}
		if entrypoint != "" {
			candidates = append(candidates, InterpreterInvoke)
		}
		return t, PackageManagerInvoke, candidates, nil
	}

	if entrypoint != "" {
		rt := runtimeFromFile(entrypoint)
		exec := hasExecBit(entrypoint)
		t := &Target{
			Kind:        KindDirectory,
			Path:        dir,
			Entrypoint:  entrypoint,
			Runtime:     rt,
			ProjectType: ProjectApp,
			Executable:  exec,
		}
		if rt == RuntimeUnknown {
			return nil, NotApplicable, nil, &InvalidTargetError{Fact: "runtime: unknown"}
		}
		candidates := []StartStrategy{InterpreterInvoke}
		if exec {
			candidates = append(candidates, DirectExecute)
		}
		return t, InterpreterInvoke, candidates, nil
	}

	if rt, ok := libraryMarker(dir); ok {
		t := &Target{
			Kind:        KindDirectory,
			Path:        dir,
			Runtime:     rt,
			ProjectType: ProjectLibrary,
		}
		return t, NotApplicable, []StartStrategy{NotApplicable}, nil
	}

	return nil, NotApplicable, nil, &InvalidTargetError{Fact: "project_type: unknown"}
}

func classifyFile(path string, mode os.FileMode) (*Target, StartStrategy, []StartStrategy, error) {
	rt := runtimeFromFile(path)
	exec := mode.Perm()&0o111 != 0

	t := &Target{
		Kind:        KindFile,
		Path:        path,
		Entrypoint:  path,
		Runtime:     rt,
		ProjectType: ProjectApp,
		Executable:  exec,
	}

	if exec {
		candidates := []StartStrategy{DirectExecute}
		if rt != RuntimeUnknown {
			candidates = append(candidates, InterpreterInvoke)
		}
		return t, DirectExecute, candidates, nil
	}
	if rt == RuntimeUnknown {
		return nil, NotApplicable, nil, &InvalidTargetError{Fact: "runtime: unknown"}
	}
	return t, InterpreterInvoke, []StartStrategy{InterpreterInvoke}, nil
}

func findEntrypoint(dir string) string {
	for _, name := range entrypointPatterns {
		candidate := filepath.Join(dir, name)
		if isFile(candidate) {
			return candidate
		}
	}
	for _, pattern := range entrypointGlobs {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if isFile(m) {
				return m
			}
		}
	}
	return ""
}

// libraryMarker reports the runtime implied by the first manifest marker
// found, in fixed order so classification is deterministic.
func libraryMarker(dir string) (Runtime, bool) {
	if isFile(filepath.Join(dir, "package.json")) {
		return RuntimeNode, true
	}
	if isFile(filepath.Join(dir, "pyproject.toml")) || hasAnyPython(dir) {
		return RuntimePython, true
	}
	if isFile(filepath.Join(dir, "go.mod")) {
		return RuntimeGo, true
	}
	if isFile(filepath.Join(dir, "Cargo.toml")) {
		return RuntimeUnknown, true
	}
	return RuntimeUnknown, false
}

// startScript reports whether dir carries a package.json with a non-empty
// "start" script, which makes the directory startable via the package
// manager regardless of entrypoint files.
func startScript(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false
	}
	return strings.TrimSpace(manifest.Scripts["start"]) != ""
}

func runtimeFromFile(path string) Runtime {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return RuntimePython
	case ".js":
		return RuntimeNode
	case ".sh":
		return RuntimeBash
	case ".go":
		return RuntimeGo
	}
	return runtimeFromShebang(path)
}

func runtimeFromShebang(path string) Runtime {
	f, err := os.Open(path)
	if err != nil {
		return RuntimeUnknown
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return RuntimeUnknown
	}
	first := strings.TrimSpace(scanner.Text())
	if !strings.HasPrefix(first, "#!") {
		return RuntimeUnknown
	}
	switch {
	case strings.Contains(first, "python"):
		return RuntimePython
	case strings.Contains(first, "node"):
		return RuntimeNode
	case strings.Contains(first, "bash"), strings.Contains(first, "/sh"):
		return RuntimeBash
	}
	return RuntimeUnknown
}

func runtimeFromCommand(argv []string) Runtime {
	head := strings.ToLower(filepath.Base(argv[0]))
	switch head {
	case "python", "python3", "py":
		return RuntimePython
	case "node":
		return RuntimeNode
	case "bash", "sh":
		return RuntimeBash
	case "go":
		return RuntimeGo
	}
	return RuntimeUnknown
}

func stripQuotes(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return raw, false
}

func looksLikePath(raw string) bool {
	return strings.ContainsRune(raw, filepath.Separator) ||
		strings.HasPrefix(raw, ".") ||
		strings.HasPrefix(raw, "~")
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func hasAnyPython(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.py"))
	return err == nil && len(matches) > 0
}

func hasExecBit(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().Perm()&0o111 != 0
}
