// Package factlog implements the bounded fact log written at the end of
// every run. A fact is a single objective observation ("platform:
// linux_amd64", "run: exit_code=0") with no advisory language. The log keeps
// at most a fixed number of lines; when more facts accumulate, the
// lowest-priority, latest-added ones are dropped so the selection is
// deterministic for a given sequence of Add calls.
package factlog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iambrandonn/envcheck/internal/fsutil"
)

// Priority classes, highest first. Dropping starts from the bottom.
const (
	PriorityAttempt  = iota // process outcome: exit code, timeout, spawn error
	PriorityTarget          // classification: input kind, entrypoint, strategy
	PriorityPlatform        // host platform
	PriorityRuntime         // interpreter presence and version
	PriorityProject         // manifest markers near the target
	PriorityExtra           // working directory, env var presence, dep counts
)

// DefaultMaxLines is the line budget for the written log.
const DefaultMaxLines = 10

const maxLineLen = 240

// Fact is a single prioritized log line.
type Fact struct {
	Priority int
	Text     string
}

type entry struct {
	priority int
	seq      int
	text     string
}

// Log accumulates facts during a run. The zero value is not usable; call New.
type Log struct {
	maxLines int
	nextSeq  int
	entries  []entry
}

// New returns a Log that writes at most maxLines lines. A non-positive
// maxLines falls back to DefaultMaxLines.
func New(maxLines int) *Log {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Log{maxLines: maxLines}
}

// Add records a fact line. Newlines are flattened and the line is truncated
// so a single fact can never span multiple log lines.
func (l *Log) Add(priority int, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return
	}
	if len(text) > maxLineLen {
		text = text[:maxLineLen]
	}
	l.entries = append(l.entries, entry{priority: priority, seq: l.nextSeq, text: text})
	l.nextSeq++
}

// AddFact records an already-constructed Fact.
func (l *Log) AddFact(f Fact) {
	l.Add(f.Priority, "%s", f.Text)
}

// Lines returns the selected lines in insertion order. Selection keeps the
// highest-priority facts; within one priority class earlier facts win.
func (l *Log) Lines() []string {
	selected := make([]entry, len(l.entries))
	copy(selected, l.entries)
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].priority < selected[j].priority
	})
	if len(selected) > l.maxLines {
		selected = selected[:l.maxLines]
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].seq < selected[j].seq
	})
	lines := make([]string, 0, len(selected))
	for _, e := range selected {
		lines = append(lines, e.text)
	}
	return lines
}

// Write overwrites the log file at path with the selected lines. The log
// reflects only the most recent run. An empty log produces an empty file.
func (l *Log) Write(path string) error {
	lines := l.Lines()
	var data []byte
	if len(lines) > 0 {
		data = []byte(strings.Join(lines, "\n") + "\n")
	}
	if err := fsutil.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("write fact log %s: %w", path, err)
	}
	return nil
}
