// Package diagnostics implements the leveled diagnostics sink shared by
// every stage of the grammar compilation pipeline (spec.md §4.5).
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/overdev/pygrammer/errors"
)

// Level is one of the sink's admission tiers, ordered exactly as spec.md
// §4.5 states: error < warning < success < debug1 < info < debug2 < debug3
// < all. A sink configured at level L admits every diagnostic at or below L
// in this ordering.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelSuccess
	LevelDebug1
	LevelInfo
	LevelDebug2
	LevelDebug3
	LevelAll
)

var levelNames = map[Level]string{
	LevelError: "error", LevelWarning: "warning", LevelSuccess: "success",
	LevelDebug1: "debug1", LevelInfo: "info", LevelDebug2: "debug2",
	LevelDebug3: "debug3", LevelAll: "all",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "unknown"
}

// ParseLevel maps a CLI --verbose argument to a Level.
func ParseLevel(s string) (Level, bool) {
	for l, name := range levelNames {
		if name == s {
			return l, true
		}
	}
	return 0, false
}

// Diagnostic is one recorded message, anchored to an *errors.Error so it
// always carries a code and, when known, a source position.
type Diagnostic struct {
	Level Level
	Err   *errors.Error
}

// ErrAborted is returned by EndPass when the just-finished pass recorded at
// least one error-level diagnostic (spec.md §7: "the first pass that
// records any error aborts the pipeline after completing that pass").
var ErrAborted = fmt.Errorf("pipeline aborted: pass reported one or more errors")

// Sink accumulates diagnostics across passes and renders them to a writer,
// mirroring vovakirdan-surge's cmd/surge diagnose.go graduated-severity
// reporter but driven by explicit Level admission rather than a boolean
// verbose flag.
type Sink struct {
	threshold Level
	out       io.Writer
	all       []Diagnostic
	pass      []Diagnostic
}

// New creates a Sink that renders to out, admitting diagnostics at or below
// threshold.
func New(out io.Writer, threshold Level) *Sink {
	return &Sink{threshold: threshold, out: out}
}

// Emit records a diagnostic whatever its level, and immediately renders it
// to the sink's writer when its level is admitted by the sink's threshold.
func (s *Sink) Emit(level Level, err *errors.Error) {
	d := Diagnostic{Level: level, Err: err}
	s.pass = append(s.pass, d)
	s.all = append(s.all, d)
	if level <= s.threshold {
		s.render(d)
	}
}

// HasErrors reports whether the current (not-yet-ended) pass has recorded
// any error-level diagnostic.
func (s *Sink) HasErrors() bool {
	for _, d := range s.pass {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// EndPass closes out the current pass, returning ErrAborted if it recorded
// any error. The pass buffer is cleared either way so the next pass starts
// clean.
func (s *Sink) EndPass() error {
	aborted := s.HasErrors()
	s.pass = nil
	if aborted {
		return ErrAborted
	}
	return nil
}

// All returns every diagnostic recorded across every pass so far, in order.
func (s *Sink) All() []Diagnostic { return s.all }

func (s *Sink) render(d Diagnostic) {
	tag, colorFn := s.tagAndColor(d.Level)
	fmt.Fprintln(s.out, colorFn(fmt.Sprintf("[%s] %s", tag, d.Err.Error())))
}

func (s *Sink) tagAndColor(level Level) (string, func(...interface{}) string) {
	switch level {
	case LevelError:
		return "error", color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelWarning:
		return "warning", color.New(color.FgYellow).SprintFunc()
	case LevelSuccess:
		return "success", color.New(color.FgGreen).SprintFunc()
	case LevelInfo:
		return "info", color.New(color.FgCyan).SprintFunc()
	default:
		return level.String(), color.New(color.Faint).SprintFunc()
	}
}
