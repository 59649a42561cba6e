package diagnostics

import (
	"bytes"
	"testing"

	"github.com/overdev/pygrammer/errors"
)

func TestLevelOrdering(t *testing.T) {
	if !(LevelError < LevelWarning && LevelWarning < LevelSuccess && LevelSuccess < LevelDebug1 &&
		LevelDebug1 < LevelInfo && LevelInfo < LevelDebug2 && LevelDebug2 < LevelDebug3 && LevelDebug3 < LevelAll) {
		t.Fatal("level ordering does not match spec.md §4.5")
	}
}

func TestEmitRespectsThreshold(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, LevelWarning)
	s.Emit(LevelError, errors.Format(errors.SyntaxErrors, "boom"))
	s.Emit(LevelInfo, errors.Format(errors.SyntaxErrors, "quiet"))
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("boom")) {
		t.Fatalf("expected error to render, got %q", out)
	}
	if bytes.Contains([]byte(out), []byte("quiet")) {
		t.Fatalf("info should not render at warning threshold, got %q", out)
	}
}

func TestEndPassAbortsOnError(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, LevelAll)
	s.Emit(LevelWarning, errors.Format(errors.SyntaxErrors, "just a warning"))
	if err := s.EndPass(); err != nil {
		t.Fatalf("warning-only pass should not abort: %v", err)
	}
	s.Emit(LevelError, errors.Format(errors.SyntaxErrors, "fatal"))
	if err := s.EndPass(); err != ErrAborted {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestHasErrorsResetsPerPass(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, LevelAll)
	s.Emit(LevelError, errors.Format(errors.SyntaxErrors, "fatal"))
	s.EndPass()
	if s.HasErrors() {
		t.Fatal("HasErrors should reset after EndPass")
	}
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("warning")
	if !ok || l != LevelWarning {
		t.Fatalf("expected warning, got %v %v", l, ok)
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Fatal("expected ParseLevel to reject unknown level")
	}
}
