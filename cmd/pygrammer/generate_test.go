package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/overdev/pygrammer/diagnostics"
)

const sampleGrammar = `
.token
	WS ` + "`" + `\s+` + "`" + ` @skip
	INT ` + "`" + `[0-9]+` + "`" + `
.end

.rules
	R: = INT => value;
.end
`

func TestRunFullGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "parser.go")

	if err := runFullGenerate("t.grammar", []byte(sampleGrammar), diagnostics.LevelAll, "main", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), "func Parse(src string, start string)") {
		t.Fatalf("output missing Parse entry point")
	}
}

func TestRunDryRunReportsErrors(t *testing.T) {
	err := runDryRun("t.grammar", []byte(`
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = B;
.end
`), diagnostics.LevelAll)
	if err == nil {
		t.Fatalf("expected error for undefined name")
	}
}

func TestRunDryRunAcceptsValidGrammar(t *testing.T) {
	if err := runDryRun("t.grammar", []byte(sampleGrammar), diagnostics.LevelAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunEmitModelJSON(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "model.json")

	if err := runEmitModelJSON("t.grammar", []byte(sampleGrammar), diagnostics.LevelAll, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), `"first_sets"`) {
		t.Fatalf("model dump missing first_sets: %s", data)
	}
}
