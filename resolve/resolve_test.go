package resolve

import (
	"bytes"
	"testing"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/gparse"
	"github.com/overdev/pygrammer/source"
)

func parseAndResolve(t *testing.T, text string) (*bytes.Buffer, error) {
	t.Helper()
	g, err := gparse.Parse(source.New("t", []byte(text)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	sink := diagnostics.New(&buf, diagnostics.LevelAll)
	_, err = Run(g, sink)
	return &buf, err
}

func TestResolveUndefinedName(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = B;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on undefined name, got %v", err)
	}
}

func TestResolveExpandTokens(t *testing.T) {
	g, err := gparse.Parse(source.New("t", []byte(`
.token
	DIGIT `+"`"+`[0-9]`+"`"+` @internal
	NUM `+"`"+`DIGIT+`+"`"+` @expand
.end

.rules
	R: = NUM;
.end
`)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	sink := diagnostics.New(&buf, diagnostics.LevelAll)
	if _, err := Run(g, sink); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if g.Tokens["NUM"].Expanded != "(?:[0-9])+" {
		t.Fatalf("expected expanded regex, got %q", g.Tokens["NUM"].Expanded)
	}
}

func TestResolveExpandCycleIsError(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`B`+"`"+` @expand
	B `+"`"+`A`+"`"+` @expand
.end

.rules
	R: = A;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on @expand cycle, got %v", err)
	}
}

func TestResolveShortCaptureListLeavesTrailingItemsUncaptured(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+`
	B `+"`"+`b`+"`"+`
.end

.rules
	R: = A B => onlyone;
.end
`)
	if err != nil {
		t.Fatalf("expected a capture list shorter than the item list to be accepted, got %v", err)
	}
}

func TestResolveCaptureCountMismatch(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = A => one two;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort when the capture list has more entries than items, got %v", err)
	}
}

func TestResolveLoadAndParseWithoutStartIsError(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	INCLUDE `+"`"+`[^\s]+\.inc`+"`"+` @loadandparse
.end

.rules
	R: = INCLUDE => value;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on @loadandparse without a grammar-level start directive, got %v", err)
	}
}

func TestResolveLoadAndParseWithStartIsAccepted(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	INCLUDE `+"`"+`[^\s]+\.inc`+"`"+` @loadandparse
.end

.rules
	start: R;
	R: = INCLUDE => value;
.end
`)
	if err != nil {
		t.Fatalf("expected @loadandparse with a grammar-level start directive to be accepted, got %v", err)
	}
}

func TestResolveFlipWithoutKeyIsError(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: @{flip: left} = A => left;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on flip without key, got %v", err)
	}
}

func TestResolveMergeWithKeyIsError(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: @{key: v, merge} = A => v;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on merge combined with key, got %v", err)
	}
}

func TestResolveInternalTokenUsedIsError(t *testing.T) {
	_, err := parseAndResolve(t, `
.token
	A `+"`"+`a`+"`"+` @internal
.end

.rules
	R: = A;
.end
`)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort on @internal token used in rule, got %v", err)
	}
}

func TestResolveValidGrammarNoErrors(t *testing.T) {
	buf, err := parseAndResolve(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	INT `+"`"+`[0-9]+`+"`"+`
.end

.rules
	N: = INT => v;
.end
`)
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput:\n%s", err, buf.String())
	}
}

func TestFirstSetsBottomOutAtTokens(t *testing.T) {
	g, err := gparse.Parse(source.New("t", []byte(`
.token
	A `+"`"+`a`+"`"+`
	B `+"`"+`b`+"`"+`
.end

.rules
	R: = Inner;
	Inner: = A | B;
.end
`)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var buf bytes.Buffer
	sink := diagnostics.New(&buf, diagnostics.LevelAll)
	fs, err := Run(g, sink)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	rFirst := fs.Rules["R"]
	aIdx := fs.TokenIndex["A"]
	bIdx := fs.TokenIndex["B"]
	if !rFirst.Tokens.Contains(aIdx) || !rFirst.Tokens.Contains(bIdx) {
		t.Fatalf("expected R's FIRST set to contain both A and B via Inner")
	}
}
