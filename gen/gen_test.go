package gen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/overdev/pygrammer/diagnostics"
)

const validGrammar = `
.token
	WS ` + "`" + `\s+` + "`" + ` @skip
	INT ` + "`" + `[0-9]+` + "`" + `
	PLUS ` + "`" + `\+` + "`" + `
.end

.rules
	start: Sum;

	Sum: @{key: value} = Term ( PLUS Term )* => value _;
	Term: = INT => value;
.end
`

func TestRunProducesParserSource(t *testing.T) {
	var buf bytes.Buffer
	res, err := Run("t.grammar", []byte(validGrammar), Options{PackageName: "main", Verbosity: diagnostics.LevelAll}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v\ndiagnostics:\n%s", err, buf.String())
	}
	if !strings.Contains(res.Source, "func Parse(src string, start string)") {
		t.Fatalf("generated source missing Parse entry point:\n%s", res.Source)
	}
	if !strings.Contains(res.Source, "func (p *parser) is_Sum() bool") {
		t.Fatalf("generated source missing is_Sum:\n%s", res.Source)
	}
	if !strings.Contains(res.Source, "func (p *parser) match_Term_alt0() (interface{}, bool)") {
		t.Fatalf("generated source missing match_Term_alt0:\n%s", res.Source)
	}
}

func TestRunAbortsOnUndefinedName(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run("t.grammar", []byte(`
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = B;
.end
`), Options{PackageName: "main", Verbosity: diagnostics.LevelAll}, &buf)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort, got %v", err)
	}
}

func TestRunAbortsOnGrammarSyntaxError(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run("t.grammar", []byte(`not a grammar at all`), Options{PackageName: "main", Verbosity: diagnostics.LevelAll}, &buf)
	if err != diagnostics.ErrAborted {
		t.Fatalf("expected abort, got %v", err)
	}
}
