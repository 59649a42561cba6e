package codegen

import (
	"strings"
	"testing"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/gparse"
	"github.com/overdev/pygrammer/resolve"
	"github.com/overdev/pygrammer/source"
)

func compileGrammar(t *testing.T, text string) (string, error) {
	t.Helper()
	g, err := gparse.Parse(source.New("t", []byte(text)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	sink := diagnostics.New(new(strings.Builder), diagnostics.LevelAll)
	fs, err := resolve.Run(g, sink)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	gen, err := New(Options{PackageName: "main"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return gen.Generate(g, fs)
}

func TestGenerateTokensAndSkip(t *testing.T) {
	src, err := compileGrammar(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	NUM `+"`"+`[0-9]+`+"`"+`
.end

.rules
	R: = NUM => value;
.end
`)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	for _, want := range []string{
		"func (p *parser) skip() {",
		"func (p *parser) is_NUM() bool {",
		"func (p *parser) match_NUM() (string, bool) {",
		"func (p *parser) expect_NUM() string {",
		"tokenPattern_NUM = regexp.MustCompile",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("generated source missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "is_WS") {
		t.Fatalf("skip token WS must not get an is_ helper")
	}
}

func TestGenerateExclusionGroup(t *testing.T) {
	src, err := compileGrammar(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	IDENT `+"`"+`[a-z]+`+"`"+` ^KEYWORDS
.end

.token: KEYWORDS
	`+"`"+`if`+"`"+`
	`+"`"+`else`+"`"+`
.end

.rules
	R: = IDENT => value;
.end
`)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(src, "groupPattern_KEYWORDS") {
		t.Fatalf("generated source missing group pattern:\n%s", src)
	}
	if !strings.Contains(src, "fullMatch(groupPattern_KEYWORDS, text)") {
		t.Fatalf("is_IDENT/match_IDENT missing exclusion check:\n%s", src)
	}
}

func TestGenerateAlternativeGroupAndOptional(t *testing.T) {
	src, err := compileGrammar(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	A `+"`"+`a`+"`"+`
	B `+"`"+`b`+"`"+`
	C `+"`"+`c`+"`"+`
.end

.rules
	R: = A [ B C ] (A|B)+ => _ _ _;
.end
`)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(src, "func (p *parser) match_R_alt0() (interface{}, bool)") {
		t.Fatalf("missing match_R_alt0:\n%s", src)
	}
	altBody := src[strings.Index(src, "func (p *parser) match_R_alt0() (interface{}, bool)"):]
	if end := strings.Index(altBody, "\n}\n"); end >= 0 {
		altBody = altBody[:end]
	}
	if !strings.Contains(altBody, "p.fatalf(") {
		t.Fatalf("optional group hard commitment missing fatalf:\n%s", src)
	}
}

func TestGenerateKeyCollapseAndScope(t *testing.T) {
	src, err := compileGrammar(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	NAME `+"`"+`[a-z]+`+"`"+`
.end

.rules
	Decl: @{scope: vars, declare: name} = NAME => name;
	Ref: @{key: value} = NAME => value;
.end
`)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(src, "p.pushScope()") || !strings.Contains(src, "p.popScope()") {
		t.Fatalf("scope push/pop missing:\n%s", src)
	}
	if !strings.Contains(src, "p.declare(fmt.Sprint(dv), node)") {
		t.Fatalf("declare lowering missing:\n%s", src)
	}
	if !strings.Contains(src, `if len(node.Fields) == 1 {`) || !strings.Contains(src, `if kv, ok := node.Fields["value"]; ok {`) {
		t.Fatalf("key collapse is missing its runtime single-field guard:\n%s", src)
	}
}

func TestGenerateEntryPointDispatchesByStartRule(t *testing.T) {
	src, err := compileGrammar(t, `
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	start: R;
	R: = A => value;
.end
`)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(src, `case "R":`) {
		t.Fatalf("entry point missing case for R:\n%s", src)
	}
	if !strings.Contains(src, `start := flag.String("start", "R", "start rule")`) {
		t.Fatalf("template start default not filled in:\n%s", src)
	}
}
