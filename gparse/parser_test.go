package gparse

import (
	"testing"

	"github.com/overdev/pygrammer/model"
	"github.com/overdev/pygrammer/source"
)

func mustParse(t *testing.T, text string) *model.Grammar {
	t.Helper()
	g, err := Parse(source.New("t", []byte(text)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestParseMinimalGrammar(t *testing.T) {
	g := mustParse(t, `
.token
	WS `+"`"+`\s+`+"`"+` @skip
	NUM `+"`"+`[0-9]+`+"`"+`
.end

.rules
	Expr: = NUM => value;
.end
`)
	if len(g.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(g.Tokens))
	}
	if !g.Tokens["WS"].IsSkip() {
		t.Fatal("expected WS to carry @skip")
	}
	rule, ok := g.Rules["Expr"]
	if !ok {
		t.Fatal("expected rule Expr")
	}
	if len(rule.Definitions) != 1 || len(rule.Definitions[0].Items) != 1 {
		t.Fatalf("unexpected rule shape: %+v", rule)
	}
	if rule.NodeKind != "EXPR" {
		t.Fatalf("expected NodeKind EXPR, got %s", rule.NodeKind)
	}
}

func TestParseTokenGroupAndExclusion(t *testing.T) {
	g := mustParse(t, `
.token: KEYWORD
	"if"
	"else"
.end

.token
	IDENT `+"`"+`[a-zA-Z_][a-zA-Z0-9_]*`+"`"+` ^KEYWORD
.end

.rules
	Stmt: = IDENT;
.end
`)
	group, ok := g.TokenGroups["KEYWORD"]
	if !ok || len(group.Members) != 2 {
		t.Fatalf("expected KEYWORD group with 2 members, got %+v", group)
	}
	tok := g.Tokens["IDENT"]
	if len(tok.Exclusions) != 1 || tok.Exclusions[0] != "KEYWORD" {
		t.Fatalf("expected IDENT to exclude KEYWORD, got %+v", tok.Exclusions)
	}
}

func TestParseAlternativeAndOptionalGroups(t *testing.T) {
	g := mustParse(t, `
.token
	A `+"`"+`a`+"`"+`
	B `+"`"+`b`+"`"+`
	C `+"`"+`c`+"`"+`
.end

.rules
	R: = (A B | C)+ [A] => *item;
.end
`)
	rule := g.Rules["R"]
	items := rule.Definitions[0].Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	alt := items[0]
	if alt.Kind != model.InlineGroupItem || alt.Group.Kind != model.Alternative {
		t.Fatalf("expected alternative group, got %+v", alt)
	}
	if alt.Group.Multiplicity != model.OneOrMore {
		t.Fatalf("expected one_or_more, got %v", alt.Group.Multiplicity)
	}
	opt := items[1]
	if opt.Kind != model.InlineGroupItem || opt.Group.Kind != model.Optional {
		t.Fatalf("expected optional group, got %+v", opt)
	}
}

func TestParenGroupWithoutMultiplicityIsError(t *testing.T) {
	_, err := Parse(source.New("t", []byte(`
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = (A);
.end
`)))
	if err == nil {
		t.Fatal("expected error for group missing explicit multiplicity")
	}
}

func TestOptionalGroupWithMultiplicityIsError(t *testing.T) {
	_, err := Parse(source.New("t", []byte(`
.token
	A `+"`"+`a`+"`"+`
.end

.rules
	R: = [A]+;
.end
`)))
	if err == nil {
		t.Fatal("expected error for optional group carrying explicit multiplicity")
	}
}

func TestRuleAttributesAndDirectives(t *testing.T) {
	g := mustParse(t, `
.token
	NAME `+"`"+`[a-z]+`+"`"+`
.end

.rules
	start: Block;

	Block: @{ scope: block, merge } = NAME => name;
.end
`)
	if g.StartRule != "Block" {
		t.Fatalf("expected start rule Block, got %q", g.StartRule)
	}
	rule := g.Rules["Block"]
	if !rule.HasScope() || rule.Scope() != "block" {
		t.Fatalf("expected scope: block, got %+v", rule.Attributes)
	}
	if !rule.HasMerge() {
		t.Fatal("expected merge directive")
	}
}

func TestDuplicateTokenNameIsError(t *testing.T) {
	_, err := Parse(source.New("t", []byte(`
.token
	A `+"`"+`a`+"`"+`
	A `+"`"+`b`+"`"+`
.end

.rules
	R: = A;
.end
`)))
	if err == nil {
		t.Fatal("expected duplicate token name error")
	}
}

func TestMissingRulesSectionIsError(t *testing.T) {
	_, err := Parse(source.New("t", []byte(`
.token
	A `+"`"+`a`+"`"+`
.end
`)))
	if err == nil {
		t.Fatal("expected missing .rules section error")
	}
}

func TestNestedCaptureGroup(t *testing.T) {
	g := mustParse(t, `
.token
	A `+"`"+`a`+"`"+`
	B `+"`"+`b`+"`"+`
.end

.rules
	R: = A B => (left right);
.end
`)
	caps := g.Rules["R"].Definitions[0].Captures
	if len(caps) != 1 || len(caps[0].Group) != 2 {
		t.Fatalf("expected one grouped capture with 2 entries, got %+v", caps)
	}
}
