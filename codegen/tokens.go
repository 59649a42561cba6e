package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/overdev/pygrammer/model"
)

func sanitize(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func tokenPatternVar(name string) string { return "tokenPattern_" + sanitize(name) }
func groupPatternVar(name string) string { return "groupPattern_" + sanitize(name) }

func tokenRegex(t *model.Token) string {
	if t.Expanded != "" {
		return t.Expanded
	}
	return t.Regex
}

// genTokenTable emits one compiled *regexp.Regexp per non-internal token
// (anchored at the current cursor, per spec.md §4.4 "Token table") and one
// per TokenGroup (used both by group-ref items and by exclusion checks).
func genTokenTable(g *model.Grammar) string {
	var b strings.Builder
	b.WriteString("var (\n")
	for _, name := range g.TokenOrder {
		t := g.Tokens[name]
		if t.IsInternal() {
			continue
		}
		fmt.Fprintf(&b, "\t%s = regexp.MustCompile(`^(?:%s)`)\n", tokenPatternVar(name), tokenRegex(t))
	}
	for _, name := range g.GroupOrder {
		group := g.TokenGroups[name]
		fmt.Fprintf(&b, "\t%s = regexp.MustCompile(`^(?:%s)`)\n", groupPatternVar(name), strings.Join(group.Members, "|"))
	}
	b.WriteString(")\n")
	return b.String()
}

// genSkipFunc emits the single skip routine (spec.md §4.4 "Skip routine"):
// repeatedly consume any skip-token pattern at the cursor.
func genSkipFunc(g *model.Grammar) string {
	var b strings.Builder
	b.WriteString("func (p *parser) skip() {\n\tfor {\n\t\tmatched := false\n")
	for _, name := range g.TokenOrder {
		t := g.Tokens[name]
		if !t.IsSkip() {
			continue
		}
		fmt.Fprintf(&b, "\t\tif loc := %s.FindStringIndex(p.src[p.pos:]); loc != nil {\n", tokenPatternVar(name))
		b.WriteString("\t\t\tp.advance(loc[1])\n\t\t\tmatched = true\n\t\t\tcontinue\n\t\t}\n")
	}
	b.WriteString("\t\tif !matched {\n\t\t\treturn\n\t\t}\n\t}\n}\n")
	return b.String()
}

func excludedByAny(t *model.Token) []string {
	return t.Exclusions
}

// genTokenHelpers emits is_/match_/expect_ for every token that is neither
// @internal (expansion-only) nor @skip (consumed only by skip()). Tokens
// carrying the path-normalization decorators (relfilepath/absfilepath/
// reldirpath/absdirpath/ensurerelative/ensureabsolute), @classify, or
// @loadandparse get their match_* bodies extended per spec.md §3/§4.4; a
// @loadandparse token's match_* returns the recursively parsed sub-AST
// instead of a string, so its signature widens to (interface{}, bool).
func genTokenHelpers(g *model.Grammar) string {
	var b strings.Builder
	for _, name := range g.TokenOrder {
		t := g.Tokens[name]
		if t.IsInternal() || t.IsSkip() {
			continue
		}
		fn := sanitize(name)
		pat := tokenPatternVar(name)

		fmt.Fprintf(&b, "func (p *parser) is_%s() bool {\n\tp.skip()\n", fn)
		fmt.Fprintf(&b, "\tloc := %s.FindStringIndex(p.src[p.pos:])\n\tif loc == nil {\n\t\treturn false\n\t}\n", pat)
		if len(excludedByAny(t)) > 0 {
			b.WriteString("\ttext := p.src[p.pos : p.pos+loc[1]]\n")
			for _, ex := range excludedByAny(t) {
				fmt.Fprintf(&b, "\tif fullMatch(%s, text) {\n\t\treturn false\n\t}\n", groupPatternVar(ex))
			}
		}
		b.WriteString("\treturn true\n}\n\n")

		resultType, zeroResult := "string", `""`
		if t.HasDecorator(model.DecLoadAndParse) {
			resultType, zeroResult = "interface{}", "nil"
		}

		fmt.Fprintf(&b, "func (p *parser) match_%s() (%s, bool) {\n\tp.skip()\n", fn, resultType)
		if t.Classify != "" {
			b.WriteString("\tstartLine, startCol := p.line, p.col\n")
		}
		fmt.Fprintf(&b, "\tloc := %s.FindStringSubmatchIndex(p.src[p.pos:])\n\tif loc == nil {\n\t\treturn %s, false\n\t}\n", pat, zeroResult)
		b.WriteString("\ttext := p.src[p.pos : p.pos+loc[1]]\n")
		if len(excludedByAny(t)) > 0 {
			for _, ex := range excludedByAny(t) {
				fmt.Fprintf(&b, "\tif fullMatch(%s, text) {\n\t\treturn %s, false\n\t}\n", groupPatternVar(ex), zeroResult)
			}
		}
		if t.GroupIndex > 0 {
			fmt.Fprintf(&b, "\tvalue := \"\"\n\tif len(loc) > %d && loc[%d] >= 0 {\n\t\tvalue = p.src[p.pos+loc[%d] : p.pos+loc[%d]]\n\t}\n",
				2*t.GroupIndex+1, 2*t.GroupIndex, 2*t.GroupIndex, 2*t.GroupIndex+1)
		} else {
			b.WriteString("\tvalue := text\n")
		}
		b.WriteString("\tp.advance(loc[1])\n")
		b.WriteString(genPathDecoratorLowering(t))
		if t.Classify != "" {
			fmt.Fprintf(&b, "\tp.classifyToken(startLine, startCol, %q)\n", t.Classify)
		}
		if t.HasDecorator(model.DecLoadAndParse) {
			fmt.Fprintf(&b, "\tdata, ioErr := os.ReadFile(value)\n\tif ioErr != nil {\n\t\tp.fatalf(\"@loadandparse: cannot read %%q: %%v\", value, ioErr)\n\t}\n")
			fmt.Fprintf(&b, "\tsub, parseErr := Parse(string(data), %q)\n\tif parseErr != nil {\n\t\tp.fatalf(\"@loadandparse: cannot parse %%q: %%v\", value, parseErr)\n\t}\n\treturn sub, true\n}\n\n", g.StartRule)
		} else {
			b.WriteString("\treturn value, true\n}\n\n")
		}

		fmt.Fprintf(&b, "func (p *parser) expect_%s() %s {\n\tv, ok := p.match_%s()\n\tif !ok {\n\t\tp.fatalf(%s)\n\t}\n\treturn v\n}\n\n",
			fn, resultType, fn, strconv.Quote("expected "+name))
	}
	return b.String()
}

// genPathDecoratorLowering emits the path-normalization checks/conversions
// for relfilepath/absfilepath/reldirpath/absdirpath/ensurerelative/
// ensureabsolute (spec.md §3 Decorator list), applied to the `value` local
// right after it is matched and the cursor has advanced past it.
// ensurerelative/ensureabsolute validate the raw matched text; the rel/abs
// conversions run afterward so both may be combined on one token.
func genPathDecoratorLowering(t *model.Token) string {
	var b strings.Builder
	if t.HasDecorator(model.DecEnsureRelative) {
		b.WriteString("\tif filepath.IsAbs(value) {\n\t\tp.fatalf(\"expected a relative path, got %q\", value)\n\t}\n")
	}
	if t.HasDecorator(model.DecEnsureAbsolute) {
		b.WriteString("\tif !filepath.IsAbs(value) {\n\t\tp.fatalf(\"expected an absolute path, got %q\", value)\n\t}\n")
	}
	if t.HasDecorator(model.DecRelFilePath) || t.HasDecorator(model.DecRelDirPath) {
		b.WriteString("\tvalue = p.toRelPath(value)\n")
	}
	if t.HasDecorator(model.DecAbsFilePath) || t.HasDecorator(model.DecAbsDirPath) {
		b.WriteString("\tvalue = p.toAbsPath(value)\n")
	}
	return b.String()
}

// genGroupHelpers emits is_/match_ for every TokenGroup, so a rule may
// reference a group directly as an item (model.GroupRefItem).
func genGroupHelpers(g *model.Grammar) string {
	var b strings.Builder
	for _, name := range g.GroupOrder {
		fn := sanitize(name)
		pat := groupPatternVar(name)
		fmt.Fprintf(&b, "func (p *parser) is_%s() bool {\n\tp.skip()\n\treturn %s.FindStringIndex(p.src[p.pos:]) != nil\n}\n\n", fn, pat)
		fmt.Fprintf(&b, "func (p *parser) match_%s() (string, bool) {\n\tp.skip()\n\tloc := %s.FindStringIndex(p.src[p.pos:])\n\tif loc == nil {\n\t\treturn \"\", false\n\t}\n\ttext := p.src[p.pos : p.pos+loc[1]]\n\tp.advance(loc[1])\n\treturn text, true\n}\n\n", fn, pat)
	}
	return b.String()
}
