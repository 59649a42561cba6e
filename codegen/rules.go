package codegen

import (
	"fmt"
	"strings"

	"github.com/overdev/pygrammer/model"
	"github.com/overdev/pygrammer/resolve"
)

// literalTable hoists every inline regex/string literal item in the grammar
// into a package-level compiled pattern, mirroring genTokenTable's approach
// for named tokens (spec.md §4.4 "no literal is compiled twice").
type literalTable struct {
	order []string
	vars  map[string]string
}

func newLiteralTable() *literalTable { return &literalTable{vars: map[string]string{}} }

func (t *literalTable) varFor(pattern string) string {
	if v, ok := t.vars[pattern]; ok {
		return v
	}
	v := fmt.Sprintf("literalPattern_%d", len(t.order))
	t.vars[pattern] = v
	t.order = append(t.order, pattern)
	return v
}

func (t *literalTable) render() string {
	if len(t.order) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("var (\n")
	for _, pat := range t.order {
		fmt.Fprintf(&b, "\t%s = regexp.MustCompile(`^(?:%s)`)\n", t.vars[pat], pat)
	}
	b.WriteString(")\n")
	return b.String()
}

func literalPattern(item *model.Item) string {
	if item.LiteralIsStr {
		return regexQuote(item.Literal)
	}
	return item.Literal
}

// regexQuote turns a quoted-string literal into the regex that matches it
// verbatim (spec.md §3: a string literal item is shorthand for its own
// escaped text).
func regexQuote(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ruleGen holds the per-generation-run state threaded through rule codegen:
// the grammar being lowered, the shared literal table, and a counter for
// collision-free temporary variable names.
type ruleGen struct {
	g   *model.Grammar
	lt  *literalTable
	fs  *resolve.FirstSets
	tmp int
}

func (rg *ruleGen) newVar(prefix string) string {
	rg.tmp++
	return fmt.Sprintf("%s%d", prefix, rg.tmp)
}

// genRuleHelpers emits is_<R>()/match_<R>() for every rule in declaration
// order, prefixed by the literal pattern table any LiteralItem needed.
func genRuleHelpers(g *model.Grammar, fs *resolve.FirstSets) string {
	rg := &ruleGen{g: g, lt: newLiteralTable(), fs: fs}

	var body strings.Builder
	for _, name := range g.RuleOrder {
		r := g.Rules[name]
		body.WriteString(rg.genIsRule(name))
		body.WriteString(rg.genMatchRule(r))
	}

	var out strings.Builder
	out.WriteString(rg.lt.render())
	out.WriteString(body.String())
	return out.String()
}

// genIsRule emits the constant-time lookahead predicate for rule name,
// built purely from its precomputed FirstSet (spec.md §9: is_<R>() never
// calls match_<R>() or any other match_* function).
func (rg *ruleGen) genIsRule(name string) string {
	first := rg.fs.Rules[name]
	fn := sanitize(name)

	var checks []string
	if first != nil {
		for _, tname := range rg.fs.TokenNames {
			if first.Tokens.Contains(rg.fs.TokenIndex[tname]) {
				checks = append(checks, fmt.Sprintf("p.is_%s()", sanitize(tname)))
			}
		}
		for gname := range first.Groups {
			checks = append(checks, fmt.Sprintf("p.is_%s()", sanitize(gname)))
		}
		for lit := range first.Literals {
			v := rg.lt.varFor(lit)
			checks = append(checks, fmt.Sprintf("(func() bool { p.skip(); return %s.FindStringIndex(p.src[p.pos:]) != nil })()", v))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "func (p *parser) is_%s() bool {\n\tp.skip()\n", fn)
	if first != nil && first.Nullable {
		b.WriteString("\treturn true\n}\n\n")
		return b.String()
	}
	if len(checks) == 0 {
		b.WriteString("\treturn false\n}\n\n")
		return b.String()
	}
	fmt.Fprintf(&b, "\treturn %s\n}\n\n", strings.Join(checks, " ||\n\t\t"))
	return b.String()
}

// genMatchRule emits match_<R>() plus one match_<R>_altN() per alternative,
// tried in declaration order with checkpoint/reset backtracking between
// them (spec.md §7 "definitions are tried transactionally").
func (rg *ruleGen) genMatchRule(r *model.Rule) string {
	fn := sanitize(r.Name)
	var b strings.Builder

	fmt.Fprintf(&b, "func (p *parser) match_%s() (interface{}, bool) {\n", fn)
	for i := range r.Definitions {
		fmt.Fprintf(&b, "\tif v, ok := p.match_%s_alt%d(); ok {\n\t\treturn v, true\n\t}\n", fn, i)
	}
	b.WriteString("\treturn nil, false\n}\n\n")

	for i, def := range r.Definitions {
		b.WriteString(rg.genAltFunc(r, def, i))
	}
	return b.String()
}

type genCtx struct {
	node    string // Go expression for the *Node being assembled ("node")
	failLbl string

	// forceList is set while generating the body of a repeatable inline
	// group: every capture found directly inside it accumulates as a list
	// once per iteration, even without its own `*` prefix (spec.md §8, the
	// `Op` example: `( '+' Operand )* => left ( _ right )`).
	forceList bool
}

func (rg *ruleGen) genAltFunc(r *model.Rule, def *model.Definition, idx int) string {
	fn := sanitize(r.Name)
	var b strings.Builder
	fmt.Fprintf(&b, "func (p *parser) match_%s_alt%d() (interface{}, bool) {\n", fn, idx)
	b.WriteString("\tm := p.mark()\n")
	fmt.Fprintf(&b, "\tnode := newNode(%q, p.line, p.col)\n", r.NodeKind)
	// Declared before any item's goto fail so it is in scope at every goto
	// point as well as at the fail: label (Go forbids a forward goto that
	// would bring a variable into scope it did not already see).
	b.WriteString("\tvar __result interface{}\n")
	if r.HasScope() {
		b.WriteString("\tp.pushScope()\n")
	}

	ctx := &genCtx{node: "node", failLbl: "fail"}
	var caps []*model.Capture
	if def.HasCaptures() {
		caps = def.Captures
	}
	for i, item := range def.Items {
		var c *model.Capture
		if caps != nil && i < len(caps) {
			c = caps[i]
		}
		rg.genItem(&b, item, c, ctx, "\t", false)
	}

	rg.genFinalize(&b, r)

	b.WriteString("\treturn __result, true\n")
	b.WriteString("fail:\n")
	b.WriteString("\tp.reset(m)\n")
	if r.HasScope() {
		b.WriteString("\tp.popScope()\n")
	}
	b.WriteString("\treturn nil, false\n")
	b.WriteString("}\n\n")
	return b.String()
}

// genFinalize lowers the rule's attribute/directive block once every item
// has matched: key collapse, flip re-parenting, scope exposure and pop,
// declare, and classify (spec.md §4.4). Always assigns the interface{}
// local __result that genAltFunc returns.
func (rg *ruleGen) genFinalize(b *strings.Builder, r *model.Rule) {
	if r.HasDeclare() {
		field := r.Declare()
		fmt.Fprintf(b, "\tif dv, ok := node.Fields[%q]; ok {\n\t\tp.declare(fmt.Sprint(dv), node)\n\t}\n", field)
	}

	if r.HasFlip() {
		field := r.Flip()
		fmt.Fprintf(b, "\tif fv, ok := node.Fields[%q]; ok {\n", field)
		fmt.Fprintf(b, "\t\tif fn, ok := fv.(*Node); ok {\n\t\t\tdelete(node.Fields, %q)\n\t\t\tfn.Fields[%q] = node\n\t\t\tnode = fn\n\t\t}\n\t}\n", field, field)
	}

	if r.HasScope() {
		fmt.Fprintf(b, "\tnode.Fields[%q] = p.topScope()\n\tp.popScope()\n", r.Scope())
	}

	if cls := r.Attributes.Get(model.AttrClassify); cls != "" {
		fmt.Fprintf(b, "\tp.classify(node, %q)\n", cls)
	}
	if cls := r.Attributes.Get(model.AttrReclassify); cls != "" {
		fmt.Fprintf(b, "\tp.classify(node, %q)\n", cls)
	}
	if cls := r.Attributes.Get(model.AttrRetroclassify); cls != "" {
		fmt.Fprintf(b, "\tp.retroclassify(%q)\n", cls)
	}

	if r.HasKey() {
		field := r.Key()
		fmt.Fprintf(b, "\tif len(node.Fields) == 1 {\n\t\tif kv, ok := node.Fields[%q]; ok {\n\t\t\t__result = kv\n\t\t\tgoto keyed\n\t\t}\n\t}\n", field)
		b.WriteString("\t__result = node\n")
		b.WriteString("keyed:\n")
		return
	}
	b.WriteString("\t__result = node\n")
}

// genItem emits the match code for a single Definition item at the current
// nesting level, wrapped in its own block so a forward `goto fail` never
// jumps over a variable declaration still in scope at the label (the
// generated fail: label always lives in the enclosing function body).
// hardCommit forces a p.fatalf instead of a backtracking goto, used past
// the first item of an Optional group (spec.md §4.4 "hard commitment").
func (rg *ruleGen) genItem(b *strings.Builder, item *model.Item, c *model.Capture, ctx *genCtx, indent string, hardCommit bool) {
	switch item.Kind {
	case model.TokenRefItem, model.GroupRefItem, model.LiteralItem:
		rg.genLeafItem(b, item, c, ctx, indent, hardCommit)
	case model.RuleRefItem:
		rg.genRuleRefItem(b, item, c, ctx, indent, hardCommit)
	case model.InlineGroupItem:
		rg.genGroupItem(b, item, c, ctx, indent, hardCommit)
	}
}

// genLeafItem handles TokenRefItem/GroupRefItem/LiteralItem, whose
// match_* functions return (string, bool), except a @loadandparse token's
// match_*, which returns (interface{}, bool).
func (rg *ruleGen) genLeafItem(b *strings.Builder, item *model.Item, c *model.Capture, ctx *genCtx, indent string, hardCommit bool) {
	v := rg.newVar("s")
	ok := rg.newVar("ok")

	var matchStmt, isStmt string
	switch item.Kind {
	case model.TokenRefItem:
		matchStmt = fmt.Sprintf("p.match_%s()", sanitize(item.Ref))
		isStmt = fmt.Sprintf("p.is_%s()", sanitize(item.Ref))
	case model.GroupRefItem:
		matchStmt = fmt.Sprintf("p.match_%s()", sanitize(item.Ref))
		isStmt = fmt.Sprintf("p.is_%s()", sanitize(item.Ref))
	case model.LiteralItem:
		pat := rg.lt.varFor(literalPattern(item))
		matchStmt = fmt.Sprintf("p.matchLiteralRe(%s)", pat)
		isStmt = fmt.Sprintf("(func() bool { p.skip(); return %s.FindStringIndex(p.src[p.pos:]) != nil })()", pat)
	}

	fmt.Fprintf(b, "%s{\n", indent)
	rg.genRepeated(b, item.Multiplicity, indent+"\t", isStmt, func(innerIndent string) {
		fmt.Fprintf(b, "%s%s, %s := %s\n", innerIndent, v, ok, matchStmt)
		rg.emitFailOrAssign(b, ok, v, c, ctx, innerIndent, hardCommit, item)
	})
	fmt.Fprintf(b, "%s}\n", indent)
}

// genRuleRefItem handles RuleRefItem, whose match_<Rule>() returns
// (interface{}, bool). When the referenced rule carries `merge`, its
// fields and kind splice into the enclosing node at this call site
// (spec.md §4.4 "merge applies where the sub-node is captured").
func (rg *ruleGen) genRuleRefItem(b *strings.Builder, item *model.Item, c *model.Capture, ctx *genCtx, indent string, hardCommit bool) {
	v := rg.newVar("r")
	ok := rg.newVar("ok")
	isStmt := fmt.Sprintf("p.is_%s()", sanitize(item.Ref))

	fmt.Fprintf(b, "%s{\n", indent)
	rg.genRepeated(b, item.Multiplicity, indent+"\t", isStmt, func(innerIndent string) {
		fmt.Fprintf(b, "%s%s, %s := p.match_%s()\n", innerIndent, v, ok, sanitize(item.Ref))
		fmt.Fprintf(b, "%sif !%s {\n", innerIndent, ok)
		rg.emitFail(b, innerIndent+"\t", hardCommit, item)
		fmt.Fprintf(b, "%s}\n", innerIndent)

		sub := rg.g.Rules[item.Ref]
		if sub != nil && sub.HasMerge() {
			fmt.Fprintf(b, "%sif sn, ok := %s.(*Node); ok {\n", innerIndent, v)
			fmt.Fprintf(b, "%s\tfor k, fv := range sn.Fields {\n\t\t%s.Fields[k] = fv\n\t}\n", innerIndent, ctx.node)
			fmt.Fprintf(b, "%s\t%s.Kind = sn.Kind\n", innerIndent, ctx.node)
			fmt.Fprintf(b, "%s}\n", innerIndent)
			return
		}
		rg.emitAssign(b, v, c, ctx, innerIndent, item)
	})
	fmt.Fprintf(b, "%s}\n", indent)
}

// genRepeated wraps body according to mult: emitted once for One, guarded by
// an is_-check for ZeroOrOne, and looped on the is_-check for
// ZeroOrMore/OneOrMore (with an upfront mandatory iteration for OneOrMore)
// (spec.md §4.4 "multiplicity lowering").
func (rg *ruleGen) genRepeated(b *strings.Builder, mult model.Multiplicity, indent string, isStmt string, body func(innerIndent string)) {
	switch mult {
	case model.One:
		body(indent)
	case model.ZeroOrOne:
		fmt.Fprintf(b, "%sif %s {\n", indent, isStmt)
		body(indent + "\t")
		fmt.Fprintf(b, "%s}\n", indent)
	case model.ZeroOrMore:
		fmt.Fprintf(b, "%sfor %s {\n", indent, isStmt)
		body(indent + "\t")
		fmt.Fprintf(b, "%s}\n", indent)
	case model.OneOrMore:
		body(indent)
		fmt.Fprintf(b, "%sfor %s {\n", indent, isStmt)
		body(indent + "\t")
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

func (rg *ruleGen) emitFail(b *strings.Builder, indent string, hardCommit bool, item *model.Item) {
	if hardCommit {
		fmt.Fprintf(b, "%sp.fatalf(\"expected %s\")\n", indent, item.Ref)
		return
	}
	fmt.Fprintf(b, "%sgoto %s\n", indent, "fail")
}

func (rg *ruleGen) emitFailOrAssign(b *strings.Builder, ok, v string, c *model.Capture, ctx *genCtx, indent string, hardCommit bool, item *model.Item) {
	fmt.Fprintf(b, "%sif !%s {\n", indent, ok)
	rg.emitFail(b, indent+"\t", hardCommit, item)
	fmt.Fprintf(b, "%s}\n", indent)
	rg.emitAssign(b, v, c, ctx, indent, item)
}

// emitAssign lowers one Capture against the just-matched value v, honoring
// dotted-field projection, explicit `*`-prefixed list capture, and the
// implicit per-iteration list accumulation of a capture named inside a
// repeatable inline group (ctx.forceList) (spec.md §8, the `Op` example).
func (rg *ruleGen) emitAssign(b *strings.Builder, v string, c *model.Capture, ctx *genCtx, indent string, item *model.Item) {
	if c == nil || c.Ignored() {
		return
	}
	expr := v
	if c.Dotted() && c.Field != "" && c.Field != "value" {
		expr = fmt.Sprintf("fieldOf(%s, %q)", v, c.Field)
	}
	list := c.List || item.Multiplicity.Repeatable() || ctx.forceList
	if list {
		fmt.Fprintf(b, "%sappendField(%s.Fields, %q, %s)\n", indent, ctx.node, c.Name, expr)
		return
	}
	fmt.Fprintf(b, "%s%s.Fields[%q] = %s\n", indent, ctx.node, c.Name, expr)
}

// genGroupItem handles InlineGroupItem: Sequential/Alternative/Optional
// sub-item lists, each recursing through genItem with the group's own
// multiplicity applied around the whole group body.
func (rg *ruleGen) genGroupItem(b *strings.Builder, item *model.Item, c *model.Capture, ctx *genCtx, indent string, hardCommit bool) {
	group := item.Group
	var subCaps []*model.Capture
	if c != nil {
		subCaps = c.Group
	}

	switch group.Kind {
	case model.Optional:
		fmt.Fprintf(b, "%sif %s {\n", indent, rg.groupIsExpr(group))
		inner := indent + "\t"
		for i, sub := range group.Items {
			var sc *model.Capture
			if i < len(subCaps) {
				sc = subCaps[i]
			}
			// Once this group's first item has matched, every remaining
			// item is a hard commitment. If the surrounding context was
			// itself already committed (a nested Optional inside an outer
			// Optional past its own first item), that commitment carries
			// through to this group's first item too.
			commit := hardCommit || i > 0
			rg.genItem(b, sub, sc, ctx, inner, commit)
		}
		fmt.Fprintf(b, "%s}\n", indent)

	case model.Sequential:
		isStmt := rg.groupIsExpr(group)
		rg.genRepeated(b, group.Multiplicity, indent, isStmt, func(innerIndent string) {
			subCtx := ctx
			if group.Multiplicity.Repeatable() {
				subCtx = &genCtx{node: ctx.node, failLbl: ctx.failLbl, forceList: true}
				rg.initListFields(b, group, subCaps, innerIndent, ctx.node)
			}
			for i, sub := range group.Items {
				var sc *model.Capture
				if i < len(subCaps) {
					sc = subCaps[i]
				}
				rg.genItem(b, sub, sc, subCtx, innerIndent, hardCommit)
			}
		})

	case model.Alternative:
		isStmt := rg.groupIsExpr(group)
		rg.genRepeated(b, group.Multiplicity, indent, isStmt, func(innerIndent string) {
			for i, alt := range group.Items {
				var sc *model.Capture
				if i < len(subCaps) {
					sc = subCaps[i]
				}
				branch := "if"
				if i > 0 {
					branch = "} else if"
				}
				fmt.Fprintf(b, "%s%s %s {\n", innerIndent, branch, rg.itemIsExpr(alt))
				rg.genItem(b, alt, sc, ctx, innerIndent+"\t", hardCommit)
			}
			b.WriteString(innerIndent + "} else {\n")
			rg.emitFail(b, innerIndent+"\t", hardCommit, item)
			fmt.Fprintf(b, "%s}\n", innerIndent)
		})
	}
}

// initListFields pre-seeds every capture name inside a repeatable group
// with an empty list (when not already present) at the start of each
// iteration of the group body. When the group matches zero times nothing
// is seeded and those fields stay absent from the node.
func (rg *ruleGen) initListFields(b *strings.Builder, group *model.InlineGroup, caps []*model.Capture, indent string, node string) {
	for _, c := range caps {
		rg.initListField(b, c, indent, node)
	}
}

func (rg *ruleGen) initListField(b *strings.Builder, c *model.Capture, indent string, node string) {
	if c == nil || c.Ignored() {
		return
	}
	if c.Group != nil {
		for _, sub := range c.Group {
			rg.initListField(b, sub, indent, node)
		}
		return
	}
	fmt.Fprintf(b, "%sif _, ok := %s.Fields[%q]; !ok {\n\t%s.Fields[%q] = []interface{}{}\n%s}\n",
		indent, node, c.Name, indent, c.Name, indent)
}

func (rg *ruleGen) itemIsExpr(item *model.Item) string {
	switch item.Kind {
	case model.TokenRefItem, model.GroupRefItem:
		return fmt.Sprintf("p.is_%s()", sanitize(item.Ref))
	case model.RuleRefItem:
		return fmt.Sprintf("p.is_%s()", sanitize(item.Ref))
	case model.LiteralItem:
		v := rg.lt.varFor(literalPattern(item))
		return fmt.Sprintf("(func() bool { p.skip(); return %s.FindStringIndex(p.src[p.pos:]) != nil })()", v)
	case model.InlineGroupItem:
		return rg.groupIsExpr(item.Group)
	}
	return "false"
}

// groupIsExpr builds the lookahead disjunction for an inline group's first
// set: an Alternative's is-expr is the union of its branches' is-exprs; a
// Sequential group's is-expr is its first item's is-expr (constant-time,
// consistent with spec.md §9's no-backtracking-in-is_ invariant).
func (rg *ruleGen) groupIsExpr(group *model.InlineGroup) string {
	if len(group.Items) == 0 {
		return "false"
	}
	if group.Kind == model.Alternative {
		parts := make([]string, len(group.Items))
		for i, it := range group.Items {
			parts[i] = rg.itemIsExpr(it)
		}
		return "(" + strings.Join(parts, " || ") + ")"
	}
	return rg.itemIsExpr(group.Items[0])
}

// genEntryPoint emits the top-level Parse dispatcher (spec.md §6): resolve
// the requested start rule by name, run its match_*, require end-of-input
// modulo trailing skip, and normalize the interface{} result (which may be
// a bare value when the start rule collapses via `key`) into a *Node.
func genEntryPoint(g *model.Grammar) string {
	var b strings.Builder
	b.WriteString("func Parse(src string, start string) (node *Node, err error) {\n")
	b.WriteString("\tdefer func() {\n")
	b.WriteString("\t\tif r := recover(); r != nil {\n")
	b.WriteString("\t\t\tif pf, ok := r.(*parseFatal); ok {\n\t\t\t\terr = pf\n\t\t\t\treturn\n\t\t\t}\n")
	b.WriteString("\t\t\tpanic(r)\n\t\t}\n\t}()\n\n")
	b.WriteString("\tp := newParser(src)\n")
	b.WriteString("\tvar result interface{}\n\tvar ok bool\n")
	b.WriteString("\tswitch start {\n")
	for _, name := range g.RuleOrder {
		fmt.Fprintf(&b, "\tcase %q:\n\t\tresult, ok = p.match_%s()\n", name, sanitize(name))
	}
	b.WriteString("\tdefault:\n\t\treturn nil, fmt.Errorf(\"unknown start rule %q\", start)\n")
	b.WriteString("\t}\n")
	b.WriteString("\tif !ok {\n\t\treturn nil, fmt.Errorf(\"no match for %q at line %d col %d\", start, p.line, p.col)\n\t}\n")
	b.WriteString("\tp.skip()\n")
	b.WriteString("\tif !p.atEnd() {\n\t\treturn nil, fmt.Errorf(\"unexpected trailing input at line %d col %d\", p.line, p.col)\n\t}\n\n")
	b.WriteString("\tif n, ok := result.(*Node); ok {\n\t\treturn n, nil\n\t}\n")
	b.WriteString("\twrapped := newNode(\"VALUE\", 1, 1)\n\twrapped.Fields[\"value\"] = result\n\treturn wrapped, nil\n")
	b.WriteString("}\n")
	return b.String()
}
