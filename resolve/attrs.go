package resolve

import (
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	FlipWithoutKeyError = errors.AttributeErrors + iota
	KeyNotCapturedError
	MergeWithKeyOrFlipError
	InternalTokenUsedError
	SkipTokenUsedError
	ScopeWithoutDeclareWarning
	DeclareOutsideScopeWarning
	LoadAndParseRequiresStartError
)

// checkAttributes runs spec.md §4.3 pass 4's attribute/directive/decorator
// compatibility checks (scope/declare reachability is handled separately by
// checkScopeDeclare, since it needs a whole-grammar call graph).
func checkAttributes(g *model.Grammar, sink *diagnostics.Sink) {
	for _, name := range g.RuleOrder {
		rule := g.Rules[name]
		pos := itemPos{rule.Line, rule.Col}

		if rule.HasFlip() && !rule.HasKey() {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(pos, FlipWithoutKeyError,
				"rule %q has 'flip:%s' without 'key'", rule.Name, rule.Flip()))
		}

		// The interaction of `merge` with `key`/`flip` is unspecified by
		// spec.md; decided in DESIGN.md to reject the combination outright.
		if rule.HasMerge() && (rule.HasKey() || rule.HasFlip()) {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(pos, MergeWithKeyOrFlipError,
				"rule %q combines 'merge' with 'key'/'flip', which is unsupported", rule.Name))
		}

		if rule.HasKey() {
			for _, def := range rule.Definitions {
				if !capturesContain(def.Captures, rule.Key()) {
					sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{def.Line, def.Col}, KeyNotCapturedError,
						"rule %q has 'key:%s' but this definition's captures do not include %q", rule.Name, rule.Key(), rule.Key()))
				}
			}
		}

		for _, def := range rule.Definitions {
			checkTokenUsage(g, def.Items, sink)
		}
	}
}

// checkTokenDecorators enforces spec.md §3's "`@loadandparse` requires a
// grammar-level `start` directive naming a default rule".
func checkTokenDecorators(g *model.Grammar, sink *diagnostics.Sink) {
	if g.StartRule != "" {
		return
	}
	for _, name := range g.TokenOrder {
		tok := g.Tokens[name]
		if tok.HasDecorator(model.DecLoadAndParse) {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{tok.Line, tok.Col}, LoadAndParseRequiresStartError,
				"token %q has '@loadandparse' but the grammar declares no 'start' directive", tok.Name))
		}
	}
}

func capturesContain(caps []*model.Capture, name string) bool {
	for _, c := range caps {
		if c.Group != nil {
			if capturesContain(c.Group, name) {
				return true
			}
			continue
		}
		if !c.Ignored() && c.Name == name {
			return true
		}
	}
	return false
}

// checkTokenUsage enforces "@internal tokens must never appear as items in
// rules" and "@skip tokens must not be referenced in rules".
func checkTokenUsage(g *model.Grammar, items []*model.Item, sink *diagnostics.Sink) {
	for _, item := range items {
		if item.Kind == model.InlineGroupItem {
			checkTokenUsage(g, item.Group.Items, sink)
			continue
		}
		if item.Kind != model.TokenRefItem {
			continue
		}
		tok, ok := g.Tokens[item.Ref]
		if !ok {
			continue // already reported as an undefined name
		}
		if tok.IsInternal() {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{item.Line, item.Col}, InternalTokenUsedError,
				"@internal token %q must not appear as an item in a rule", tok.Name))
		}
		if tok.IsSkip() {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{item.Line, item.Col}, SkipTokenUsedError,
				"@skip token %q must not be referenced in a rule", tok.Name))
		}
	}
}

// checkScopeDeclare implements the reachability halves of spec.md §4.3 pass
// 4: "scope:S without any declare: in reachable descendants" and
// "declare:N outside any enclosing scope". Reachability is computed over
// the rule call graph induced by RuleRefItem references (including inside
// inline groups), since the walk must follow rule invocation, not just the
// literal item tree of one rule (spec.md §9's nullability walk is
// structural only; this one is not).
func checkScopeDeclare(g *model.Grammar, sink *diagnostics.Sink) {
	calls := ruleCallGraph(g)

	reachableFromAnyScope := map[string]bool{}
	for _, name := range g.RuleOrder {
		rule := g.Rules[name]
		if !rule.HasScope() {
			continue
		}
		reached := reachableFrom(name, calls)
		for r := range reached {
			reachableFromAnyScope[r] = true
		}

		hasDeclare := false
		for r := range reached {
			if g.Rules[r].HasDeclare() {
				hasDeclare = true
				break
			}
		}
		if !hasDeclare {
			sink.Emit(diagnostics.LevelWarning, errors.FormatPos(itemPos{rule.Line, rule.Col}, ScopeWithoutDeclareWarning,
				"rule %q has 'scope:%s' but no reachable descendant declares into it", rule.Name, rule.Scope()))
		}
	}

	for _, name := range g.RuleOrder {
		rule := g.Rules[name]
		if !rule.HasDeclare() {
			continue
		}
		if !reachableFromAnyScope[name] {
			sink.Emit(diagnostics.LevelWarning, errors.FormatPos(itemPos{rule.Line, rule.Col}, DeclareOutsideScopeWarning,
				"rule %q has 'declare:%s' outside any enclosing scope", rule.Name, rule.Declare()))
		}
	}
}

func ruleCallGraph(g *model.Grammar) map[string][]string {
	calls := map[string][]string{}
	for _, name := range g.RuleOrder {
		rule := g.Rules[name]
		var callees []string
		for _, def := range rule.Definitions {
			collectRuleRefs(def.Items, &callees)
		}
		calls[name] = callees
	}
	return calls
}

func collectRuleRefs(items []*model.Item, out *[]string) {
	for _, item := range items {
		switch item.Kind {
		case model.RuleRefItem:
			*out = append(*out, item.Ref)
		case model.InlineGroupItem:
			collectRuleRefs(item.Group.Items, out)
		}
	}
}

func reachableFrom(start string, calls map[string][]string) map[string]bool {
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, callee := range calls[n] {
			if !seen[callee] {
				seen[callee] = true
				stack = append(stack, callee)
			}
		}
	}
	return seen
}
