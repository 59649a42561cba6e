package resolve

import (
	"regexp"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	ExpansionCycleError = errors.ExpansionErrors + iota
)

// expandTokens computes the @expand fixed point (spec.md §4.3 pass 2):
// every token marked @expand has token names in its regex substituted with
// the referenced token's own (post-expansion) regex, wrapped in a
// non-capturing group. Grounded on
// original_source/pygrammer/core/parser.py's Grammar.expand_tokens, which
// does a plain substring replace per token; this version recurses so a
// chain of @expand tokens converges to a single fixed point instead of only
// one substitution round, and detects cycles via DFS coloring.
func expandTokens(g *model.Grammar, sink *diagnostics.Sink) {
	done := map[string]bool{}
	visiting := map[string]bool{}

	var visit func(name string) string
	visit = func(name string) string {
		tok := g.Tokens[name]
		if done[name] {
			return tok.Expanded
		}
		if !tok.IsExpand() {
			tok.Expanded = tok.Regex
			done[name] = true
			return tok.Expanded
		}
		if visiting[name] {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(
				itemPos{tok.Line, tok.Col}, ExpansionCycleError,
				"cyclic @expand reference involving token %q", name))
			tok.Expanded = tok.Regex
			done[name] = true
			return tok.Expanded
		}

		visiting[name] = true
		result := tok.Regex
		for _, other := range g.TokenOrder {
			if other == name {
				continue
			}
			pattern := tokenNamePattern(other)
			if !pattern.MatchString(result) {
				continue
			}
			expanded := visit(other)
			result = pattern.ReplaceAllStringFunc(result, func(string) string {
				return "(?:" + expanded + ")"
			})
		}
		visiting[name] = false
		done[name] = true
		tok.Expanded = result
		return result
	}

	for _, name := range g.TokenOrder {
		visit(name)
	}
}

var namePatternCache = map[string]*regexp.Regexp{}

// tokenNamePattern matches a token name as a whole word inside another
// token's regex source, so expanding NAME doesn't corrupt an unrelated
// identifier that merely contains it as a substring.
func tokenNamePattern(name string) *regexp.Regexp {
	if p, ok := namePatternCache[name]; ok {
		return p
	}
	p := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	namePatternCache[name] = p
	return p
}
