package model

// Grammar is the root of the in-memory model: the union of Tokens and
// TokenGroups namespace, the Rules namespace, and an optional grammar-level
// default start rule for `@loadandparse` (spec.md §3).
type Grammar struct {
	Tokens      map[string]*Token
	TokenGroups map[string]*TokenGroup
	Rules       map[string]*Rule

	// RuleOrder preserves declaration order for deterministic codegen output.
	RuleOrder  []string
	TokenOrder []string
	GroupOrder []string

	// StartRule is the grammar-level `start` directive target, required by
	// any token carrying @loadandparse (spec.md §3).
	StartRule string
}

func NewGrammar() *Grammar {
	return &Grammar{
		Tokens:      map[string]*Token{},
		TokenGroups: map[string]*TokenGroup{},
		Rules:       map[string]*Rule{},
	}
}

func (g *Grammar) AddToken(t *Token) {
	g.Tokens[t.Name] = t
	g.TokenOrder = append(g.TokenOrder, t.Name)
}

func (g *Grammar) AddTokenGroup(tg *TokenGroup) {
	g.TokenGroups[tg.Name] = tg
	g.GroupOrder = append(g.GroupOrder, tg.Name)
}

func (g *Grammar) AddRule(r *Rule) {
	g.Rules[r.Name] = r
	g.RuleOrder = append(g.RuleOrder, r.Name)
}

// Resolve looks a bare name up across the combined token/group/rule
// namespace, returning which kind matched.
func (g *Grammar) Resolve(name string) (kind ItemKind, ok bool) {
	if _, found := g.Tokens[name]; found {
		return TokenRefItem, true
	}
	if _, found := g.TokenGroups[name]; found {
		return GroupRefItem, true
	}
	if _, found := g.Rules[name]; found {
		return RuleRefItem, true
	}
	return 0, false
}
