package model

// Item is one element of a Definition's item list: a tagged variant over
// {TokenRef, GroupRef, RuleRef, Literal, InlineGroup}, each carrying its own
// Multiplicity (spec.md §3).
type Item struct {
	Kind         ItemKind
	Ref          string // token/group/rule name for the *RefItem kinds
	Literal      string // regex/string fragment for LiteralItem
	LiteralIsStr bool   // literal was quoted (string), not backtick regex

	Group *InlineGroup // set when Kind == InlineGroupItem

	Multiplicity Multiplicity

	// Items carry no capture of their own: captures live in the enclosing
	// Definition's Captures tree, aligned with Items by position.
	Line, Col int
}

// InlineGroup is `[…]`, `(…)`, or `(…|…)`: an ordered list of Items that acts
// as a single structural item in its own right (spec.md §3, §9 "Inline
// groups as first-class items").
type InlineGroup struct {
	Kind  GroupKind
	Items []*Item

	// Multiplicity applies to Sequential/Alternative groups; Optional
	// groups are implicitly ZeroOrOne and must not carry an explicit one
	// (spec.md §3).
	Multiplicity Multiplicity

	Line, Col int
}

func (g *InlineGroup) EffectiveMultiplicity() Multiplicity {
	if g.Kind == Optional {
		return ZeroOrOne
	}
	return g.Multiplicity
}

// Definition is one alternative of a Rule: an ordered list of Items plus an
// optional Capture list (spec.md §3).
type Definition struct {
	Items    []*Item
	Captures []*Capture // nil when the definition has no `=>` tail

	Line, Col int
}

func (d *Definition) HasCaptures() bool { return d.Captures != nil }
