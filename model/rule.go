package model

// Rule is one grammar production: a strict-PascalCase name, an attribute
// map, a directive set, and one or more Definitions (alternatives)
// (spec.md §3).
type Rule struct {
	Name        string
	Attributes  AttributeSet
	Directives  DirectiveSet
	Definitions []*Definition

	// NodeKind is the UPPER_SNAKE_CASE tag the code generator stamps onto
	// every AST node this rule assembles (spec.md §4.4).
	NodeKind string

	Line, Col int
}

func NewRule(name string, line, col int) *Rule {
	return &Rule{
		Name:       name,
		Attributes: AttributeSet{},
		Directives: DirectiveSet{},
		NodeKind:   toUpperSnake(name),
		Line:       line,
		Col:        col,
	}
}

func (r *Rule) HasKey() bool     { return r.Attributes.Has(AttrKey) }
func (r *Rule) Key() string      { return r.Attributes.Get(AttrKey) }
func (r *Rule) HasFlip() bool    { return r.Attributes.Has(AttrFlip) }
func (r *Rule) Flip() string     { return r.Attributes.Get(AttrFlip) }
func (r *Rule) HasScope() bool   { return r.Attributes.Has(AttrScope) }
func (r *Rule) Scope() string    { return r.Attributes.Get(AttrScope) }
func (r *Rule) HasDeclare() bool { return r.Attributes.Has(AttrDeclare) }
func (r *Rule) Declare() string  { return r.Attributes.Get(AttrDeclare) }
func (r *Rule) HasMerge() bool   { return r.Directives.Has(DirMerge) }

func (r *Rule) IsAlternative() bool { return len(r.Definitions) > 1 }

func toUpperSnake(name string) string {
	out := make([]byte, 0, len(name)*2)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			out = append(out, c)
		} else if c >= 'a' && c <= 'z' {
			out = append(out, c-32)
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}
