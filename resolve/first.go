package resolve

import (
	"github.com/overdev/pygrammer/internal/idxset"
	"github.com/overdev/pygrammer/model"
)

// FirstSet is the set of leaf predicates that can start a match of some
// rule or item: token indices (bitset, for O(1) membership and cheap
// unioning across mutually recursive rules), token-group names, and raw
// literal patterns. Codegen flattens a FirstSet into a disjunction of
// is_<T>()/is_<G>() calls and inline literal checks, so is_<R>() bottoms
// out purely at token/literal leaves per spec.md §9.
type FirstSet struct {
	Tokens   *idxset.Set
	Groups   map[string]bool
	Literals map[string]bool
	Nullable bool
}

func newFirstSet(n int) *FirstSet {
	return &FirstSet{Tokens: idxset.New(n), Groups: map[string]bool{}, Literals: map[string]bool{}}
}

func (f *FirstSet) unionFrom(o *FirstSet) bool {
	changed := idxset.UnionInto(f.Tokens, o.Tokens)
	for g := range o.Groups {
		if !f.Groups[g] {
			f.Groups[g] = true
			changed = true
		}
	}
	for l := range o.Literals {
		if !f.Literals[l] {
			f.Literals[l] = true
			changed = true
		}
	}
	return changed
}

// FirstSets holds the computed FIRST set of every rule in a grammar, plus
// the token-name <-> index mapping codegen needs to translate bits back
// into is_<T>() calls.
type FirstSets struct {
	TokenIndex map[string]int
	TokenNames []string
	Rules      map[string]*FirstSet
}

// ComputeFirstSets runs a Kleene fixed-point iteration over the rule call
// graph, converging FIRST sets and nullability for every rule
// simultaneously (spec.md §9: "cyclic FIRST computations bottom out at
// token/literal leaves"). Must run after name binding, since it dispatches
// on resolved Item kinds.
func ComputeFirstSets(g *model.Grammar) *FirstSets {
	idx := map[string]int{}
	for i, name := range g.TokenOrder {
		idx[name] = i
	}
	n := len(g.TokenOrder)

	fs := &FirstSets{TokenIndex: idx, TokenNames: g.TokenOrder, Rules: map[string]*FirstSet{}}
	for _, name := range g.RuleOrder {
		fs.Rules[name] = newFirstSet(n)
	}

	for changed := true; changed; {
		changed = false
		for _, name := range g.RuleOrder {
			rule := g.Rules[name]
			tmp := newFirstSet(n)
			nullable := false
			for _, def := range rule.Definitions {
				if firstOfItemSeq(def.Items, idx, fs, tmp) {
					nullable = true
				}
			}
			if fs.Rules[name].unionFrom(tmp) {
				changed = true
			}
			if nullable && !fs.Rules[name].Nullable {
				fs.Rules[name].Nullable = true
				changed = true
			}
		}
	}

	return fs
}

// firstOfItemSeq unions the FIRST set of a sequence of items into dst,
// stopping at the first non-nullable item, and returns whether the whole
// sequence is nullable.
func firstOfItemSeq(items []*model.Item, idx map[string]int, fs *FirstSets, dst *FirstSet) bool {
	for _, item := range items {
		if !firstOfItem(item, idx, fs, dst) {
			return false
		}
	}
	return true
}

// firstOfItem unions item's FIRST set into dst and returns whether item
// itself is nullable.
func firstOfItem(item *model.Item, idx map[string]int, fs *FirstSets, dst *FirstSet) bool {
	switch item.Kind {
	case model.TokenRefItem:
		if i, ok := idx[item.Ref]; ok {
			dst.Tokens.Add(i)
		}
		return item.Multiplicity.Nullable()

	case model.GroupRefItem:
		dst.Groups[item.Ref] = true
		return item.Multiplicity.Nullable()

	case model.LiteralItem:
		dst.Literals[item.Literal] = true
		return item.Multiplicity.Nullable()

	case model.RuleRefItem:
		sub := fs.Rules[item.Ref]
		if sub != nil {
			dst.unionFrom(sub)
		}
		return (sub != nil && sub.Nullable) || item.Multiplicity.Nullable()

	case model.InlineGroupItem:
		group := item.Group
		switch group.Kind {
		case model.Optional:
			firstOfItemSeq(group.Items, idx, fs, dst)
			return true
		case model.Sequential:
			seqNullable := firstOfItemSeq(group.Items, idx, fs, dst)
			return seqNullable || group.Multiplicity.Nullable()
		case model.Alternative:
			allNullable := true
			for _, alt := range group.Items {
				if !firstOfItem(alt, idx, fs, dst) {
					allNullable = false
				}
			}
			return allNullable || group.Multiplicity.Nullable()
		}
	}
	return item.Multiplicity.Nullable()
}
