package resolve

import (
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	DoubtfulGroupWarning = errors.AttributeErrors + 50 + iota
	UncertainGroupWarning
)

// checkNullability walks every inline group in every definition, flagging
// Doubtful and Uncertain groups per spec.md §9's structural nullability
// walk: nullable := multiplicity in {?, *}, or an Alternative group whose
// every alternative is nullable, or a Sequential group whose every item is
// nullable, or an Optional group (always). A group is doubtful iff every
// one of its items is nullable; uncertain iff its first item is itself a
// nullable inline group (Sequential groups only).
func checkNullability(g *model.Grammar, sink *diagnostics.Sink) {
	for _, name := range g.RuleOrder {
		for _, def := range g.Rules[name].Definitions {
			walkGroups(def.Items, sink)
		}
	}
}

func walkGroups(items []*model.Item, sink *diagnostics.Sink) {
	for _, item := range items {
		if item.Kind != model.InlineGroupItem {
			continue
		}
		group := item.Group

		allNullable := true
		for _, sub := range group.Items {
			if !itemNullable(sub) {
				allNullable = false
				break
			}
		}
		if (group.Kind == model.Alternative || group.Kind == model.Sequential) && allNullable && len(group.Items) > 0 {
			sink.Emit(diagnostics.LevelWarning, errors.FormatPos(itemPos{group.Line, group.Col}, DoubtfulGroupWarning,
				"doubtful group: every alternative/item is independently optional"))
		}

		if group.Kind == model.Sequential && len(group.Items) > 0 {
			first := group.Items[0]
			if first.Kind == model.InlineGroupItem && itemNullable(first) {
				sink.Emit(diagnostics.LevelWarning, errors.FormatPos(itemPos{group.Line, group.Col}, UncertainGroupWarning,
					"uncertain group: leading item is itself an optional inline group"))
			}
		}

		walkGroups(group.Items, sink)
	}
}

// itemNullable reports whether item can be satisfied by consuming nothing,
// per the structural definition in spec.md §9.
func itemNullable(item *model.Item) bool {
	if item.Multiplicity.Nullable() {
		return true
	}
	if item.Kind != model.InlineGroupItem {
		return false
	}
	group := item.Group
	if group.Multiplicity.Nullable() {
		return true
	}
	switch group.Kind {
	case model.Optional:
		return true
	case model.Alternative:
		for _, sub := range group.Items {
			if !itemNullable(sub) {
				return false
			}
		}
		return true
	case model.Sequential:
		for _, sub := range group.Items {
			if !itemNullable(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
