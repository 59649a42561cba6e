package resolve

import (
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	UndefinedNameError = errors.NameErrors + iota
)

// bindNames resolves every model.UnresolvedRefItem left by gparse into
// TokenRefItem/GroupRefItem/RuleRefItem, per spec.md §4.3 pass 1.
func bindNames(g *model.Grammar, sink *diagnostics.Sink) {
	for _, name := range g.RuleOrder {
		for _, def := range g.Rules[name].Definitions {
			bindItems(g, def.Items, sink)
		}
	}
}

func bindItems(g *model.Grammar, items []*model.Item, sink *diagnostics.Sink) {
	for _, item := range items {
		if item.Kind == model.UnresolvedRefItem {
			kind, ok := g.Resolve(item.Ref)
			if !ok {
				sink.Emit(diagnostics.LevelError, errors.FormatPos(
					itemPos{item.Line, item.Col}, UndefinedNameError,
					"undefined name %q", item.Ref))
				continue
			}
			item.Kind = kind
		}
		if item.Kind == model.InlineGroupItem {
			bindItems(g, item.Group.Items, sink)
		}
	}
}
