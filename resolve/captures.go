package resolve

import (
	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/errors"
	"github.com/overdev/pygrammer/model"
)

const (
	CaptureCountMismatchError = errors.CaptureErrors + iota
	CaptureGroupShapeError
	CaptureNotRepeatableError
	CaptureDottedFieldWarning
)

// checkCaptures verifies every definition's capture list is structurally
// compatible with its item list (spec.md §4.3 pass 3).
func checkCaptures(g *model.Grammar, sink *diagnostics.Sink) {
	for _, name := range g.RuleOrder {
		for _, def := range g.Rules[name].Definitions {
			if !def.HasCaptures() {
				continue
			}
			checkCaptureList(def.Items, def.Captures, sink)
		}
	}
}

// checkCaptureList aligns a capture list against its definition's items.
// spec.md §3 allows a capture list shorter than its items: "trailing items
// may be left uncaptured" — only a capture list longer than its items is a
// shape error. Missing trailing entries are treated as implicit '_'.
func checkCaptureList(items []*model.Item, caps []*model.Capture, sink *diagnostics.Sink) {
	if len(caps) > len(items) {
		pos := itemPos{caps[0].Line, caps[0].Col}
		sink.Emit(diagnostics.LevelError, errors.FormatPos(pos, CaptureCountMismatchError,
			"capture list has %d entries but definition has %d items", len(caps), len(items)))
		caps = caps[:len(items)]
	}

	for i, item := range items {
		if i >= len(caps) {
			continue
		}
		checkOneCapture(item, caps[i], sink)
	}
}

func checkOneCapture(item *model.Item, c *model.Capture, sink *diagnostics.Sink) {
	if c.Ignored() {
		return
	}

	if item.Kind == model.InlineGroupItem {
		if c.Group == nil {
			sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{c.Line, c.Col}, CaptureGroupShapeError,
				"inline group must be captured with a parenthesized sublist or ignored with '_'"))
			return
		}
		checkCaptureList(item.Group.Items, c.Group, sink)
	} else if c.Group != nil {
		sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{c.Line, c.Col}, CaptureGroupShapeError,
			"plain item cannot be captured with a parenthesized sublist"))
	}

	if c.List && !isRepeatable(item) {
		sink.Emit(diagnostics.LevelError, errors.FormatPos(itemPos{c.Line, c.Col}, CaptureNotRepeatableError,
			"'*%s' requires a repeatable item ('*', '+', or a repeatable enclosing group)", c.Name))
	}

	if c.Dotted() {
		guaranteed := item.Kind == model.TokenRefItem && c.Field == "value"
		if !guaranteed {
			sink.Emit(diagnostics.LevelWarning, errors.FormatPos(itemPos{c.Line, c.Col}, CaptureDottedFieldWarning,
				"field %q is not guaranteed present on the matched sub-node", c.Field))
		}
	}
}

func isRepeatable(item *model.Item) bool {
	if item.Multiplicity.Repeatable() {
		return true
	}
	if item.Kind == model.InlineGroupItem {
		return item.Group.EffectiveMultiplicity().Repeatable()
	}
	return false
}
