package model

import "strings"

// Capture is one entry of a Definition's `=>` tail: a binding from a matched
// Item into the enclosing AST node (spec.md §3).
type Capture struct {
	Name   string // "_" means ignored
	Field  string // set when the capture is dotted ("name.field"); "" otherwise
	List   bool   // true when prefixed with '*' (list-append semantics)

	// Group holds the parenthesized sublist of captures that mirrors an
	// InlineGroup at this position in the item tree; nil for a plain item
	// capture.
	Group []*Capture

	Line, Col int
}

// Ignored reports whether this capture discards its matched item.
func (c *Capture) Ignored() bool { return c.Name == "_" }

// Dotted reports whether this capture projects a field off the matched node.
func (c *Capture) Dotted() bool { return c.Field != "" }

// ParseCaptureName splits a raw capture token (already stripped of any
// leading '*') into name and optional dotted field.
func ParseCaptureName(raw string) (name, field string) {
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		return raw[:idx], raw[idx+1:]
	}
	return raw, ""
}
