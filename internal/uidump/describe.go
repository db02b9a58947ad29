package uidump

import (
	"fmt"
	"strings"
)

// NoInteractiveElements is returned by Describe when nothing can be acted on
const NoInteractiveElements = "No interactive elements found."

// Interactive reports whether an agent can target e: clickable, an input
// field, or a list
func (e *Element) Interactive() bool {
	return e.Clickable || e.Type == TypeInput || e.Type == TypeList
}

// InteractiveElements collects interactive elements in pre-order
func InteractiveElements(root *Element) []*Element {
	var out []*Element
	root.Walk(func(e *Element) {
		if e.Interactive() {
			out = append(out, e)
		}
	})
	return out
}

// Describe renders a numbered text summary of the interactive elements
func Describe(root *Element) string {
	elements := InteractiveElements(root)
	if len(elements) == 0 {
		return NoInteractiveElements
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d interactive elements:\n", len(elements))
	for i, e := range elements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, describeElement(e))
	}
	return b.String()
}

func describeElement(e *Element) string {
	parts := make([]string, 0, 6)
	if e.Text != "" {
		parts = append(parts, `"`+e.Text+`"`)
	}
	if e.Desc != "" {
		parts = append(parts, "("+e.Desc+")")
	}
	if e.ID != "" {
		parts = append(parts, "["+e.ID+"]")
	}
	parts = append(parts, e.Type, "at", e.Bounds)
	return strings.Join(parts, " ")
}
