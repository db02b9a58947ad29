package uidump

import "strings"

// DefaultBounds is used for nodes that carry no bounds attribute
const DefaultBounds = "[0,0][0,0]"

// RawNode is a single <node> element of a uiautomator hierarchy dump
type RawNode struct {
	Class       string
	Text        string
	ContentDesc string
	ResourceID  string
	Clickable   string
	Scrollable  string
	Bounds      string
	Children    []*RawNode

	// Truncated is set when the node sits at the parser depth ceiling and
	// its descendants were discarded.
	Truncated bool
}

// IsClickable reports whether the clickable attribute is literally "true"
func (n *RawNode) IsClickable() bool {
	return n.Clickable == "true"
}

// IsScrollable reports whether the scrollable attribute is literally "true"
func (n *RawNode) IsScrollable() bool {
	return n.Scrollable == "true"
}

// BoundsOrDefault returns the bounds attribute or DefaultBounds when absent
func (n *RawNode) BoundsOrDefault() string {
	if n.Bounds == "" {
		return DefaultBounds
	}
	return n.Bounds
}

// ShortID returns the last path segment of the resource-id,
// e.g. "com.android.dialer:id/seven" -> "seven"
func (n *RawNode) ShortID() string {
	id := n.ResourceID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func (n *RawNode) hasInfo() bool {
	return n.Text != "" || n.ContentDesc != "" || n.ResourceID != "" ||
		n.IsClickable() || n.IsScrollable()
}

// Element is the simplified form of a RawNode handed to the agent
type Element struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Desc      string     `json:"desc,omitempty"`
	ID        string     `json:"id,omitempty"`
	Clickable bool       `json:"clickable"`
	Bounds    string     `json:"bounds"`
	Children  []*Element `json:"children,omitempty"`
	Elided    bool       `json:"elided,omitempty"` // descendants dropped at the depth ceiling
}

// Walk visits e and its descendants in pre-order
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Count returns the number of elements in the tree rooted at e
func (e *Element) Count() int {
	n := 0
	e.Walk(func(*Element) { n++ })
	return n
}
