package uidump

import "strings"

// simplifier holds per-call state for Simplify. It is never shared
// between calls, so concurrent Simplify calls need no locking.
type simplifier struct {
	meaningfulMemo map[*RawNode]bool
}

// Simplify converts a raw hierarchy into a compact element tree.
// A nil root yields an empty "root" element.
func Simplify(root *RawNode) *Element {
	if root == nil {
		return &Element{Type: TypeRoot, Bounds: DefaultBounds}
	}
	s := &simplifier{meaningfulMemo: make(map[*RawNode]bool)}
	return s.simplify(root)
}

func (s *simplifier) simplify(n *RawNode) *Element {
	el := &Element{
		Type:      Classify(n),
		Text:      n.Text,
		Desc:      n.ContentDesc,
		Clickable: n.IsClickable(),
		Bounds:    n.BoundsOrDefault(),
		Elided:    n.Truncated,
	}
	if n.ResourceID != "" {
		el.ID = n.ShortID()
	}

	if len(n.Children) == 0 {
		return el
	}

	if passThrough(n) {
		el.Children = s.flatten(n.Children)
	} else {
		for _, c := range n.Children {
			if s.meaningful(c) {
				el.Children = append(el.Children, s.simplify(c))
			}
		}
	}
	if len(el.Children) == 0 {
		el.Children = nil
	}
	return el
}

// flatten promotes the children of pass-through containers and drops
// children that carry nothing, preserving source order.
func (s *simplifier) flatten(nodes []*RawNode) []*Element {
	var out []*Element
	for _, c := range nodes {
		switch {
		case passThrough(c) && len(c.Children) > 0:
			out = append(out, s.flatten(c.Children)...)
		case s.meaningful(c):
			out = append(out, s.simplify(c))
		}
	}
	return out
}

func (s *simplifier) meaningful(n *RawNode) bool {
	if v, ok := s.meaningfulMemo[n]; ok {
		return v
	}
	v := n.hasInfo() || n.Truncated
	if !v {
		for _, c := range n.Children {
			if s.meaningful(c) {
				v = true
				break
			}
		}
	}
	s.meaningfulMemo[n] = v
	return v
}

// passThrough reports whether n is a layout wrapper with nothing of its own
func passThrough(n *RawNode) bool {
	if n.hasInfo() {
		return false
	}
	return strings.Contains(n.Class, "Layout") || strings.Contains(n.Class, "ViewGroup")
}
