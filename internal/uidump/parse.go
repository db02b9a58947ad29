package uidump

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// DefaultMaxDepth bounds how many <node> levels are kept from a dump
const DefaultMaxDepth = 256

type parseConfig struct {
	maxDepth int
}

// ParseOption configures ParseHierarchy
type ParseOption func(*parseConfig)

// WithMaxDepth sets the node depth ceiling. Nodes at the ceiling keep their
// own attributes but lose their descendants and are marked Truncated.
// Values below 1 select DefaultMaxDepth.
func WithMaxDepth(depth int) ParseOption {
	return func(c *parseConfig) {
		c.maxDepth = depth
	}
}

// ParseHierarchy reads a uiautomator dump and returns its root node.
// A document without a <hierarchy> element, or whose hierarchy has no
// <node> child, yields a nil root and no error.
func ParseHierarchy(r io.Reader, opts ...ParseOption) (*RawNode, error) {
	cfg := parseConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth < 1 {
		cfg.maxDepth = DefaultMaxDepth
	}

	br := bufio.NewReader(r)
	if err := skipPreamble(br); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	d := xml.NewDecoder(br)
	var (
		root        *RawNode
		stack       []*RawNode
		inHierarchy bool
	)

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return root, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case !inHierarchy && len(stack) == 0 && t.Name.Local == "hierarchy" && root == nil:
				inHierarchy = true
			case !inHierarchy || t.Name.Local != "node":
				if err := d.Skip(); err != nil {
					return nil, err
				}
			case len(stack) == 0:
				if root != nil {
					// only the first top-level node is the root
					if err := d.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				root = nodeFromAttrs(t.Attr)
				stack = append(stack, root)
			case len(stack) >= cfg.maxDepth:
				stack[len(stack)-1].Truncated = true
				if err := d.Skip(); err != nil {
					return nil, err
				}
			default:
				n := nodeFromAttrs(t.Attr)
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
				stack = append(stack, n)
			}
		case xml.EndElement:
			switch {
			case len(stack) > 0:
				stack = stack[:len(stack)-1]
			case inHierarchy && t.Name.Local == "hierarchy":
				return root, nil
			}
		}
	}
}

// skipPreamble discards anything before the first '<', such as the
// "UI hierchary dumped to: ..." banner some devices print.
func skipPreamble(br *bufio.Reader) error {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		if b == '<' {
			return br.UnreadByte()
		}
	}
}

func nodeFromAttrs(attrs []xml.Attr) *RawNode {
	n := &RawNode{}
	for _, a := range attrs {
		switch a.Name.Local {
		case "class":
			n.Class = a.Value
		case "text":
			n.Text = a.Value
		case "content-desc":
			n.ContentDesc = a.Value
		case "resource-id":
			n.ResourceID = a.Value
		case "clickable":
			n.Clickable = a.Value
		case "scrollable":
			n.Scrollable = a.Value
		case "bounds":
			n.Bounds = a.Value
		}
	}
	return n
}

// Dump parses a uiautomator dump and simplifies it in one step
func Dump(r io.Reader, opts ...ParseOption) (*Element, error) {
	root, err := ParseHierarchy(r, opts...)
	if err != nil {
		return nil, err
	}
	return Simplify(root), nil
}

// DumpString is Dump over an in-memory dump
func DumpString(s string, opts ...ParseOption) (*Element, error) {
	return Dump(strings.NewReader(s), opts...)
}
