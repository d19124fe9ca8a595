// Package syndication parses RSS and Atom documents into flat article
// records and fetches catalog feeds.
package syndication

import (
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"
)

// AtomNS is the Atom 1.0 namespace.
const AtomNS = "http://www.w3.org/2005/Atom"

// RSS1NS is the RSS 1.0 (RDF) namespace.
const RSS1NS = "http://purl.org/rss/1.0/"

// Attr is an element attribute with its namespace dropped.
type Attr struct {
	Name  string
	Value string
}

// Node is a generic XML element. Text holds the character data that
// precedes the first child element.
type Node struct {
	Space    string
	Local    string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Parse reads a whole XML document into a tree. Non-UTF-8 documents are
// decoded according to their declared encoding.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Space: t.Name.Space, Local: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			switch {
			case len(stack) > 0:
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			case root == nil:
				root = n
			default:
				return nil, errors.New("multiple root elements")
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if len(top.Children) == 0 {
				top.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// FindItems returns RSS items in document order, or Atom entries when the
// document has no items.
func FindItems(root *Node) []*Node {
	items := collect(root, func(n *Node) bool {
		return n.Local == "item" && (n.Space == "" || n.Space == RSS1NS)
	})
	if len(items) > 0 {
		return items
	}
	return collect(root, func(n *Node) bool {
		return n.Local == "entry" && n.Space == AtomNS
	})
}

// collect walks descendants of root (root excluded) depth-first.
func collect(root *Node, match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}
