package doxygen

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// element is a generic XML element that keeps mixed content in document order.
// Doxygen interleaves text and markup in types and descriptions, which rules out
// struct-tag decoding for those parts.
type element struct {
	name    string
	attrs   map[string]string
	content []content
}

// content is either a text run or a child element.
type content struct {
	text string
	elem *element
}

func parseTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *element
		stack []*element
	)
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
			e := &element{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				e.attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.content = append(parent.content, content{elem: e})
			} else if root == nil {
				root = e
			}
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.content = append(top.content, content{text: string(t)})
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return root, nil
}

func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	return e.attrs[name]
}

func (e *element) elements() []*element {
	if e == nil {
		return nil
	}
	var out []*element
	for _, c := range e.content {
		if c.elem != nil {
			out = append(out, c.elem)
		}
	}
	return out
}

// child returns the first direct child with the given name, or nil.
func (e *element) child(name string) *element {
	for _, c := range e.elements() {
		if c.name == name {
			return c
		}
	}
	return nil
}

// findAll follows a slash separated path of child names.
func (e *element) findAll(path string) []*element {
	current := []*element{e}
	for _, name := range strings.Split(path, "/") {
		var next []*element
		for _, parent := range current {
			for _, c := range parent.elements() {
				if c.name == name {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

// text returns all text below the element, markup removed.
func (e *element) text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *element) writeText(b *strings.Builder) {
	for _, c := range e.content {
		if c.elem != nil {
			c.elem.writeText(b)
			continue
		}
		b.WriteString(c.text)
	}
}

func (e *element) childText(name string) string {
	return e.child(name).text()
}
