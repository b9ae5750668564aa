// # internal/engine/doxygen/description.go
package doxygen

import (
	"strings"

	"docxref/internal/engine/traits"
)

// NodeKind is the closed set of description markup nodes.
type NodeKind int

const (
	NodeContainer NodeKind = iota
	NodePara
	NodeText
	NodeRef
	NodeStyle
	NodeLink
	NodeLineBreak
	NodeList
	NodeListItem
	NodeProgramListing
	NodeCodeLine
	NodeSection
	NodeParameterList
	NodeParameterItem
	NodeParameterName
	NodeParameterDescription
	// NodeOther holds markup without a dedicated kind. Only its children are rendered.
	NodeOther
)

// Node is one element of a parsed description.
//
// Name carries the kind specific attribute: the style for NodeStyle, the url
// for NodeLink, the list marker for NodeList, the file name for
// NodeProgramListing and the section kind for NodeSection and NodeParameterList.
type Node struct {
	Kind     NodeKind
	Text     string
	Name     string
	RefID    string
	Children []*Node
}

var styleMarkup = map[string][2]string{
	"emphasis":       {"__", "__"},
	"bold":           {"**", "**"},
	"computeroutput": {"``", "``"},
	"strike":         {"[.line-through]#", "#"},
	"s":              {"[.line-through]#", "#"},
	"subscript":      {"~", "~"},
	"superscript":    {"^", "^"},
	"underline":      {"[.underline]#", "#"},
	"small":          {"[.small]#", "#"},
	"ins":            {"+++<ins>+++", "+++</ins>+++"},
	"del":            {"+++<del>+++", "+++</del>+++"},
}

var admonitions = map[string]string{
	"attention": "CAUTION",
	"note":      "NOTE",
	"remark":    "NOTE",
	"warning":   "WARNING",
}

var listingLanguages = map[string]string{
	"py":       "python",
	"kt":       "kotlin",
	"mm":       "objc",
	"unparsed": "",
}

// sectionTitles lists the simple sections that are kept apart from the
// description text, with the title they are published under.
var sectionTitles = map[string]string{
	"author":     "Author",
	"bug":        "Bug",
	"copyright":  "Copyright",
	"date":       "Date",
	"deprecated": "Deprecated",
	"pre":        "Precondition",
	"post":       "Postcondition",
	"since":      "Since",
	"todo":       "Todo",
}

// parseDescription converts a briefdescription or detaileddescription element.
// A missing element yields an empty container.
func parseDescription(e *element) *Node {
	root := &Node{Kind: NodeContainer}
	if e == nil {
		return root
	}
	root.Children = convertChildren(e, root.Kind)
	return root
}

func convertChildren(e *element, parent NodeKind) []*Node {
	var out []*Node
	for _, c := range e.content {
		if c.elem == nil {
			if !isInline(parent) && strings.TrimSpace(c.text) == "" {
				continue
			}
			out = append(out, &Node{Kind: NodeText, Text: c.text})
			continue
		}
		if n := convert(c.elem); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func convert(e *element) *Node {
	var n *Node
	switch e.name {
	case "para":
		n = &Node{Kind: NodePara}
	case "ref":
		n = &Node{Kind: NodeRef, RefID: e.attr("refid"), Name: e.attr("kindref")}
	case "ulink":
		n = &Node{Kind: NodeLink, Name: e.attr("url")}
	case "linebreak":
		return &Node{Kind: NodeLineBreak}
	case "sp":
		return &Node{Kind: NodeText, Text: " "}
	case "nonbreakablespace":
		return &Node{Kind: NodeText, Text: "&nbsp;"}
	case "itemizedlist":
		n = &Node{Kind: NodeList, Name: "*"}
	case "orderedlist":
		n = &Node{Kind: NodeList, Name: "."}
	case "listitem":
		n = &Node{Kind: NodeListItem}
	case "programlisting":
		n = &Node{Kind: NodeProgramListing, Name: e.attr("filename")}
	case "codeline":
		n = &Node{Kind: NodeCodeLine}
	case "simplesect":
		n = &Node{Kind: NodeSection, Name: strings.ToLower(e.attr("kind"))}
	case "parameterlist":
		n = &Node{Kind: NodeParameterList, Name: e.attr("kind")}
	case "parameteritem":
		n = &Node{Kind: NodeParameterItem}
	case "parametername":
		n = &Node{Kind: NodeParameterName, Text: strings.TrimSpace(e.text())}
	case "parameterdescription":
		n = &Node{Kind: NodeParameterDescription}
	default:
		if _, ok := styleMarkup[e.name]; ok {
			n = &Node{Kind: NodeStyle, Name: e.name}
		} else {
			n = &Node{Kind: NodeOther, Name: e.name}
		}
	}
	n.Children = convertChildren(e, n.Kind)
	return n
}

func isInline(k NodeKind) bool {
	switch k {
	case NodePara, NodeRef, NodeStyle, NodeLink, NodeCodeLine, NodeParameterName, NodeOther:
		return true
	}
	return false
}

func isBlock(k NodeKind) bool {
	switch k {
	case NodePara, NodeList, NodeProgramListing, NodeSection, NodeParameterList, NodeContainer:
		return true
	}
	return false
}

// PopSection removes and returns the first section or parameter list of the
// given kind and section name, searching breadth first.
func (n *Node) PopSection(kind NodeKind, name string) *Node {
	queue := []*Node{n}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for i, child := range current.Children {
			if child.Kind == kind && child.Name == name {
				current.Children = append(current.Children[:i:i], current.Children[i+1:]...)
				return child
			}
			queue = append(queue, child)
		}
	}
	return nil
}

// Find returns the descendants of the given kind in document order.
func (n *Node) Find(kind NodeKind) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
		out = append(out, child.Find(kind)...)
	}
	return out
}

// first returns the first direct child of the given kind.
func (n *Node) first(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

// renderer converts description nodes to AsciiDoc.
type renderer struct {
	lang    *traits.Traits
	markers []string
}

// AsciiDoc renders n for documents in the given language.
func AsciiDoc(n *Node, lang *traits.Traits) string {
	if n == nil {
		return ""
	}
	r := &renderer{lang: lang}
	return r.render(n)
}

// plainAsciiDoc renders the contents of a section without its frame.
func plainAsciiDoc(n *Node, lang *traits.Traits) string {
	if n == nil {
		return ""
	}
	r := &renderer{lang: lang}
	return r.blocks(n.Children)
}

func (r *renderer) render(n *Node) string {
	switch n.Kind {
	case NodeContainer, NodeParameterDescription:
		return r.blocks(n.Children)
	case NodePara:
		return r.para(n)
	case NodeText:
		return strings.Trim(n.Text, "\r\n")
	case NodeRef:
		return "<<" + r.lang.UniqueID(n.RefID) + "," + r.inline(n.Children) + ">>"
	case NodeStyle:
		markup := styleMarkup[n.Name]
		return markup[0] + r.inline(n.Children) + markup[1]
	case NodeLink:
		return n.Name + "[" + r.inline(n.Children) + "]"
	case NodeLineBreak:
		return " +\n"
	case NodeList:
		marker := n.Name
		if len(r.markers) > 0 && strings.HasPrefix(r.markers[len(r.markers)-1], n.Name) {
			marker = r.markers[len(r.markers)-1] + n.Name
		}
		r.markers = append(r.markers, marker)
		out := r.blocks(n.Children)
		r.markers = r.markers[:len(r.markers)-1]
		return out
	case NodeListItem:
		marker := "*"
		if len(r.markers) > 0 {
			marker = r.markers[len(r.markers)-1]
		}
		return marker + " " + r.blocks(n.Children)
	case NodeProgramListing:
		return r.listing(n)
	case NodeCodeLine:
		return r.inline(n.Children)
	case NodeSection:
		body := r.blocks(n.Children)
		if admonition, ok := admonitions[n.Name]; ok {
			return "[" + admonition + "]\n====\n" + body + "\n===="
		}
		return "." + capitalize(n.Name) + "\n[NOTE]\n====\n" + body + "\n===="
	case NodeParameterList:
		return ""
	default:
		return r.inline(n.Children)
	}
}

func (r *renderer) inline(nodes []*Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.render(n))
	}
	return b.String()
}

// blocks joins the non-empty renditions of nodes with blank lines.
func (r *renderer) blocks(nodes []*Node) string {
	var parts []string
	for _, n := range nodes {
		if out := r.render(n); strings.TrimSpace(out) != "" {
			parts = append(parts, strings.TrimSpace(out))
		}
	}
	return strings.Join(parts, "\n\n")
}

// para renders inline content; nested block content splits the paragraph.
func (r *renderer) para(n *Node) string {
	var (
		parts   []string
		current strings.Builder
	)
	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			parts = append(parts, text)
		}
		current.Reset()
	}
	for _, child := range n.Children {
		if isBlock(child.Kind) {
			flush()
			if out := strings.TrimSpace(r.render(child)); out != "" {
				parts = append(parts, out)
			}
			continue
		}
		current.WriteString(r.render(child))
	}
	flush()
	return strings.Join(parts, "\n\n")
}

func (r *renderer) listing(n *Node) string {
	language := r.lang.Tag
	if n.Name != "" {
		if _, ext, ok := strings.Cut(n.Name, "."); ok {
			language = ext
			if mapped, found := listingLanguages[ext]; found {
				language = mapped
			}
		}
	}
	lines := make([]string, 0, len(n.Children))
	for _, line := range n.Children {
		if line.Kind == NodeCodeLine {
			lines = append(lines, r.render(line))
		}
	}
	return "[source," + language + "]\n----\n" + strings.Join(lines, "\n") + "\n----"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// selectDescriptions makes sure there is a brief description whenever there is
// any description at all, borrowing the first detailed paragraph if needed.
func selectDescriptions(brief, detailed *Node, lang *traits.Traits) (string, string) {
	if text := AsciiDoc(brief, lang); text != "" {
		return text, AsciiDoc(detailed, lang)
	}
	if len(detailed.Children) > 0 {
		brief.Children = append(brief.Children, detailed.Children[0])
		detailed.Children = detailed.Children[1:]
	}
	return AsciiDoc(brief, lang), AsciiDoc(detailed, lang)
}

// popSections removes the simple sections listed in sectionTitles and returns
// their text by title.
func popSections(detailed *Node, lang *traits.Traits) map[string]string {
	sections := make(map[string]string)
	for name, title := range sectionTitles {
		if section := detailed.PopSection(NodeSection, name); section != nil {
			sections[title] = plainAsciiDoc(section, lang)
		}
	}
	if len(sections) == 0 {
		return nil
	}
	return sections
}

// parameterItem finds the documentation of the named parameter.
func parameterItem(list *Node, name string) *Node {
	if list == nil {
		return nil
	}
	for _, item := range list.Find(NodeParameterItem) {
		for _, paramName := range item.Find(NodeParameterName) {
			if paramName.Text == name {
				return item
			}
		}
	}
	return nil
}

func parameterDescription(item *Node, lang *traits.Traits) string {
	if item == nil {
		return ""
	}
	return AsciiDoc(item.first(NodeParameterDescription), lang)
}
