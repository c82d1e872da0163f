package corpus

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

var questionPrefix = regexp.MustCompile(`^Q\d+:\s*`)

// HTMLFile extracts items from one markup document.
//
// With QuestionSections set, every <section id="q..."> holding an <h2> becomes a
// question/answer item. Otherwise headings become sections (text up to the next
// heading), and tables and top-level lists become items of their own.
type HTMLFile struct {
	Label            string
	Path             string
	QuestionSections bool
}

// Name implements Source.
func (h *HTMLFile) Name() string { return "html:" + h.label() }

// Kind implements Source.
func (h *HTMLFile) Kind() content.Kind { return content.KindHTML }

// Paths implements Source.
func (h *HTMLFile) Paths() []string { return []string{h.Path} }

func (h *HTMLFile) label() string {
	if h.Label != "" {
		return h.Label
	}
	return strings.TrimSuffix(filepath.Base(h.Path), filepath.Ext(h.Path))
}

// Load implements Source.
func (h *HTMLFile) Load(_ context.Context) ([]content.Item, error) {
	data, err := readOptional(h.Path)
	if err != nil || data == nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, parseError(h.Path, err)
	}

	x := &extractor{prefix: "html-" + h.label()}
	if h.QuestionSections {
		x.questionSections(doc)
	} else {
		x.walk(doc)
	}
	return x.items, nil
}

type extractor struct {
	prefix      string
	items       []content.Item
	tables      int
	lists       int
	headings    int
	lastHeading string
}

func (x *extractor) add(id, title, body, ref string) {
	item, err := content.New(fmt.Sprintf("%s-%s", x.prefix, id), title, body, content.KindHTML)
	if err != nil {
		return
	}
	x.items = append(x.items, item.WithRef(ref))
}

func (x *extractor) questionSections(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Section {
		id := attr(n, "id")
		if strings.HasPrefix(id, "q") {
			if h2 := findFirst(n, atom.H2); h2 != nil {
				heading := textOf(h2)
				question := questionPrefix.ReplaceAllString(heading, "")
				answer := strings.TrimSpace(strings.Replace(textOf(n), heading, "", 1))
				if question != "" && answer != "" {
					x.add(id, question, "Q: "+question+"\nA: "+answer, "#"+id)
				}
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.questionSections(c)
	}
}

func (x *extractor) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch {
		case isHeading(n):
			x.heading(n)
		case n.DataAtom == atom.Table:
			x.table(n)
			return
		case n.DataAtom == atom.Ul || n.DataAtom == atom.Ol:
			x.list(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.walk(c)
	}
}

// heading collects the text of following siblings up to the next heading.
func (x *extractor) heading(n *html.Node) {
	x.headings++
	title := textOf(n)
	if title == "" {
		return
	}
	x.lastHeading = title

	var parts []string
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if isHeading(s) {
			break
		}
		if t := textOf(s); t != "" {
			parts = append(parts, t)
		}
	}

	ref := ""
	if id := attr(n, "id"); id != "" {
		ref = "#" + id
	}
	x.add(fmt.Sprintf("section-%d", x.headings), title, strings.Join(parts, "\n"), ref)
}

func (x *extractor) table(n *html.Node) {
	x.tables++
	label := fmt.Sprintf("Table %d", x.tables)
	if c := findFirst(n, atom.Caption); c != nil {
		if t := textOf(c); t != "" {
			label = t
		}
	}

	var rows []string
	eachElement(n, atom.Tr, func(tr *html.Node) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
				cells = append(cells, textOf(c))
			}
		}
		if row := strings.TrimSpace(strings.Join(cells, " | ")); row != "" && row != "|" {
			rows = append(rows, row)
		}
	})

	x.add(fmt.Sprintf("table-%d", x.tables), label+" - Table Data", strings.Join(rows, "\n"), "")
}

func (x *extractor) list(n *html.Node) {
	x.lists++
	label := x.lastHeading
	if label == "" {
		label = fmt.Sprintf("List %d", x.lists)
	}

	var entries []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom != atom.Li {
			continue
		}
		if t := textOf(c); t != "" {
			entries = append(entries, "- "+t)
		}
	}

	x.add(fmt.Sprintf("list-%d", x.lists), label+" - List Items", strings.Join(entries, "\n"), "")
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func eachElement(n *html.Node, a atom.Atom, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			fn(c)
		}
		eachElement(c, a, fn)
	}
}

// textOf returns the whitespace-collapsed text content of n, skipping scripts and styles.
func textOf(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
