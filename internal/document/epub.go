package document

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ThemeAttr is the XHTML attribute carrying a section theme
const ThemeAttr = "data-theme"

// EPUBFormat loads EPUB books. Every spine item becomes a chapter, h2
// headings inside it start sections and hr elements are snap markers.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Load(filename string) (*Book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]

	title := strings.TrimSpace(book.Title)
	if title == "" {
		title = titleFromPath(filename)
	}
	b := newBuilder(title, filename, FileFormatEPUB)

	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		doc, err := html.Parse(strings.NewReader(string(data)))
		if err != nil {
			continue
		}
		addXHTMLChapter(b, doc, fmt.Sprintf("Section %d", i+1))
	}
	return b.finish(), nil
}

// addXHTMLChapter appends one spine document as a chapter. The first h1
// names the chapter, otherwise the fallback does.
func addXHTMLChapter(b *builder, doc *html.Node, fallback string) {
	body := findElement(doc, atom.Body)
	if body == nil {
		body = doc
	}
	title, theme, snap := fallback, "", false
	if h := findElement(body, atom.H1); h != nil {
		title, theme, snap = nodeText(h), attr(h, ThemeAttr), hasClass(h, SnapClass)
	}
	b.chapter(title, "", theme, snap)

	seenTitle := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}
		snap := hasClass(n, SnapClass)
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.H1:
			if !seenTitle {
				seenTitle = true
				return
			}
			b.block(Block{Kind: BlockHeading, Text: nodeText(n), Level: 1, Snap: snap})
		case atom.H2:
			b.section(nodeText(n), attr(n, "id"), attr(n, ThemeAttr), snap)
		case atom.H3, atom.H4, atom.H5, atom.H6:
			b.block(Block{Kind: BlockHeading, Text: nodeText(n), Level: int(n.Data[1] - '0'), Snap: snap})
		case atom.Hr:
			b.block(Block{Kind: BlockRule, Snap: true})
		case atom.P:
			b.block(Block{Kind: BlockParagraph, Text: nodeText(n), Snap: snap})
		case atom.Li:
			b.block(Block{Kind: BlockItem, Text: "• " + nodeText(n), Snap: snap})
		case atom.Blockquote:
			b.block(Block{Kind: BlockQuote, Text: nodeText(n), Snap: snap})
		case atom.Pre:
			b.block(Block{Kind: BlockCode, Text: strings.Trim(rawText(n), "\n"), Snap: snap})
		case atom.Ul, atom.Ol, atom.Div, atom.Section, atom.Article, atom.Body, atom.Html, atom.Main:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		default:
			if t := nodeText(n); t != "" {
				b.block(Block{Kind: BlockParagraph, Text: t, Snap: snap})
			}
		}
	}
	walk(body)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// nodeText returns the whitespace-collapsed text below n
func nodeText(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

func rawText(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			out.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			out.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}
