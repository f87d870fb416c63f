package document

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// SnapClass marks headings and elements as snap markers
const SnapClass = "snap"

// MarkdownFormat loads Markdown books. `#` headings start chapters, `##`
// headings start sections and thematic breaks are snap markers. Heading
// attributes set anchors, themes and snap markers:
//
//	## Night shift {#night theme=blue .snap}
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Load(filename string) (*Book, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(titleFromPath(filename), filename, data), nil
}

// ParseMarkdown builds a book from Markdown source
func ParseMarkdown(title, path string, src []byte) *Book {
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	doc := md.Parser().Parse(text.NewReader(src))

	b := newBuilder(title, path, FileFormatMarkdown)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		addMarkdownBlock(b, n, src)
	}
	return b.finish()
}

func addMarkdownBlock(b *builder, n ast.Node, src []byte) {
	switch n := n.(type) {
	case *ast.Heading:
		title := inlineText(n, src)
		anchor, theme, snap := headingAttributes(n)
		switch n.Level {
		case 1:
			b.chapter(title, anchor, theme, snap)
		case 2:
			b.section(title, anchor, theme, snap)
		default:
			b.block(Block{Kind: BlockHeading, Text: title, Level: n.Level, Snap: snap})
		}
	case *ast.ThematicBreak:
		b.block(Block{Kind: BlockRule, Snap: true})
	case *ast.Paragraph, *ast.TextBlock:
		b.block(Block{Kind: BlockParagraph, Text: inlineText(n, src)})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		b.block(Block{Kind: BlockCode, Text: strings.TrimRight(string(rawLines(n, src)), "\n")})
	case *ast.Blockquote:
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, inlineText(c, src))
		}
		b.block(Block{Kind: BlockQuote, Text: strings.Join(parts, " ")})
	case *ast.List:
		i := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			bullet := "•"
			if n.IsOrdered() {
				bullet = fmt.Sprintf("%d.", i)
				i++
			}
			var parts []string
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				parts = append(parts, inlineText(c, src))
			}
			b.block(Block{Kind: BlockItem, Text: bullet + " " + strings.Join(parts, " ")})
		}
	case *ast.HTMLBlock:
		// raw HTML is not rendered
	default:
		if t := inlineText(n, src); t != "" {
			b.block(Block{Kind: BlockParagraph, Text: t})
		}
	}
}

// inlineText flattens the inline content below n
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		case *ast.AutoLink:
			buf.Write(c.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

func rawLines(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

func headingAttributes(n ast.Node) (anchor, theme string, snap bool) {
	anchor = attributeString(n, "id")
	theme = attributeString(n, "theme")
	snap = slices.Contains(strings.Fields(attributeString(n, "class")), SnapClass)
	return anchor, theme, snap
}

func attributeString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case []byte:
		return strings.TrimSpace(string(v))
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}
