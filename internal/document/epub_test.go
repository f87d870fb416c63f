package document

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseXHTML(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return doc
}

func TestAddXHTMLChapter(t *testing.T) {
	doc := parseXHTML(t, `<html><head><title>Ignored</title></head><body>
<h1 data-theme="red">Opening</h1>
<p>First <b>bold</b>
   words.</p>
<h2 id="dusk" data-theme="blue" class="wide snap">Dusk</h2>
<p>Evening.</p>
<hr/>
<ul><li>one</li><li>two</li></ul>
<h3>Detail</h3>
<pre>line1
line2</pre>
</body></html>`)

	b := newBuilder("Book", "book.epub", FileFormatEPUB)
	addXHTMLChapter(b, doc, "Section 1")
	book := b.finish()

	if len(book.Chapters) != 1 {
		t.Fatalf("len(Chapters) = %d, want 1", len(book.Chapters))
	}
	c := book.Chapters[0]
	if c.Title != "Opening" || c.Theme != "red" || c.Anchor != "opening" {
		t.Errorf("chapter = %q/%q/%q, want Opening/red/opening", c.Title, c.Theme, c.Anchor)
	}
	if len(c.Blocks) != 1 || c.Blocks[0].Text != "First bold words." {
		t.Errorf("chapter blocks = %+v", c.Blocks)
	}
	if len(c.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(c.Sections))
	}
	s := c.Sections[0]
	if s.Title != "Dusk" || s.Anchor != "dusk" || s.Theme != "blue" || !s.Snap {
		t.Errorf("section = %+v", s)
	}

	wantKinds := []BlockKind{BlockParagraph, BlockRule, BlockItem, BlockItem, BlockHeading, BlockCode}
	if len(s.Blocks) != len(wantKinds) {
		t.Fatalf("len(section blocks) = %d, want %d: %+v", len(s.Blocks), len(wantKinds), s.Blocks)
	}
	for i, k := range wantKinds {
		if s.Blocks[i].Kind != k {
			t.Errorf("Blocks[%d].Kind = %v, want %v", i, s.Blocks[i].Kind, k)
		}
	}
	if s.Blocks[2].Text != "• one" {
		t.Errorf("item text = %q, want %q", s.Blocks[2].Text, "• one")
	}
	if s.Blocks[4].Level != 3 {
		t.Errorf("heading level = %d, want 3", s.Blocks[4].Level)
	}
	if s.Blocks[5].Text != "line1\nline2" {
		t.Errorf("code text = %q, want %q", s.Blocks[5].Text, "line1\nline2")
	}
}

func TestAddXHTMLChapterFallbackTitle(t *testing.T) {
	b := newBuilder("Book", "book.epub", FileFormatEPUB)
	addXHTMLChapter(b, parseXHTML(t, `<html><body><p>Cover text</p></body></html>`), "Section 1")
	addXHTMLChapter(b, parseXHTML(t, `<html><body><h1>Real</h1><h1>Second</h1></body></html>`), "Section 2")
	book := b.finish()

	if len(book.Chapters) != 2 {
		t.Fatalf("len(Chapters) = %d, want 2", len(book.Chapters))
	}
	if book.Chapters[0].Title != "Section 1" {
		t.Errorf("Chapters[0].Title = %q, want %q", book.Chapters[0].Title, "Section 1")
	}
	if book.Chapters[1].Title != "Real" {
		t.Errorf("Chapters[1].Title = %q, want %q", book.Chapters[1].Title, "Real")
	}
	blocks := book.Chapters[1].Blocks
	if len(blocks) != 1 || blocks[0].Kind != BlockHeading || blocks[0].Text != "Second" {
		t.Errorf("Chapters[1].Blocks = %+v, want one heading", blocks)
	}
}
