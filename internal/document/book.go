// Package document loads chapter-structured books and lays them out as
// terminal rows.
package document

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// File format constants
const (
	FileFormatMarkdown = "markdown"
	FileFormatEPUB     = "epub"
)

// BlockKind identifies a content block
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockRule
	BlockCode
	BlockQuote
	BlockItem
)

// Block is a run of content inside a chapter or section
type Block struct {
	Kind  BlockKind
	Text  string
	Level int  // heading level
	Snap  bool // block is a snap marker
}

// Section is a subchapter: a titled part of a chapter with an optional theme
type Section struct {
	Title  string
	Anchor string
	Theme  string
	Snap   bool
	Blocks []Block
}

// Chapter is a top level part of a book
type Chapter struct {
	Index    int
	Title    string
	Anchor   string
	Theme    string
	Snap     bool
	Blocks   []Block // content before the first section
	Sections []Section
}

// Book is a loaded document
type Book struct {
	Title    string
	Path     string
	Format   string
	Chapters []Chapter
}

// Sections returns the number of sections across all chapters
func (b *Book) Sections() int {
	n := 0
	for _, c := range b.Chapters {
		n += len(c.Sections)
	}
	return n
}

// finalize numbers chapters, drops empty implicit chapters and assigns unique
// anchors
func (b *Book) finalize() {
	chapters := b.Chapters[:0]
	for _, c := range b.Chapters {
		if c.Title == "" && len(c.Blocks) == 0 && len(c.Sections) == 0 {
			continue
		}
		chapters = append(chapters, c)
	}
	b.Chapters = chapters

	used := map[string]int{}
	anchor := func(explicit, title, fallback string) string {
		base := strings.TrimSpace(explicit)
		if base == "" {
			base = slug.Make(title)
		}
		if base == "" {
			base = fallback
		}
		used[base]++
		if n := used[base]; n > 1 {
			return fmt.Sprintf("%s-%d", base, n)
		}
		return base
	}

	for i := range b.Chapters {
		c := &b.Chapters[i]
		c.Index = i
		switch {
		case c.Title != "":
		case i == 0:
			c.Title = "Preface"
		default:
			c.Title = fmt.Sprintf("Chapter %d", i+1)
		}
		c.Anchor = anchor(c.Anchor, c.Title, fmt.Sprintf("chapter-%d", i+1))
		for j := range c.Sections {
			s := &c.Sections[j]
			if s.Title == "" {
				s.Title = fmt.Sprintf("Section %d.%d", i+1, j+1)
			}
			s.Anchor = anchor(s.Anchor, s.Title, fmt.Sprintf("section-%d-%d", i+1, j+1))
		}
	}
}

// builder accumulates chapters, sections and blocks in reading order
type builder struct {
	book *Book
}

func newBuilder(title, path, format string) *builder {
	return &builder{book: &Book{Title: title, Path: path, Format: format}}
}

func (b *builder) chapter(title, anchor, theme string, snap bool) {
	b.book.Chapters = append(b.book.Chapters, Chapter{Title: title, Anchor: anchor, Theme: theme, Snap: snap})
}

func (b *builder) section(title, anchor, theme string, snap bool) {
	c := b.current()
	c.Sections = append(c.Sections, Section{Title: title, Anchor: anchor, Theme: theme, Snap: snap})
}

func (b *builder) block(blk Block) {
	if blk.Kind != BlockRule && strings.TrimSpace(blk.Text) == "" {
		return
	}
	c := b.current()
	if n := len(c.Sections); n > 0 {
		c.Sections[n-1].Blocks = append(c.Sections[n-1].Blocks, blk)
		return
	}
	c.Blocks = append(c.Blocks, blk)
}

// current returns the open chapter, starting an untitled one when content
// precedes the first chapter heading
func (b *builder) current() *Chapter {
	if len(b.book.Chapters) == 0 {
		b.chapter("", "", "", false)
	}
	return &b.book.Chapters[len(b.book.Chapters)-1]
}

func (b *builder) finish() *Book {
	b.book.finalize()
	return b.book
}
