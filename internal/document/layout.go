package document

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Style selects how a row is drawn
type Style int

const (
	StyleBlank Style = iota
	StyleBody
	StyleChapter
	StyleSection
	StyleHeading
	StyleRule
	StyleCode
	StyleQuote
)

// Row is one wrapped line of the laid out book
type Row struct {
	Text    string
	Style   Style
	Chapter int
	Section int // -1 outside of sections
}

// Span is a half-open range of rows
type Span struct {
	Start int
	End   int
}

// Height returns the number of rows in the span
func (s Span) Height() int {
	return s.End - s.Start
}

// Contains reports whether row falls inside the span
func (s Span) Contains(row int) bool {
	return row >= s.Start && row < s.End
}

// Box is the row extent of a chapter or section
type Box struct {
	Title   string
	Anchor  string
	Theme   string
	Chapter int
	Section int // -1 for chapter boxes
	Rows    Span
}

// Layout is a book wrapped to a fixed width. Chapters are laid end to end
// and cover every row, sections sit inside their chapter.
type Layout struct {
	Width    int
	Rows     []Row
	Chapters []Box
	Sections []Box
	Markers  []Span
}

// NewLayout wraps book to width columns
func NewLayout(book *Book, width int) *Layout {
	width = max(width, 1)
	l := &Layout{Width: width}
	if book == nil {
		return l
	}
	for ci, c := range book.Chapters {
		start := len(l.Rows)
		l.title(c.Title, StyleChapter, ci, -1, c.Snap)
		for _, blk := range c.Blocks {
			l.block(blk, ci, -1)
		}
		for si, s := range c.Sections {
			sstart := len(l.Rows)
			l.title(s.Title, StyleSection, ci, si, s.Snap)
			for _, blk := range s.Blocks {
				l.block(blk, ci, si)
			}
			l.Sections = append(l.Sections, Box{
				Title:   s.Title,
				Anchor:  s.Anchor,
				Theme:   s.Theme,
				Chapter: ci,
				Section: si,
				Rows:    Span{Start: sstart, End: len(l.Rows)},
			})
		}
		l.blank(ci, -1)
		l.Chapters = append(l.Chapters, Box{
			Title:   c.Title,
			Anchor:  c.Anchor,
			Theme:   c.Theme,
			Chapter: ci,
			Section: -1,
			Rows:    Span{Start: start, End: len(l.Rows)},
		})
	}
	return l
}

// Height returns the number of rows
func (l *Layout) Height() int {
	return len(l.Rows)
}

// ChapterAt returns the chapter box containing row
func (l *Layout) ChapterAt(row int) (Box, bool) {
	for _, b := range l.Chapters {
		if b.Rows.Contains(row) {
			return b, true
		}
	}
	return Box{}, false
}

// SectionAt returns the section box containing row
func (l *Layout) SectionAt(row int) (Box, bool) {
	for _, b := range l.Sections {
		if b.Rows.Contains(row) {
			return b, true
		}
	}
	return Box{}, false
}

func (l *Layout) title(text string, style Style, chapter, section int, snap bool) {
	start := len(l.Rows)
	for _, line := range Wrap(text, l.Width) {
		l.Rows = append(l.Rows, Row{Text: line, Style: style, Chapter: chapter, Section: section})
	}
	if snap {
		l.Markers = append(l.Markers, Span{Start: start, End: len(l.Rows)})
	}
	l.blank(chapter, section)
}

func (l *Layout) block(blk Block, chapter, section int) {
	start := len(l.Rows)
	add := func(text string, style Style) {
		l.Rows = append(l.Rows, Row{Text: text, Style: style, Chapter: chapter, Section: section})
	}

	switch blk.Kind {
	case BlockRule:
		add("", StyleRule)
	case BlockCode:
		for _, line := range strings.Split(blk.Text, "\n") {
			add(runewidth.Truncate("  "+line, l.Width, "…"), StyleCode)
		}
	case BlockQuote:
		for _, line := range Wrap(blk.Text, l.Width-2) {
			add("│ "+line, StyleQuote)
		}
	case BlockItem:
		bullet, rest, _ := strings.Cut(blk.Text, " ")
		indent := runewidth.StringWidth(bullet) + 1
		for i, line := range Wrap(rest, l.Width-indent) {
			if i == 0 {
				add(bullet+" "+line, StyleBody)
			} else {
				add(strings.Repeat(" ", indent)+line, StyleBody)
			}
		}
	case BlockHeading:
		for _, line := range Wrap(blk.Text, l.Width) {
			add(line, StyleHeading)
		}
	default:
		for _, line := range Wrap(blk.Text, l.Width) {
			add(line, StyleBody)
		}
	}

	if blk.Snap || blk.Kind == BlockRule {
		l.Markers = append(l.Markers, Span{Start: start, End: len(l.Rows)})
	}
	if blk.Kind != BlockItem {
		l.blank(chapter, section)
	}
}

func (l *Layout) blank(chapter, section int) {
	l.Rows = append(l.Rows, Row{Style: StyleBlank, Chapter: chapter, Section: section})
}

// Wrap breaks text into lines of at most width display columns. Words wider
// than a line are split.
func Wrap(text string, width int) []string {
	width = max(width, 1)
	var (
		lines []string
		line  strings.Builder
		lw    int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lw = 0
	}
	for _, word := range strings.Fields(text) {
		ww := runewidth.StringWidth(word)
		if lw > 0 && lw+1+ww > width {
			flush()
		}
		if ww > width {
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if lw > 0 && lw+rw > width {
					flush()
				}
				line.WriteRune(r)
				lw += rw
			}
			continue
		}
		if lw > 0 {
			line.WriteByte(' ')
			lw++
		}
		line.WriteString(word)
		lw += ww
	}
	if lw > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}
