package views

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/scrollbook/internal/config"
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/engine"
	"github.com/justyntemme/scrollbook/internal/ui/host"
	"github.com/justyntemme/scrollbook/internal/ui/styles"
	"go.uber.org/zap"
)

const (
	headerRows = 1
	footerRows = 1

	wheelStep    = 3 // rows per wheel notch
	gutter       = 3 // columns between text and indicator
	minTextWidth = 10
)

// ReaderView displays a book with a chapter-aware progress indicator on the
// right edge
type ReaderView struct {
	cfg config.ReaderConfig
	log *zap.Logger
	env engine.Environment

	book   *document.Book
	sched  *host.TickScheduler
	host   *host.Host
	engine *engine.Engine

	// State
	showTOC   bool
	tocCursor int
	pressed   bool   // left button went down on the indicator
	status    string // transient message shown in the footer

	// Dimensions
	width  int
	height int
}

// NewReaderView creates a reader for book and mounts the position engine
func NewReaderView(book *document.Book, cfg config.ReaderConfig, env engine.Environment, log *zap.Logger) *ReaderView {
	if log == nil {
		log = zap.NewNop()
	}
	v := &ReaderView{
		cfg:    cfg,
		log:    log.Named("reader"),
		env:    env,
		book:   book,
		sched:  host.NewTickScheduler(),
		width:  80,
		height: 24,
	}
	cols, rows := v.viewport()
	v.host = host.New(document.NewLayout(book, textWidth(cols)), cols, rows, host.Options{
		Scheduler:      v.sched,
		Logger:         log,
		CellWidth:      cfg.CellWidth,
		SmoothDuration: cfg.SmoothDuration,
		Environment:    env,
	})
	v.host.Do(func() {
		v.engine = engine.New(v.host, engine.Options{
			Scheduler:       v.host,
			Logger:          log,
			Resize:          v.host,
			Intersection:    v.host,
			Indicator:       v.host.Indicator(),
			SettleDelay:     cfg.SettleDelay,
			SnapGuard:       cfg.SnapGuard,
			HideDelay:       cfg.HideDelay,
			ThemeRecheck:    cfg.ThemeRecheck,
			PreviewScale:    cfg.PreviewScale,
			ChapterOffset:   cfg.ChapterOffset,
			TouchBreakpoint: cfg.TouchBreakpoint,
			ThemeProbe: engine.Probe{
				Top:   cfg.ThemeProbe.Top,
				Right: cfg.ThemeProbe.Right * v.cellWidth(),
			},
		})
	})
	v.host.OnScroll(v.engine.HandleScroll)
	v.log = v.log.With(zap.String("view", v.engine.ID()))
	return v
}

// Engine returns the mounted position engine
func (v *ReaderView) Engine() *engine.Engine {
	return v.engine
}

// Host returns the terminal viewport
func (v *ReaderView) Host() *host.Host {
	return v.host
}

// Book returns the displayed book
func (v *ReaderView) Book() *document.Book {
	return v.book
}

// SetBook swaps in a reloaded book, keeping the reading position as a
// fraction of the scroll range
func (v *ReaderView) SetBook(book *document.Book) {
	v.book = book
	cols, rows := v.viewport()
	v.host.Resize(document.NewLayout(book, textWidth(cols)), cols, rows)
	v.tocCursor = min(v.tocCursor, max(len(v.engine.Chapters())-1, 0))
	v.log.Debug("Book reloaded", zap.String("title", book.Title), zap.Int("chapters", len(book.Chapters)))
}

// Overlay reports whether the table of contents is open
func (v *ReaderView) Overlay() bool {
	return v.showTOC
}

// Cmd returns the timers armed since the last call
func (v *ReaderView) Cmd() tea.Cmd {
	return v.sched.Cmd()
}

// Close unmounts the engine
func (v *ReaderView) Close() {
	v.engine.Close()
}

// Init implements View
func (v *ReaderView) Init() tea.Cmd {
	return v.Cmd()
}

// Update implements View
func (v *ReaderView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case host.FireMsg:
		v.sched.Fire(msg)
	case tea.KeyMsg:
		v.status = ""
		if v.showTOC {
			v.updateTOC(msg)
		} else {
			v.handleKey(msg)
		}
	case tea.MouseMsg:
		if !v.showTOC {
			v.handleMouse(msg)
		}
	}
	return v, v.Cmd()
}

func (v *ReaderView) handleKey(msg tea.KeyMsg) {
	_, rows := v.host.Size()
	switch msg.String() {
	case "j", "down":
		v.scroll(1)
	case "k", "up":
		v.scroll(-1)
	case "ctrl+d":
		v.scroll(rows / 2)
	case "ctrl+u":
		v.scroll(-rows / 2)
	case "pgdown", " ", "f":
		v.scroll(max(rows-1, 1))
	case "pgup", "b":
		v.scroll(-max(rows-1, 1))
	case "g", "home":
		v.scrollTo(0)
	case "G", "end":
		v.scrollTo(engine.MaxScroll(v.host))
	case "n", "l":
		v.jumpChapter(1)
	case "N", "h":
		v.jumpChapter(-1)
	case "t":
		v.showTOC = true
		v.tocCursor = v.activeChapterIndex()
	case "p":
		var pinned bool
		v.host.Do(func() { pinned = v.engine.TogglePreview() })
		switch {
		case v.engine.Mode() != engine.ModeTouch:
			v.status = "Preview pinning needs touch mode"
		case pinned:
			v.status = "Preview pinned"
		default:
			v.status = "Preview released"
		}
	case "r":
		v.host.Do(v.engine.Remeasure)
		v.status = fmt.Sprintf("Measured %d chapters", len(v.engine.Chapters()))
	}
}

func (v *ReaderView) scroll(rows int) {
	v.host.Do(func() {
		v.engine.HandleKeyScroll()
		v.host.ScrollBy(float64(rows))
	})
}

func (v *ReaderView) scrollTo(offset float64) {
	v.host.Do(func() {
		v.engine.HandleKeyScroll()
		v.host.ScrollTo(offset, engine.ScrollSmooth)
	})
}

// jumpChapter moves dir chapters away from the active one
func (v *ReaderView) jumpChapter(dir int) {
	chapters := v.engine.Chapters()
	if len(chapters) == 0 {
		return
	}
	target := v.activeChapterIndex() + dir
	if target < 0 || target >= len(chapters) {
		return
	}
	v.gotoChapter(chapters[target])
}

func (v *ReaderView) gotoChapter(r engine.Range) {
	name := r.Anchor
	if name == "" {
		name = r.Name
	}
	v.host.Do(func() { v.engine.ScrollToChapter(name) })
	v.log.Debug("Jump to chapter", zap.String("chapter", r.Name), zap.Float64("start", r.Start))
}

func (v *ReaderView) activeChapterIndex() int {
	for i, r := range v.engine.Chapters() {
		if r.Active {
			return i
		}
	}
	return 0
}

// updateTOC handles keys while the table of contents is open
func (v *ReaderView) updateTOC(msg tea.KeyMsg) {
	chapters := v.engine.Chapters()
	switch msg.String() {
	case "esc", "t", "q":
		v.showTOC = false
	case "j", "down":
		if v.tocCursor < len(chapters)-1 {
			v.tocCursor++
		}
	case "k", "up":
		if v.tocCursor > 0 {
			v.tocCursor--
		}
	case "g", "home":
		v.tocCursor = 0
	case "G", "end":
		v.tocCursor = max(len(chapters)-1, 0)
	case "enter":
		v.showTOC = false
		if v.tocCursor < len(chapters) {
			v.gotoChapter(chapters[v.tocCursor])
		}
	}
}

// handleMouse maps terminal mouse reports onto the indicator gestures. A
// release ends the drag and is then delivered as a click.
func (v *ReaderView) handleMouse(msg tea.MouseMsg) {
	cols, rows := v.host.Size()
	y := msg.Y - headerRows
	inside := y >= 0 && y < rows
	bar := v.host.Bar()
	pointerY := float64(min(max(y, 0), rows-1))

	switch {
	case tea.MouseEvent(msg).IsWheel():
		if !inside {
			return
		}
		var delta int
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			delta = wheelStep
		case tea.MouseButtonWheelUp:
			delta = -wheelStep
		default:
			return
		}
		v.host.Do(func() {
			v.engine.HandleWheel()
			v.host.ScrollBy(float64(delta))
		})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside || msg.X != cols-1 {
			return
		}
		v.host.Do(func() { v.pressed = v.engine.PointerDown(pointerY, bar) })
	case msg.Action == tea.MouseActionMotion:
		if v.pressed {
			v.host.Do(func() { v.engine.PointerMove(pointerY, bar) })
		}
	case msg.Action == tea.MouseActionRelease:
		if !v.pressed {
			return
		}
		v.pressed = false
		v.host.Do(func() {
			v.engine.PointerUp(pointerY, bar)
			v.engine.Click(pointerY, bar)
		})
	}
}

// View implements View
func (v *ReaderView) View() string {
	if v.showTOC {
		return v.renderTOC()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader() + "\n")
	_, rows := v.host.Size()
	for i := 0; i < rows; i++ {
		b.WriteString(v.renderLine(i) + "\n")
	}
	b.WriteString(v.renderFooter())
	return b.String()
}

// SetSize implements View
func (v *ReaderView) SetSize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width = width
	v.height = height
	cols, rows := v.viewport()
	v.host.Resize(document.NewLayout(v.book, textWidth(cols)), cols, rows)
}

// viewport returns the content area in cells
func (v *ReaderView) viewport() (cols, rows int) {
	return max(v.width, 1), max(v.height-headerRows-footerRows, 1)
}

func (v *ReaderView) cellWidth() float64 {
	if v.cfg.CellWidth > 0 {
		return v.cfg.CellWidth
	}
	return host.DefaultCellWidth
}

func textWidth(cols int) int {
	return max(cols-gutter, minTextWidth)
}

// renderHeader renders the title, the current chapter and the progress
func (v *ReaderView) renderHeader() string {
	maxTitleWidth := max(v.width/3, 10)
	titlePart := styles.ReaderHeader.Render(" " + styles.TruncateText(v.book.Title, maxTitleWidth) + " ")

	chapterPart := ""
	if name := v.engine.CurrentChapter(); name != "" {
		chapterPart = styles.ReaderChapter.Render(" " + styles.TruncateText(name, 24))
	}
	if sub, ok := v.engine.ActiveSubchapter(); ok {
		chapterPart += styles.MutedText.Render(" › " + styles.TruncateText(sub.Name, 20))
	}

	progress := v.engine.Progress()
	progressPart := renderProgressBar(10, progress/100) +
		styles.ReaderProgress.Render(fmt.Sprintf(" %.1f%%", engine.Round10(progress)))
	if v.engine.Mode() == engine.ModeTouch {
		progressPart = styles.SecondaryText.Render("touch ") + progressPart
	}

	left := titlePart + chapterPart
	gap := max(v.width-lipgloss.Width(left)-lipgloss.Width(progressPart), 0)
	return left + strings.Repeat(" ", gap) + progressPart
}

// renderProgressBar renders a visual progress bar using Unicode block characters
// width is the total character width, progress is 0.0-1.0
func renderProgressBar(width int, progress float64) string {
	width = max(width, 3)
	progress = min(max(progress, 0), 1)

	const (
		empty    = "░"
		filled   = "█"
		partials = "▏▎▍▌▋▊▉" // 1/8 to 7/8 filled
	)

	filledWidth := progress * float64(width)
	fullBlocks := int(filledWidth)
	remainder := filledWidth - float64(fullBlocks)

	var bar strings.Builder
	for i := 0; i < fullBlocks && i < width; i++ {
		bar.WriteString(filled)
	}
	if fullBlocks < width && remainder > 0 {
		if partialIndex := min(int(remainder*8), 7); partialIndex > 0 {
			bar.WriteRune([]rune(partials)[partialIndex-1])
			fullBlocks++
		}
	}
	for i := fullBlocks; i < width; i++ {
		bar.WriteString(empty)
	}
	return bar.String()
}

// renderLine renders screen row i of the content area: the document row
// behind it followed by the indicator cell
func (v *ReaderView) renderLine(i int) string {
	cols, rows := v.host.Size()
	width := max(cols-1, 1)
	top := v.host.TopRow()

	row, lens := top+i, false
	if p := v.engine.Preview(); p.Active && p.Scale > 0 {
		row = int(math.Floor((float64(i) - p.TranslateY) / p.Scale))
		lens = row >= top && row < top+rows
	}
	return v.renderRow(row, width, lens) + v.renderIndicator(i, rows)
}

// renderRow draws one layout row padded to width
func (v *ReaderView) renderRow(row, width int, lens bool) string {
	layout := v.host.Layout()
	if layout == nil || row < 0 || row >= layout.Height() {
		return strings.Repeat(" ", width)
	}
	page := styles.PageFor(v.host.RowTheme(row))
	r := layout.Rows[row]

	text := " " + r.Text
	var st lipgloss.Style
	switch r.Style {
	case document.StyleChapter:
		st = styles.ChapterTitle
	case document.StyleSection:
		st = styles.SectionTitle
	case document.StyleHeading:
		st = styles.Heading
	case document.StyleQuote:
		st = styles.Quote
	case document.StyleCode:
		st = styles.Code
	case document.StyleRule:
		st = styles.Rule
		text = " " + strings.Repeat("─", max(min(width, layout.Width)-2, 1))
	default:
		st = lipgloss.NewStyle()
	}
	st = st.Inherit(page.Text)
	if lens {
		st = st.Reverse(true)
	}
	return st.Width(width).MaxWidth(width).Render(styles.TruncateText(text, width))
}

// renderIndicator draws the indicator cell of screen row i. The collapsed
// indicator is a thin track with the position marked, the expanded one fills
// up to the position and marks chapter starts.
func (v *ReaderView) renderIndicator(i, rows int) string {
	if !v.engine.IndicatorEnabled() {
		return " "
	}
	page := styles.PageFor(v.engine.Theme())
	pos := scaleRow(v.engine.Progress(), rows)

	if !v.engine.IndicatorVisible() {
		if i == pos {
			return lipgloss.NewStyle().Foreground(page.Fill).Render("▐")
		}
		return lipgloss.NewStyle().Foreground(page.Collapsed).Render("▕")
	}

	color := page.Empty
	if i <= pos {
		color = page.Fill
	}
	for _, r := range v.engine.Chapters() {
		if r.PercentStart > 0 && scaleRow(r.PercentStart, rows) == i {
			return lipgloss.NewStyle().Foreground(page.Label.GetForeground()).Background(color).Render("▔")
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render("█")
}

// scaleRow maps a percentage onto one of rows indicator cells
func scaleRow(percent float64, rows int) int {
	return int(math.Round(min(max(percent, 0), 100) / 100 * float64(max(rows-1, 0))))
}

// renderFooter renders the chapter timeline, or the status message if set
func (v *ReaderView) renderFooter() string {
	if v.status != "" {
		return styles.FooterBar.Width(v.width).Render(styles.SecondaryText.Render(v.status))
	}
	return v.renderTimeline()
}

// renderTimeline lays the chapters out along the footer, each as wide as its
// share of the book
func (v *ReaderView) renderTimeline() string {
	chapters := v.engine.Chapters()
	if len(chapters) == 0 || v.width <= 0 {
		return strings.Repeat(" ", max(v.width, 0))
	}
	var b strings.Builder
	used := 0
	for i, r := range chapters {
		end := int(math.Round(r.PercentEnd / 100 * float64(v.width)))
		if i == len(chapters)-1 {
			end = v.width
		}
		w := end - used
		if w <= 0 {
			continue
		}
		used = end

		label := styles.TruncateText(r.Name, max(w-1, 0))
		cell := label + strings.Repeat(" ", max(w-1-lipgloss.Width(label), 0))
		st := styles.TimelineChapter
		if r.Active {
			st = styles.TimelineActive
		}
		if w > 1 {
			b.WriteString(st.Render(cell) + styles.TimelineSection.Render("│"))
		} else {
			b.WriteString(styles.TimelineSection.Render("│"))
		}
	}
	return b.String()
}

// renderTOC renders the table of contents overlay
func (v *ReaderView) renderTOC() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Table of Contents") + "\n\n")

	chapters := v.engine.Chapters()
	maxVisible := max(v.height-8, 1)
	offset := 0
	if v.tocCursor >= maxVisible {
		offset = v.tocCursor - maxVisible + 1
	}

	for i := offset; i < min(offset+maxVisible, len(chapters)); i++ {
		r := chapters[i]
		line := styles.TruncateText(fmt.Sprintf("%d. %s", i+1, r.Name), max(v.width-20, 10))
		line += fmt.Sprintf("  %5.1f%%", r.PercentStart)

		switch {
		case i == v.tocCursor:
			b.WriteString(styles.ListItemSelected.Render("▸ "+line) + "\n")
		case r.Active:
			b.WriteString(styles.SecondaryText.Render("  "+line+" (current)") + "\n")
		default:
			b.WriteString(styles.ListItem.Render("  "+line) + "\n")
		}
	}
	if len(chapters) == 0 {
		b.WriteString(styles.MutedText.Render("  No chapters") + "\n")
	}

	b.WriteString("\n" + styles.Help.Render("j/k navigate • enter select • esc close"))

	dialog := styles.Dialog.Width(min(60, max(v.width-4, 20))).Render(b.String())
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, dialog)
}
