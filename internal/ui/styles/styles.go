package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	// Colors
	Primary    = lipgloss.Color("#7C3AED") // Purple
	Secondary  = lipgloss.Color("#06B6D4") // Cyan
	Error      = lipgloss.Color("#EF4444") // Red
	Muted      = lipgloss.Color("#6B7280") // Gray
	Background = lipgloss.Color("#1F2937") // Dark gray
	Foreground = lipgloss.Color("#F9FAFB") // Light gray
	Border     = lipgloss.Color("#374151") // Gray border

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted)

	HelpKey = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	// Muted text style
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// Secondary text style
	SecondaryText = lipgloss.NewStyle().
			Foreground(Secondary)

	// Error message
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true).
			Padding(0, 1)

	// List styles
	ListItem = lipgloss.NewStyle().
			Foreground(Foreground).
			Padding(0, 2)

	ListItemSelected = lipgloss.NewStyle().
				Foreground(Foreground).
				Background(Primary).
				Padding(0, 2).
				Bold(true)

	// Reader styles
	ReaderHeader = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Primary).
			Padding(0, 1).
			Bold(true)

	ReaderChapter = lipgloss.NewStyle().
			Foreground(Secondary).
			Padding(0, 1)

	ReaderProgress = lipgloss.NewStyle().
			Foreground(Secondary).
			Align(lipgloss.Right)

	FooterBar = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Timeline segments in the footer
	TimelineChapter = lipgloss.NewStyle().
			Foreground(Muted)

	TimelineActive = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	TimelineSection = lipgloss.NewStyle().
			Foreground(Primary)

	// Document rows
	ChapterTitle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	SectionTitle = lipgloss.NewStyle().
			Bold(true)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Italic(true)

	Quote = lipgloss.NewStyle().
		Italic(true)

	Code = lipgloss.NewStyle().
		Faint(true)

	Rule = lipgloss.NewStyle().
		Faint(true)

	// Dialog/Modal styles
	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)

	DialogTitle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)
)

// TruncateText shortens s to width display columns, ending it with an
// ellipsis when cut
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
