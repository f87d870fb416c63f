package views

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/ui/styles"
	"go.uber.org/zap"
)

// OpenView displays a file picker for choosing a book
type OpenView struct {
	log        *zap.Logger
	filepicker filepicker.Model
	selected   string
	loading    bool
	err        error

	width  int
	height int
}

type clearOpenErrorMsg struct{}

// NewOpenView creates a picker starting in dir
func NewOpenView(dir string, log *zap.Logger) *OpenView {
	if log == nil {
		log = zap.NewNop()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	fp := filepicker.New()
	fp.AllowedTypes = document.SupportedExtensions()
	fp.CurrentDirectory = dir
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.SetHeight(15)

	return &OpenView{
		log:        log.Named("open"),
		filepicker: fp,
		width:      80,
		height:     24,
	}
}

// Directory returns the directory shown
func (v *OpenView) Directory() string {
	return v.filepicker.CurrentDirectory
}

// Loading reports whether a selected book is being read
func (v *OpenView) Loading() bool {
	return v.loading
}

// Init implements View
func (v *OpenView) Init() tea.Cmd {
	return v.filepicker.Init()
}

// Update implements View
func (v *OpenView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.loading {
			return v, nil
		}

	case BookLoadedMsg:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.log.Warn("Unable to open book", zap.String("path", v.selected), zap.Error(msg.Err))
			return v, v.clearErrorAfter(3 * time.Second)
		}
		return v, nil

	case clearOpenErrorMsg:
		v.err = nil
		return v, nil
	}

	var cmd tea.Cmd
	v.filepicker, cmd = v.filepicker.Update(msg)

	if didSelect, path := v.filepicker.DidSelectFile(msg); didSelect {
		v.selected = path
		v.loading = true
		v.err = nil
		v.log.Debug("Book selected", zap.String("path", path))
		return v, LoadBook(path)
	}

	if didSelect, path := v.filepicker.DidSelectDisabledFile(msg); didSelect {
		v.err = fmt.Errorf("cannot open %s, supported: %s", filepath.Base(path), strings.Join(document.SupportedFormats(), ", "))
		return v, v.clearErrorAfter(2 * time.Second)
	}

	return v, cmd
}

func (v *OpenView) clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearOpenErrorMsg{}
	})
}

// View implements View
func (v *OpenView) View() string {
	var b strings.Builder

	b.WriteString(styles.DialogTitle.Render("Open Book") + "\n")
	b.WriteString(styles.MutedText.Render(styles.TruncateText(v.filepicker.CurrentDirectory, max(v.width-12, 10))) + "\n\n")

	if v.loading {
		b.WriteString(styles.SecondaryText.Render(fmt.Sprintf("Opening %s...", filepath.Base(v.selected))) + "\n\n")
	}
	if v.err != nil {
		b.WriteString(styles.ErrorStyle.Render(v.err.Error()) + "\n\n")
	}

	b.WriteString(v.filepicker.View())

	b.WriteString("\n")
	help := []string{
		styles.HelpKey.Render("↑/↓") + styles.Help.Render(" navigate"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("←") + styles.Help.Render(" parent"),
		styles.HelpKey.Render("q") + styles.Help.Render(" quit"),
	}
	b.WriteString(strings.Join(help, "  "))

	content := styles.Dialog.Width(max(v.width-4, 20)).Render(b.String())
	return lipgloss.Place(
		v.width,
		v.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// SetSize implements View
func (v *OpenView) SetSize(width, height int) {
	v.width = width
	v.height = height
	// leave room for the dialog frame, title and help
	v.filepicker.SetHeight(max(height-14, 5))
}
