package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justyntemme/scrollbook/internal/config"
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/engine"
	"github.com/justyntemme/scrollbook/internal/ui/styles"
	"github.com/justyntemme/scrollbook/internal/ui/views"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// bookChangedMsg is sent when the watched book file changes on disk
type bookChangedMsg struct{}

// App is the main application model
type App struct {
	config *config.Config
	log    *zap.Logger
	env    engine.Environment
	keys   KeyMap
	help   help.Model

	// Current view state
	currentView views.ViewType

	// View models
	picker *views.OpenView
	reader *views.ReaderView

	// Open book
	path    string
	watch   bool
	watcher *document.Watcher

	// Window dimensions
	width  int
	height int

	// Error/status message
	err      error
	showHelp bool
}

// NewApp creates a new application instance. With watch set the open book is
// reloaded whenever its file changes.
func NewApp(cfg *config.Config, env engine.Environment, watch bool, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		config:      cfg,
		log:         log,
		env:         env,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: views.ViewOpen,
		watch:       watch,
		width:       80,
		height:      24,
	}
}

// Browse shows the book picker in dir
func (a *App) Browse(dir string) tea.Cmd {
	a.picker = views.NewOpenView(dir, a.log)
	a.picker.SetSize(a.width, a.height)
	a.currentView = views.ViewOpen
	a.err = nil
	return a.picker.Init()
}

// Open shows book in the reader
func (a *App) Open(book *document.Book) tea.Cmd {
	if a.reader == nil {
		a.reader = views.NewReaderView(book, a.config.Reader, a.env, a.log)
		a.reader.SetSize(a.width, a.height-1)
	} else {
		a.reader.SetBook(book)
	}
	a.currentView = views.ViewReader
	a.err = nil

	// one pending wait per watcher
	var wait tea.Cmd
	if a.path != book.Path {
		a.path = book.Path
		a.startWatching()
		wait = a.waitForChange()
	}
	return tea.Batch(
		a.reader.Init(),
		tea.SetWindowTitle(fmt.Sprintf("scrollbook - %s", book.Title)),
		wait,
	)
}

// Reader returns the reader view, nil before a book was opened
func (a *App) Reader() *views.ReaderView {
	return a.reader
}

// Close unmounts the reader and stops watching the book
func (a *App) Close() error {
	if a.reader != nil {
		a.reader.Close()
	}
	return a.stopWatching()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.currentView == views.ViewOpen && a.picker != nil {
		return tea.Batch(a.picker.Init(), tea.SetWindowTitle("scrollbook"))
	}
	if a.reader != nil {
		return tea.Batch(
			a.reader.Init(),
			tea.SetWindowTitle(fmt.Sprintf("scrollbook - %s", a.reader.Book().Title)),
			a.waitForChange(),
		)
	}
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.picker != nil {
			a.picker.SetSize(msg.Width, msg.Height)
		}
		if a.reader != nil {
			// the last row holds the key help
			a.reader.SetSize(msg.Width, msg.Height-1)
			return a, a.reader.Cmd()
		}
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			// q closes the table of contents before it quits
			if a.currentView == views.ViewReader && a.reader.Overlay() && msg.String() == "q" {
				break
			}
			return a, tea.Quit

		case key.Matches(msg, a.keys.Help):
			a.showHelp = !a.showHelp
			return a, nil

		case key.Matches(msg, a.keys.Escape):
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
			if a.currentView == views.ViewOpen && a.reader != nil {
				return a.switchView(views.ViewReader)
			}
			if a.err != nil && a.currentView == views.ViewReader && !a.reader.Overlay() {
				a.err = nil
				return a, nil
			}

		case key.Matches(msg, a.keys.Open):
			if a.currentView == views.ViewReader && !a.reader.Overlay() {
				return a, a.Browse(filepath.Dir(a.path))
			}
		}
		if a.showHelp {
			return a, nil
		}

	case bookChangedMsg:
		a.log.Info("Reloading book", zap.String("path", a.path))
		return a, views.ReloadBook(a.path)

	case views.BookLoadedMsg:
		if msg.Reload {
			return a, a.reloaded(msg)
		}
		if msg.Err == nil {
			return a, a.Open(msg.Book)
		}

	case views.ErrorMsg:
		a.err = msg.Err
		return a, nil

	case views.ClearErrorMsg:
		a.err = nil
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.currentView {
	case views.ViewOpen:
		if a.picker != nil {
			_, cmd = a.picker.Update(msg)
		}
		// timers of the reader keep running behind the picker
		switch msg.(type) {
		case tea.KeyMsg, tea.MouseMsg:
		default:
			if a.reader != nil {
				_, rcmd := a.reader.Update(msg)
				cmds = append(cmds, rcmd)
			}
		}
	case views.ViewReader, views.ViewTOC:
		_, cmd = a.reader.Update(msg)
	}
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// reloaded applies a reloaded copy of the open book
func (a *App) reloaded(msg views.BookLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		a.log.Warn("Reload failed", zap.String("path", a.path), zap.Error(msg.Err))
		a.err = msg.Err
		return a.waitForChange()
	}
	if a.reader == nil || msg.Book.Path != a.path {
		// another book was opened meanwhile, its watcher has its own wait
		return nil
	}
	a.err = nil
	a.reader.SetBook(msg.Book)
	return tea.Batch(a.reader.Cmd(), a.waitForChange())
}

// View implements tea.Model
func (a *App) View() string {
	if a.showHelp {
		return a.renderHelp()
	}

	if a.currentView == views.ViewOpen && a.picker != nil {
		return a.picker.View()
	}
	if a.reader == nil {
		return ""
	}

	content := a.reader.View()

	// The bottom row shows an error or the key help
	var footer string
	if a.err != nil {
		footer = styles.ErrorStyle.Render("Error: " + styles.TruncateText(a.err.Error(), max(a.width-10, 10)))
	} else {
		footer = a.help.View(a.keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, footer)
}

// switchView changes the current view
func (a *App) switchView(view views.ViewType) (*App, tea.Cmd) {
	a.log.Debug("Switch view", zap.Stringer("from", a.currentView), zap.Stringer("to", view))
	a.currentView = view
	a.err = nil
	return a, nil
}

// activeView returns the screen shown, the table of contents counts as its
// own screen
func (a *App) activeView() views.ViewType {
	if a.currentView == views.ViewReader && a.reader.Overlay() {
		return views.ViewTOC
	}
	return a.currentView
}

func (a *App) startWatching() {
	if err := a.stopWatching(); err != nil {
		a.log.Warn("Unable to stop watching", zap.Error(err))
	}
	if !a.watch {
		return
	}
	w, err := document.Watch(a.path, a.log)
	if err != nil {
		a.log.Warn("Book will not be reloaded", zap.String("path", a.path), zap.Error(err))
		return
	}
	a.watcher = w
}

func (a *App) stopWatching() (err error) {
	if a.watcher != nil {
		err = multierr.Append(err, a.watcher.Close())
		a.watcher = nil
	}
	return err
}

// waitForChange blocks on the watcher until the book changes
func (a *App) waitForChange() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	changes := a.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return bookChangedMsg{}
	}
}

// renderHelp renders the help overlay
func (a *App) renderHelp() string {
	full := a.help
	full.ShowAll = true

	status := a.activeView().String()
	if a.reader != nil {
		e := a.reader.Engine()
		status = fmt.Sprintf("%s mode • %s • %s", e.Mode(), e.SnapState(), status)
	}

	dialog := styles.Dialog.Width(min(72, max(a.width-4, 30))).Render(
		styles.DialogTitle.Render("Keyboard Shortcuts") + "\n\n" +
			full.View(a.keys) + "\n\n" +
			styles.HelpKey.Render("Indicator") + "\n" +
			"  Drag the right column to scrub, click it to jump.\n" +
			"  The wheel scrolls the page.\n\n" +
			styles.MutedText.Render(status),
	)

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		dialog,
	)
}
