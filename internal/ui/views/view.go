package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/scrollbook/internal/document"
)

// ViewType represents different screens in the application
type ViewType int

const (
	ViewOpen ViewType = iota
	ViewReader
	ViewTOC
)

// String returns the name of the view
func (v ViewType) String() string {
	switch v {
	case ViewOpen:
		return "Open"
	case ViewReader:
		return "Reader"
	case ViewTOC:
		return "Table of Contents"
	default:
		return "Unknown"
	}
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Message types for inter-view communication

// BookLoadedMsg carries a book read from disk. Reload marks a new copy of
// the book already open.
type BookLoadedMsg struct {
	Book   *document.Book
	Err    error
	Reload bool
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the current error
type ClearErrorMsg struct{}

// Helper functions to create messages

// SendError creates an error message command
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// ClearError creates a command to clear errors
func ClearError() tea.Cmd {
	return func() tea.Msg {
		return ClearErrorMsg{}
	}
}

// LoadBook creates a command that reads path from disk
func LoadBook(path string) tea.Cmd {
	return func() tea.Msg {
		book, err := document.Open(path)
		return BookLoadedMsg{Book: book, Err: err}
	}
}

// ReloadBook creates a command that reads the open book again
func ReloadBook(path string) tea.Cmd {
	return func() tea.Msg {
		book, err := document.Open(path)
		return BookLoadedMsg{Book: book, Err: err, Reload: true}
	}
}
