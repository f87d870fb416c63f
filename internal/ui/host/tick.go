package host

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justyntemme/scrollbook/internal/engine"
)

// FireMsg tells the TickScheduler that a task came due
type FireMsg struct {
	ID uint64
}

// TickScheduler is an engine.Scheduler for bubbletea programs. Every task is
// a tea.Tick command that reports back through FireMsg, so callbacks run
// inside Update like any other message.
type TickScheduler struct {
	seq   uint64
	tasks map[uint64]*tickTask
	cmds  []tea.Cmd
}

type tickTask struct {
	s    *TickScheduler
	id   uint64
	fn   func()
	done bool
}

func (t *tickTask) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	delete(t.s.tasks, t.id)
	return true
}

// NewTickScheduler creates an empty scheduler
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{tasks: map[uint64]*tickTask{}}
}

// AfterFunc implements engine.Scheduler. The tick starts once the command
// returned by Cmd is handed to the program.
func (s *TickScheduler) AfterFunc(d time.Duration, fn func()) engine.Task {
	s.seq++
	id := s.seq
	t := &tickTask{s: s, id: id, fn: fn}
	s.tasks[id] = t
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return FireMsg{ID: id}
	}))
	return t
}

// Fire runs the task behind msg. Stopped and unknown tasks are ignored.
func (s *TickScheduler) Fire(msg FireMsg) bool {
	t, ok := s.tasks[msg.ID]
	if !ok {
		return false
	}
	delete(s.tasks, msg.ID)
	t.done = true
	t.fn()
	return true
}

// Cmd returns the ticks scheduled since the last call
func (s *TickScheduler) Cmd() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}

// Pending returns the number of tasks waiting to fire
func (s *TickScheduler) Pending() int {
	return len(s.tasks)
}
