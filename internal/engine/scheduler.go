package engine

import "time"

// Task is a pending fire-once callback
type Task interface {
	// Stop cancels the task, it reports false if the task already fired or was stopped
	Stop() bool
}

// Scheduler runs callbacks after a delay on the host event loop
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// deferred owns at most one pending task for a single purpose (settle
// detection, snap guard, ...). Arming it again replaces the pending task.
type deferred struct {
	name  string
	sched Scheduler
	delay time.Duration
	fn    func()
	task  Task
}

func newDeferred(name string, sched Scheduler, delay time.Duration, fn func()) *deferred {
	return &deferred{name: name, sched: sched, delay: delay, fn: fn}
}

// Reset cancels any pending run and schedules a fresh one
func (d *deferred) Reset() {
	d.Cancel()
	var self Task
	self = d.sched.AfterFunc(d.delay, func() {
		if d.task != self {
			return
		}
		d.task = nil
		d.fn()
	})
	d.task = self
}

// Cancel drops the pending run, if any
func (d *deferred) Cancel() {
	if d.task != nil {
		d.task.Stop()
		d.task = nil
	}
}

// Pending reports whether a run is scheduled
func (d *deferred) Pending() bool {
	return d.task != nil
}
