package engine

import (
	"sort"
	"time"
)

// ManualScheduler is a Scheduler driven by explicit Advance calls. It backs
// tests and headless hosts that have no event loop of their own.
type ManualScheduler struct {
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler creates a scheduler at time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Task {
	s.seq++
	t := &manualTask{s: s, due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Now returns the elapsed virtual time
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of tasks that have not fired or been stopped
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward, running every task that comes due in
// order. Tasks scheduled by callbacks run too if they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		next := s.nextDue(end)
		if next == nil {
			break
		}
		s.now = next.due
		next.fired = true
		next.fn()
	}
	s.now = end
	s.compact()
}

// Flush runs everything that is pending, however far away
func (s *ManualScheduler) Flush() {
	for i := 0; i < 1000 && s.Pending() > 0; i++ {
		var latest time.Duration
		for _, t := range s.tasks {
			if !t.stopped && !t.fired && t.due > latest {
				latest = t.due
			}
		}
		s.Advance(latest - s.now)
	}
}

func (s *ManualScheduler) nextDue(end time.Duration) *manualTask {
	var ready []*manualTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired && t.due <= end {
			ready = append(ready, t)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].due != ready[j].due {
			return ready[i].due < ready[j].due
		}
		return ready[i].seq < ready[j].seq
	})
	return ready[0]
}

func (s *ManualScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.tasks = live
}
