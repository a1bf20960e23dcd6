// Package sched is a cooperative timed task queue driven by the UI tick.
//
// Tasks never run on their own goroutine. The owner calls RunDue from the
// event loop, so callbacks may touch UI state without locking. A Scheduler is
// not safe for concurrent use.
package sched

import (
	"sort"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	T time.Time
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.T = c.T.Add(d)
	return c.T
}

type taskState int

const (
	taskPending taskState = iota
	taskDone
	taskCancelled
)

// Task is a scheduled callback.
type Task struct {
	due   time.Time
	seq   uint64
	fn    func()
	state taskState
}

// Cancel prevents the task from running. It reports whether the task was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	return true
}

// Due returns when the task becomes runnable.
func (t *Task) Due() time.Time { return t.due }

// Pending reports whether the task has neither run nor been cancelled.
func (t *Task) Pending() bool { return t != nil && t.state == taskPending }

// Scheduler holds pending tasks ordered by due time.
type Scheduler struct {
	clock Clock
	tasks []*Task
	seq   uint64
}

// New returns a Scheduler using clock, or the system clock when nil.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler's notion of the current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	s.seq++
	t := &Task{due: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// RunDue runs every pending task due at or before now, oldest first, and
// returns how many ran. Tasks scheduled by a callback wait for the next call.
func (s *Scheduler) RunDue(now time.Time) int {
	var due, rest []*Task
	for _, t := range s.tasks {
		switch {
		case t.state != taskPending:
		case !t.due.After(now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.tasks = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, t := range due {
		// an earlier callback in this batch may have cancelled it
		if t.state != taskPending {
			continue
		}
		t.state = taskDone
		if t.fn != nil {
			t.fn()
		}
		ran++
	}
	return ran
}

// Pending returns the number of tasks that have not run or been cancelled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if t.state == taskPending {
			n++
		}
	}
	return n
}

// NextDue returns the earliest pending due time.
func (s *Scheduler) NextDue() (time.Time, bool) {
	var next time.Time
	found := false
	for _, t := range s.tasks {
		if t.state != taskPending {
			continue
		}
		if !found || t.due.Before(next) {
			next = t.due
			found = true
		}
	}
	return next, found
}
