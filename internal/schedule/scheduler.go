package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

// Task names used by the controller and the terminal front end.
const (
	TaskEPGRefresh       = "epg-refresh"
	TaskLongPress        = "long-press"
	TaskVODControls      = "vod-controls"
	TaskFSEPG            = "fs-epg"
	TaskAlert            = "alert"
	TaskPINSubmit        = "pin-submit"
	TaskKeyRelease       = "key-release"
	TaskFavoritesRefresh = "favorites-refresh"
)

// Scheduler owns a set of named timers. At most one task per name is live:
// arming a name cancels whatever was armed under it before.
type Scheduler struct {
	clock    Clock
	dispatch func(func())

	mu    sync.Mutex
	gen   uint64
	tasks map[string]*task
}

type task struct {
	gen    uint64
	period time.Duration
	timer  Timer
	fn     func()
}

// New creates a scheduler on clock. Fired callbacks are handed to dispatch,
// which should run them on the owner's event loop; nil runs them inline on
// the timer goroutine.
func New(clock Clock, dispatch func(func())) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Scheduler{
		clock:    clock,
		dispatch: dispatch,
		tasks:    make(map[string]*task),
	}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock { return s.clock }

// Now is shorthand for Clock().Now().
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// After runs fn once, d from now.
func (s *Scheduler) After(name string, d time.Duration, fn func()) {
	s.arm(name, d, 0, fn)
}

// Every runs fn every d until cancelled.
func (s *Scheduler) Every(name string, d time.Duration, fn func()) {
	s.arm(name, d, d, fn)
}

func (s *Scheduler) arm(name string, d, period time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked(name)
	s.gen++
	t := &task{gen: s.gen, period: period, fn: fn}
	t.timer = s.clock.AfterFunc(d, s.fireFunc(name, t.gen))
	s.tasks[name] = t

	logging.Debug("Task armed", zap.String("task", name), zap.Duration("after", d), zap.Bool("periodic", period > 0))
}

func (s *Scheduler) fireFunc(name string, gen uint64) func() {
	return func() {
		s.dispatch(func() { s.fire(name, gen) })
	}
}

// fire runs on the dispatch loop. A task cancelled or replaced after its
// timer went off is recognised by its generation and skipped.
func (s *Scheduler) fire(name string, gen uint64) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok || t.gen != gen {
		s.mu.Unlock()
		return
	}
	if t.period > 0 {
		t.timer = s.clock.AfterFunc(t.period, s.fireFunc(name, gen))
	} else {
		delete(s.tasks, name)
	}
	fn := t.fn
	s.mu.Unlock()

	fn()
}

// Cancel stops the named task. It reports whether one was armed.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(name)
}

func (s *Scheduler) stopLocked(name string) bool {
	t, ok := s.tasks[name]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, name)
	logging.Debug("Task cancelled", zap.String("task", name))
	return true
}

// Active reports whether the named task is armed.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Names lists armed tasks in sorted order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for n := range s.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CancelAll stops every task.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
}
