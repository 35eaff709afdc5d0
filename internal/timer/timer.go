// Package timer counts focus time for the task in progress.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// State is the run state of a FocusTimer.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Reporter receives the counter after every tick and after Reset.
type Reporter func(taskID string, seconds int64)

// Ticker is the tick source of a FocusTimer.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type clockTicker struct {
	t *time.Ticker
}

func (c clockTicker) C() <-chan time.Time { return c.t.C }
func (c clockTicker) Stop()               { c.t.Stop() }

// Option configures a FocusTimer.
type Option func(*FocusTimer)

// WithTicker replaces the one-second wall clock ticker.
func WithTicker(newTicker func() Ticker) Option {
	return func(t *FocusTimer) {
		t.newTicker = newTicker
	}
}

// Snapshot is a point-in-time view of the timer.
type Snapshot struct {
	State   State
	TaskID  string
	Seconds int64
}

// FocusTimer is bound to at most one task at a time.
type FocusTimer struct {
	mu      sync.Mutex
	state   State
	taskID  string
	seconds int64
	stop    chan struct{}
	done    chan struct{}

	// lifecycle serializes Attach and Detach.
	lifecycle sync.Mutex
	// deliver orders reports so a Reset is never overtaken by an older tick.
	deliver sync.Mutex

	report    Reporter
	newTicker func() Ticker
}

// New creates an idle FocusTimer that hands every count to report.
func New(report Reporter, opts ...Option) *FocusTimer {
	t := &FocusTimer{
		report: report,
		newTicker: func() Ticker {
			return clockTicker{t: time.NewTicker(time.Second)}
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach starts counting for taskID from its persisted time spent.
// Attaching to the task already attached keeps the current counter.
func (t *FocusTimer) Attach(taskID string, initialSeconds int64) {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()

	t.mu.Lock()
	if t.state != StateIdle && t.taskID == taskID {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.detach()

	ticker := t.newTicker()
	stop := make(chan struct{})
	done := make(chan struct{})

	t.mu.Lock()
	t.state = StateRunning
	t.taskID = taskID
	t.seconds = initialSeconds
	t.stop = stop
	t.done = done
	t.mu.Unlock()

	go t.run(ticker, stop, done)
}

func (t *FocusTimer) run(ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			t.tick(stop)
		}
	}
}

func (t *FocusTimer) tick(stop chan struct{}) {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	if t.stop != stop || t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.seconds++
	taskID, seconds := t.taskID, t.seconds
	t.mu.Unlock()

	if t.report != nil {
		t.report(taskID, seconds)
	}
}

// Pause suspends counting without losing the counter.
func (t *FocusTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateRunning {
		t.state = StatePaused
	}
}

func (t *FocusTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StatePaused {
		t.state = StateRunning
	}
}

// Reset zeroes the counter and reports zero. The attachment is unchanged.
func (t *FocusTimer) Reset() {
	t.deliver.Lock()
	defer t.deliver.Unlock()

	t.mu.Lock()
	if t.state == StateIdle {
		t.mu.Unlock()
		return
	}
	t.seconds = 0
	taskID := t.taskID
	t.mu.Unlock()

	if t.report != nil {
		t.report(taskID, 0)
	}
}

// Detach returns the timer to idle. Once it returns no further tick is reported.
// It must not be called from the Reporter.
func (t *FocusTimer) Detach() {
	t.lifecycle.Lock()
	defer t.lifecycle.Unlock()
	t.detach()
}

func (t *FocusTimer) detach() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.state = StateIdle
	t.taskID = ""
	t.seconds = 0
	t.stop = nil
	t.done = nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (t *FocusTimer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, TaskID: t.taskID, Seconds: t.seconds}
}

// Format renders seconds as HH:MM:SS.
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
