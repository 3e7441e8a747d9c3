package stepper

import (
	"sync"
	"time"
)

// Default hold-to-repeat timings. A held control steps once immediately,
// again after the arm delay, then on every interval until released.
const (
	DefaultDelay    = 300 * time.Millisecond
	DefaultInterval = 100 * time.Millisecond
)

// State is the repeater lifecycle position.
type State string

const (
	// StateIdle means no control is held.
	StateIdle State = "idle"
	// StateArmed means the immediate step fired and the delay timer runs.
	StateArmed State = "armed"
	// StateRepeating means the interval ticker is stepping.
	StateRepeating State = "repeating"
)

// Repeater turns a press-and-hold into a stream of step callbacks. Press
// fires one step immediately and arms the delay; holding past the delay
// repeats on the interval. Release tears both timers down from any state, so
// a step can never fire after the control was let go.
type Repeater struct {
	Delay    time.Duration
	Interval time.Duration

	mu    sync.Mutex
	state State
	gen   uint64
	stop  chan struct{}
	step  func()
}

// NewRepeater constructs an idle repeater invoking step on every repeat.
func NewRepeater(step func()) *Repeater {
	return &Repeater{state: StateIdle, step: step}
}

// State returns the current lifecycle position.
func (r *Repeater) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == "" {
		return StateIdle
	}
	return r.state
}

// Press fires one immediate step and arms the repeat delay. A press while
// already held is ignored.
func (r *Repeater) Press() {
	r.mu.Lock()
	if r.state != "" && r.state != StateIdle {
		r.mu.Unlock()
		return
	}
	r.state = StateArmed
	r.gen++
	gen := r.gen
	stop := make(chan struct{})
	r.stop = stop
	delay := r.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	r.mu.Unlock()

	r.fire(gen)
	go r.run(gen, stop, delay, interval)
}

// Release returns the repeater to idle and stops all timers. Safe to call
// from any state and any number of times.
func (r *Repeater) Release() {
	r.mu.Lock()
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.state = StateIdle
	r.gen++
	r.mu.Unlock()
}

// Stop is the teardown alias used when the owning session ends.
func (r *Repeater) Stop() { r.Release() }

func (r *Repeater) run(gen uint64, stop chan struct{}, delay, interval time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-stop:
		return
	case <-timer.C:
	}

	r.mu.Lock()
	if r.gen != gen || r.state != StateArmed {
		r.mu.Unlock()
		return
	}
	r.state = StateRepeating
	r.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.fire(gen)
		}
	}
}

// fire invokes the step callback unless the press that scheduled it has
// already been released.
func (r *Repeater) fire(gen uint64) {
	r.mu.Lock()
	live := r.gen == gen && r.state != StateIdle
	step := r.step
	r.mu.Unlock()
	if live && step != nil {
		step()
	}
}
