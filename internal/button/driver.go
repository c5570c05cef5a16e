package button

import (
	"fmt"
	"sync"
	"time"
)

// Driver is the debounce and gesture classifier for one physical button line.
//
// Two execution contexts touch the driver: the line's edge notification and
// the deferred timer callbacks. The edge path does minimal work (one level
// read, one timer arm, one state tag) while all classification runs in the
// timer callbacks. On a preemptive host both paths can interleave, so the
// whole context sits behind a mutex.
//
// The callback is invoked synchronously from the timer context and must not
// block or call back into the driver.
type Driver struct {
	mu       sync.Mutex
	line     Line
	callback func(Event)
	cfg      Config
	clock    Clock
	timers   TimerService

	state      State
	pressStart time.Time
	clickCount int

	debounceTimer Timer
	holdTimer     Timer
	doubleTimer   Timer

	closed bool
}

// Option customizes a Driver at construction. Used by tests to inject a fake
// clock and timer service.
type Option func(*Driver)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithTimerService replaces the time.AfterFunc based timer service.
func WithTimerService(ts TimerService) Option {
	return func(d *Driver) { d.timers = ts }
}

// New creates a classifier bound to line and starts watching for edges.
// Every event is delivered to callback. On failure nothing is left armed.
func New(line Line, callback func(Event), cfg Config, opts ...Option) (*Driver, error) {
	if line == nil {
		return nil, ErrNilLine
	}
	if callback == nil {
		return nil, ErrNilCallback
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		line:     line,
		callback: callback,
		cfg:      cfg,
		clock:    systemClock{},
		timers:   systemTimers{},
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := line.Watch(d.handleEdge); err != nil {
		return nil, fmt.Errorf("button: watch line: %w", err)
	}
	return d, nil
}

// Close disables the edge watch, cancels all pending timers and clears the
// callback. No event is delivered after Close returns. Returns ErrClosed if
// the driver is already closed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.closed = true

	// Unwatch first so no new edge arrives, then cancel timers, then clear
	// the context. An in-flight timer callback blocks on the mutex and
	// bails out on the closed flag.
	err := d.line.Unwatch()
	stopTimer(&d.debounceTimer)
	stopTimer(&d.holdTimer)
	stopTimer(&d.doubleTimer)
	d.callback = nil
	d.state = StateIdle
	d.clickCount = 0

	if err != nil {
		return fmt.Errorf("button: unwatch line: %w", err)
	}
	return nil
}

// PhysicalState returns whether the line currently reads pressed, independent
// of debounce or classification state. Usable at any time.
func (d *Driver) PhysicalState() bool {
	return d.line.Level()
}

// State returns the classifier's current machine state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// handleEdge runs on every raw transition of the line. It only samples the
// level, tags the state and arms the debounce timer; edges arriving while a
// debounce window is already pending are ignored, so the pending timer stays
// authoritative and no two presses are recognized closer together than one
// debounce interval.
func (d *Driver) handleEdge() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	switch d.state {
	case StateIdle, StatePressed, StateWaitingDoubleClick:
		if d.line.Level() {
			d.state = StateDebouncingPress
		} else {
			d.state = StateDebouncingRelease
		}
		d.debounceTimer = d.timers.AfterFunc(d.cfg.Debounce, d.onDebounce)
	}
}

// onDebounce re-samples the line after the settle time and either validates
// the transition or discards it as contact noise.
func (d *Driver) onDebounce() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	pressed := d.line.Level()

	switch d.state {
	case StateDebouncingPress:
		if pressed {
			d.validPress()
		} else {
			// Was noise.
			d.state = StateIdle
		}
	case StateDebouncingRelease:
		if !pressed {
			d.validRelease()
		} else {
			// Was noise.
			d.state = StatePressed
		}
	}
}

// validPress records the press start, reports EventPressed and arms the hold
// timer for the first tier.
func (d *Driver) validPress() {
	d.pressStart = d.clock.Now()
	d.state = StatePressed
	d.emit(EventPressed)
	d.holdTimer = d.timers.AfterFunc(d.cfg.LongPress, d.onHold)
}

// validRelease reports EventReleased and classifies the completed press.
func (d *Driver) validRelease() {
	stopTimer(&d.holdTimer)
	stopTimer(&d.doubleTimer)

	held := d.clock.Now().Sub(d.pressStart)
	d.emit(EventReleased)

	if held >= d.cfg.LongPress {
		// The hold timer already reported the tier while the button was
		// down; the release itself carries no extra classification.
		d.clickCount = 0
		d.state = StateIdle
		return
	}

	// Short press: single or double click.
	d.clickCount++
	switch d.clickCount {
	case 1:
		d.state = StateWaitingDoubleClick
		d.doubleTimer = d.timers.AfterFunc(d.cfg.DoubleClickWindow, d.onDoubleClickTimeout)
	case 2:
		d.emit(EventDoubleClick)
		d.clickCount = 0
		d.state = StateIdle
	}
}

// onHold fires while the button is held. The timer is armed for LongPress on
// a valid press, so the first fire is never below the first tier; it then
// reschedules itself with the remaining time to the next tier. The highest
// tier is terminal for the hold.
func (d *Driver) onHold() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.state != StatePressed {
		return
	}

	held := d.clock.Now().Sub(d.pressStart)

	switch {
	case held >= d.cfg.ExtraLong2:
		d.emit(EventExtraLongPress2)
	case held >= d.cfg.ExtraLong1:
		d.emit(EventExtraLongPress1)
		d.holdTimer = d.timers.AfterFunc(d.cfg.ExtraLong2-held, d.onHold)
	case held >= d.cfg.LongPress:
		d.emit(EventLongPress)
		d.holdTimer = d.timers.AfterFunc(d.cfg.ExtraLong1-held, d.onHold)
	}
}

// onDoubleClickTimeout fires when no second click arrived inside the window.
func (d *Driver) onDoubleClickTimeout() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.state != StateWaitingDoubleClick {
		return
	}

	d.emit(EventSingleClick)
	d.clickCount = 0
	d.state = StateIdle
}

func (d *Driver) emit(ev Event) {
	if d.callback != nil {
		d.callback(ev)
	}
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
