// Package button converts a noisy physical switch line into a clean stream of
// gesture events: press, release, single/double click and three escalating
// hold tiers. The state machine is pure logic driven by injected collaborators
// (line, clock, timer service) so it can be tested without hardware.
package button

import (
	"errors"
	"time"
)

// Event is a classified button event delivered to the registered callback.
type Event string

const (
	EventPressed         Event = "PRESSED"
	EventReleased        Event = "RELEASED"
	EventSingleClick     Event = "SINGLE_CLICK"
	EventDoubleClick     Event = "DOUBLE_CLICK"
	EventLongPress       Event = "LONG_PRESS"
	EventExtraLongPress1 Event = "EXTRA_LONG_PRESS_1"
	EventExtraLongPress2 Event = "EXTRA_LONG_PRESS_2"
)

// State is the classifier's machine state, exposed for status reporting.
type State string

const (
	StateIdle               State = "IDLE"
	StateDebouncingPress    State = "DEBOUNCING_PRESS"
	StatePressed            State = "PRESSED"
	StateDebouncingRelease  State = "DEBOUNCING_RELEASE"
	StateWaitingDoubleClick State = "WAITING_DOUBLE_CLICK"
)

// Config holds the classifier timing parameters. The hold thresholds
// LongPress < ExtraLong1 < ExtraLong2 must be strictly increasing.
type Config struct {
	// Debounce is the settle time after any edge before the new level
	// is trusted.
	Debounce time.Duration

	// DoubleClickWindow is the maximum gap between the release of a first
	// short press and the press of a second for the pair to count as a
	// double click.
	DoubleClickWindow time.Duration

	// Cumulative hold-duration thresholds, compared with >=.
	LongPress  time.Duration
	ExtraLong1 time.Duration
	ExtraLong2 time.Duration
}

// DefaultConfig returns the board's stock button timing.
func DefaultConfig() Config {
	return Config{
		Debounce:          20 * time.Millisecond,
		DoubleClickWindow: 400 * time.Millisecond,
		LongPress:         2000 * time.Millisecond,
		ExtraLong1:        5000 * time.Millisecond,
		ExtraLong2:        8000 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if c.Debounce <= 0 || c.DoubleClickWindow <= 0 || c.LongPress <= 0 {
		return ErrInvalidConfig
	}
	if c.LongPress >= c.ExtraLong1 || c.ExtraLong1 >= c.ExtraLong2 {
		return ErrInvalidConfig
	}
	return nil
}

// Line is the raw GPIO signal source for the button.
type Line interface {
	// Level returns the current logical level of the line,
	// true meaning "pressed".
	Level() bool

	// Watch registers fn to be invoked on every logical transition of the
	// line. fn must complete quickly and must not block.
	Watch(fn func()) error

	// Unwatch removes the edge notification. No call to fn may be in
	// flight after Unwatch returns.
	Unwatch() error
}

// Clock provides the current time. Injected so tests control elapsed time.
type Clock interface {
	Now() time.Time
}

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the timer was still
	// pending; a false return means the callback already ran or was stopped.
	Stop() bool
}

// TimerService arms single-shot deferred callbacks.
type TimerService interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

var (
	// ErrNilCallback is returned by New when no event callback is supplied.
	ErrNilCallback = errors.New("button: callback is nil")

	// ErrNilLine is returned by New when no line is supplied.
	ErrNilLine = errors.New("button: line is nil")

	// ErrInvalidConfig is returned by New when timing parameters are not
	// positive or the hold tiers are not strictly increasing.
	ErrInvalidConfig = errors.New("button: invalid timing config")

	// ErrClosed is returned by Close when the driver is already closed.
	ErrClosed = errors.New("button: driver is closed")
)
