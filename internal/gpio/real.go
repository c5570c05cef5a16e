//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// ButtonLine is the physical pushbutton line, requested with both-edge events
// so transitions are delivered without polling. It satisfies button.Line.
type ButtonLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu sync.Mutex
	fn func()
}

// NewButtonLine requests the button pin as a pulled-up input with edge events
// on both transitions.
func NewButtonLine(chipName string, offset int) (*ButtonLine, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &ButtonLine{chip: chip}
	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(b.onEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", offset, err)
	}
	b.line = line
	return b, nil
}

// onEvent runs on the gpiocdev event goroutine for every edge. The registered
// callback is copied out under the lock and invoked without it, so a consumer
// holding its own lock can call Unwatch without deadlocking against an
// in-flight event.
func (b *ButtonLine) onEvent(gpiocdev.LineEvent) {
	b.mu.Lock()
	fn := b.fn
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Level returns the current logical level, true meaning pressed.
// The line is active low: raw 0 = pressed.
func (b *ButtonLine) Level() bool {
	v, err := b.line.Value()
	if err != nil {
		return false
	}
	return v == 0
}

// Watch registers fn to run on every edge of the line.
func (b *ButtonLine) Watch(fn func()) error {
	b.mu.Lock()
	b.fn = fn
	b.mu.Unlock()
	return nil
}

// Unwatch removes the edge callback.
func (b *ButtonLine) Unwatch() error {
	b.mu.Lock()
	b.fn = nil
	b.mu.Unlock()
	return nil
}

// Close releases the line and chip.
func (b *ButtonLine) Close() error {
	var errs []error
	if b.line != nil {
		if err := b.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button line: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// LED drives the status LED output line.
type LED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu sync.Mutex
	on bool
}

// NewLED requests the status LED pin as an output, initially off.
func NewLED(chipName string, offset int) (*LED, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pin %d: %w", offset, err)
	}
	return &LED{chip: chip, line: line}, nil
}

// Set drives the LED on or off.
func (l *LED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set(on)
}

func (l *LED) set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	l.on = on
	return nil
}

// Toggle inverts the LED state.
func (l *LED) Toggle() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set(!l.on)
}

// Close turns the LED off and releases the line and chip.
func (l *LED) Close() error {
	var errs []error
	if l.line != nil {
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear led: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led line: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
