//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// ButtonLine is not available on non-Linux platforms.
type ButtonLine struct{}

// NewButtonLine returns an error on non-Linux platforms.
func NewButtonLine(chipName string, offset int) (*ButtonLine, error) {
	return nil, errUnsupported
}

// Level is not implemented on non-Linux platforms.
func (b *ButtonLine) Level() bool { return false }

// Watch is not implemented on non-Linux platforms.
func (b *ButtonLine) Watch(fn func()) error { return errUnsupported }

// Unwatch is not implemented on non-Linux platforms.
func (b *ButtonLine) Unwatch() error { return nil }

// Close is not implemented on non-Linux platforms.
func (b *ButtonLine) Close() error { return nil }

// LED is not available on non-Linux platforms.
type LED struct{}

// NewLED returns an error on non-Linux platforms.
func NewLED(chipName string, offset int) (*LED, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (l *LED) Set(on bool) error { return errUnsupported }

// Toggle is not implemented on non-Linux platforms.
func (l *LED) Toggle() error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (l *LED) Close() error { return nil }
