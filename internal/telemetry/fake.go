package telemetry

import (
	"time"

	"github.com/vmay/maia-collar/internal/button"
)

// FakePublisher records published telemetry for test assertions.
type FakePublisher struct {
	// ButtonEvents contains all button events that were published.
	ButtonEvents []button.Event

	// ButtonTimes contains the timestamp supplied with each button event.
	ButtonTimes []time.Time

	// Readings contains all sensor readings that were published.
	Readings []Reading

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by all Publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishButton records the button event.
func (f *FakePublisher) PublishButton(ev button.Event, at time.Time) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.ButtonEvents = append(f.ButtonEvents, ev)
	f.ButtonTimes = append(f.ButtonTimes, at)
	return nil
}

// PublishReading records the sensor reading.
func (f *FakePublisher) PublishReading(r Reading) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Readings = append(f.Readings, r)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(ev SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, ev)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded telemetry.
func (f *FakePublisher) Reset() {
	f.ButtonEvents = nil
	f.ButtonTimes = nil
	f.Readings = nil
	f.SystemEvents = nil
	f.PublishError = nil
	f.Closed = false
	f.Connected = false
}
