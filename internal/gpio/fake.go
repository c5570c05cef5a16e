package gpio

import "sync"

// FakeLine is a test double for the button line. Level changes are scripted
// by the test via SetLevel/Edge.
type FakeLine struct {
	mu sync.Mutex

	// level is the current logical level, true = pressed.
	level bool

	// fn is the registered edge callback.
	fn func()

	// WatchError, if set, is returned by Watch.
	WatchError error

	// Unwatched tracks whether Unwatch was called.
	Unwatched bool

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFakeLine creates a FakeLine reading released.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// Level returns the scripted level.
func (f *FakeLine) Level() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// SetLevel changes the level without delivering an edge notification.
func (f *FakeLine) SetLevel(level bool) {
	f.mu.Lock()
	f.level = level
	f.mu.Unlock()
}

// Edge changes the level and delivers the edge notification, as the real line
// does on a physical transition.
func (f *FakeLine) Edge(level bool) {
	f.mu.Lock()
	f.level = level
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Watch registers the edge callback.
func (f *FakeLine) Watch(fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WatchError != nil {
		return f.WatchError
	}
	f.fn = fn
	return nil
}

// Unwatch removes the edge callback.
func (f *FakeLine) Unwatch() error {
	f.mu.Lock()
	f.fn = nil
	f.Unwatched = true
	f.mu.Unlock()
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeLED records LED state changes for test assertions.
type FakeLED struct {
	mu sync.Mutex

	// On is the current LED state.
	On bool

	// Sets counts calls to Set and Toggle.
	Sets int

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFakeLED creates a FakeLED, initially off.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// Set records the LED state.
func (f *FakeLED) Set(on bool) error {
	f.mu.Lock()
	f.On = on
	f.Sets++
	f.mu.Unlock()
	return nil
}

// Toggle inverts the recorded state.
func (f *FakeLED) Toggle() error {
	f.mu.Lock()
	f.On = !f.On
	f.Sets++
	f.mu.Unlock()
	return nil
}

// Close marks the LED as closed.
func (f *FakeLED) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
