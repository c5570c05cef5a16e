// Package status provides a thread-safe status tracker for the collar daemon.
// It is read by HTTP handlers and embedded into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/vmay/maia-collar/internal/button"
)

// EventCounts tallies classified button events since startup.
type EventCounts struct {
	Presses      int
	Releases     int
	SingleClicks int
	DoubleClicks int
	LongPresses  int
	ExtraLong1   int
	ExtraLong2   int
}

// Config contains daemon configuration for display.
type Config struct {
	DebounceMs    int64
	DoubleClickMs int64
	LongPressMs   int64
	ExtraLong1Ms  int64
	ExtraLong2Ms  int64
	PollMs        int64
	HeartbeatMs   int64
	Broker        string
	HTTPPort      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Machine         button.State
	LastEvent       button.Event
	LastEventTime   time.Time
	Counts          EventCounts
	TemperatureC    float64
	TemperatureTime time.Time
	HapticsMuted    bool
	DisplayOn       bool
	StartTime       time.Time
	Now             time.Time
	MQTTConnected   bool
	Config          Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordEvent notes a classified button event and bumps its counter.
// Called from runLoop for every event the driver emits.
func (t *Tracker) RecordEvent(ev button.Event, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.LastEvent = ev
	t.snap.LastEventTime = at

	switch ev {
	case button.EventPressed:
		t.snap.Counts.Presses++
	case button.EventReleased:
		t.snap.Counts.Releases++
	case button.EventSingleClick:
		t.snap.Counts.SingleClicks++
	case button.EventDoubleClick:
		t.snap.Counts.DoubleClicks++
	case button.EventLongPress:
		t.snap.Counts.LongPresses++
	case button.EventExtraLongPress1:
		t.snap.Counts.ExtraLong1++
	case button.EventExtraLongPress2:
		t.snap.Counts.ExtraLong2++
	}
}

// SetMachineState records the classifier's current machine state.
func (t *Tracker) SetMachineState(s button.State) {
	t.mu.Lock()
	t.snap.Machine = s
	t.mu.Unlock()
}

// SetTemperature records the latest temperature reading.
func (t *Tracker) SetTemperature(c float64, at time.Time) {
	t.mu.Lock()
	t.snap.TemperatureC = c
	t.snap.TemperatureTime = at
	t.mu.Unlock()
}

// SetHapticsMuted records whether haptic feedback is muted.
func (t *Tracker) SetHapticsMuted(muted bool) {
	t.mu.Lock()
	t.snap.HapticsMuted = muted
	t.mu.Unlock()
}

// SetDisplayOn records whether the display is lit.
func (t *Tracker) SetDisplayOn(on bool) {
	t.mu.Lock()
	t.snap.DisplayOn = on
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
