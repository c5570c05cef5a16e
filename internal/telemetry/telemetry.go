// Package telemetry publishes collar events and sensor readings over MQTT,
// with abstraction for testing.
package telemetry

import (
	"encoding/json"
	"time"

	"github.com/vmay/maia-collar/internal/button"
)

// MQTT topics.
const (
	// TopicButton carries classified button gesture events.
	TopicButton = "maia/collar/button/events"

	// TopicSensors carries periodic sensor readings.
	TopicSensors = "maia/collar/sensors"

	// TopicSystem carries daemon lifecycle events (startup, shutdown,
	// heartbeat, online/offline).
	TopicSystem = "maia/collar/system"
)

// Publisher publishes collar telemetry.
type Publisher interface {
	// PublishButton sends a classified button event.
	PublishButton(ev button.Event, at time.Time) error

	// PublishReading sends a sensor reading.
	PublishReading(r Reading) error

	// PublishSystem sends a daemon lifecycle event.
	PublishSystem(ev SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Reading is one sample of the collar's environmental sensors.
type Reading struct {
	Timestamp    time.Time
	TemperatureC float64
}

// SystemEvent is a daemon lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; returned as-is when set
	Retained   bool
}

// ButtonPayload is the JSON wire format for button events.
type ButtonPayload struct {
	Button ButtonPayloadInner `json:"button"`
}

// ButtonPayloadInner contains the button event details.
type ButtonPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// FormatButtonPayload creates the JSON payload for a button event.
func FormatButtonPayload(ev button.Event, at time.Time) ([]byte, error) {
	payload := ButtonPayload{
		Button: ButtonPayloadInner{
			Timestamp: at.UTC().Format(time.RFC3339),
			Event:     string(ev),
		},
	}
	return json.Marshal(payload)
}

// ReadingPayload is the JSON wire format for sensor readings.
type ReadingPayload struct {
	Sensors ReadingPayloadInner `json:"sensors"`
}

// ReadingPayloadInner contains the reading details.
type ReadingPayloadInner struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temperature_c"`
}

// FormatReadingPayload creates the JSON payload for a sensor reading.
func FormatReadingPayload(r Reading) ([]byte, error) {
	payload := ReadingPayload{
		Sensors: ReadingPayloadInner{
			Timestamp:    r.Timestamp.UTC().Format(time.RFC3339),
			TemperatureC: r.TemperatureC,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the JSON wire format for lifecycle events without a
// pre-formatted snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If ev.RawPayload is set it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(ev SystemEvent) ([]byte, error) {
	if ev.RawPayload != nil {
		return ev.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
			Event:     ev.Event,
			Reason:    ev.Reason,
		},
	}
	return json.Marshal(payload)
}
