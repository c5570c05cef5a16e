package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Machine       string           `json:"machine_state"`
	LastEvent     string           `json:"last_event,omitempty"`
	LastEventTime string           `json:"last_event_time,omitempty"`
	HapticsMuted  bool             `json:"haptics_muted"`
	DisplayOn     bool             `json:"display_on"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	MQTT          MQTTStatus       `json:"mqtt"`
	Counts        CountsJSON       `json:"event_counts"`
	Temperature   *TemperatureJSON `json:"temperature,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses      int `json:"presses"`
	Releases     int `json:"releases"`
	SingleClicks int `json:"single_clicks"`
	DoubleClicks int `json:"double_clicks"`
	LongPresses  int `json:"long_presses"`
	ExtraLong1   int `json:"extra_long_1"`
	ExtraLong2   int `json:"extra_long_2"`
}

// TemperatureJSON is the JSON representation of the latest reading.
type TemperatureJSON struct {
	Celsius   float64 `json:"celsius"`
	Timestamp string  `json:"timestamp"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DebounceMs    int64  `json:"debounce_ms"`
	DoubleClickMs int64  `json:"double_click_ms"`
	LongPressMs   int64  `json:"long_press_ms"`
	ExtraLong1Ms  int64  `json:"extra_long_1_ms"`
	ExtraLong2Ms  int64  `json:"extra_long_2_ms"`
	PollMs        int64  `json:"poll_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	machine := string(snap.Machine)
	if machine == "" {
		machine = "UNKNOWN"
	}

	inner := StatusInner{
		Machine:       machine,
		LastEvent:     string(snap.LastEvent),
		HapticsMuted:  snap.HapticsMuted,
		DisplayOn:     snap.DisplayOn,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:      snap.Counts.Presses,
			Releases:     snap.Counts.Releases,
			SingleClicks: snap.Counts.SingleClicks,
			DoubleClicks: snap.Counts.DoubleClicks,
			LongPresses:  snap.Counts.LongPresses,
			ExtraLong1:   snap.Counts.ExtraLong1,
			ExtraLong2:   snap.Counts.ExtraLong2,
		},
		Config: ConfigJSON{
			DebounceMs:    snap.Config.DebounceMs,
			DoubleClickMs: snap.Config.DoubleClickMs,
			LongPressMs:   snap.Config.LongPressMs,
			ExtraLong1Ms:  snap.Config.ExtraLong1Ms,
			ExtraLong2Ms:  snap.Config.ExtraLong2Ms,
			PollMs:        snap.Config.PollMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
		},
	}

	if !snap.LastEventTime.IsZero() {
		inner.LastEventTime = snap.LastEventTime.UTC().Format(time.RFC3339)
	}
	if !snap.TemperatureTime.IsZero() {
		inner.Temperature = &TemperatureJSON{
			Celsius:   snap.TemperatureC,
			Timestamp: snap.TemperatureTime.UTC().Format(time.RFC3339),
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
