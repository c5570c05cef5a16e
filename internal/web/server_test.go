package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vmay/maia-collar/internal/button"
	"github.com/vmay/maia-collar/internal/status"
)

func testHash(t *testing.T) string {
	t.Helper()
	hash, err := HashPassword("opensesame")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func newTestServer(t *testing.T, authHash string) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		DebounceMs:    20,
		DoubleClickMs: 400,
		LongPressMs:   2000,
		ExtraLong1Ms:  5000,
		ExtraLong2Ms:  8000,
		PollMs:        5000,
		HeartbeatMs:   900000,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPPort:      ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, authHash)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, "")
	tr.SetMachineState(button.StatePressed)
	tr.RecordEvent(button.EventPressed, time.Now())
	tr.RecordEvent(button.EventLongPress, time.Now())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Machine != "PRESSED" {
		t.Errorf("Machine: got %q, want PRESSED", sj.Status.Machine)
	}
	if sj.Status.LastEvent != "LONG_PRESS" {
		t.Errorf("LastEvent: got %q, want LONG_PRESS", sj.Status.LastEvent)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Presses != 1 {
		t.Errorf("Counts.Presses: got %d, want 1", sj.Status.Counts.Presses)
	}
	if sj.Status.Counts.LongPresses != 1 {
		t.Errorf("Counts.LongPresses: got %d, want 1", sj.Status.Counts.LongPresses)
	}
	if sj.Status.Config.DebounceMs != 20 {
		t.Errorf("Config.DebounceMs: got %d, want 20", sj.Status.Config.DebounceMs)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Config.Broker: got %q", sj.Status.Config.Broker)
	}
}

func TestJSONUnknownStateBeforeFirstEdge(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Machine != "UNKNOWN" {
		t.Errorf("Machine before first update: got %q, want UNKNOWN", sj.Status.Machine)
	}
	if sj.Status.LastEvent != "" {
		t.Errorf("LastEvent before first event: got %q, want empty", sj.Status.LastEvent)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, "")
	tr.SetMachineState(button.StateIdle)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "MAIA Collar") {
		t.Error("expected page title in HTML body")
	}
	if !strings.Contains(string(body), "IDLE") {
		t.Error("expected machine state in HTML body")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, "")

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.HapticsMuted {
		t.Error("expected HapticsMuted=false initially")
	}

	tr.SetHapticsMuted(true)
	tr.SetTemperature(21.5, time.Now())
	tr.SetMQTTConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.HapticsMuted {
		t.Error("expected HapticsMuted=true after update")
	}
	if sj2.Status.Temperature == nil {
		t.Fatal("expected temperature after update")
	}
	if sj2.Status.Temperature.Celsius != 21.5 {
		t.Errorf("Temperature: got %v, want 21.5", sj2.Status.Temperature.Celsius)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	ts, _ := newTestServer(t, testHash(t))

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
	if h := resp.Header.Get("WWW-Authenticate"); !strings.HasPrefix(h, "Basic") {
		t.Errorf("WWW-Authenticate: got %q, want Basic challenge", h)
	}
}

func TestAuthRejectsWrongPassword(t *testing.T) {
	ts, _ := newTestServer(t, testHash(t))

	req, _ := http.NewRequest("GET", ts.URL+"/index.json", nil)
	req.SetBasicAuth("anyone", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestAuthAcceptsCorrectPassword(t *testing.T) {
	ts, _ := newTestServer(t, testHash(t))

	req, _ := http.NewRequest("GET", ts.URL+"/index.json", nil)
	req.SetBasicAuth("anyone", "opensesame")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("collar-secret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ts, _ := newTestServer(t, hash)

	req, _ := http.NewRequest("GET", ts.URL+"/", nil)
	req.SetBasicAuth("x", "collar-secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}
