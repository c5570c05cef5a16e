package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vmay/maia-collar/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"celsius": func(c float64) string {
		return fmt.Sprintf("%.2f °C", c)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MAIA Collar</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: #888; }
.active { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.muted { color: orange; }
</style>
</head>
<body>
<h1>MAIA Collar</h1>

<h2>Button</h2>
<table>
<tr><th>Machine state</th><td class="{{if eq (orUnknown (printf "%s" .Machine)) "IDLE"}}idle{{else if eq (orUnknown (printf "%s" .Machine)) "UNKNOWN"}}unknown{{else}}active{{end}}">{{orUnknown (printf "%s" .Machine)}}</td></tr>
<tr><th>Last event</th><td>{{if .LastEvent}}{{.LastEvent}} at {{.LastEventTime.UTC.Format "15:04:05Z"}}{{else}}none{{end}}</td></tr>
</table>

<h2>Feedback</h2>
<table>
<tr><th>Haptics</th><td class="{{if .HapticsMuted}}muted{{end}}">{{if .HapticsMuted}}muted{{else}}active{{end}}</td></tr>
<tr><th>Display</th><td>{{if .DisplayOn}}on{{else}}off{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Presses</th><td>{{.Counts.Presses}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Releases}}</td></tr>
<tr><th>Single clicks</th><td>{{.Counts.SingleClicks}}</td></tr>
<tr><th>Double clicks</th><td>{{.Counts.DoubleClicks}}</td></tr>
<tr><th>Long presses</th><td>{{.Counts.LongPresses}}</td></tr>
<tr><th>Extra long (5s)</th><td>{{.Counts.ExtraLong1}}</td></tr>
<tr><th>Extra long (8s)</th><td>{{.Counts.ExtraLong2}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
<tr><th>Temperature</th><td>{{if .TemperatureTime.IsZero}}no reading yet{{else}}{{celsius .TemperatureC}} at {{.TemperatureTime.UTC.Format "15:04:05Z"}}{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Double click</th><td>{{.Config.DoubleClickMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms / {{.Config.ExtraLong1Ms}}ms / {{.Config.ExtraLong2Ms}}ms</td></tr>
<tr><th>Sensor poll</th><td>{{if eq .Config.PollMs 0}}disabled{{else}}{{.Config.PollMs}}ms{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
