// Command collard runs the collar daemon: it debounces and classifies the
// user button, drives the feedback peripherals and publishes telemetry to
// MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vmay/maia-collar/internal/app"
	"github.com/vmay/maia-collar/internal/board"
	"github.com/vmay/maia-collar/internal/button"
	"github.com/vmay/maia-collar/internal/drivers/drv2605l"
	"github.com/vmay/maia-collar/internal/drivers/ds18b20"
	"github.com/vmay/maia-collar/internal/drivers/mpu6050"
	"github.com/vmay/maia-collar/internal/drivers/ssd1306"
	"github.com/vmay/maia-collar/internal/drivers/vl53l5cx"
	"github.com/vmay/maia-collar/internal/gpio"
	"github.com/vmay/maia-collar/internal/status"
	"github.com/vmay/maia-collar/internal/telemetry"
	"github.com/vmay/maia-collar/internal/web"
)

// eventQueueSize bounds the button event queue between the driver's timer
// goroutines and the run loop.
const eventQueueSize = 16

type options struct {
	broker    string
	httpAddr  string
	authHash  string
	chip      string
	pinButton int
	pinLED    int

	btnCfg    button.Config
	poll      time.Duration
	heartbeat time.Duration

	printState bool
}

func main() {
	def := button.DefaultConfig()

	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	authHash := flag.String("auth-hash", "", "bcrypt hash protecting the HTTP endpoints (empty disables auth)")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO chip device name")
	pinButton := flag.Int("pin-button", gpio.DefaultButtonPin, "BCM pin number for the user button")
	pinLED := flag.Int("pin-led", gpio.DefaultLEDPin, "BCM pin number for the status LED")
	debounce := flag.Duration("debounce", def.Debounce, "Button debounce settle time")
	doubleClick := flag.Duration("double-click", def.DoubleClickWindow, "Double click window")
	longPress := flag.Duration("long-press", def.LongPress, "Long press threshold")
	extraLong1 := flag.Duration("extra-long-1", def.ExtraLong1, "First extra long press threshold")
	extraLong2 := flag.Duration("extra-long-2", def.ExtraLong2, "Second extra long press threshold")
	poll := flag.Duration("poll", 30*time.Second, "Temperature poll interval (0 to disable)")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	printState := flag.Bool("print-state", false, "Print current button level and exit")

	flag.Parse()

	if *hashPassword != "" {
		hash, err := web.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		fmt.Println(hash)
		return
	}

	o := options{
		broker:    *broker,
		httpAddr:  *httpAddr,
		authHash:  *authHash,
		chip:      *chip,
		pinButton: *pinButton,
		pinLED:    *pinLED,
		btnCfg: button.Config{
			Debounce:          *debounce,
			DoubleClickWindow: *doubleClick,
			LongPress:         *longPress,
			ExtraLong1:        *extraLong1,
			ExtraLong2:        *extraLong2,
		},
		poll:       *poll,
		heartbeat:  *heartbeat,
		printState: *printState,
	}

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	// Button line first; without it there is nothing to classify.
	line, err := gpio.NewButtonLine(o.chip, o.pinButton)
	if err != nil {
		return fmt.Errorf("init button line: %w", err)
	}
	defer line.Close()

	// Print state mode
	if o.printState {
		fmt.Printf("button: %s\n", levelString(line.Level()))
		return nil
	}

	publisher, err := telemetry.NewRealPublisher(o.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		DebounceMs:    o.btnCfg.Debounce.Milliseconds(),
		DoubleClickMs: o.btnCfg.DoubleClickWindow.Milliseconds(),
		LongPressMs:   o.btnCfg.LongPress.Milliseconds(),
		ExtraLong1Ms:  o.btnCfg.ExtraLong1.Milliseconds(),
		ExtraLong2Ms:  o.btnCfg.ExtraLong2.Milliseconds(),
		PollMs:        o.poll.Milliseconds(),
		HeartbeatMs:   o.heartbeat.Milliseconds(),
		Broker:        o.broker,
		HTTPPort:      o.httpAddr,
	})

	// Feedback peripherals are best effort: the collar still classifies and
	// publishes without them.
	var led app.LED
	if l, err := gpio.NewLED(o.chip, o.pinLED); err != nil {
		log.Printf("status led unavailable: %v", err)
	} else {
		led = l
		defer l.Close()
	}

	var haptics app.Haptics
	var display app.Display
	var probe temperatureReader
	if brd, err := board.Open(); err != nil {
		log.Printf("board peripherals unavailable: %v", err)
	} else {
		defer brd.Close()

		if h, err := drv2605l.New(brd.Bus(), board.AddrDRV2605L, drv2605l.DefaultConfig()); err != nil {
			log.Printf("haptic driver unavailable: %v", err)
		} else {
			haptics = h
			defer h.Standby()
		}

		if d, err := ssd1306.New(brd.Bus(), board.AddrSSD1306); err != nil {
			log.Printf("display unavailable: %v", err)
		} else {
			display = d
			defer d.Off()
		}

		if p, err := ds18b20.New(brd.OneWire(), ds18b20.Bits12); err != nil {
			log.Printf("temperature probe unavailable: %v", err)
		} else {
			probe = p
		}

		if _, err := mpu6050.New(brd.Bus(), board.AddrMPU6050); err != nil {
			log.Printf("imu unavailable: %v", err)
		} else {
			log.Printf("imu detected at 0x%02X", board.AddrMPU6050)
		}

		for _, tof := range []struct {
			name string
			addr uint16
		}{
			{"tof-left", board.AddrToFLeft},
			{"tof-right", board.AddrToFRight},
		} {
			if _, err := vl53l5cx.New(brd.Bus(), tof.addr); err != nil {
				log.Printf("%s unavailable: %v", tof.name, err)
			} else {
				log.Printf("%s detected at 0x%02X", tof.name, tof.addr)
			}
		}
	}

	controller := app.New(haptics, display, led, tracker)

	// Classified events land on a buffered queue; the driver's timer
	// callbacks must never block.
	events := make(chan buttonEvent, eventQueueSize)
	drv, err := button.New(line, func(ev button.Event) {
		select {
		case events <- buttonEvent{ev: ev, at: time.Now()}:
		default:
			log.Printf("event queue full, dropping %s", ev)
		}
	}, o.btnCfg)
	if err != nil {
		return fmt.Errorf("init button driver: %w", err)
	}
	defer drv.Close()

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := telemetry.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, o.authHash)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: debounce=%v double-click=%v long-press=%v/%v/%v broker=%s poll=%v heartbeat=%v",
		o.btnCfg.Debounce, o.btnCfg.DoubleClickWindow,
		o.btnCfg.LongPress, o.btnCfg.ExtraLong1, o.btnCfg.ExtraLong2,
		o.broker, o.poll, o.heartbeat)

	var pollC <-chan time.Time
	if o.poll > 0 {
		ticker := time.NewTicker(o.poll)
		defer ticker.Stop()
		pollC = ticker.C
	}
	var hbC <-chan time.Time
	if o.heartbeat > 0 {
		ticker := time.NewTicker(o.heartbeat)
		defer ticker.Stop()
		hbC = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(events, drv.State, controller, publisher, publisher, tracker, probe, time.Now, pollC, hbC, sigCh)
}

// buttonEvent pairs a classified event with its wall clock time.
type buttonEvent struct {
	ev button.Event
	at time.Time
}

// temperatureReader is the slice of the DS18B20 probe the run loop needs.
type temperatureReader interface {
	ReadTemperature() (float64, error)
}

func runLoop(
	events <-chan buttonEvent,
	machineState func() button.State,
	controller *app.Controller,
	publisher telemetry.Publisher,
	mqttStatus telemetry.ConnectionStatus,
	tracker *status.Tracker,
	probe temperatureReader,
	now func() time.Time,
	poll <-chan time.Time,
	heartbeat <-chan time.Time,
	sig <-chan os.Signal,
) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			publishShutdown(publisher, mqttStatus, tracker, now(), signalName(s))
			return nil

		case reason := <-controller.Shutdown():
			log.Printf("shutdown requested by button (%s)", reason)
			publishShutdown(publisher, mqttStatus, tracker, now(), reason)
			return nil

		case e := <-events:
			log.Printf("button: %s", e.ev)
			controller.HandleEvent(e.ev)
			if tracker != nil {
				tracker.RecordEvent(e.ev, e.at)
				if machineState != nil {
					tracker.SetMachineState(machineState())
				}
			}
			if err := publisher.PublishButton(e.ev, e.at); err != nil {
				log.Printf("publish error: %v", err)
			}

		case <-poll:
			if probe == nil {
				continue
			}
			t := now()
			c, err := probe.ReadTemperature()
			if err != nil {
				log.Printf("temperature read error: %v", err)
				continue
			}
			if tracker != nil {
				tracker.SetTemperature(c, t)
			}
			if err := publisher.PublishReading(telemetry.Reading{Timestamp: t, TemperatureC: c}); err != nil {
				log.Printf("reading publish error: %v", err)
			}

		case <-heartbeat:
			hbEvent := telemetry.SystemEvent{
				Timestamp: now(),
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v presses=%d clicks=%d/%d holds=%d/%d/%d",
					snap.Uptime().Truncate(time.Second),
					snap.Counts.Presses, snap.Counts.SingleClicks, snap.Counts.DoubleClicks,
					snap.Counts.LongPresses, snap.Counts.ExtraLong1, snap.Counts.ExtraLong2)
				hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func publishShutdown(publisher telemetry.Publisher, mqttStatus telemetry.ConnectionStatus, tracker *status.Tracker, at time.Time, reason string) {
	event := telemetry.SystemEvent{
		Timestamp: at,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func levelString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
