// Package app maps classified button gestures to collar actions: haptic
// feedback, display power, the identify LED and shutdown requests.
package app

import (
	"log"
	"sync"

	"github.com/vmay/maia-collar/internal/button"
	"github.com/vmay/maia-collar/internal/status"
)

// ROM effect IDs from the DRV2605L effect library.
const (
	effectTick    byte = 24 // sharp tick, display toggle feedback
	effectConfirm byte = 10 // double click, mute toggle feedback
	effectAlert   byte = 47 // buzz, long-press alert
	effectRamp    byte = 83 // ramp up, identify
)

// Haptics drives the vibration motor.
type Haptics interface {
	PlayEffect(effect byte) error
	Stop() error
}

// Display controls the status display power.
type Display interface {
	On() error
	Off() error
}

// LED controls the identify LED.
type LED interface {
	Set(on bool) error
}

// Controller holds feedback state and reacts to button gestures. Any of the
// output devices may be nil, in which case the corresponding action is
// skipped; the collar still classifies and publishes events without them.
type Controller struct {
	haptics Haptics
	display Display
	led     LED
	tracker *status.Tracker

	mu        sync.Mutex
	displayOn bool
	muted     bool

	shutdown chan string
}

// New creates a Controller. The display starts off and haptics unmuted.
func New(haptics Haptics, display Display, led LED, tracker *status.Tracker) *Controller {
	return &Controller{
		haptics:  haptics,
		display:  display,
		led:      led,
		tracker:  tracker,
		shutdown: make(chan string, 1),
	}
}

// Shutdown returns a channel that receives a reason string when the user
// requests a shutdown via the longest hold tier.
func (c *Controller) Shutdown() <-chan string {
	return c.shutdown
}

// HapticsMuted reports whether haptic feedback is currently muted.
func (c *Controller) HapticsMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// DisplayOn reports whether the display is currently lit.
func (c *Controller) DisplayOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayOn
}

// HandleEvent reacts to one classified button event. Feedback failures are
// logged and swallowed; losing a vibration is not worth killing the daemon.
func (c *Controller) HandleEvent(ev button.Event) {
	switch ev {
	case button.EventPressed:
		c.setLED(true)
	case button.EventReleased:
		c.setLED(false)
	case button.EventSingleClick:
		c.toggleDisplay()
	case button.EventDoubleClick:
		c.toggleMute()
	case button.EventLongPress:
		c.playEffect(effectAlert)
	case button.EventExtraLongPress1:
		c.identify()
	case button.EventExtraLongPress2:
		c.requestShutdown("BUTTON_HOLD")
	}
}

func (c *Controller) toggleDisplay() {
	c.mu.Lock()
	c.displayOn = !c.displayOn
	on := c.displayOn
	c.mu.Unlock()

	if c.display != nil {
		var err error
		if on {
			err = c.display.On()
		} else {
			err = c.display.Off()
		}
		if err != nil {
			log.Printf("app: display power failed: %v", err)
		}
	}
	if c.tracker != nil {
		c.tracker.SetDisplayOn(on)
	}
	c.playEffect(effectTick)
}

func (c *Controller) toggleMute() {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted
	c.mu.Unlock()

	if muted {
		if c.haptics != nil {
			if err := c.haptics.Stop(); err != nil {
				log.Printf("app: haptics stop failed: %v", err)
			}
		}
	} else {
		// Confirm unmute so the wearer's handler feels the change.
		c.playEffect(effectConfirm)
	}
	if c.tracker != nil {
		c.tracker.SetHapticsMuted(muted)
	}
	log.Printf("app: haptics muted=%v", muted)
}

func (c *Controller) identify() {
	c.setLED(true)
	if c.display != nil {
		if err := c.display.On(); err != nil {
			log.Printf("app: display power failed: %v", err)
		}
	}
	c.mu.Lock()
	c.displayOn = true
	c.mu.Unlock()
	if c.tracker != nil {
		c.tracker.SetDisplayOn(true)
	}
	c.playEffect(effectRamp)
	log.Printf("app: identify requested")
}

func (c *Controller) requestShutdown(reason string) {
	select {
	case c.shutdown <- reason:
		log.Printf("app: shutdown requested (%s)", reason)
	default:
		// A request is already pending.
	}
}

func (c *Controller) playEffect(effect byte) {
	c.mu.Lock()
	muted := c.muted
	c.mu.Unlock()
	if muted || c.haptics == nil {
		return
	}
	if err := c.haptics.PlayEffect(effect); err != nil {
		log.Printf("app: haptic effect %d failed: %v", effect, err)
	}
}

func (c *Controller) setLED(on bool) {
	if c.led == nil {
		return
	}
	if err := c.led.Set(on); err != nil {
		log.Printf("app: led set failed: %v", err)
	}
}
