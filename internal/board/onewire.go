package board

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Standard 1-Wire bit timings. Host-side sleep granularity adds jitter but
// the protocol slots are tolerant enough for a single DS18B20 drop.
const (
	owResetLow     = 480 * time.Microsecond
	owPresenceWait = 70 * time.Microsecond
	owResetTail    = 410 * time.Microsecond

	owWrite1Low  = 6 * time.Microsecond
	owWrite1High = 64 * time.Microsecond
	owWrite0Low  = 60 * time.Microsecond
	owWrite0High = 10 * time.Microsecond

	owReadLow    = 6 * time.Microsecond
	owReadSample = 9 * time.Microsecond
	owReadTail   = 55 * time.Microsecond
)

// OneWireBus bit-bangs the 1-Wire protocol on a single open-drain pin. The
// bus is released (input with pull-up) between operations; devices or the
// pull-up drive it high. Safe for concurrent use.
type OneWireBus struct {
	mu  sync.Mutex
	pin gpio.PinIO
}

// Reset sends a reset pulse and reports whether any device answered with a
// presence pulse.
func (b *OneWireBus) Reset() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.pin.Out(gpio.Low); err != nil {
		return false, fmt.Errorf("onewire reset: %w", err)
	}
	time.Sleep(owResetLow)

	if err := b.release(); err != nil {
		return false, err
	}
	time.Sleep(owPresenceWait)

	present := b.pin.Read() == gpio.Low
	time.Sleep(owResetTail)
	return present, nil
}

// WriteByte writes one byte, LSB first.
func (b *OneWireBus) WriteByte(v byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < 8; i++ {
		if err := b.writeBit(v & 1); err != nil {
			return err
		}
		v >>= 1
	}
	return nil
}

// ReadByte reads one byte, LSB first.
func (b *OneWireBus) ReadByte() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var v byte
	for i := 0; i < 8; i++ {
		bit, err := b.readBit()
		if err != nil {
			return 0, err
		}
		v |= bit << i
	}
	return v, nil
}

func (b *OneWireBus) writeBit(bit byte) error {
	low, high := owWrite0Low, owWrite0High
	if bit != 0 {
		low, high = owWrite1Low, owWrite1High
	}
	if err := b.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("onewire write: %w", err)
	}
	time.Sleep(low)
	if err := b.release(); err != nil {
		return err
	}
	time.Sleep(high)
	return nil
}

func (b *OneWireBus) readBit() (byte, error) {
	if err := b.pin.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("onewire read: %w", err)
	}
	time.Sleep(owReadLow)
	if err := b.release(); err != nil {
		return 0, err
	}
	time.Sleep(owReadSample)
	var bit byte
	if b.pin.Read() == gpio.High {
		bit = 1
	}
	time.Sleep(owReadTail)
	return bit, nil
}

func (b *OneWireBus) release() error {
	if err := b.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("onewire release: %w", err)
	}
	return nil
}
