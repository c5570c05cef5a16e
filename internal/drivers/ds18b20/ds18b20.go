// Package ds18b20 drives a single Dallas DS18B20 temperature probe over a
// bit-banged 1-Wire bus. The bus itself is abstracted so the protocol logic
// is testable without hardware.
package ds18b20

import (
	"errors"
	"fmt"
	"time"
)

// ROM and function commands.
const (
	cmdReadROM      = 0x33
	cmdMatchROM     = 0x55
	cmdSkipROM      = 0xCC
	cmdConvertT     = 0x44
	cmdWriteScratch = 0x4E
	cmdReadScratch  = 0xBE
	cmdCopyScratch  = 0x48
)

// Resolution selects the conversion resolution, trading precision for time.
type Resolution int

const (
	Bits9 Resolution = iota
	Bits10
	Bits11
	Bits12
)

// configByte returns the scratchpad configuration register value.
func (r Resolution) configByte() byte {
	switch r {
	case Bits9:
		return 0x1F
	case Bits10:
		return 0x3F
	case Bits11:
		return 0x5F
	default:
		return 0x7F
	}
}

// ConversionTime returns the worst-case conversion time for the resolution.
func (r Resolution) ConversionTime() time.Duration {
	switch r {
	case Bits9:
		return 94 * time.Millisecond
	case Bits10:
		return 188 * time.Millisecond
	case Bits11:
		return 375 * time.Millisecond
	default:
		return 750 * time.Millisecond
	}
}

// Bus is the 1-Wire transport the probe sits on.
type Bus interface {
	// Reset sends a reset pulse and reports device presence.
	Reset() (bool, error)
	WriteByte(b byte) error
	ReadByte() (byte, error)
}

var (
	// ErrNoDevice is returned when no device answers the reset pulse.
	ErrNoDevice = errors.New("ds18b20: no device on bus")

	// ErrCRC is returned when a scratchpad or ROM read fails its checksum.
	ErrCRC = errors.New("ds18b20: crc mismatch")
)

// Probe is a single DS18B20 addressed with Skip ROM (single-drop bus).
type Probe struct {
	bus   Bus
	res   Resolution
	sleep func(time.Duration)
}

// Option customizes a Probe at construction.
type Option func(*Probe)

// WithSleep replaces time.Sleep for the conversion wait. Used by tests.
func WithSleep(f func(time.Duration)) Option {
	return func(p *Probe) { p.sleep = f }
}

// New checks device presence and configures the conversion resolution.
func New(bus Bus, res Resolution, opts ...Option) (*Probe, error) {
	p := &Probe{bus: bus, res: res, sleep: time.Sleep}
	for _, opt := range opts {
		opt(p)
	}

	present, err := bus.Reset()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrNoDevice
	}

	// Set resolution: TH and TL alarms unused.
	if err := p.command(cmdWriteScratch); err != nil {
		return nil, err
	}
	for _, b := range []byte{0x00, 0x00, res.configByte()} {
		if err := bus.WriteByte(b); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ReadTemperature triggers a conversion, waits it out and returns the
// temperature in degrees Celsius.
func (p *Probe) ReadTemperature() (float64, error) {
	if err := p.command(cmdConvertT); err != nil {
		return 0, err
	}
	p.sleep(p.res.ConversionTime())

	if err := p.command(cmdReadScratch); err != nil {
		return 0, err
	}
	var scratch [9]byte
	for i := range scratch {
		b, err := p.bus.ReadByte()
		if err != nil {
			return 0, err
		}
		scratch[i] = b
	}
	if CRC8(scratch[:8]) != scratch[8] {
		return 0, ErrCRC
	}

	raw := int16(uint16(scratch[0]) | uint16(scratch[1])<<8)
	return float64(raw) / 16.0, nil
}

// ReadROM reads the 64-bit ROM code. Only valid on a single-drop bus.
func (p *Probe) ReadROM() ([8]byte, error) {
	var rom [8]byte
	present, err := p.bus.Reset()
	if err != nil {
		return rom, err
	}
	if !present {
		return rom, ErrNoDevice
	}
	if err := p.bus.WriteByte(cmdReadROM); err != nil {
		return rom, err
	}
	for i := range rom {
		b, err := p.bus.ReadByte()
		if err != nil {
			return rom, err
		}
		rom[i] = b
	}
	if CRC8(rom[:7]) != rom[7] {
		return rom, ErrCRC
	}
	return rom, nil
}

// command resets the bus, skips ROM addressing and issues a function command.
func (p *Probe) command(cmd byte) error {
	present, err := p.bus.Reset()
	if err != nil {
		return err
	}
	if !present {
		return ErrNoDevice
	}
	if err := p.bus.WriteByte(cmdSkipROM); err != nil {
		return fmt.Errorf("ds18b20: skip rom: %w", err)
	}
	return p.bus.WriteByte(cmd)
}

// CRC8 computes the Dallas/Maxim CRC8 (polynomial 0x31 reflected) used by
// 1-Wire ROM codes and scratchpads.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			mix := (crc ^ b) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8C
			}
			b >>= 1
		}
	}
	return crc
}
