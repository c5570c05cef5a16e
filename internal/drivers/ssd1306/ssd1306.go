// Package ssd1306 drives the SSD1306 OLED controller over I2C in horizontal
// addressing mode. Font rendering is out of scope; callers hand the driver a
// pre-rasterized page buffer.
package ssd1306

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the usual SSD1306 address with SA0 low.
const DefaultAddr = 0x3C

// Control bytes prefixing every transfer.
const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// Command set.
const (
	cmdDisplayOff    = 0xAE
	cmdDisplayOn     = 0xAF
	cmdClockDiv      = 0xD5
	cmdMultiplex     = 0xA8
	cmdDisplayOffset = 0xD3
	cmdStartLine     = 0x40
	cmdChargePump    = 0x8D
	cmdMemoryMode    = 0x20
	cmdSegRemap      = 0xA1
	cmdComScanDec    = 0xC8
	cmdComPins       = 0xDA
	cmdContrast      = 0x81
	cmdPrecharge     = 0xD9
	cmdVCOMDetect    = 0xDB
	cmdResumeRAM     = 0xA4
	cmdNormalDisplay = 0xA6
	cmdInvertDisplay = 0xA7
	cmdColumnAddr    = 0x21
	cmdPageAddr      = 0x22
)

// ErrBufferSize is returned by Draw when the buffer does not match the panel
// dimensions.
var ErrBufferSize = errors.New("ssd1306: buffer size mismatch")

// Dev is an initialized 128x64 SSD1306 panel.
type Dev struct {
	dev    i2c.Dev
	width  int
	height int
}

// New initializes the panel with the standard 128x64 charge-pump sequence
// and turns the display on, showing a cleared frame.
func New(bus i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{dev: i2c.Dev{Bus: bus, Addr: addr}, width: 128, height: 64}

	init := []byte{
		cmdDisplayOff,
		cmdClockDiv, 0x80,
		cmdMultiplex, 0x3F,
		cmdDisplayOffset, 0x00,
		cmdStartLine,
		cmdChargePump, 0x14,
		cmdMemoryMode, 0x00,
		cmdSegRemap,
		cmdComScanDec,
		cmdComPins, 0x12,
		cmdContrast, 0xCF,
		cmdPrecharge, 0xF1,
		cmdVCOMDetect, 0x40,
		cmdResumeRAM,
		cmdNormalDisplay,
	}
	if err := d.commands(init...); err != nil {
		return nil, err
	}
	if err := d.Clear(); err != nil {
		return nil, err
	}
	if err := d.commands(cmdDisplayOn); err != nil {
		return nil, err
	}
	return d, nil
}

// Draw writes a full frame. The buffer is width*height/8 bytes in the
// controller's page layout.
func (d *Dev) Draw(buf []byte) error {
	if len(buf) != d.width*d.height/8 {
		return ErrBufferSize
	}
	if err := d.commands(
		cmdColumnAddr, 0x00, byte(d.width-1),
		cmdPageAddr, 0x00, byte(d.height/8-1),
	); err != nil {
		return err
	}
	if err := d.dev.Tx(append([]byte{ctrlData}, buf...), nil); err != nil {
		return fmt.Errorf("ssd1306: draw: %w", err)
	}
	return nil
}

// Clear blanks the panel RAM.
func (d *Dev) Clear() error {
	return d.Draw(make([]byte, d.width*d.height/8))
}

// SetContrast adjusts panel contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.commands(cmdContrast, level)
}

// On turns the display on.
func (d *Dev) On() error { return d.commands(cmdDisplayOn) }

// Off turns the display off; panel RAM is retained.
func (d *Dev) Off() error { return d.commands(cmdDisplayOff) }

// Invert sets inverted or normal rendering of the panel RAM.
func (d *Dev) Invert(inverted bool) error {
	if inverted {
		return d.commands(cmdInvertDisplay)
	}
	return d.commands(cmdNormalDisplay)
}

func (d *Dev) commands(cmds ...byte) error {
	if err := d.dev.Tx(append([]byte{ctrlCommand}, cmds...), nil); err != nil {
		return fmt.Errorf("ssd1306: command: %w", err)
	}
	return nil
}
