// Package vl53l5cx provides presence detection for the ST VL53L5CX
// time-of-flight sensor: power sequencing is handled by the board's LPn
// lines, this driver verifies the device identity over I2C.
package vl53l5cx

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Default boot-time I2C address.
const DefaultAddr = 0x29

// Identity values at registers 0x0000/0x0001 after a bank switch.
const (
	deviceID   = 0xF0
	revisionID = 0x02
)

const regBank = 0x7FFF

// ErrNotDetected is returned when the identity registers do not match a
// VL53L5CX.
var ErrNotDetected = errors.New("vl53l5cx: device not detected")

// Dev is a VL53L5CX handle.
type Dev struct {
	dev i2c.Dev
}

// New returns a handle after verifying the device answers with the VL53L5CX
// identity.
func New(bus i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{dev: i2c.Dev{Bus: bus, Addr: addr}}
	alive, err := d.IsAlive()
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrNotDetected
	}
	return d, nil
}

// IsAlive switches to the identity bank, checks the device and revision IDs
// and switches back.
func (d *Dev) IsAlive() (bool, error) {
	if err := d.writeReg16(regBank, 0x00); err != nil {
		return false, err
	}

	var id [2]byte
	if err := d.dev.Tx([]byte{0x00, 0x00}, id[:]); err != nil {
		return false, fmt.Errorf("vl53l5cx: read identity: %w", err)
	}

	if err := d.writeReg16(regBank, 0x02); err != nil {
		return false, err
	}

	return id[0] == deviceID && id[1] == revisionID, nil
}

// writeReg16 writes one byte to a 16-bit register address.
func (d *Dev) writeReg16(reg uint16, val byte) error {
	if err := d.dev.Tx([]byte{byte(reg >> 8), byte(reg), val}, nil); err != nil {
		return fmt.Errorf("vl53l5cx: write reg 0x%04X: %w", reg, err)
	}
	return nil
}
