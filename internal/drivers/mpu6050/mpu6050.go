// Package mpu6050 drives the InvenSense MPU-6050 inertial sensor over I2C:
// identity probe, wake from sleep and raw accelerometer/gyro/temperature
// reads at the default full-scale ranges.
package mpu6050

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the MPU-6050 address with AD0 low.
const DefaultAddr = 0x68

// Register map.
const (
	regSampleRateDiv = 0x19
	regConfig        = 0x1A
	regAccelStart    = 0x3B
	regPwrMgmt1      = 0x6B
	regWhoAmI        = 0x75
)

const whoAmIValue = 0x68

// Full-scale sensitivities at the power-on default ranges (±2g, ±250°/s).
const (
	accelLSBPerG   = 16384.0
	gyroLSBPerDPS  = 131.0
	tempLSBPerDegC = 340.0
	tempOffsetC    = 36.53
)

// ErrWrongDevice is returned when the WHO_AM_I probe does not identify an
// MPU-6050.
var ErrWrongDevice = errors.New("mpu6050: unexpected WHO_AM_I response")

// Sample is one reading of all sensor axes, in physical units.
type Sample struct {
	// Acceleration in g per axis.
	AccelX, AccelY, AccelZ float64

	// Angular rate in degrees per second per axis.
	GyroX, GyroY, GyroZ float64

	// Die temperature in degrees Celsius.
	Temperature float64
}

// Dev is an initialized MPU-6050.
type Dev struct {
	dev i2c.Dev
}

// New probes the device identity and wakes it from sleep with the internal
// oscillator as clock source.
func New(bus i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{dev: i2c.Dev{Bus: bus, Addr: addr}}

	var id [1]byte
	if err := d.dev.Tx([]byte{regWhoAmI}, id[:]); err != nil {
		return nil, fmt.Errorf("mpu6050: probe: %w", err)
	}
	if id[0] != whoAmIValue {
		return nil, fmt.Errorf("%w: got 0x%02X", ErrWrongDevice, id[0])
	}

	// Clear the sleep bit; everything else at power-on defaults.
	if err := d.dev.Tx([]byte{regPwrMgmt1, 0x00}, nil); err != nil {
		return nil, fmt.Errorf("mpu6050: wake: %w", err)
	}
	return d, nil
}

// Read returns one sample of all axes.
func (d *Dev) Read() (Sample, error) {
	// Burst read ACCEL_XOUT_H through GYRO_ZOUT_L.
	var buf [14]byte
	if err := d.dev.Tx([]byte{regAccelStart}, buf[:]); err != nil {
		return Sample{}, fmt.Errorf("mpu6050: read: %w", err)
	}

	raw := func(i int) int16 {
		return int16(uint16(buf[i])<<8 | uint16(buf[i+1]))
	}

	return Sample{
		AccelX:      float64(raw(0)) / accelLSBPerG,
		AccelY:      float64(raw(2)) / accelLSBPerG,
		AccelZ:      float64(raw(4)) / accelLSBPerG,
		Temperature: float64(raw(6))/tempLSBPerDegC + tempOffsetC,
		GyroX:       float64(raw(8)) / gyroLSBPerDPS,
		GyroY:       float64(raw(10)) / gyroLSBPerDPS,
		GyroZ:       float64(raw(12)) / gyroLSBPerDPS,
	}, nil
}
