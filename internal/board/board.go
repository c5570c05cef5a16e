// Package board brings up the collar board peripherals: the I2C bus shared by
// the display, haptic driver, IMU and ToF sensors, the ToF power-enable pins,
// the ERM motor PWM outputs and the 1-Wire pin for the temperature probe.
// It is a thin layer over periph.io; all decision logic lives in the drivers.
package board

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Pin assignments (collar rev B harness, BCM numbering).
const (
	PinToF1LPn    = 1 // VL53L5CX #1 low-power enable
	PinToF2LPn    = 2 // VL53L5CX #2 low-power enable
	PinOneWire    = 3 // DS18B20 data
	PinIMUInt     = 4 // MPU6050 interrupt
	PinMotorLeft  = 7
	PinMotorRight = 8
)

// I2C device addresses.
const (
	AddrSSD1306  = 0x3C
	AddrToFLeft  = 0x29
	AddrToFRight = 0x2A
	AddrDRV2605L = 0x5A
	AddrMPU6050  = 0x68
)

// MotorPWMFrequency is the ERM drive frequency.
const MotorPWMFrequency = 2 * physic.KiloHertz

// Motor selects one of the two haptic ERM motors.
type Motor int

const (
	MotorLeft Motor = iota
	MotorRight
)

// ToFSensor selects one of the two ToF distance sensors.
type ToFSensor int

const (
	ToFLeft ToFSensor = iota
	ToFRight
)

// Board owns the opened peripherals.
type Board struct {
	bus i2c.BusCloser

	tof1LPn    gpio.PinIO
	tof2LPn    gpio.PinIO
	motorLeft  gpio.PinIO
	motorRight gpio.PinIO
	onewire    gpio.PinIO
}

// Open initializes the periph host, opens the first available I2C bus and
// resolves the board control pins. ToF sensors are powered up (LPn high) and
// both motors are parked at zero duty. On failure everything opened so far is
// released.
func Open() (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	b := &Board{bus: bus}

	pins := []struct {
		name string
		dst  *gpio.PinIO
		pin  int
	}{
		{"ToF1 LPn", &b.tof1LPn, PinToF1LPn},
		{"ToF2 LPn", &b.tof2LPn, PinToF2LPn},
		{"motor left", &b.motorLeft, PinMotorLeft},
		{"motor right", &b.motorRight, PinMotorRight},
		{"1-wire", &b.onewire, PinOneWire},
	}
	for _, p := range pins {
		pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", p.pin))
		if pin == nil {
			bus.Close()
			return nil, fmt.Errorf("resolve %s pin GPIO%d: not found", p.name, p.pin)
		}
		*p.dst = pin
	}

	// Power up the ToF sensors and park the motors.
	if err := b.tof1LPn.Out(gpio.High); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable ToF1: %w", err)
	}
	if err := b.tof2LPn.Out(gpio.High); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable ToF2: %w", err)
	}
	if err := b.MotorsOff(); err != nil {
		bus.Close()
		return nil, err
	}

	return b, nil
}

// Bus returns the shared I2C bus for driver constructors.
func (b *Board) Bus() i2c.Bus {
	return b.bus
}

// I2CDev returns a device handle on the shared bus for the given address.
func (b *Board) I2CDev(addr uint16) *i2c.Dev {
	return &i2c.Dev{Bus: b.bus, Addr: addr}
}

// SetMotorDuty sets the PWM duty cycle for one ERM motor, 0–255 as on the
// original 8-bit LEDC timers.
func (b *Board) SetMotorDuty(m Motor, duty uint8) error {
	pin := b.motorLeft
	if m == MotorRight {
		pin = b.motorRight
	}
	d := gpio.Duty(uint64(duty) * uint64(gpio.DutyMax) / 255)
	if err := pin.PWM(d, MotorPWMFrequency); err != nil {
		return fmt.Errorf("set motor %d duty: %w", m, err)
	}
	return nil
}

// MotorsOff parks both motor outputs low.
func (b *Board) MotorsOff() error {
	if err := b.motorLeft.Out(gpio.Low); err != nil {
		return fmt.Errorf("park left motor: %w", err)
	}
	if err := b.motorRight.Out(gpio.Low); err != nil {
		return fmt.Errorf("park right motor: %w", err)
	}
	return nil
}

// SetToFPower drives a ToF sensor's LPn line. The sensor re-boots when the
// line rises, so callers must allow its boot time before talking to it.
func (b *Board) SetToFPower(s ToFSensor, on bool) error {
	pin := b.tof1LPn
	if s == ToFRight {
		pin = b.tof2LPn
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := pin.Out(level); err != nil {
		return fmt.Errorf("set ToF power: %w", err)
	}
	return nil
}

// OneWire returns the bit-banged 1-Wire bus on the temperature probe pin.
func (b *Board) OneWire() *OneWireBus {
	return &OneWireBus{pin: b.onewire}
}

// Close parks the motors and releases the I2C bus. GPIO pins have no handle
// to release under periph.
func (b *Board) Close() error {
	var errs []error
	if err := b.MotorsOff(); err != nil {
		errs = append(errs, err)
	}
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
