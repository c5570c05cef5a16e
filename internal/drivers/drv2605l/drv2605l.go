// Package drv2605l drives the TI DRV2605L haptic motor controller over I2C.
// The device plays effects from its built-in ROM libraries through an 8-slot
// waveform sequencer.
package drv2605l

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the DRV2605L's fixed I2C address.
const DefaultAddr = 0x5A

// Register map.
const (
	regStatus     = 0x00
	regMode       = 0x01
	regRTPIn      = 0x02
	regLibrary    = 0x03
	regWaveSeq1   = 0x04
	regGo         = 0x0C
	regOverdrive  = 0x0D
	regSustainPos = 0x0E
	regSustainNeg = 0x0F
	regBrake      = 0x10
	regRatedV     = 0x16
	regClampV     = 0x17
	regFeedback   = 0x1A
	regControl3   = 0x1D
)

// Mode register values.
const (
	modeInternalTrigger = 0x00
	modeAutoCal         = 0x07
	modeStandby         = 0x40
)

// Status register flags.
const (
	StatusOverCurrent = 0x01
	StatusOverTemp    = 0x02
	StatusDiagResult  = 0x08
)

const (
	goBit       = 0x01
	feedbackLRA = 0x80
	// Open-loop bits in control register 3.
	ctl3ERMOpenLoop = 0x20
	ctl3LRAOpenLoop = 0x01
)

// Actuator is the motor type attached to the driver output.
type Actuator int

const (
	ERM Actuator = iota // eccentric rotating mass
	LRA                 // linear resonant actuator
)

// Library selects one of the device's ROM effect libraries.
type Library byte

const (
	LibraryEmpty Library = 0x00
	LibraryERMA  Library = 0x01
	LibraryERMB  Library = 0x02
	LibraryERMC  Library = 0x03
	LibraryERMD  Library = 0x04
	LibraryERME  Library = 0x05
	LibraryLRA   Library = 0x06
)

// Effect ID bounds for the ROM libraries.
const (
	EffectMin = 1
	EffectMax = 123
)

// Config holds device setup parameters.
type Config struct {
	Actuator       Actuator
	Library        Library
	RatedVoltage   byte
	OverdriveClamp byte
	AutoCalibrate  bool
}

// DefaultConfig returns the collar's stock haptic setup: a 2V ERM on
// library B.
func DefaultConfig() Config {
	return Config{
		Actuator:       ERM,
		Library:        LibraryERMB,
		RatedVoltage:   0x90,
		OverdriveClamp: 0xA4,
	}
}

var (
	// ErrInvalidEffect is returned for effect IDs outside 1..123.
	ErrInvalidEffect = errors.New("drv2605l: effect id out of range")

	// ErrSequenceTooLong is returned for sequences over 8 slots.
	ErrSequenceTooLong = errors.New("drv2605l: sequence exceeds 8 slots")

	// ErrCalibration is returned when auto-calibration fails or times out.
	ErrCalibration = errors.New("drv2605l: auto-calibration failed")
)

// Dev is an initialized DRV2605L.
type Dev struct {
	dev   i2c.Dev
	cfg   Config
	sleep func(time.Duration)
}

// Option customizes a Dev at construction.
type Option func(*Dev)

// WithSleep replaces time.Sleep during auto-calibration polling. Used by
// tests.
func WithSleep(f func(time.Duration)) Option {
	return func(d *Dev) { d.sleep = f }
}

// New initializes the device on the given bus: exits standby, programs the
// voltage and actuator setup, selects the effect library and optionally runs
// auto-calibration.
func New(bus i2c.Bus, addr uint16, cfg Config, opts ...Option) (*Dev, error) {
	d := &Dev{
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		cfg:   cfg,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}

	// A status read doubles as a presence check.
	if _, err := d.readReg(regStatus); err != nil {
		return nil, fmt.Errorf("drv2605l: probe: %w", err)
	}

	init := []struct {
		reg byte
		val byte
	}{
		{regMode, modeInternalTrigger}, // exit standby
		{regRTPIn, 0x00},
		{regWaveSeq1, 0x01},
		{regWaveSeq1 + 1, 0x00},
		{regOverdrive, 0x00},
		{regSustainPos, 0x00},
		{regSustainNeg, 0x00},
		{regBrake, 0x00},
		{regRatedV, cfg.RatedVoltage},
		{regClampV, cfg.OverdriveClamp},
	}
	for _, w := range init {
		if err := d.writeReg(w.reg, w.val); err != nil {
			return nil, err
		}
	}

	feedback := byte(0x00)
	ctl3 := byte(ctl3ERMOpenLoop)
	if cfg.Actuator == LRA {
		feedback = feedbackLRA
		ctl3 = ctl3LRAOpenLoop
	}
	if err := d.writeReg(regFeedback, feedback); err != nil {
		return nil, err
	}
	if err := d.writeReg(regControl3, ctl3); err != nil {
		return nil, err
	}
	if err := d.writeReg(regLibrary, byte(cfg.Library)); err != nil {
		return nil, err
	}

	if cfg.AutoCalibrate {
		if err := d.autoCalibrate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// PlayEffect plays a single ROM effect through slot 1.
func (d *Dev) PlayEffect(effect byte) error {
	if effect < EffectMin || effect > EffectMax {
		return ErrInvalidEffect
	}
	return d.PlaySequence([]byte{effect})
}

// PlaySequence loads up to 8 effects into the waveform sequencer and triggers
// playback. A zero terminator is appended when the sequence is shorter than
// 8 slots.
func (d *Dev) PlaySequence(effects []byte) error {
	if len(effects) > 8 {
		return ErrSequenceTooLong
	}
	for _, e := range effects {
		if e < EffectMin || e > EffectMax {
			return ErrInvalidEffect
		}
	}

	for i, e := range effects {
		if err := d.writeReg(regWaveSeq1+byte(i), e); err != nil {
			return err
		}
	}
	if len(effects) < 8 {
		if err := d.writeReg(regWaveSeq1+byte(len(effects)), 0x00); err != nil {
			return err
		}
	}
	return d.writeReg(regGo, goBit)
}

// Stop aborts any playback in progress.
func (d *Dev) Stop() error {
	return d.writeReg(regGo, 0x00)
}

// Standby puts the device in software shutdown.
func (d *Dev) Standby() error {
	return d.writeReg(regMode, modeStandby)
}

// Wakeup returns the device to internal-trigger mode.
func (d *Dev) Wakeup() error {
	return d.writeReg(regMode, modeInternalTrigger)
}

// Status returns the raw status register; check the Status* flags.
func (d *Dev) Status() (byte, error) {
	return d.readReg(regStatus)
}

// autoCalibrate runs the device's auto-calibration routine and waits for the
// GO bit to clear.
func (d *Dev) autoCalibrate() error {
	if err := d.writeReg(regMode, modeAutoCal); err != nil {
		return err
	}
	if err := d.writeReg(regGo, goBit); err != nil {
		return err
	}
	for i := 0; i < 300; i++ {
		v, err := d.readReg(regGo)
		if err != nil {
			return err
		}
		if v&goBit == 0 {
			status, err := d.readReg(regStatus)
			if err != nil {
				return err
			}
			if status&StatusDiagResult != 0 {
				return ErrCalibration
			}
			return d.writeReg(regMode, modeInternalTrigger)
		}
		d.sleep(10 * time.Millisecond)
	}
	return ErrCalibration
}

func (d *Dev) writeReg(reg, val byte) error {
	if err := d.dev.Tx([]byte{reg, val}, nil); err != nil {
		return fmt.Errorf("drv2605l: write reg 0x%02X: %w", reg, err)
	}
	return nil
}

func (d *Dev) readReg(reg byte) (byte, error) {
	var buf [1]byte
	if err := d.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, fmt.Errorf("drv2605l: read reg 0x%02X: %w", reg, err)
	}
	return buf[0], nil
}
