package vl53l5cx

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func aliveOps(id, rev byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{0x7F, 0xFF, 0x00}},
		{Addr: DefaultAddr, W: []byte{0x00, 0x00}, R: []byte{id, rev}},
		{Addr: DefaultAddr, W: []byte{0x7F, 0xFF, 0x02}},
	}
}

func TestNewDetectsDevice(t *testing.T) {
	bus := &i2ctest.Playback{Ops: aliveOps(deviceID, revisionID), DontPanic: true}

	if _, err := New(bus, DefaultAddr); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("unconsumed ops: %v", err)
	}
}

func TestNewRejectsUnknownIdentity(t *testing.T) {
	bus := &i2ctest.Playback{Ops: aliveOps(0x00, 0x00), DontPanic: true}

	_, err := New(bus, DefaultAddr)
	if !errors.Is(err, ErrNotDetected) {
		t.Errorf("expected ErrNotDetected, got %v", err)
	}
}
