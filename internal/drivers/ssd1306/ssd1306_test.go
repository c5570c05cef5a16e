package ssd1306

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func initFrame() []byte {
	return append([]byte{ctrlData}, make([]byte, 128*64/8)...)
}

func initOps() []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: []byte{
			ctrlCommand,
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
		}},
		{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdColumnAddr, 0x00, 127, cmdPageAddr, 0x00, 7}},
		{Addr: DefaultAddr, W: initFrame()},
		{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdDisplayOn}},
	}
}

func TestNewInitSequence(t *testing.T) {
	bus := &i2ctest.Playback{Ops: initOps(), DontPanic: true}

	if _, err := New(bus, DefaultAddr); err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("unconsumed ops: %v", err)
	}
}

func TestDrawRejectsWrongBufferSize(t *testing.T) {
	bus := &i2ctest.Playback{Ops: initOps(), DontPanic: true}
	d, err := New(bus, DefaultAddr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Draw(make([]byte, 10)); !errors.Is(err, ErrBufferSize) {
		t.Errorf("expected ErrBufferSize, got %v", err)
	}
}

func TestContrastAndPower(t *testing.T) {
	ops := append(initOps(),
		i2ctest.IO{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdContrast, 0x30}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdDisplayOff}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdDisplayOn}},
		i2ctest.IO{Addr: DefaultAddr, W: []byte{ctrlCommand, cmdInvertDisplay}},
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	d, err := New(bus, DefaultAddr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.SetContrast(0x30); err != nil {
		t.Fatalf("SetContrast: %v", err)
	}
	if err := d.Off(); err != nil {
		t.Fatalf("Off: %v", err)
	}
	if err := d.On(); err != nil {
		t.Fatalf("On: %v", err)
	}
	if err := d.Invert(true); err != nil {
		t.Fatalf("Invert: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("unconsumed ops: %v", err)
	}
}
