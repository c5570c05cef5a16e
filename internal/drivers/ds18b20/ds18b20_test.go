package ds18b20

import (
	"errors"
	"testing"
	"time"
)

// fakeBus scripts 1-Wire reads and records writes.
type fakeBus struct {
	present bool
	reads   []byte
	writes  []byte
	resets  int
}

func (f *fakeBus) Reset() (bool, error) {
	f.resets++
	return f.present, nil
}

func (f *fakeBus) WriteByte(b byte) error {
	f.writes = append(f.writes, b)
	return nil
}

func (f *fakeBus) ReadByte() (byte, error) {
	if len(f.reads) == 0 {
		return 0, errors.New("fake bus: no reads scripted")
	}
	b := f.reads[0]
	f.reads = f.reads[1:]
	return b, nil
}

func TestCRC8KnownVectors(t *testing.T) {
	// Maxim application note 27 example ROM.
	if got := CRC8([]byte{0x02, 0x1C, 0xB8, 0x01, 0x00, 0x00, 0x00}); got != 0xA2 {
		t.Errorf("AN27 vector: expected 0xA2, got 0x%02X", got)
	}
	if got := CRC8(nil); got != 0 {
		t.Errorf("empty input: expected 0, got 0x%02X", got)
	}
}

func TestNewConfiguresResolution(t *testing.T) {
	bus := &fakeBus{present: true}
	if _, err := New(bus, Bits12); err != nil {
		t.Fatalf("New: %v", err)
	}

	// Skip ROM, write scratchpad, TH, TL, config.
	want := []byte{cmdSkipROM, cmdWriteScratch, 0x00, 0x00, 0x7F}
	if len(bus.writes) != len(want) {
		t.Fatalf("expected %d writes, got %d: %v", len(want), len(bus.writes), bus.writes)
	}
	for i := range want {
		if bus.writes[i] != want[i] {
			t.Errorf("write %d: expected 0x%02X, got 0x%02X", i, want[i], bus.writes[i])
		}
	}
}

func TestNewNoDevice(t *testing.T) {
	bus := &fakeBus{present: false}
	if _, err := New(bus, Bits12); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

func TestReadTemperature(t *testing.T) {
	bus := &fakeBus{present: true}

	var slept time.Duration
	p, err := New(bus, Bits12, WithSleep(func(d time.Duration) { slept += d }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Scratchpad for +25.0625 C (raw 0x0191), CRC precomputed.
	bus.reads = []byte{0x91, 0x01, 0x00, 0x00, 0x7F, 0xFF, 0x0C, 0x10, 0x88}
	bus.writes = nil

	got, err := p.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if got != 25.0625 {
		t.Errorf("expected 25.0625, got %v", got)
	}
	if slept != Bits12.ConversionTime() {
		t.Errorf("expected %v conversion wait, got %v", Bits12.ConversionTime(), slept)
	}

	// Convert then read scratchpad, both Skip ROM addressed.
	want := []byte{cmdSkipROM, cmdConvertT, cmdSkipROM, cmdReadScratch}
	if len(bus.writes) != len(want) {
		t.Fatalf("expected writes %v, got %v", want, bus.writes)
	}
	for i := range want {
		if bus.writes[i] != want[i] {
			t.Errorf("write %d: expected 0x%02X, got 0x%02X", i, want[i], bus.writes[i])
		}
	}
}

func TestReadTemperatureNegative(t *testing.T) {
	bus := &fakeBus{present: true}
	p, err := New(bus, Bits12, WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Raw 0xFF6E = -146/16 = -9.125 C.
	bus.reads = []byte{0x6E, 0xFF, 0x00, 0x00, 0x7F, 0xFF, 0x0C, 0x10, 0x6E}

	got, err := p.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if got != -9.125 {
		t.Errorf("expected -9.125, got %v", got)
	}
}

func TestReadTemperatureCRCMismatch(t *testing.T) {
	bus := &fakeBus{present: true}
	p, err := New(bus, Bits12, WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	bus.reads = []byte{0x91, 0x01, 0x00, 0x00, 0x7F, 0xFF, 0x0C, 0x10, 0x00}

	if _, err := p.ReadTemperature(); !errors.Is(err, ErrCRC) {
		t.Errorf("expected ErrCRC, got %v", err)
	}
}

func TestReadROM(t *testing.T) {
	bus := &fakeBus{present: true}
	p, err := New(bus, Bits12, WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Family 0x28 (DS18B20) with precomputed CRC.
	bus.reads = []byte{0x28, 0xAA, 0x12, 0x34, 0x56, 0x00, 0x00, 0x9E}
	bus.writes = nil

	rom, err := p.ReadROM()
	if err != nil {
		t.Fatalf("ReadROM: %v", err)
	}
	if rom[0] != 0x28 {
		t.Errorf("expected DS18B20 family code 0x28, got 0x%02X", rom[0])
	}
	if len(bus.writes) != 1 || bus.writes[0] != cmdReadROM {
		t.Errorf("expected single Read ROM command, got %v", bus.writes)
	}
}

func TestConversionTimes(t *testing.T) {
	cases := []struct {
		res  Resolution
		want time.Duration
	}{
		{Bits9, 94 * time.Millisecond},
		{Bits10, 188 * time.Millisecond},
		{Bits11, 375 * time.Millisecond},
		{Bits12, 750 * time.Millisecond},
	}
	for _, c := range cases {
		if got := c.res.ConversionTime(); got != c.want {
			t.Errorf("resolution %d: expected %v, got %v", c.res, c.want, got)
		}
	}
}
