// Package gpio provides GPIO access for the collar board with hardware
// abstraction. The real implementation uses the Linux GPIO character device;
// fakes allow testing without hardware.
package gpio

// Default chip and pin assignments (BCM numbering, collar rev B harness).
const (
	DefaultChip = "gpiochip0"

	// DefaultButtonPin is the pushbutton line. Active low with pull-up:
	// pressing the button pulls the line to ground.
	DefaultButtonPin = 9

	// DefaultLEDPin is the status LED line.
	DefaultLEDPin = 10
)
