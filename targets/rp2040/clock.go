//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	"periph.io/x/conn/v3/physic"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word (no latching)
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// systemClock implements hx711.ClockSource
type systemClock struct{}

// SystemClock returns clk_sys, which also clocks the PIO blocks
func (systemClock) SystemClock() physic.Frequency {
	return physic.Frequency(machine.CPUFrequency()) * physic.Hertz
}

// uptimeMicros reads the full 64-bit 1MHz hardware timer
func uptimeMicros() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		// If high didn't change, we got a consistent reading
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
		// Otherwise retry (rollover happened during read)
	}
}
