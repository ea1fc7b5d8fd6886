package hx711

import "periph.io/x/conn/v3/physic"

// TargetRate is the sequencer execution rate the program timing assumes
const TargetRate = 2 * physic.MegaHertz

// StateMachineConfig is the configuration of one sequencer slot running
// the acquisition program
type StateMachineConfig struct {
	// DataPin is the IN base: waited on for data-ready and sampled
	DataPin Pin
	// ClockPin is the SET base, driven as a single-pin output
	ClockPin Pin
	ClockPinCount uint8

	// ShiftRight false shifts the ISR left, so the first bit clocked out
	// (the MSB) ends up in bit 23
	ShiftRight bool
	// AutoPush hands the ISR to the receive queue once PushThreshold
	// bits were shifted in
	AutoPush      bool
	PushThreshold uint8

	// WrapTarget and Wrap are absolute instruction memory addresses
	WrapTarget uint8
	Wrap       uint8

	// ClkDiv divides the system clock down to TargetRate
	ClkDiv float32
}

// NewStateMachineConfig builds the slot configuration for a binding whose
// program is resident at offset
func NewStateMachineConfig(b Binding, offset uint8, sysClock physic.Frequency) StateMachineConfig {
	return StateMachineConfig{
		DataPin:       b.Data,
		ClockPin:      b.Clock,
		ClockPinCount: 1,
		ShiftRight:    false,
		AutoPush:      true,
		PushThreshold: SampleBits,
		WrapTarget:    offset + programWrapTarget,
		Wrap:          offset + programWrap,
		ClkDiv:        ClockDivider(sysClock, TargetRate),
	}
}

// ClockDivider returns sysClock/target, the divider that makes the
// program timing independent of the actual system clock speed
func ClockDivider(sysClock, target physic.Frequency) float32 {
	if target <= 0 {
		return 1
	}
	return float32(float64(sysClock) / float64(target))
}

// DividerParts splits ClkDiv into the 16.8 fixed point form the clock
// divider register takes. Values are clamped to the 1..65536 range the
// hardware supports; a whole part of 0 encodes 65536
func (c StateMachineConfig) DividerParts() (whole uint16, frac uint8) {
	div := c.ClkDiv
	switch {
	case !(div >= 1): // also catches NaN
		return 1, 0
	case div >= 65536:
		return 0, 0
	}
	w := uint32(div)
	f := uint32((div - float32(w)) * 256)
	return uint16(w), uint8(f)
}
