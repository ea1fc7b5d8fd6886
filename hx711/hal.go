package hx711

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// BlockID identifies a programmable I/O block (PIO0, PIO1)
type BlockID uint8

// SlotID identifies a state machine within a block (0-3)
type SlotID uint8

// Pin identifies a hardware GPIO pin number
type Pin uint8

// DMAChannel identifies a DMA channel. DMAChannelAuto means a free channel
// is claimed for every capture and released afterwards
type DMAChannel int8

// DMAChannelAuto requests a dynamically claimed DMA channel
const DMAChannelAuto DMAChannel = -1

// Source describes a peripheral register a DMA transfer reads from
type Source struct {
	// Addr is the bus address of the register (fixed, never incremented)
	Addr uintptr
	// DREQ is the data request line pacing the transfer
	DREQ uint8
}

// Transfer is one peripheral-to-memory DMA transfer. The transfer count is
// len(Dest); the write address increments one word per transfer
type Transfer struct {
	Source Source
	Dest   []uint32
}

// PinConfigurator is the pin-configuration service used before the
// sequencer takes ownership of the clock and data pins
type PinConfigurator interface {
	// ConfigureSequencerPin hands the pin over to the given block
	ConfigureSequencerPin(pin Pin, block BlockID) error

	// SetPull sets the pad pull resistor of the pin
	SetPull(pin Pin, pull gpio.Pull) error
}

// ClockSource reports the current system clock frequency
type ClockSource interface {
	SystemClock() physic.Frequency
}

// Sequencer is the programmable I/O hardware abstraction
type Sequencer interface {
	// AddProgram writes a program into the block's instruction memory and
	// returns the offset it was loaded at. origin < 0 lets the hardware
	// layer pick any free location; jump targets are relocated
	AddProgram(block BlockID, program []uint16, origin int8) (uint8, error)

	// StateMachine returns the state machine in the given slot
	StateMachine(block BlockID, slot SlotID) (StateMachine, error)
}

// StateMachine is a single sequencer slot
type StateMachine interface {
	// Init applies cfg and points the program counter at offset. The
	// state machine is left disabled
	Init(offset uint8, cfg StateMachineConfig) error

	SetEnabled(enabled bool)

	// ClearFIFOs empties both the receive and transmit queues
	ClearFIFOs()

	// Restart clears the shift counters and internal state and returns
	// the program counter to the program entry point
	Restart()

	// Put writes a word to the transmit queue, blocking while it is full
	Put(word uint32)

	// RxFIFO describes the receive queue register for DMA
	RxFIFO() Source

	// Release stops the state machine and returns the slot, so a later
	// Sequencer.StateMachine call for it succeeds
	Release()
}

// DMA is the DMA controller hardware abstraction
type DMA interface {
	// Claim marks a specific channel as used
	Claim(ch DMAChannel) error

	// ClaimUnused claims any free channel
	ClaimUnused() (DMAChannel, error)

	// Unclaim releases a channel claimed with Claim or ClaimUnused
	Unclaim(ch DMAChannel)

	// Start configures the channel for t and triggers it immediately
	Start(ch DMAChannel, t Transfer) error

	// Wait blocks until the transfer on ch completes. A zero timeout
	// waits forever; otherwise ErrTimedOut is returned once it elapses
	Wait(ch DMAChannel, timeout time.Duration) error

	// Abort stops an in-flight transfer
	Abort(ch DMAChannel)
}

// Hardware bundles the services a Device is built on
type Hardware struct {
	Pins      PinConfigurator
	Clock     ClockSource
	Sequencer Sequencer
	DMA       DMA

	// Registry tracks programs already resident per block. Nil selects
	// DefaultRegistry
	Registry *ProgramRegistry
}

func (hw *Hardware) validate() error {
	switch {
	case hw.Pins == nil:
		return errMissing("pin configurator")
	case hw.Clock == nil:
		return errMissing("clock source")
	case hw.Sequencer == nil:
		return errMissing("sequencer")
	case hw.DMA == nil:
		return errMissing("DMA controller")
	}
	return nil
}
