//go:build rp2040

package main

// Sequencer backend using the tinygo-org/pio package

import (
	"errors"
	"machine"
	"unsafe"

	"piohx711/hx711"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// DREQ numbering (RP2040 datasheet 2.5.3.1)
const (
	pioDREQRXOff  = 4 // DREQ_PIOx_RX0 = DREQ_PIOx_TX0 + 4
	pioDREQPerPIO = 8
)

var (
	errNoSuchBlock = errors.New("PIO block out of range")
	errNoSuchSlot  = errors.New("state machine index out of range")
	errSlotInUse   = errors.New("state machine already claimed")
)

func pioBlock(block hx711.BlockID) (*rp2pio.PIO, error) {
	switch block {
	case 0:
		return rp2pio.PIO0, nil
	case 1:
		return rp2pio.PIO1, nil
	}
	return nil, errNoSuchBlock
}

// pioSequencer implements hx711.Sequencer
type pioSequencer struct{}

func (pioSequencer) AddProgram(block hx711.BlockID, program []uint16, origin int8) (uint8, error) {
	p, err := pioBlock(block)
	if err != nil {
		return 0, err
	}
	return p.AddProgram(program, origin)
}

func (pioSequencer) StateMachine(block hx711.BlockID, slot hx711.SlotID) (hx711.StateMachine, error) {
	p, err := pioBlock(block)
	if err != nil {
		return nil, err
	}
	if slot > 3 {
		return nil, errNoSuchSlot
	}

	sm := p.StateMachine(uint8(slot))
	// CRITICAL: Claim the state machine first!
	if !sm.TryClaim() {
		return nil, errSlotInUse
	}

	return &pioStateMachine{
		sm: sm,
		rx: hx711.Source{
			Addr: uintptr(unsafe.Pointer(sm.RxReg())),
			DREQ: uint8(block)*pioDREQPerPIO + pioDREQRXOff + uint8(slot),
		},
	}, nil
}

// pioStateMachine implements hx711.StateMachine on one PIO state machine
type pioStateMachine struct {
	sm    rp2pio.StateMachine
	rx    hx711.Source
	entry uint8
}

// Init applies the acquisition configuration
func (s *pioStateMachine) Init(offset uint8, cfg hx711.StateMachineConfig) error {
	if cfg.PushThreshold != hx711.SampleBits || cfg.ClockPinCount != 1 {
		return errors.New("unsupported state machine configuration")
	}
	s.entry = offset

	dataPin := machine.Pin(cfg.DataPin)
	clockPin := machine.Pin(cfg.ClockPin)

	c := rp2pio.DefaultStateMachineConfig()

	// IN pins: DOUT, used by "wait 0 pin 0" and "in pins, 1"
	c.SetInPins(dataPin, 1)

	// SET pins: PD_SCK
	c.SetSetPins(clockPin, 1)

	// Shift left (MSB first), autopush after every conversion
	c.SetInShift(cfg.ShiftRight, cfg.AutoPush, hx711.SampleBits)

	c.SetWrap(cfg.WrapTarget, cfg.Wrap)

	whole, frac := cfg.DividerParts()
	c.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST (leaves it disabled)
	s.sm.Init(offset, c)

	// THEN set pin directions (must be after Init!)
	s.sm.SetPindirsConsecutive(dataPin, 1, false)
	s.sm.SetPindirsConsecutive(clockPin, 1, true)

	// PD_SCK idles low; high for more than 60us powers the HX711 down
	s.sm.SetPinsConsecutive(clockPin, 1, false)
	return nil
}

func (s *pioStateMachine) SetEnabled(enabled bool) {
	s.sm.SetEnabled(enabled)
}

func (s *pioStateMachine) ClearFIFOs() {
	s.sm.ClearFIFOs()
}

// Restart resets the shift counters and jumps back to the "pull block"
// at the program entry, which an aborted capture may have left behind.
func (s *pioStateMachine) Restart() {
	s.sm.Restart()
	s.sm.Jmp(s.entry, rp2pio.JmpAlways)
}

func (s *pioStateMachine) Put(word uint32) {
	// Wait for FIFO space and write
	for s.sm.IsTxFIFOFull() {
		// Busy wait - the program pulls as soon as it is enabled
	}
	s.sm.TxPut(word)
}

func (s *pioStateMachine) RxFIFO() hx711.Source {
	return s.rx
}

// Release disables the state machine and gives the slot back to the block
func (s *pioStateMachine) Release() {
	s.sm.SetEnabled(false)
	s.sm.Unclaim()
}
