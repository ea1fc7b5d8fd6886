//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"

	"piohx711/hx711"

	"periph.io/x/conn/v3/gpio"
)

const maxGPIO = 29

var errInvalidPin = errors.New("invalid GPIO pin")

// sequencerPins implements hx711.PinConfigurator
type sequencerPins struct{}

// ConfigureSequencerPin assigns the pin function to the PIO block
func (sequencerPins) ConfigureSequencerPin(pin hx711.Pin, block hx711.BlockID) error {
	if pin > maxGPIO {
		return errInvalidPin
	}
	p, err := pioBlock(block)
	if err != nil {
		return err
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: p.PinMode()})
	return nil
}

// SetPull updates the pad pull-up/pull-down enables. The function select
// set by ConfigureSequencerPin is left alone.
func (sequencerPins) SetPull(pin hx711.Pin, pull gpio.Pull) error {
	if pin > maxGPIO {
		return errInvalidPin
	}
	padReg := (*volatile.Register32)(unsafe.Pointer(uintptr(unsafe.Pointer(&rp.PADS_BANK0.GPIO0)) + uintptr(pin)*4))

	switch pull {
	case gpio.PullUp:
		padReg.ClearBits(rp.PADS_BANK0_GPIO0_PDE)
		padReg.SetBits(rp.PADS_BANK0_GPIO0_PUE)
	case gpio.PullDown:
		padReg.ClearBits(rp.PADS_BANK0_GPIO0_PUE)
		padReg.SetBits(rp.PADS_BANK0_GPIO0_PDE)
	case gpio.Float:
		padReg.ClearBits(rp.PADS_BANK0_GPIO0_PUE | rp.PADS_BANK0_GPIO0_PDE)
	case gpio.PullNoChange:
	default:
		return errors.New("unsupported pull: " + pull.String())
	}
	return nil
}

// NewHardware returns the RP2040 implementation of the driver's hardware
// services. DMA channel claims are tracked per returned value; create it
// once and share it between devices.
func NewHardware() hx711.Hardware {
	return hx711.Hardware{
		Pins:      sequencerPins{},
		Clock:     systemClock{},
		Sequencer: pioSequencer{},
		DMA:       newDMAController(),
	}
}
