//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"runtime"
	"runtime/volatile"
	"time"
	"unsafe"

	"piohx711/hx711"
)

// RP2040 DMA controller memory map
const (
	dmaBase          = 0x50000000
	dmaChannelStride = 0x40 // 4 registers + 3 alias blocks per channel
	dmaChanAbort     = dmaBase + 0x444
	dmaChannelCount  = 12
)

// CHx_CTRL_TRIG fields
const (
	dmaCtrlEN           = 1 << 0
	dmaCtrlDataSizeWord = 2 << 2
	dmaCtrlIncrWrite    = 1 << 5
	dmaCtrlChainToPos   = 11
	dmaCtrlTreqSelPos   = 15
	dmaCtrlBusy         = 1 << 24
	dmaCtrlErrorMask    = 0x7 << 29
)

// dmaChannelRegs is the register block of one DMA channel
type dmaChannelRegs struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
}

var (
	dmaAbort = (*volatile.Register32)(unsafe.Pointer(uintptr(dmaChanAbort)))

	errNoSuchChannel  = errors.New("DMA channel out of range")
	errChannelClaimed = errors.New("DMA channel already claimed")
	errAllClaimed     = errors.New("all DMA channels claimed")
	errEmptyTransfer  = errors.New("empty DMA transfer")
	errBusError       = errors.New("DMA bus error")
)

// dmaController implements hx711.DMA
type dmaController struct {
	// Channel allocation tracking
	claimed [dmaChannelCount]bool
}

func newDMAController() *dmaController {
	// Take the DMA block out of reset (a no-op if the runtime already did)
	rp.RESETS.RESET.ClearBits(rp.RESETS_RESET_DMA)
	for !rp.RESETS.RESET_DONE.HasBits(rp.RESETS_RESET_DONE_DMA) {
	}
	return &dmaController{}
}

func channelRegs(ch hx711.DMAChannel) *dmaChannelRegs {
	return (*dmaChannelRegs)(unsafe.Pointer(uintptr(dmaBase + int(ch)*dmaChannelStride)))
}

func validChannel(ch hx711.DMAChannel) bool {
	return ch >= 0 && int(ch) < dmaChannelCount
}

func (d *dmaController) Claim(ch hx711.DMAChannel) error {
	if !validChannel(ch) {
		return errNoSuchChannel
	}
	if d.claimed[ch] {
		return errChannelClaimed
	}
	d.claimed[ch] = true
	return nil
}

// ClaimUnused claims the lowest free channel
func (d *dmaController) ClaimUnused() (hx711.DMAChannel, error) {
	for ch := range d.claimed {
		if !d.claimed[ch] {
			d.claimed[ch] = true
			return hx711.DMAChannel(ch), nil
		}
	}
	return 0, errAllClaimed
}

func (d *dmaController) Unclaim(ch hx711.DMAChannel) {
	if validChannel(ch) {
		d.claimed[ch] = false
	}
}

// Start programs a peripheral-to-memory word transfer and triggers it.
// The channel chains to itself, which disables chaining.
func (d *dmaController) Start(ch hx711.DMAChannel, t hx711.Transfer) error {
	if !validChannel(ch) {
		return errNoSuchChannel
	}
	if len(t.Dest) == 0 {
		return errEmptyTransfer
	}

	regs := channelRegs(ch)
	regs.CTRL_TRIG.Set(0)
	regs.READ_ADDR.Set(uint32(t.Source.Addr))
	regs.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&t.Dest[0]))))
	regs.TRANS_COUNT.Set(uint32(len(t.Dest)))

	ctrl := uint32(dmaCtrlEN | dmaCtrlDataSizeWord | dmaCtrlIncrWrite)
	ctrl |= uint32(ch) << dmaCtrlChainToPos
	ctrl |= uint32(t.Source.DREQ) << dmaCtrlTreqSelPos

	// Writing CTRL_TRIG starts the transfer
	regs.CTRL_TRIG.Set(ctrl)
	return nil
}

// Wait polls the BUSY flag. Other goroutines (USB) keep running while
// the caller is blocked.
func (d *dmaController) Wait(ch hx711.DMAChannel, timeout time.Duration) error {
	if !validChannel(ch) {
		return errNoSuchChannel
	}
	regs := channelRegs(ch)

	start := time.Now()
	for regs.CTRL_TRIG.HasBits(dmaCtrlBusy) {
		if timeout > 0 && time.Since(start) >= timeout {
			return hx711.ErrTimedOut
		}
		runtime.Gosched()
	}
	if regs.CTRL_TRIG.Get()&dmaCtrlErrorMask != 0 {
		return errBusError
	}
	return nil
}

func (d *dmaController) Abort(ch hx711.DMAChannel) {
	if !validChannel(ch) {
		return
	}
	mask := uint32(1) << uint32(ch)
	dmaAbort.Set(mask)
	for dmaAbort.HasBits(mask) {
	}
	channelRegs(ch).CTRL_TRIG.Set(0)
}
