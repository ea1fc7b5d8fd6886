package hx711

import (
	"errors"
	"time"
)

var (
	// ErrProgramSpace is returned when the acquisition program does not fit
	// in the block's instruction memory
	ErrProgramSpace = errors.New("hx711: no room in sequencer instruction memory")

	// ErrNoDMAChannel is returned when no free DMA channel can be claimed
	ErrNoDMAChannel = errors.New("hx711: no free DMA channel")

	// ErrZeroScale is returned when an average is computed with a scale
	// that is zero, NaN or infinite
	ErrZeroScale = errors.New("hx711: scale must be finite and non-zero")

	// ErrScaleOverflow is returned when the scale is so small that the
	// calibrated value does not fit in a float32
	ErrScaleOverflow = errors.New("hx711: calibrated value out of float32 range")

	// ErrNoSamples is returned when fewer than one sample is requested
	ErrNoSamples = errors.New("hx711: sample count must be at least 1")

	// ErrTimedOut is returned by DMA.Wait when its timeout elapses
	ErrTimedOut = errors.New("hx711: timed out waiting for conversions")

	// ErrClosed is returned by operations on a closed Device
	ErrClosed = errors.New("hx711: device closed")
)

// TimeoutError reports a capture that did not complete within the
// configured timeout, usually because the amplifier is disconnected
type TimeoutError struct {
	Samples int
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "hx711: capture of " + itoa(e.Samples) + " samples did not complete within " + e.Timeout.String()
}

// Is reports ErrTimedOut as a match so callers can test with errors.Is
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimedOut
}

// hwError wraps an error returned by the hardware layer with the operation
// that failed. kind, if set, classifies the failure (ErrProgramSpace, ...)
type hwError struct {
	op   string
	kind error
	err  error
}

func (e *hwError) Error() string {
	return "hx711: " + e.op + ": " + e.err.Error()
}

func (e *hwError) Unwrap() []error {
	if e.kind == nil {
		return []error{e.err}
	}
	return []error{e.kind, e.err}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &hwError{op: op, err: err}
}

func errMissing(what string) error {
	return errors.New("hx711: hardware has no " + what)
}
