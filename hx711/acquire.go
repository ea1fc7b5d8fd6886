package hx711

import "errors"

// capture fills buf with len(buf) raw conversions and blocks until the
// DMA transfer completes
func (d *Device) capture(buf []uint32) error {
	sm := d.sm

	// FIFOs and the ISR can only be reset while it is stopped
	sm.SetEnabled(false)

	// A previous run may have left a partial word in the ISR. Clearing the
	// FIFOs alone does not reset the input shift counter, and a stale
	// count misaligns the very next bit clocked in
	sm.ClearFIFOs()
	sm.Restart()

	ch := d.binding.DMAChannel
	if !d.dmaBound {
		var err error
		ch, err = d.hw.DMA.ClaimUnused()
		if err != nil {
			return &hwError{op: "claim DMA channel", kind: ErrNoDMAChannel, err: err}
		}
		defer d.hw.DMA.Unclaim(ch)
	}

	err := d.hw.DMA.Start(ch, Transfer{
		Source: sm.RxFIFO(),
		Dest:   buf,
	})
	if err != nil {
		return wrap("start DMA channel "+itoa(int(ch)), err)
	}

	sm.SetEnabled(true)

	// The program loops count+1 times
	sm.Put(uint32(len(buf) - 1))

	err = d.hw.DMA.Wait(ch, d.timeout)
	if err != nil {
		d.hw.DMA.Abort(ch)
		sm.SetEnabled(false)
		if errors.Is(err, ErrTimedOut) {
			debug("capture timed out on " + d.binding.String())
			return &TimeoutError{Samples: len(buf), Timeout: d.timeout}
		}
		return wrap("wait for DMA channel "+itoa(int(ch)), err)
	}

	// The program stalls on "pull block" once done; stop it so the clock
	// pin is left alone until the next read
	sm.SetEnabled(false)
	return nil
}

// ReadAverage captures n conversions and returns their average, raw and
// calibrated. It blocks until all conversions arrived; at the default
// 10Hz output rate of the amplifier that is about n*100ms
func (d *Device) ReadAverage(n int) (Reading, error) {
	if d.closed {
		return Reading{}, ErrClosed
	}
	if n < 1 {
		return Reading{}, ErrNoSamples
	}
	cal := d.cal
	if !cal.valid() {
		// Fail before touching the hardware; the result could not be used
		return Reading{}, ErrZeroScale
	}

	buf, samples := d.buffers(n)
	for i := range buf {
		buf[i] = 0
	}

	if err := d.capture(buf); err != nil {
		return Reading{}, err
	}

	for i, w := range buf {
		samples[i] = Decode(w)
	}

	r, err := Aggregate(samples, cal)
	if err != nil {
		return Reading{}, err
	}
	d.last = r
	return r, nil
}

// buffers returns capture and decode buffers of length n, reusing the
// previous allocation when it is large enough
func (d *Device) buffers(n int) ([]uint32, []int32) {
	if cap(d.raw) < n {
		d.raw = make([]uint32, n)
		d.decoded = make([]int32, n)
	}
	return d.raw[:n], d.decoded[:n]
}
