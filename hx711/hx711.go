// Package hx711 drives the HX711 24-bit load cell amplifier through a
// programmable I/O state machine and a DMA channel.
//
// The state machine clocks the two-wire serial interface on its own: it
// waits for DOUT to signal a finished conversion, clocks out the 24 data
// bits plus the channel/gain selection pulse, and pushes every conversion
// into its receive queue. A DMA channel paced by the queue's data request
// line moves the conversions into memory, so the CPU only starts a read
// and waits for it to finish.
//
// Hardware access goes through the interfaces in hal.go; the RP2040
// implementation lives in targets/rp2040.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/ForceFlex/hx711_english.pdf
package hx711

import (
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// Device is one HX711 bound to a state machine. It is not safe for
// concurrent use; callers sharing a Device must serialise reads
type Device struct {
	hw      Hardware
	binding Binding
	sm      StateMachine
	offset  uint8
	smCfg   StateMachineConfig

	cal     Calibration
	gain    ChannelGain
	timeout time.Duration

	dmaBound bool
	closed   bool

	// call-scoped capture buffers, kept between reads to avoid
	// allocating on every read
	raw     []uint32
	decoded []int32

	samplesPerUpdate int
	last             Reading
}

var (
	_ drivers.Sensor = (*Device)(nil)
	_ conn.Resource  = (*Device)(nil)
)

// New creates a Device from DefaultConfig modified by opts
func New(hw Hardware, opts ...Option) (*Device, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewFromConfig(hw, cfg)
}

// NewFromConfig installs the acquisition program in the block (once per
// block), configures the state machine and, if the binding names one,
// claims the DMA channel. The state machine stays disabled until the
// first read
func NewFromConfig(hw Hardware, cfg Config) (*Device, error) {
	if err := hw.validate(); err != nil {
		return nil, err
	}
	if !cfg.calibration().valid() {
		return nil, ErrZeroScale
	}
	if hw.Registry == nil {
		hw.Registry = DefaultRegistry
	}
	if cfg.Gain == 0 {
		cfg.Gain = ChannelA128
	}
	if cfg.SamplesPerUpdate < 1 {
		cfg.SamplesPerUpdate = 1
	}

	b := cfg.Binding
	d := &Device{
		hw:               hw,
		binding:          b,
		cal:              cfg.calibration(),
		gain:             cfg.Gain,
		timeout:          cfg.Timeout,
		samplesPerUpdate: cfg.SamplesPerUpdate,
	}

	// DOUT is open drain on the amplifier side: hold it high and let the
	// chip pull it low when a conversion is ready
	if err := hw.Pins.ConfigureSequencerPin(b.Data, b.Block); err != nil {
		return nil, wrap("configure data pin", err)
	}
	if err := hw.Pins.ConfigureSequencerPin(b.Clock, b.Block); err != nil {
		return nil, wrap("configure clock pin", err)
	}
	if err := hw.Pins.SetPull(b.Data, gpio.PullUp); err != nil {
		return nil, wrap("pull up data pin", err)
	}

	offset, err := hw.Registry.EnsureLoaded(hw.Sequencer, b.Block)
	if err != nil {
		return nil, err
	}
	d.offset = offset

	sm, err := hw.Sequencer.StateMachine(b.Block, b.Slot)
	if err != nil {
		return nil, wrap("state machine "+b.String(), err)
	}
	d.sm = sm

	d.smCfg = NewStateMachineConfig(b, offset, hw.Clock.SystemClock())
	if err := sm.Init(offset, d.smCfg); err != nil {
		sm.Release()
		return nil, wrap("init state machine", err)
	}

	if b.DMAChannel != DMAChannelAuto {
		if err := hw.DMA.Claim(b.DMAChannel); err != nil {
			sm.Release()
			return nil, &hwError{op: "claim DMA channel " + itoa(int(b.DMAChannel)), kind: ErrNoDMAChannel, err: err}
		}
		d.dmaBound = true
	}

	debug("configured " + b.String() + " clkdiv=" + ftoa(d.smCfg.ClkDiv, 2))
	return d, nil
}

func (c Config) calibration() Calibration {
	return Calibration{Offset: c.Offset, Scale: c.Scale}
}

// Binding returns the hardware resources the device is bound to
func (d *Device) Binding() Binding {
	return d.binding
}

// ProgramOffset returns where the acquisition program sits in the block's
// instruction memory
func (d *Device) ProgramOffset() uint8 {
	return d.offset
}

// StateMachineConfig returns the configuration applied to the state machine
func (d *Device) StateMachineConfig() StateMachineConfig {
	return d.smCfg
}

// ChannelGain returns the channel and gain selection
func (d *Device) ChannelGain() ChannelGain {
	return d.gain
}

// SetChannelGain stores the channel and gain selection. The installed
// program always clocks a single selection pulse (channel A, gain 128);
// the setting is recorded for callers but does not change the capture
func (d *Device) SetChannelGain(g ChannelGain) {
	d.gain = g
}

// Offset returns the raw offset subtracted before scaling
func (d *Device) Offset() int32 {
	return d.cal.Offset
}

// SetOffset sets the raw offset subtracted before scaling
func (d *Device) SetOffset(offset int32) {
	d.cal.Offset = offset
}

// Scale returns the scale divisor
func (d *Device) Scale() float32 {
	return d.cal.Scale
}

// SetScale sets the scale divisor. It is not validated: a zero scale makes
// the following reads fail with ErrZeroScale
func (d *Device) SetScale(scale float32) {
	d.cal.Scale = scale
}

// Calibration returns the current offset and scale
func (d *Device) Calibration() Calibration {
	return d.cal
}

// Tare reads n conversions and stores their raw average as the offset, so
// that the current load reads as zero
func (d *Device) Tare(n int) error {
	cal := d.cal
	if !cal.valid() {
		// Tare only needs the raw average
		cal.Scale = 1
	}
	r, err := d.readRaw(n, cal)
	if err != nil {
		return err
	}
	d.cal.Offset = round(r.RawAverage)
	debug("tare offset=" + itoa(int(d.cal.Offset)))
	return nil
}

// CalibrateScale reads n conversions with a known load applied and sets
// the scale so that the load reads as known
func (d *Device) CalibrateScale(n int, known float32) error {
	if known == 0 {
		return ErrZeroScale
	}
	r, err := d.readRaw(n, Calibration{Offset: d.cal.Offset, Scale: 1})
	if err != nil {
		return err
	}
	scale := (r.RawAverage - float32(d.cal.Offset)) / known
	if !(Calibration{Scale: scale}).valid() {
		return ErrZeroScale
	}
	d.cal.Scale = scale
	debug("scale=" + ftoa(scale, 4))
	return nil
}

// readRaw reads with a temporary calibration. LastReading keeps reporting
// the last read made with the device's own calibration
func (d *Device) readRaw(n int, cal Calibration) (Reading, error) {
	saved, last := d.cal, d.last
	d.cal = cal
	r, err := d.ReadAverage(n)
	d.cal, d.last = saved, last
	return r, err
}

func round(f float32) int32 {
	if f < 0 {
		return int32(f - 0.5)
	}
	return int32(f + 0.5)
}

// Update implements drivers.Sensor. Any request including drivers.Voltage
// (the amplified bridge voltage) reads an average of SamplesPerUpdate
// conversions; use Weight and Raw to get the result
func (d *Device) Update(which drivers.Measurement) error {
	if which&drivers.Voltage == 0 {
		return nil
	}
	_, err := d.ReadAverage(d.samplesPerUpdate)
	return err
}

// LastReading returns the result of the most recent successful read
func (d *Device) LastReading() Reading {
	return d.last
}

// Weight returns the calibrated value of the most recent read
func (d *Device) Weight() float32 {
	return d.last.ScaledAverage
}

// Raw returns the raw average of the most recent read
func (d *Device) Raw() float32 {
	return d.last.RawAverage
}

func (d *Device) String() string {
	return "hx711{" + d.binding.String() + "}"
}

// Halt stops the state machine. The next read restarts it
func (d *Device) Halt() error {
	d.sm.SetEnabled(false)
	return nil
}

// Close stops the state machine and releases its slot and a bound DMA
// channel. The program stays resident for other devices in the same block
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.sm.Release()
	if d.dmaBound {
		d.hw.DMA.Unclaim(d.binding.DMAChannel)
		d.dmaBound = false
	}
	return nil
}
