package hx711

import "time"

// ChannelGain selects the amplifier input channel and gain. The chip
// latches it from the number of clock pulses after the 24 data bits
type ChannelGain uint8

const (
	ChannelA128 ChannelGain = 1 // channel A, gain 128, 1 extra pulse
	ChannelB32  ChannelGain = 2 // channel B, gain 32, 2 extra pulses
	ChannelA64  ChannelGain = 3 // channel A, gain 64, 3 extra pulses
)

// ExtraPulses returns the number of clock pulses following the data bits
// that select this channel and gain for the next conversion
func (g ChannelGain) ExtraPulses() int {
	return int(g)
}

func (g ChannelGain) String() string {
	switch g {
	case ChannelA128:
		return "A_128"
	case ChannelB32:
		return "B_32"
	case ChannelA64:
		return "A_64"
	}
	return "ChannelGain(" + itoa(int(g)) + ")"
}

// Binding names the hardware resources one Device owns
type Binding struct {
	Block      BlockID
	Slot       SlotID
	DMAChannel DMAChannel
	Clock      Pin // PD_SCK
	Data       Pin // DOUT
}

func (b Binding) String() string {
	s := "pio" + utoa(uint32(b.Block)) + "/sm" + utoa(uint32(b.Slot)) +
		" sclk=GPIO" + utoa(uint32(b.Clock)) + " data=GPIO" + utoa(uint32(b.Data))
	if b.DMAChannel != DMAChannelAuto {
		s += " dma=" + itoa(int(b.DMAChannel))
	}
	return s
}

// Config holds the driver configuration
type Config struct {
	Binding Binding

	// Offset is applied before Scale
	Offset int32
	// Scale must be non-zero
	Scale float32

	Gain ChannelGain

	// Timeout bounds the wait for a capture to complete. Zero waits
	// forever, which is what a connected amplifier needs; a disconnected
	// one then blocks the caller indefinitely
	Timeout time.Duration

	// SamplesPerUpdate is the sample count used by Update
	SamplesPerUpdate int
}

// DefaultConfig returns the default configuration: PIO0 state machine 0,
// PD_SCK on GPIO4, DOUT on GPIO5, a DMA channel claimed per read, no
// calibration, channel A at gain 128 and no timeout
func DefaultConfig() Config {
	return Config{
		Binding: Binding{
			Block:      0,
			Slot:       0,
			DMAChannel: DMAChannelAuto,
			Clock:      4,
			Data:       5,
		},
		Offset:           0,
		Scale:            1,
		Gain:             ChannelA128,
		SamplesPerUpdate: 5,
	}
}

// Option is a functional option for configuring a Device
type Option func(*Config)

// WithPins sets the clock (PD_SCK) and data (DOUT) pins
func WithPins(clock, data Pin) Option {
	return func(c *Config) {
		c.Binding.Clock = clock
		c.Binding.Data = data
	}
}

// WithStateMachine selects the block and slot the driver runs on
func WithStateMachine(block BlockID, slot SlotID) Option {
	return func(c *Config) {
		c.Binding.Block = block
		c.Binding.Slot = slot
	}
}

// WithDMAChannel binds a DMA channel for the lifetime of the Device
// instead of claiming one per read
func WithDMAChannel(ch DMAChannel) Option {
	return func(c *Config) {
		c.Binding.DMAChannel = ch
	}
}

// WithCalibration sets the initial offset and scale
func WithCalibration(offset int32, scale float32) Option {
	return func(c *Config) {
		c.Offset = offset
		c.Scale = scale
	}
}

// WithChannelGain sets the channel and gain selection
func WithChannelGain(g ChannelGain) Option {
	return func(c *Config) {
		c.Gain = g
	}
}

// WithTimeout bounds every capture by d
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}
