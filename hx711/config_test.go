package hx711

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	want := Binding{Block: 0, Slot: 0, DMAChannel: DMAChannelAuto, Clock: 4, Data: 5}
	if cfg.Binding != want {
		t.Errorf("binding = %+v, want %+v", cfg.Binding, want)
	}
	if cfg.Scale != 1 || cfg.Offset != 0 || cfg.Gain != ChannelA128 {
		t.Errorf("config:\n%s", pprint.Sdump(cfg))
	}
	if cfg.Timeout != 0 {
		t.Errorf("timeout = %v, want none", cfg.Timeout)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithPins(14, 15),
		WithStateMachine(1, 3),
		WithDMAChannel(7),
		WithCalibration(-290500, -11114),
		WithChannelGain(ChannelB32),
		WithTimeout(2 * time.Second),
	} {
		opt(&cfg)
	}

	want := Config{
		Binding:          Binding{Block: 1, Slot: 3, DMAChannel: 7, Clock: 14, Data: 15},
		Offset:           -290500,
		Scale:            -11114,
		Gain:             ChannelB32,
		Timeout:          2 * time.Second,
		SamplesPerUpdate: 5,
	}
	if cfg != want {
		t.Errorf("config:\n%s\nwant:\n%s", pprint.Sdump(cfg), pprint.Sdump(want))
	}
}

func TestChannelGainString(t *testing.T) {
	tests := map[ChannelGain]string{
		ChannelA128: "A_128",
		ChannelB32:  "B_32",
		ChannelA64:  "A_64",
		9:           "ChannelGain(9)",
	}
	for g, want := range tests {
		if got := g.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint8(g), got, want)
		}
	}
}

func TestBindingString(t *testing.T) {
	b := Binding{Block: 1, Slot: 2, DMAChannel: 11, Clock: 16, Data: 17}
	if got := b.String(); got != "pio1/sm2 sclk=GPIO16 data=GPIO17 dma=11" {
		t.Errorf("String = %q", got)
	}
}
