package hx711

import "math"

const (
	signBit    = 1 << (SampleBits - 1)
	sampleMask = 1<<SampleBits - 1
)

// Decode sign-extends a 24-bit two's complement conversion to int32.
// Bits above bit 23 in word are ignored
func Decode(word uint32) int32 {
	word &= sampleMask
	if word&signBit != 0 {
		word |= 0xff000000
	}
	return int32(word)
}

// Reading is the result of one averaged read
type Reading struct {
	// Samples is the number of conversions averaged
	Samples int
	// RawAverage is the mean of the decoded conversions
	RawAverage float32
	// ScaledAverage is (RawAverage - offset) / scale
	ScaledAverage float32
}

// Aggregate averages decoded conversions and applies the calibration:
// the raw mean is computed first, then the offset is subtracted and the
// result divided by the scale
func Aggregate(samples []int32, cal Calibration) (Reading, error) {
	if len(samples) == 0 {
		return Reading{}, ErrNoSamples
	}
	if !cal.valid() {
		return Reading{}, ErrZeroScale
	}

	var sum int64
	for _, s := range samples {
		sum += int64(s)
	}
	raw := float64(sum) / float64(len(samples))

	// A finite but tiny scale can still push the result past float32
	scaled := float32((raw - float64(cal.Offset)) / float64(cal.Scale))
	if math.IsInf(float64(scaled), 0) || math.IsNaN(float64(scaled)) {
		return Reading{}, ErrScaleOverflow
	}

	return Reading{
		Samples:       len(samples),
		RawAverage:    float32(raw),
		ScaledAverage: scaled,
	}, nil
}

// Calibration converts raw conversions to user units.
//
// The accessors on Device do not validate the scale; a zero (or NaN or
// infinite) scale is only rejected when an average is computed
type Calibration struct {
	// Offset is the raw value subtracted before scaling (the tare value)
	Offset int32
	// Scale is the number of raw counts per user unit
	Scale float32
}

func (c Calibration) valid() bool {
	s := float64(c.Scale)
	return s != 0 && !math.IsNaN(s) && !math.IsInf(s, 0)
}
