package monitor

import "math"

// Stats keeps running statistics of the scaled values
type Stats struct {
	Count int
	Min   float64
	Max   float64
	sum   float64
}

// Add records one sample
func (s *Stats) Add(v Sample) {
	if s.Count == 0 || v.Scaled < s.Min {
		s.Min = v.Scaled
	}
	if s.Count == 0 || v.Scaled > s.Max {
		s.Max = v.Scaled
	}
	s.Count++
	s.sum += v.Scaled
}

// Mean returns the average scaled value, or NaN when nothing was added
func (s *Stats) Mean() float64 {
	if s.Count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.Count)
}

// Span is Max - Min, the peak-to-peak noise while the load is constant
func (s *Stats) Span() float64 {
	return s.Max - s.Min
}

// Reset clears all statistics
func (s *Stats) Reset() {
	*s = Stats{}
}
