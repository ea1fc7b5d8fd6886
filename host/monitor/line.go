// Package monitor parses the reading lines the example firmware prints and
// keeps running statistics over them.
package monitor

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotReading is returned by ParseLine for banner, header and error lines
var ErrNotReading = errors.New("monitor: not a reading line")

// Sample is one averaged reading as printed by the firmware
type Sample struct {
	Scaled float64
	Raw    float64
}

// ParseLine parses a "scaled,raw" line. An optional leading timestamp
// column ("ms,scaled,raw") is accepted and ignored. Lines that are not
// readings return ErrNotReading; malformed numbers return a parse error.
func ParseLine(line string) (Sample, error) {
	line = strings.TrimSpace(line)
	if line == "" || !startsNumeric(line) {
		return Sample{}, ErrNotReading
	}

	fields := strings.Split(line, ",")
	switch len(fields) {
	case 2:
	case 3:
		fields = fields[1:]
	default:
		return Sample{}, ErrNotReading
	}

	scaled, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Sample{}, err
	}
	raw, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return Sample{}, err
	}
	return Sample{Scaled: scaled, Raw: raw}, nil
}

func startsNumeric(s string) bool {
	c := s[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}
