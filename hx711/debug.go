package hx711

import "strconv"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active.
	// Disabled by default: writing to a USB console from inside a capture
	// would stretch the time between conversions
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function.
// This allows platforms to redirect debug output to UART or USB
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// debug writes "[HX711] msg" if debug output is enabled
func debug(msg string) {
	if debugEnabled {
		debugPrintln("[HX711] " + msg)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func utoa(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}

func ftoa(f float32, prec int) string {
	return strconv.FormatFloat(float64(f), 'f', prec, 32)
}
