//go:build rp2040

package main

import (
	"machine"
	"strconv"
	"time"

	"piohx711/hx711"
)

// Calibration of the reference load cell. Offset is the raw reading with
// nothing on the platform; scale is raw counts per unit of weight.
const (
	calibrationOffset = -290500
	calibrationScale  = -11114

	samplesPerLine = 5
	linePeriod     = 100 * time.Millisecond
)

var (
	console = machine.Serial

	// Read counters, reported with every failed read
	linesWritten uint32
	readErrors   uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Give the host time to open the USB CDC port
	time.Sleep(2 * time.Second)

	hx711.SetDebugWriter(func(msg string) {
		writeString(msg + "\r\n")
	})

	cfg := hx711.DefaultConfig()
	cfg.Binding.DMAChannel = 0
	cfg.Offset = calibrationOffset
	cfg.Scale = calibrationScale
	cfg.Timeout = time.Second

	writeString("HX711 PIO/DMA load cell reader\r\n")
	writeString("SCLK: GPIO" + strconv.Itoa(int(cfg.Binding.Clock)) + "\r\n")
	writeString("DATA: GPIO" + strconv.Itoa(int(cfg.Binding.Data)) + "\r\n")

	dev, err := hx711.NewFromConfig(NewHardware(), cfg)
	if err != nil {
		for {
			writeString("ERROR: " + err.Error() + "\r\n")
			time.Sleep(time.Second)
		}
	}
	defer dev.Close()

	writeString("Scaled,Raw(" + dev.ChannelGain().String() + ")\r\n")

	line := make([]byte, 0, 64)
	next := time.Now()
	for {
		r, err := dev.ReadAverage(samplesPerLine)
		if err != nil {
			readErrors++
			ms := strconv.FormatUint(uptimeMicros()/1000, 10)
			counts := strconv.FormatUint(uint64(readErrors), 10) + "/" +
				strconv.FormatUint(uint64(readErrors+linesWritten), 10)
			writeString("ERROR at " + ms + "ms (" + counts + " reads failed): " + err.Error() + "\r\n")
		} else {
			line = appendReading(line[:0], r)
			console.Write(line)
			linesWritten++
		}

		next = next.Add(linePeriod)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		} else {
			// Fell behind; don't try to catch up
			next = time.Now()
		}
	}
}

// appendReading formats one "scaled,raw" line
func appendReading(buf []byte, r hx711.Reading) []byte {
	buf = strconv.AppendFloat(buf, float64(r.ScaledAverage), 'f', 2, 32)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, float64(r.RawAverage), 'f', 0, 32)
	return append(buf, '\r', '\n')
}

func writeString(s string) {
	console.Write([]byte(s))
}
