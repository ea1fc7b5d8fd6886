package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"piohx711/host/monitor"
	"piohx711/host/serial"
)

var (
	configPath = flag.String("config", "", "JSON config file (optional)")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate (ignored for USB CDC)")
	statsEvery = flag.Int("stats", -1, "Print statistics every N readings (0 = off)")
	verbose    = flag.Bool("verbose", false, "Also print banner, header and error lines")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("HX711 Monitor")
	fmt.Println("=============")
	fmt.Printf("Opening %s...\n", cfg.Device)

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	// Drop whatever the firmware printed before we attached
	if err := port.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := monitor.Run(ctx, port, monitor.Handler{
		Sample: func(s monitor.Sample, st *monitor.Stats) {
			fmt.Printf("%8.2fs  %10.2f %s  raw %10.0f\n",
				time.Since(start).Seconds(), s.Scaled, cfg.Unit, s.Raw)
			if cfg.StatsEvery > 0 && st.Count%cfg.StatsEvery == 0 {
				printStats(st, cfg.Unit)
			}
		},
		Other: func(line string) {
			if *verbose {
				fmt.Printf("  | %s\n", line)
			}
		},
	})

	fmt.Println()
	printStats(stats, cfg.Unit)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and applies flag overrides
func loadConfig() (*monitor.Config, error) {
	cfg := monitor.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg, err = monitor.LoadConfig(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", *configPath, err)
		}
	}

	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *statsEvery >= 0 {
		cfg.StatsEvery = *statsEvery
	}
	return cfg, nil
}

func printStats(st *monitor.Stats, unit string) {
	if st.Count == 0 {
		fmt.Println("No readings received")
		return
	}
	fmt.Printf("Readings: %d  mean %.2f %s  min %.2f  max %.2f  span %.2f\n",
		st.Count, st.Mean(), unit, st.Min, st.Max, st.Span())
}
