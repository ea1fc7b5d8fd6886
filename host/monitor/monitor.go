package monitor

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// Handler receives every parsed sample together with the updated stats.
// Lines that are not readings are passed to Other when it is set.
type Handler struct {
	Sample func(Sample, *Stats)
	Other  func(line string)
}

// Run reads lines from r until EOF or ctx is cancelled. Read timeouts on
// the port surface as short reads and are not errors.
func Run(ctx context.Context, r io.Reader, h Handler) (*Stats, error) {
	stats := &Stats{}
	scanner := bufio.NewScanner(&retryReader{ctx: ctx, r: r})

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := scanner.Text()
		sample, err := ParseLine(line)
		if err != nil {
			if h.Other != nil && line != "" {
				h.Other(line)
			}
			continue
		}

		stats.Add(sample)
		if h.Sample != nil {
			h.Sample(sample, stats)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return stats, err
	}
	return stats, ctx.Err()
}

// retryReader hides empty reads from a serial port. A port whose read
// timeout expires returns (0, io.EOF), which would otherwise end the scan.
// For other readers only io.EOF ends the stream; (0, nil) is retried.
type retryReader struct {
	ctx context.Context
	r   io.Reader
}

// maxEmptyReads bounds consecutive (0, nil) reads, as bufio.Scanner does
const maxEmptyReads = 100

func (rr *retryReader) Read(p []byte) (int, error) {
	_, isPort := rr.r.(interface{ Flush() error })
	empty := 0
	for {
		n, err := rr.r.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if cerr := rr.ctx.Err(); cerr != nil {
			return 0, cerr
		}
		if err == nil {
			empty++
			if !isPort && empty >= maxEmptyReads {
				return 0, io.ErrNoProgress
			}
			continue
		}
		if !isPort {
			return 0, io.EOF
		}
	}
}
