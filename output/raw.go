// Package output provides the outbound command surfaces of a bot. Each type
// is a thin façade that formats protocol commands and hands finished lines to
// the connection's raw sender.
package output

import (
	"log/slog"
	"sync"
	"time"
)

// LineWriter writes one finished line to the connection. The bot's raw sender
// implements it; tests substitute a recorder.
type LineWriter interface {
	SendRawLine(line string) error
}

// Raw queues single raw lines with a per-line delay to avoid server flood
// limits. RawLineNow bypasses the delay for time-critical lines such as PONG.
// Both paths are serialized on one lock; callers needing atomic multi-line
// sequences must hold their own ordering on top.
type Raw struct {
	writer LineWriter
	delay  time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	lastSent time.Time
}

// NewRaw creates a raw sender façade with the given inter-line delay
func NewRaw(writer LineWriter, delay time.Duration, logger *slog.Logger) *Raw {
	if logger == nil {
		logger = slog.Default().With("component", "output-raw")
	}
	return &Raw{writer: writer, delay: delay, logger: logger}
}

// RawLine sends a line, waiting out the configured delay since the last send
func (r *Raw) RawLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.delay > 0 {
		if wait := r.delay - time.Since(r.lastSent); wait > 0 {
			time.Sleep(wait)
		}
	}
	err := r.writer.SendRawLine(line)
	r.lastSent = time.Now()
	return err
}

// RawLineNow sends a line immediately, skipping the flood delay
func (r *Raw) RawLineNow(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.writer.SendRawLine(line)
	r.lastSent = time.Now()
	return err
}
