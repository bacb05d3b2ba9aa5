package bot

import (
	"sync"

	"github.com/c360/ircbot/errors"
)

// shutdownPhase is the tri-state teardown flag. Exactly one caller wins the
// live to inProgress transition; that caller alone moves inProgress to done.
type shutdownPhase int

const (
	phaseLive shutdownPhase = iota
	phaseInProgress
	phaseDone
)

// shutdownCell guards the phase with its own dedicated lock, separate from
// the session lock, so a teardown decision never waits on connection state.
type shutdownCell struct {
	mu    sync.Mutex
	phase shutdownPhase
}

// begin claims the teardown. The error distinguishes a concurrent in-flight
// shutdown from one that already completed.
func (c *shutdownCell) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case phaseInProgress:
		return errors.WrapMisuse(errors.ErrShutdownInProgress, "bot", "shutdown", "teardown already running")
	case phaseDone:
		return errors.WrapMisuse(errors.ErrAlreadyShutdown, "bot", "shutdown", "bot is already shut down")
	}
	c.phase = phaseInProgress
	return nil
}

// finish marks teardown complete; only the begin winner calls it
func (c *shutdownCell) finish() {
	c.mu.Lock()
	c.phase = phaseDone
	c.mu.Unlock()
}

// reset rearms the cell for a fresh connection
func (c *shutdownCell) reset() {
	c.mu.Lock()
	c.phase = phaseLive
	c.mu.Unlock()
}

// inProgress reports whether a teardown is currently running, used by the
// read loop to tell an expected close race from a genuine connection loss
func (c *shutdownCell) inProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == phaseInProgress
}
