package worker

import (
	"errors"
	"fmt"
)

// Pool lifecycle and submission errors
var (
	ErrAlreadyStarted = errors.New("worker pool already started")
	ErrAlreadyStopped = errors.New("worker pool already stopped")
	ErrNotStarted     = errors.New("worker pool not started")
	ErrQueueFull      = errors.New("worker pool queue is full")
	ErrStopTimeout    = errors.New("worker pool stop timed out")
)

// PanicError wraps a recovered panic from a work processor
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("work processor panicked: %v", e.Value)
}
