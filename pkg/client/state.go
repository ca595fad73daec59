package client

import (
	"fmt"
	"sync"
)

// State is a step of a single upload attempt.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateValidated
	StateUploading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateValidated:
		return "validated"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Attempt tracks one upload from file selection to its outcome:
//
//	idle -> selecting -> validated -> uploading -> succeeded|failed -> idle
//
// Selecting again while validated replaces the selection. Any other move
// returns ErrInvalidTransition and leaves the attempt unchanged.
type Attempt struct {
	mu       sync.Mutex
	state    State
	name     string
	size     int64
	progress int
	link     string
	err      error
}

func NewAttempt() *Attempt {
	return &Attempt{}
}

func (a *Attempt) transition(to State, allowed ...State) error {
	for _, from := range allowed {
		if a.state == from {
			a.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, to)
}

// Select opens a new selection.
func (a *Attempt) Select() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transition(StateSelecting, StateIdle, StateValidated)
}

// Choose records the picked file. Files over MaxFileSize send the attempt
// back to idle and return ErrFileTooLarge.
func (a *Attempt) Choose(name string, size int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateSelecting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, StateValidated)
	}
	if err := ValidateSize(size); err != nil {
		a.clear()
		return err
	}

	a.state = StateValidated
	a.name = name
	a.size = size
	return nil
}

// Start begins the upload of the validated file.
func (a *Attempt) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.transition(StateUploading, StateValidated); err != nil {
		return err
	}
	a.progress = 0
	return nil
}

// Progress records an upload percentage. Values are clamped to 0..100 and
// never move backwards.
func (a *Attempt) Progress(pct int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateUploading {
		return fmt.Errorf("%w: progress while %s", ErrInvalidTransition, a.state)
	}
	pct = max(0, min(100, pct))
	if pct > a.progress {
		a.progress = pct
	}
	return nil
}

func (a *Attempt) Succeed(link string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.transition(StateSucceeded, StateUploading); err != nil {
		return err
	}
	a.progress = 100
	a.link = link
	return nil
}

func (a *Attempt) Fail(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if terr := a.transition(StateFailed, StateUploading); terr != nil {
		return terr
	}
	a.err = err
	return nil
}

// Reset returns to idle after an outcome, or abandons an open selection.
func (a *Attempt) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case StateSucceeded, StateFailed, StateSelecting:
		a.clear()
		return nil
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, StateIdle)
	}
}

func (a *Attempt) clear() {
	a.state = StateIdle
	a.name = ""
	a.size = 0
	a.progress = 0
	a.link = ""
	a.err = nil
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Selection returns the validated file name and size.
func (a *Attempt) Selection() (string, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name, a.size
}

func (a *Attempt) Percent() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.progress
}

func (a *Attempt) Link() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.link
}

func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}
