package player

import (
	"errors"
	"fmt"
)

var (
	// ErrInitialization matches every InitError
	ErrInitialization = errors.New("player initialization failed")
	// ErrDisposed is returned when starting a session that was already disposed
	ErrDisposed = errors.New("player session disposed")
	// ErrAlreadyStarted is returned when StartPlayback is called twice
	ErrAlreadyStarted = errors.New("playback already started")
)

// InitError reports why a session never reached playback.
// It is fatal to its own session only.
type InitError struct {
	SessionID int64
	Stage     string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("session %d: %s: %v", e.SessionID, e.Stage, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As
func (e *InitError) Unwrap() []error {
	return []error{ErrInitialization, e.Err}
}
