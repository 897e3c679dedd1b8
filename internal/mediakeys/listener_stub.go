//go:build !linux

// Package mediakeys forwards desktop media key presses from the session bus.
package mediakeys

import (
	"context"
	"fmt"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

// Listener stub for non-Linux platforms
type Listener struct {
	logger *zap.Logger
	events chan domain.MediaKey
}

// NewListener creates a stub listener that fails to start on non-Linux platforms
func NewListener(app string, logger *zap.Logger) *Listener {
	events := make(chan domain.MediaKey)
	close(events)
	return &Listener{logger: logger, events: events}
}

// Start returns an error since media keys are read from the GNOME settings daemon
func (l *Listener) Start(ctx context.Context) error {
	return fmt.Errorf("media keys are only supported on Linux systems")
}

// Events returns a closed channel since no keys are delivered
func (l *Listener) Events() <-chan domain.MediaKey {
	return l.events
}

// Stop is a no-op on non-Linux platforms
func (l *Listener) Stop() error {
	return nil
}
