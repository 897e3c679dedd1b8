//go:build linux

// Package mediakeys forwards desktop media key presses from the session bus.
package mediakeys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/logutil"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const keyPressedMember = "MediaPlayerKeyPressed"

var keyNames = map[string]domain.MediaKey{
	"Play":     domain.KeyPlay,
	"Pause":    domain.KeyPause,
	"Stop":     domain.KeyStop,
	"Next":     domain.KeyNext,
	"Previous": domain.KeyPrevious,
}

// Listener grabs the media player keys from the GNOME settings daemon and
// emits every press addressed to its application name
type Listener struct {
	logger    *zap.Logger
	app       string
	dial      func() (DBusClient, error)
	events    chan domain.MediaKey
	dropWarn  *logutil.Throttled
	closeOnce sync.Once

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	conn    DBusClient
	wg      sync.WaitGroup
}

// NewListener creates a listener for app on the session bus
func NewListener(app string, logger *zap.Logger) *Listener {
	return newListener(app, logger, func() (DBusClient, error) {
		return NewStdDBusClient()
	})
}

func newListener(app string, logger *zap.Logger, dial func() (DBusClient, error)) *Listener {
	return &Listener{
		logger:   logger,
		app:      app,
		dial:     dial,
		events:   make(chan domain.MediaKey, 10),
		dropWarn: logutil.NewThrottled(logger, 5*time.Second),
	}
}

// Start connects, subscribes to key presses and grabs the keys.
// It returns once the keys are grabbed; presses flow until Stop or ctx ends.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}

	conn, err := l.dial()
	if err != nil {
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(mediaKeysPath),
		dbus.WithMatchInterface(mediaKeysIface),
		dbus.WithMatchMember(keyPressedMember),
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	if err := conn.GrabMediaPlayerKeys(l.app); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to grab media keys: %w", err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	l.conn = conn
	l.cancel = cancel
	l.running = true

	signals := make(chan *dbus.Signal, 10)
	conn.Signal(signals)

	l.wg.Add(1)
	go l.watch(listenCtx, signals)

	l.logger.Info("Media keys grabbed", zap.String("app", l.app))
	return nil
}

// watch forwards key press signals until ctx ends
func (l *Listener) watch(ctx context.Context, signals <-chan *dbus.Signal) {
	defer l.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig != nil {
				l.handleSignal(sig)
			}
		}
	}
}

// handleSignal emits the key of a MediaPlayerKeyPressed(app, key) signal
func (l *Listener) handleSignal(sig *dbus.Signal) {
	if sig.Name != mediaKeysIface+"."+keyPressedMember || len(sig.Body) < 2 {
		return
	}
	app, ok := sig.Body[0].(string)
	if !ok || app != l.app {
		return
	}
	name, _ := sig.Body[1].(string)
	key, ok := keyNames[name]
	if !ok {
		l.logger.Debug("Ignoring media key", zap.String("key", name))
		return
	}

	select {
	case l.events <- key:
	default:
		l.dropWarn.Warn("Media key channel full, dropping key press", zap.String("key", name))
	}
}

// Stop releases the keys, closes the connection and then the Events channel.
// It is safe to call without Start and more than once.
func (l *Listener) Stop() error {
	l.mu.Lock()
	running := l.running
	conn := l.conn
	if running {
		l.cancel()
	}
	l.running = false
	l.conn = nil
	l.mu.Unlock()

	// No producer may be left before the channel closes
	l.wg.Wait()
	l.closeOnce.Do(func() { close(l.events) })

	if !running {
		return nil
	}
	if err := conn.ReleaseMediaPlayerKeys(l.app); err != nil {
		l.logger.Warn("Failed to release media keys", zap.Error(err))
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close session bus: %w", err)
	}
	l.logger.Info("Media keys released")
	return nil
}

// Events returns a read-only channel of key presses
func (l *Listener) Events() <-chan domain.MediaKey {
	return l.events
}
