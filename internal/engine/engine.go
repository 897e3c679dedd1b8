package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/multiview/internal/bus"
	"github.com/genricoloni/multiview/internal/controller"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/layout"
	"github.com/genricoloni/multiview/internal/registry"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// keyRepeatWindow drops a media key pressed again this soon after itself
const keyRepeatWindow = 300 * time.Millisecond

var (
	// ErrUnknownSession is returned for commands addressing a session that is not open
	ErrUnknownSession = errors.New("unknown session")
	// ErrStopped is returned when opening a session after Stop
	ErrStopped = errors.New("engine stopped")
	// ErrAlreadyStarted is returned by a second Start
	ErrAlreadyStarted = errors.New("engine already started")
)

// Registry is the table of open session windows
type Registry = registry.Registry[*controller.Controller]

// NewRegistry is the fx constructor for the session table
func NewRegistry(logger *zap.Logger) *Registry {
	return registry.New[*controller.Controller](logger)
}

// Engine orchestrates the session windows.
// It opens controllers, forwards media keys onto the control bus and runs
// the commands that address every window at once.
type Engine struct {
	logger   *zap.Logger
	cfg      domain.Config
	bus      *bus.Bus
	sessions *Registry
	backends domain.BackendFactory
	resolver domain.StreamResolver
	layouts  domain.LayoutStore
	screen   controller.Screen
	keys     domain.MediaKeySource

	mu       sync.Mutex
	drained  chan struct{} // closed while no session is open
	cancel   context.CancelFunc
	loopDone chan struct{}
	stopped  bool
}

// NewEngine creates a new orchestration engine. keys may be nil.
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	b *bus.Bus,
	sessions *Registry,
	backends domain.BackendFactory,
	resolver domain.StreamResolver,
	layouts domain.LayoutStore,
	screen controller.Screen,
	keys domain.MediaKeySource,
) *Engine {
	drained := make(chan struct{})
	close(drained)
	return &Engine{
		logger:   logger,
		cfg:      cfg,
		bus:      b,
		sessions: sessions,
		backends: backends,
		resolver: resolver,
		layouts:  layouts,
		screen:   screen,
		keys:     keys,
		drained:  drained,
	}
}

// Start launches the media-key loop in a goroutine and returns immediately.
// The loop outlives ctx and runs until Stop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.loopDone = make(chan struct{})
	done := e.loopDone
	e.mu.Unlock()

	e.logger.Info("Engine starting...")

	var keys <-chan domain.MediaKey
	if e.keys != nil {
		if err := e.keys.Start(loopCtx); err != nil {
			e.logger.Warn("Media keys unavailable, continuing without them", zap.Error(err))
		} else {
			keys = e.keys.Events()
		}
	}

	go e.runLoop(loopCtx, keys, done)
	return nil
}

// runLoop turns media key presses into bus broadcasts.
// A key repeated within keyRepeatWindow is dropped.
func (e *Engine) runLoop(ctx context.Context, keys <-chan domain.MediaKey, done chan struct{}) {
	defer close(done)
	lastPress := make(map[domain.MediaKey]time.Time)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case key, ok := <-keys:
			if !ok {
				e.logger.Info("Media key channel closed")
				keys = nil
				continue
			}
			now := time.Now()
			if prev, seen := lastPress[key]; seen && now.Sub(prev) < keyRepeatWindow {
				e.logger.Debug("Dropping repeated media key", zap.String("key", string(key)))
				continue
			}
			lastPress[key] = now
			e.handleKey(key)
		}
	}
}

func (e *Engine) handleKey(key domain.MediaKey) {
	switch key {
	case domain.KeyPlay, domain.KeyPause:
		n := e.PauseAll()
		e.logger.Info("Media key toggled pause", zap.String("key", string(key)), zap.Int("sessions", n))
	case domain.KeyStop:
		n := e.CloseAll(domain.ContentTypeAny)
		e.logger.Info("Media key closed all sessions", zap.Int("sessions", n))
	default:
		e.logger.Debug("Ignoring media key", zap.String("key", string(key)))
	}
}

// OpenSession opens a window for content. saved, when present, is a layout
// snapshot restored over the configured defaults.
func (e *Engine) OpenSession(ctx context.Context, content domain.ContentRef, saved mo.Option[domain.WindowSettings]) (*controller.Controller, error) {
	if e.isStopped() {
		return nil, ErrStopped
	}

	settings := e.cfg.GetDefaultSettings()
	if s, ok := saved.Get(); ok {
		settings = layout.Restore(settings, s)
	}

	id := e.sessions.NextID()
	backend, err := e.backends.NewBackend(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("create backend for session %d: %w", id, err)
	}

	c := controller.New(controller.Params{
		SessionID: id,
		Content:   content,
		Settings:  settings,
		Backend:   backend,
		Bus:       e.bus,
		Resolver:  e.resolver,
		Layouts:   e.layouts,
		Screen:    e.screen,
		Config:    e.cfg,
		Logger:    e.logger,
		OnClosed:  e.sessionClosed,
	})
	if err := e.register(c); err != nil {
		_ = c.Close()
		return nil, err
	}

	if err := c.Open(ctx); err != nil {
		return nil, fmt.Errorf("open session %d: %w", id, err)
	}
	return c, nil
}

func (e *Engine) register(c *controller.Controller) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	if err := e.sessions.Register(c); err != nil {
		return err
	}
	select {
	case <-e.drained:
		e.drained = make(chan struct{})
	default:
	}
	return nil
}

// sessionClosed drops a closed controller from the registry
func (e *Engine) sessionClosed(id int64, cause error) {
	if cause != nil {
		e.logger.Warn("Session closed during initialization", zap.Int64("session", id), zap.Error(cause))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions.Unregister(id) && e.sessions.Len() == 0 {
		select {
		case <-e.drained:
		default:
			close(e.drained)
		}
	}
}

func (e *Engine) isStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// Session returns the controller of an open session
func (e *Engine) Session(id int64) (*controller.Controller, error) {
	c, ok := e.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSession, id)
	}
	return c, nil
}

// Sessions returns the open sessions ordered by id
func (e *Engine) Sessions() []*controller.Controller {
	return e.sessions.All()
}

// PauseAll toggles pause on every session
func (e *Engine) PauseAll() int {
	return e.bus.PauseAll.Publish(bus.PauseAll{})
}

// CloseAll closes the sessions of contentType, or every session for domain.ContentTypeAny
func (e *Engine) CloseAll(contentType domain.ContentType) int {
	return e.bus.CloseAll.Publish(bus.CloseAll{ContentType: contentType})
}

// MuteAllExcept keeps the audio of session id and mutes the others
func (e *Engine) MuteAllExcept(id int64) (int, error) {
	c, err := e.Session(id)
	if err != nil {
		return 0, err
	}
	return c.MuteAllExcept(), nil
}

// Sync aligns every session sharing the sync key of session id to its position
func (e *Engine) Sync(id int64) (int, error) {
	c, err := e.Session(id)
	if err != nil {
		return 0, err
	}
	return c.Sync(), nil
}

// ToggleFullScreen asks session id to toggle full screen
func (e *Engine) ToggleFullScreen(id int64) error {
	if _, err := e.Session(id); err != nil {
		return err
	}
	e.bus.ToggleFullScreen.Publish(bus.ToggleFullScreen{SessionID: id})
	return nil
}

// SaveLayout replaces the stored layout of contentType with a snapshot of
// every open window of that type. It returns the number of windows saved.
func (e *Engine) SaveLayout(ctx context.Context, contentType domain.ContentType) (int, error) {
	if e.layouts == nil {
		return 0, errors.New("no layout store configured")
	}
	var (
		mu        sync.Mutex
		snapshots []domain.LayoutSnapshot
	)
	e.bus.SaveLayout.Publish(bus.SaveLayout{
		ContentType: contentType,
		Collect: func(s domain.LayoutSnapshot) {
			mu.Lock()
			snapshots = append(snapshots, s)
			mu.Unlock()
		},
	})

	// The previous layout survives a failed write
	if err := e.layouts.Replace(ctx, contentType, snapshots); err != nil {
		return 0, fmt.Errorf("save layout: %w", err)
	}
	e.logger.Info("Layout saved", zap.String("contentType", string(contentType)), zap.Int("windows", len(snapshots)))
	return len(snapshots), nil
}

// RestoreLayout reopens the windows stored for contentType. Each snapshot is
// matched to the content whose Name equals the saved channel name; snapshots
// without a match are skipped. Windows that fail to open do not stop the others.
func (e *Engine) RestoreLayout(ctx context.Context, contentType domain.ContentType, contents []domain.ContentRef) ([]*controller.Controller, error) {
	if e.layouts == nil {
		return nil, errors.New("no layout store configured")
	}
	snapshots, err := e.layouts.Load(ctx, contentType)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}

	var (
		opened []*controller.Controller
		errs   error
	)
	for _, snap := range snapshots {
		content, ok := lo.Find(contents, func(c domain.ContentRef) bool {
			return c.Name == snap.Settings.ChannelName
		})
		if !ok {
			e.logger.Warn("No content for saved window", zap.String("channel", snap.Settings.ChannelName))
			continue
		}
		c, err := e.OpenSession(ctx, content, mo.Some(snap.Settings))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		opened = append(opened, c)
	}

	e.logger.Info("Layout restored",
		zap.String("contentType", string(contentType)),
		zap.Int("saved", len(snapshots)),
		zap.Int("opened", len(opened)))
	return opened, errs
}

// Wait blocks until no session is open or ctx is done
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	drained := e.drained
	e.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes every session in parallel, releases the media keys and waits
// for the loop to exit
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	e.mu.Lock()
	e.stopped = true
	cancel := e.cancel
	done := e.loopDone
	e.mu.Unlock()

	open := e.sessions.All()
	closeErrs := make([]error, len(open))
	var g errgroup.Group
	for i, c := range open {
		g.Go(func() error {
			closeErrs[i] = c.Close()
			return nil
		})
	}
	_ = g.Wait()
	err := multierr.Combine(closeErrs...)

	if e.keys != nil && cancel != nil {
		err = multierr.Append(err, e.keys.Stop())
	}
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			err = multierr.Append(err, ctx.Err())
		}
	}

	if err != nil {
		e.logger.Error("Engine stopped with errors", zap.Int("sessions", len(open)), zap.Error(err))
		return err
	}
	e.logger.Info("Engine stopped", zap.Int("sessions", len(open)))
	return nil
}
