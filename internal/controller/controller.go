// Package controller ties one window to the control bus.
//
// A Controller owns a player session, translates inbound broadcasts into
// commands on that session only, and turns local user intents into
// broadcasts. It never reaches into another session.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genricoloni/multiview/internal/bus"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/layout"
	"github.com/genricoloni/multiview/internal/player"
	"github.com/samber/mo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultWheelStep is the wheel delta that maps to one volume unit
	DefaultWheelStep = 12

	saveTimeout = 5 * time.Second
)

var (
	// ErrClosed is returned when opening a controller that was already closed
	ErrClosed = errors.New("controller closed")
	// ErrAlreadyOpen is returned when Open is called twice
	ErrAlreadyOpen = errors.New("controller already open")
	// ErrFullScreen is returned for window moves while the window is full screen
	ErrFullScreen = errors.New("window is full screen")
)

// Screen gives the working area of the display holding a window
type Screen interface {
	WorkArea(window layout.Rect) layout.Rect
}

// ClosedFunc is told when a controller closed. cause is the initialization
// error when the session never reached playback, nil for a normal close.
type ClosedFunc func(sessionID int64, cause error)

// Params are the collaborators of a Controller
type Params struct {
	SessionID int64
	Content   domain.ContentRef
	Settings  domain.WindowSettings
	Backend   domain.Backend
	Bus       *bus.Bus
	Resolver  domain.StreamResolver
	Layouts   domain.LayoutStore
	Screen    Screen
	Config    domain.Config
	Logger    *zap.Logger

	OnClosed   ClosedFunc
	OnControls func(Visibility)
}

// Controller drives one session window
type Controller struct {
	identity   domain.Identity
	content    domain.ContentRef
	bus        *bus.Bus
	resolver   domain.StreamResolver
	layouts    domain.LayoutStore
	screen     Screen
	cfg        domain.Config
	logger     *zap.Logger
	session    *player.Session
	onClosed   ClosedFunc
	onControls func(Visibility)

	mu       sync.RWMutex
	settings domain.WindowSettings
	subs     []*bus.Subscription
	idle     *IdleControls
	opened   bool
	failure  error

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a controller and its player session. Nothing is opened until Open.
func New(p Params) *Controller {
	logger := p.Logger.With(zap.Int64("session", p.SessionID))
	c := &Controller{
		identity: domain.Identity{
			SessionID:   p.SessionID,
			SyncUID:     p.Content.SyncUID,
			ContentType: p.Content.Type,
		},
		content:    p.Content,
		bus:        p.Bus,
		resolver:   p.Resolver,
		layouts:    p.Layouts,
		screen:     p.Screen,
		cfg:        p.Config,
		logger:     logger,
		onClosed:   p.OnClosed,
		onControls: p.OnControls,
		settings:   p.Settings,
	}
	c.settings.ChannelName = p.Content.Name
	c.session = player.New(p.SessionID, p.Content, p.Backend, p.Logger, player.WithObserver(c.observe))
	return c
}

// Identity returns the routing key of this controller
func (c *Controller) Identity() domain.Identity {
	return c.identity
}

// ID returns the session id
func (c *Controller) ID() int64 {
	return c.identity.SessionID
}

// Content returns what the window plays
func (c *Controller) Content() domain.ContentRef {
	return c.content
}

// Session returns the player session for direct playback commands
func (c *Controller) Session() *player.Session {
	return c.session
}

// Title is the window title, "<id>. <title>"
func (c *Controller) Title() string {
	return fmt.Sprintf("%d. %s", c.identity.SessionID, c.content.Title)
}

// Closed reports whether Close ran
func (c *Controller) Closed() bool {
	return c.closed.Load()
}

// Open resolves the stream URL, starts playback, subscribes to the bus and
// arms the idle timer. ctx bounds the resolution only; playback runs until Close.
// On failure the controller closes itself and the error is an *player.InitError.
func (c *Controller) Open(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	if c.opened {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.opened = true
	settings := c.settings
	c.mu.Unlock()

	url, err := c.resolver.ResolveStreamURL(ctx, c.cfg.GetSubscriptionToken(), c.content)
	if err == nil && url == "" {
		err = errors.New("resolver returned an empty stream URL")
	}
	if err != nil {
		return c.fail(&player.InitError{SessionID: c.identity.SessionID, Stage: "resolve", Err: err})
	}

	err = c.session.StartPlayback(context.WithoutCancel(ctx), player.StartOptions{
		URL:         url,
		Quality:     settings.Quality,
		AudioDevice: settings.AudioDevice,
		StartMuted:  settings.IsMuted,
		Volume:      settings.Volume,
	})
	if err != nil {
		return c.fail(err)
	}

	c.subscribe()
	c.armIdle()

	c.logger.Info("Session opened",
		zap.String("title", c.content.Title),
		zap.String("syncUID", c.identity.SyncUID),
		zap.String("contentType", string(c.identity.ContentType)))
	return nil
}

func (c *Controller) subscribe() {
	self := c.identity

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return
	}
	c.subs = append(c.subs,
		c.bus.SyncTime.SubscribeWhen(c.onSyncTime, func(p bus.SyncTime) bool {
			return self.SyncUID != "" && p.SyncUID == self.SyncUID && p.Origin != self.SessionID
		}),
		c.bus.PauseAll.Subscribe(c.onPauseAll),
		c.bus.MuteAllExcept.Subscribe(c.onMuteAllExcept),
		c.bus.CloseAll.SubscribeWhen(c.onCloseAll, func(p bus.CloseAll) bool {
			return self.MatchesContentType(p.ContentType)
		}),
		c.bus.SaveLayout.SubscribeWhen(c.onSaveLayout, func(p bus.SaveLayout) bool {
			return p.ContentType == self.ContentType
		}),
		c.bus.ToggleFullScreen.SubscribeWhen(c.onToggleFullScreen, func(p bus.ToggleFullScreen) bool {
			return p.SessionID == self.SessionID
		}),
	)
}

func (c *Controller) armIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() || c.idle != nil {
		return
	}
	c.idle = NewIdleControls(c.cfg.GetIdleTimeout(), c.onControls)
}

// observe receives session changes; an initialization failure or a backend
// that went away closes the window
func (c *Controller) observe(ch player.Change) {
	switch {
	case ch.Err != nil:
		_ = c.fail(ch.Err)
	case ch.Ended:
		c.logger.Info("Player ended, closing session")
		_ = c.Close()
	}
}

// fail records the first initialization error and closes the controller
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	if c.failure == nil {
		c.failure = err
	}
	c.mu.Unlock()

	c.logger.Error("Session failed to initialize", zap.Error(err))
	if cerr := c.Close(); cerr != nil {
		c.logger.Warn("Cleanup after failed initialization reported errors", zap.Error(cerr))
	}
	return err
}

// Close stops the idle timer, drops every subscription and disposes the
// session. Every step runs even when an earlier one fails. Later calls
// return the first call's result.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		c.mu.Lock()
		subs := c.subs
		c.subs = nil
		idle := c.idle
		failure := c.failure
		c.mu.Unlock()

		c.closeErr = multierr.Combine(
			step("stop idle timer", func() error {
				if idle != nil {
					idle.Stop()
				}
				return nil
			}),
			step("unsubscribe", func() error {
				for _, s := range subs {
					s.Unsubscribe()
				}
				return nil
			}),
			step("dispose session", c.session.Dispose),
		)

		if c.closeErr != nil {
			c.logger.Warn("Session closed with errors", zap.Error(c.closeErr))
		} else {
			c.logger.Info("Session closed")
		}
		if c.onClosed != nil {
			c.onClosed(c.identity.SessionID, failure)
		}
	})
	return c.closeErr
}

// step runs one cleanup step, turning a panic into an error
func step(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Inbound handlers

func (c *Controller) onSyncTime(p bus.SyncTime) error {
	return c.session.SyncTo(p.Time)
}

func (c *Controller) onPauseAll(bus.PauseAll) error {
	return c.session.TogglePause()
}

func (c *Controller) onMuteAllExcept(p bus.MuteAllExcept) error {
	return c.session.ToggleMute(mo.Some(p.SessionID != c.identity.SessionID))
}

func (c *Controller) onCloseAll(bus.CloseAll) error {
	return c.Close()
}

func (c *Controller) onSaveLayout(p bus.SaveLayout) error {
	snapshot := domain.LayoutSnapshot{
		ContentType: p.ContentType,
		Settings:    c.Settings(),
		SavedAt:     time.Now(),
	}
	if p.Collect != nil {
		p.Collect(snapshot)
		return nil
	}
	if c.layouts == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return c.layouts.Append(ctx, snapshot)
}

func (c *Controller) onToggleFullScreen(bus.ToggleFullScreen) error {
	if c.toggleWindowState() == domain.WindowMaximized {
		c.bus.MuteAllExcept.Publish(bus.MuteAllExcept{SessionID: c.identity.SessionID})
	}
	return nil
}

// Outbound commands

// Sync publishes this session's position to every session sharing its sync key
func (c *Controller) Sync() int {
	if c.closed.Load() {
		return 0
	}
	pos := c.session.State().Time
	c.logger.Info("Syncing streams",
		zap.String("syncUID", c.identity.SyncUID),
		zap.Duration("time", pos))
	return c.bus.SyncTime.Publish(bus.SyncTime{
		SyncUID: c.identity.SyncUID,
		Time:    pos,
		Origin:  c.identity.SessionID,
	})
}

// PauseAll toggles pause on every session, this one included
func (c *Controller) PauseAll() int {
	return c.bus.PauseAll.Publish(bus.PauseAll{})
}

// MuteAllExcept keeps this session's audio and mutes every other one
func (c *Controller) MuteAllExcept() int {
	return c.bus.MuteAllExcept.Publish(bus.MuteAllExcept{SessionID: c.identity.SessionID})
}

// CloseAll closes every session of contentType, or all with domain.ContentTypeAny
func (c *Controller) CloseAll(contentType domain.ContentType) int {
	return c.bus.CloseAll.Publish(bus.CloseAll{ContentType: contentType})
}

// ToggleFullScreen flips this window silently when target is empty. A target,
// this session included, is asked over the bus, and entering full screen
// there mutes every other session.
func (c *Controller) ToggleFullScreen(target mo.Option[int64]) {
	id, ok := target.Get()
	if !ok {
		c.toggleWindowState()
		return
	}
	c.bus.ToggleFullScreen.Publish(bus.ToggleFullScreen{SessionID: id})
}

// Window state

// Settings returns the window settings with the live playback preferences
func (c *Controller) Settings() domain.WindowSettings {
	c.mu.RLock()
	s := c.settings
	c.mu.RUnlock()

	st := c.session.State()
	if st.AudioInitialized {
		s.IsMuted = st.IsMuted
		s.Volume = st.Volume
		s.AudioDevice = st.AudioDevice
	}
	return s
}

func (c *Controller) toggleWindowState() domain.WindowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings.WindowState != domain.WindowMaximized {
		c.logger.Info("Changing to fullscreen mode")
		c.settings.ResizeMode = domain.ResizeNoResize
		c.settings.WindowState = domain.WindowMaximized
	} else {
		c.logger.Info("Changing to windowed mode")
		c.settings.WindowState = domain.WindowNormal
	}
	return c.settings.WindowState
}

// SetBounds records where the window is after the user moved or resized it
func (c *Controller) SetBounds(r layout.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Left, c.settings.Top = r.Left, r.Top
	c.settings.Width, c.settings.Height = r.Width, r.Height
}

// SetTopmost keeps the window above the others
func (c *Controller) SetTopmost(topmost bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Topmost = topmost
}

// MoveToCorner snaps the window to a corner or edge of its display
func (c *Controller) MoveToCorner(loc layout.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings.WindowState == domain.WindowMaximized {
		return ErrFullScreen
	}

	area := c.screen.WorkArea(layout.Bounds(c.settings))
	r := layout.Place(loc, area)
	c.settings.ResizeMode = domain.ResizeNoResize
	c.settings.Left, c.settings.Top = r.Left, r.Top
	c.settings.Width, c.settings.Height = r.Width, r.Height

	c.logger.Debug("Moved window", zap.Stringer("location", loc))
	return nil
}

// SetVideoQuality remembers tier for layout snapshots and switches the video rendition
func (c *Controller) SetVideoQuality(tier domain.QualityTier) error {
	c.mu.Lock()
	c.settings.Quality = tier
	c.mu.Unlock()
	return c.session.SetVideoQuality(tier)
}

// Pointer input

// MouseWheel changes the volume by delta divided by the wheel step. Over the
// video it also counts as pointer activity.
func (c *Controller) MouseWheel(delta int, overControlBar bool) error {
	wheelStep := c.cfg.GetWheelStep()
	if wheelStep <= 0 {
		wheelStep = DefaultWheelStep
	}
	err := c.session.AdjustVolume(delta / wheelStep)
	if !overControlBar {
		c.PointerActivity()
	}
	return err
}

// DoubleClick on the video toggles this window's full screen
func (c *Controller) DoubleClick() {
	c.ToggleFullScreen(mo.None[int64]())
}

func (c *Controller) idleControls() *IdleControls {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idle
}

// PointerActivity shows the controls and restarts the idle countdown
func (c *Controller) PointerActivity() {
	if idle := c.idleControls(); idle != nil {
		idle.PointerActivity()
	}
}

// EnterControlBar stops the idle countdown
func (c *Controller) EnterControlBar() {
	if idle := c.idleControls(); idle != nil {
		idle.EnterControlBar()
	}
}

// LeaveControlBar restarts the idle countdown
func (c *Controller) LeaveControlBar() {
	if idle := c.idleControls(); idle != nil {
		idle.LeaveControlBar()
	}
}

// PointerOverControlBar restores the cursor
func (c *Controller) PointerOverControlBar() {
	if idle := c.idleControls(); idle != nil {
		idle.PointerOverControlBar()
	}
}

// Controls returns the controls visibility
func (c *Controller) Controls() Visibility {
	if idle := c.idleControls(); idle != nil {
		return idle.Visibility()
	}
	return ControlsVisible
}
