// Package player drives one media backend per window.
//
// A Session owns the observable PlaybackState. The state only changes in
// response to backend notifications; commands talk to the backend and wait
// for it to report back, so the mirror never drifts from what the backend
// actually accepted.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/logutil"
	"github.com/genricoloni/multiview/internal/quality"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StartOptions are the parameters of StartPlayback
type StartOptions struct {
	URL         string
	Quality     domain.QualityTier
	AudioDevice string
	StartMuted  bool
	Volume      int
}

// Change is emitted to the observer after every applied notification
type Change struct {
	SessionID int64
	Event     domain.BackendEventKind
	State     domain.PlaybackState
	// Err is set to an *InitError when the session failed to initialize
	Err error
	// Ended is set when the backend went away on its own, e.g. its window was closed
	Ended bool
}

// Observer receives session changes. It is called without any session lock held.
type Observer func(Change)

// Option configures a Session
type Option func(*Session)

// WithObserver installs the change observer
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observer = fn }
}

// Session wraps one backend and mirrors its state
type Session struct {
	id       int64
	content  domain.ContentRef
	backend  domain.Backend
	logger   *zap.Logger
	warn     *logutil.Throttled
	observer Observer

	mu          sync.RWMutex
	state       domain.PlaybackState
	phase       Phase
	start       StartOptions
	statusKnown bool // set once the backend reported Playing or Paused

	ended       atomic.Bool // the backend closed its notifications
	disposed    atomic.Bool
	disposeOnce sync.Once
	cancel      context.CancelFunc
}

// New creates a session around backend. Nothing is opened until StartPlayback.
func New(id int64, content domain.ContentRef, backend domain.Backend, logger *zap.Logger, opts ...Option) *Session {
	l := logger.With(zap.Int64("session", id))
	s := &Session{
		id:      id,
		content: content,
		backend: backend,
		logger:  l,
		warn:    logutil.NewThrottled(l, logutil.DefaultWarningInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id
func (s *Session) ID() int64 {
	return s.id
}

// Content returns what the session is playing
func (s *Session) Content() domain.ContentRef {
	return s.content
}

// State returns a snapshot of the playback state
func (s *Session) State() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.state)
}

// Phase returns the lifecycle phase
func (s *Session) Phase() Phase {
	if s.disposed.Load() {
		return PhaseDisposed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// CanSeek reports whether seeking is allowed for this content
func (s *Session) CanSeek() bool {
	return !s.content.IsLive && !s.disposed.Load()
}

// StartPlayback opens the backend on opts.URL and starts consuming its notifications.
// Video and audio are configured on their first successful open-completed notification.
func (s *Session) StartPlayback(ctx context.Context, opts StartOptions) error {
	if s.disposed.Load() {
		return ErrDisposed
	}

	s.mu.Lock()
	if s.phase != PhaseUninitialized {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.phase = PhaseOpening
	s.start = opts
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	if opts.URL == "" {
		return s.fail("open", errors.New("empty stream URL"))
	}

	go s.run(loopCtx)

	s.logger.Info("Opening stream",
		zap.String("title", s.content.Title),
		zap.Stringer("quality", opts.Quality))

	if err := s.backend.Open(opts.URL); err != nil {
		return s.fail("open", err)
	}
	return nil
}

// run consumes backend notifications until the backend closes its channel or ctx ends
func (s *Session) run(ctx context.Context) {
	events := s.backend.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				s.backendEnded()
				return
			}
			s.handleEvent(ev)
		}
	}
}

// handleEvent applies one backend notification. Panics are contained so a
// misbehaving backend cannot take the session down.
func (s *Session) handleEvent(ev domain.BackendEvent) {
	if s.disposed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.warn.Warn("Backend notification handling panicked",
				zap.Stringer("event", ev.Kind),
				zap.Any("panic", r))
		}
	}()

	switch ev.Kind {
	case domain.EventOpenCompleted:
		s.handleOpenCompleted(ev)
		return
	case domain.EventDeviceListChanged:
		devices := s.backend.AudioDevices()
		s.mu.Lock()
		s.state = withAudioLists(s.state, devices, s.state.AudioTracks)
		s.mu.Unlock()
	default:
		s.mu.Lock()
		next, ok := Reduce(s.state, ev)
		if !ok {
			s.mu.Unlock()
			s.warn.Warn("Ignoring unknown backend notification", zap.Int("kind", int(ev.Kind)))
			return
		}
		s.state = next
		if ev.Kind == domain.EventStatusChanged {
			s.applyStatusLocked(ev.Status)
		}
		failed := ev.Kind == domain.EventStatusChanged && ev.Status == domain.StatusFailed && s.phase == PhaseOpening
		s.mu.Unlock()

		if failed {
			_ = s.fail("status", errors.New("backend reported failure while opening"))
			return
		}
	}

	s.notify(ev.Kind, nil)
}

// backendEnded handles a backend that closed its notifications before Dispose
func (s *Session) backendEnded() {
	if s.disposed.Load() {
		return
	}
	s.ended.Store(true)
	s.mu.RLock()
	opening := s.phase == PhaseOpening
	s.mu.RUnlock()

	if opening {
		_ = s.fail("backend", errors.New("backend exited before playback started"))
		return
	}
	s.logger.Info("Backend ended")
	if s.observer != nil {
		s.observer(Change{SessionID: s.id, State: s.State(), Ended: true})
	}
}

func (s *Session) applyStatusLocked(status domain.PlayerStatus) {
	if status != domain.StatusPlaying && status != domain.StatusPaused {
		return
	}
	s.statusKnown = true
	if s.phase == PhaseOpening {
		s.phase = PhaseReady
	}
}

func (s *Session) handleOpenCompleted(ev domain.BackendEvent) {
	if !ev.Success {
		s.mu.RLock()
		initializing := s.phase == PhaseOpening && !s.state.VideoInitialized
		s.mu.RUnlock()

		if ev.Media == domain.MediaVideo && initializing {
			cause := ev.Err
			if cause == nil {
				cause = errors.New("video open failed")
			}
			_ = s.fail("video", cause)
			return
		}
		s.warn.Warn("Backend open failed",
			zap.String("media", string(ev.Media)),
			zap.Error(ev.Err))
		return
	}

	switch ev.Media {
	case domain.MediaVideo:
		s.onVideoReady()
	case domain.MediaAudio:
		s.onAudioReady()
	default:
		s.warn.Warn("Open completed for unknown media type", zap.String("media", string(ev.Media)))
		return
	}
	s.notify(domain.EventOpenCompleted, nil)
}

func (s *Session) onVideoReady() {
	duration := s.backend.Duration()

	s.mu.Lock()
	first := !s.state.VideoInitialized
	if first {
		s.state.VideoInitialized = true
		s.state.Duration = duration
	}
	tier := s.start.Quality
	s.mu.Unlock()

	if first {
		s.logger.Info("Video initialized", zap.Duration("duration", duration))
		if tier != domain.QualityHigh {
			if err := s.SetVideoQuality(tier); err != nil {
				s.logger.Warn("Failed to apply start quality", zap.Error(err))
			}
		}
	}

	if cur, ok := s.backend.CurrentVideoStream(); ok {
		s.mu.Lock()
		s.state.VideoStreamID = cur.ID
		s.mu.Unlock()
	}

	if err := s.backend.Play(); err != nil {
		s.logger.Warn("Failed to start playback", zap.Error(err))
	}
}

func (s *Session) onAudioReady() {
	s.mu.Lock()
	first := !s.state.AudioInitialized
	if first {
		s.state.AudioInitialized = true
	}
	start := s.start
	s.mu.Unlock()

	if first {
		s.initializeAudio(start)
	}

	if cur, ok := s.backend.CurrentAudioStream(); ok {
		s.mu.Lock()
		if lo.ContainsBy(s.state.AudioTracks, func(t domain.AudioStream) bool { return t.ID == cur.ID }) {
			s.state.AudioTrack = cur.ID
		}
		s.mu.Unlock()
	}
}

func (s *Session) initializeAudio(start StartOptions) {
	devices := s.backend.AudioDevices()
	tracks := s.backend.AudioStreams()

	s.mu.Lock()
	s.state = withAudioLists(s.state, devices, tracks)
	s.mu.Unlock()

	if err := s.SetVolume(start.Volume); err != nil {
		s.logger.Warn("Failed to apply start volume", zap.Error(err))
	}
	if err := s.ToggleMute(mo.Some(start.StartMuted)); err != nil {
		s.logger.Warn("Failed to apply start mute", zap.Error(err))
	}

	hasDevice := func(id string) bool {
		return lo.ContainsBy(devices, func(d domain.AudioDevice) bool { return d.ID == id })
	}

	// The preferred device when it is available, else whatever the backend uses
	selected := false
	if start.AudioDevice != "" {
		if !hasDevice(start.AudioDevice) {
			s.logger.Info("Preferred audio device not available", zap.String("device", start.AudioDevice))
		} else if err := s.SelectAudioDevice(start.AudioDevice); err != nil {
			s.logger.Warn("Failed to select preferred audio device", zap.Error(err))
		} else {
			selected = true
		}
	}
	if !selected {
		if current := s.backend.AudioDevice(); hasDevice(current) {
			s.mu.Lock()
			s.state.AudioDevice = current
			s.mu.Unlock()
		}
	}

	s.logger.Info("Audio initialized",
		zap.Int("devices", len(devices)),
		zap.Int("tracks", len(tracks)))
}

// fail moves an opening session to PhaseFailed and reports an InitError once
func (s *Session) fail(stage string, cause error) error {
	initErr := &InitError{SessionID: s.id, Stage: stage, Err: cause}

	s.mu.Lock()
	if s.phase != PhaseOpening {
		s.mu.Unlock()
		return initErr
	}
	s.phase = PhaseFailed
	s.mu.Unlock()

	s.logger.Error("Session initialization failed", zap.Error(initErr))
	s.notify(domain.EventOpenCompleted, initErr)
	return initErr
}

func (s *Session) notify(kind domain.BackendEventKind, err error) {
	if s.observer == nil {
		return
	}
	s.observer(Change{
		SessionID: s.id,
		Event:     kind,
		State:     s.State(),
		Err:       err,
	})
}

// stale reports whether a command arrived after dispose. Such commands are no-ops.
func (s *Session) stale(command string) bool {
	if !s.disposed.Load() {
		return false
	}
	s.logger.Debug("Ignoring command on disposed session", zap.String("command", command))
	return true
}

// SetVideoQuality re-opens video at the rendition matching tier.
// It is a no-op when that rendition is already open.
func (s *Session) SetVideoQuality(tier domain.QualityTier) error {
	if s.stale("set-video-quality") {
		return nil
	}
	target, ok := quality.Select(s.backend.VideoStreams(), tier)
	if !ok {
		return nil
	}
	if cur, ok := s.backend.CurrentVideoStream(); ok && cur.ID == target.ID {
		return nil
	}

	s.mu.Lock()
	s.start.Quality = tier
	s.mu.Unlock()

	s.logger.Info("Switching video quality",
		zap.Stringer("quality", tier),
		zap.Int("height", target.Height))
	if err := s.backend.OpenVideoStream(target); err != nil {
		return fmt.Errorf("open video stream %s: %w", target.ID, err)
	}
	return nil
}

// Seek moves to an absolute position, clamped at zero. Ignored for live content.
func (s *Session) Seek(pos time.Duration) error {
	if s.stale("seek") {
		return nil
	}
	if s.content.IsLive {
		s.logger.Debug("Ignoring seek on live content")
		return nil
	}
	if err := s.backend.Seek(max(pos, 0)); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// SyncTo moves to a position published by a sibling session. Unlike Seek it
// also applies to live content, whose buffered window can still be aligned.
func (s *Session) SyncTo(pos time.Duration) error {
	if s.stale("sync") {
		return nil
	}
	if err := s.backend.Seek(max(pos, 0)); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// SeekBy moves relative to the current position. Ignored for live content.
func (s *Session) SeekBy(delta time.Duration) error {
	s.mu.RLock()
	cur := s.state.Time
	s.mu.RUnlock()
	return s.Seek(cur + delta)
}

// SetVolume sets an absolute volume, clamped to [0, domain.MaxVolume]
func (s *Session) SetVolume(volume int) error {
	if s.stale("set-volume") {
		return nil
	}
	if err := s.backend.SetVolume(domain.ClampVolume(volume)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}

// AdjustVolume changes the volume by delta, clamped to [0, domain.MaxVolume]
func (s *Session) AdjustVolume(delta int) error {
	if s.stale("adjust-volume") {
		return nil
	}
	return s.SetVolume(s.backend.Volume() + delta)
}

// ToggleMute flips the backend mute flag. With an explicit target that already
// matches the backend it does nothing.
func (s *Session) ToggleMute(target mo.Option[bool]) error {
	if s.stale("toggle-mute") {
		return nil
	}
	current := s.backend.Mute()
	if want, ok := target.Get(); ok && want == current {
		return nil
	}
	if err := s.backend.SetMute(!current); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

// TogglePause pauses a playing session and resumes any other.
// Before the backend has reported Playing or Paused once it does nothing.
func (s *Session) TogglePause() error {
	if s.stale("toggle-pause") {
		return nil
	}
	s.mu.RLock()
	known, playing := s.statusKnown, s.state.IsPlaying
	s.mu.RUnlock()

	if !known {
		s.logger.Debug("Ignoring pause toggle before playback status is known")
		return nil
	}
	if playing {
		return s.backend.Pause()
	}
	return s.backend.Play()
}

// SelectAudioDevice routes audio to a known device. Unknown or already selected ids are ignored.
func (s *Session) SelectAudioDevice(id string) error {
	if s.stale("select-audio-device") {
		return nil
	}
	s.mu.RLock()
	known := lo.ContainsBy(s.state.AudioDevices, func(d domain.AudioDevice) bool { return d.ID == id })
	current := s.state.AudioDevice
	s.mu.RUnlock()

	if !known || id == current {
		return nil
	}
	if err := s.backend.SetAudioDevice(id); err != nil {
		return fmt.Errorf("set audio device: %w", err)
	}

	s.mu.Lock()
	s.state.AudioDevice = id
	s.mu.Unlock()
	return nil
}

// SelectAudioTrack re-opens the audio path on another track. Video is untouched.
func (s *Session) SelectAudioTrack(id string) error {
	if s.stale("select-audio-track") {
		return nil
	}
	track, ok := lo.Find(s.backend.AudioStreams(), func(t domain.AudioStream) bool { return t.ID == id })
	if !ok {
		return nil
	}
	if err := s.backend.OpenAudioStream(track); err != nil {
		return fmt.Errorf("open audio stream %s: %w", id, err)
	}
	return nil
}

// Stop stops playback without releasing the backend
func (s *Session) Stop() error {
	if s.stale("stop") {
		return nil
	}
	return s.backend.Stop()
}

// Dispose stops and releases the backend. Only the first call does anything.
func (s *Session) Dispose() error {
	var err error
	s.disposeOnce.Do(func() {
		s.disposed.Store(true)

		s.mu.Lock()
		cancel := s.cancel
		s.phase = PhaseDisposed
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		// An ended backend has nothing left to stop
		if !s.ended.Load() {
			err = s.backend.Stop()
		}
		err = multierr.Append(err, s.backend.Close())
		s.logger.Info("Session disposed")
	})
	return err
}
