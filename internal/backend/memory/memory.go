// Package memory is a simulated media backend. It decodes nothing: every
// command immediately produces the notification a real player would send.
// It backs headless runs and the tests of the playback packages.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

const eventBufferSize = 256

// ErrClosed is returned by commands issued after Close
var ErrClosed = errors.New("backend closed")

// Media describes what an opened URL offers
type Media struct {
	Duration     time.Duration
	VideoStreams []domain.VideoStream
	AudioStreams []domain.AudioStream
}

// DefaultMedia is served for URLs without a registered Media
func DefaultMedia() Media {
	return Media{
		Duration: 2 * time.Hour,
		VideoStreams: []domain.VideoStream{
			{ID: "1080p", Height: 1080},
			{ID: "720p", Height: 720},
			{ID: "480p", Height: 480},
			{ID: "360p", Height: 360},
		},
		AudioStreams: []domain.AudioStream{
			{ID: "eng", Language: "en", Title: "English"},
			{ID: "fx", Language: "und", Title: "Onboard sound"},
		},
	}
}

// Backend is an in-memory domain.Backend
type Backend struct {
	logger *zap.Logger

	mu         sync.Mutex
	catalog    map[string]Media
	failing    map[string]error
	devices    []domain.AudioDevice
	device     string
	media      Media
	video      *domain.VideoStream
	audio      *domain.AudioStream
	status     domain.PlayerStatus
	position   time.Duration
	volume     int
	mute       bool
	calls      []string
	closeCalls int
	closed     bool
	events     chan domain.BackendEvent
	dropped    int
}

// New creates a backend with two audio devices and the first one selected
func New(logger *zap.Logger) *Backend {
	return &Backend{
		logger:  logger,
		catalog: make(map[string]Media),
		failing: make(map[string]error),
		devices: []domain.AudioDevice{
			{ID: "default", Name: "Default output"},
			{ID: "hdmi", Name: "HDMI"},
		},
		device: "default",
		status: domain.StatusStopped,
		volume: 100,
		events: make(chan domain.BackendEvent, eventBufferSize),
	}
}

// Register makes Open(url) serve media
func (b *Backend) Register(url string, media Media) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.catalog[url] = media
}

// FailOpen makes Open(url) report a failed video open with err
func (b *Backend) FailOpen(url string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[url] = err
}

// SetDevices replaces the audio device list and notifies the session
func (b *Backend) SetDevices(devices []domain.AudioDevice) {
	b.mu.Lock()
	b.devices = slices.Clone(devices)
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventDeviceListChanged})
}

// Inject delivers an arbitrary notification, as a misbehaving backend would
func (b *Backend) Inject(ev domain.BackendEvent) {
	b.emit(ev)
}

func (b *Backend) record(call string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Calls returns the commands received so far, in order
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// CloseCalls returns how many times Close was called
func (b *Backend) CloseCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeCalls
}

// Position returns the simulated playback position
func (b *Backend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.position
}

// Status returns the simulated playback status
func (b *Backend) Status() domain.PlayerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Backend) emit(ev domain.BackendEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
		b.dropped++
		b.logger.Warn("Backend event buffer full, dropping notification",
			zap.Stringer("event", ev.Kind),
			zap.Int("dropped", b.dropped))
	}
}

func (b *Backend) Open(url string) error {
	if err := b.record("open " + url); err != nil {
		return err
	}

	b.mu.Lock()
	if err, ok := b.failing[url]; ok {
		b.mu.Unlock()
		b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaVideo, Err: err})
		return nil
	}
	media, ok := b.catalog[url]
	if !ok {
		media = DefaultMedia()
	}
	b.media = media
	b.position = 0
	b.status = domain.StatusOpening
	b.video, b.audio = nil, nil
	if len(media.VideoStreams) > 0 {
		top := slices.MaxFunc(media.VideoStreams, func(x, y domain.VideoStream) int { return x.Height - y.Height })
		b.video = &top
	}
	if len(media.AudioStreams) > 0 {
		first := media.AudioStreams[0]
		b.audio = &first
	}
	hasAudio := b.audio != nil
	b.mu.Unlock()

	b.emit(domain.BackendEvent{Kind: domain.EventStatusChanged, Status: domain.StatusOpening})
	b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaVideo, Success: true})
	if hasAudio {
		b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaAudio, Success: true})
	}
	return nil
}

func (b *Backend) OpenVideoStream(stream domain.VideoStream) error {
	if err := b.record("open-video " + stream.ID); err != nil {
		return err
	}
	b.mu.Lock()
	if !slices.Contains(b.media.VideoStreams, stream) {
		b.mu.Unlock()
		return fmt.Errorf("unknown video stream %q", stream.ID)
	}
	b.video = &stream
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaVideo, Success: true})
	return nil
}

func (b *Backend) OpenAudioStream(stream domain.AudioStream) error {
	if err := b.record("open-audio " + stream.ID); err != nil {
		return err
	}
	b.mu.Lock()
	if !slices.Contains(b.media.AudioStreams, stream) {
		b.mu.Unlock()
		return fmt.Errorf("unknown audio stream %q", stream.ID)
	}
	b.audio = &stream
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaAudio, Success: true})
	return nil
}

func (b *Backend) setStatus(call string, status domain.PlayerStatus) error {
	if err := b.record(call); err != nil {
		return err
	}
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventStatusChanged, Status: status})
	return nil
}

func (b *Backend) Play() error  { return b.setStatus("play", domain.StatusPlaying) }
func (b *Backend) Pause() error { return b.setStatus("pause", domain.StatusPaused) }
func (b *Backend) Stop() error  { return b.setStatus("stop", domain.StatusStopped) }

func (b *Backend) Seek(pos time.Duration) error {
	if err := b.record(fmt.Sprintf("seek %d", pos)); err != nil {
		return err
	}
	b.mu.Lock()
	b.position = pos
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventTimeChanged, Time: pos})
	return nil
}

func (b *Backend) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.media.Duration
}

func (b *Backend) SetVolume(volume int) error {
	if err := b.record(fmt.Sprintf("volume %d", volume)); err != nil {
		return err
	}
	b.mu.Lock()
	b.volume = volume
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventVolumeChanged, Volume: volume})
	return nil
}

func (b *Backend) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *Backend) SetMute(mute bool) error {
	if err := b.record(fmt.Sprintf("mute %t", mute)); err != nil {
		return err
	}
	b.mu.Lock()
	b.mute = mute
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventMuteChanged, Mute: mute})
	return nil
}

func (b *Backend) Mute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mute
}

func (b *Backend) SetAudioDevice(id string) error {
	if err := b.record("device " + id); err != nil {
		return err
	}
	b.mu.Lock()
	b.device = id
	b.mu.Unlock()
	b.emit(domain.BackendEvent{Kind: domain.EventDeviceChanged, Device: id})
	return nil
}

func (b *Backend) AudioDevice() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.device
}

func (b *Backend) VideoStreams() []domain.VideoStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.media.VideoStreams)
}

func (b *Backend) AudioStreams() []domain.AudioStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.media.AudioStreams)
}

func (b *Backend) AudioDevices() []domain.AudioDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.devices)
}

func (b *Backend) CurrentVideoStream() (domain.VideoStream, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.video == nil {
		return domain.VideoStream{}, false
	}
	return *b.video, true
}

func (b *Backend) CurrentAudioStream() (domain.AudioStream, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.audio == nil {
		return domain.AudioStream{}, false
	}
	return *b.audio, true
}

func (b *Backend) Events() <-chan domain.BackendEvent {
	return b.events
}

// Close closes the event channel. Later calls only count.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeCalls++
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.events)
	return nil
}

// Factory creates memory backends
type Factory struct {
	logger *zap.Logger

	mu       sync.Mutex
	backends map[int64]*Backend
}

// NewFactory creates a memory backend factory
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger, backends: make(map[int64]*Backend)}
}

// NewBackend satisfies domain.BackendFactory
func (f *Factory) NewBackend(_ context.Context, sessionID int64) (domain.Backend, error) {
	b := New(f.logger.With(zap.Int64("session", sessionID)))
	f.mu.Lock()
	f.backends[sessionID] = b
	f.mu.Unlock()
	return b, nil
}

// Backend returns the backend created for a session
func (f *Factory) Backend(sessionID int64) (*Backend, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.backends[sessionID]
	return b, ok
}
