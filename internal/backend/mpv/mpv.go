// Package mpv is a media backend driving one mpv process per session over
// mpv's JSON IPC socket.
package mpv

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/logutil"
	"go.uber.org/zap"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	eventBufferSize   = 256
	warnInterval      = 10 * time.Second
)

// Backend implements domain.Backend on top of a running mpv
type Backend struct {
	logger     *zap.Logger
	warn       *logutil.Throttled
	socketPath string
	cmd        *exec.Cmd // nil when attached to an mpv we did not start
	exited     chan struct{}
	cmdMu      sync.Mutex
	listener   *eventListener

	mu     sync.Mutex
	props  props
	closed bool
	events chan domain.BackendEvent

	closeOnce sync.Once
	closeErr  error
}

// Attach connects to an mpv already serving IPC on socketPath. Close leaves
// that process running.
func Attach(socketPath string, logger *zap.Logger) (*Backend, error) {
	return attach(socketPath, nil, nil, logger)
}

func attach(socketPath string, cmd *exec.Cmd, exited chan struct{}, logger *zap.Logger) (*Backend, error) {
	b := &Backend{
		logger:     logger,
		warn:       logutil.NewThrottled(logger, warnInterval),
		socketPath: socketPath,
		cmd:        cmd,
		exited:     exited,
		events:     make(chan domain.BackendEvent, eventBufferSize),
	}
	listener, err := startEventListener(socketPath, logger, b.handle)
	if err != nil {
		return nil, err
	}
	b.listener = listener

	go func() {
		<-listener.done
		b.endEvents("mpv connection closed")
	}()
	return b, nil
}

// endEvents closes the Events channel once
func (b *Backend) endEvents(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
	b.logger.Info("mpv backend ended", zap.String("reason", reason))
}

// handle runs on the listener goroutine for every mpv event
func (b *Backend) handle(ev mpvEvent) {
	if ev.Event == "file-loaded" {
		b.refresh()
	}

	b.mu.Lock()
	out, err := b.props.apply(ev)
	b.mu.Unlock()
	if err != nil {
		b.warn.Warn("Ignoring malformed mpv event",
			zap.String("event", ev.Event),
			zap.String("property", ev.Name),
			zap.Error(err))
		return
	}
	for _, e := range out {
		b.emit(e)
	}
}

// refresh reads the properties a newly loaded file is reported with.
// Their change notifications may still be in flight when file-loaded arrives.
func (b *Backend) refresh() {
	for _, name := range []string{"track-list", "duration", "audio-device-list", "audio-device", "volume", "mute"} {
		data, err := b.sendCommand("get_property", name)
		if err != nil {
			b.logger.Debug("Could not read mpv property", zap.String("property", name), zap.Error(err))
			continue
		}
		b.mu.Lock()
		_, err = b.props.applyProperty(name, data)
		b.mu.Unlock()
		if err != nil {
			b.warn.Warn("Ignoring malformed mpv property", zap.String("property", name), zap.Error(err))
		}
	}
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
		b.warn.Warn("Backend event buffer full, dropping notification", zap.Stringer("event", ev.Kind))
	}
}

func (b *Backend) setProperty(name string, value any) error {
	_, err := b.sendCommand("set_property", name, value)
	return err
}

// Open loads url, replacing whatever is playing
func (b *Backend) Open(rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	_, err = b.sendCommand("loadfile", target, "replace")
	return err
}

func (b *Backend) OpenVideoStream(stream domain.VideoStream) error {
	return b.selectTrack("vid", domain.MediaVideo, stream.ID)
}

func (b *Backend) OpenAudioStream(stream domain.AudioStream) error {
	return b.selectTrack("aid", domain.MediaAudio, stream.ID)
}

// selectTrack switches the vid or aid property and reports the open as completed
func (b *Backend) selectTrack(property string, media domain.MediaType, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s track id %q", media, id)
	}
	if err := b.setProperty(property, n); err != nil {
		return err
	}

	b.mu.Lock()
	if media == domain.MediaVideo {
		b.props.vid = id
	} else {
		b.props.aid = id
	}
	b.mu.Unlock()

	b.emit(domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: media, Success: true})
	return nil
}

func (b *Backend) Play() error  { return b.setProperty("pause", false) }
func (b *Backend) Pause() error { return b.setProperty("pause", true) }

func (b *Backend) Stop() error {
	_, err := b.sendCommand("stop")
	if errors.Is(err, ErrExited) {
		return nil
	}
	return err
}

// Seek moves playback to an absolute position
func (b *Backend) Seek(pos time.Duration) error {
	_, err := b.sendCommand("seek", pos.Seconds(), "absolute")
	return err
}

func (b *Backend) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.duration
}

func (b *Backend) SetVolume(volume int) error {
	return b.setProperty("volume", domain.ClampVolume(volume))
}

func (b *Backend) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.volume
}

func (b *Backend) SetMute(mute bool) error {
	return b.setProperty("mute", mute)
}

func (b *Backend) Mute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.mute
}

func (b *Backend) SetAudioDevice(id string) error {
	return b.setProperty("audio-device", id)
}

func (b *Backend) AudioDevice() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.device
}

func (b *Backend) VideoStreams() []domain.VideoStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.props.videos)
}

func (b *Backend) AudioStreams() []domain.AudioStream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.props.audios)
}

func (b *Backend) AudioDevices() []domain.AudioDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.props.devices)
}

func (b *Backend) CurrentVideoStream() (domain.VideoStream, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.currentVideo()
}

func (b *Backend) CurrentAudioStream() (domain.AudioStream, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.currentAudio()
}

func (b *Backend) Events() <-chan domain.BackendEvent {
	return b.events
}

// Close quits the mpv process we started, killing it if it does not exit
// in time, and closes the Events channel.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		if b.cmd != nil {
			_, _ = b.sendCommand("quit")
		}
		b.listener.Stop()

		if b.cmd != nil {
			select {
			case <-b.exited:
			case <-time.After(quitTimeout):
				b.logger.Warn("mpv did not quit, killing it")
				b.closeErr = killProcess(b.cmd)
			}
			_ = os.Remove(b.socketPath)
		}

		b.endEvents("closed")
	})
	return b.closeErr
}

// Factory starts one mpv process per session
type Factory struct {
	logger    *zap.Logger
	binary    string
	socketDir string
	extraArgs []string

	detectOnce sync.Once
	launcher   launcher
	detectErr  error
}

// NewFactory creates a factory running binary with its IPC sockets in socketDir
func NewFactory(binary, socketDir string, extraArgs []string, logger *zap.Logger) *Factory {
	if binary == "" {
		binary = "mpv"
	}
	if socketDir == "" {
		socketDir = os.TempDir()
	}
	return &Factory{
		logger:    logger,
		binary:    binary,
		socketDir: socketDir,
		extraArgs: extraArgs,
	}
}

// NewBackend starts mpv idle with a window and attaches to its IPC socket.
// ctx bounds the start only.
func (f *Factory) NewBackend(ctx context.Context, sessionID int64) (domain.Backend, error) {
	logger := f.logger.With(zap.Int64("session", sessionID))

	f.detectOnce.Do(func() {
		f.launcher, f.detectErr = detectLauncher(f.binary, f.logger)
	})
	if f.detectErr != nil {
		return nil, f.detectErr
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("generate socket name: %w", err)
	}
	socketPath := filepath.Join(f.socketDir, fmt.Sprintf("multiview-%d-%x.sock", sessionID, randomBytes))

	// Only IPC, window and volume range are forced; everything else comes from the user's mpv.conf
	args := append([]string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socketPath,
		"--force-window=yes",
		"--idle=yes",
		fmt.Sprintf("--volume-max=%d", domain.MaxVolume),
		fmt.Sprintf("--title=%d. ${media-title}", sessionID),
	}, f.extraArgs...)

	cmd := exec.Command(f.launcher.Binary, append(slices.Clone(f.launcher.Args), args...)...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	abort := func(err error) (domain.Backend, error) {
		select {
		case <-exited:
		default:
			logger.Warn("Killing mpv", zap.Error(err))
			_ = killProcess(cmd)
		}
		_ = os.Remove(socketPath)
		return nil, err
	}

	if err := waitForSocket(ctx, socketPath, exited); err != nil {
		return abort(fmt.Errorf("mpv socket not ready: %w", err))
	}

	b, err := attach(socketPath, cmd, exited, logger)
	if err != nil {
		return abort(err)
	}

	logger.Info("mpv started", zap.Int("pid", cmd.Process.Pid), zap.String("socket", socketPath))
	return b, nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func waitForSocket(ctx context.Context, socketPath string, exited <-chan struct{}) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := dial(socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", socketPath, socketWaitRetries)
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// URLs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
