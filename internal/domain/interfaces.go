package domain

import (
	"context"
	"time"
)

// Backend is one opaque decode/render engine. Each session owns exactly one.
// Implementations deliver notifications on Events() from their own goroutines.
//
//go:generate mockgen -destination=mocks/backend_mock.go -package=mocks github.com/genricoloni/multiview/internal/domain Backend,StreamResolver,LayoutStore
type Backend interface {
	// Open starts opening a media URL. Completion is reported per media type
	// with an EventOpenCompleted notification.
	Open(url string) error

	// OpenVideoStream switches to another video rendition of the open media
	OpenVideoStream(stream VideoStream) error

	// OpenAudioStream switches to another audio track of the open media
	OpenAudioStream(stream AudioStream) error

	Play() error
	Pause() error
	Stop() error

	// Seek moves playback to an absolute position
	Seek(pos time.Duration) error

	// Duration of the open media, 0 when unknown
	Duration() time.Duration

	SetVolume(volume int) error
	Volume() int

	SetMute(mute bool) error
	Mute() bool

	SetAudioDevice(id string) error
	AudioDevice() string

	VideoStreams() []VideoStream
	AudioStreams() []AudioStream
	AudioDevices() []AudioDevice

	// CurrentVideoStream returns the rendition being decoded, if any
	CurrentVideoStream() (VideoStream, bool)
	// CurrentAudioStream returns the audio track being decoded, if any
	CurrentAudioStream() (AudioStream, bool)

	// Events returns a read-only channel of state-change notifications.
	// It is closed by Close.
	Events() <-chan BackendEvent

	// Close releases the backend. It is called once per backend.
	Close() error
}

// BackendFactory creates a fresh backend for a new session
type BackendFactory interface {
	NewBackend(ctx context.Context, sessionID int64) (Backend, error)
}

// StreamResolver turns a content reference into a playable URL
type StreamResolver interface {
	// ResolveStreamURL returns the tokenised stream URL for the content.
	// An empty URL is never returned without an error.
	ResolveStreamURL(ctx context.Context, token string, content ContentRef) (string, error)
}

// LayoutStore persists window snapshots per content type
type LayoutStore interface {
	// Reset drops the stored snapshots of a content type before a new save
	Reset(ctx context.Context, contentType ContentType) error

	// Append stores one window snapshot
	Append(ctx context.Context, snapshot LayoutSnapshot) error

	// Replace swaps the stored snapshots of a content type for snapshots in
	// one transaction; on error the previous snapshots are kept
	Replace(ctx context.Context, contentType ContentType, snapshots []LayoutSnapshot) error

	// Load returns the snapshots of a content type in save order
	Load(ctx context.Context, contentType ContentType) ([]LayoutSnapshot, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetIdleTimeout returns how long controls stay visible without pointer activity
	GetIdleTimeout() time.Duration

	// GetWheelStep returns the mouse-wheel delta that maps to one volume step
	GetWheelStep() int

	// GetDefaultSettings returns the window settings for windows without a saved layout
	GetDefaultSettings() WindowSettings

	// GetSubscriptionToken returns the token passed to the stream resolver
	GetSubscriptionToken() string
}

// MediaKeySource delivers desktop media key presses
type MediaKeySource interface {
	// Start begins listening. It returns once the listener is registered.
	Start(ctx context.Context) error

	// Stop releases the keys and closes the Events channel
	Stop() error

	// Events returns a read-only channel of key presses
	Events() <-chan MediaKey
}
