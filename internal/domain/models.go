package domain

import (
	"fmt"
	"time"
)

// ContentType tags what kind of content a session shows.
// Close-all and save-layout broadcasts are scoped by it.
type ContentType string

const (
	// ContentTypeAny matches every content type in close-all broadcasts
	ContentTypeAny ContentType = ""
	// ContentTypeLive is a live broadcast
	ContentTypeLive ContentType = "LIVE"
	// ContentTypeChannel is a channel feed of a session (e.g. an onboard camera)
	ContentTypeChannel ContentType = "CHANNEL"
	// ContentTypeEpisode is on-demand content
	ContentTypeEpisode ContentType = "EPISODE"
)

// ContentRef is the immutable identity of what is being watched
type ContentRef struct {
	// ID is passed to the stream resolver
	ID string
	// SyncUID groups streams that should stay time-aligned
	SyncUID string
	// Title is the display title
	Title string
	// Name is the channel name stored with layout snapshots
	Name string
	// Type scopes close-all and save-layout
	Type ContentType
	// IsLive disables seeking
	IsLive bool
}

// Identity is the routing key of a session controller on the control bus
type Identity struct {
	SessionID   int64
	SyncUID     string
	ContentType ContentType
}

// MatchesContentType reports whether a close-all filter applies to this identity.
// ContentTypeAny matches everything.
func (i Identity) MatchesContentType(filter ContentType) bool {
	return filter == ContentTypeAny || filter == i.ContentType
}

// QualityTier is a coarse target resolution bucket
type QualityTier int

const (
	QualityHigh QualityTier = iota
	QualityMedium
	QualityLow
	QualityLowest
)

var qualityNames = map[QualityTier]string{
	QualityHigh:   "high",
	QualityMedium: "medium",
	QualityLow:    "low",
	QualityLowest: "lowest",
}

func (q QualityTier) String() string {
	if s, ok := qualityNames[q]; ok {
		return s
	}
	return "unknown"
}

// ParseQualityTier parses the lower-case tier name. "potato" is accepted for Lowest.
func ParseQualityTier(s string) (QualityTier, error) {
	for tier, name := range qualityNames {
		if name == s {
			return tier, nil
		}
	}
	if s == "potato" {
		return QualityLowest, nil
	}
	return QualityHigh, fmt.Errorf("unknown quality tier %q", s)
}

// MediaType identifies which part of the media an open completed for
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// PlayerStatus represents the backend's current playback status
type PlayerStatus string

const (
	// StatusStopped indicates nothing is loaded or playback was stopped
	StatusStopped PlayerStatus = "Stopped"
	// StatusOpening indicates the backend is opening or buffering
	StatusOpening PlayerStatus = "Opening"
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlayerStatus = "Paused"
	// StatusFailed indicates the backend gave up on the media
	StatusFailed PlayerStatus = "Failed"
)

// VideoStream is one selectable video rendition
type VideoStream struct {
	ID     string
	Height int
}

// AudioStream is one selectable audio track
type AudioStream struct {
	ID       string
	Language string
	Title    string
}

// AudioDevice is an output device the backend can render to
type AudioDevice struct {
	ID   string
	Name string
}

// MaxVolume is the upper bound of the backend volume range
const MaxVolume = 150

// ClampVolume bounds v to [0, MaxVolume]
func ClampVolume(v int) int {
	return min(max(v, 0), MaxVolume)
}

// PlaybackState is the observable state of one player session
type PlaybackState struct {
	Time     time.Duration
	Duration time.Duration

	IsPlaying bool
	IsPaused  bool

	Volume  int
	IsMuted bool

	VideoInitialized bool
	AudioInitialized bool

	AudioDevices  []AudioDevice
	AudioTracks   []AudioStream
	AudioDevice   string
	AudioTrack    string
	VideoStreamID string
}

// WindowState of a session window
type WindowState string

const (
	WindowNormal    WindowState = "Normal"
	WindowMaximized WindowState = "Maximized"
	WindowMinimized WindowState = "Minimized"
)

// ResizeMode of a session window
type ResizeMode string

const (
	ResizeCanResize ResizeMode = "CanResize"
	ResizeNoResize  ResizeMode = "NoResize"
)

// WindowSettings is the per-window geometry plus the playback preferences
// that are persisted with a layout
type WindowSettings struct {
	Top         float64     `json:"top"`
	Left        float64     `json:"left"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	ResizeMode  ResizeMode  `json:"resizeMode"`
	WindowState WindowState `json:"windowState"`
	Topmost     bool        `json:"topmost"`
	Quality     QualityTier `json:"quality"`
	IsMuted     bool        `json:"isMuted"`
	Volume      int         `json:"volume"`
	AudioDevice string      `json:"audioDevice,omitempty"`
	ChannelName string      `json:"channelName,omitempty"`
}

// DefaultWindowSettings returns the settings of a freshly opened window
func DefaultWindowSettings() WindowSettings {
	return WindowSettings{
		Width:       960,
		Height:      550,
		ResizeMode:  ResizeCanResize,
		WindowState: WindowNormal,
		Quality:     QualityHigh,
		Volume:      100,
	}
}

// LayoutSnapshot is one window's saved settings, keyed by content type
type LayoutSnapshot struct {
	ContentType ContentType
	Settings    WindowSettings
	SavedAt     time.Time
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}

// MediaKey is a desktop media key press
type MediaKey string

const (
	KeyPlay     MediaKey = "Play"
	KeyPause    MediaKey = "Pause"
	KeyStop     MediaKey = "Stop"
	KeyNext     MediaKey = "Next"
	KeyPrevious MediaKey = "Previous"
)
