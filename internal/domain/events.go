package domain

import "time"

// BackendEventKind identifies a backend notification
type BackendEventKind int

const (
	// EventOpenCompleted reports the result of an open for one media type
	EventOpenCompleted BackendEventKind = iota
	// EventStatusChanged reports a new PlayerStatus
	EventStatusChanged
	// EventTimeChanged reports the current playback position
	EventTimeChanged
	// EventVolumeChanged reports the backend volume
	EventVolumeChanged
	// EventMuteChanged reports the backend mute flag
	EventMuteChanged
	// EventDeviceChanged reports the selected audio output device
	EventDeviceChanged
	// EventDeviceListChanged reports that the audio device list was rebuilt
	EventDeviceListChanged
)

var eventKindNames = map[BackendEventKind]string{
	EventOpenCompleted:     "open-completed",
	EventStatusChanged:     "status-changed",
	EventTimeChanged:       "time-changed",
	EventVolumeChanged:     "volume-changed",
	EventMuteChanged:       "mute-changed",
	EventDeviceChanged:     "device-changed",
	EventDeviceListChanged: "device-list-changed",
}

func (k BackendEventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// BackendEvent is a single notification from a Backend.
// Only the fields relevant to Kind are set.
type BackendEvent struct {
	Kind BackendEventKind

	// EventOpenCompleted
	Media   MediaType
	Success bool
	Err     error

	// EventStatusChanged
	Status PlayerStatus

	// EventTimeChanged
	Time time.Duration

	// EventVolumeChanged
	Volume int

	// EventMuteChanged
	Mute bool

	// EventDeviceChanged
	Device string
}
