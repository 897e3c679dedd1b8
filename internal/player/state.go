package player

import (
	"slices"

	"github.com/genricoloni/multiview/internal/domain"
)

// Phase is the lifecycle stage of a session
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseOpening
	PhaseReady
	PhaseFailed
	PhaseDisposed
)

var phaseNames = map[Phase]string{
	PhaseUninitialized: "uninitialized",
	PhaseOpening:       "opening",
	PhaseReady:         "ready",
	PhaseFailed:        "failed",
	PhaseDisposed:      "disposed",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Reduce applies a property notification to a state and returns the new state.
// The second result is false for notifications Reduce does not handle
// (open-completed and device-list changes need the backend and are applied by the session).
func Reduce(state domain.PlaybackState, ev domain.BackendEvent) (domain.PlaybackState, bool) {
	switch ev.Kind {
	case domain.EventStatusChanged:
		state.IsPlaying = ev.Status == domain.StatusPlaying
		state.IsPaused = ev.Status == domain.StatusPaused
	case domain.EventTimeChanged:
		state.Time = max(ev.Time, 0)
	case domain.EventVolumeChanged:
		state.Volume = domain.ClampVolume(ev.Volume)
	case domain.EventMuteChanged:
		state.IsMuted = ev.Mute
	case domain.EventDeviceChanged:
		state.AudioDevice = ev.Device
	default:
		return state, false
	}
	return state, true
}

// withAudioLists rebuilds the device and track lists wholesale
func withAudioLists(state domain.PlaybackState, devices []domain.AudioDevice, tracks []domain.AudioStream) domain.PlaybackState {
	state.AudioDevices = slices.Clone(devices)
	state.AudioTracks = slices.Clone(tracks)
	return state
}

// clone returns a copy that shares no slices with state
func clone(state domain.PlaybackState) domain.PlaybackState {
	state.AudioDevices = slices.Clone(state.AudioDevices)
	state.AudioTracks = slices.Clone(state.AudioTracks)
	return state
}
