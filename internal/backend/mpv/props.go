package mpv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/samber/lo"
)

// track is one entry of mpv's track-list property
type track struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Lang     string `json:"lang"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
	Height   int    `json:"demux-h"`
}

// device is one entry of mpv's audio-device-list property
type device struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// props is the backend's view of the observed mpv properties
type props struct {
	loaded   bool
	paused   bool
	pos      time.Duration
	duration time.Duration
	volume   int
	mute     bool
	device   string
	devices  []domain.AudioDevice
	videos   []domain.VideoStream
	audios   []domain.AudioStream
	vid, aid string
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}

func (p *props) status() domain.PlayerStatus {
	if p.paused {
		return domain.StatusPaused
	}
	return domain.StatusPlaying
}

// apply folds one mpv event into p and returns the notifications it produces
func (p *props) apply(ev mpvEvent) ([]domain.BackendEvent, error) {
	switch ev.Event {
	case "property-change":
		return p.applyProperty(ev.Name, ev.Data)

	case "start-file":
		p.loaded = false
		return []domain.BackendEvent{{Kind: domain.EventStatusChanged, Status: domain.StatusOpening}}, nil

	case "file-loaded":
		p.loaded = true
		out := []domain.BackendEvent{{Kind: domain.EventOpenCompleted, Media: domain.MediaVideo, Success: true}}
		if len(p.audios) > 0 {
			out = append(out, domain.BackendEvent{Kind: domain.EventOpenCompleted, Media: domain.MediaAudio, Success: true})
		}
		return append(out, domain.BackendEvent{Kind: domain.EventStatusChanged, Status: p.status()}), nil

	case "end-file":
		wasLoaded := p.loaded
		p.loaded = false
		switch ev.Reason {
		case "error":
			reason := lo.Ternary(ev.FileError != "", ev.FileError, "playback error")
			if !wasLoaded {
				return []domain.BackendEvent{{
					Kind:  domain.EventOpenCompleted,
					Media: domain.MediaVideo,
					Err:   fmt.Errorf("mpv: %s", reason),
				}}, nil
			}
			return []domain.BackendEvent{{Kind: domain.EventStatusChanged, Status: domain.StatusFailed}}, nil
		case "redirect":
			return nil, nil
		default:
			return []domain.BackendEvent{{Kind: domain.EventStatusChanged, Status: domain.StatusStopped}}, nil
		}
	}
	return nil, nil
}

// applyProperty stores one property value. A null value means the property
// is unavailable, which for most properties carries no news.
func (p *props) applyProperty(name string, data json.RawMessage) ([]domain.BackendEvent, error) {
	switch name {
	case "time-pos":
		if isNull(data) {
			return nil, nil
		}
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("time-pos: %w", err)
		}
		p.pos = seconds(v)
		return []domain.BackendEvent{{Kind: domain.EventTimeChanged, Time: p.pos}}, nil

	case "duration":
		var v float64
		if !isNull(data) {
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, fmt.Errorf("duration: %w", err)
			}
		}
		p.duration = seconds(v)
		return nil, nil

	case "pause":
		if err := json.Unmarshal(data, &p.paused); err != nil {
			return nil, fmt.Errorf("pause: %w", err)
		}
		if !p.loaded {
			return nil, nil
		}
		return []domain.BackendEvent{{Kind: domain.EventStatusChanged, Status: p.status()}}, nil

	case "volume":
		if isNull(data) {
			return nil, nil
		}
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("volume: %w", err)
		}
		p.volume = int(math.Round(v))
		return []domain.BackendEvent{{Kind: domain.EventVolumeChanged, Volume: p.volume}}, nil

	case "mute":
		if err := json.Unmarshal(data, &p.mute); err != nil {
			return nil, fmt.Errorf("mute: %w", err)
		}
		return []domain.BackendEvent{{Kind: domain.EventMuteChanged, Mute: p.mute}}, nil

	case "audio-device":
		if err := json.Unmarshal(data, &p.device); err != nil {
			return nil, fmt.Errorf("audio-device: %w", err)
		}
		return []domain.BackendEvent{{Kind: domain.EventDeviceChanged, Device: p.device}}, nil

	case "audio-device-list":
		var list []device
		if !isNull(data) {
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("audio-device-list: %w", err)
			}
		}
		p.devices = lo.Map(list, func(d device, _ int) domain.AudioDevice {
			return domain.AudioDevice{ID: d.Name, Name: lo.Ternary(d.Description != "", d.Description, d.Name)}
		})
		return []domain.BackendEvent{{Kind: domain.EventDeviceListChanged}}, nil

	case "track-list":
		var tracks []track
		if !isNull(data) {
			if err := json.Unmarshal(data, &tracks); err != nil {
				return nil, fmt.Errorf("track-list: %w", err)
			}
		}
		p.setTracks(tracks)
		return nil, nil
	}
	return nil, nil
}

func (p *props) setTracks(tracks []track) {
	p.videos, p.audios = nil, nil
	p.vid, p.aid = "", ""
	for _, t := range tracks {
		id := strconv.FormatInt(t.ID, 10)
		switch t.Type {
		case "video":
			p.videos = append(p.videos, domain.VideoStream{ID: id, Height: t.Height})
			if t.Selected {
				p.vid = id
			}
		case "audio":
			p.audios = append(p.audios, domain.AudioStream{ID: id, Language: t.Lang, Title: t.Title})
			if t.Selected {
				p.aid = id
			}
		}
	}
}

func (p *props) currentVideo() (domain.VideoStream, bool) {
	return lo.Find(p.videos, func(s domain.VideoStream) bool { return s.ID == p.vid })
}

func (p *props) currentAudio() (domain.AudioStream, bool) {
	return lo.Find(p.audios, func(s domain.AudioStream) bool { return s.ID == p.aid })
}
