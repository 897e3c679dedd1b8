package layout

import "github.com/genricoloni/multiview/internal/domain"

// Restore applies saved settings on top of base.
// Window chrome goes first, the size only when the window is not maximized,
// then the playback preferences that feed StartPlayback.
func Restore(base, saved domain.WindowSettings) domain.WindowSettings {
	out := base

	out.ResizeMode = saved.ResizeMode
	out.WindowState = saved.WindowState
	out.Topmost = saved.Topmost
	out.Top = saved.Top
	out.Left = saved.Left

	if saved.WindowState != domain.WindowMaximized {
		out.Width = saved.Width
		out.Height = saved.Height
	}

	out.IsMuted = saved.IsMuted
	out.Volume = domain.ClampVolume(saved.Volume)
	out.AudioDevice = saved.AudioDevice
	out.Quality = saved.Quality
	out.ChannelName = saved.ChannelName
	return out
}

// Bounds returns the window rectangle stored in settings
func Bounds(s domain.WindowSettings) Rect {
	return Rect{Left: s.Left, Top: s.Top, Width: s.Width, Height: s.Height}
}
