// Package bus is the cross-session broadcast medium.
//
// Each channel is a Topic with its own payload type, so a handler for one
// channel can never be registered on another. Sessions never reference each
// other; they only publish here and decide in their own predicates whether a
// payload concerns them.
package bus

import (
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

// Channel names
const (
	ChannelSyncTime         = "sync-time"
	ChannelPauseAll         = "pause-all"
	ChannelMuteAllExcept    = "mute-all-except"
	ChannelCloseAll         = "close-all"
	ChannelToggleFullScreen = "toggle-fullscreen"
	ChannelSaveLayout       = "save-layout"
)

// SyncTime moves every session sharing SyncUID to Time.
// Origin is the publishing session, which does not seek itself; 0 means none.
type SyncTime struct {
	SyncUID string
	Time    time.Duration
	Origin  int64
}

// PauseAll toggles pause on every session
type PauseAll struct{}

// MuteAllExcept mutes every session but SessionID, which is unmuted
type MuteAllExcept struct {
	SessionID int64
}

// CloseAll closes sessions of ContentType, or all of them for domain.ContentTypeAny
type CloseAll struct {
	ContentType domain.ContentType
}

// ToggleFullScreen asks SessionID to toggle full screen
type ToggleFullScreen struct {
	SessionID int64
}

// SaveLayout asks sessions of ContentType for a geometry snapshot. When
// Collect is set the snapshot is handed to it instead of the layout store.
type SaveLayout struct {
	ContentType domain.ContentType
	Collect     func(domain.LayoutSnapshot)
}

// Bus groups the control channels shared by all session controllers
type Bus struct {
	SyncTime         *Topic[SyncTime]
	PauseAll         *Topic[PauseAll]
	MuteAllExcept    *Topic[MuteAllExcept]
	CloseAll         *Topic[CloseAll]
	ToggleFullScreen *Topic[ToggleFullScreen]
	SaveLayout       *Topic[SaveLayout]
}

// Option configures a Bus
type Option func(*options)

type options struct {
	onFailed func(DeliveryFailure)
}

// WithFailureHandler installs a callback invoked for every failed delivery
func WithFailureHandler(fn func(DeliveryFailure)) Option {
	return func(o *options) { o.onFailed = fn }
}

// New creates a bus with all control channels
func New(logger *zap.Logger, opts ...Option) *Bus {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger = logger.Named("bus")

	return &Bus{
		SyncTime:         newTopic[SyncTime](ChannelSyncTime, logger, o.onFailed),
		PauseAll:         newTopic[PauseAll](ChannelPauseAll, logger, o.onFailed),
		MuteAllExcept:    newTopic[MuteAllExcept](ChannelMuteAllExcept, logger, o.onFailed),
		CloseAll:         newTopic[CloseAll](ChannelCloseAll, logger, o.onFailed),
		ToggleFullScreen: newTopic[ToggleFullScreen](ChannelToggleFullScreen, logger, o.onFailed),
		SaveLayout:       newTopic[SaveLayout](ChannelSaveLayout, logger, o.onFailed),
	}
}

// NewBus is the fx constructor
func NewBus(logger *zap.Logger) *Bus {
	return New(logger)
}
