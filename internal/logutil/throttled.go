// Package logutil holds logging helpers shared by the playback components.
package logutil

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultWarningInterval is the minimum gap between two throttled warnings
const DefaultWarningInterval = 5 * time.Second

// Throttled logs warnings at most once per interval.
// Suppressed warnings are counted and reported with the next emitted one.
type Throttled struct {
	logger     *zap.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// NewThrottled creates a throttled warning logger
func NewThrottled(logger *zap.Logger, every time.Duration) *Throttled {
	return &Throttled{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Warn logs msg unless a warning was already emitted within the interval.
// It reports whether the message was written.
func (t *Throttled) Warn(msg string, fields ...zap.Field) bool {
	if !t.limiter.Allow() {
		t.suppressed.Add(1)
		return false
	}
	if n := t.suppressed.Swap(0); n > 0 {
		fields = append(fields, zap.Int64("suppressed", n))
	}
	t.logger.Warn(msg, fields...)
	return true
}

// Suppressed returns how many warnings were dropped since the last emitted one
func (t *Throttled) Suppressed() int64 {
	return t.suppressed.Load()
}
