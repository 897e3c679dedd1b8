// Package quality maps a coarse quality tier onto one concrete video rendition.
package quality

import (
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/samber/lo"
)

// MinHeight returns the height floor a tier requires relative to the tallest rendition
func MinHeight(maxHeight int, tier domain.QualityTier) int {
	switch tier {
	case domain.QualityMedium:
		return maxHeight / 3 * 2
	case domain.QualityLow:
		return maxHeight / 2
	case domain.QualityLowest:
		return maxHeight / 3
	default:
		return maxHeight
	}
}

// Select picks the cheapest stream whose height still meets the tier's floor.
// When no stream qualifies it falls back to the tallest one.
// The second result is false only when streams is empty.
func Select(streams []domain.VideoStream, tier domain.QualityTier) (domain.VideoStream, bool) {
	if len(streams) == 0 {
		return domain.VideoStream{}, false
	}
	return SelectFloor(streams, MinHeight(tallest(streams).Height, tier))
}

// SelectFloor is Select with an explicit floor instead of a tier
func SelectFloor(streams []domain.VideoStream, floor int) (domain.VideoStream, bool) {
	if len(streams) == 0 {
		return domain.VideoStream{}, false
	}
	candidates := lo.Filter(streams, func(s domain.VideoStream, _ int) bool {
		return s.Height >= floor
	})
	if len(candidates) == 0 {
		return tallest(streams), true
	}
	return lo.MinBy(candidates, func(a, b domain.VideoStream) bool {
		return a.Height < b.Height
	}), true
}

func tallest(streams []domain.VideoStream) domain.VideoStream {
	return lo.MaxBy(streams, func(a, b domain.VideoStream) bool {
		return a.Height > b.Height
	})
}
