package layout

import (
	"slices"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

var fallbackDisplay = Rect{Width: 1920, Height: 1080}

// Screen knows the active displays
type Screen struct {
	displays []Rect
}

// NewScreen detects the active displays at startup
func NewScreen(logger *zap.Logger) *Screen {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to 1920x1080")
		return NewStaticScreen(fallbackDisplay)
	}

	displays := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays = append(displays, Rect{
			Left:   float64(b.Min.X),
			Top:    float64(b.Min.Y),
			Width:  float64(b.Dx()),
			Height: float64(b.Dy()),
		})
	}

	primary := displays[0]
	logger.Info("Screens detected",
		zap.Int("count", n),
		zap.Float64("width", primary.Width),
		zap.Float64("height", primary.Height))

	return &Screen{displays: displays}
}

// NewStaticScreen uses a fixed display list, primary first
func NewStaticScreen(displays ...Rect) *Screen {
	if len(displays) == 0 {
		displays = []Rect{fallbackDisplay}
	}
	return &Screen{displays: slices.Clone(displays)}
}

// Resolution returns the primary display size
func (s *Screen) Resolution() domain.ScreenResolution {
	p := s.displays[0]
	return domain.ScreenResolution{Width: int(p.Width), Height: int(p.Height)}
}

// WorkArea returns the display holding the center of window, or the primary one
func (s *Screen) WorkArea(window Rect) Rect {
	cx, cy := window.Left+window.Width/2, window.Top+window.Height/2
	for _, d := range s.displays {
		if d.Contains(cx, cy) {
			return d
		}
	}
	return s.displays[0]
}
