// Package layout places session windows on screen and persists their layout.
package layout

import (
	"fmt"
	"strings"
)

// Rect is a window or screen area in screen coordinates
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside r
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Left+r.Width && y >= r.Top && y < r.Top+r.Height
}

// Location is a screen corner or edge a window can snap to
type Location int

const (
	TopLeft Location = iota
	TopRight
	BottomLeft
	BottomRight
	Left
	Right
	Top
	Bottom
)

var locationNames = []string{
	TopLeft:     "top-left",
	TopRight:    "top-right",
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
	Left:        "left",
	Right:       "right",
	Top:         "top",
	Bottom:      "bottom",
}

func (l Location) String() string {
	if l < 0 || int(l) >= len(locationNames) {
		return "unknown"
	}
	return locationNames[l]
}

// ParseLocation parses names like "top-left"
func ParseLocation(s string) (Location, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range locationNames {
		if name == s {
			return Location(i), nil
		}
	}
	return 0, fmt.Errorf("unknown window location %q", s)
}

// Place returns the window bounds for loc inside the working area.
// Corners take a quarter of the area, left/right the full height and
// top/bottom the full width.
func Place(loc Location, area Rect) Rect {
	w, h := area.Width/2, area.Height/2
	switch loc {
	case Left, Right:
		h = area.Height
	case Top, Bottom:
		w = area.Width
	}

	r := Rect{Left: area.Left, Top: area.Top, Width: w, Height: h}
	switch loc {
	case TopRight, BottomRight, Right:
		r.Left = area.Left + area.Width - w
	}
	switch loc {
	case BottomLeft, BottomRight, Bottom:
		r.Top = area.Top + area.Height - h
	}
	return r
}
