package frame

import (
	"math"
	"time"

	"github.com/Gaurav-Gosain/deskfolio/internal/geometry"
)

// collapsed is the rectangle a window grows out of: a small box at the centre of its target.
func collapsed(target geometry.Rect) geometry.Rect {
	w := max(target.Width/4, min(target.Width, 8))
	h := max(target.Height/4, min(target.Height, 3))
	c := target.Center()
	return geometry.Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// progress returns the eased completion of an animation started at start.
func progress(start, now time.Time, d time.Duration) float64 {
	if d <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(d)
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	return easeInOutCubic(p)
}

func lerpRect(from, to geometry.Rect, p float64) geometry.Rect {
	return geometry.Rect{
		X:      interpolate(from.X, to.X, p),
		Y:      interpolate(from.Y, to.Y, p),
		Width:  interpolate(from.Width, to.Width, p),
		Height: interpolate(from.Height, to.Height, p),
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	p := 2*t - 2
	return 1 + p*p*p/2
}

func interpolate(start, end int, progress float64) int {
	return start + int(math.Round(float64(end-start)*progress))
}
