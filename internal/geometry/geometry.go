// Package geometry computes window placement on the desktop: initial centring,
// bounds clamping and the maximized rectangle. All functions are pure.
package geometry

// Point is a cell position on the desktop.
type Point struct {
	X int
	Y int
}

// Size is a width/height pair in cells.
type Size struct {
	Width  int
	Height int
}

// Rect is an axis-aligned rectangle. X/Y is the top-left cell.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Center returns the centre cell of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Center places a window of the given size in the middle of the viewport.
// The size is shrunk to fit first so the origin is never negative.
func Center(viewport, size Size) Rect {
	w := max(min(size.Width, viewport.Width), 0)
	h := max(min(size.Height, viewport.Height), 0)
	return Rect{
		X:      max((viewport.Width-w)/2, 0),
		Y:      max((viewport.Height-h)/2, 0),
		Width:  w,
		Height: h,
	}
}

// ClampPosition keeps a window's title bar reachable. The top row stays inside
// [0, viewport.Height-1] and at least minVisible columns of the window remain
// inside [0, viewport.Width].
func ClampPosition(pos Point, size Size, viewport Size, minVisible int) Point {
	strip := min(max(minVisible, 1), max(size.Width, 1))
	if viewport.Width > 0 {
		strip = min(strip, viewport.Width)
	}

	minX := strip - size.Width
	maxX := viewport.Width - strip
	if maxX < minX {
		maxX = minX
	}

	return Point{
		X: clamp(pos.X, minX, maxX),
		Y: clamp(pos.Y, 0, max(viewport.Height-1, 0)),
	}
}

// ClampSize enforces a minimum width and height.
func ClampSize(size, minimum Size) Size {
	return Size{
		Width:  max(size.Width, minimum.Width),
		Height: max(size.Height, minimum.Height),
	}
}

// Fill returns the rectangle a maximized window occupies.
func Fill(viewport Size) Rect {
	return Rect{Width: max(viewport.Width, 0), Height: max(viewport.Height, 0)}
}

// VisibleStrip returns how many columns of the title row of r lie within the viewport.
// Zero means the title bar is unreachable.
func VisibleStrip(r Rect, viewport Size) int {
	if r.Y < 0 || r.Y >= viewport.Height {
		return 0
	}
	row := Rect{X: r.X, Y: r.Y, Width: r.Width, Height: 1}
	return row.Intersect(Rect{Width: viewport.Width, Height: viewport.Height}).Width
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
