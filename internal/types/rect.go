package types

import "github.com/besuhoff/dark-ritual-go/internal/utils"

// Rect is an axis-aligned collision box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func RectAt(pos Vector2, width, height float64) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: width, Height: height}
}

// RectCenteredAt builds a box whose center is pos.
func RectCenteredAt(pos Vector2, width, height float64) Rect {
	return Rect{X: pos.X - width/2, Y: pos.Y - height/2, Width: width, Height: height}
}

func (r Rect) Intersects(o Rect) bool {
	return utils.CheckRectCollision(r.X, r.Y, r.Width, r.Height, o.X, o.Y, o.Width, o.Height)
}

func (r Rect) Center() Vector2 {
	return Vector2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) TopLeft() Vector2 {
	return Vector2{X: r.X, Y: r.Y}
}

// Inflate grows the box by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}
