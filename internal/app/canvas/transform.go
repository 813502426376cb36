package canvas

import (
	"math"

	"drawify/internal/app/shape"
)

const (
	MinScale = 0.1
	MaxScale = 5.0

	// ZoomSensitivity converts a wheel delta into a scale step.
	ZoomSensitivity = 0.001
)

// Transform maps model coordinates to screen coordinates:
// screen = model*Scale + Offset.
type Transform struct {
	Offset shape.Point
	Scale  float64
}

// Identity is the transform of a freshly opened room.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ToModel maps a screen point into model space.
func (t Transform) ToModel(p shape.Point) shape.Point {
	return p.Sub(t.Offset).Scale(1 / t.Scale)
}

// ToScreen maps a model point onto the screen.
func (t Transform) ToScreen(p shape.Point) shape.Point {
	return p.Scale(t.Scale).Add(t.Offset)
}

// Pan shifts the view by a screen-space delta.
func (t Transform) Pan(delta shape.Point) Transform {
	t.Offset = t.Offset.Add(delta)
	return t
}

// Zoom applies one wheel step centred on cursor. The scale moves opposite
// to deltaY, is clamped to [MinScale, MaxScale] and kept at two decimals.
// The offset is corrected so the model point under cursor stays under it.
func (t Transform) Zoom(deltaY float64, cursor shape.Point) Transform {
	if !finite(deltaY) {
		return t
	}
	old := t.Scale
	next := clampScale(old - deltaY*ZoomSensitivity)
	if next == old {
		return t
	}

	rel := cursor.Sub(t.Offset)
	t.Offset = t.Offset.Sub(rel.Scale(next/old - 1))
	t.Scale = next
	return t
}

// WithScale sets the scale, keeping the offset.
func (t Transform) WithScale(scale float64) Transform {
	if !finite(scale) {
		return t
	}
	t.Scale = clampScale(scale)
	return t
}

func clampScale(s float64) float64 {
	s = math.Max(MinScale, math.Min(MaxScale, s))
	return math.Round(s*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
