/*
Package shape implements the geometric primitives drawn on a board.

A Shape is a tagged union over rectangles, circles, lines and freehand
pencil strokes. Every capability (hit testing, resize handles, gesture
updates, drawing and wire encoding) is a plain function that switches on
the Kind, so adding a variant means touching each capability table once.
*/
package shape

import (
	"errors"
	"fmt"
	"math"
)

// Kind is the variant tag of a Shape. The string values are the wire names.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindPencil Kind = "pencil"
)

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	switch k {
	case KindRect, KindCircle, KindLine, KindPencil:
		return true
	}
	return false
}

var (
	// ErrUnknownKind is returned when a shape carries an unrecognized kind tag.
	ErrUnknownKind = errors.New("unknown shape kind")

	// ErrInvalidGeometry is returned when a shape's geometric fields violate its variant's invariants.
	ErrInvalidGeometry = errors.New("invalid shape geometry")
)

// Point is an immutable x/y pair in model space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Shape is one drawable primitive. Which geometric fields are meaningful
// depends on Kind:
//
//	rect:   X, Y (anchor corner), Width, Height (signed)
//	circle: X, Y (center), Radius
//	line:   X, Y, X2, Y2
//	pencil: Strokes
type Shape struct {
	Kind Kind

	X      float64
	Y      float64
	Width  float64
	Height float64
	Radius float64
	X2     float64
	Y2     float64

	Strokes []Point

	Config Config
}

// New returns a zero-size shape of the given kind anchored at p. It is the
// starting state of a drawing gesture.
func New(kind Kind, p Point, cfg Config) Shape {
	s := Shape{Kind: kind, X: p.X, Y: p.Y, Config: cfg}
	switch kind {
	case KindLine:
		s.X2, s.Y2 = p.X, p.Y
	case KindPencil:
		s.X, s.Y = 0, 0
		s.Strokes = []Point{p}
	}
	return s
}

// NewRect builds a rectangle with the default style.
func NewRect(x, y, width, height float64) Shape {
	return Shape{Kind: KindRect, X: x, Y: y, Width: width, Height: height, Config: DefaultConfig()}
}

// NewCircle builds a circle with the default style.
func NewCircle(cx, cy, radius float64) Shape {
	return Shape{Kind: KindCircle, X: cx, Y: cy, Radius: radius, Config: DefaultConfig()}
}

// NewLine builds a line with the default style.
func NewLine(x1, y1, x2, y2 float64) Shape {
	return Shape{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2, Config: DefaultConfig()}
}

// NewPencil builds a freehand stroke with the default style.
func NewPencil(points ...Point) Shape {
	return Shape{Kind: KindPencil, Strokes: append([]Point(nil), points...), Config: DefaultConfig()}
}

// Bounds returns the normalized axis-aligned bounding box of s.
func Bounds(s Shape) (min, max Point) {
	switch s.Kind {
	case KindRect:
		return Pt(math.Min(s.X, s.X+s.Width), math.Min(s.Y, s.Y+s.Height)),
			Pt(math.Max(s.X, s.X+s.Width), math.Max(s.Y, s.Y+s.Height))
	case KindCircle:
		return Pt(s.X-s.Radius, s.Y-s.Radius), Pt(s.X+s.Radius, s.Y+s.Radius)
	case KindLine:
		return Pt(math.Min(s.X, s.X2), math.Min(s.Y, s.Y2)),
			Pt(math.Max(s.X, s.X2), math.Max(s.Y, s.Y2))
	case KindPencil:
		if len(s.Strokes) == 0 {
			return Point{}, Point{}
		}
		min, max = s.Strokes[0], s.Strokes[0]
		for _, p := range s.Strokes[1:] {
			min = Pt(math.Min(min.X, p.X), math.Min(min.Y, p.Y))
			max = Pt(math.Max(max.X, p.X), math.Max(max.Y, p.Y))
		}
		return min, max
	}
	return Point{}, Point{}
}

// Center returns the midpoint of the bounding box.
func Center(s Shape) Point {
	min, max := Bounds(s)
	return Pt((min.X+max.X)/2, (min.Y+max.Y)/2)
}

// Degenerate reports whether s has zero extent. Degenerate shapes are legal
// while a drag is in progress but are not committed.
func Degenerate(s Shape) bool {
	switch s.Kind {
	case KindRect:
		return s.Width == 0 || s.Height == 0
	case KindCircle:
		return s.Radius == 0
	case KindLine:
		return s.X == s.X2 && s.Y == s.Y2
	case KindPencil:
		return len(s.Strokes) < 2
	}
	return true
}

// Validate checks the variant invariants: a known kind, finite numbers,
// a non-negative radius, at least one stroke point, and a valid config.
func Validate(s Shape) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}

	nums := []float64{s.X, s.Y}
	switch s.Kind {
	case KindRect:
		nums = append(nums, s.Width, s.Height)
	case KindCircle:
		if s.Radius < 0 {
			return fmt.Errorf("%w: negative radius", ErrInvalidGeometry)
		}
		nums = append(nums, s.Radius)
	case KindLine:
		nums = append(nums, s.X2, s.Y2)
	case KindPencil:
		if len(s.Strokes) == 0 {
			return fmt.Errorf("%w: pencil needs at least one point", ErrInvalidGeometry)
		}
		for _, p := range s.Strokes {
			nums = append(nums, p.X, p.Y)
		}
	}
	for _, n := range nums {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: non-finite coordinate", ErrInvalidGeometry)
		}
	}

	return s.Config.Validate()
}
