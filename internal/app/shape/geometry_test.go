package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitTestRect(t *testing.T) {
	r := NewRect(0, 0, 100, 50)
	assert.True(t, HitTest(r, Pt(50, 25)))
	assert.False(t, HitTest(r, Pt(150, 25)))

	flipped := NewRect(100, 50, -100, -50)
	assert.True(t, HitTest(flipped, Pt(50, 25)), "negative extents cover the same box")
}

func TestHitTestLineTolerance(t *testing.T) {
	l := NewLine(0, 0, 100, 0)
	assert.True(t, HitTest(l, Pt(50, 9)))
	assert.False(t, HitTest(l, Pt(50, 20)))

	// beyond the endpoint the distance is measured to the endpoint itself
	assert.True(t, HitTest(l, Pt(105, 5)))
	assert.False(t, HitTest(l, Pt(115, 0)))
}

func TestHitTestCircleAndPencil(t *testing.T) {
	c := NewCircle(0, 0, 10)
	assert.True(t, HitTest(c, Pt(6, 6)))
	assert.False(t, HitTest(c, Pt(8, 8)))
	assert.False(t, HitTest(NewCircle(0, 0, 0), Pt(0, 0)), "zero radius is never hit")

	p := NewPencil(Pt(0, 0), Pt(10, 20), Pt(30, 5))
	assert.True(t, HitTest(p, Pt(25, 18)))
	assert.False(t, HitTest(p, Pt(31, 5)))
	assert.False(t, HitTest(Shape{Kind: KindPencil}, Pt(0, 0)))
}

func TestSegmentDistanceDegenerate(t *testing.T) {
	assert.InDelta(t, 5.0, SegmentDistance(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
}

func TestHandlesOrder(t *testing.T) {
	positions := func(hs []Handle) []HandlePosition {
		out := make([]HandlePosition, len(hs))
		for i, h := range hs {
			out[i] = h.Position
		}
		return out
	}

	assert.Equal(t,
		[]HandlePosition{HandleMove, HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight},
		positions(Handles(NewRect(0, 0, 10, 10))))
	assert.Equal(t, []HandlePosition{HandleMove, HandleRadius, HandleRadiusY}, positions(Handles(NewCircle(0, 0, 5))))
	assert.Equal(t, []HandlePosition{HandleMove, HandleStart, HandleEnd}, positions(Handles(NewLine(0, 0, 10, 0))))
	assert.Equal(t, []HandlePosition{HandleMove}, positions(Handles(NewPencil(Pt(0, 0), Pt(10, 10)))))
}

func TestHandleUnderCursorBoxTest(t *testing.T) {
	hs := Handles(NewRect(0, 0, 100, 50))

	h, ok := HandleUnderCursor(hs, Pt(58, 33))
	require.True(t, ok, "corner of the box around the centre counts")
	assert.Equal(t, HandleMove, h.Position)

	h, ok = HandleUnderCursor(hs, Pt(104, 46))
	require.True(t, ok)
	assert.Equal(t, HandleBottomRight, h.Position)

	_, ok = HandleUnderCursor(hs, Pt(30, 25))
	assert.False(t, ok)

	// overlapping boxes resolve to the first listed handle
	tiny := Handles(NewRect(0, 0, 4, 4))
	h, ok = HandleUnderCursor(tiny, Pt(0, 0))
	require.True(t, ok)
	assert.Equal(t, HandleMove, h.Position)
}

func TestDefineFromDrag(t *testing.T) {
	anchor, cur := Pt(10, 10), Pt(4, 30)

	r := UpdateFromGesture(New(KindRect, anchor, DefaultConfig()), anchor, cur, HandleNone)
	assert.Equal(t, -6.0, r.Width)
	assert.Equal(t, 20.0, r.Height)

	c := UpdateFromGesture(New(KindCircle, anchor, DefaultConfig()), anchor, Pt(13, 14), HandleNone)
	assert.InDelta(t, 5.0, c.Radius, 1e-9)
	assert.Equal(t, anchor, Pt(c.X, c.Y))

	l := UpdateFromGesture(New(KindLine, anchor, DefaultConfig()), anchor, cur, HandleNone)
	assert.Equal(t, NewLine(10, 10, 4, 30), l)

	p := New(KindPencil, anchor, DefaultConfig())
	p = UpdateFromGesture(p, anchor, Pt(11, 11), HandleNone)
	p = UpdateFromGesture(p, anchor, Pt(12, 13), HandleNone)
	assert.Equal(t, []Point{anchor, Pt(11, 11), Pt(12, 13)}, p.Strokes)
}

func TestRectMoveHandleKeepsSize(t *testing.T) {
	r := NewRect(20, 30, 100, 50)
	start := Center(r)
	dx, dy := 17.5, -12.0

	moved := UpdateFromGesture(r, start, start.Add(Pt(dx, dy)), HandleMove)
	assert.InDelta(t, r.X+dx, moved.X, 1e-9)
	assert.InDelta(t, r.Y+dy, moved.Y, 1e-9)
	assert.Equal(t, r.Width, moved.Width)
	assert.Equal(t, r.Height, moved.Height)
}

func TestRectCornersPinOppositeEdges(t *testing.T) {
	r := NewRect(0, 0, 100, 50)

	tl := UpdateFromGesture(r, Point{}, Pt(10, 5), HandleTopLeft)
	assert.Equal(t, NewRect(10, 5, 90, 45), tl)

	tr := UpdateFromGesture(r, Point{}, Pt(120, 10), HandleTopRight)
	assert.Equal(t, NewRect(0, 10, 120, 40), tr)

	bl := UpdateFromGesture(r, Point{}, Pt(-10, 60), HandleBottomLeft)
	assert.Equal(t, NewRect(-10, 0, 110, 60), bl)

	br := UpdateFromGesture(r, Point{}, Pt(-20, -10), HandleBottomRight)
	assert.Equal(t, NewRect(0, 0, -20, -10), br, "dragging past the anchor flips the sign")
}

func TestCircleHandles(t *testing.T) {
	c := NewCircle(0, 0, 10)

	moved := UpdateFromGesture(c, Point{}, Pt(5, 5), HandleMove)
	assert.Equal(t, Pt(5, 5), Pt(moved.X, moved.Y))
	assert.Equal(t, c.Radius, moved.Radius)

	assert.InDelta(t, 5.0, UpdateFromGesture(c, Point{}, Pt(3, 4), HandleRadius).Radius, 1e-9)
	assert.InDelta(t, 7.0, UpdateFromGesture(c, Point{}, Pt(40, -7), HandleRadiusY).Radius, 1e-9)
}

func TestLineHandles(t *testing.T) {
	l := NewLine(0, 0, 10, 20)

	moved := UpdateFromGesture(l, Point{}, Pt(105, 110), HandleMove)
	assert.Equal(t, NewLine(100, 100, 110, 120), moved)

	assert.Equal(t, NewLine(-1, -2, 10, 20), UpdateFromGesture(l, Point{}, Pt(-1, -2), HandleStart))
	assert.Equal(t, NewLine(0, 0, 7, 7), UpdateFromGesture(l, Point{}, Pt(7, 7), HandleEnd))
}

func TestPencilMoveTranslatesFromFirstPoint(t *testing.T) {
	p := NewPencil(Pt(1, 1), Pt(3, 4))
	moved := UpdateFromGesture(p, Point{}, Pt(11, 21), HandleMove)
	assert.Equal(t, []Point{Pt(11, 21), Pt(13, 24)}, moved.Strokes)
	assert.Equal(t, []Point{Pt(1, 1), Pt(3, 4)}, p.Strokes, "input shape is not mutated")

	same := UpdateFromGesture(p, Point{}, Pt(50, 50), HandleBottomRight)
	assert.Equal(t, p, same)
}

type recordingSurface struct {
	calls []string
}

func (r *recordingSurface) Rect(x, y, w, h float64, cfg Config)     { r.calls = append(r.calls, "rect") }
func (r *recordingSurface) Circle(c Point, radius float64, _ Config) { r.calls = append(r.calls, "circle") }
func (r *recordingSurface) Line(a, b Point, _ Config)                { r.calls = append(r.calls, "line") }
func (r *recordingSurface) Path(pts []Point, _ Config)               { r.calls = append(r.calls, "path") }
func (r *recordingSurface) Outline(min, max Point)                   { r.calls = append(r.calls, "outline") }
func (r *recordingSurface) Handle(h Handle)                         { r.calls = append(r.calls, "handle:"+string(h.Position)) }

func TestDrawSelectedAddsOutlineAndHandles(t *testing.T) {
	s := NewLine(0, 0, 10, 0)

	plain := &recordingSurface{}
	Draw(plain, s, false, Handles(s))
	assert.Equal(t, []string{"line"}, plain.calls)

	selected := &recordingSurface{}
	Draw(selected, s, true, Handles(s))
	assert.Equal(t, []string{"line", "outline", "handle:move", "handle:start", "handle:end"}, selected.calls)
}
