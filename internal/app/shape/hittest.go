package shape

// LineTolerance is how far, in model units at scale 1, a point may lie from
// a line segment and still hit it.
const LineTolerance = 10.0

// HitTest reports whether p lies on s, using LineTolerance for lines.
func HitTest(s Shape, p Point) bool {
	return HitTestWithin(s, p, LineTolerance)
}

// HitTestWithin is HitTest with an explicit line tolerance. Callers that
// work under zoom pass LineTolerance/scale to keep the tolerance constant
// in screen pixels.
func HitTestWithin(s Shape, p Point, tolerance float64) bool {
	switch s.Kind {
	case KindRect, KindPencil:
		if s.Kind == KindPencil && len(s.Strokes) == 0 {
			return false
		}
		min, max := Bounds(s)
		return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
	case KindCircle:
		return s.Radius > 0 && p.Dist(Pt(s.X, s.Y)) <= s.Radius
	case KindLine:
		return SegmentDistance(p, Pt(s.X, s.Y), Pt(s.X2, s.Y2)) <= tolerance
	}
	return false
}

// SegmentDistance returns the distance from p to the closest point of the
// segment ab.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Dist(a)
	}

	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return p.Dist(a.Add(ab.Scale(t)))
}
