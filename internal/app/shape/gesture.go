package shape

import "math"

// UpdateFromGesture returns s updated for a pointer drag from anchor to
// current.
//
// With no active handle the drag defines the shape: a rectangle spans
// anchor to current with signed width and height, a circle centred on
// anchor reaches current, a line runs anchor to current, and a pencil
// stroke appends current.
//
// With a handle active the handle's transform is applied instead and
// pencil strokes are never extended. Handles that do not belong to the
// shape's kind leave it unchanged.
func UpdateFromGesture(s Shape, anchor, current Point, active HandlePosition) Shape {
	if active == HandleNone {
		return define(s, anchor, current)
	}

	switch s.Kind {
	case KindRect:
		return resizeRect(s, current, active)
	case KindCircle:
		return resizeCircle(s, current, active)
	case KindLine:
		return resizeLine(s, current, active)
	case KindPencil:
		if active == HandleMove && len(s.Strokes) > 0 {
			return translatePencil(s, current.Sub(s.Strokes[0]))
		}
	}
	return s
}

func define(s Shape, anchor, current Point) Shape {
	switch s.Kind {
	case KindRect:
		s.X, s.Y = anchor.X, anchor.Y
		s.Width = current.X - anchor.X
		s.Height = current.Y - anchor.Y
	case KindCircle:
		s.X, s.Y = anchor.X, anchor.Y
		s.Radius = anchor.Dist(current)
	case KindLine:
		s.X, s.Y = anchor.X, anchor.Y
		s.X2, s.Y2 = current.X, current.Y
	case KindPencil:
		strokes := make([]Point, len(s.Strokes), len(s.Strokes)+1)
		copy(strokes, s.Strokes)
		s.Strokes = append(strokes, current)
	}
	return s
}

func resizeRect(s Shape, cur Point, active HandlePosition) Shape {
	right, bottom := s.X+s.Width, s.Y+s.Height

	switch active {
	case HandleMove:
		s.X = cur.X - s.Width/2
		s.Y = cur.Y - s.Height/2
	case HandleTopLeft:
		s.X, s.Y = cur.X, cur.Y
		s.Width, s.Height = right-cur.X, bottom-cur.Y
	case HandleTopRight:
		s.Y = cur.Y
		s.Width, s.Height = cur.X-s.X, bottom-cur.Y
	case HandleBottomLeft:
		s.X = cur.X
		s.Width, s.Height = right-cur.X, cur.Y-s.Y
	case HandleBottomRight:
		s.Width, s.Height = cur.X-s.X, cur.Y-s.Y
	}
	return s
}

func resizeCircle(s Shape, cur Point, active HandlePosition) Shape {
	center := Pt(s.X, s.Y)

	switch active {
	case HandleMove:
		s.X, s.Y = cur.X, cur.Y
	case HandleRadius:
		s.Radius = math.Max(0, center.Dist(cur))
	case HandleRadiusY:
		s.Radius = math.Max(0, math.Abs(cur.Y-center.Y))
	}
	return s
}

func resizeLine(s Shape, cur Point, active HandlePosition) Shape {
	switch active {
	case HandleMove:
		halfW, halfH := (s.X2-s.X)/2, (s.Y2-s.Y)/2
		s.X, s.Y = cur.X-halfW, cur.Y-halfH
		s.X2, s.Y2 = cur.X+halfW, cur.Y+halfH
	case HandleStart:
		s.X, s.Y = cur.X, cur.Y
	case HandleEnd:
		s.X2, s.Y2 = cur.X, cur.Y
	}
	return s
}

func translatePencil(s Shape, delta Point) Shape {
	moved := make([]Point, len(s.Strokes))
	for i, p := range s.Strokes {
		moved[i] = p.Add(delta)
	}
	s.Strokes = moved
	return s
}
