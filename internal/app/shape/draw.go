package shape

// Surface is the set of drawing primitives a shape needs. Coordinates are
// in model space; the surface owns any pan/zoom mapping.
type Surface interface {
	Rect(x, y, width, height float64, cfg Config)
	Circle(center Point, radius float64, cfg Config)
	Line(from, to Point, cfg Config)
	Path(points []Point, cfg Config)

	// Outline paints the dashed selection box around min..max.
	Outline(min, max Point)

	// Handle paints one resize handle.
	Handle(h Handle)
}

// Draw paints s onto surface. A selected shape also gets its dashed
// bounding outline and the given handles.
func Draw(surface Surface, s Shape, selected bool, handles []Handle) {
	switch s.Kind {
	case KindRect:
		surface.Rect(s.X, s.Y, s.Width, s.Height, s.Config)
	case KindCircle:
		surface.Circle(Pt(s.X, s.Y), s.Radius, s.Config)
	case KindLine:
		surface.Line(Pt(s.X, s.Y), Pt(s.X2, s.Y2), s.Config)
	case KindPencil:
		if len(s.Strokes) == 0 {
			return
		}
		surface.Path(s.Strokes, s.Config)
	default:
		return
	}

	if !selected {
		return
	}

	min, max := Bounds(s)
	surface.Outline(min, max)
	for _, h := range handles {
		surface.Handle(h)
	}
}
