package shape

import "math"

// HandleSize is the half-extent of a handle's square sensitivity box.
const HandleSize = 8.0

// HandlePosition tags what a handle does when dragged. The empty value
// means no handle is active.
type HandlePosition string

const (
	HandleNone        HandlePosition = ""
	HandleMove        HandlePosition = "move"
	HandleTopLeft     HandlePosition = "top-left"
	HandleTopRight    HandlePosition = "top-right"
	HandleBottomLeft  HandlePosition = "bottom-left"
	HandleBottomRight HandlePosition = "bottom-right"
	HandleRadius      HandlePosition = "radius"
	HandleRadiusY     HandlePosition = "radius-y"
	HandleStart       HandlePosition = "start"
	HandleEnd         HandlePosition = "end"
)

// Handle is a draggable hit region on a selected shape.
type Handle struct {
	Position HandlePosition
	Center   Point
	Width    float64
	Height   float64
	Cursor   string
}

// Contains is a box test: |dx| <= Width and |dy| <= Height.
func (h Handle) Contains(p Point) bool {
	return math.Abs(p.X-h.Center.X) <= h.Width && math.Abs(p.Y-h.Center.Y) <= h.Height
}

func handle(pos HandlePosition, at Point, cursor string) Handle {
	return Handle{Position: pos, Center: at, Width: HandleSize, Height: HandleSize, Cursor: cursor}
}

// Handles lists the resize handles of s in priority order. The move handle
// always comes first.
func Handles(s Shape) []Handle {
	switch s.Kind {
	case KindRect:
		// Corners are named against the signed anchor, not the screen, so a
		// drag that flips the sign keeps the same handle meaning.
		return []Handle{
			handle(HandleMove, Center(s), "move"),
			handle(HandleTopLeft, Pt(s.X, s.Y), "nwse-resize"),
			handle(HandleTopRight, Pt(s.X+s.Width, s.Y), "nesw-resize"),
			handle(HandleBottomLeft, Pt(s.X, s.Y+s.Height), "nesw-resize"),
			handle(HandleBottomRight, Pt(s.X+s.Width, s.Y+s.Height), "nwse-resize"),
		}
	case KindCircle:
		return []Handle{
			handle(HandleMove, Pt(s.X, s.Y), "move"),
			handle(HandleRadius, Pt(s.X+s.Radius, s.Y), "ew-resize"),
			handle(HandleRadiusY, Pt(s.X, s.Y+s.Radius), "ns-resize"),
		}
	case KindLine:
		return []Handle{
			handle(HandleMove, Pt((s.X+s.X2)/2, (s.Y+s.Y2)/2), "move"),
			handle(HandleStart, Pt(s.X, s.Y), "crosshair"),
			handle(HandleEnd, Pt(s.X2, s.Y2), "crosshair"),
		}
	case KindPencil:
		if len(s.Strokes) == 0 {
			return nil
		}
		return []Handle{handle(HandleMove, Center(s), "move")}
	}
	return nil
}

// HandleUnderCursor returns the first handle whose box contains p.
func HandleUnderCursor(handles []Handle, p Point) (Handle, bool) {
	for _, h := range handles {
		if h.Contains(p) {
			return h, true
		}
	}
	return Handle{}, false
}
