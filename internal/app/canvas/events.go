package canvas

import "drawify/internal/app/shape"

// Event is one user input delivered to a Session.
type Event interface {
	apply(e *Editor) error
}

type (
	PointerDown   struct{ At shape.Point }
	PointerMove   struct{ At shape.Point }
	PointerUp     struct{ At shape.Point }
	PointerCancel struct{}

	// Wheel is a scroll of DeltaY at screen point At.
	Wheel struct {
		DeltaY float64
		At     shape.Point
	}

	SelectTool   struct{ Tool Tool }
	ChangeConfig struct{ Config shape.Config }
	DeleteShape  struct{}
	ResetZoom    struct{}
)

func (ev PointerDown) apply(e *Editor) error { e.PointerDown(ev.At); return nil }
func (ev PointerMove) apply(e *Editor) error { e.PointerMove(ev.At); return nil }
func (ev PointerUp) apply(e *Editor) error   { return e.PointerUp(ev.At) }
func (PointerCancel) apply(e *Editor) error  { return e.PointerCancel() }
func (ev Wheel) apply(e *Editor) error       { e.Wheel(ev.DeltaY, ev.At); return nil }
func (ev SelectTool) apply(e *Editor) error  { e.SetTool(ev.Tool); return nil }
func (ev ChangeConfig) apply(e *Editor) error {
	return e.SetConfig(ev.Config)
}
func (DeleteShape) apply(e *Editor) error { return e.DeleteSelected() }
func (ResetZoom) apply(e *Editor) error   { e.ResetZoom(); return nil }
