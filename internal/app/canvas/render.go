package canvas

import "drawify/internal/app/shape"

// Canvas is a drawing surface that can be cleared and told the current
// view transform before shapes are painted in model coordinates.
type Canvas interface {
	shape.Surface

	Clear()
	SetTransform(t Transform)
}

// Scene is everything one repaint reads.
type Scene struct {
	Transform Transform
	Items     []Item

	// Selected is the id of the selected item, 0 for none. Handles are its
	// cached resize handles.
	Selected int64
	Handles  []shape.Handle

	// Draft is the shape being drawn, not yet persisted.
	Draft *shape.Shape
}

// Render repaints the whole canvas from scene. It keeps no state between
// calls.
func Render(c Canvas, scene Scene) {
	c.Clear()
	c.SetTransform(scene.Transform)

	for _, it := range scene.Items {
		selected := scene.Selected != 0 && it.ID == scene.Selected
		var handles []shape.Handle
		if selected {
			handles = scene.Handles
		}
		shape.Draw(c, it.Shape, selected, handles)
	}

	if scene.Draft != nil {
		shape.Draw(c, *scene.Draft, false, nil)
	}
}
