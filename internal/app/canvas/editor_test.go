package canvas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawify/internal/app/protocol"
	"drawify/internal/app/shape"
)

const room = int64(42)

type fakeSender struct {
	sent []protocol.Envelope
	err  error
}

func (f *fakeSender) Send(env protocol.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeSender) last(t *testing.T) protocol.Envelope {
	t.Helper()
	require.NotEmpty(t, f.sent, "nothing sent")
	return f.sent[len(f.sent)-1]
}

type recordingCanvas struct {
	clears     int
	transforms []Transform
	ops        []string
}

func (c *recordingCanvas) Clear()                   { c.clears++; c.ops = nil }
func (c *recordingCanvas) SetTransform(t Transform) { c.transforms = append(c.transforms, t) }
func (c *recordingCanvas) Rect(x, y, w, h float64, cfg shape.Config) {
	c.ops = append(c.ops, "rect")
}
func (c *recordingCanvas) Circle(center shape.Point, r float64, cfg shape.Config) {
	c.ops = append(c.ops, "circle")
}
func (c *recordingCanvas) Line(from, to shape.Point, cfg shape.Config) {
	c.ops = append(c.ops, "line")
}
func (c *recordingCanvas) Path(points []shape.Point, cfg shape.Config) {
	c.ops = append(c.ops, "path")
}
func (c *recordingCanvas) Outline(min, max shape.Point) { c.ops = append(c.ops, "outline") }
func (c *recordingCanvas) Handle(h shape.Handle)        { c.ops = append(c.ops, "handle:"+string(h.Position)) }

func newTestEditor() (*Editor, *fakeSender, *recordingCanvas) {
	sender := &fakeSender{}
	c := &recordingCanvas{}
	return NewEditor(room, sender, c), sender, c
}

func record(t *testing.T, id int64, s shape.Shape) protocol.Record {
	t.Helper()
	text, err := shape.Encode(s)
	require.NoError(t, err)
	return protocol.Record{ID: id, RoomID: room, UserID: "peer", Message: text}
}

func event(t *testing.T, typ protocol.Type, rec protocol.Record) protocol.Envelope {
	t.Helper()
	env, err := protocol.NewRecordEvent(typ, rec)
	require.NoError(t, err)
	return env
}

func sentShape(t *testing.T, env protocol.Envelope) shape.Shape {
	t.Helper()
	s, err := env.Shape()
	require.NoError(t, err)
	return s
}

func TestDrawRectangle(t *testing.T) {
	e, sender, c := newTestEditor()
	e.SetTool(ToolRect)
	assert.Equal(t, CursorCrosshair, e.Status().Cursor)

	e.PointerDown(shape.Pt(10, 10))
	assert.Equal(t, StateDrawing, e.State())

	e.PointerMove(shape.Pt(60, 40))
	assert.Equal(t, []string{"rect"}, c.ops, "draft is painted")

	require.NoError(t, e.PointerUp(shape.Pt(60, 40)))

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, ToolCursor, e.Status().Tool)
	assert.Zero(t, e.Selected())

	env := sender.last(t)
	assert.Equal(t, protocol.TypeChat, env.Type)
	assert.Equal(t, room, env.RoomID)

	got := sentShape(t, env)
	assert.Equal(t, shape.KindRect, got.Kind)
	assert.Equal(t, 10.0, got.X)
	assert.Equal(t, 10.0, got.Y)
	assert.Equal(t, 50.0, got.Width)
	assert.Equal(t, 30.0, got.Height)

	assert.Empty(t, e.Shapes(), "the shape appears with the server echo")
}

func TestDrawUsesModelSpace(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.Wheel(-1000, shape.Pt(0, 0)) // scale 2

	e.SetTool(ToolLine)
	e.PointerDown(shape.Pt(20, 20))
	require.NoError(t, e.PointerUp(shape.Pt(220, 20)))

	got := sentShape(t, sender.last(t))
	assert.Equal(t, shape.NewLine(10, 10, 110, 10), got)
}

func TestDegenerateDrawingIsDiscarded(t *testing.T) {
	tools := []Tool{ToolRect, ToolCircle, ToolLine, ToolPencil}
	for _, tool := range tools {
		t.Run(tool.String(), func(t *testing.T) {
			e, sender, _ := newTestEditor()
			e.SetTool(tool)
			e.PointerDown(shape.Pt(5, 5))
			require.NoError(t, e.PointerUp(shape.Pt(5, 5)))

			assert.Empty(t, sender.sent)
			assert.Equal(t, StateIdle, e.State())
			assert.Equal(t, ToolCursor, e.Status().Tool)
		})
	}
}

func TestPencilCollectsPoints(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.SetTool(ToolPencil)
	e.PointerDown(shape.Pt(0, 0))
	e.PointerMove(shape.Pt(3, 4))
	e.PointerMove(shape.Pt(6, 8))
	require.NoError(t, e.PointerUp(shape.Pt(6, 8)))

	got := sentShape(t, sender.last(t))
	assert.Equal(t, []shape.Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 6, Y: 8}}, got.Strokes)
}

func TestSelectAndMove(t *testing.T) {
	e, sender, c := newTestEditor()
	e.Load([]protocol.Record{record(t, 7, shape.NewRect(0, 0, 100, 50))})

	// the move handle sits at the center
	e.PointerDown(shape.Pt(50, 25))
	assert.Equal(t, StateResizing, e.State())
	assert.Equal(t, int64(7), e.Selected())
	assert.Contains(t, c.ops, "outline")
	assert.Contains(t, c.ops, "handle:move")

	e.PointerMove(shape.Pt(70, 45))
	require.NoError(t, e.PointerUp(shape.Pt(70, 45)))

	env := sender.last(t)
	require.Equal(t, protocol.TypeUpdate, env.Type)
	p, err := env.Update()
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, 20.0, p.Shape.X)
	assert.Equal(t, 20.0, p.Shape.Y)
	assert.Equal(t, 100.0, p.Shape.Width)
	assert.Equal(t, 50.0, p.Shape.Height)

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, int64(7), e.Selected(), "selection persists after a resize")
}

func TestCornerResize(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 3, shape.NewRect(0, 0, 100, 50))})

	e.PointerDown(shape.Pt(100, 50))
	require.Equal(t, StateResizing, e.State())
	require.NoError(t, e.PointerUp(shape.Pt(140, 90)))

	p, err := sender.last(t).Update()
	require.NoError(t, err)
	assert.Equal(t, 140.0, p.Shape.Width)
	assert.Equal(t, 90.0, p.Shape.Height)
}

func TestClickSelectsWithoutResizing(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.Load([]protocol.Record{
		record(t, 1, shape.NewRect(0, 0, 200, 200)),
		record(t, 2, shape.NewRect(0, 0, 200, 200)),
	})

	e.PointerDown(shape.Pt(30, 150))
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, int64(1), e.Selected(), "first in arrival order wins")
	assert.True(t, e.Status().CanDelete)

	require.NoError(t, e.PointerUp(shape.Pt(30, 150)))
	assert.Empty(t, sender.sent)

	e.PointerDown(shape.Pt(900, 900))
	assert.Zero(t, e.Selected(), "a miss clears the selection")
}

func TestHoverCursor(t *testing.T) {
	e, _, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 1, shape.NewRect(0, 0, 100, 100))})
	e.PointerDown(shape.Pt(30, 70))
	require.NoError(t, e.PointerUp(shape.Pt(30, 70)))

	e.PointerMove(shape.Pt(101, 99))
	assert.Equal(t, "nwse-resize", e.Status().Cursor)

	e.PointerMove(shape.Pt(30, 70))
	assert.Equal(t, CursorDefault, e.Status().Cursor)
}

func TestPanning(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.SetTool(ToolHand)
	assert.Equal(t, CursorGrab, e.Status().Cursor)

	e.PointerDown(shape.Pt(100, 100))
	assert.Equal(t, StatePanning, e.State())
	e.PointerMove(shape.Pt(130, 90))
	assert.Equal(t, CursorGrabbing, e.Status().Cursor)
	e.PointerMove(shape.Pt(140, 95))
	require.NoError(t, e.PointerUp(shape.Pt(140, 95)))

	assert.Equal(t, shape.Pt(40, -5), e.Transform().Offset)
	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, sender.sent)
}

func TestDeleteSelected(t *testing.T) {
	e, sender, _ := newTestEditor()
	require.NoError(t, e.DeleteSelected(), "nothing selected is a no-op")
	assert.Empty(t, sender.sent)

	e.Load([]protocol.Record{record(t, 9, shape.NewCircle(50, 50, 20))})
	e.PointerDown(shape.Pt(62, 38))
	require.Equal(t, StateIdle, e.State(), "inside the circle but off every handle")
	require.NoError(t, e.PointerUp(shape.Pt(62, 38)))
	require.Equal(t, int64(9), e.Selected())

	require.NoError(t, e.DeleteSelected())
	env := sender.last(t)
	assert.Equal(t, protocol.TypeDelete, env.Type)
	p, err := env.Delete()
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Zero(t, e.Selected())
}

func TestDrawingDropsSelection(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 7, shape.NewRect(0, 0, 100, 50))})
	e.PointerDown(shape.Pt(30, 40))
	require.NoError(t, e.PointerUp(shape.Pt(30, 40)))
	require.Equal(t, int64(7), e.Selected())

	e.SetTool(ToolCircle)
	e.PointerDown(shape.Pt(300, 300))
	assert.Zero(t, e.Selected())
	assert.False(t, e.Status().CanDelete)

	cfg := shape.DefaultConfig()
	cfg.Stroke = "#ff0000"
	require.NoError(t, e.SetConfig(cfg))
	require.NoError(t, e.DeleteSelected())
	assert.Empty(t, sender.sent, "the old selection is not edited mid-draw")

	e.PointerMove(shape.Pt(320, 300))
	require.NoError(t, e.PointerUp(shape.Pt(320, 300)))
	got := sentShape(t, sender.last(t))
	assert.Equal(t, shape.KindCircle, got.Kind)
	assert.Equal(t, "#ff0000", got.Config.Stroke)
}

func TestOversizedShapeIsRefusedLocally(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.maxMessage = 512

	e.SetTool(ToolPencil)
	e.PointerDown(shape.Pt(0, 0))
	for i := range 40 {
		e.PointerMove(shape.Pt(float64(i)*1.5, float64(i)*2.25))
	}
	err := e.PointerUp(shape.Pt(100, 100))

	assert.ErrorIs(t, err, protocol.ErrMessageTooLarge)
	assert.Empty(t, sender.sent)
	assert.Equal(t, "Shape is too large to save.", e.Status().LastError)
	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, e.Shapes())
}

func TestSetConfigRestylesSelection(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 4, shape.NewRect(0, 0, 40, 40))})

	cfg := shape.DefaultConfig()
	cfg.Stroke = "#ff0000"
	require.NoError(t, e.SetConfig(cfg))
	assert.Empty(t, sender.sent, "no selection, nothing sent")

	e.PointerDown(shape.Pt(5, 30))
	require.NoError(t, e.PointerUp(shape.Pt(5, 30)))

	cfg.FillStyle = shape.FillCrossHatch
	require.NoError(t, e.SetConfig(cfg))
	p, err := sender.last(t).Update()
	require.NoError(t, err)
	assert.Equal(t, cfg, p.Shape.Config)

	bad := cfg
	bad.StrokeWidth = 0
	assert.Error(t, e.SetConfig(bad))
}

func TestApplyServerEvents(t *testing.T) {
	e, _, c := newTestEditor()

	require.NoError(t, e.Apply(event(t, protocol.TypeChat, record(t, 1, shape.NewRect(0, 0, 10, 10)))))
	require.NoError(t, e.Apply(event(t, protocol.TypeChat, record(t, 2, shape.NewLine(0, 0, 5, 5)))))
	require.NoError(t, e.Apply(event(t, protocol.TypeChat, record(t, 1, shape.NewRect(0, 0, 10, 10)))))
	require.Len(t, e.Shapes(), 2, "a duplicate echo does not duplicate the shape")
	assert.Equal(t, []string{"rect", "line"}, c.ops)

	require.NoError(t, e.Apply(event(t, protocol.TypeUpdate, record(t, 1, shape.NewRect(0, 0, 99, 10)))))
	assert.Equal(t, 99.0, e.Shapes()[0].Shape.Width)

	require.NoError(t, e.Apply(event(t, protocol.TypeUpdate, record(t, 50, shape.NewRect(0, 0, 1, 1)))))
	assert.Len(t, e.Shapes(), 2, "updates for unknown ids are ignored")

	require.NoError(t, e.Apply(event(t, protocol.TypeDelete, record(t, 2, shape.NewLine(0, 0, 5, 5)))))
	require.Len(t, e.Shapes(), 1)
	assert.Equal(t, int64(1), e.Shapes()[0].ID)

	require.NoError(t, e.Apply(protocol.NewError(room, "Shape 2 not found in this room.")))
	assert.Equal(t, "Shape 2 not found in this room.", e.Status().LastError)

	bad := protocol.Envelope{Type: protocol.TypeChat, RoomID: room, Message: json.RawMessage(`{"id":3,"message":"nope"}`)}
	assert.Error(t, e.Apply(bad))
}

func TestRemoteDeleteClearsSelection(t *testing.T) {
	e, _, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 5, shape.NewRect(0, 0, 100, 50))})
	e.PointerDown(shape.Pt(50, 25))
	require.Equal(t, StateResizing, e.State())

	require.NoError(t, e.Apply(event(t, protocol.TypeDelete, record(t, 5, shape.NewRect(0, 0, 100, 50)))))
	assert.Equal(t, StateIdle, e.State())
	assert.Zero(t, e.Selected())
}

func TestPointerCancelCommitsLastPosition(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.SetTool(ToolCircle)
	e.PointerDown(shape.Pt(0, 0))
	e.PointerMove(shape.Pt(30, 40))

	require.NoError(t, e.PointerCancel())
	got := sentShape(t, sender.last(t))
	assert.Equal(t, 50.0, got.Radius)
	assert.Equal(t, StateIdle, e.State())
}

func TestConnectionLost(t *testing.T) {
	e, sender, _ := newTestEditor()
	e.SetTool(ToolRect)
	e.PointerDown(shape.Pt(0, 0))
	e.PointerMove(shape.Pt(10, 10))

	e.ConnectionLost(errors.New("socket closed"))
	st := e.Status()
	assert.True(t, st.ConnectionLost)
	assert.Equal(t, "socket closed", st.LastError)
	assert.Equal(t, StateIdle, st.State)

	e.SetTool(ToolRect)
	e.PointerDown(shape.Pt(0, 0))
	err := e.PointerUp(shape.Pt(20, 20))
	assert.ErrorIs(t, err, ErrConnectionLost)
	assert.Empty(t, sender.sent)
}

func TestSendFailureIsReturned(t *testing.T) {
	e, sender, _ := newTestEditor()
	sender.err = errors.New("write: broken pipe")

	e.SetTool(ToolRect)
	e.PointerDown(shape.Pt(0, 0))
	assert.ErrorContains(t, e.PointerUp(shape.Pt(20, 20)), "broken pipe")
}

func TestLineToleranceFollowsZoom(t *testing.T) {
	e, _, _ := newTestEditor()
	e.Load([]protocol.Record{record(t, 1, shape.NewLine(0, 0, 400, 0))})
	e.Wheel(-1000, shape.Pt(0, 0)) // scale 2

	// 8px below the line on screen is within 10px
	e.PointerDown(shape.Pt(300, 8))
	assert.Equal(t, int64(1), e.Selected())

	// 16px on screen is only 8 model units, but it is more than 10px
	e.PointerDown(shape.Pt(300, 16))
	assert.Zero(t, e.Selected())
}

func TestRenderOrder(t *testing.T) {
	c := &recordingCanvas{}
	draft := shape.NewCircle(1, 1, 1)

	Render(c, Scene{
		Transform: Transform{Offset: shape.Pt(3, 4), Scale: 2},
		Items: []Item{
			{ID: 1, Shape: shape.NewRect(0, 0, 1, 1)},
			{ID: 2, Shape: shape.NewPencil(shape.Pt(0, 0), shape.Pt(1, 1))},
		},
		Selected: 2,
		Handles:  shape.Handles(shape.NewPencil(shape.Pt(0, 0), shape.Pt(1, 1))),
		Draft:    &draft,
	})

	assert.Equal(t, 1, c.clears)
	assert.Equal(t, []Transform{{Offset: shape.Pt(3, 4), Scale: 2}}, c.transforms)
	assert.Equal(t, []string{"rect", "path", "outline", "handle:move", "circle"}, c.ops)
}
