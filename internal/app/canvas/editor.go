/*
Package canvas is the client side of a drawing room: the local shape
collection, the pan/zoom transform, the render pass and the Editor state
machine that turns pointer input into protocol messages.

An Editor is not safe for concurrent use. Session drives it from a single
goroutine, interleaving user events with inbound server events.
*/
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"

	"drawify/internal/app/protocol"
	"drawify/internal/app/shape"
	"drawify/internal/pkg/logx"
)

// ErrConnectionLost is returned by operations that need the server after
// the connection has gone away.
var ErrConnectionLost = errors.New("connection lost")

// Tool is the active drawing tool.
type Tool int

const (
	ToolCursor Tool = iota
	ToolHand
	ToolRect
	ToolCircle
	ToolLine
	ToolPencil
)

func (t Tool) String() string {
	switch t {
	case ToolCursor:
		return "cursor"
	case ToolHand:
		return "hand"
	case ToolRect:
		return "rect"
	case ToolCircle:
		return "circle"
	case ToolLine:
		return "line"
	case ToolPencil:
		return "pencil"
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// Kind returns the shape kind a drawing tool creates.
func (t Tool) Kind() (shape.Kind, bool) {
	switch t {
	case ToolRect:
		return shape.KindRect, true
	case ToolCircle:
		return shape.KindCircle, true
	case ToolLine:
		return shape.KindLine, true
	case ToolPencil:
		return shape.KindPencil, true
	}
	return "", false
}

// State is the interaction state.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateResizing
	StatePanning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateResizing:
		return "resizing"
	case StatePanning:
		return "panning"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Cursor hints.
const (
	CursorDefault   = "default"
	CursorGrab      = "grab"
	CursorGrabbing  = "grabbing"
	CursorCrosshair = "crosshair"
)

// Sender delivers protocol messages to the server.
type Sender interface {
	Send(env protocol.Envelope) error
}

// Status is what a toolbar shows.
type Status struct {
	Tool           Tool
	State          State
	Scale          float64
	Config         shape.Config
	Cursor         string
	CanDelete      bool
	LastError      string
	ConnectionLost bool
}

// Editor is the interaction controller for one room.
type Editor struct {
	roomID int64
	sender Sender
	canvas Canvas

	shapes Collection
	view   Transform

	tool   Tool
	state  State
	config shape.Config
	cursor string

	// anchor is in screen space while panning, model space otherwise.
	anchor shape.Point

	// last is the most recent pointer position in screen space.
	last shape.Point

	draft shape.Shape

	selected int64
	handles  []shape.Handle
	active   shape.HandlePosition

	lastError string
	lost      bool

	// maxMessage bounds the encoded size of an outbound envelope.
	maxMessage int
}

// NewEditor returns an idle editor with the cursor tool and default style.
// canvas may be nil for headless use.
func NewEditor(roomID int64, sender Sender, canvas Canvas) *Editor {
	return &Editor{
		roomID: roomID,
		sender: sender,
		canvas: canvas,
		view:   Identity(),
		tool:   ToolCursor,
		state:  StateIdle,
		config: shape.DefaultConfig(),
		cursor: CursorDefault,

		maxMessage: protocol.MaxMessageSize,
	}
}

// RoomID returns the room the editor edits.
func (e *Editor) RoomID() int64 { return e.roomID }

// State returns the interaction state.
func (e *Editor) State() State { return e.state }

// Transform returns the current view transform.
func (e *Editor) Transform() Transform { return e.view }

// Selected returns the selected item id, 0 for none.
func (e *Editor) Selected() int64 { return e.selected }

// Shapes returns the local collection in arrival order.
func (e *Editor) Shapes() []Item { return e.shapes.Items() }

// Status returns a toolbar snapshot.
func (e *Editor) Status() Status {
	return Status{
		Tool:           e.tool,
		State:          e.state,
		Scale:          e.view.Scale,
		Config:         e.config,
		Cursor:         e.cursor,
		CanDelete:      e.selected != 0,
		LastError:      e.lastError,
		ConnectionLost: e.lost,
	}
}

// Scene returns what the next repaint would draw.
func (e *Editor) Scene() Scene {
	scene := Scene{
		Transform: e.view,
		Items:     e.shapes.Items(),
		Selected:  e.selected,
		Handles:   e.handles,
	}
	if e.state == StateDrawing {
		draft := e.draft
		scene.Draft = &draft
	}
	return scene
}

func (e *Editor) repaint() {
	if e.canvas != nil {
		Render(e.canvas, e.Scene())
	}
}

// Load seeds the collection from a snapshot. Records whose shape cannot be
// decoded are skipped.
func (e *Editor) Load(records []protocol.Record) {
	for _, rec := range records {
		it, err := ItemFromRecord(rec)
		if err != nil {
			logx.Warn("skipping undecodable snapshot record", "room_id", e.roomID, "error", err.Error())
			continue
		}
		e.shapes.Put(it)
	}
	e.repaint()
}

func (e *Editor) send(env protocol.Envelope, err error) error {
	if err != nil {
		return err
	}
	if e.lost {
		return ErrConnectionLost
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}
	if len(data) > e.maxMessage {
		e.lastError = "Shape is too large to save."
		return fmt.Errorf("%w: %d bytes", protocol.ErrMessageTooLarge, len(data))
	}
	return e.sender.Send(env)
}

func (e *Editor) selectItem(it Item) {
	e.selected = it.ID
	e.handles = shape.Handles(it.Shape)
}

func (e *Editor) clearSelection() {
	e.selected = 0
	e.handles = nil
	e.active = shape.HandleNone
}

// SetTool switches the active tool and its cursor hint.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	switch {
	case t == ToolHand:
		e.cursor = CursorGrab
	case t == ToolCursor:
		e.cursor = CursorDefault
	default:
		e.cursor = CursorCrosshair
	}
}

// SetConfig sets the style used for new shapes. A selected shape is
// restyled too, and the change is sent as an update.
func (e *Editor) SetConfig(cfg shape.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.config = cfg

	if e.state == StateDrawing {
		e.draft.Config = cfg
	}
	if e.selected == 0 {
		return nil
	}

	it, ok := e.shapes.Get(e.selected)
	if !ok {
		return nil
	}
	it.Shape.Config = cfg
	e.shapes.Replace(it.ID, it.Shape)
	e.repaint()
	return e.send(protocol.NewUpdate(e.roomID, it.ID, it.Shape))
}

// PointerDown starts a gesture at screen point p.
func (e *Editor) PointerDown(p shape.Point) {
	e.last = p

	if e.tool == ToolHand {
		e.state = StatePanning
		e.anchor = p
		return
	}

	m := e.view.ToModel(p)

	if kind, ok := e.tool.Kind(); ok {
		e.clearSelection()
		e.state = StateDrawing
		e.anchor = m
		e.draft = shape.New(kind, m, e.config)
		return
	}

	if e.selected != 0 {
		e.clearSelection()
		e.repaint()
	}

	it, ok := e.shapes.HitTest(m, shape.LineTolerance/e.view.Scale)
	if !ok {
		return
	}
	e.selectItem(it)

	if h, ok := shape.HandleUnderCursor(e.handles, m); ok {
		e.state = StateResizing
		e.active = h.Position
		e.anchor = m
		e.cursor = h.Cursor
	}
	e.repaint()
}

// PointerMove continues the gesture at screen point p.
func (e *Editor) PointerMove(p shape.Point) {
	e.last = p

	switch e.state {
	case StatePanning:
		e.view = e.view.Pan(p.Sub(e.anchor))
		e.anchor = p
		e.cursor = CursorGrabbing
		e.repaint()

	case StateDrawing:
		e.draft = shape.UpdateFromGesture(e.draft, e.anchor, e.view.ToModel(p), shape.HandleNone)
		e.repaint()

	case StateResizing:
		it, ok := e.shapes.Get(e.selected)
		if !ok {
			e.state = StateIdle
			e.clearSelection()
			return
		}
		s := shape.UpdateFromGesture(it.Shape, e.anchor, e.view.ToModel(p), e.active)
		e.shapes.Replace(it.ID, s)
		e.handles = shape.Handles(s)
		e.repaint()

	case StateIdle:
		if e.selected == 0 {
			return
		}
		if h, ok := shape.HandleUnderCursor(e.handles, e.view.ToModel(p)); ok {
			e.cursor = h.Cursor
		} else {
			e.cursor = CursorDefault
		}
	}
}

// PointerUp ends the gesture at screen point p and sends the resulting
// create or update. Degenerate drawings are discarded without a message.
func (e *Editor) PointerUp(p shape.Point) error {
	if p != e.last && (e.state == StateDrawing || e.state == StateResizing) {
		e.PointerMove(p)
	}
	e.last = p

	switch e.state {
	case StatePanning:
		e.state = StateIdle
		e.cursor = CursorGrab
		return nil

	case StateDrawing:
		draft := e.draft
		e.state = StateIdle
		e.draft = shape.Shape{}
		e.clearSelection()
		e.SetTool(ToolCursor)
		e.repaint()

		if shape.Degenerate(draft) {
			return nil
		}
		return e.send(protocol.NewCreate(e.roomID, draft))

	case StateResizing:
		e.state = StateIdle
		e.active = shape.HandleNone
		e.cursor = CursorDefault

		it, ok := e.shapes.Get(e.selected)
		if !ok {
			e.clearSelection()
			return nil
		}
		e.handles = shape.Handles(it.Shape)
		e.repaint()
		return e.send(protocol.NewUpdate(e.roomID, it.ID, it.Shape))
	}
	return nil
}

// PointerCancel handles lost pointer capture by committing the gesture at
// the last known position.
func (e *Editor) PointerCancel() error {
	return e.PointerUp(e.last)
}

// Wheel zooms around screen point p.
func (e *Editor) Wheel(deltaY float64, p shape.Point) {
	e.view = e.view.Zoom(deltaY, p)
	e.repaint()
}

// ResetZoom returns to scale 1.
func (e *Editor) ResetZoom() {
	e.view = e.view.WithScale(1)
	e.repaint()
}

// DeleteSelected asks the server to delete the selected shape. The shape
// leaves the local collection when the DELETE echo arrives.
func (e *Editor) DeleteSelected() error {
	if e.selected == 0 {
		return nil
	}
	id := e.selected
	if e.state == StateResizing {
		e.state = StateIdle
	}
	e.clearSelection()
	e.repaint()
	return e.send(protocol.NewDelete(e.roomID, id))
}

// Apply folds one server event into the local state.
func (e *Editor) Apply(env protocol.Envelope) error {
	if env.Type == protocol.TypeError {
		text, err := env.Text()
		if err != nil {
			return fmt.Errorf("decode error event: %w", err)
		}
		e.lastError = text
		return nil
	}

	rec, err := env.Record()
	if err != nil {
		return fmt.Errorf("decode %s event: %w", env.Type, err)
	}

	switch env.Type {
	case protocol.TypeChat:
		it, err := ItemFromRecord(rec)
		if err != nil {
			return err
		}
		e.shapes.Put(it)

	case protocol.TypeUpdate:
		it, err := ItemFromRecord(rec)
		if err != nil {
			return err
		}
		if !e.shapes.Replace(it.ID, it.Shape) {
			return nil
		}
		if it.ID == e.selected {
			e.handles = shape.Handles(it.Shape)
		}

	case protocol.TypeDelete:
		if !e.shapes.Remove(rec.ID) {
			return nil
		}
		if rec.ID == e.selected {
			if e.state == StateResizing {
				e.state = StateIdle
			}
			e.clearSelection()
		}

	default:
		return fmt.Errorf("%w: %q", protocol.ErrUnknownType, env.Type)
	}

	e.repaint()
	return nil
}

// ConnectionLost puts the editor into the disconnected condition. Any
// gesture in progress is dropped and later edits fail with ErrConnectionLost.
func (e *Editor) ConnectionLost(cause error) {
	e.lost = true
	e.state = StateIdle
	e.draft = shape.Shape{}
	e.active = shape.HandleNone
	if cause != nil {
		e.lastError = cause.Error()
	} else {
		e.lastError = ErrConnectionLost.Error()
	}
	e.repaint()
}
