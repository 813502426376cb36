/*
Package protocol defines the JSON envelope exchanged over the board's
websocket connection, in both directions.

Client to server, "message" is a JSON string: the serialized shape for
CHAT, {id, shape} for UPDATE and {id} for DELETE. Server to client, CHAT,
UPDATE and DELETE carry the persisted Record as an object and ERROR carries
a human-readable string.
*/
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"drawify/internal/app/shape"
)

// Type is the event tag of an Envelope.
type Type string

const (
	TypeJoinRoom  Type = "JOIN_ROOM"
	TypeLeaveRoom Type = "LEAVE_ROOM"
	TypeChat      Type = "CHAT"
	TypeUpdate    Type = "UPDATE"
	TypeDelete    Type = "DELETE"
	TypeError     Type = "ERROR"
)

// Valid reports whether t is one of the known event types.
func (t Type) Valid() bool {
	switch t {
	case TypeJoinRoom, TypeLeaveRoom, TypeChat, TypeUpdate, TypeDelete, TypeError:
		return true
	}
	return false
}

// MaxMessageSize is the largest encoded envelope either side accepts.
const MaxMessageSize = 1 << 20

var (
	// ErrMessageTooLarge is returned for an envelope that encodes to more
	// than MaxMessageSize bytes.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrUnknownType is returned for envelopes whose type is not recognized.
	ErrUnknownType = errors.New("unknown message type")

	// ErrMissingMessage is returned when a payload is required but absent.
	ErrMissingMessage = errors.New("message field is missing")
)

// Envelope is one message on the wire.
type Envelope struct {
	Type    Type            `json:"type"`
	RoomID  int64           `json:"roomId"`
	Message json.RawMessage `json:"message,omitempty"`
}

// UnmarshalJSON accepts roomId as either a number or a numeric string,
// since browser clients often forward route parameters verbatim.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    Type            `json:"type"`
		RoomID  json.RawMessage `json:"roomId"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	roomID, err := parseRoomID(raw.RoomID)
	if err != nil {
		return err
	}

	*e = Envelope{Type: raw.Type, RoomID: roomID, Message: raw.Message}
	return nil
}

func parseRoomID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid roomId %q", s)
		}
		return id, nil
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("invalid roomId: %w", err)
	}
	return id, nil
}

// Decode parses a raw frame and checks its type.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	if !env.Type.Valid() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return env, nil
}

// Text returns the message as text. A JSON string is unquoted; any other
// JSON value is returned verbatim, so object payloads are tolerated too.
func (e Envelope) Text() (string, error) {
	raw := bytes.TrimSpace(e.Message)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrMissingMessage
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

// decodeInto unmarshals the message text into dst.
func (e Envelope) decodeInto(dst any) error {
	text, err := e.Text()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), dst)
}

func quoted(v any) (json.RawMessage, error) {
	inner, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// UpdatePayload is the client's request to replace a shape's geometry.
type UpdatePayload struct {
	ID    int64       `json:"id"`
	Shape shape.Shape `json:"shape"`
}

// DeletePayload names the shape to remove.
type DeletePayload struct {
	ID int64 `json:"id"`
}

// Record is a persisted chat record: one live shape in a room. Message is
// the serialized shape text.
type Record struct {
	ID      int64  `json:"id"`
	RoomID  int64  `json:"roomId"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Snapshot is the body of the "list chats for room" read.
type Snapshot struct {
	Chats []Record `json:"chats"`
}

// Shape decodes the record's shape.
func (r Record) Shape() (shape.Shape, error) {
	return shape.Decode(r.Message)
}

// NewJoin builds a JOIN_ROOM request.
func NewJoin(roomID int64) Envelope {
	return Envelope{Type: TypeJoinRoom, RoomID: roomID}
}

// NewLeave builds a LEAVE_ROOM request.
func NewLeave(roomID int64) Envelope {
	return Envelope{Type: TypeLeaveRoom, RoomID: roomID}
}

// NewCreate builds a CHAT request carrying a new shape.
func NewCreate(roomID int64, s shape.Shape) (Envelope, error) {
	msg, err := quoted(s)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: TypeChat, RoomID: roomID, Message: msg}, nil
}

// NewUpdate builds an UPDATE request for shape id.
func NewUpdate(roomID, id int64, s shape.Shape) (Envelope, error) {
	msg, err := quoted(UpdatePayload{ID: id, Shape: s})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: TypeUpdate, RoomID: roomID, Message: msg}, nil
}

// NewDelete builds a DELETE request for shape id.
func NewDelete(roomID, id int64) (Envelope, error) {
	msg, err := quoted(DeletePayload{ID: id})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: TypeDelete, RoomID: roomID, Message: msg}, nil
}

// NewRecordEvent builds the authoritative server broadcast for rec.
func NewRecordEvent(t Type, rec Record) (Envelope, error) {
	msg, err := json.Marshal(rec)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, RoomID: rec.RoomID, Message: msg}, nil
}

// NewError builds an ERROR event with a human-readable message.
func NewError(roomID int64, text string) Envelope {
	msg, _ := json.Marshal(text)
	return Envelope{Type: TypeError, RoomID: roomID, Message: msg}
}

// Shape decodes the shape carried by a CHAT request.
func (e Envelope) Shape() (shape.Shape, error) {
	text, err := e.Text()
	if err != nil {
		return shape.Shape{}, err
	}
	return shape.Decode(text)
}

// Update decodes the payload of an UPDATE request.
func (e Envelope) Update() (UpdatePayload, error) {
	var p UpdatePayload
	if err := e.decodeInto(&p); err != nil {
		return UpdatePayload{}, err
	}
	if p.Shape.Kind == "" {
		return UpdatePayload{}, fmt.Errorf("%w: update without shape", ErrMissingMessage)
	}
	return p, nil
}

// Delete decodes the payload of a DELETE request.
func (e Envelope) Delete() (DeletePayload, error) {
	var p DeletePayload
	err := e.decodeInto(&p)
	return p, err
}

// Record decodes the record carried by a server CHAT, UPDATE or DELETE.
func (e Envelope) Record() (Record, error) {
	var r Record
	err := e.decodeInto(&r)
	return r, err
}
