/*
Package shape implements the geometric primitives drawn on a board.

This file holds the wire codec. Each kind serializes only its own geometric
fields next to "kind" and "config"; decoding rejects shapes whose required
fields are missing and fills in DefaultConfig when "config" is absent.
*/
package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type rectWire struct {
	Kind   Kind    `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Config Config  `json:"config"`
}

type circleWire struct {
	Kind   Kind    `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Config Config  `json:"config"`
}

type lineWire struct {
	Kind   Kind    `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Config Config  `json:"config"`
}

type pencilWire struct {
	Kind    Kind    `json:"kind"`
	Strokes []Point `json:"strokes"`
	Config  Config  `json:"config"`
}

// inboundWire accepts the union of all variant fields. Pointers tell a
// missing field apart from a zero value.
type inboundWire struct {
	Kind    Kind             `json:"kind"`
	X       *float64         `json:"x"`
	Y       *float64         `json:"y"`
	Width   *float64         `json:"width"`
	Height  *float64         `json:"height"`
	Radius  *float64         `json:"radius"`
	X2      *float64         `json:"x2"`
	Y2      *float64         `json:"y2"`
	Strokes []Point          `json:"strokes"`
	Config  *json.RawMessage `json:"config"`
}

// MarshalJSON encodes s in its variant's wire form.
func (s Shape) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindRect:
		return json.Marshal(rectWire{s.Kind, s.X, s.Y, s.Width, s.Height, s.Config})
	case KindCircle:
		return json.Marshal(circleWire{s.Kind, s.X, s.Y, s.Radius, s.Config})
	case KindLine:
		return json.Marshal(lineWire{s.Kind, s.X, s.Y, s.X2, s.Y2, s.Config})
	case KindPencil:
		strokes := s.Strokes
		if strokes == nil {
			strokes = []Point{}
		}
		return json.Marshal(pencilWire{s.Kind, strokes, s.Config})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
}

// UnmarshalJSON decodes and validates a wire shape.
func (s *Shape) UnmarshalJSON(data []byte) error {
	var w inboundWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Shape{Kind: w.Kind, Config: DefaultConfig()}
	if w.Config != nil && !bytes.Equal(bytes.TrimSpace(*w.Config), []byte("null")) {
		if err := json.Unmarshal(*w.Config, &out.Config); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}

	var err error
	switch w.Kind {
	case KindRect:
		err = requireFields(map[string]*float64{"x": w.X, "y": w.Y, "width": w.Width, "height": w.Height})
		if err == nil {
			out.X, out.Y, out.Width, out.Height = *w.X, *w.Y, *w.Width, *w.Height
		}
	case KindCircle:
		err = requireFields(map[string]*float64{"x": w.X, "y": w.Y, "radius": w.Radius})
		if err == nil {
			out.X, out.Y, out.Radius = *w.X, *w.Y, *w.Radius
		}
	case KindLine:
		err = requireFields(map[string]*float64{"x": w.X, "y": w.Y, "x2": w.X2, "y2": w.Y2})
		if err == nil {
			out.X, out.Y, out.X2, out.Y2 = *w.X, *w.Y, *w.X2, *w.Y2
		}
	case KindPencil:
		out.Strokes = w.Strokes
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, w.Kind)
	}
	if err != nil {
		return err
	}

	if err := Validate(out); err != nil {
		return err
	}

	*s = out
	return nil
}

func requireFields(fields map[string]*float64) error {
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("%w: missing %q", ErrInvalidGeometry, name)
		}
	}
	return nil
}

// Encode returns the serialized text form of s, as stored in chat records
// and carried inside protocol messages.
func Encode(s Shape) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses the serialized text form of a shape.
func Decode(text string) (Shape, error) {
	var s Shape
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Shape{}, err
	}
	return s, nil
}

// DecodeList parses a JSON array of shape descriptors, such as the output
// of a shape suggestion service. Entries without a config get DefaultConfig.
func DecodeList(data []byte) ([]Shape, error) {
	var shapes []Shape
	if err := json.Unmarshal(data, &shapes); err != nil {
		return nil, err
	}
	return shapes, nil
}
