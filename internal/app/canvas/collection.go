package canvas

import (
	"fmt"

	"drawify/internal/app/protocol"
	"drawify/internal/app/shape"
)

// Item is one persisted shape as known to this client.
type Item struct {
	ID     int64
	RoomID int64
	UserID string
	Shape  shape.Shape
}

// ItemFromRecord decodes a server record.
func ItemFromRecord(rec protocol.Record) (Item, error) {
	s, err := rec.Shape()
	if err != nil {
		return Item{}, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	return Item{ID: rec.ID, RoomID: rec.RoomID, UserID: rec.UserID, Shape: s}, nil
}

// Collection keeps the room's shapes in arrival order. Arrival order is
// also hit-test and paint order.
type Collection struct {
	items []Item
}

// Len returns the number of shapes.
func (c *Collection) Len() int { return len(c.items) }

func (c *Collection) indexOf(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Put appends it, or replaces the shape in place when the id is already
// known. Duplicate echoes never create duplicate entries.
func (c *Collection) Put(it Item) {
	if i := c.indexOf(it.ID); i >= 0 {
		c.items[i] = it
		return
	}
	c.items = append(c.items, it)
}

// Replace swaps the shape of id. It reports false for unknown ids.
func (c *Collection) Replace(id int64, s shape.Shape) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items[i].Shape = s
	return true
}

// Remove drops id. It reports false for unknown ids.
func (c *Collection) Remove(id int64) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Get returns the item with id.
func (c *Collection) Get(id int64) (Item, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

// HitTest returns the first item, in arrival order, whose shape contains p.
// tolerance is the line hit distance in model units.
func (c *Collection) HitTest(p shape.Point, tolerance float64) (Item, bool) {
	for _, it := range c.items {
		if shape.HitTestWithin(it.Shape, p, tolerance) {
			return it, true
		}
	}
	return Item{}, false
}

// Items returns a copy of the items in arrival order.
func (c *Collection) Items() []Item {
	return append([]Item(nil), c.items...)
}
