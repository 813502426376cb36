package export

import (
	"fmt"

	"github.com/mazznoer/csscolorparser"
)

// rgba is a parsed CSS color. Channels are 0-255, alpha is 0-1.
type rgba struct {
	R, G, B int
	A       float64
}

func (c rgba) transparent() bool { return c.A <= 0 }

// parseColor accepts any CSS color string: hex forms, rgb(), hsl() and names.
func parseColor(s string) (rgba, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return rgba{}, fmt.Errorf("parse color %q: %w", s, err)
	}

	r, g, b, _ := c.RGBA255()
	return rgba{R: int(r), G: int(g), B: int(b), A: c.A}, nil
}
