package shape

import "fmt"

// FillStyle selects how a closed shape's interior is painted.
type FillStyle string

const (
	FillSolid      FillStyle = "solid"
	FillZigzag     FillStyle = "zigzag"
	FillCrossHatch FillStyle = "cross-hatch"
	FillDashed     FillStyle = "dashed"
)

// Config is the visual style of a shape. Colors are CSS color strings.
type Config struct {
	Roughness   float64   `json:"roughness"`
	Fill        string    `json:"fill"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	FillStyle   FillStyle `json:"fillStyle"`
}

// DefaultConfig is the style applied when none is chosen: a thin black
// outline over a transparent fill.
func DefaultConfig() Config {
	return Config{
		Roughness:   1,
		Fill:        "rgba(0,0,0,0)",
		Stroke:      "#000000",
		StrokeWidth: 1,
		FillStyle:   FillSolid,
	}
}

// Validate checks roughness >= 0, strokeWidth > 0 and a known fill style.
func (c Config) Validate() error {
	if c.Roughness < 0 {
		return fmt.Errorf("%w: roughness must be >= 0", ErrInvalidGeometry)
	}
	if c.StrokeWidth <= 0 {
		return fmt.Errorf("%w: strokeWidth must be > 0", ErrInvalidGeometry)
	}

	switch c.FillStyle {
	case FillSolid, FillZigzag, FillCrossHatch, FillDashed:
		return nil
	}
	return fmt.Errorf("%w: unknown fill style %q", ErrInvalidGeometry, c.FillStyle)
}
