package export

import (
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"drawify/internal/app/canvas"
	"drawify/internal/app/shape"
	"drawify/internal/pkg/logx"
)

// Page geometry in points, A4 landscape.
const (
	pageWidth  = 841.89
	pageHeight = 595.28
	pageMargin = 36.0
	titleSpace = 24.0

	// hatchGap is the model-space distance between hatch lines.
	hatchGap = 8.0
)

var (
	selectionColor = rgba{R: 0x4a, G: 0x90, B: 0xe2, A: 1}
	fallbackStroke = rgba{A: 1}
)

// pdfSurface paints shapes onto one gofpdf page. It implements
// canvas.Canvas, so the client render pass drives it unchanged.
type pdfSurface struct {
	doc   *gofpdf.Fpdf
	title string
	view  canvas.Transform
}

func newPDFSurface(title string) *pdfSurface {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetTitle(title, true)
	doc.SetCreator("drawify", true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")

	return &pdfSurface{doc: doc, title: title, view: canvas.Identity()}
}

// Clear starts a fresh page with the document title in the header.
func (p *pdfSurface) Clear() {
	p.doc.AddPage()
	p.doc.SetFont("Helvetica", "", 10)
	p.doc.SetTextColor(120, 120, 120)
	p.doc.Text(pageMargin, pageMargin-8, p.title)
}

func (p *pdfSurface) SetTransform(t canvas.Transform) { p.view = t }

func (p *pdfSurface) at(pt shape.Point) shape.Point { return p.view.ToScreen(pt) }

func (p *pdfSurface) length(v float64) float64 { return v * p.view.Scale }

func (p *pdfSurface) stroke(cfg shape.Config) {
	c, err := parseColor(cfg.Stroke)
	if err != nil {
		logx.Debug("unparseable stroke color, using black", "color", cfg.Stroke)
		c = fallbackStroke
	}
	p.doc.SetDrawColor(c.R, c.G, c.B)
	p.doc.SetAlpha(c.A, "Normal")
	p.doc.SetLineWidth(p.length(cfg.StrokeWidth))
	p.doc.SetDashPattern([]float64{}, 0)
}

// fill parses the fill color and reports whether the interior is painted.
func (p *pdfSurface) fill(cfg shape.Config) (rgba, bool) {
	c, err := parseColor(cfg.Fill)
	if err != nil || c.transparent() {
		return rgba{}, false
	}
	return c, true
}

// closed paints a rect or circle: the fill first, then the outline.
func (p *pdfSurface) closed(cfg shape.Config, solid func(style string), clip func(), min, max shape.Point) {
	if c, ok := p.fill(cfg); ok {
		if cfg.FillStyle == shape.FillSolid {
			p.doc.SetFillColor(c.R, c.G, c.B)
			p.doc.SetAlpha(c.A, "Normal")
			solid("F")
		} else {
			clip()
			p.hatch(cfg.FillStyle, c, min, max)
			p.doc.ClipEnd()
		}
	}

	p.stroke(cfg)
	solid("D")
}

func (p *pdfSurface) Rect(x, y, width, height float64, cfg shape.Config) {
	min := p.at(shape.Pt(math.Min(x, x+width), math.Min(y, y+height)))
	w, h := p.length(math.Abs(width)), p.length(math.Abs(height))
	max := min.Add(shape.Pt(w, h))

	p.closed(cfg,
		func(style string) { p.doc.Rect(min.X, min.Y, w, h, style) },
		func() { p.doc.ClipRect(min.X, min.Y, w, h, false) },
		min, max)
}

func (p *pdfSurface) Circle(center shape.Point, radius float64, cfg shape.Config) {
	c := p.at(center)
	r := p.length(radius)

	p.closed(cfg,
		func(style string) { p.doc.Circle(c.X, c.Y, r, style) },
		func() { p.doc.ClipCircle(c.X, c.Y, r, false) },
		c.Sub(shape.Pt(r, r)), c.Add(shape.Pt(r, r)))
}

func (p *pdfSurface) Line(from, to shape.Point, cfg shape.Config) {
	a, b := p.at(from), p.at(to)
	p.stroke(cfg)
	p.doc.Line(a.X, a.Y, b.X, b.Y)
}

func (p *pdfSurface) Path(points []shape.Point, cfg shape.Config) {
	if len(points) == 0 {
		return
	}
	p.stroke(cfg)

	start := p.at(points[0])
	p.doc.MoveTo(start.X, start.Y)
	for _, pt := range points[1:] {
		q := p.at(pt)
		p.doc.LineTo(q.X, q.Y)
	}
	p.doc.DrawPath("D")
}

func (p *pdfSurface) Outline(min, max shape.Point) {
	a, b := p.at(min), p.at(max)
	p.doc.SetDrawColor(selectionColor.R, selectionColor.G, selectionColor.B)
	p.doc.SetAlpha(1, "Normal")
	p.doc.SetLineWidth(1)
	p.doc.SetDashPattern([]float64{5, 5}, 0)
	p.doc.Rect(a.X, a.Y, b.X-a.X, b.Y-a.Y, "D")
	p.doc.SetDashPattern([]float64{}, 0)
}

func (p *pdfSurface) Handle(h shape.Handle) {
	c := p.at(h.Center)
	w, ht := h.Width, h.Height
	p.doc.SetFillColor(255, 255, 255)
	p.doc.SetDrawColor(selectionColor.R, selectionColor.G, selectionColor.B)
	p.doc.SetAlpha(1, "Normal")
	p.doc.SetLineWidth(1)
	p.doc.Rect(c.X-w/2, c.Y-ht/2, w, ht, "FD")
}

// hatch fills the page-space box min..max with diagonal lines in color c.
// The caller has already clipped to the shape.
func (p *pdfSurface) hatch(style shape.FillStyle, c rgba, min, max shape.Point) {
	p.doc.SetDrawColor(c.R, c.G, c.B)
	p.doc.SetAlpha(c.A, "Normal")
	p.doc.SetLineWidth(math.Max(0.5, p.length(1)))

	gap := math.Max(2, p.length(hatchGap))
	w, h := max.X-min.X, max.Y-min.Y

	switch style {
	case shape.FillZigzag:
		p.doc.SetDashPattern([]float64{}, 0)
		x := min.X - h
		p.doc.MoveTo(x, max.Y)
		for up := true; x <= max.X+h; up = !up {
			x += gap
			if up {
				p.doc.LineTo(x, min.Y)
			} else {
				p.doc.LineTo(x, max.Y)
			}
		}
		p.doc.DrawPath("D")
		return

	case shape.FillDashed:
		p.doc.SetDashPattern([]float64{gap / 2, gap / 3}, 0)
	default:
		p.doc.SetDashPattern([]float64{}, 0)
	}

	for off := -h; off <= w; off += gap {
		p.doc.Line(min.X+off, max.Y, min.X+off+h, min.Y)
	}
	if style == shape.FillCrossHatch {
		for off := -h; off <= w; off += gap {
			p.doc.Line(min.X+off, min.Y, min.X+off+h, max.Y)
		}
	}
	p.doc.SetDashPattern([]float64{}, 0)
}

func (p *pdfSurface) output(w io.Writer) error {
	return p.doc.Output(w)
}

// fitTransform centres the bounding box of items in the printable area,
// shrinking it when needed. Drawings are never enlarged.
func fitTransform(items []canvas.Item) canvas.Transform {
	areaW := pageWidth - 2*pageMargin
	areaH := pageHeight - 2*pageMargin - titleSpace
	origin := shape.Pt(pageMargin, pageMargin+titleSpace)

	if len(items) == 0 {
		return canvas.Transform{Offset: origin, Scale: 1}
	}

	min, max := shape.Bounds(items[0].Shape)
	for _, it := range items[1:] {
		lo, hi := shape.Bounds(it.Shape)
		min = shape.Pt(math.Min(min.X, lo.X), math.Min(min.Y, lo.Y))
		max = shape.Pt(math.Max(max.X, hi.X), math.Max(max.Y, hi.Y))
	}

	bw, bh := math.Max(max.X-min.X, 1), math.Max(max.Y-min.Y, 1)
	scale := math.Min(1, math.Min(areaW/bw, areaH/bh))

	offset := shape.Pt(
		origin.X+(areaW-bw*scale)/2-min.X*scale,
		origin.Y+(areaH-bh*scale)/2-min.Y*scale,
	)
	return canvas.Transform{Offset: offset, Scale: scale}
}
