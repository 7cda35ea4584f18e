// Package preview rasterises the copper of a board so a generated winding
// can be checked without opening KiCad.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/pcb"
)

// MaxSide limits the width and height of a rendered image in pixels.
const MaxSide = 16384

// circleSteps is the number of polygon edges used for a round shape.
const circleSteps = 48

// ErrNothingToDraw is returned for a board without tracks, vias or circles.
var ErrNothingToDraw = errors.New("board has nothing to draw")

// Options controls the raster size.
type Options struct {
	PixelsPerMM float64
	Margin      float64 // mm added around the board's bounding box
}

var (
	background = color.NRGBA{R: 0x00, G: 0x10, B: 0x23, A: 0xff}
	viaColor   = color.NRGBA{R: 0xc2, G: 0xc2, B: 0xc2, A: 0xff}

	// LayerColors follows KiCad's default board colours. Layers are painted
	// back to front in the order of drawOrder.
	LayerColors = map[emit.Layer]color.NRGBA{
		emit.BackCopper:   {R: 0x4d, G: 0x7f, B: 0xc4, A: 0xc0},
		emit.Inner2Copper: {R: 0xc2, G: 0x34, B: 0xc2, A: 0xc0},
		emit.Inner1Copper: {R: 0x7f, G: 0xc8, B: 0x7f, A: 0xc0},
		emit.FrontCopper:  {R: 0xc8, G: 0x34, B: 0x34, A: 0xc0},
		emit.EdgeCuts:     {R: 0xd0, G: 0xd2, B: 0xcd, A: 0xff},
	}
	drawOrder = []emit.Layer{emit.BackCopper, emit.Inner2Copper, emit.Inner1Copper, emit.FrontCopper, emit.EdgeCuts}
)

// canvas maps board millimetres to pixels.
type canvas struct {
	dst    *image.RGBA
	ras    *vector.Rasterizer
	origin emit.Point // board coordinate of pixel (0, 0)
	scale  float64
}

// Render draws the board's tracks, circles and vias. Items on layers
// without a colour are skipped.
func Render(board *pcb.Board, opts Options) (*image.RGBA, error) {
	if !(opts.PixelsPerMM > 0) || math.IsInf(opts.PixelsPerMM, 0) {
		return nil, fmt.Errorf("pixels per mm %v must be positive", opts.PixelsPerMM)
	}
	if !(opts.Margin >= 0) {
		return nil, fmt.Errorf("margin %v must not be negative", opts.Margin)
	}

	box, ok := board.GetBoundingBox()
	if !ok {
		return nil, ErrNothingToDraw
	}

	w := pixels(box.URx-box.LLx+2*opts.Margin, opts.PixelsPerMM)
	h := pixels(box.URy-box.LLy+2*opts.Margin, opts.PixelsPerMM)
	if w > MaxSide || h > MaxSide {
		return nil, fmt.Errorf("image of %dx%d pixels exceeds %d per side", w, h, MaxSide)
	}
	w, h = max(w, 1), max(h, 1)

	c := &canvas{
		dst:    image.NewRGBA(image.Rect(0, 0, w, h)),
		ras:    vector.NewRasterizer(w, h),
		origin: emit.Point{X: box.LLx - opts.Margin, Y: box.LLy - opts.Margin},
		scale:  opts.PixelsPerMM,
	}
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, layer := range drawOrder {
		c.ras.Reset(w, h)
		for _, t := range board.Tracks {
			if emit.Layer(t.Layer) == layer {
				c.stroke(t.Start, t.End, t.Width/2)
			}
		}
		for _, circle := range board.Circles {
			if emit.Layer(circle.Layer) == layer {
				c.ring(circle.Center, circle.Radius(), circle.Width/2)
			}
		}
		c.fill(LayerColors[layer])
	}

	c.ras.Reset(w, h)
	for _, v := range board.Vias {
		c.ring(v.Position, (v.Size+v.Drill)/4, (v.Size-v.Drill)/4)
	}
	c.fill(viaColor)

	return c.dst, nil
}

// pixels rounds a length up to whole pixels, ignoring float noise.
func pixels(mm, scale float64) int {
	return int(math.Ceil(mm*scale - 1e-6))
}

func (c *canvas) fill(col color.NRGBA) {
	c.ras.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *canvas) px(p emit.Point) (float32, float32) {
	q := p.Sub(c.origin).Mul(c.scale)
	return float32(q.X), float32(q.Y)
}

// All shapes are wound the same way so overlapping copper on one layer
// adds up instead of cancelling.
func (c *canvas) polygon(pts []emit.Point) {
	c.ras.MoveTo(c.px(pts[0]))
	for _, p := range pts[1:] {
		c.ras.LineTo(c.px(p))
	}
	c.ras.ClosePath()
}

// circlePoints returns a polygon approximating a circle, wound the same way
// as stroke's rectangles when reverse is false.
func circlePoints(center emit.Point, r float64, reverse bool) []emit.Point {
	pts := make([]emit.Point, circleSteps)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / circleSteps
		if reverse {
			t = -t
		}
		pts[i] = center.Add(emit.Point{X: math.Cos(t), Y: -math.Sin(t)}.Mul(r))
	}
	return pts
}

// stroke draws a segment with round caps.
func (c *canvas) stroke(a, b emit.Point, hw float64) {
	if hw <= 0 {
		return
	}
	d := b.Sub(a)
	if l := d.Length(); l > 0 {
		n := emit.Point{X: -d.Y, Y: d.X}.Mul(hw / l)
		c.polygon([]emit.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)})
	}
	c.polygon(circlePoints(a, hw, false))
	c.polygon(circlePoints(b, hw, false))
}

// ring draws an annulus of centre-line radius r and half-width hw. The
// inner edge is wound backwards so it cuts a hole.
func (c *canvas) ring(center emit.Point, r, hw float64) {
	if hw <= 0 {
		return
	}
	c.polygon(circlePoints(center, r+hw, false))
	if inner := r - hw; inner > 0 {
		c.polygon(circlePoints(center, inner, true))
	}
}
