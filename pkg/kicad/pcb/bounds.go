package pcb

import (
	"math"

	"seehuhn.de/go/geom/rect"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// GetBoundingBox calculates the bounding box of the board's tracks, vias
// and circles, including track widths and via pads. LL holds the minimum
// coordinates and UR the maximum. ok is false for a board with no items.
func (b *Board) GetBoundingBox() (box rect.Rect, ok bool) {
	box = rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}

	// Expand by a disc of radius r around p
	expand := func(p emit.Point, r float64) {
		box.LLx = math.Min(box.LLx, p.X-r)
		box.LLy = math.Min(box.LLy, p.Y-r)
		box.URx = math.Max(box.URx, p.X+r)
		box.URy = math.Max(box.URy, p.Y+r)
		ok = true
	}

	for _, track := range b.Tracks {
		expand(track.Start, track.Width/2)
		expand(track.End, track.Width/2)
	}

	for _, via := range b.Vias {
		expand(via.Position, via.Size/2)
	}

	for _, circle := range b.Circles {
		expand(circle.Center, circle.Radius()+circle.Width/2)
	}

	if !ok {
		return rect.Rect{}, false
	}
	return box, true
}
