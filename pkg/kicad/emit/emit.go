// Package emit formats board primitives as KiCad s-expression records.
//
// Every function here is pure formatting: coordinates are written with six
// decimals in millimetres, layer names and net numbers are copied verbatim.
// Records carry no trailing newline.
package emit

import (
	"fmt"
	"strconv"

	"seehuhn.de/go/geom/vec"
)

// Point is a position on the board in millimetres.
type Point = vec.Vec2

// Layer is a KiCad layer name.
type Layer string

// Layers used by the winding generator.
const (
	FrontCopper  Layer = "F.Cu"
	Inner1Copper Layer = "In1.Cu"
	Inner2Copper Layer = "In2.Cu"
	BackCopper   Layer = "B.Cu"
	EdgeCuts     Layer = "Edge.Cuts"
)

// CopperLayers lists the four conductive layers from front to back.
var CopperLayers = []Layer{FrontCopper, Inner1Copper, Inner2Copper, BackCopper}

// Valid reports whether l is one of the known layer names.
func (l Layer) Valid() bool {
	switch l {
	case FrontCopper, Inner1Copper, Inner2Copper, BackCopper, EdgeCuts:
		return true
	}
	return false
}

// IsCopper reports whether l is a conductive layer.
func (l Layer) IsCopper() bool {
	return l.Valid() && l != EdgeCuts
}

// Track describes the trace a segment is drawn with.
type Track struct {
	Width float64 // Track width in mm
	Layer Layer
	Net   int
}

// OnLayer returns a copy of t drawn on layer.
func (t Track) OnLayer(layer Layer) Track {
	t.Layer = layer
	return t
}

// ViaPad describes a through via. Vias always span F.Cu to B.Cu.
type ViaPad struct {
	Size  float64 // Pad diameter in mm
	Drill float64 // Drill diameter in mm
	Net   int
}

// Segment formats a straight copper segment.
func Segment(start, end Point, track Track) string {
	return fmt.Sprintf("(segment (start %.6f %.6f) (end %.6f %.6f) (width %s) (layer %s) (net %d))",
		start.X, start.Y, end.X, end.Y, number(track.Width), track.Layer, track.Net)
}

// Via formats a through via at the given position.
func Via(at Point, pad ViaPad) string {
	return fmt.Sprintf("(via (at %.6f %.6f) (size %s) (drill %s) (layers %s %s) (net %d))",
		at.X, at.Y, number(pad.Size), number(pad.Drill), FrontCopper, BackCopper, pad.Net)
}

// Circle formats a graphic circle. KiCad stores circles as a center and a
// point on the circumference; the point is placed on the +X axis.
func Circle(center Point, radius float64, layer Layer, width float64) string {
	return fmt.Sprintf("(gr_circle (center %.6f %.6f) (end %.6f %.6f) (layer %s) (width %s))",
		center.X, center.Y, center.X+radius, center.Y, layer, number(width))
}

// number writes a scalar in its shortest exact decimal form (0.15, not 0.150000).
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
