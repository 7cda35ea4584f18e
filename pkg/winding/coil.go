package winding

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// CoilSpec places one four-layer coil. Angles are in degrees.
//
// Current enters on LayerStack[0] at TopAngle, spirals in to the inner via,
// out again on LayerStack[1] to the outer via, in on LayerStack[2] to the
// second inner via, and leaves on LayerStack[3] at BottomAngle.
type CoilSpec struct {
	Center       emit.Point
	TopAngle     float64
	ConnectAngle float64
	BottomAngle  float64
	Rotation     int
	LayerStack   []emit.Layer
}

// Validate checks the coil placement and its layer stack.
func (c CoilSpec) Validate() error {
	var ch checks
	ch.finite("coil.center", c.Center.X, c.Center.Y)
	ch.finite("coil.top_angle", c.TopAngle)
	ch.finite("coil.connect_angle", c.ConnectAngle)
	ch.finite("coil.bottom_angle", c.BottomAngle)
	ch.rotation("coil.rotation", c.Rotation)
	if ch.err != nil {
		return ch.err
	}
	return ValidateStack(c.LayerStack)
}

// ValidateStack checks that stack holds each of four distinct copper layers.
func ValidateStack(stack []emit.Layer) error {
	if len(stack) != 4 {
		return invalid("coil.layer_stack", len(stack), "must hold exactly 4 layers")
	}
	seen := make(map[emit.Layer]bool, 4)
	for i, l := range stack {
		field := fmt.Sprintf("coil.layer_stack[%d]", i)
		if !l.IsCopper() {
			return invalid(field, l, "not a copper layer")
		}
		if seen[l] {
			return invalid(field, l, "layer used twice")
		}
		seen[l] = true
	}
	return nil
}

// Clearances are the via placement distances of a coil, in mm.
type Clearances struct {
	InnerViaOffset    float64 // inner vias sit this far either side of the coil centre
	OuterViaClearance float64 // outer via sits this far beyond the estimated outer radius
	LinkClearance     float64 // gap between the coil ring and the connecting arcs
}

// DefaultClearances match a 0.45 mm pad with a 0.3 mm drill.
func DefaultClearances() Clearances {
	return Clearances{
		InnerViaOffset:    0.35,
		OuterViaClearance: 0.3,
		LinkClearance:     0.4,
	}
}

// Validate checks the clearances against the via pad they place.
func (cl Clearances) Validate(pad emit.ViaPad) error {
	var c checks
	c.positive("via.size", pad.Size)
	c.positive("via.drill", pad.Drill)
	if c.err == nil && pad.Drill >= pad.Size {
		c.fail("via.drill", pad.Drill, "must be smaller than the pad size")
	}
	c.positive("clearance.inner_via_offset", cl.InnerViaOffset)
	c.nonNegative("clearance.outer_via_clearance", cl.OuterViaClearance)
	c.nonNegative("clearance.link_clearance", cl.LinkClearance)
	if c.err == nil && 2*cl.InnerViaOffset < pad.Size {
		c.fail("clearance.inner_via_offset", cl.InnerViaOffset, "inner via pads overlap")
	}
	return c.err
}

// OuterRadiusEstimate bounds the radius of a spiral with the given number
// of full turns plus any partial last turn.
func OuterRadiusEstimate(turns int, width, pitch, startRadius float64) float64 {
	return float64(turns+1)*(width+pitch) + startRadius
}

// CoilLayout is the generated copper of one coil: two inner vias, the
// outer via, and one trace per layer of the stack.
type CoilLayout struct {
	Vias   []string
	Traces [][]string
	Layers []emit.Layer
}

// Records returns the vias followed by the four traces.
func (l *CoilLayout) Records() []string {
	records := append([]string(nil), l.Vias...)
	for _, t := range l.Traces {
		records = append(records, t...)
	}
	return records
}

func (l *CoilLayout) String() string {
	return joinRecords(l.Records())
}

// Coil generates one four-layer coil. spiral supplies StartRadius, Pitch and
// Turns; its centre, angles and rotation are replaced per layer.
func Coil(coil CoilSpec, spiral SpiralSpec, track emit.Track, pad emit.ViaPad, cl Clearances) (*CoilLayout, error) {
	if err := coil.Validate(); err != nil {
		return nil, err
	}
	if err := cl.Validate(pad); err != nil {
		return nil, err
	}

	rot := coil.Rotation
	connect := NormalizeDegrees(coil.ConnectAngle)
	fr := float64(rot)
	// Layers 1 and 2 sweep just far enough to finish on the connect angle.
	passes := [4]SpiralSpec{
		spiral.Pass(coil.Center, 180, NormalizeDegrees(coil.TopAngle), rot),
		spiral.Pass(coil.Center, 180, NormalizeDegrees(fr*(180-connect)), -rot),
		spiral.Pass(coil.Center, 0, NormalizeDegrees(fr*connect), rot),
		spiral.Pass(coil.Center, 0, NormalizeDegrees(coil.BottomAngle), -rot),
	}

	// The outer via sits on the connect angle just outside the coil, and
	// both traces run radially out to it.
	outer := OuterRadiusEstimate(spiral.Turns, track.Width, spiral.Pitch, spiral.StartRadius)
	outerVia := polar(coil.Center, outer+cl.OuterViaClearance, radians(connect))

	layout := &CoilLayout{
		Vias: []string{
			emit.Via(emit.Point{X: coil.Center.X, Y: coil.Center.Y + cl.InnerViaOffset}, pad),
			emit.Via(emit.Point{X: coil.Center.X, Y: coil.Center.Y - cl.InnerViaOffset}, pad),
			emit.Via(outerVia, pad),
		},
		Layers: append([]emit.Layer(nil), coil.LayerStack...),
	}

	for i, pass := range passes {
		t := track.OnLayer(coil.LayerStack[i])
		pts, err := spiralPoints(pass, t.Width)
		if err != nil {
			return nil, fmt.Errorf("failed to generate layer %d (%s): %w", i, t.Layer, err)
		}
		if i == 1 || i == 2 {
			pts = append(pts, outerVia)
		}
		layout.Traces = append(layout.Traces, polyline(pts, t))
	}

	Logger().Debug("generated coil",
		zap.Float64("x", coil.Center.X),
		zap.Float64("y", coil.Center.Y),
		zap.Int("rotation", rot),
		zap.Float64("outer_via_angle", connect),
		zap.Int("records", len(layout.Records())))

	return layout, nil
}

// FourLayerCoil generates one coil as record text, one record per line.
func FourLayerCoil(coil CoilSpec, spiral SpiralSpec, track emit.Track, pad emit.ViaPad, cl Clearances) (string, error) {
	layout, err := Coil(coil, spiral, track, pad, cl)
	if err != nil {
		return "", err
	}
	return layout.String(), nil
}

func joinRecords(records []string) string {
	if len(records) == 0 {
		return ""
	}
	return strings.Join(records, "\n") + "\n"
}
