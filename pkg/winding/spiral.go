package winding

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// Spiral resolution: revolution j is split into BaseSegments+SegmentStep*(j+1)
// segments, so outer turns get more segments as their circumference grows.
const (
	BaseSegments = 20
	SegmentStep  = 4
)

// SpiralSpec describes one pass of an Archimedean spiral, from StartRadius
// outward. The path makes Turns full revolutions and then sweeps FinalAngle
// more degrees, so it ends FinalAngle degrees past StartAngle in the
// direction of Rotation.
type SpiralSpec struct {
	Center      emit.Point
	StartRadius float64 // mm, radius of the first point
	Pitch       float64 // mm, copper-free gap between neighbouring turns
	StartAngle  float64 // degrees
	FinalAngle  float64 // degrees, normalized to [0, 360)
	Turns       int
	Rotation    int // +1 or -1
}

// Pass returns a copy of s re-centred and re-oriented for one coil layer.
func (s SpiralSpec) Pass(center emit.Point, startAngle, finalAngle float64, rotation int) SpiralSpec {
	s.Center = center
	s.StartAngle = startAngle
	s.FinalAngle = finalAngle
	s.Rotation = rotation
	return s
}

// Validate checks the spec without regard to the track it is drawn with.
func (s SpiralSpec) Validate() error {
	var c checks
	c.finite("spiral.center", s.Center.X, s.Center.Y)
	c.nonNegative("spiral.start_radius", s.StartRadius)
	c.positive("spiral.pitch", s.Pitch)
	c.finite("spiral.start_angle", s.StartAngle)
	c.finite("spiral.final_angle", s.FinalAngle)
	if s.Turns < 1 {
		c.fail("spiral.turns", s.Turns, "must be at least 1")
	}
	c.rotation("spiral.rotation", s.Rotation)
	return c.err
}

// finalSweep is the fraction of a revolution swept after the full turns.
func (s SpiralSpec) finalSweep() float64 {
	return NormalizeDegrees(s.FinalAngle) / 360
}

// RadialPitch is the radius gained per revolution when drawn with a track
// of the given width.
func (s SpiralSpec) RadialPitch(width float64) float64 {
	return s.Pitch + width
}

// EndRadius is the radius of the last point of the path.
func (s SpiralSpec) EndRadius(width float64) float64 {
	return s.StartRadius + s.RadialPitch(width)*(float64(s.Turns)+s.finalSweep())
}

// EndAngle is the angle (degrees, in [0, 360)) of the last point of the path.
func (s SpiralSpec) EndAngle() float64 {
	return NormalizeDegrees(s.StartAngle + float64(s.Rotation)*NormalizeDegrees(s.FinalAngle))
}

// ArchimedeanSpiral flattens the spiral into segments drawn with track.
func ArchimedeanSpiral(spec SpiralSpec, track emit.Track) ([]string, error) {
	pts, err := spiralPoints(spec, track.Width)
	if err != nil {
		return nil, err
	}
	var c checks
	checkTrack(&c, "spiral.track", track)
	if c.err != nil {
		return nil, c.err
	}
	return polyline(pts, track), nil
}

func segmentsForTurn(j int) int {
	return BaseSegments + SegmentStep*(j+1)
}

func spiralPoints(s SpiralSpec, width float64) ([]emit.Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var c checks
	c.positive("spiral.track.width", width)
	if c.err != nil {
		return nil, c.err
	}

	pitch := s.RadialPitch(width)
	start := radians(s.StartAngle)
	dir := float64(s.Rotation)
	at := func(phi float64) emit.Point {
		return polar(s.Center, s.StartRadius+pitch*phi/(2*math.Pi), start+dir*phi)
	}

	pts := []emit.Point{at(0)}
	for j := 0; j < s.Turns; j++ {
		n := segmentsForTurn(j)
		for k := 1; k <= n; k++ {
			pts = append(pts, at(2*math.Pi*(float64(j)+float64(k)/float64(n))))
		}
	}

	// The last revolution is cut short. Its segment count is scaled by the
	// sweep and rounded up, and the step shrinks so the path ends exactly on
	// the sweep angle.
	if f := s.finalSweep(); f > 0 {
		n := int(math.Ceil(f * float64(segmentsForTurn(s.Turns))))
		for k := 1; k <= n; k++ {
			pts = append(pts, at(2*math.Pi*(float64(s.Turns)+f*float64(k)/float64(n))))
		}
	}

	if len(pts) < 2 {
		return nil, invalid("spiral.final_angle", s.FinalAngle, "produces no segments")
	}
	return pts, nil
}
