// Package winding generates the copper of a planar multi-layer PCB motor
// winding: arcs and Archimedean spirals flattened into straight segments,
// four-layer coils built from four spirals, and the six-pole motor layout.
//
// Angles cross the API in degrees and are converted to radians once, at
// entry. All angles share one convention: a point at angle θ and radius r
// around c is c + r·(sin θ, cos θ), so 0° points along +Y and positive
// angles turn toward +X.
package winding

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// DefaultArcSegments is the number of straight segments an arc is split into.
const DefaultArcSegments = 20

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NormalizeDegrees maps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// polar returns the point at radius r and angle theta (radians) around c.
func polar(c emit.Point, r, theta float64) emit.Point {
	return emit.Point{X: c.X + r*math.Sin(theta), Y: c.Y + r*math.Cos(theta)}
}

// Arc approximates the circular arc from startAngle to finalAngle (degrees)
// by segments straight chords. The signed span is traversed as given: a
// negative span runs clockwise and is never wrapped or shortened.
func Arc(center emit.Point, radius, startAngle, finalAngle float64, track emit.Track, segments int) ([]string, error) {
	var c checks
	c.finite("arc.center", center.X, center.Y)
	c.positive("arc.radius", radius)
	c.finite("arc.start_angle", startAngle)
	c.finite("arc.final_angle", finalAngle)
	checkTrack(&c, "arc.track", track)
	if segments < 1 {
		c.fail("arc.segments", segments, "must be at least 1")
	}
	if finalAngle == startAngle {
		c.fail("arc.final_angle", finalAngle, "equals start angle, arc would be empty")
	}
	if c.err != nil {
		return nil, c.err
	}

	pts := arcPoints(center, radius, radians(startAngle), radians(finalAngle-startAngle), segments)
	return polyline(pts, track), nil
}

func arcPoints(center emit.Point, radius, start, span float64, segments int) []emit.Point {
	pts := make([]emit.Point, segments+1)
	for i := range pts {
		pts[i] = polar(center, radius, start+span*float64(i)/float64(segments))
	}
	return pts
}

// polyline emits one segment per consecutive pair of points.
func polyline(pts []emit.Point, track emit.Track) []string {
	if len(pts) < 2 {
		return nil
	}
	records := make([]string, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		records = append(records, emit.Segment(pts[i-1], pts[i], track))
	}
	return records
}

func checkTrack(c *checks, field string, track emit.Track) {
	c.positive(field+".width", track.Width)
	if c.err == nil && !track.Layer.Valid() {
		c.fail(field+".layer", track.Layer, "unknown layer")
	}
}

// ValidateTrack checks a track's width and layer.
func ValidateTrack(track emit.Track) error {
	var c checks
	checkTrack(&c, "track", track)
	return c.err
}
