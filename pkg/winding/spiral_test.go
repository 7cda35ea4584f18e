package winding

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

func TestSpiralEndpoints(t *testing.T) {
	tests := []struct {
		name        string
		start       float64
		final       float64
		turns       int
		rotation    int
		wantEndR    float64 // with width 0.15 and pitch 0.15
		wantEndDegs float64
	}{
		{"full turns only", 180, 0, 3, 1, 0.5 + 0.3*3, 180},
		{"half extra turn", 0, 180, 2, 1, 0.5 + 0.3*2.5, 180},
		{"clockwise quarter", 180, 90, 1, -1, 0.5 + 0.3*1.25, 90},
		{"final angle of 360 is a full stop", 0, 360, 4, 1, 0.5 + 0.3*4, 0},
		{"negative final angle normalizes", 0, -45, 1, 1, 0.5 + 0.3*(1+315.0/360), 315},
		{"counter-clockwise 315", 180, 315, 11, -1, 0.5 + 0.3*(11+315.0/360), 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpiral.Pass(testSpiral.Center, tt.start, tt.final, tt.rotation)
			spec.Turns = tt.turns

			pts, err := spiralPoints(spec, testTrack.Width)
			if err != nil {
				t.Fatalf("spiralPoints() error: %v", err)
			}
			first, last := pts[0], pts[len(pts)-1]

			if r := dist(spec.Center, first); math.Abs(r-spec.StartRadius) > tol {
				t.Errorf("first point radius = %v, want %v", r, spec.StartRadius)
			}
			if !sameAngle(angleOf(spec.Center, first), tt.start, 1e-9) {
				t.Errorf("first point angle = %v, want %v", angleOf(spec.Center, first), tt.start)
			}
			if r := dist(spec.Center, last); math.Abs(r-tt.wantEndR) > tol {
				t.Errorf("last point radius = %v, want %v", r, tt.wantEndR)
			}
			if r := spec.EndRadius(testTrack.Width); math.Abs(r-tt.wantEndR) > tol {
				t.Errorf("EndRadius() = %v, want %v", r, tt.wantEndR)
			}
			if !sameAngle(angleOf(spec.Center, last), tt.wantEndDegs, 1e-6) {
				t.Errorf("last point angle = %v, want %v", angleOf(spec.Center, last), tt.wantEndDegs)
			}
			if !sameAngle(spec.EndAngle(), tt.wantEndDegs, 1e-9) {
				t.Errorf("EndAngle() = %v, want %v", spec.EndAngle(), tt.wantEndDegs)
			}
		})
	}
}

func TestSpiralSegmentCounts(t *testing.T) {
	tests := []struct {
		name  string
		turns int
		final float64
		want  int
	}{
		{"one turn", 1, 0, 24},
		{"two turns", 2, 0, 24 + 28},
		{"two and a half turns", 2, 180, 24 + 28 + 16},
		{"rounds partial count up", 1, 1, 24 + 1},
		{"three quarters", 1, 270, 24 + 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpiral
			spec.Turns = tt.turns
			spec.FinalAngle = tt.final
			records, err := ArchimedeanSpiral(spec, testTrack)
			if err != nil {
				t.Fatalf("ArchimedeanSpiral() error: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("ArchimedeanSpiral() = %d segments, want %d", len(records), tt.want)
			}
		})
	}
}

func TestSpiralRadiusGrowsAndTurnsDoNotTouch(t *testing.T) {
	spec := testSpiral
	spec.FinalAngle = 200
	pts, err := spiralPoints(spec, testTrack.Width)
	if err != nil {
		t.Fatal(err)
	}

	pitch := spec.RadialPitch(testTrack.Width)
	for i := 1; i < len(pts); i++ {
		if dist(spec.Center, pts[i]) < dist(spec.Center, pts[i-1])-tol {
			t.Fatalf("radius shrinks at point %d", i)
		}
	}
	// Points one revolution apart sit one radial pitch apart, which leaves
	// exactly Pitch of copper-free gap between track edges.
	n := segmentsForTurn(0)
	gap := dist(spec.Center, pts[n]) - dist(spec.Center, pts[0]) - testTrack.Width
	if math.Abs(gap-spec.Pitch) > tol || math.Abs(pitch-0.3) > tol {
		t.Errorf("gap between turns = %v, want %v", gap, spec.Pitch)
	}
}

func TestSpiralRotationMirrors(t *testing.T) {
	spec := testSpiral
	spec.Center = emit.Point{}
	spec.Turns = 2
	spec.FinalAngle = 100

	ccw, err := spiralPoints(spec, testTrack.Width)
	if err != nil {
		t.Fatal(err)
	}
	spec.Rotation = -1
	cw, err := spiralPoints(spec, testTrack.Width)
	if err != nil {
		t.Fatal(err)
	}
	if len(ccw) != len(cw) {
		t.Fatalf("point counts differ: %d vs %d", len(ccw), len(cw))
	}
	for i := range ccw {
		if math.Abs(ccw[i].X+cw[i].X) > tol || math.Abs(ccw[i].Y-cw[i].Y) > tol {
			t.Fatalf("point %d: %v is not the mirror of %v", i, cw[i], ccw[i])
		}
	}
}

func TestSpiralPassDoesNotMutate(t *testing.T) {
	base := testSpiral
	pass := base.Pass(emit.Point{X: 1, Y: 2}, 0, 90, -1)
	if base != testSpiral {
		t.Errorf("Pass() modified its receiver: %+v", base)
	}
	if pass.Center != (emit.Point{X: 1, Y: 2}) || pass.FinalAngle != 90 || pass.Rotation != -1 {
		t.Errorf("Pass() = %+v", pass)
	}
	if pass.Turns != base.Turns || pass.Pitch != base.Pitch || pass.StartRadius != base.StartRadius {
		t.Errorf("Pass() lost shape parameters: %+v", pass)
	}
}

func TestSpiralValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*SpiralSpec)
		track emit.Track
		field string
	}{
		{"zero turns", func(s *SpiralSpec) { s.Turns = 0 }, testTrack, "spiral.turns"},
		{"rotation zero", func(s *SpiralSpec) { s.Rotation = 0 }, testTrack, "spiral.rotation"},
		{"zero pitch", func(s *SpiralSpec) { s.Pitch = 0 }, testTrack, "spiral.pitch"},
		{"negative start radius", func(s *SpiralSpec) { s.StartRadius = -1 }, testTrack, "spiral.start_radius"},
		{"nan start radius", func(s *SpiralSpec) { s.StartRadius = math.NaN() }, testTrack, "spiral.start_radius"},
		{"infinite center", func(s *SpiralSpec) { s.Center.Y = math.Inf(-1) }, testTrack, "spiral.center"},
		{"nan final angle", func(s *SpiralSpec) { s.FinalAngle = math.NaN() }, testTrack, "spiral.final_angle"},
		{"zero width", func(s *SpiralSpec) {}, emit.Track{Layer: emit.FrontCopper}, "spiral.track.width"},
		{"unknown layer", func(s *SpiralSpec) {}, emit.Track{Width: 0.1, Layer: "X"}, "spiral.track.layer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpiral
			tt.edit(&spec)
			_, err := ArchimedeanSpiral(spec, tt.track)
			wantValidationError(t, err, tt.field)
		})
	}
}
