package winding

import (
	"math"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

var testMotor = MotorSpec{
	Position:     emit.Point{X: 115, Y: 105},
	AxisRadius:   1.5,
	PoleCount:    PoleCount,
	OutlineWidth: 0.1,
}

func TestMotorRadius(t *testing.T) {
	if got := MotorRadius(5.0, 6); math.Abs(got-10.0) > 1e-6 {
		t.Errorf("MotorRadius(5, 6) = %v, want 10", got)
	}
}

func TestPoleCoilAngles(t *testing.T) {
	tests := []struct {
		pole                         int
		rotation                     int
		top, connect, bottom, center float64
	}{
		{0, -1, 300, 45, 240, 30},
		{1, -1, 0, 105, 180, 90},
		{2, -1, 60, 165, 120, 150},
		{3, 1, 0, 225, 300, 210},
		{4, 1, 0, 285, 0, 270},
		{5, 1, 0, 345, 60, 330},
	}
	for _, tt := range tests {
		coil := PoleCoil(testMotor, 10, tt.pole)
		if coil.Rotation != tt.rotation {
			t.Errorf("pole %d: rotation = %d, want %d", tt.pole, coil.Rotation, tt.rotation)
		}
		if !sameAngle(coil.TopAngle, tt.top, tol) || !sameAngle(coil.ConnectAngle, tt.connect, tol) ||
			!sameAngle(coil.BottomAngle, tt.bottom, tol) {
			t.Errorf("pole %d: angles = %v/%v/%v, want %v/%v/%v", tt.pole,
				coil.TopAngle, coil.ConnectAngle, coil.BottomAngle, tt.top, tt.connect, tt.bottom)
		}
		for _, a := range []float64{coil.TopAngle, coil.ConnectAngle, coil.BottomAngle} {
			if a < 0 || a >= 360 {
				t.Errorf("pole %d: angle %v not normalized", tt.pole, a)
			}
		}
		if r := dist(testMotor.Position, coil.Center); math.Abs(r-10) > tol {
			t.Errorf("pole %d: centre %v from motor, want 10", tt.pole, r)
		}
		if a := angleOf(testMotor.Position, coil.Center); !sameAngle(a, tt.center, 1e-9) {
			t.Errorf("pole %d: centre at %v degrees, want %v", tt.pole, a, tt.center)
		}
	}
}

func TestLayerStacksAlternate(t *testing.T) {
	outerPair := func(l emit.Layer) bool { return l == emit.FrontCopper || l == emit.BackCopper }
	for i, stack := range LayerStacks {
		if err := ValidateStack(stack[:]); err != nil {
			t.Errorf("LayerStacks[%d]: %v", i, err)
		}
		// Terminals of even poles are on the outer pair, odd poles on the inner pair.
		wantOuter := i%2 == 0
		if outerPair(stack[0]) != wantOuter || outerPair(stack[3]) != wantOuter {
			t.Errorf("LayerStacks[%d] terminals on %s/%s", i, stack[0], stack[3])
		}
	}
}

func TestAssembleLayout(t *testing.T) {
	layout, err := Assemble(testMotor, testSpiral, testTrack, testPad, DefaultClearances())
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	if len(layout.Coils) != 6 {
		t.Fatalf("Assemble() = %d coils, want 6", len(layout.Coils))
	}
	if len(layout.Links) != 4 {
		t.Fatalf("Assemble() = %d connecting arcs, want 4", len(layout.Links))
	}
	if !strings.HasPrefix(layout.Bore, "(gr_circle") || !strings.Contains(layout.Bore, "(layer Edge.Cuts)") {
		t.Errorf("Bore = %s", layout.Bore)
	}

	wantOuter := 4.1 + 0.15/4
	if math.Abs(layout.OuterRadius-wantOuter) > tol {
		t.Errorf("OuterRadius = %v, want %v", layout.OuterRadius, wantOuter)
	}
	if math.Abs(layout.MotorRadius-2*wantOuter) > tol {
		t.Errorf("MotorRadius = %v, want %v", layout.MotorRadius, 2*wantOuter)
	}
	if math.Abs(layout.LinkRadius-(wantOuter-0.4)) > tol {
		t.Errorf("LinkRadius = %v, want %v", layout.LinkRadius, wantOuter-0.4)
	}

	body := parseBody(t, layout.String())
	segs, vias, circles := body.Counts()
	if vias != 18 || circles != 1 {
		t.Errorf("counts = %d vias, %d circles; want 18, 1", vias, circles)
	}

	// Canonical order: six coils, the bore, then one arc per copper layer.
	var coilSegs int
	for i, c := range layout.Coils {
		if len(c.Vias) != 3 || len(c.Traces) != 4 {
			t.Errorf("coil %d: %d vias, %d traces", i, len(c.Vias), len(c.Traces))
		}
		for j, layer := range c.Layers {
			if layer != LayerStacks[i][j] {
				t.Errorf("coil %d trace %d on %s, want %s", i, j, layer, LayerStacks[i][j])
			}
		}
		coilSegs += len(c.Records()) - len(c.Vias)
	}
	if segs != coilSegs+4*DefaultArcSegments {
		t.Errorf("segments = %d, want %d", segs, coilSegs+4*DefaultArcSegments)
	}

	n := len(body.Records)
	bore := body.Records[n-4*DefaultArcSegments-1]
	if bore.Circle == nil {
		t.Fatalf("record before the arcs is not the bore circle")
	}
	for k, layer := range emit.CopperLayers {
		for s := 0; s < DefaultArcSegments; s++ {
			r := body.Records[n-4*DefaultArcSegments+k*DefaultArcSegments+s]
			if r.Segment == nil || r.Segment.Layer != string(layer) {
				t.Fatalf("arc %d segment %d is not on %s", k, s, layer)
			}
			p := coord(t, r.Segment.Start)
			if d := dist(testMotor.Position, p); math.Abs(d-layout.LinkRadius) > 1e-5 {
				t.Fatalf("arc %d point at radius %v, want %v", k, d, layout.LinkRadius)
			}
		}
	}
}

// TestAssembleCopperClearance checks every via pad against the copper of
// the other coils and against the connecting arcs. Vias span all layers, so
// the layer of the segment does not matter.
func TestAssembleCopperClearance(t *testing.T) {
	short := testSpiral
	short.Turns = 4

	tests := []struct {
		name   string
		spiral SpiralSpec
	}{
		{"default winding", testSpiral},
		{"four turns", short},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := Assemble(testMotor, tt.spiral, testTrack, testPad, DefaultClearances())
			if err != nil {
				t.Fatalf("Assemble() error: %v", err)
			}

			segments := func(records []string) [][2]emit.Point {
				var out [][2]emit.Point
				for _, r := range parseBody(t, joinLines(records)).Records {
					if r.Segment != nil {
						out = append(out, [2]emit.Point{coord(t, r.Segment.Start), coord(t, r.Segment.End)})
					}
				}
				return out
			}
			coilSegs := make([][][2]emit.Point, len(layout.Coils))
			for i, c := range layout.Coils {
				coilSegs[i] = segments(c.Records())
			}
			var linkSegs [][2]emit.Point
			for _, l := range layout.Links {
				linkSegs = append(linkSegs, segments(l)...)
			}

			need := testPad.Size/2 + testTrack.Width/2
			for i, c := range layout.Coils {
				for v, text := range c.Vias {
					at := coord(t, parseBody(t, text).Records[0].Via.At)
					for j := range layout.Coils {
						if j == i {
							continue
						}
						for _, s := range coilSegs[j] {
							if gap := segmentDist(at, s[0], s[1]) - need; gap <= 0 {
								t.Fatalf("pole %d via %d: gap to pole %d is %.3f mm", i, v, j, gap)
							}
						}
					}
					for _, s := range linkSegs {
						if gap := segmentDist(at, s[0], s[1]) - need; gap <= 0 {
							t.Fatalf("pole %d via %d: gap to a connecting arc is %.3f mm", i, v, gap)
						}
					}
				}
			}
		})
	}
}

func TestPCBMotorIsDeterministic(t *testing.T) {
	first, err := PCBMotor(testMotor, testSpiral, testTrack, testPad, DefaultClearances())
	if err != nil {
		t.Fatalf("PCBMotor() error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := PCBMotor(testMotor, testSpiral, testTrack, testPad, DefaultClearances())
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d produced different output", i+2)
		}
	}
	if !strings.HasSuffix(first, ")\n") {
		t.Errorf("output should end with a newline-terminated record")
	}
}

func TestAssembleValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*MotorSpec)
		field string
	}{
		{"eight poles", func(m *MotorSpec) { m.PoleCount = 8 }, "motor.pole_count"},
		{"no bore", func(m *MotorSpec) { m.AxisRadius = 0 }, "motor.axis_radius"},
		{"bore into the links", func(m *MotorSpec) { m.AxisRadius = 3.7 }, "motor.axis_radius"},
		{"no outline width", func(m *MotorSpec) { m.OutlineWidth = 0 }, "motor.outline_width"},
		{"nan position", func(m *MotorSpec) { m.Position.X = math.NaN() }, "motor.position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			motor := testMotor
			tt.edit(&motor)
			_, err := Assemble(motor, testSpiral, testTrack, testPad, DefaultClearances())
			wantValidationError(t, err, tt.field)
		})
	}
}
