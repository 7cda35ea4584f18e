package winding

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/record"
)

const tol = 1e-6

var (
	testTrack = emit.Track{Width: 0.15, Layer: emit.FrontCopper, Net: 0}
	testPad   = emit.ViaPad{Size: 0.45, Drill: 0.3, Net: 0}
)

var testSpiral = SpiralSpec{
	Center:      emit.Point{X: 115, Y: 105},
	StartRadius: 0.5,
	Pitch:       0.15,
	Turns:       11,
	Rotation:    1,
}

// parseBody parses generated text with the strict record grammar.
func parseBody(t *testing.T, text string) *record.Body {
	t.Helper()
	p, err := record.NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	body, err := p.ParseString(text)
	if err != nil {
		t.Fatalf("generated text does not parse: %v", err)
	}
	if problems := record.Lint(body); len(problems) != 0 {
		t.Fatalf("generated text has lint problems: %v", problems[0])
	}
	return body
}

func coord(t *testing.T, c record.Coord) emit.Point {
	t.Helper()
	x, err := strconv.ParseFloat(c.X, 64)
	if err != nil {
		t.Fatal(err)
	}
	y, err := strconv.ParseFloat(c.Y, 64)
	if err != nil {
		t.Fatal(err)
	}
	return emit.Point{X: x, Y: y}
}

func dist(a, b emit.Point) float64 {
	return b.Sub(a).Length()
}

// segmentDist is the distance from p to the segment a-b.
func segmentDist(p, a, b emit.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return dist(p, a)
	}
	u := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return dist(p, a.Add(ab.Mul(u)))
}

// angleOf inverts polar: the angle in degrees of p around c.
func angleOf(c, p emit.Point) float64 {
	return NormalizeDegrees(math.Atan2(p.X-c.X, p.Y-c.Y) * 180 / math.Pi)
}

// sameAngle compares two angles in degrees modulo 360.
func sameAngle(a, b, eps float64) bool {
	d := math.Abs(NormalizeDegrees(a - b))
	return d < eps || 360-d < eps
}

func joinLines(records []string) string {
	return strings.Join(records, "\n") + "\n"
}

func wantValidationError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error for %s, got nil", field)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Field != field {
		t.Errorf("ValidationError.Field = %q, want %q (%v)", verr.Field, field, err)
	}
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("errors.Is(err, ErrInvalidSpec) = false for %v", err)
	}
}
