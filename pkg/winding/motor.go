package winding

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// PoleCount is the only pole count the layout supports: the coil angles and
// the layer stack table below are worked out for six poles.
const PoleCount = 6

// poleAngle is the angle between neighbouring poles in degrees.
const poleAngle = 360.0 / PoleCount

// LayerStacks assigns each pole its layer order. Neighbouring poles swap
// which layer pair carries their terminals (outer pair F/B or inner pair
// In1/In2), so the links between poles alternate between layers.
var LayerStacks = [PoleCount][4]emit.Layer{
	{emit.FrontCopper, emit.Inner1Copper, emit.Inner2Copper, emit.BackCopper},
	{emit.Inner1Copper, emit.FrontCopper, emit.BackCopper, emit.Inner2Copper},
	{emit.BackCopper, emit.Inner2Copper, emit.Inner1Copper, emit.FrontCopper},
	{emit.Inner2Copper, emit.BackCopper, emit.FrontCopper, emit.Inner1Copper},
	{emit.FrontCopper, emit.Inner2Copper, emit.Inner1Copper, emit.BackCopper},
	{emit.Inner1Copper, emit.BackCopper, emit.FrontCopper, emit.Inner2Copper},
}

// MotorSpec places the winding on the board.
type MotorSpec struct {
	Position     emit.Point
	AxisRadius   float64 // bearing bore radius in mm
	PoleCount    int
	OutlineWidth float64 // line width of the bore on Edge.Cuts
}

// Validate checks the motor placement.
func (m MotorSpec) Validate() error {
	var c checks
	c.finite("motor.position", m.Position.X, m.Position.Y)
	c.positive("motor.axis_radius", m.AxisRadius)
	c.positive("motor.outline_width", m.OutlineWidth)
	if m.PoleCount != PoleCount {
		c.fail("motor.pole_count", m.PoleCount, "only six-pole windings are supported")
	}
	return c.err
}

// MotorRadius is the distance from the motor centre to each coil centre
// such that neighbouring coils of radius outerRadius just touch.
func MotorRadius(outerRadius float64, poles int) float64 {
	return outerRadius / math.Sin(math.Pi/float64(poles))
}

// PoleCoil returns the placement of pole i around a motor of the given
// radius. Poles 0-2 form the bottom half and wind clockwise; poles 3-5
// wind counter-clockwise and take their entry straight from a phase tap.
func PoleCoil(motor MotorSpec, motorRadius float64, i int) CoilSpec {
	fi := float64(i)
	coil := CoilSpec{
		Center:       polar(motor.Position, motorRadius, radians((fi+0.5)*poleAngle)),
		ConnectAngle: NormalizeDegrees(45 + poleAngle*fi),
		LayerStack:   LayerStacks[i][:],
	}
	if i < PoleCount/2 {
		coil.Rotation = -1
		coil.TopAngle = NormalizeDegrees(-poleAngle * (1 - fi))
		coil.BottomAngle = NormalizeDegrees(-poleAngle * (2 + fi))
	} else {
		coil.Rotation = 1
		coil.TopAngle = 0
		coil.BottomAngle = NormalizeDegrees(poleAngle * (2 + fi))
	}
	return coil
}

// Layout is the generated copper of a whole motor.
type Layout struct {
	Coils []*CoilLayout // indexed by pole
	Bore  string
	Links [][]string // one connecting arc per copper layer

	OuterRadius float64 // coil radius including safety margin
	MotorRadius float64 // motor centre to coil centre
	LinkRadius  float64 // radius of the connecting arcs
}

// Records returns poles 0 through 5, the bore, then the four arcs.
func (l *Layout) Records() []string {
	var records []string
	for _, c := range l.Coils {
		records = append(records, c.Records()...)
	}
	records = append(records, l.Bore)
	for _, link := range l.Links {
		records = append(records, link...)
	}
	return records
}

func (l *Layout) String() string {
	return joinRecords(l.Records())
}

// Assemble lays out the six coils, the bearing bore and the connecting arcs.
func Assemble(motor MotorSpec, spiral SpiralSpec, track emit.Track, pad emit.ViaPad, cl Clearances) (*Layout, error) {
	if err := motor.Validate(); err != nil {
		return nil, err
	}
	if err := spiral.Validate(); err != nil {
		return nil, err
	}
	var c checks
	checkTrack(&c, "track", track)
	if c.err != nil {
		return nil, c.err
	}
	if err := cl.Validate(pad); err != nil {
		return nil, err
	}

	outer := OuterRadiusEstimate(spiral.Turns, track.Width, spiral.Pitch, spiral.StartRadius) + spiral.Pitch/4
	layout := &Layout{
		OuterRadius: outer,
		MotorRadius: MotorRadius(outer, PoleCount),
	}
	layout.LinkRadius = layout.MotorRadius - outer - cl.LinkClearance
	if layout.LinkRadius-track.Width/2 <= motor.AxisRadius {
		return nil, invalid("motor.axis_radius", motor.AxisRadius, "bore reaches the connecting arcs")
	}

	// Coils are independent; generate them in parallel and keep pole order.
	layout.Coils = make([]*CoilLayout, PoleCount)
	errs := make([]error, PoleCount)
	var wg sync.WaitGroup
	for i := 0; i < PoleCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coil := PoleCoil(motor, layout.MotorRadius, i)
			layout.Coils[i], errs[i] = Coil(coil, spiral, track, pad, cl)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	layout.Bore = emit.Circle(motor.Position, motor.AxisRadius, emit.EdgeCuts, motor.OutlineWidth)

	for k, layer := range emit.CopperLayers {
		start := (float64(k) + 0.5) * poleAngle
		arc, err := Arc(motor.Position, layout.LinkRadius, start, start+poleAngle,
			track.OnLayer(layer), DefaultArcSegments)
		if err != nil {
			return nil, err
		}
		layout.Links = append(layout.Links, arc)
	}

	Logger().Debug("assembled motor",
		zap.Float64("outer_radius", layout.OuterRadius),
		zap.Float64("motor_radius", layout.MotorRadius),
		zap.Float64("link_radius", layout.LinkRadius),
		zap.Int("records", len(layout.Records())))

	return layout, nil
}

// PCBMotor generates the whole winding as record text, one record per line.
func PCBMotor(motor MotorSpec, spiral SpiralSpec, track emit.Track, pad emit.ViaPad, cl Clearances) (string, error) {
	layout, err := Assemble(motor, spiral, track, pad, cl)
	if err != nil {
		return "", err
	}
	return layout.String(), nil
}
