// Package config holds the generator settings: board file paths, winding
// geometry and preview options. Settings come from built-in defaults, an
// optional JSON file and command-line flags, in increasing priority.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/winding"
)

// Config holds all configurable paths and generator settings.
type Config struct {
	// Paths
	Template    string `json:"template"`
	Output      string `json:"output"`
	HeaderLines int    `json:"header_lines"`

	Motor      Motor      `json:"motor"`
	Spiral     Spiral     `json:"spiral"`
	Track      Track      `json:"track"`
	Via        Via        `json:"via"`
	Clearances Clearances `json:"clearances"`
	Preview    Preview    `json:"preview"`
}

// Motor places the winding on the board.
type Motor struct {
	CenterX      float64 `json:"center_x"`
	CenterY      float64 `json:"center_y"`
	AxisRadius   float64 `json:"axis_radius"`
	OutlineWidth float64 `json:"outline_width"`
}

// Spiral is the per-layer spiral shape shared by every coil.
type Spiral struct {
	StartRadius float64 `json:"start_radius"`
	Pitch       float64 `json:"pitch"`
	Turns       int     `json:"turns"`
}

// Track is the copper track used for spirals and links.
type Track struct {
	Width float64 `json:"width"`
	Net   int     `json:"net"`
}

// Via is the through via used at coil centres and outer connections.
type Via struct {
	Size  float64 `json:"size"`
	Drill float64 `json:"drill"`
	Net   int     `json:"net"`
}

// Clearances mirrors winding.Clearances.
type Clearances struct {
	InnerViaOffset    float64 `json:"inner_via_offset"`
	OuterViaClearance float64 `json:"outer_via_clearance"`
	LinkClearance     float64 `json:"link_clearance"`
}

// Preview controls raster output of the preview command.
type Preview struct {
	PixelsPerMM float64 `json:"pixels_per_mm"`
	Margin      float64 `json:"margin"` // mm around the copper
}

// Default returns the reference design: an eleven-turn winding at
// (115, 105) on a four-layer board.
func Default() Config {
	cl := winding.DefaultClearances()
	return Config{
		Output:      "motor.kicad_pcb",
		HeaderLines: document.DefaultHeaderLines,
		Motor: Motor{
			CenterX:      115,
			CenterY:      105,
			AxisRadius:   1.5,
			OutlineWidth: 0.1,
		},
		Spiral: Spiral{
			StartRadius: 0.5,
			Pitch:       0.15,
			Turns:       11,
		},
		Track: Track{Width: 0.15},
		Via:   Via{Size: 0.45, Drill: 0.3},
		Clearances: Clearances{
			InnerViaOffset:    cl.InnerViaOffset,
			OuterViaClearance: cl.OuterViaClearance,
			LinkClearance:     cl.LinkClearance,
		},
		Preview: Preview{
			PixelsPerMM: 40,
			Margin:      1,
		},
	}
}

// Load reads a JSON config file on top of Default().
// Fields not set in the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the setting alone.
type Flags struct {
	Template    string
	Output      string
	HeaderLines int
	Turns       int
	Pitch       float64
	TrackWidth  float64
	PixelsPerMM float64
}

// Resolve applies CLI flags. Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Template != "" {
		c.Template = flags.Template
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.HeaderLines > 0 {
		c.HeaderLines = flags.HeaderLines
	}
	if flags.Turns > 0 {
		c.Spiral.Turns = flags.Turns
	}
	if flags.Pitch > 0 {
		c.Spiral.Pitch = flags.Pitch
	}
	if flags.TrackWidth > 0 {
		c.Track.Width = flags.TrackWidth
	}
	if flags.PixelsPerMM > 0 {
		c.Preview.PixelsPerMM = flags.PixelsPerMM
	}
}

// MotorSpec converts the motor settings.
func (c Config) MotorSpec() winding.MotorSpec {
	return winding.MotorSpec{
		Position:     emit.Point{X: c.Motor.CenterX, Y: c.Motor.CenterY},
		AxisRadius:   c.Motor.AxisRadius,
		PoleCount:    winding.PoleCount,
		OutlineWidth: c.Motor.OutlineWidth,
	}
}

// SpiralSpec converts the spiral settings. Centre and angles are filled in
// per coil by the assembler.
func (c Config) SpiralSpec() winding.SpiralSpec {
	return winding.SpiralSpec{
		StartRadius: c.Spiral.StartRadius,
		Pitch:       c.Spiral.Pitch,
		Turns:       c.Spiral.Turns,
		Rotation:    1,
	}
}

// TrackSpec converts the track settings. The layer is replaced per pass.
func (c Config) TrackSpec() emit.Track {
	return emit.Track{Width: c.Track.Width, Layer: emit.FrontCopper, Net: c.Track.Net}
}

// ViaPad converts the via settings.
func (c Config) ViaPad() emit.ViaPad {
	return emit.ViaPad{Size: c.Via.Size, Drill: c.Via.Drill, Net: c.Via.Net}
}

// WindingClearances converts the clearance settings.
func (c Config) WindingClearances() winding.Clearances {
	return winding.Clearances{
		InnerViaOffset:    c.Clearances.InnerViaOffset,
		OuterViaClearance: c.Clearances.OuterViaClearance,
		LinkClearance:     c.Clearances.LinkClearance,
	}
}

// Validate checks every setting the generator consumes. Geometry errors are
// *winding.ValidationError values.
func (c Config) Validate() error {
	if c.HeaderLines < 0 {
		return fmt.Errorf("config: header_lines %d must not be negative", c.HeaderLines)
	}
	if c.Preview.PixelsPerMM <= 0 {
		return fmt.Errorf("config: preview.pixels_per_mm %v must be positive", c.Preview.PixelsPerMM)
	}
	if c.Preview.Margin < 0 {
		return fmt.Errorf("config: preview.margin %v must not be negative", c.Preview.Margin)
	}
	if err := c.MotorSpec().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.SpiralSpec().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := winding.ValidateTrack(c.TrackSpec()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.WindingClearances().Validate(c.ViaPad()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
