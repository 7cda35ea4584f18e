package pcb

import (
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
)

// Board holds the parts of a KiCad board the winding generator reads back:
// the layer table, nets, and the copper and outline items it emits.
type Board struct {
	Version   int      // File format version (0 for a bare record body)
	Generator string   // Generator info (e.g., "pcbnew")
	Layers    []Layer  // Layer definitions
	Nets      []Net    // Electrical nets
	Tracks    []Track  // Track segments
	Vias      []Via    // Vias
	Circles   []Circle // gr_circle items
	Skipped   int      // Top-level items of other kinds
}

// Track represents a copper track segment
type Track struct {
	Start emit.Point // Start point
	End   emit.Point // End point
	Width float64    // Track width in mm
	Layer string     // Layer name
	Net   int        // Net number
	Line  int        // Source line of the record
}

// Length returns the centre-line length of the segment
func (t Track) Length() float64 {
	return t.End.Sub(t.Start).Length()
}

// Via represents a via
type Via struct {
	Position emit.Point // Via position
	Size     float64    // Via diameter
	Drill    float64    // Drill diameter
	Layers   LayerSet   // Layer pair
	Net      int        // Net number
	Line     int        // Source line of the record
}

// Circle represents a gr_circle. KiCad stores the radius implicitly as the
// distance from Center to End.
type Circle struct {
	Center emit.Point
	End    emit.Point
	Width  float64
	Layer  string
	Line   int
}

// Radius returns the circle's radius
func (c Circle) Radius() float64 {
	return c.End.Sub(c.Center).Length()
}

// LayerMap returns a lookup over the board's layer table
func (b *Board) LayerMap() *LayerMap {
	return NewLayerMap(b.Layers)
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// MissingLayers returns the names that the board's layer table does not
// declare, in the order given.
func (b *Board) MissingLayers(names ...string) []string {
	lm := b.LayerMap()
	var missing []string
	for _, name := range names {
		if _, ok := lm.GetByName(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// UsedLayers returns every layer referenced by a track, via or circle, in
// first-use order.
func (b *Board) UsedLayers() []string {
	seen := make(map[string]bool)
	var used []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			used = append(used, name)
		}
	}
	for _, t := range b.Tracks {
		add(t.Layer)
	}
	for _, v := range b.Vias {
		for _, l := range v.Layers {
			add(l)
		}
	}
	for _, c := range b.Circles {
		add(c.Layer)
	}
	return used
}
