package pcb

import "sort"

// LayerStats summarises the tracks on one layer
type LayerStats struct {
	Layer    string
	Segments int
	Length   float64 // Sum of segment centre-line lengths in mm
}

// TrackStats returns per-layer track statistics. Layers appear in the
// order of the board's layer table; layers used by tracks but missing from
// the table follow, sorted by name.
func (b *Board) TrackStats() []LayerStats {
	byLayer := make(map[string]*LayerStats)
	for _, t := range b.Tracks {
		s, ok := byLayer[t.Layer]
		if !ok {
			s = &LayerStats{Layer: t.Layer}
			byLayer[t.Layer] = s
		}
		s.Segments++
		s.Length += t.Length()
	}

	stats := make([]LayerStats, 0, len(byLayer))
	for _, l := range b.Layers {
		if s, ok := byLayer[l.Name]; ok {
			stats = append(stats, *s)
			delete(byLayer, l.Name)
		}
	}

	rest := make([]string, 0, len(byLayer))
	for name := range byLayer {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		stats = append(stats, *byLayer[name])
	}
	return stats
}

// TrackLength returns the total track length on layer
func (b *Board) TrackLength(layer string) float64 {
	var total float64
	for _, t := range b.Tracks {
		if t.Layer == layer {
			total += t.Length()
		}
	}
	return total
}
