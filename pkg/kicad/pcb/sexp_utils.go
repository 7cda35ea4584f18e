package pcb

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/sexp/kicadsexp"
)

// asList returns s as a list, or false for atoms
func asList(s kicadsexp.Sexp) (*kicadsexp.List, bool) {
	l, ok := s.(*kicadsexp.List)
	return l, ok
}

// findNode returns the first direct child list whose keyword is name
func findNode(l *kicadsexp.List, name string) (*kicadsexp.List, bool) {
	for _, item := range l.Items() {
		if child, ok := asList(item); ok && child.Name() == name {
			return child, true
		}
	}
	return nil, false
}

// getString returns the atom at index
func getString(l *kicadsexp.List, index int) (string, error) {
	item := l.Get(index)
	if item == nil {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, l.Len())
	}
	sym, ok := item.(kicadsexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected atom at index %d, got list", index)
	}
	return string(sym), nil
}

// getFloat parses the atom at index as a float
func getFloat(l *kicadsexp.List, index int) (float64, error) {
	s, err := getString(l, index)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at index %d", s, index)
	}
	return v, nil
}

// getInt parses the atom at index as an integer
func getInt(l *kicadsexp.List, index int) (int, error) {
	s, err := getString(l, index)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q at index %d", s, index)
	}
	return v, nil
}

// childFloat returns the value of a (name value) child
func childFloat(l *kicadsexp.List, name string) (float64, error) {
	node, ok := findNode(l, name)
	if !ok {
		return 0, fmt.Errorf("missing (%s ...)", name)
	}
	v, err := getFloat(node, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return v, nil
}

// childString returns the value of a (name value) child
func childString(l *kicadsexp.List, name string) (string, error) {
	node, ok := findNode(l, name)
	if !ok {
		return "", fmt.Errorf("missing (%s ...)", name)
	}
	return getString(node, 1)
}

// childPosition parses a (name x y) child such as (start 1 2) or (at 3 4).
// Extra items after y, like a rotation angle, are ignored.
func childPosition(l *kicadsexp.List, name string) (emit.Point, error) {
	node, ok := findNode(l, name)
	if !ok {
		return emit.Point{}, fmt.Errorf("missing (%s x y)", name)
	}
	x, err := getFloat(node, 1)
	if err != nil {
		return emit.Point{}, fmt.Errorf("failed to parse %s X coordinate: %w", name, err)
	}
	y, err := getFloat(node, 2)
	if err != nil {
		return emit.Point{}, fmt.Errorf("failed to parse %s Y coordinate: %w", name, err)
	}
	return emit.Point{X: x, Y: y}, nil
}

// strokeWidth reads (width w), falling back to the (stroke (width w) ...)
// form newer KiCad versions write for graphics.
func strokeWidth(l *kicadsexp.List) (float64, error) {
	if _, ok := findNode(l, "width"); ok {
		return childFloat(l, "width")
	}
	if stroke, ok := findNode(l, "stroke"); ok {
		return childFloat(stroke, "width")
	}
	return 0, fmt.Errorf("missing (width ...)")
}

// getLayers collects the layer names of a (layers "F.Cu" "B.Cu") node
func getLayers(l *kicadsexp.List) LayerSet {
	var layers LayerSet
	for _, item := range l.Items()[1:] {
		if sym, ok := item.(kicadsexp.Symbol); ok {
			layers = append(layers, string(sym))
		}
	}
	return layers
}
