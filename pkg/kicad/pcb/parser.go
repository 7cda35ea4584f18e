package pcb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported board format version (KiCad 5.0 = 20171130)
const MinSupportedVersion = 20171130

// ErrEmpty is returned when the input holds no expressions at all
var ErrEmpty = errors.New("empty file or no valid s-expressions found")

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a board from r. The input is either a complete
// (kicad_pcb ...) document or a bare sequence of board items such as the
// winding generator's output. Expressions are pulled from the stream one at
// a time.
func Parse(r io.Reader) (*Board, error) {
	p := kicadsexp.NewParser(r)
	board := &Board{}
	seen := false

	for {
		expr, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse s-expression: %w", err)
		}
		seen = true

		node, ok := asList(expr)
		if !ok {
			return nil, fmt.Errorf("unexpected top-level atom %q", expr.String())
		}
		if node.Name() == "kicad_pcb" {
			if err := board.parseRoot(node); err != nil {
				return nil, err
			}
			continue
		}
		if err := board.parseItem(node); err != nil {
			return nil, err
		}
	}

	if !seen {
		return nil, ErrEmpty
	}
	return board, nil
}

func (b *Board) parseRoot(root *kicadsexp.List) error {
	if node, ok := findNode(root, "version"); ok {
		version, err := getInt(node, 1)
		if err != nil {
			return fmt.Errorf("failed to parse version: %w", err)
		}
		if version < MinSupportedVersion {
			return fmt.Errorf("unsupported board version %d (minimum %d)", version, MinSupportedVersion)
		}
		b.Version = version
	}
	if gen, err := childString(root, "generator"); err == nil {
		b.Generator = gen
	}

	if node, ok := findNode(root, "layers"); ok {
		layers, err := parseLayers(node)
		if err != nil {
			return fmt.Errorf("failed to parse layers: %w", err)
		}
		b.Layers = layers
	}

	for _, item := range root.Items()[1:] {
		node, ok := asList(item)
		if !ok {
			continue
		}
		switch node.Name() {
		case "version", "generator", "layers":
			continue
		}
		if err := b.parseItem(node); err != nil {
			return err
		}
	}
	return nil
}

// parseItem adds one board item. Kinds the generator never emits are
// counted and skipped.
func (b *Board) parseItem(node *kicadsexp.List) error {
	var err error
	switch node.Name() {
	case "net":
		err = b.parseNet(node)
	case "segment":
		err = b.parseSegment(node)
	case "via":
		err = b.parseVia(node)
	case "gr_circle":
		err = b.parseCircle(node)
	default:
		b.Skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("line %d: failed to parse %s: %w", node.Line(), node.Name(), err)
	}
	return nil
}

// parseLayers reads (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node *kicadsexp.List) ([]Layer, error) {
	var layers []Layer
	for _, item := range node.Items()[1:] {
		layerNode, ok := asList(item)
		if !ok {
			continue
		}

		number, err := getInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}
		name, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}
		layerType, err := getString(layerNode, 2)
		if err != nil {
			// Layer type is optional in some cases
			layerType = "user"
		}

		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}
	return layers, nil
}

// parseNet reads (net <number> "<name>"). Net 0 usually has an empty name.
func (b *Board) parseNet(node *kicadsexp.List) error {
	number, err := getInt(node, 1)
	if err != nil {
		return err
	}
	name, _ := getString(node, 2)
	b.Nets = append(b.Nets, Net{Number: number, Name: name})
	return nil
}

func (b *Board) parseSegment(node *kicadsexp.List) error {
	start, err := childPosition(node, "start")
	if err != nil {
		return err
	}
	end, err := childPosition(node, "end")
	if err != nil {
		return err
	}
	width, err := childFloat(node, "width")
	if err != nil {
		return err
	}
	layer, err := childString(node, "layer")
	if err != nil {
		return err
	}
	net, err := childNet(node)
	if err != nil {
		return err
	}

	b.Tracks = append(b.Tracks, Track{
		Start: start,
		End:   end,
		Width: width,
		Layer: layer,
		Net:   net,
		Line:  node.Line(),
	})
	return nil
}

func (b *Board) parseVia(node *kicadsexp.List) error {
	at, err := childPosition(node, "at")
	if err != nil {
		return err
	}
	size, err := childFloat(node, "size")
	if err != nil {
		return err
	}
	drill, err := childFloat(node, "drill")
	if err != nil {
		return err
	}
	layersNode, ok := findNode(node, "layers")
	if !ok {
		return fmt.Errorf("missing (layers ...)")
	}
	net, err := childNet(node)
	if err != nil {
		return err
	}

	b.Vias = append(b.Vias, Via{
		Position: at,
		Size:     size,
		Drill:    drill,
		Layers:   getLayers(layersNode),
		Net:      net,
		Line:     node.Line(),
	})
	return nil
}

func (b *Board) parseCircle(node *kicadsexp.List) error {
	center, err := childPosition(node, "center")
	if err != nil {
		return err
	}
	end, err := childPosition(node, "end")
	if err != nil {
		return err
	}
	layer, err := childString(node, "layer")
	if err != nil {
		return err
	}
	width, err := strokeWidth(node)
	if err != nil {
		return err
	}

	b.Circles = append(b.Circles, Circle{
		Center: center,
		End:    end,
		Width:  width,
		Layer:  layer,
		Line:   node.Line(),
	})
	return nil
}

// childNet reads an optional (net N); a missing net is net 0.
func childNet(node *kicadsexp.List) (int, error) {
	netNode, ok := findNode(node, "net")
	if !ok {
		return 0, nil
	}
	return getInt(netNode, 1)
}

// ParseString parses a board held in memory
func ParseString(s string) (*Board, error) {
	return Parse(strings.NewReader(s))
}
