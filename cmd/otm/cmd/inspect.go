package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/pcb"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <board_file>",
	Short: "Show copper statistics of a board",
	Long: `Reads a KiCad board, or a bare body printed by "generate --stdout", and
lists the segments and track length per layer, the vias, the circles and the
bounding box. Use "-" to read from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	board, err := readBoard(cmd, args[0])
	if err != nil {
		return err
	}
	printBoardInfo(cmd.OutOrStdout(), board)
	return nil
}

// readBoard parses the named board file, or standard input for "-".
func readBoard(cmd *cobra.Command, filename string) (*pcb.Board, error) {
	var (
		board *pcb.Board
		err   error
	)
	if filename == "-" {
		board, err = pcb.Parse(cmd.InOrStdin())
	} else {
		board, err = pcb.ParseFile(filename)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing board: %w", err)
	}
	return board, nil
}

func printBoardInfo(w io.Writer, board *pcb.Board) {
	if board.Version != 0 {
		fmt.Fprintf(w, "Version: %d\n", board.Version)
		fmt.Fprintf(w, "Generator: %s\n", board.Generator)
		fmt.Fprintf(w, "Layers: %d\n", len(board.Layers))
		fmt.Fprintf(w, "Nets: %d\n", len(board.Nets))
	}

	stats := board.TrackStats()
	fmt.Fprintf(w, "\n%-12s %8s %12s\n", "Layer", "Segments", "Length (mm)")
	fmt.Fprintln(w, "──────────────────────────────────")
	var segments int
	var length float64
	for _, s := range stats {
		fmt.Fprintf(w, "%-12s %8d %12.3f\n", s.Layer, s.Segments, s.Length)
		segments += s.Segments
		length += s.Length
	}
	fmt.Fprintf(w, "%-12s %8d %12.3f\n\n", "total", segments, length)

	fmt.Fprintf(w, "Vias: %d\n", len(board.Vias))
	fmt.Fprintf(w, "Circles: %d\n", len(board.Circles))
	for _, c := range board.Circles {
		fmt.Fprintf(w, "  %s radius %.3f mm at (%.3f, %.3f)\n", c.Layer, c.Radius(), c.Center.X, c.Center.Y)
	}
	if board.Skipped > 0 {
		fmt.Fprintf(w, "Other items: %d\n", board.Skipped)
	}

	if box, ok := board.GetBoundingBox(); ok {
		fmt.Fprintf(w, "Copper extent: %.3f x %.3f mm\n", box.URx-box.LLx, box.URy-box.LLy)
		fmt.Fprintf(w, "Copper center: (%.3f, %.3f) mm\n", (box.LLx+box.URx)/2, (box.LLy+box.URy)/2)
	}
}

