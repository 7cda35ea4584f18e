package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMotor/internal/config"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/preview"
)

var (
	previewFlags  config.Flags
	previewOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview [board_file]",
	Short: "Render the winding to an image",
	Long: `Renders copper and outline to a PNG or lossless WebP image, picked by the
output file's extension. Without a board file the winding is generated from
the config and flags, as "generate" would.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "motor.png", "image file (.png or .webp)")
	previewCmd.Flags().Float64Var(&previewFlags.PixelsPerMM, "scale", 0, "pixels per mm")
	geometryFlags(previewCmd, &previewFlags)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if _, err := preview.FormatFromPath(previewOutput); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Resolve(previewFlags)

	var board *pcb.Board
	if len(args) == 1 {
		if board, err = readBoard(cmd, args[0]); err != nil {
			return err
		}
	} else {
		layout, err := buildLayout(cfg)
		if err != nil {
			return err
		}
		if board, err = pcb.ParseString(layout.String()); err != nil {
			return fmt.Errorf("failed to read generated winding: %w", err)
		}
	}

	img, err := preview.Render(board, preview.Options{
		PixelsPerMM: cfg.Preview.PixelsPerMM,
		Margin:      cfg.Preview.Margin,
	})
	if err != nil {
		return err
	}
	if err := preview.WriteFile(previewOutput, img); err != nil {
		return err
	}

	b := img.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%dx%d)\n", previewOutput, b.Dx(), b.Dy())
	return nil
}
