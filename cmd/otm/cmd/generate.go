package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceMotor/internal/config"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/emit"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/pcb"
)

var (
	generateFlags  config.Flags
	generateStdout bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the motor winding",
	Long: `Generates the six coils, the bore outline and the connecting arcs, and
splices them into a template board after its header lines.

The template must declare every layer the winding uses (F.Cu, In1.Cu,
In2.Cu, B.Cu and Edge.Cuts). With --stdout only the records are printed and
no template is needed.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFlags.Template, "template", "t", "", "template board file")
	generateCmd.Flags().StringVarP(&generateFlags.Output, "output", "o", "", "output board file")
	generateCmd.Flags().IntVar(&generateFlags.HeaderLines, "header-lines", 0, "template lines kept before the winding")
	generateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "print the generated records instead of writing a board")
	geometryFlags(generateCmd, &generateFlags)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Resolve(generateFlags)

	layout, err := buildLayout(cfg)
	if err != nil {
		return err
	}
	body := layout.String()

	if generateStdout {
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}

	if cfg.Template == "" {
		return fmt.Errorf("no template board: pass --template or set \"template\" in the config")
	}
	if err := checkTemplateLayers(cfg.Template); err != nil {
		return err
	}
	if err := document.AssembleFile(cfg.Template, cfg.Output, cfg.HeaderLines, body); err != nil {
		return err
	}

	segments, vias, circles := countRecords(layout.Records())
	logger.Debug("generated winding",
		zap.Float64("motor_radius", layout.MotorRadius),
		zap.Float64("coil_radius", layout.OuterRadius),
		zap.Int("segments", segments),
		zap.Int("vias", vias),
		zap.Int("circles", circles))

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s: %d segments, %d vias, %d circles (motor radius %.3f mm)\n",
		cfg.Output, segments, vias, circles, layout.MotorRadius)
	return nil
}

// checkTemplateLayers fails when the template's layer table lacks a layer
// the winding draws on.
func checkTemplateLayers(path string) error {
	board, err := pcb.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	want := make([]string, 0, len(emit.CopperLayers)+1)
	for _, l := range emit.CopperLayers {
		want = append(want, string(l))
	}
	want = append(want, string(emit.EdgeCuts))

	if missing := board.MissingLayers(want...); len(missing) > 0 {
		return fmt.Errorf("template %s does not declare layers %s", path, strings.Join(missing, ", "))
	}
	return nil
}

func countRecords(records []string) (segments, vias, circles int) {
	for _, r := range records {
		switch {
		case strings.HasPrefix(r, "(segment "):
			segments++
		case strings.HasPrefix(r, "(via "):
			vias++
		case strings.HasPrefix(r, "(gr_circle "):
			circles++
		}
	}
	return segments, vias, circles
}
