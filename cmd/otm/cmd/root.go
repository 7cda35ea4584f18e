package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceMotor/internal/config"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/preview"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/winding"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "otm",
	Short: "OpenTraceMotor - planar PCB motor winding generator",
	Long: `OpenTraceMotor (otm) generates the copper of a six-pole, four-layer
PCB motor winding and splices it into a KiCad board.

Examples:
  otm generate -t base.kicad_pcb -o motor.kicad_pcb   # Write a motor board
  otm generate --stdout --turns 8                     # Print the records only
  otm inspect motor.kicad_pcb                         # Per-layer copper statistics
  otm lint --header-lines 99 motor.kicad_pcb          # Check the generated records
  otm preview -o motor.webp                           # Render the winding`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON config file (defaults to the reference design)")
}

// setupLogging installs a development logger with --verbose, otherwise a
// production logger that only reports warnings and errors.
func setupLogging(cmd *cobra.Command, args []string) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	logger = l
	winding.SetLogger(l)
	document.SetLogger(l)
	preview.SetLogger(l)
	return nil
}

// loadConfig returns the config file named by --config, or the defaults.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	logger.Debug("loaded config", zap.String("path", configPath))
	return cfg, nil
}

// buildLayout validates cfg and generates the winding.
func buildLayout(cfg config.Config) (*winding.Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := winding.Assemble(cfg.MotorSpec(), cfg.SpiralSpec(), cfg.TrackSpec(), cfg.ViaPad(), cfg.WindingClearances())
	if err != nil {
		return nil, fmt.Errorf("failed to generate winding: %w", err)
	}
	return layout, nil
}

// geometryFlags registers the winding overrides shared by generate and
// preview.
func geometryFlags(cmd *cobra.Command, f *config.Flags) {
	cmd.Flags().IntVar(&f.Turns, "turns", 0, "full turns per spiral")
	cmd.Flags().Float64Var(&f.Pitch, "pitch", 0, "gap between neighbouring turns in mm")
	cmd.Flags().Float64Var(&f.TrackWidth, "width", 0, "track width in mm")
}
