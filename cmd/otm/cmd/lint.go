package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/document"
	"github.com/OpenTraceLab/OpenTraceMotor/pkg/kicad/record"
)

var lintHeaderLines int

var lintCmd = &cobra.Command{
	Use:   "lint <file>...",
	Short: "Check generated records",
	Long: `Parses generated records with the strict record grammar and reports
formatting problems: coordinates not written with six decimals, tracks off
the copper layers, zero-length segments and inconsistent vias.

By default each file is a bare body as printed by "generate --stdout". With
--header-lines N the file is an assembled board and the records directly
after its first N lines are checked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().IntVar(&lintHeaderLines, "header-lines", 0, "board header lines before the generated records")
}

func runLint(cmd *cobra.Command, args []string) error {
	parser, err := record.NewParser()
	if err != nil {
		return err
	}

	failed := 0
	for _, filename := range args {
		problems, count, err := lintFile(parser, filename)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", filename, p)
		}
		if len(problems) > 0 {
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d records\n", filename, count)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files have problems", failed, len(args))
	}
	return nil
}

// lintFile returns the problems found in one file, with line numbers
// relative to the whole file, and the number of records checked.
func lintFile(parser *record.Parser, filename string) ([]record.Problem, int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read file: %w", err)
	}
	if lintHeaderLines > 0 {
		data, err = document.Extract(data, lintHeaderLines)
		if err != nil {
			return nil, 0, err
		}
		if len(data) == 0 {
			return nil, 0, fmt.Errorf("no generated records after line %d", lintHeaderLines)
		}
	}

	body, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}

	problems := record.Lint(body)
	for i := range problems {
		problems[i].Line += lintHeaderLines
	}
	return problems, len(body.Records), nil
}
