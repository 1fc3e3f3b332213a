package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"nutriprep/internal/config"
	"nutriprep/internal/datasource/file"
	"nutriprep/internal/describe"
	pcsv "nutriprep/internal/parser/csv"
)

var describeCmd = &cobra.Command{
	Use:   "describe <input.csv>",
	Short: "Print summary statistics for a dataset",
	Long: `Load a CSV and print count, mean, standard deviation, min, quartiles,
and max for every numeric column, without modifying anything.`,
	Args: cobra.ExactArgs(1),
	Run:  runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fatalf("load config: %v", err)
	}

	input := args[0]
	rc, err := file.NewLocal(input).Open(context.Background())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fatalf("input file %s was not found", input)
		}
		fatalf("describe failed: %v", err)
	}
	defer rc.Close()

	parser := pcsv.NewParser(pcsv.Options{
		Comma:     cfg.Input.CommaRune(),
		TrimSpace: cfg.Input.TrimSpace,
		NATokens:  cfg.Input.NATokens,
	})
	tbl, err := parser.Parse(rc)
	if err != nil {
		fatalf("describe %s: %v", input, err)
	}

	describe.Summarize(tbl).Render(os.Stdout)
}
