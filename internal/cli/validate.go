package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nutriprep/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration file",
	Long: `Load the configuration and report every problem found. Warnings are
informational; errors would stop a run.`,
	Args: cobra.NoArgs,
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if reportIssues(config.Validate(cfg)) {
		fatalf("configuration is invalid")
	}
	fmt.Println("configuration is valid")
}
