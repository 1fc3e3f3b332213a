// Package cli implements the nutriprep command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nutriprep/internal/config"
)

var (
	cfgFile        string
	verbose        bool
	metricsBackend string
	pushgatewayURL string
)

var rootCmd = &cobra.Command{
	Use:   "nutriprep",
	Short: "Nutrition dataset cleaning and normalization pipeline",
	Long: `nutriprep loads a delimited nutrition dataset, removes missing and
duplicate rows, prunes configured columns, min-max scales the numeric
features into [0,1], and writes the cleaned table together with the
fitted scaling parameters.`,
}

// Execute runs the root command. Subcommands report their own errors; a
// failed command exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./nutriprep.json, ./configs/nutriprep.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsBackend, "metrics-backend", "",
		"metrics backend (none, prometheus); overrides config and METRICS_BACKEND")
	rootCmd.PersistentFlags().StringVar(&pushgatewayURL, "pushgateway-url", "",
		"Prometheus Pushgateway base URL; overrides config and PUSHGATEWAY_URL")
}

// fatalf prints a message to stderr and exits non-zero.
func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// reportIssues prints validation findings to stderr and reports whether any
// of them is an error.
func reportIssues(issues []config.Issue) bool {
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	return hasError
}
