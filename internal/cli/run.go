package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nutriprep/internal/config"
	"nutriprep/internal/datasource/file"
	"nutriprep/internal/history"
	"nutriprep/internal/log"
	"nutriprep/internal/metrics"
	"nutriprep/internal/metrics/prompush"
	"nutriprep/internal/pipeline"
)

// defaultDataset is the input file name looked up when neither the argument
// nor the config names one.
const defaultDataset = "nutrition.csv"

var (
	runOut        string
	runMeta       string
	runDrop       []string
	runColumns    []string
	runHistoryDSN string
)

var runCmd = &cobra.Command{
	Use:   "run [input.csv]",
	Short: "Clean and normalize a dataset",
	Long: `Run the full preprocessing pipeline: load the CSV, drop rows with
missing values, collapse duplicate rows, print summary statistics, prune the
configured columns, and min-max scale the numeric features into [0,1].

The input path is taken from the argument, then from the config file, and
finally falls back to ` + defaultDataset + ` in the working directory or its
parent.

Examples:
  nutriprep run                                 # resolve input automatically
  nutriprep run data/nutrition.csv --out cleaned.csv
  nutriprep run --drop id,image,name --columns calories,fat
  nutriprep run --out cleaned.csv --meta run.json --history-dsn runs.db`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	registerRunFlags(runCmd)
}

// registerRunFlags binds the run flags to their package variables. Split out
// of init so tests can register the same flags on a fresh command and control
// which of them count as explicitly set.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runOut, "out", "",
		"write the cleaned CSV to this path (default: config output.path)")
	cmd.Flags().StringVar(&runMeta, "meta", "",
		"write the run metadata JSON to this path (default: config output.metadata_path)")
	cmd.Flags().StringSliceVar(&runDrop, "drop", []string{"id", "image"},
		"columns to remove before normalization")
	cmd.Flags().StringSliceVar(&runColumns, "columns", nil,
		"numeric columns to normalize (default: every numeric column)")
	cmd.Flags().StringVar(&runHistoryDSN, "history-dsn", "",
		"record the run in this SQLite database (default: config history)")
}

func runRun(cmd *cobra.Command, args []string) {
	logger := log.NewLogger(verbose)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if reportIssues(config.Validate(cfg)) {
		fatalf("configuration is invalid")
	}

	input := resolveInput(args, cfg)
	opt := runOptions(cmd, cfg, input)

	flush := setupMetrics(logger, cfg, opt.Job)
	defer flush()

	ctx := context.Background()
	res, err := pipeline.New(logger, opt).Run(ctx)
	if err != nil {
		reportRunError(os.Stderr, input, err)
		flush()
		os.Exit(1)
	}

	res.Summary.Render(os.Stdout)

	dsn, enabled := historyTarget(cfg)
	if enabled {
		if err := recordRun(ctx, dsn, res); err != nil {
			logger.WithError(err).Warn("failed to record run history")
		}
	}
}

// runOptions merges config values with explicitly set flags. A flag the user
// set wins over the config; otherwise a non-empty config value wins over the
// flag default.
func runOptions(cmd *cobra.Command, cfg config.Config, input string) pipeline.Options {
	opt := pipeline.Options{
		Job:              cfg.Job,
		InputPath:        input,
		OutputPath:       runOut,
		MetadataPath:     runMeta,
		Comma:            cfg.Input.CommaRune(),
		TrimSpace:        cfg.Input.TrimSpace,
		NATokens:         cfg.Input.NATokens,
		DropColumns:      runDrop,
		NormalizeColumns: runColumns,
	}

	if !cmd.Flags().Changed("out") && cfg.Output.Path != "" {
		opt.OutputPath = cfg.Output.Path
	}
	if !cmd.Flags().Changed("meta") && cfg.Output.MetadataPath != "" {
		opt.MetadataPath = cfg.Output.MetadataPath
	}
	if !cmd.Flags().Changed("drop") && len(cfg.Clean.DropColumns) > 0 {
		opt.DropColumns = cfg.Clean.DropColumns
	}
	if !cmd.Flags().Changed("columns") && len(cfg.Normalize.Columns) > 0 {
		opt.NormalizeColumns = cfg.Normalize.Columns
	}
	return opt
}

// resolveInput picks the input path: argument, then config, then the default
// dataset name resolved against the working directory and its parent.
func resolveInput(args []string, cfg config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg.Input.Path != "" {
		return cfg.Input.Path
	}
	wd, err := os.Getwd()
	if err != nil {
		return defaultDataset
	}
	return file.ResolveDefault(wd, defaultDataset)
}

// reportRunError prints a failure to w: a guidance message when the input
// file does not exist, otherwise the error plus a remediation hint.
func reportRunError(w io.Writer, input string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "input file %s was not found\n", input)
		fmt.Fprintln(w, "place the dataset in the working directory or pass its path: nutriprep run <input.csv>")
		return
	}
	fmt.Fprintf(w, "run failed: %v\n", err)
	fmt.Fprintln(w, "check the input file and the configuration, then try again")
}

// setupMetrics decides the metrics backend (flag, then environment, then
// config) and installs it. The returned function flushes pushed metrics and
// is safe to call more than once.
func setupMetrics(logger *logrus.Logger, cfg config.Config, job string) func() {
	backendName := metricsBackend
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}

	switch backendName {
	case "prometheus":
		gwURL := pushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = cfg.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			logger.WithError(err).Warn("metrics: failed to init pushgateway backend; using nop")
			break
		}
		logger.WithFields(logrus.Fields{"backend": backendName, "url": gwURL, "job": job}).Debug("metrics enabled")
		metrics.SetBackend(b)

		flushed := false
		return func() {
			if flushed {
				return
			}
			flushed = true
			if err := metrics.Flush(); err != nil {
				logger.WithError(err).Warn("metrics: flush failed")
			}
		}

	case "", "none":
		logger.Debug("metrics disabled")

	default:
		logger.WithField("backend", backendName).Warn("unknown metrics backend; metrics disabled")
	}
	return func() {}
}

// historyTarget resolves the run log DSN: the flag both selects the database
// and enables recording; otherwise the config decides.
func historyTarget(cfg config.Config) (string, bool) {
	if runHistoryDSN != "" {
		return runHistoryDSN, true
	}
	return cfg.History.DSN, cfg.History.Enabled
}

func recordRun(ctx context.Context, dsn string, res *pipeline.Result) error {
	store, closeFn, err := history.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Init(ctx); err != nil {
		return err
	}

	md := res.Metadata
	return store.Record(ctx, history.Entry{
		RunID:             md.RunID,
		Job:               md.Job,
		InputPath:         md.InputPath,
		OutputPath:        md.OutputPath,
		RowsIn:            md.LoadedShape.Rows,
		RowsOut:           md.FinalShape.Rows,
		ColsIn:            md.LoadedShape.Cols,
		ColsOut:           md.FinalShape.Cols,
		DroppedColumns:    md.DroppedColumns,
		NormalizedColumns: md.NormalizedColumns,
		Scaler:            md.Scaler,
		StartedAt:         md.StartedAt,
		Duration:          res.Elapsed,
	})
}
