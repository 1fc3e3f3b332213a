package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nutriprep/internal/config"
	"nutriprep/internal/history"
)

var (
	historyDSN   string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	Long: `List the most recent runs recorded in the run log database, newest
first: run id, job, row and column counts before and after cleaning, when the
run started, and how long it took.`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDSN, "history-dsn", "",
		"SQLite database to read (default: config history.dsn)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10,
		"maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fatalf("load config: %v", err)
	}

	dsn := historyDSN
	if dsn == "" {
		dsn = cfg.History.DSN
	}

	ctx := context.Background()
	store, closeFn, err := history.Open(ctx, dsn)
	if err != nil {
		fatalf("open run log: %v", err)
	}
	defer closeFn()

	if err := store.Init(ctx); err != nil {
		fatalf("open run log: %v", err)
	}
	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		fatalf("read run log: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("no recorded runs")
		return
	}

	fmt.Fprintf(os.Stdout, "%-22s %-8s %-18s %-10s %-15s %s\n",
		"run id", "job", "rows", "cols", "started", "duration")
	for _, e := range entries {
		rows := fmt.Sprintf("%s -> %s", humanize.Comma(int64(e.RowsIn)), humanize.Comma(int64(e.RowsOut)))
		cols := fmt.Sprintf("%d -> %d", e.ColsIn, e.ColsOut)
		fmt.Fprintf(os.Stdout, "%-22s %-8s %-18s %-10s %-15s %s\n",
			e.RunID, e.Job, rows, cols,
			humanize.Time(e.StartedAt), e.Duration.Truncate(time.Millisecond))
	}
}
