package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/storage"
)

// NewHistoryCmd creates the 'history' command showing recorded queries.
func NewHistoryCmd(opts *Options) *cobra.Command {
	var days int
	var prune bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent queries",
		Long: `Show queries recorded by every front end. Query text is stored only as a
SHA-256 hash, so the history shows kinds, result counts and times.`,
		Example: `  course-hub history
  course-hub history --days 30 --json
  course-hub history --prune   # delete records older than history.retention_days`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), opts, days, prune, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Show queries from the last N days")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete records older than the retention period first")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runHistory(ctx context.Context, w io.Writer, opts *Options, days int, prune, jsonOutput bool) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	store := storage.NewStorage(dbPath)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if prune {
		if err := store.Cleanup(ctx, cfg.History.Retention()); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	records, err := store.ListQueries(ctx, since)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No queries in the last %d days.\n", days)
		return nil
	}

	counts := lo.CountValuesBy(records, func(r storage.QueryRecord) storage.QueryKind { return r.Kind })
	fmt.Fprintf(w, "Queries in the last %d days: %d\n", days, len(records))
	for _, kind := range []storage.QueryKind{storage.KindSchedule, storage.KindAsk, storage.KindRecommend, storage.KindSearch} {
		fmt.Fprintf(w, "  %-10s %d\n", kind, counts[kind])
	}
	fmt.Fprintln(w)

	for _, r := range records {
		fmt.Fprintf(w, "  %s  %-10s %3d results  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Kind, r.ResultsCount, r.QueryHash[:min(12, len(r.QueryHash))])
	}
	return nil
}
