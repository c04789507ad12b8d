package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
)

// NewInitCmd creates the 'init' command that loads the built-in timetable.
func NewInitCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Load the built-in timetable into the database",
		Long: `Replace the course table with the built-in timetable, remove duplicate
rows and train the recommender. Courses added with 'courses add' are
deleted.

With database.seed_on_init enabled (the default) every command does the
same on start, so the table always holds the built-in timetable. Set it to
false to keep your own courses between commands.

The database is created at ~/.course-hub/courses.db unless database.path is
set in the config.`,
		Example: `  course-hub init
  course-hub init --config ./config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	return cmd
}

func runInit(ctx context.Context, w io.Writer, opts *Options) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	svc, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Init(ctx)
	if err != nil {
		return err
	}
	stats, _ := svc.EngineStats()

	fmt.Fprintf(w, "✓ Database: %s\n", dbPath)
	fmt.Fprintf(w, "✓ Loaded %d courses\n", res.Seeded)
	fmt.Fprintf(w, "✓ Removed %d duplicate rows\n", res.Removed)
	fmt.Fprintf(w, "✓ Recommender trained: %d courses, %d tokens, loss %.4f\n",
		stats.Courses, stats.VocabSize, stats.Loss)
	return nil
}
