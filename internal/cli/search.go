package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
)

// NewSearchCmd creates the 'search' command.
func NewSearchCmd(opts *Options) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search courses by name, location or teacher",
		Long: `Search course records with BM25 keyword matching fused with name
similarity from the recommender (70% similarity, 30% keyword).`,
		Example: `  course-hub search 教学楼
  course-hub search 数据 --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), opts, joinArgs(args), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Maximum number of results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

type searchHit struct {
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	TeacherID string  `json:"teacher_id"`
	Score     float64 `json:"score"`
}

func runSearch(ctx context.Context, w io.Writer, opts *Options, text string, limit int, jsonOutput bool) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		results, err := svc.Search(ctx, text, limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			hits := make([]searchHit, len(results))
			for i, r := range results {
				hits[i] = searchHit{Name: r.Course.Name, Location: r.Course.Location, TeacherID: r.Course.TeacherID, Score: r.Score}
			}
			return printJSON(w, hits)
		}

		if len(results) == 0 {
			fmt.Fprintf(w, "No courses match %q.\n", text)
			return nil
		}
		fmt.Fprintf(w, "Results for %q:\n\n", text)
		for i, r := range results {
			fmt.Fprintf(w, "  %d. [%.3f] %s\n", i+1, r.Score, formatCourse(r.Course))
		}
		return nil
	})
}
