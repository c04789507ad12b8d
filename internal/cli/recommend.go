package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
)

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd(opts *Options) *cobra.Command {
	var topK int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend <course>",
		Short: "Recommend courses with names similar to the given course",
		Long: `Rank every other course by the cosine similarity of its name embedding to
the given course name and print the best matches.

The name does not have to exist in the database; unknown words fall back to
the unknown-token embedding.`,
		Example: `  course-hub recommend 人工智能
  course-hub recommend 数据结构 --top-k 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd.Context(), cmd.OutOrStdout(), opts, joinArgs(args), topK, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of recommendations (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runRecommend(ctx context.Context, w io.Writer, opts *Options, name string, topK int, jsonOutput bool) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		if topK == 0 {
			topK = svc.TopK()
		}

		recs, err := svc.Recommend(ctx, name, topK)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(w, recs)
		}
		if !lo.Contains(svc.CourseNames(), name) {
			fmt.Fprintf(w, "Note: %q is not a known course.\n", name)
		}
		fmt.Fprint(w, course.FormatRecommendations(name, recs))
		return nil
	})
}
