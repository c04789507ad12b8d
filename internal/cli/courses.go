package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
)

// NewCoursesCmd creates the 'courses' command listing every course.
func NewCoursesCmd(opts *Options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "courses",
		Aliases: []string{"ls"},
		Short:   "List all courses",
		Long: `List every course in the database.

With database.seed_on_init enabled (the default), the table is replaced by
the built-in timetable before the listing, so courses added earlier are not
shown. Use 'courses add' to append courses.`,
		Example: `  course-hub courses
  course-hub ls --json
  course-hub courses add 机器学习 --start 14:00 --end 15:35 --day W`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCourses(cmd.Context(), cmd.OutOrStdout(), opts, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	cmd.AddCommand(NewCoursesAddCmd(opts))

	return cmd
}

func runCourses(ctx context.Context, w io.Writer, opts *Options, jsonOutput bool) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		courses := svc.Courses()
		if jsonOutput {
			return printJSON(w, courses)
		}

		if len(courses) == 0 {
			fmt.Fprintln(w, "No courses in the database.")
			fmt.Fprintln(w, "Run 'course-hub init' to load the built-in timetable.")
			return nil
		}

		fmt.Fprintf(w, "Courses (%d):\n\n", len(courses))
		for i, c := range courses {
			fmt.Fprintf(w, "  %d. %s\n", i+1, formatCourse(c))
		}
		return nil
	})
}
