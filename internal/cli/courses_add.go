package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
)

// NewCoursesAddCmd creates the 'courses add' command.
//
// Supports two modes:
//  1. Flags: one course described by --start, --end, --day and friends
//  2. JSON: one course object or an array of them
func NewCoursesAddCmd(opts *Options) *cobra.Command {
	var (
		c         course.Course
		day       string
		jsonInput string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add courses to the database",
		Long: `Append courses to the schedule table and retrain the recommender.

Every course is validated first (times as HH:MM, weekday 1-7 or M T W R F S U,
weeks as "1-17" or a comma-separated list); nothing is written if any course
is invalid.

Note: with database.seed_on_init enabled (the default), every later command
replaces the table with the built-in timetable and added courses are lost.
Set it to false in the config to keep them.`,
		Example: `  # Flag mode
  course-hub courses add 机器学习 --start 14:00 --end 15:35 --day W --weeks 1-17 --location 3号教学楼101 --teacher Q

  # JSON mode
  course-hub courses add --json '[{"name":"体育","start_time":"08:00","end_time":"09:35","week_list":"1-17","weekday":5}]'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var courses []course.Course
			var err error
			if jsonInput != "" {
				if len(args) > 0 {
					return errors.New("a course name cannot be combined with --json")
				}
				courses, err = parseCoursesJSON(jsonInput)
			} else {
				if len(args) == 0 {
					return errors.New("course name required when using flag mode")
				}
				c.Name = args[0]
				courses, err = courseFromFlags(c, day)
			}
			if err != nil {
				return err
			}
			return runCoursesAdd(cmd.Context(), cmd.OutOrStdout(), opts, courses)
		},
	}

	cmd.Flags().StringVar(&c.StartTime, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&c.EndTime, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVarP(&day, "day", "d", "", "Weekday: 1-7 or M T W R F S U")
	cmd.Flags().StringVarP(&c.WeekList, "weeks", "w", course.FullTerm, `Teaching weeks: "1-17" or a list like "1,3,5"`)
	cmd.Flags().StringVarP(&c.Location, "location", "l", "", "Room")
	cmd.Flags().StringVarP(&c.TeacherID, "teacher", "t", "", "Teacher ID")
	cmd.Flags().StringVarP(&jsonInput, "json", "j", "", "Course JSON: an object or an array of objects")

	return cmd
}

func courseFromFlags(c course.Course, day string) ([]course.Course, error) {
	if day == "" {
		return nil, errors.New("--day is required")
	}
	d, err := course.ParseWeekday(day)
	if err != nil {
		return nil, err
	}
	c.Weekday = d
	return []course.Course{c}, nil
}

// parseCoursesJSON accepts either a single course object or an array.
func parseCoursesJSON(input string) ([]course.Course, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("no input provided")
	}

	var courses []course.Course
	if strings.HasPrefix(input, "[") {
		if err := json.Unmarshal([]byte(input), &courses); err != nil {
			return nil, fmt.Errorf("failed to parse courses: %w", err)
		}
	} else {
		var c course.Course
		if err := json.Unmarshal([]byte(input), &c); err != nil {
			return nil, fmt.Errorf("failed to parse course: %w", err)
		}
		courses = []course.Course{c}
	}

	if len(courses) == 0 {
		return nil, errors.New("no courses found in input")
	}
	for i := range courses {
		courses[i].ID = 0
	}
	return courses, nil
}

func runCoursesAdd(ctx context.Context, w io.Writer, opts *Options, courses []course.Course) error {
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	// Open without Start: starting would reseed the table first.
	svc, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.AddCourses(ctx, courses)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Added %d course(s)\n", n)
	for _, c := range courses {
		fmt.Fprintf(w, "  • %s\n", formatCourse(c))
	}
	fmt.Fprintf(w, "✓ Courses in database: %d\n", len(svc.Courses()))
	if cfg.Database.SeedOnInit {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Note: database.seed_on_init is true, so the next command reloads the")
		fmt.Fprintln(w, "built-in timetable and drops these courses. Set it to false to keep them.")
	}
	return nil
}
