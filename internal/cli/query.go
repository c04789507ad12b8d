package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
)

var errWeekDay = errors.New("enter a valid week and weekday, e.g. '1 1' for Monday of week 1")

// NewQueryCmd creates the 'query' command for week/weekday lookups.
func NewQueryCmd(opts *Options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query <week> <weekday>",
		Short: "Show the courses held on a weekday of a given week",
		Long: `Show the courses held on a weekday of a given week, ordered by start time.

The weekday is a number from 1 (Monday) to 7 (Sunday) or one of the codes
M T W R F S U.`,
		Example: `  course-hub query 1 1     # Monday of week 1
  course-hub query 3 R     # Thursday of week 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, day, err := parseWeekDay(args[0], args[1])
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), opts, week, day, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func parseWeekDay(weekArg, dayArg string) (int, course.Weekday, error) {
	week, err := strconv.Atoi(weekArg)
	if err != nil || week < 1 {
		return 0, 0, errWeekDay
	}
	day, err := course.ParseWeekday(dayArg)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errWeekDay, err)
	}
	return week, day, nil
}

func runQuery(ctx context.Context, w io.Writer, opts *Options, week int, day course.Weekday, jsonOutput bool) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		res, err := svc.Schedule(ctx, week, day)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(w, res)
		}
		fmt.Fprint(w, res.Text())
		return nil
	})
}

// NewAskCmd creates the 'ask' command for natural-language lookups.
func NewAskCmd(opts *Options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask about the schedule in plain language",
		Long: `Send the question to the configured language model, which reduces it to
"week weekday", then look up that schedule.

Requires llm.api_key in the config or COURSE_HUB_LLM_API_KEY.`,
		Example: `  course-hub ask 第三周星期二有什么课
  course-hub ask "what do I have on Monday of week 5?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd.OutOrStdout(), opts, joinArgs(args), jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runAsk(ctx context.Context, w io.Writer, opts *Options, question string, jsonOutput bool) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		res, err := svc.Ask(ctx, question)
		if errors.Is(err, llm.ErrUnparseableReply) {
			return fmt.Errorf("could not parse model reply: %s", res.Reply)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(w, res)
		}
		fmt.Fprintf(w, "Model reply: %s\n", res.Reply)
		fmt.Fprint(w, res.Schedule.Text())
		return nil
	})
}
