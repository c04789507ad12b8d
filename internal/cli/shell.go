package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/tui"
)

// NewShellCmd creates the 'shell' command starting the terminal UI.
func NewShellCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive terminal UI",
		Long: `Start an interactive terminal UI. Type:

  1 1            courses on Monday of week 1
  ?<question>    ask the language model
  @<course>      recommend similar courses
  /<text>        search courses
  clear          clear the output

Press Esc or Ctrl+C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), opts)
		},
	}

	return cmd
}

func runShell(ctx context.Context, opts *Options) error {
	return opts.withService(ctx, func(svc *app.Service) error {
		stats, _ := svc.EngineStats()
		summary := fmt.Sprintf("%d courses loaded, recommender vocabulary %d tokens", len(svc.Courses()), stats.VocabSize)
		return tui.Run(svc, summary)
	})
}
