package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/mcp"
	"github.com/khanglvm/course-hub/internal/version"
)

// NewMCPCmd creates the 'mcp' command serving tools over stdio.
func NewMCPCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve course tools to an MCP client over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so an AI client can
call course_list, course_schedule, course_ask, course_recommend and
course_search.

Logs go to stderr; stdout carries only JSON-RPC messages.`,
		Example: `  # Claude Desktop / any MCP client
  {"command": "course-hub", "args": ["mcp"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	return cmd
}

func runMCP(ctx context.Context, opts *Options, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return opts.withService(ctx, func(svc *app.Service) error {
		return mcp.NewServer(svc, version.GetVersion(), out).Run(ctx, in)
	})
}
