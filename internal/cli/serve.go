package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/server"
)

// NewServeCmd creates the 'serve' command running the HTTP API.
func NewServeCmd(opts *Options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Long: `Start an HTTP server exposing the schedule, ask, recommend and search
operations as JSON endpoints:

  GET  /healthz
  GET  /courses
  GET  /schedule?week=1&day=1
  POST /ask            {"question": "..."}
  GET  /recommend?course=人工智能&k=3
  GET  /search?q=教学楼&limit=5

Shuts down gracefully on SIGINT/SIGTERM.`,
		Example: `  course-hub serve
  course-hub serve --addr 0.0.0.0:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func runServe(ctx context.Context, opts *Options, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	return opts.withService(ctx, func(svc *app.Service) error {
		return server.New(svc, addr).Run(ctx)
	})
}
