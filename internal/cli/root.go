/*
Package cli implements the course-hub command tree.

Every command that touches schedules builds an app.Service from the layered
configuration (defaults, config file, COURSE_HUB_* environment, .env) and
prints results to stdout.
*/
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/config"
	"github.com/khanglvm/course-hub/internal/logging"
)

// Options holds flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string

	cfg *config.Config
}

// Config loads the configuration once and configures logging from it.
func (o *Options) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	o.cfg = cfg
	return cfg, nil
}

// withService opens a started service for the duration of fn.
func (o *Options) withService(ctx context.Context, fn func(svc *app.Service) error) error {
	cfg, err := o.Config()
	if err != nil {
		return err
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer svc.Close()

	return fn(svc)
}

// NewRootCmd builds the full command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "course-hub",
		Short: "Look up class schedules, ask in plain language, get course recommendations",
		Long: `course-hub looks up university class schedules stored in a local SQLite
database.

Schedules can be queried directly by week and weekday, or with a free-form
question that a language model reduces to "week weekday". A small embedding
model trained on course names recommends courses with similar names.

Front ends:
  • CLI commands (this tool)
  • course-hub shell  - interactive terminal UI
  • course-hub serve  - JSON HTTP API
  • course-hub mcp    - MCP tools over stdio`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default ~/.course-hub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewInitCmd(opts))
	rootCmd.AddCommand(NewCoursesCmd(opts))
	rootCmd.AddCommand(NewQueryCmd(opts))
	rootCmd.AddCommand(NewAskCmd(opts))
	rootCmd.AddCommand(NewRecommendCmd(opts))
	rootCmd.AddCommand(NewSearchCmd(opts))
	rootCmd.AddCommand(NewHistoryCmd(opts))
	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewShellCmd(opts))
	rootCmd.AddCommand(NewMCPCmd(opts))
	rootCmd.AddCommand(NewVerifyCmd(opts))
	rootCmd.AddCommand(NewConfigCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
