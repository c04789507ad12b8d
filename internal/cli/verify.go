package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/config"
	"github.com/khanglvm/course-hub/internal/storage"
)

// NewVerifyCmd creates the 'verify' command for checking the setup.
func NewVerifyCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and database",
		Long: `Check that the configuration is valid, the database opens and holds
courses, and a language model API key is available.`,
		Example: `  course-hub verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	return cmd
}

func runVerify(ctx context.Context, w io.Writer, opts *Options) error {
	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	fmt.Fprintf(w, "✓ Config: %s\n", configPath)

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	store := storage.NewStorage(dbPath)
	if err := store.Init(ctx); err != nil {
		fmt.Fprintf(w, "✗ Database: %s (%v)\n", dbPath, err)
		return err
	}
	defer store.Close()

	courses, err := store.ListCourses(ctx)
	if err != nil {
		fmt.Fprintf(w, "✗ Database: %s (%v)\n", dbPath, err)
		return err
	}
	fmt.Fprintf(w, "✓ Database: %s (%d courses)\n", dbPath, len(courses))
	if len(courses) == 0 && !cfg.Database.SeedOnInit {
		fmt.Fprintln(w, "  Run 'course-hub init' to load the built-in timetable.")
	}

	if cfg.LLM.APIKey == "" {
		fmt.Fprintf(w, "✗ Language model: no API key (set llm.api_key or COURSE_HUB_LLM_API_KEY)\n")
	} else {
		fmt.Fprintf(w, "✓ Language model: %s at %s\n", cfg.LLM.Model, cfg.LLM.BaseURL)
	}

	return nil
}
