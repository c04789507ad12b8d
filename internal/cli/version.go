package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/course-hub/internal/version"
)

// NewVersionCmd creates the 'version' command
func NewVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version, commit hash, and build date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), cmd.OutOrStdout(), check, version.NewChecker())
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")

	return cmd
}

func runVersion(ctx context.Context, w io.Writer, check bool, checker *version.Checker) error {
	info := version.Get()
	fmt.Fprintf(w, "Version:  %s\n", info.Version)
	fmt.Fprintf(w, "Commit:   %s\n", info.Commit)
	fmt.Fprintf(w, "Built:    %s\n", info.Date)

	if !check {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	latest, err := checker.CheckUpdate(ctx, true)
	if err != nil {
		return err
	}
	if latest == "" {
		fmt.Fprintln(w, "✓ Up to date")
	} else {
		fmt.Fprintf(w, "A newer release is available: %s\n", latest)
		fmt.Fprintf(w, "  https://github.com/%s/%s/releases/latest\n", version.RepoOwner, version.RepoName)
	}
	return nil
}
