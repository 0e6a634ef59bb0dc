package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/stitch/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			production, _ := cmd.Flags().GetBool("production")
			noCache, _ := cmd.Flags().GetBool("no-cache")
			resetCache, _ := cmd.Flags().GetBool("reset-cache")
			timings, _ := cmd.Flags().GetBool("timings")

			report, err := c.app.Build(cmd.Context(), app.BuildOptions{
				Dir:        dir,
				Production: production,
				NoCache:    noCache,
				ResetCache: resetCache,
				Timings:    timings,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d modules in %d bundles, %d files written\n",
				report.Modules, report.Bundles, report.Files)
			return nil
		},
	}
	cmd.Flags().BoolP("production", "p", false, "Merge statically loaded bundles into one")
	cmd.Flags().BoolP("no-cache", "n", false, "Neither read nor write the module cache")
	cmd.Flags().Bool("reset-cache", false, "Discard the module cache before building")
	cmd.Flags().Bool("timings", false, "Log the duration of every stage")
	return cmd
}
