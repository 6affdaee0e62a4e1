package main

import (
	"fmt"

	"github.com/harunnryd/newsdesk/cmd/newsdesk/runtime"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Build and publish the news digest",
}

var digestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Build one digest now and send it to every enabled publisher",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithRuntime(cmd, func(r *runtime.RuntimeComponents) error {
			d, err := r.Digest.RunOnce(r.Ctx)
			if len(d.Articles) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), d.Markdown())
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles, digest skipped.")
			}
			if err != nil {
				return fmt.Errorf("digest failed: %w", err)
			}
			return nil
		})
	},
}

var digestNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show when the scheduled digest runs next",
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithRuntime(cmd, func(r *runtime.RuntimeComponents) error {
			next := r.Digest.Next()
			if next.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Digest schedule is not configured (digest.schedule).")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", next.Format("2006-01-02 15:04:05 MST"), r.Config.Digest.Schedule)
			return nil
		})
	},
}

func init() {
	digestCmd.AddCommand(digestRunCmd)
	digestCmd.AddCommand(digestNextCmd)
	rootCmd.AddCommand(digestCmd)
}
