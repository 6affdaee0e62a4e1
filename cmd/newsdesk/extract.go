package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harunnryd/newsdesk/internal/extract"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Fetch a page and print it as markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		extractor, err := extract.New(loadedCfg.Extractor)
		if err != nil {
			return err
		}

		content, err := extractor.Extract(commandContext(cmd), args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			fmt.Fprintln(cmd.OutOrStdout(), content.Markdown)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := atomic.WriteFile(out, strings.NewReader(content.Markdown+"\n")); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %q to %s\n", content.Title, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("out", "o", "", "write markdown to this file instead of stdout")
}
