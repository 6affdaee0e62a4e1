package main

import (
	"fmt"

	"github.com/harunnryd/newsdesk/internal/extract"
	"github.com/harunnryd/newsdesk/internal/formatter"
	"github.com/harunnryd/newsdesk/internal/tool"
	"github.com/harunnryd/newsdesk/internal/tool/builtin"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools offered to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatRaw, _ := cmd.Flags().GetString("format")
		format, err := formatter.ParseOutputFormat(formatRaw)
		if err != nil {
			return err
		}
		f, err := formatter.New(format)
		if err != nil {
			return err
		}

		loadedCfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		extractor, err := extract.New(loadedCfg.Extractor)
		if err != nil {
			return err
		}
		registry, err := builtin.Default(extractor)
		if err != nil {
			return err
		}

		out, err := f.FormatTools(tool.NewRunner(registry).Descriptors())
		if err != nil {
			return fmt.Errorf("failed to format tools: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringP("format", "f", "table", "output format (table, json, yaml)")
}
