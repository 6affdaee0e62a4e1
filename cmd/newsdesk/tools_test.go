package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestToolsCmd(t *testing.T) {
	useConfig(t, sqliteConfig(t))

	for _, format := range []string{"table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().StringP("format", "f", "table", "")
			_ = cmd.Flags().Set("format", format)
			var out bytes.Buffer
			cmd.SetOut(&out)

			if err := toolsCmd.RunE(cmd, nil); err != nil {
				t.Fatalf("tools failed: %v", err)
			}
			if !strings.Contains(out.String(), "fetchAndConvertToMarkdown") {
				t.Errorf("tools output missing fetchAndConvertToMarkdown:\n%s", out.String())
			}
		})
	}
}
