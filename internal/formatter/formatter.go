// Package formatter renders articles and tool listings for the CLI.
package formatter

import (
	"fmt"
	"strings"

	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/tool"
)

type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

type Formatter interface {
	FormatArticles([]news.Article) (string, error)
	FormatTools([]tool.ToolDescriptor) (string, error)
}

func New(format OutputFormat) (Formatter, error) {
	switch format {
	case OutputFormatTable:
		return NewTableFormatter(), nil
	case OutputFormatJSON:
		return NewJSONFormatter(), nil
	case OutputFormatYAML:
		return NewYAMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", format)
	}
}

func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (supported: table, json, yaml)", s)
	}
}

// toolView is the serialised shape of a tool descriptor.
type toolView struct {
	Name         string                 `json:"name" yaml:"name"`
	Description  string                 `json:"description" yaml:"description"`
	Source       string                 `json:"source" yaml:"source"`
	Access       string                 `json:"access" yaml:"access"`
	Schemes      []string               `json:"schemes,omitempty" yaml:"schemes,omitempty"`
	Capabilities []string               `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Parameters   map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func toolViews(descriptors []tool.ToolDescriptor) []toolView {
	views := make([]toolView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, toolView{
			Name:         d.Definition.Name,
			Description:  d.Definition.Description,
			Source:       d.Metadata.Source,
			Access:       d.Metadata.Access(),
			Schemes:      d.Metadata.Schemes,
			Capabilities: d.Metadata.Capabilities,
			Parameters:   d.Definition.Parameters,
		})
	}
	return views
}
