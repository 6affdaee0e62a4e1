package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harunnryd/newsdesk/internal/model/contract"
	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/tool"

	"gopkg.in/yaml.v3"
)

func sampleArticles() []news.Article {
	return []news.Article{
		{ID: "a1", Title: "Agents ship to production", URL: "https://a.example/1", Date: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), Domain: "a.example"},
		{ID: "a2", Title: "Undated note", URL: "https://b.example/2", Date: news.Epoch, Domain: "b.example"},
	}
}

func sampleTools() []tool.ToolDescriptor {
	return []tool.ToolDescriptor{
		{
			Definition: contract.ToolDef{
				Name:        "fetchAndConvertToMarkdown",
				Description: "Fetches a web page and converts it to markdown.",
				Parameters:  map[string]interface{}{"type": "object"},
			},
			Metadata: tool.ToolMetadata{Source: "builtin", Capabilities: []string{"web.fetch"}, Network: true, Schemes: []string{"https"}},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  OutputFormat
		wantErr bool
	}{
		{name: "table format", format: OutputFormatTable},
		{name: "json format", format: OutputFormatJSON},
		{name: "yaml format", format: OutputFormatYAML},
		{name: "invalid format", format: OutputFormat("csv"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && f == nil {
				t.Error("New() returned nil formatter for valid format")
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "TABLE", want: OutputFormatTable},
		{input: "json", want: OutputFormatJSON},
		{input: " Yaml ", want: OutputFormatYAML},
		{input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableFormatter_FormatArticles(t *testing.T) {
	output, err := NewTableFormatter().FormatArticles(sampleArticles())
	if err != nil {
		t.Fatalf("FormatArticles() error = %v", err)
	}
	for _, want := range []string{"2025-06-05", "a.example", "Agents ship to production", "https://b.example/2"} {
		if !strings.Contains(output, want) {
			t.Errorf("FormatArticles() output missing %q", want)
		}
	}
	if strings.Contains(output, "1970-01-01") {
		t.Error("FormatArticles() should not print the epoch for undated articles")
	}

	empty, err := NewTableFormatter().FormatArticles(nil)
	if err != nil {
		t.Fatalf("FormatArticles() error = %v", err)
	}
	if empty != "No articles found" {
		t.Errorf("FormatArticles() = %q, want 'No articles found'", empty)
	}
}

func TestTableFormatter_FormatTools(t *testing.T) {
	output, err := NewTableFormatter().FormatTools(sampleTools())
	if err != nil {
		t.Fatalf("FormatTools() error = %v", err)
	}
	for _, want := range []string{"fetchAndConvertToMarkdown", "builtin", "network (https)", "web.fetch"} {
		if !strings.Contains(output, want) {
			t.Errorf("FormatTools() output missing %q", want)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter()

	output, err := f.FormatArticles(sampleArticles())
	if err != nil {
		t.Fatalf("FormatArticles() error = %v", err)
	}
	var articles []map[string]any
	if err := json.Unmarshal([]byte(output), &articles); err != nil {
		t.Fatalf("FormatArticles() produced invalid JSON: %v", err)
	}
	if len(articles) != 2 || articles[0]["title"] != "Agents ship to production" {
		t.Errorf("FormatArticles() = %s", output)
	}

	empty, err := f.FormatArticles(nil)
	if err != nil || empty != "[]" {
		t.Errorf("FormatArticles(nil) = %q, %v; want []", empty, err)
	}

	tools, err := f.FormatTools(sampleTools())
	if err != nil {
		t.Fatalf("FormatTools() error = %v", err)
	}
	if !strings.Contains(tools, `"access": "network"`) || !strings.Contains(tools, `"name": "fetchAndConvertToMarkdown"`) {
		t.Errorf("FormatTools() = %s", tools)
	}
}

func TestYAMLFormatter(t *testing.T) {
	f := NewYAMLFormatter()

	output, err := f.FormatArticles(sampleArticles())
	if err != nil {
		t.Fatalf("FormatArticles() error = %v", err)
	}
	var articles []map[string]any
	if err := yaml.Unmarshal([]byte(output), &articles); err != nil {
		t.Fatalf("FormatArticles() produced invalid YAML: %v", err)
	}
	if len(articles) != 2 || articles[1]["domain"] != "b.example" {
		t.Errorf("FormatArticles() = %s", output)
	}

	tools, err := f.FormatTools(sampleTools())
	if err != nil {
		t.Fatalf("FormatTools() error = %v", err)
	}
	if !strings.Contains(tools, "source: builtin") {
		t.Errorf("FormatTools() = %s", tools)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("a longer headline", 10); got != "a longe..." {
		t.Errorf("truncateString() = %q", got)
	}
}
