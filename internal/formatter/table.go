package formatter

import (
	"strings"

	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/tool"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

type TableFormatter struct {
	headerStyle  lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewTableFormatter() *TableFormatter {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &TableFormatter{
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
	}
}

func (f *TableFormatter) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row%2 == 0:
				return f.evenRowStyle
			default:
				return f.oddRowStyle
			}
		}).
		Headers(headers...)
}

func (f *TableFormatter) FormatArticles(articles []news.Article) (string, error) {
	if len(articles) == 0 {
		return "No articles found", nil
	}

	t := f.newTable("Date", "Domain", "Title", "URL")
	for _, a := range articles {
		date := "-"
		if !a.Date.Equal(news.Epoch) && !a.Date.IsZero() {
			date = a.Date.UTC().Format("2006-01-02")
		}
		t.Row(
			date,
			truncateString(a.Domain, 24),
			truncateString(a.Title, 60),
			truncateString(a.URL, 60),
		)
	}
	return t.String(), nil
}

func (f *TableFormatter) FormatTools(descriptors []tool.ToolDescriptor) (string, error) {
	if len(descriptors) == 0 {
		return "No tools registered", nil
	}

	t := f.newTable("Name", "Source", "Access", "Capabilities", "Description")
	for _, d := range descriptors {
		access := d.Metadata.Access()
		if len(d.Metadata.Schemes) > 0 {
			access += " (" + strings.Join(d.Metadata.Schemes, ", ") + ")"
		}
		t.Row(
			d.Definition.Name,
			d.Metadata.Source,
			access,
			strings.Join(d.Metadata.Capabilities, ", "),
			truncateString(d.Definition.Description, 60),
		)
	}
	return t.String(), nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
