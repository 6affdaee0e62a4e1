package formatter

import (
	"encoding/json"

	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/tool"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) FormatArticles(articles []news.Article) (string, error) {
	if articles == nil {
		articles = []news.Article{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *JSONFormatter) FormatTools(descriptors []tool.ToolDescriptor) (string, error) {
	data, err := json.MarshalIndent(toolViews(descriptors), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
