package formatter

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/tool"
)

type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) FormatArticles(articles []news.Article) (string, error) {
	if articles == nil {
		articles = []news.Article{}
	}
	data, err := yaml.Marshal(articles)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *YAMLFormatter) FormatTools(descriptors []tool.ToolDescriptor) (string, error) {
	data, err := yaml.Marshal(toolViews(descriptors))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
