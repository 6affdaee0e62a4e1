// Package summarize turns article records into model prompts and returns the
// generated summaries.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/model/contract"
	"github.com/harunnryd/newsdesk/internal/news"
)

const (
	multiArticleInstruction = "Summarize the following AI news articles. Focus on key trends, important developments, and emerging themes. Keep it concise but informative:"

	singleArticleInstruction = "Provide a concise summary of this AI news article. Focus on the key points, implications, and significance:"
	singleArticleClosing     = "Please provide a 2-3 sentence summary that captures the essence of this article."

	listDateLayout = "1/2/2006"
)

type Generator interface {
	Generate(ctx context.Context, prompt string, cfg contract.GenerationConfig) (string, error)
}

type Service struct {
	gen   Generator
	model string
	cfg   config.SummaryConfig
}

func NewService(gen Generator, model string, cfg config.SummaryConfig) *Service {
	return &Service{
		gen:   gen,
		model: model,
		cfg:   cfg,
	}
}

// Articles summarises a set of articles from their titles, domains and dates.
// The model is not offered tools here; the batch is summarised as listed.
func (s *Service) Articles(ctx context.Context, articles []news.Article) (string, error) {
	if len(articles) == 0 {
		return "", newsErrors.InvalidInput("no articles to summarize")
	}
	return s.gen.Generate(ctx, ArticlesPrompt(articles), contract.GenerationConfig{
		Model:           s.model,
		MaxOutputTokens: s.cfg.MultiMaxTokens,
		Temperature:     s.cfg.Temperature,
		EnableToolUse:   false,
	})
}

// Article summarises one article. With tool use enabled the model may fetch
// the page before answering.
func (s *Service) Article(ctx context.Context, article news.Article) (string, error) {
	if strings.TrimSpace(article.Title) == "" && strings.TrimSpace(article.URL) == "" {
		return "", newsErrors.InvalidInput("article needs a title or url")
	}
	return s.gen.Generate(ctx, ArticlePrompt(article), contract.GenerationConfig{
		Model:           s.model,
		MaxOutputTokens: s.cfg.SingleMaxTokens,
		Temperature:     s.cfg.Temperature,
		EnableToolUse:   s.cfg.EnableToolUse,
	})
}

func ArticlesPrompt(articles []news.Article) string {
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nDomain: %s\nDate: %s", a.Title, a.Domain, a.Date.Format(listDateLayout)))
	}
	return multiArticleInstruction + "\n\n" + strings.Join(blocks, "\n\n")
}

func ArticlePrompt(a news.Article) string {
	var b strings.Builder
	b.WriteString(singleArticleInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Title: %s\nUrl: %s\nDate: %s", a.Title, a.URL, a.Date.Format("2006-01-02T15:04:05Z07:00"))
	b.WriteString("\n\n")
	b.WriteString(singleArticleClosing)
	return b.String()
}
