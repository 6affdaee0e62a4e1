package summarize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/model/contract"
	"github.com/harunnryd/newsdesk/internal/news"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	prompt string
	cfg    contract.GenerationConfig
	text   string
	err    error
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string, cfg contract.GenerationConfig) (string, error) {
	g.prompt = prompt
	g.cfg = cfg
	return g.text, g.err
}

func summaryConfig() config.SummaryConfig {
	return config.SummaryConfig{
		Temperature:     config.DefaultSummaryTemperature,
		SingleMaxTokens: config.DefaultSummarySingleMaxTokens,
		MultiMaxTokens:  config.DefaultSummaryMultiMaxTokens,
		EnableToolUse:   true,
	}
}

func TestArticles_BuildsListPrompt(t *testing.T) {
	gen := &recordingGenerator{text: "Trends: agents."}
	svc := NewService(gen, "gemini-2.5-flash", summaryConfig())

	summary, err := svc.Articles(context.Background(), []news.Article{
		{Title: "Agents ship", Domain: "a.example", Date: time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)},
		{Title: "Chips shortage eases", Domain: "b.example", Date: time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Trends: agents.", summary)

	want := "Summarize the following AI news articles. Focus on key trends, important developments, and emerging themes. Keep it concise but informative:\n\n" +
		"Title: Agents ship\nDomain: a.example\nDate: 6/5/2025\n\n" +
		"Title: Chips shortage eases\nDomain: b.example\nDate: 12/24/2025"
	assert.Equal(t, want, gen.prompt)

	assert.Equal(t, "gemini-2.5-flash", gen.cfg.Model)
	assert.Equal(t, 500, gen.cfg.MaxOutputTokens)
	assert.False(t, gen.cfg.EnableToolUse)
	assert.InDelta(t, 0.3, gen.cfg.Temperature, 1e-9)
}

func TestArticle_BuildsSinglePrompt(t *testing.T) {
	gen := &recordingGenerator{text: "Two sentences."}
	svc := NewService(gen, "gemini-2.5-flash", summaryConfig())

	summary, err := svc.Article(context.Background(), news.Article{
		Title: "Agents ship",
		URL:   "https://a.example/agents",
		Date:  time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Two sentences.", summary)

	want := "Provide a concise summary of this AI news article. Focus on the key points, implications, and significance:\n\n" +
		"Title: Agents ship\nUrl: https://a.example/agents\nDate: 2025-06-05T12:00:00Z\n\n" +
		"Please provide a 2-3 sentence summary that captures the essence of this article."
	assert.Equal(t, want, gen.prompt)
	assert.Equal(t, 200, gen.cfg.MaxOutputTokens)
	assert.True(t, gen.cfg.EnableToolUse)
}

func TestService_RejectsEmptyInput(t *testing.T) {
	gen := &recordingGenerator{}
	svc := NewService(gen, "gemini-2.5-flash", summaryConfig())

	_, err := svc.Articles(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))

	_, err = svc.Article(context.Background(), news.Article{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))

	assert.Empty(t, gen.prompt)
}

func TestService_PropagatesGeneratorErrors(t *testing.T) {
	boom := errors.New("remote down")
	svc := NewService(&recordingGenerator{err: boom}, "m", summaryConfig())

	_, err := svc.Article(context.Background(), news.Article{Title: "x"})
	assert.ErrorIs(t, err, boom)
}
