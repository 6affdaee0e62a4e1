package model

import (
	"context"
	"errors"
	"testing"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_RequiresCredentials(t *testing.T) {
	cases := []config.ModelConfig{
		{Provider: "gemini", Name: "gemini-2.5-flash"},
		{Provider: "gemini", Name: "gemini-2.5-flash", Vertex: true},
		{Provider: "openai", Name: "gpt-4o-mini"},
		{Provider: "anthropic", Name: "claude-3-5-haiku-latest"},
	}

	for _, cfg := range cases {
		_, err := NewProvider(context.Background(), cfg)
		require.Error(t, err, cfg.Provider)
		assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput), cfg.Provider)
	}
}

func TestNewProvider_UnknownType(t *testing.T) {
	_, err := NewProvider(context.Background(), config.ModelConfig{Provider: "zai", APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidInput))
}

func TestNewProvider_BuildsConfiguredBackend(t *testing.T) {
	p, err := NewProvider(context.Background(), config.ModelConfig{Provider: "openai", Name: "gpt-4o-mini", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(context.Background(), config.ModelConfig{Provider: "anthropic", Name: "claude", APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	p, err = NewProvider(context.Background(), config.ModelConfig{Provider: "gemini", Name: "gemini-2.5-flash", APIKey: "g-key"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
}
