package runtime

import (
	"context"
	"fmt"

	"github.com/harunnryd/newsdesk/internal/config"
	"github.com/harunnryd/newsdesk/internal/model"
	"github.com/harunnryd/newsdesk/internal/news"
)

type RuntimeBuilder interface {
	WithContext(ctx context.Context) RuntimeBuilder
	WithConfig(cfg *config.Config) RuntimeBuilder
	WithProvider(provider model.Provider) RuntimeBuilder
	WithStore(store news.Store) RuntimeBuilder
	Build() (*RuntimeComponents, error)
}

type DefaultRuntimeBuilder struct {
	ctx      context.Context
	cfg      *config.Config
	provider model.Provider
	store    news.Store
}

func NewRuntimeBuilder() RuntimeBuilder {
	return &DefaultRuntimeBuilder{}
}

func (b *DefaultRuntimeBuilder) WithContext(ctx context.Context) RuntimeBuilder {
	b.ctx = ctx
	return b
}

func (b *DefaultRuntimeBuilder) WithConfig(cfg *config.Config) RuntimeBuilder {
	b.cfg = cfg
	return b
}

// WithProvider replaces the provider built from config.
func (b *DefaultRuntimeBuilder) WithProvider(provider model.Provider) RuntimeBuilder {
	b.provider = provider
	return b
}

// WithStore replaces the store opened from config.
func (b *DefaultRuntimeBuilder) WithStore(store news.Store) RuntimeBuilder {
	b.store = store
	return b
}

func (b *DefaultRuntimeBuilder) Build() (*RuntimeComponents, error) {
	if b.ctx == nil {
		b.ctx = context.Background()
	}

	if b.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return NewRuntimeComponents(b.ctx, b.cfg, b.provider, b.store)
}
