package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harunnryd/newsdesk/internal/config"
	"github.com/harunnryd/newsdesk/internal/digest"
	"github.com/harunnryd/newsdesk/internal/extract"
	"github.com/harunnryd/newsdesk/internal/ingress"
	"github.com/harunnryd/newsdesk/internal/model"
	"github.com/harunnryd/newsdesk/internal/news"
	"github.com/harunnryd/newsdesk/internal/orchestrator"
	"github.com/harunnryd/newsdesk/internal/summarize"
	"github.com/harunnryd/newsdesk/internal/tool"
	"github.com/harunnryd/newsdesk/internal/tool/builtin"
)

// RuntimeComponents holds the process-wide collaborators. Everything here is
// created once and shared by all requests and scheduled runs.
type RuntimeComponents struct {
	Ctx    context.Context
	Cancel context.CancelFunc

	Config *config.Config

	Provider     model.Provider
	Extractor    *extract.Extractor
	ToolRegistry *tool.Registry
	ToolRunner   *tool.Runner
	Generator    *orchestrator.Generator
	Summarizer   *summarize.Service
	Store        news.Store
	Digest       *digest.Runner
	HTTP         *ingress.HTTPServer
}

func NewRuntimeComponents(ctx context.Context, cfg *config.Config, provider model.Provider, store news.Store) (*RuntimeComponents, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	components := &RuntimeComponents{
		Ctx:    ctx,
		Cancel: cancel,
		Config: cfg,
	}

	extractor, err := extract.New(cfg.Extractor)
	if err != nil {
		components.cleanup()
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	components.Extractor = extractor

	registry, err := builtin.Default(extractor)
	if err != nil {
		components.cleanup()
		return nil, fmt.Errorf("init tools: %w", err)
	}
	components.ToolRegistry = registry
	components.ToolRunner = tool.NewRunner(registry)

	if provider == nil {
		provider, err = model.NewProvider(ctx, cfg.Model)
		if err != nil {
			components.cleanup()
			return nil, fmt.Errorf("init model provider: %w", err)
		}
	}
	components.Provider = provider
	components.Generator = orchestrator.New(provider, components.ToolRunner)
	components.Summarizer = summarize.NewService(components.Generator, cfg.Model.Name, cfg.Summary)

	if store == nil {
		store, err = news.Open(ctx, cfg.Store)
		if err != nil {
			components.cleanup()
			return nil, fmt.Errorf("open news store: %w", err)
		}
	}
	components.Store = store

	publishers, err := digest.BuildPublishers(cfg.Digest)
	if err != nil {
		components.cleanup()
		return nil, fmt.Errorf("init digest publishers: %w", err)
	}
	components.Digest, err = digest.NewRunner(store, components.Summarizer, publishers, cfg.Digest)
	if err != nil {
		components.cleanup()
		return nil, fmt.Errorf("init digest: %w", err)
	}

	components.HTTP, err = ingress.NewHTTPServer(cfg.Server, ingress.Deps{
		News:       store,
		Summarizer: components.Summarizer,
		Extractor:  extractor,
	})
	if err != nil {
		components.cleanup()
		return nil, fmt.Errorf("init http server: %w", err)
	}

	slog.Info("Runtime components initialized",
		"provider", provider.Name(),
		"model", cfg.Model.Name,
		"store", cfg.Store.Backend,
		"tools", registry.Len(),
		"publishers", len(publishers),
	)
	return components, nil
}

// Start starts the HTTP server and the digest scheduler.
func (r *RuntimeComponents) Start() error {
	if r.HTTP == nil {
		return fmt.Errorf("http server not initialized")
	}

	if r.Digest != nil {
		if err := r.Digest.Start(r.Ctx); err != nil {
			r.cleanup()
			return fmt.Errorf("start digest scheduler: %w", err)
		}
	}

	r.HTTP.Start()
	return nil
}

// Shutdown stops the server and waits for an in-flight digest, bounded by
// ctx.
func (r *RuntimeComponents) Shutdown(ctx context.Context) {
	if r.HTTP != nil {
		if err := r.HTTP.Stop(ctx); err != nil {
			slog.Warn("Failed to stop HTTP server", "error", err)
		}
	}

	if r.Digest != nil {
		if err := r.Digest.Stop(ctx); err != nil {
			slog.Warn("Failed to stop digest scheduler", "error", err)
		}
	}

	r.Stop()
}

func (r *RuntimeComponents) Stop() {
	slog.Debug("Stopping runtime components...")

	r.Cancel()

	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			slog.Warn("Failed to close news store", "error", err)
		}
		r.Store = nil
	}
}

func (r *RuntimeComponents) cleanup() {
	slog.Debug("Cleaning up runtime components...")
	r.Stop()
}
