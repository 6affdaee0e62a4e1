// Package digest periodically summarises the newest articles and publishes
// the result to a file, Slack or Telegram.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/logger"
	"github.com/harunnryd/newsdesk/internal/news"
)

type Lister interface {
	List(ctx context.Context, q news.Query) ([]news.Article, error)
}

type Summarizer interface {
	Articles(ctx context.Context, articles []news.Article) (string, error)
}

// Publisher delivers a finished digest somewhere.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, d Digest) error
}

type Digest struct {
	TraceID     string
	GeneratedAt time.Time
	Summary     string
	Articles    []news.Article
}

// Markdown renders the digest as a standalone document.
func (d Digest) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# AI news digest, %s\n\n", d.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString(strings.TrimSpace(d.Summary))
	b.WriteString("\n\n## Articles\n\n")
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "- [%s](%s) (%s, %s)\n", a.Title, a.URL, a.Domain, a.Date.UTC().Format("2006-01-02"))
	}
	return b.String()
}

// Text renders the digest for chat clients that do not render markdown
// links.
func (d Digest) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AI news digest, %s\n\n", d.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString(strings.TrimSpace(d.Summary))
	b.WriteString("\n")
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "\n- %s\n  %s", a.Title, a.URL)
	}
	return b.String()
}

type Runner struct {
	lister     Lister
	summarizer Summarizer
	publishers []Publisher

	schedule   string
	limit      int
	runTimeout time.Duration
	now        func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewRunner(lister Lister, summarizer Summarizer, publishers []Publisher, cfg config.DigestConfig) (*Runner, error) {
	runTimeout, err := config.DurationOrDefault(cfg.RunTimeout, config.DefaultDigestRunTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse digest run timeout: %w", err)
	}

	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, newsErrors.InvalidInput(fmt.Sprintf("invalid digest schedule %q: %v", schedule, err))
		}
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = config.DefaultDigestLimit
	}

	return &Runner{
		lister:     lister,
		summarizer: summarizer,
		publishers: publishers,
		schedule:   schedule,
		limit:      limit,
		runTimeout: runTimeout,
		now:        time.Now,
	}, nil
}

// RunOnce builds one digest and hands it to every publisher. A failing
// publisher does not stop the others; their errors are joined.
func (r *Runner) RunOnce(ctx context.Context) (Digest, error) {
	ctx, traceID := logger.EnsureTraceID(ctx)
	if r.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.runTimeout)
		defer cancel()
	}

	start := r.now()
	articles, err := r.lister.List(ctx, news.Query{Limit: r.limit})
	if err != nil {
		return Digest{}, fmt.Errorf("list articles: %w", err)
	}
	if len(articles) == 0 {
		slog.Info("Digest skipped, no articles", "trace_id", traceID)
		return Digest{TraceID: traceID, GeneratedAt: start}, nil
	}

	summary, err := r.summarizer.Articles(ctx, articles)
	if err != nil {
		return Digest{}, fmt.Errorf("summarize articles: %w", err)
	}

	d := Digest{
		TraceID:     traceID,
		GeneratedAt: start,
		Summary:     summary,
		Articles:    articles,
	}

	var errs []error
	for _, p := range r.publishers {
		if err := p.Publish(ctx, d); err != nil {
			slog.Error("Digest publish failed", "publisher", p.Name(), "error", err, "trace_id", traceID)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		slog.Info("Digest published", "publisher", p.Name(), "articles", len(articles), "trace_id", traceID)
	}
	return d, errors.Join(errs...)
}

// Start schedules RunOnce on the configured cron spec. It is a no-op when
// no schedule is set. Overlapping runs are skipped.
func (r *Runner) Start(ctx context.Context) error {
	if r.schedule == "" {
		slog.Info("Digest scheduler disabled")
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(r.schedule, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			slog.Error("Scheduled digest failed", "error", err)
		}
	})
	if err != nil {
		return newsErrors.InvalidInput(fmt.Sprintf("invalid digest schedule %q: %v", r.schedule, err))
	}

	c.Start()
	r.cron = c
	slog.Info("Digest scheduler started", "schedule", r.schedule, "publishers", len(r.publishers))
	return nil
}

// Stop waits for a running digest to finish or ctx to expire.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		slog.Info("Digest scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports the next scheduled run, zero when unscheduled.
func (r *Runner) Next() time.Time {
	if r.schedule == "" {
		return time.Time{}
	}
	sched, err := cron.ParseStandard(r.schedule)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(r.now())
}
