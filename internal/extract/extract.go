// Package extract turns a web page into a clean, article-only markdown
// document: fetch, isolate the main content block, strip boilerplate and
// convert to markdown.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/logger"

	"golang.org/x/net/html/charset"
)

const UntitledTitle = "Untitled"

// Content is the result of one successful extraction.
type Content struct {
	Title       string `json:"title"`
	Markdown    string `json:"markdown"`
	Excerpt     string `json:"excerpt"`
	Byline      string `json:"byline"`
	SiteName    string `json:"siteName"`
	OriginalURL string `json:"originalUrl"`
}

// FetchError reports a fetch that did not complete with a 2xx status.
// StatusCode is zero when the request failed at the transport.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: http %d: %s", e.URL, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == newsErrors.ErrFetch }

type Extractor struct {
	client            *http.Client
	userAgent         string
	maxBodyBytes      int64
	minTextLength     int
	allowPrivateHosts bool
}

type Option func(*Extractor)

// WithHTTPClient replaces the default client. Its transport is used as is,
// so the private host guard only covers the client's own dials.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) {
		if client != nil {
			e.client = client
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(ua) != "" {
			e.userAgent = ua
		}
	}
}

func New(cfg config.ExtractorConfig, opts ...Option) (*Extractor, error) {
	timeout, err := config.DurationOrDefault(cfg.Timeout, config.DefaultExtractorTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse extractor timeout: %w", err)
	}

	e := &Extractor{
		client: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg.AllowPrivateHosts),
		},
		userAgent:         cfg.UserAgent,
		maxBodyBytes:      cfg.MaxBodyBytes,
		minTextLength:     cfg.MinTextLength,
		allowPrivateHosts: cfg.AllowPrivateHosts,
	}
	if e.userAgent == "" {
		e.userAgent = config.DefaultExtractorUserAgent
	}
	if e.maxBodyBytes <= 0 {
		e.maxBodyBytes = config.DefaultExtractorMaxBodyBytes
	}
	if e.minTextLength <= 0 {
		e.minTextLength = config.DefaultExtractorMinTextLength
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ValidateURL accepts only absolute http(s) URLs with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, newsErrors.InvalidURL("empty url")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, newsErrors.InvalidURL(fmt.Sprintf("parse %q: %v", rawURL, err))
	}
	if !u.IsAbs() || u.Host == "" || u.Hostname() == "" {
		return nil, newsErrors.InvalidURL(fmt.Sprintf("%q is not an absolute url", rawURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newsErrors.InvalidURL(fmt.Sprintf("%q must use http or https", rawURL))
	}
	return u, nil
}

// Extract fetches rawURL once and reduces it to article markdown.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Content, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		return Content{}, err
	}
	if err := e.checkHost(pageURL); err != nil {
		return Content{}, err
	}

	start := time.Now()
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		slog.Warn("Page fetch failed", "url", rawURL, "error", err, "trace_id", logger.GetTraceID(ctx))
		return Content{}, err
	}

	content, err := e.ExtractHTML(rawURL, body)
	if err != nil {
		return Content{}, err
	}

	slog.Debug("Page extracted",
		"url", rawURL,
		"title", content.Title,
		"markdown_len", len(content.Markdown),
		"duration", time.Since(start),
		"trace_id", logger.GetTraceID(ctx),
	)
	return content, nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), Err: err}
	}
	// Some publishers reject non-browser agents outright.
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		var blocked *blockedAddrError
		if errors.As(err, &blocked) {
			// After a redirect the refused host is the one in the url.Error.
			target := pageURL
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				if u, perr := url.Parse(urlErr.URL); perr == nil {
					target = u
				}
			}
			return nil, blockedHost(target)
		}
		return nil, &FetchError{URL: pageURL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{
			URL:        pageURL.String(),
			StatusCode: resp.StatusCode,
			Status:     statusReason(resp),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), StatusCode: resp.StatusCode, Status: "read body", Err: err}
	}
	if int64(len(raw)) > e.maxBodyBytes {
		slog.Warn("Page body truncated", "url", pageURL.String(), "limit_bytes", e.maxBodyBytes, "trace_id", logger.GetTraceID(ctx))
		raw = raw[:e.maxBodyBytes]
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), StatusCode: resp.StatusCode, Status: "decode body", Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: pageURL.String(), StatusCode: resp.StatusCode, Status: "read body", Err: err}
	}
	return body, nil
}

func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

// ExtractHTML runs the network-free part of the pipeline on already fetched
// markup. The same input always yields the same Content.
func (e *Extractor) ExtractHTML(rawURL string, body []byte) (Content, error) {
	pageURL, _ := url.Parse(rawURL)

	doc, err := parseDocument(bytes.NewReader(body))
	if err != nil {
		return Content{}, newsErrors.NoContentFound(fmt.Sprintf("parse markup: %v", err))
	}

	meta := readMetadata(body, doc)

	main := findMainContent(doc, e.minTextLength)
	if main == nil || collapseSpace(main.Text()) == "" {
		return Content{}, newsErrors.NoContentFound(fmt.Sprintf("no article body in %s", rawURL))
	}

	stripResidual(main)
	dropTitleHeading(main, meta.Title)
	if collapseSpace(main.Text()) == "" {
		return Content{}, newsErrors.NoContentFound(fmt.Sprintf("no article body in %s", rawURL))
	}
	absolutizeLinks(main, pageURL)

	markdownBody, err := toMarkdown(main)
	if err != nil {
		return Content{}, fmt.Errorf("convert to markdown: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = UntitledTitle
	}

	excerpt := meta.Description
	if excerpt == "" {
		excerpt = firstParagraph(main)
	}

	return Content{
		Title:       title,
		Markdown:    "# " + title + "\n\n" + markdownBody,
		Excerpt:     excerpt,
		Byline:      meta.Byline,
		SiteName:    meta.SiteName,
		OriginalURL: rawURL,
	}, nil
}
