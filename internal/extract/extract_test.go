package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Model Release Roundup </title>
  <meta name="description" content="What shipped this week in AI.">
  <meta name="author" content="Dana Writer">
  <meta property="og:site_name" content="AI Weekly">
</head>
<body>
  <header class="masthead"><a href="/">AI Weekly</a></header>
  <nav class="top-nav"><a href="/news">News</a> <a href="/about">About</a> SITE NAVIGATION</nav>
  <div class="sidebar">
    <p>Subscribe to our newsletter, get updates, offers, and more promotional content here.</p>
  </div>
  <article class="post-content">
    <h1>Model Release Roundup</h1>
    <nav class="breadcrumbs">Home &gt; Articles &gt; BREADCRUMB TRAIL</nav>
    <script>var tracker = "SCRIPT_PAYLOAD";</script>
    <p>Three labs shipped new models this week, each claiming gains in reasoning, coding, and long-context recall.</p>
    <h2>Benchmarks</h2>
    <p>Independent evaluations, however, paint a more nuanced picture, with results varying by task and prompt format.</p>
    <ul><li>Reasoning</li><li>Coding</li></ul>
    <hr>
    <pre><code>score := evaluate(model, suite)</code></pre>
    <p>Read the <a href="/methodology">methodology notes</a> for details on how the numbers were produced.</p>
  </article>
  <footer class="site-footer"><p>Copyright notice, legal terms, privacy policy, and contact details for the site.</p></footer>
</body>
</html>`

type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	return t.next.RoundTrip(req)
}

func newTestExtractor(t *testing.T, transport http.RoundTripper) *Extractor {
	t.Helper()
	e, err := New(config.ExtractorConfig{AllowPrivateHosts: true}, WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)
	return e
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtract_InvalidURLNeverTouchesNetwork(t *testing.T) {
	transport := &countingTransport{next: http.DefaultTransport}
	e := newTestExtractor(t, transport)

	for _, raw := range []string{"", "example.com/news", "/relative/path", "ftp://example.com/file", "http://", "https:///nohost", "://broken"} {
		_, err := e.Extract(context.Background(), raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, newsErrors.ErrInvalidURL), "url %q: %v", raw, err)
	}

	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestExtract_NonSuccessStatusIsFetchError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusInternalServerError} {
		server := serve(t, status, "nope")
		e := newTestExtractor(t, http.DefaultTransport)

		_, err := e.Extract(context.Background(), server.URL+"/article")
		require.Error(t, err)
		assert.True(t, errors.Is(err, newsErrors.ErrFetch))

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, status, fetchErr.StatusCode)
		assert.Equal(t, http.StatusText(status), fetchErr.Status)
		assert.Contains(t, err.Error(), http.StatusText(status))
	}
}

func TestExtract_TransportFailureIsFetchError(t *testing.T) {
	server := serve(t, http.StatusOK, articlePage)
	url := server.URL
	server.Close()

	e := newTestExtractor(t, http.DefaultTransport)
	_, err := e.Extract(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrFetch))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestExtract_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = io.WriteString(w, articlePage)
	}))
	defer server.Close()

	e := newTestExtractor(t, http.DefaultTransport)
	_, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultExtractorUserAgent, gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestExtract_EmptyBodyIsNoContentFound(t *testing.T) {
	server := serve(t, http.StatusOK, "<html><body></body></html>")
	e := newTestExtractor(t, http.DefaultTransport)

	_, err := e.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, newsErrors.ErrNoContentFound))
}

func TestExtract_ArticlePage(t *testing.T) {
	server := serve(t, http.StatusOK, articlePage)
	e := newTestExtractor(t, http.DefaultTransport)

	pageURL := server.URL + "/posts/roundup"
	content, err := e.Extract(context.Background(), pageURL)
	require.NoError(t, err)

	assert.Equal(t, "Model Release Roundup", content.Title)
	assert.Equal(t, pageURL, content.OriginalURL)
	assert.Equal(t, "What shipped this week in AI.", content.Excerpt)
	assert.Equal(t, "Dana Writer", content.Byline)
	assert.Equal(t, "AI Weekly", content.SiteName)

	lines := strings.Split(content.Markdown, "\n")
	assert.Equal(t, "# Model Release Roundup", lines[0])
	assert.Equal(t, 1, strings.Count(content.Markdown, "Model Release Roundup"))

	md := content.Markdown
	assert.Contains(t, md, "Three labs shipped new models this week")
	assert.Contains(t, md, "## Benchmarks")
	assert.Contains(t, md, "- Reasoning")
	assert.Contains(t, md, "---")
	assert.Contains(t, md, "```")
	assert.Contains(t, md, "score := evaluate(model, suite)")
	assert.Contains(t, md, server.URL+"/methodology")

	assert.NotContains(t, md, "SCRIPT_PAYLOAD")
	assert.NotContains(t, md, "var tracker")
	assert.NotContains(t, md, "BREADCRUMB TRAIL")
	assert.NotContains(t, md, "SITE NAVIGATION")
	assert.NotContains(t, md, "Subscribe to our newsletter")
	assert.NotContains(t, md, "Copyright notice")
}

func TestExtractHTML_UntitledFallback(t *testing.T) {
	e := newTestExtractor(t, http.DefaultTransport)
	page := `<html><body><div><p>This page has plenty of body text, but the author never gave it a title element.</p></div></body></html>`

	content, err := e.ExtractHTML("https://example.com/a", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, UntitledTitle, content.Title)
	assert.True(t, strings.HasPrefix(content.Markdown, "# Untitled\n"))
	assert.Equal(t, "This page has plenty of body text, but the author never gave it a title element.", content.Excerpt)
}

func TestExtractHTML_ToleratesMalformedMarkup(t *testing.T) {
	e := newTestExtractor(t, http.DefaultTransport)
	page := `<html><head><title>Broken</title><body><div class="content"><p>Unclosed paragraph with enough words, commas, and text to be scored<div><p>Another one that never closes, still readable`

	content, err := e.ExtractHTML("https://example.com/broken", []byte(page))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content.Markdown, "# Broken\n"))
	assert.Contains(t, content.Markdown, "Unclosed paragraph")
}

func TestExtractHTML_PrefersContentOverLinkFarm(t *testing.T) {
	e := newTestExtractor(t, http.DefaultTransport)
	page := `<html><head><title>Links</title></head><body>
<div id="links"><p><a href="/a">A very long link label that goes on, and on, and on</a> <a href="/b">Another very long link label, with commas, too</a></p></div>
<div id="story"><p>The actual story text lives here, with several clauses, some commas, and a real narrative.</p></div>
</body></html>`

	content, err := e.ExtractHTML("https://example.com/links", []byte(page))
	require.NoError(t, err)
	assert.Contains(t, content.Markdown, "The actual story text lives here")
	assert.NotContains(t, content.Markdown, "A very long link label")
}

func TestExtract_Idempotent(t *testing.T) {
	server := serve(t, http.StatusOK, articlePage)
	e := newTestExtractor(t, http.DefaultTransport)

	first, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidateURL(t *testing.T) {
	u, err := ValidateURL(" https://example.com/path?q=1 ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)

	_, err = ValidateURL("mailto:someone@example.com")
	assert.True(t, errors.Is(err, newsErrors.ErrInvalidURL))
}

func TestExtractHTML_KeepsHeadingThatDiffersFromTitle(t *testing.T) {
	e := newTestExtractor(t, http.DefaultTransport)
	page := `<html><head><title>Agents ship | Example</title></head><body><article>
<h1>Agents ship</h1>
<p>Autonomous agents moved from demos to production, with several vendors shipping releases.</p>
</article></body></html>`

	content, err := e.ExtractHTML("https://example.com/agents", []byte(page))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content.Markdown, "# Agents ship | Example\n"))
	assert.Contains(t, content.Markdown, "# Agents ship\n")
}

func TestExtract_TruncatesOversizedBody(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)
	var logs bytes.Buffer
	logger.SetupWriter(&logs, "warn")

	server := serve(t, http.StatusOK, articlePage)
	limit := strings.Index(articlePage, "<h2>Benchmarks")
	e, err := New(config.ExtractorConfig{MaxBodyBytes: int64(limit), AllowPrivateHosts: true})
	require.NoError(t, err)

	content, err := e.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Markdown, "Three labs shipped new models this week")
	assert.NotContains(t, content.Markdown, "Independent evaluations")
	assert.Contains(t, logs.String(), "Page body truncated")

	logs.Reset()
	full, err := New(config.ExtractorConfig{MaxBodyBytes: int64(len(articlePage)), AllowPrivateHosts: true})
	require.NoError(t, err)
	content, err = full.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content.Markdown, "Independent evaluations")
	assert.NotContains(t, logs.String(), "Page body truncated")
}

func TestExtract_RefusesNonPublicHostsByDefault(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, articlePage)
	}))
	defer server.Close()

	e, err := New(config.ExtractorConfig{})
	require.NoError(t, err)

	port := server.URL[strings.LastIndex(server.URL, ":"):]
	for _, raw := range []string{
		server.URL,
		"http://localhost" + port,
		"http://api.localhost" + port,
		"http://[::1]" + port,
		"http://10.0.0.1/",
		"http://192.168.1.1/admin",
		"http://169.254.169.254/computeMetadata/v1/",
		"http://0.0.0.0" + port,
	} {
		_, err := e.Extract(context.Background(), raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, newsErrors.ErrInvalidURL), "url %q: %v", raw, err)
	}
	assert.Zero(t, hits.Load())

	allowed, err := New(config.ExtractorConfig{AllowPrivateHosts: true})
	require.NoError(t, err)
	_, err = allowed.Extract(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransport_DialRefusesNonPublicAddress(t *testing.T) {
	server := serve(t, http.StatusOK, articlePage)

	_, err := newTransport(false).DialContext(context.Background(), "tcp", server.Listener.Addr().String())
	require.Error(t, err)
	var blocked *blockedAddrError
	assert.True(t, errors.As(err, &blocked), "%v", err)

	conn, err := newTransport(true).DialContext(context.Background(), "tcp", server.Listener.Addr().String())
	require.NoError(t, err)
	_ = conn.Close()
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.0.10", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"255.255.255.255", false},
		{"::1", false},
		{"::", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"::ffff:10.0.0.1", false},
		{"::ffff:93.184.216.34", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPublicAddr(netip.MustParseAddr(tt.addr)), tt.addr)
	}
}
