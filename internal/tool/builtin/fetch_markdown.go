package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/extract"
	toolcore "github.com/harunnryd/newsdesk/internal/tool"
)

const FetchMarkdownName = "fetchAndConvertToMarkdown"

// fetchSchemes are advertised in the tool metadata and enforced by Execute.
var fetchSchemes = []string{"http", "https"}

// Extractor is the slice of *extract.Extractor the tool needs.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (extract.Content, error)
}

// FetchMarkdownTool lets the model read the full text of a page it was
// given only a link to.
type FetchMarkdownTool struct {
	extractor Extractor
}

func NewFetchMarkdownTool(extractor Extractor) *FetchMarkdownTool {
	return &FetchMarkdownTool{extractor: extractor}
}

func (t *FetchMarkdownTool) Name() string {
	return FetchMarkdownName
}

func (t *FetchMarkdownTool) Description() string {
	return "Fetch a web page by URL and return its main article content converted to markdown, " +
		"together with the page title, excerpt, byline and site name. " +
		"Use it when you need the text of an article you only have a link to."
}

func (t *FetchMarkdownTool) ToolMetadata() toolcore.ToolMetadata {
	return toolcore.ToolMetadata{
		Source: "builtin",
		Capabilities: []string{
			"web.fetch",
			"content.extract",
			"content.markdown",
		},
		Network: true,
		Schemes: slices.Clone(fetchSchemes),
	}
}

func (t *FetchMarkdownTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute http or https URL of the page to fetch",
			},
		},
		"required": []string{"url"},
	}
}

type fetchMarkdownInput struct {
	URL string `json:"url"`
}

func (t *FetchMarkdownTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args fetchMarkdownInput
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if t.extractor == nil {
		return nil, fmt.Errorf("%s: extractor not configured", FetchMarkdownName)
	}
	if err := checkScheme(args.URL); err != nil {
		return nil, err
	}

	content, err := t.extractor.Extract(ctx, args.URL)
	if err != nil {
		return nil, err
	}
	return json.Marshal(content)
}

func checkScheme(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return newsErrors.InvalidURL(fmt.Sprintf("parse %q: %v", rawURL, err))
	}
	if !slices.Contains(fetchSchemes, strings.ToLower(u.Scheme)) {
		return newsErrors.InvalidURL(fmt.Sprintf("%q: scheme must be one of %s", rawURL, strings.Join(fetchSchemes, ", ")))
	}
	return nil
}

// Default builds the registry every entry point shares.
func Default(extractor Extractor) (*toolcore.Registry, error) {
	return toolcore.NewRegistry(NewFetchMarkdownTool(extractor))
}
