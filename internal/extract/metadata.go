package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

const maxExcerptRunes = 200

type metadata struct {
	Title       string
	Description string
	Byline      string
	SiteName    string
}

// readMetadata collects page-level fields. OpenGraph is consulted first;
// plain <meta> tags and byline markup fill whatever it leaves empty.
// The title comes from <title> only.
func readMetadata(body []byte, doc *goquery.Document) metadata {
	var meta metadata

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err == nil {
		meta.Description = collapseSpace(og.Description)
		meta.SiteName = collapseSpace(og.SiteName)
	}

	meta.Title = collapseSpace(doc.Find("title").Not("svg title").First().Text())

	if meta.Description == "" {
		meta.Description = metaContent(doc, "meta[name='description']")
	}
	if meta.SiteName == "" {
		meta.SiteName = metaContent(doc, "meta[property='og:site_name']")
	}

	meta.Byline = metaContent(doc, "meta[name='author']")
	if meta.Byline == "" {
		doc.Find("[rel='author'], [itemprop='author'], .byline, .author").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := collapseSpace(s.Text())
			if text != "" && utf8.RuneCountInString(text) < 100 {
				meta.Byline = text
				return false
			}
			return true
		})
	}

	meta.Description = truncateRunes(meta.Description, maxExcerptRunes)
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return collapseSpace(content)
}

func firstParagraph(sel *goquery.Selection) string {
	var text string
	sel.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text = collapseSpace(p.Text())
		return text == ""
	})
	if text == "" {
		text = collapseSpace(sel.Text())
	}
	return truncateRunes(text, maxExcerptRunes)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
