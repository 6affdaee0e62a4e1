package extract

import (
	"io"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	unlikelyCandidates = regexp.MustCompile(`(?i)-ad-|ai2html|banner|breadcrumbs|combx|comment|community|cover-wrap|disqus|extra|footer|gdpr|legends|menu|related|remark|replies|rss|shoutbox|sidebar|skyscraper|social|sponsor|supplemental|ad-break|agegate|pagination|pager|popup|yom-remote|share|promo|newsletter|subscribe`)
	maybeCandidate     = regexp.MustCompile(`(?i)and|article|body|column|content|main|shadow|post`)
	positiveWeight     = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|post|text|blog|story`)
	negativeWeight     = regexp.MustCompile(`(?i)-ad-|hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)
)

const (
	// Selectors never holding article text. Removed before scoring.
	boilerplateSelector = "script, style, noscript, template, iframe, nav, footer, aside, form, button, svg, object, embed, link, meta"
	// Selectors stripped from the winning block.
	residualSelector = "script, style, noscript, template, iframe, nav, footer, aside, form, button, input, select, textarea, svg, object, embed, canvas"
	scoredSelector   = "p, pre, td, blockquote"
	minParagraphLen  = 25
)

func parseDocument(r io.Reader) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(r)
}

type candidate struct {
	sel   *goquery.Selection
	score float64
}

// findMainContent scores block containers by the paragraphs they hold and
// returns the best one. Containers are ranked on text volume and commas,
// their tag and class/id semantics, and penalised by link density.
// It returns nil when nothing on the page looks like article text.
func findMainContent(doc *goquery.Document, minTextLength int) *goquery.Selection {
	doc.Find(boilerplateSelector).Remove()
	removeUnlikely(doc)

	scores := make(map[*html.Node]*candidate)
	var order []*html.Node

	score := func(sel *goquery.Selection, points float64) {
		if sel.Length() == 0 {
			return
		}
		node := sel.Get(0)
		if node.Type != html.ElementNode || node.Data == "html" {
			return
		}
		c, ok := scores[node]
		if !ok {
			c = &candidate{sel: sel.First(), score: initialScore(sel)}
			scores[node] = c
			order = append(order, node)
		}
		c.score += points
	}

	doc.Find(scoredSelector).Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if len(text) < minParagraphLen {
			return
		}

		points := 1.0
		points += float64(strings.Count(text, ","))
		points += math.Min(math.Floor(float64(len(text))/100), 3)

		parent := s.Parent()
		score(parent, points)
		score(parent.Parent(), points/2)
	})

	var top *candidate
	for _, node := range order {
		c := scores[node]
		c.score *= 1 - linkDensity(c.sel)
		if top == nil || c.score > top.score {
			top = c
		}
	}

	if top != nil && len(collapseSpace(top.sel.Text())) > 0 {
		return top.sel
	}

	for _, selector := range []string{"article", "main", "[role='main']", "body"} {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && len(collapseSpace(sel.Text())) >= minTextLength {
			return sel
		}
	}
	return nil
}

func removeUnlikely(doc *goquery.Document) {
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "html", "body", "article", "main", "a":
			return
		}
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		match := class + " " + id
		if strings.TrimSpace(match) == "" {
			return
		}
		if unlikelyCandidates.MatchString(match) && !maybeCandidate.MatchString(match) {
			s.Remove()
		}
	})
}

func initialScore(sel *goquery.Selection) float64 {
	var score float64
	switch goquery.NodeName(sel) {
	case "article", "main":
		score = 10
	case "div":
		score = 5
	case "section":
		score = 3
	case "pre", "td", "blockquote":
		score = 3
	case "address", "ol", "ul", "dl", "dd", "dt", "li", "form":
		score = -3
	case "h1", "h2", "h3", "h4", "h5", "h6", "th":
		score = -5
	}
	return score + classWeight(sel)
}

func classWeight(sel *goquery.Selection) float64 {
	var weight float64
	for _, attr := range []string{"class", "id"} {
		value, ok := sel.Attr(attr)
		if !ok || value == "" {
			continue
		}
		if negativeWeight.MatchString(value) {
			weight -= 25
		}
		if positiveWeight.MatchString(value) {
			weight += 25
		}
	}
	return weight
}

func linkDensity(sel *goquery.Selection) float64 {
	textLen := len(collapseSpace(sel.Text()))
	if textLen == 0 {
		return 0
	}
	var linkLen int
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkLen += len(collapseSpace(a.Text()))
	})
	density := float64(linkLen) / float64(textLen)
	if density > 1 {
		density = 1
	}
	return density
}

func stripResidual(sel *goquery.Selection) {
	sel.Find(residualSelector).Remove()
	sel.Find("[hidden], [aria-hidden='true']").Remove()
}

func absolutizeLinks(sel *goquery.Selection, base *url.URL) {
	if base == nil {
		return
	}
	resolve := func(attr string) func(int, *goquery.Selection) {
		return func(_ int, s *goquery.Selection) {
			value, ok := s.Attr(attr)
			if !ok || value == "" || strings.HasPrefix(value, "#") {
				return
			}
			ref, err := url.Parse(strings.TrimSpace(value))
			if err != nil {
				return
			}
			s.SetAttr(attr, base.ResolveReference(ref).String())
		}
	}
	sel.Find("a[href]").Each(resolve("href"))
	sel.Find("img[src]").Each(resolve("src"))
}

// dropTitleHeading removes a leading heading that repeats the document
// title, since the markdown already opens with it.
func dropTitleHeading(sel *goquery.Selection, title string) {
	title = collapseSpace(title)
	if title == "" {
		return
	}
	first := sel.Children().First()
	for first.Is("header, hgroup, div, section") {
		first = first.Children().First()
	}
	if first.Is("h1, h2") && strings.EqualFold(collapseSpace(first.Text()), title) {
		first.Remove()
	}
}
