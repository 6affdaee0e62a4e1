// Package news reads the article list the dashboard is built on.
package news

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Epoch stands in for article dates that cannot be parsed.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

type Article struct {
	ID     string    `json:"id" yaml:"id"`
	Title  string    `json:"title" yaml:"title"`
	URL    string    `json:"url" yaml:"url"`
	Date   time.Time `json:"date" yaml:"date"`
	Domain string    `json:"domain" yaml:"domain"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate normalises a stored date value. Strings are tried against common
// layouts, numbers are read as Unix milliseconds and timestamp objects by
// their seconds field. Anything else is Epoch.
func ParseDate(v any) time.Time {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return Epoch
		}
		return d.UTC()
	case *time.Time:
		if d == nil {
			return Epoch
		}
		return ParseDate(*d)
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case int64:
		return time.UnixMilli(d).UTC()
	case int:
		return time.UnixMilli(int64(d)).UTC()
	case float64:
		return time.UnixMilli(int64(d)).UTC()
	case map[string]any:
		// Serialised Firestore timestamps: {"seconds": n} or {"_seconds": n}.
		for _, key := range []string{"seconds", "_seconds"} {
			if secs, ok := number(d[key]); ok {
				nanos, _ := number(d[strings.Replace(key, "seconds", "nanoseconds", 1)])
				return time.Unix(secs, nanos).UTC()
			}
		}
	}
	return Epoch
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// Query selects articles. Only one filter applies, in this order: Search,
// Domain, then the Start/End range (both must be set). An empty Query lists
// everything.
type Query struct {
	Search string
	Domain string
	Start  *time.Time
	End    *time.Time
	Limit  int
}

type QueryMode string

const (
	ModeAll       QueryMode = "all"
	ModeSearch    QueryMode = "search"
	ModeDomain    QueryMode = "domain"
	ModeDateRange QueryMode = "date_range"
)

func (q Query) Mode() QueryMode {
	switch {
	case strings.TrimSpace(q.Search) != "":
		return ModeSearch
	case strings.TrimSpace(q.Domain) != "":
		return ModeDomain
	case q.Start != nil && q.End != nil:
		return ModeDateRange
	default:
		return ModeAll
	}
}

// Matches reports whether a matches the query's active filter.
func (q Query) Matches(a Article) bool {
	switch q.Mode() {
	case ModeSearch:
		term := strings.ToLower(strings.TrimSpace(q.Search))
		return strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.Domain), term)
	case ModeDomain:
		return a.Domain == strings.TrimSpace(q.Domain)
	case ModeDateRange:
		return !a.Date.Before(*q.Start) && !a.Date.After(*q.End)
	default:
		return true
	}
}

// SortByDateDesc orders newest first. Ties keep their ID order so output is
// stable across backends.
func SortByDateDesc(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Date.Equal(articles[j].Date) {
			return articles[i].ID < articles[j].ID
		}
		return articles[i].Date.After(articles[j].Date)
	})
}

func applyLimit(articles []Article, limit int) []Article {
	if limit > 0 && len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
