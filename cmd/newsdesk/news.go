package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/harunnryd/newsdesk/internal/formatter"
	"github.com/harunnryd/newsdesk/internal/news"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Inspect and seed the news store",
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		domain, _ := cmd.Flags().GetString("domain")
		startRaw, _ := cmd.Flags().GetString("start")
		endRaw, _ := cmd.Flags().GetString("end")
		limit, _ := cmd.Flags().GetInt("limit")
		formatRaw, _ := cmd.Flags().GetString("format")

		format, err := formatter.ParseOutputFormat(formatRaw)
		if err != nil {
			return err
		}
		f, err := formatter.New(format)
		if err != nil {
			return err
		}

		q := news.Query{Search: search, Domain: domain, Limit: limit}
		if startRaw != "" || endRaw != "" {
			start, end := news.ParseDate(startRaw), news.ParseDate(endRaw)
			if start.Equal(news.Epoch) || end.Equal(news.Epoch) {
				return fmt.Errorf("invalid date range: both --start and --end must be valid dates")
			}
			q.Start, q.End = &start, &end
		}

		loadedCfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ctx := commandContext(cmd)
		store, err := news.Open(ctx, loadedCfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open news store: %w", err)
		}
		defer store.Close()

		articles, err := store.List(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to fetch news: %w", err)
		}

		out, err := f.FormatArticles(articles)
		if err != nil {
			return fmt.Errorf("failed to format articles: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var newsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upsert articles from a JSON or YAML file",
	Long:  `Reads a list of articles ({id, title, url, date, domain}) and upserts them into the configured store. Missing ids are generated; a missing domain is taken from the url.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		articles, err := parseArticles(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
		if len(articles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No articles to import.")
			return nil
		}

		loadedCfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		ctx := commandContext(cmd)
		store, err := news.Open(ctx, loadedCfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open news store: %w", err)
		}
		defer store.Close()

		writer, ok := store.(news.Writer)
		if !ok {
			return fmt.Errorf("store backend %q does not support writes", loadedCfg.Store.Backend)
		}
		if err := writer.Upsert(ctx, articles...); err != nil {
			return fmt.Errorf("failed to import articles: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d article(s) into %s\n", len(articles), loadedCfg.Store.Backend)
		return nil
	},
}

type importedArticle struct {
	ID     string `yaml:"id"`
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Date   any    `yaml:"date"`
	Domain string `yaml:"domain"`
}

// parseArticles accepts a JSON array or a YAML list. Dates go through the
// same lenient parsing the API applies.
func parseArticles(data []byte) ([]news.Article, error) {
	var raw []importedArticle
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(raw))
	for i, r := range raw {
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.URL) == "" {
			return nil, fmt.Errorf("article %d has neither title nor url", i)
		}
		domain := r.Domain
		if domain == "" {
			domain = domainOf(r.URL)
		}
		articles = append(articles, news.Article{
			ID:     r.ID,
			Title:  r.Title,
			URL:    r.URL,
			Date:   news.ParseDate(r.Date),
			Domain: domain,
		})
	}
	return articles, nil
}

func domainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func init() {
	newsListCmd.Flags().String("search", "", "case-insensitive text matched against title and domain")
	newsListCmd.Flags().String("domain", "", "exact source domain")
	newsListCmd.Flags().String("start", "", "range start (inclusive), e.g. 2025-01-01")
	newsListCmd.Flags().String("end", "", "range end (inclusive)")
	newsListCmd.Flags().Int("limit", 0, "maximum number of articles (0 for all)")
	newsListCmd.Flags().StringP("format", "f", "table", "output format (table, json, yaml)")

	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsImportCmd)
	rootCmd.AddCommand(newsCmd)
}
