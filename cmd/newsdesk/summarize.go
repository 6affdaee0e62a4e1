package main

import (
	"fmt"
	"strings"

	"github.com/harunnryd/newsdesk/cmd/newsdesk/runtime"
	"github.com/harunnryd/newsdesk/internal/news"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize one article or a filtered set of stored articles",
	Long: `With --url or --title, summarizes a single article; the model may fetch the page first.
Otherwise lists articles from the store (filtered by --search, --domain, --limit) and summarizes them together.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		articleURL, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")
		search, _ := cmd.Flags().GetString("search")
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")

		return executeWithRuntime(cmd, func(r *runtime.RuntimeComponents) error {
			if strings.TrimSpace(articleURL) != "" || strings.TrimSpace(title) != "" {
				summary, err := r.Summarizer.Article(r.Ctx, news.Article{
					Title:  title,
					URL:    articleURL,
					Domain: domainOf(articleURL),
					Date:   news.Epoch,
				})
				if err != nil {
					return fmt.Errorf("failed to generate summary: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary)
				return nil
			}

			articles, err := r.Store.List(r.Ctx, news.Query{Search: search, Domain: domain, Limit: limit})
			if err != nil {
				return fmt.Errorf("failed to fetch news: %w", err)
			}
			if len(articles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles matched.")
				return nil
			}

			summary, err := r.Summarizer.Articles(r.Ctx, articles)
			if err != nil {
				return fmt.Errorf("failed to generate summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().String("url", "", "article URL to summarize")
	summarizeCmd.Flags().String("title", "", "article title to summarize")
	summarizeCmd.Flags().String("search", "", "summarize stored articles whose title or domain contains this text")
	summarizeCmd.Flags().String("domain", "", "summarize stored articles from this domain")
	summarizeCmd.Flags().Int("limit", 20, "maximum number of stored articles to summarize")
}
