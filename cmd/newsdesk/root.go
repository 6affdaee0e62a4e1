package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/newsdesk/internal/config"
	"github.com/harunnryd/newsdesk/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Newsdesk AI news dashboard",
	Long:  `Newsdesk serves the AI news dashboard API: article listing, model-written summaries and page extraction.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.newsdesk/config.yaml)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("model.provider", config.DefaultModelProvider, "model provider (gemini, openai, anthropic)")
	rootCmd.PersistentFlags().String("store.backend", config.DefaultStoreBackend, "news store backend (firestore, sqlite)")
}
