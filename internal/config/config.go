package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Model     ModelConfig     `koanf:"model"`
	Summary   SummaryConfig   `koanf:"summary"`
	Extractor ExtractorConfig `koanf:"extractor"`
	Store     StoreConfig     `koanf:"store"`
	Digest    DigestConfig    `koanf:"digest"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
	RequestTimeout  string `koanf:"request_timeout"`
}

// ModelConfig selects the remote model backend. The client built from it is
// created once at startup and shared by every request.
type ModelConfig struct {
	Provider string `koanf:"provider"`
	Name     string `koanf:"name"`
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
	Vertex   bool   `koanf:"vertex"`
	Project  string `koanf:"project"`
	Location string `koanf:"location"`
}

type SummaryConfig struct {
	Temperature     float64 `koanf:"temperature"`
	SingleMaxTokens int     `koanf:"single_max_tokens"`
	MultiMaxTokens  int     `koanf:"multi_max_tokens"`
	EnableToolUse   bool    `koanf:"enable_tool_use"`
}

// ExtractorConfig controls page fetching. AllowPrivateHosts lets the
// extractor reach loopback, private and link-local addresses.
type ExtractorConfig struct {
	UserAgent         string `koanf:"user_agent"`
	Timeout           string `koanf:"timeout"`
	MaxBodyBytes      int64  `koanf:"max_body_bytes"`
	MinTextLength     int    `koanf:"min_text_length"`
	AllowPrivateHosts bool   `koanf:"allow_private_hosts"`
}

type StoreConfig struct {
	Backend    string `koanf:"backend"`
	ProjectID  string `koanf:"project_id"`
	DatabaseID string `koanf:"database_id"`
	Collection string `koanf:"collection"`
	SQLitePath string `koanf:"sqlite_path"`
}

type DigestConfig struct {
	Schedule    string               `koanf:"schedule"`
	Limit       int                  `koanf:"limit"`
	RunTimeout  string               `koanf:"run_timeout"`
	File        DigestFileConfig     `koanf:"file"`
	Slack       DigestSlackConfig    `koanf:"slack"`
	Telegram    DigestTelegramConfig `koanf:"telegram"`
	LockTimeout string               `koanf:"lock_timeout"`
}

type DigestFileConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type DigestSlackConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	Channel  string `koanf:"channel"`
	APIURL   string `koanf:"api_url"`
}

type DigestTelegramConfig struct {
	Enabled     bool   `koanf:"enabled"`
	BotToken    string `koanf:"bot_token"`
	ChatID      string `koanf:"chat_id"`
	APIEndpoint string `koanf:"api_endpoint"`
}

const (
	DefaultServerPort              = 8080
	DefaultServerLogLevel          = "info"
	DefaultServerReadTimeout       = "10s"
	DefaultServerWriteTimeout      = "90s"
	DefaultServerIdleTimeout       = "60s"
	DefaultServerShutdownTimeout   = "5s"
	DefaultServerRequestTimeout    = "60s"
	DefaultModelProvider           = "gemini"
	DefaultModelName               = "gemini-2.5-flash"
	DefaultModelLocation           = "us-central1"
	DefaultSummaryTemperature      = 0.3
	DefaultSummarySingleMaxTokens  = 200
	DefaultSummaryMultiMaxTokens   = 500
	DefaultSummaryEnableToolUse    = true
	DefaultExtractorUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultExtractorTimeout        = "15s"
	DefaultExtractorMaxBodyBytes   = 5 * 1024 * 1024
	DefaultExtractorMinTextLength  = 25
	DefaultStoreBackend            = "firestore"
	DefaultStoreCollection         = "news"
	DefaultDigestSchedule          = ""
	DefaultDigestLimit             = 20
	DefaultDigestRunTimeout        = "2m"
	DefaultDigestLockTimeout       = "10s"
	DefaultDigestFileName          = "digest.md"
	DefaultOpenAIBaseURL           = "https://api.openai.com/v1"
	configDirName                  = ".newsdesk"
	envPrefix                      = "NEWSDESK_"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	home := os.Getenv("HOME")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":                   DefaultServerPort,
		"server.log_level":              DefaultServerLogLevel,
		"server.read_timeout":           DefaultServerReadTimeout,
		"server.write_timeout":          DefaultServerWriteTimeout,
		"server.idle_timeout":           DefaultServerIdleTimeout,
		"server.shutdown_timeout":       DefaultServerShutdownTimeout,
		"server.request_timeout":        DefaultServerRequestTimeout,
		"model.provider":                DefaultModelProvider,
		"model.name":                    DefaultModelName,
		"model.location":                DefaultModelLocation,
		"summary.temperature":           DefaultSummaryTemperature,
		"summary.single_max_tokens":     DefaultSummarySingleMaxTokens,
		"summary.multi_max_tokens":      DefaultSummaryMultiMaxTokens,
		"summary.enable_tool_use":       DefaultSummaryEnableToolUse,
		"extractor.user_agent":          DefaultExtractorUserAgent,
		"extractor.timeout":             DefaultExtractorTimeout,
		"extractor.max_body_bytes":      DefaultExtractorMaxBodyBytes,
		"extractor.min_text_length":     DefaultExtractorMinTextLength,
		"extractor.allow_private_hosts": false,
		"store.backend":                 DefaultStoreBackend,
		"store.collection":              DefaultStoreCollection,
		"store.sqlite_path":             filepath.Join(home, configDirName, "news.db"),
		"digest.schedule":               DefaultDigestSchedule,
		"digest.limit":                  DefaultDigestLimit,
		"digest.run_timeout":            DefaultDigestRunTimeout,
		"digest.lock_timeout":           DefaultDigestLockTimeout,
		"digest.file.path":              filepath.Join(home, configDirName, DefaultDigestFileName),
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, configDirName, "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	injectStandardEnv(&cfg)

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// injectStandardEnv fills credentials from the conventional provider
// variables when the config left them empty.
func injectStandardEnv(cfg *Config) {
	if cfg.Model.APIKey == "" {
		switch cfg.Model.Provider {
		case "gemini":
			cfg.Model.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Model.Project == "" {
		cfg.Model.Project = os.Getenv("GOOGLE_CLOUD_PROJECT_ID")
	}
	if loc := os.Getenv("GOOGLE_CLOUD_LOCATION"); loc != "" && cfg.Model.Location == DefaultModelLocation {
		cfg.Model.Location = loc
	}
	if cfg.Store.ProjectID == "" {
		cfg.Store.ProjectID = cfg.Model.Project
	}
	if cfg.Digest.Slack.BotToken == "" {
		cfg.Digest.Slack.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	}
	if cfg.Digest.Telegram.BotToken == "" {
		cfg.Digest.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("model.provider: unsupported provider %q (supported: gemini, openai, anthropic)", c.Model.Provider)
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Summary.Temperature < 0 || c.Summary.Temperature > 1 {
		return fmt.Errorf("summary.temperature must be within [0,1], got %v", c.Summary.Temperature)
	}
	if c.Summary.SingleMaxTokens <= 0 || c.Summary.MultiMaxTokens <= 0 {
		return fmt.Errorf("summary max tokens must be positive")
	}
	switch c.Store.Backend {
	case "firestore", "sqlite":
	default:
		return fmt.Errorf("store.backend: unsupported backend %q (supported: firestore, sqlite)", c.Store.Backend)
	}
	return nil
}

func normalizePathFields(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	sqlitePath, err := expandPath(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	cfg.Store.SQLitePath = sqlitePath

	digestPath, err := expandPath(cfg.Digest.File.Path)
	if err != nil {
		return err
	}
	cfg.Digest.File.Path = digestPath

	return nil
}

// expandPath resolves environment variables and a leading "~/".
func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(trimmed)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			current, uerr := user.Current()
			if uerr != nil {
				return "", fmt.Errorf("resolve home dir: %w", uerr)
			}
			home = current.HomeDir
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}

	return filepath.Clean(expanded), nil
}
