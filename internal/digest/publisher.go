package digest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	"github.com/slack-go/slack"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
)

const (
	lockRetryDelay      = 100 * time.Millisecond
	telegramMessageSize = 4096
)

// BuildPublishers returns a publisher for every enabled target.
func BuildPublishers(cfg config.DigestConfig) ([]Publisher, error) {
	var publishers []Publisher

	if cfg.File.Enabled {
		lockTimeout, err := config.DurationOrDefault(cfg.LockTimeout, config.DefaultDigestLockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse digest lock timeout: %w", err)
		}
		p, err := NewFilePublisher(cfg.File.Path, lockTimeout)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}

	if cfg.Slack.Enabled {
		p, err := NewSlackPublisher(cfg.Slack.BotToken, cfg.Slack.Channel, cfg.Slack.APIURL)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}

	if cfg.Telegram.Enabled {
		p, err := NewTelegramPublisher(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIEndpoint)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}

	return publishers, nil
}

// FilePublisher replaces a markdown file with the latest digest. Concurrent
// writers, including other processes, are serialised by a lock file next to
// the target.
type FilePublisher struct {
	path        string
	lockTimeout time.Duration
}

func NewFilePublisher(path string, lockTimeout time.Duration) (*FilePublisher, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, newsErrors.InvalidInput("digest file publisher requires digest.file.path")
	}
	return &FilePublisher{path: path, lockTimeout: lockTimeout}, nil
}

func (p *FilePublisher) Name() string { return "file" }

func (p *FilePublisher) Path() string { return p.path }

func (p *FilePublisher) Publish(ctx context.Context, d Digest) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("create digest dir: %w", err)
	}

	lockCtx := ctx
	if p.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, p.lockTimeout)
		defer cancel()
	}

	lock := flock.New(p.path + ".lock")
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && (ctx.Err() != nil || lockCtx.Err() == nil) {
		return fmt.Errorf("lock %s: %w", p.path, err)
	}
	if !locked {
		return newsErrors.Transient(fmt.Sprintf("digest file %s is locked", p.path))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to release digest lock", "path", p.path, "error", err)
		}
	}()

	if err := atomic.WriteFile(p.path, strings.NewReader(d.Markdown())); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}

type SlackPublisher struct {
	client  *slack.Client
	channel string
}

func NewSlackPublisher(botToken, channel, apiURL string) (*SlackPublisher, error) {
	if strings.TrimSpace(botToken) == "" {
		return nil, newsErrors.InvalidInput("slack publisher requires digest.slack.bot_token or SLACK_BOT_TOKEN")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, newsErrors.InvalidInput("slack publisher requires digest.slack.channel")
	}

	var opts []slack.Option
	if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	return &SlackPublisher{
		client:  slack.New(botToken, opts...),
		channel: channel,
	}, nil
}

func (p *SlackPublisher) Name() string { return "slack" }

func (p *SlackPublisher) Publish(ctx context.Context, d Digest) error {
	_, _, err := p.client.PostMessageContext(ctx, p.channel,
		slack.MsgOptionText(d.Markdown(), false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return newsErrors.Wrap(err, "failed to send Slack message")
	}
	slog.Debug("Slack digest sent", "channel", p.channel)
	return nil
}

// TelegramPublisher sends the digest to a chat id or @channel. The bot is
// created on first use because construction calls the Telegram API.
type TelegramPublisher struct {
	token    string
	chatID   int64
	channel  string
	endpoint string

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

func NewTelegramPublisher(token, chatID, endpoint string) (*TelegramPublisher, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newsErrors.InvalidInput("telegram publisher requires digest.telegram.bot_token or TELEGRAM_BOT_TOKEN")
	}

	p := &TelegramPublisher{token: token, endpoint: strings.TrimSpace(endpoint)}
	chatID = strings.TrimSpace(chatID)
	switch {
	case chatID == "":
		return nil, newsErrors.InvalidInput("telegram publisher requires digest.telegram.chat_id")
	case strings.HasPrefix(chatID, "@"):
		p.channel = chatID
	default:
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, newsErrors.InvalidInput("invalid telegram chat id: " + err.Error())
		}
		p.chatID = id
	}
	return p, nil
}

func (p *TelegramPublisher) Name() string { return "telegram" }

func (p *TelegramPublisher) client() (*tgbotapi.BotAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bot != nil {
		return p.bot, nil
	}

	var (
		bot *tgbotapi.BotAPI
		err error
	)
	if p.endpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(p.token, p.endpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(p.token)
	}
	if err != nil {
		return nil, newsErrors.Wrap(err, "failed to init telegram bot")
	}
	p.bot = bot
	return bot, nil
}

func (p *TelegramPublisher) Publish(ctx context.Context, d Digest) error {
	bot, err := p.client()
	if err != nil {
		return err
	}

	for _, chunk := range splitMessage(d.Text(), telegramMessageSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg tgbotapi.MessageConfig
		if p.channel != "" {
			msg = tgbotapi.NewMessageToChannel(p.channel, chunk)
		} else {
			msg = tgbotapi.NewMessage(p.chatID, chunk)
		}
		msg.DisableWebPagePreview = true
		if _, err := bot.Send(msg); err != nil {
			return newsErrors.Wrap(err, "failed to send telegram message")
		}
	}
	slog.Debug("Telegram digest sent", "chat_id", p.chatID, "channel", p.channel)
	return nil
}

// splitMessage cuts text into pieces of at most size runes, preferring line
// breaks.
func splitMessage(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	for len(runes) > size {
		cut := size
		for i := size; i > size/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
