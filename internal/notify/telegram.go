// Package notify delivers line movement alerts over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat, to stay
// under the ~30 messages/min API limit.
const telegramSendInterval = 2 * time.Second

// LineMovement describes a price move large enough to alert on
type LineMovement struct {
	GameLabel       string // "Bills @ Chiefs"
	MarketKey       string
	BookKey         string
	OutcomeName     string
	OldPrice        int
	NewPrice        int
	MovementPercent float64
	Kickoff         time.Time
}

// Notifier receives line movements from the ingest pipeline
type Notifier interface {
	NotifyMovement(mv LineMovement)
	Close()
}

// NopNotifier drops every alert; used when Telegram is not configured
type NopNotifier struct{}

func (NopNotifier) NotifyMovement(LineMovement) {}
func (NopNotifier) Close()                      {}

// TelegramNotifier sends line movement alerts to a Telegram chat through
// a buffered queue with rate limiting
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	queue  chan LineMovement
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTelegramNotifier creates a notifier, or nil when the bot cannot be
// reached (callers should fall back to NopNotifier)
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("failed to create telegram bot", "error", err)
		return nil
	}

	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("failed to get telegram bot info", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan LineMovement, 100),
		ctx:    ctx,
		cancel: cancel,
	}

	n.wg.Add(1)
	go n.sender()

	return n
}

// NotifyMovement queues a movement alert. Drops the alert when the queue
// is full rather than blocking the ingest pipeline.
func (n *TelegramNotifier) NotifyMovement(mv LineMovement) {
	select {
	case n.queue <- mv:
	default:
		slog.Warn("telegram queue full, dropping movement alert",
			"game", mv.GameLabel, "book", mv.BookKey)
	}
}

// Close stops the sender goroutine
func (n *TelegramNotifier) Close() {
	n.cancel()
	n.wg.Wait()
}

// sender drains the queue with a minimum interval between sends
func (n *TelegramNotifier) sender() {
	defer n.wg.Done()

	var lastSend time.Time

	for {
		select {
		case <-n.ctx.Done():
			return
		case mv := <-n.queue:
			if wait := telegramSendInterval - time.Since(lastSend); wait > 0 {
				select {
				case <-n.ctx.Done():
					return
				case <-time.After(wait):
				}
			}

			msg := tgbotapi.NewMessage(n.chatID, formatMovement(mv))
			msg.ParseMode = tgbotapi.ModeMarkdown

			if _, err := n.bot.Send(msg); err != nil {
				slog.Error("failed to send telegram alert", "error", err)
			}
			lastSend = time.Now()
		}
	}
}

func formatMovement(mv LineMovement) string {
	return fmt.Sprintf(
		"📉 *Line move* %.1f%%\n%s\n%s / %s — %s\n`%+d → %+d`\nKickoff: %s",
		mv.MovementPercent,
		mv.GameLabel,
		mv.BookKey, mv.MarketKey, mv.OutcomeName,
		mv.OldPrice, mv.NewPrice,
		mv.Kickoff.Format("Mon Jan 2 15:04 MST"),
	)
}
