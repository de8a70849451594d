package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitescreener/models"
)

// Telegram sends a post-scan digest of the top-scoring instruments. It is
// enabled only when both token and chat id are configured; otherwise every
// call is a silent no-op.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram builds the notifier. Empty token or zero chat id yields a
// disabled notifier, not an error.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	t := &Telegram{
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
	if token == "" || chatID == 0 {
		return t, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	t.bot = bot
	return t, nil
}

// SendDigest sends the top results as one message. Notification failures
// are never fatal to the caller.
func (t *Telegram) SendDigest(results []models.ScanResult, limit int) error {
	if t.bot == nil {
		return nil
	}
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}

	var b strings.Builder
	b.WriteString("Scan digest\n")
	for i, r := range results[:limit] {
		fmt.Fprintf(&b, "%d. %s  score %d  @%.2f", i+1, r.Instrument.Symbol, r.Score, r.Quote.LastPrice)
		if r.Confluence.Detected {
			fmt.Fprintf(&b, "  confluence %d/4", r.Confluence.Strength)
		}
		b.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(t.chatID, b.String())
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn().Err(err).Msg("digest send failed")
		return err
	}
	return nil
}
