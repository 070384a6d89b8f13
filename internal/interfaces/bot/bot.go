// Package bot is the command dispatcher: it long-polls the Telegram
// transport, authorizes senders against the configured allow-list identity
// and routes commands and free-text saves to the domain services.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"readwiser/internal/config"
	"readwiser/internal/domain/quote"
	"readwiser/internal/domain/user"
	"readwiser/internal/infrastructure/metadata"
	"readwiser/internal/infrastructure/metrics"
	"readwiser/internal/infrastructure/telegram"
)

// Transport is the outbound messaging surface the bot depends on.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID, text string) error
	SendDocument(ctx context.Context, chatID, filename, caption string, data []byte) error
}

// MetadataFetcher enriches saved links, best effort.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) metadata.Article
}

// Bot wires the transport to the domain services.
type Bot struct {
	cfg       *config.Config
	transport Transport
	metadata  MetadataFetcher
	quotes    *quote.Service
	users     *user.Service
	log       zerolog.Logger
}

func New(cfg *config.Config, transport Transport, fetcher MetadataFetcher, quotes *quote.Service, users *user.Service, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:       cfg,
		transport: transport,
		metadata:  fetcher,
		quotes:    quotes,
		users:     users,
		log:       log,
	}
}

// Run long-polls for updates until the context is cancelled. Transport
// failures are logged and polling resumes after a short pause.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info().Msg("bot polling started")
	var offset int64

	for {
		updates, err := b.transport.GetUpdates(ctx, offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	if update.Message == nil || update.Message.Text == "" {
		metrics.BotUpdatesTotal.WithLabelValues("ignored").Inc()
		return
	}

	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
	if !b.authorized(chatID) {
		// Unrecognized senders get no response at all.
		metrics.BotUpdatesTotal.WithLabelValues("unauthorized").Inc()
		return
	}
	metrics.BotUpdatesTotal.WithLabelValues("handled").Inc()

	b.registerSender(ctx, chatID, update.Message.From)

	text := strings.TrimSpace(update.Message.Text)
	if command, args, ok := splitCommand(text); ok {
		b.dispatchCommand(ctx, chatID, command, args)
		return
	}
	b.handleText(ctx, chatID, text)
}

func (b *Bot) authorized(chatID string) bool {
	return chatID == b.cfg.TelegramChatID
}

func (b *Bot) registerSender(ctx context.Context, chatID string, from *telegram.Peer) {
	var username, displayName string
	if from != nil {
		username = from.Username
		displayName = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	if _, err := b.users.Register(ctx, chatID, username, displayName); err != nil {
		b.log.Error().Err(err).Msg("user registration failed")
	}
}

// SendDigestTo samples, formats and delivers a digest to one chat.
func (b *Bot) SendDigestTo(ctx context.Context, chatID string) error {
	quotes, err := b.quotes.Sample(ctx, chatID, b.cfg.DigestCount, true)
	if err != nil {
		return err
	}
	total, err := b.quotes.Count(ctx, chatID)
	if err != nil {
		return err
	}

	if err := b.transport.SendMessage(ctx, chatID, FormatDigest(quotes, total)); err != nil {
		return err
	}
	metrics.DigestsSentTotal.Inc()
	return nil
}

// SendDailyQuoteTo delivers the quote of the day, or nothing when the user
// has no quotes.
func (b *Bot) SendDailyQuoteTo(ctx context.Context, chatID string) error {
	quotes, err := b.quotes.Sample(ctx, chatID, 1, true)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		return nil
	}

	message := "Quote of the Day\n\n" + FormatQuote(quotes[0], false)
	if err := b.transport.SendMessage(ctx, chatID, CapMessage(message)); err != nil {
		return err
	}
	metrics.DailyQuotesSentTotal.Inc()
	return nil
}

// SendDigests fans the weekly digest out to every subscribed user.
func (b *Bot) SendDigests(ctx context.Context) error {
	recipients, err := b.users.DigestRecipients(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, recipient := range recipients {
		if err := b.SendDigestTo(ctx, recipient.ChatID); err != nil {
			b.log.Error().Err(err).Str("chat_id", recipient.ChatID).Msg("digest delivery failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendDailyQuotes fans the daily quote out to every subscribed user.
func (b *Bot) SendDailyQuotes(ctx context.Context) error {
	recipients, err := b.users.DailyQuoteRecipients(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, recipient := range recipients {
		if err := b.SendDailyQuoteTo(ctx, recipient.ChatID); err != nil {
			b.log.Error().Err(err).Str("chat_id", recipient.ChatID).Msg("daily quote delivery failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if err := b.transport.SendMessage(ctx, chatID, CapMessage(text)); err != nil {
		b.log.Error().Err(err).Msg("reply delivery failed")
	}
}

// splitCommand breaks "/cmd@botname arg arg" into its parts.
func splitCommand(text string) (command string, args []string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	command = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), fields[1:], true
}
