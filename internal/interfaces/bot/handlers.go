package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"readwiser/internal/domain/quote"
	"readwiser/internal/infrastructure/metrics"
)

const helpText = `Welcome to ReadWiser!

Send me quotes to save them. You can include:
- Just the quote text
- Quote + URL (I'll fetch the article title)
- #tags to categorize

Example:
"The best time to plant a tree was 20 years ago" https://example.com #wisdom

Commands:
/random - Get a random quote
/last - Show recently saved quotes
/digest - Get your digest now
/stats - View your statistics

Search:
/search <word> - Search in quotes
/tag <name> - Find by tag
/source <domain> - Find by source

Manage:
/fav <id> - Toggle favorite
/favorites - Show all favorites
/delete <id> - Delete a quote
/export - Export all quotes as JSON`

// genericFailure is what users see for any store error; detail stays in logs.
const genericFailure = "Something went wrong, please try again."

func (b *Bot) dispatchCommand(ctx context.Context, chatID, command string, args []string) {
	switch command {
	case "start", "help":
		b.reply(ctx, chatID, helpText)
	case "stats":
		b.handleStats(ctx, chatID)
	case "random":
		b.handleRandom(ctx, chatID)
	case "last":
		b.handleLast(ctx, chatID, args)
	case "digest":
		b.handleDigestNow(ctx, chatID)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "tag":
		b.handleTag(ctx, chatID, args)
	case "source":
		b.handleSource(ctx, chatID, args)
	case "fav":
		b.handleFav(ctx, chatID, args)
	case "favorites":
		b.handleFavorites(ctx, chatID)
	case "delete":
		b.handleDelete(ctx, chatID, args)
	case "export":
		b.handleExport(ctx, chatID)
	default:
		b.reply(ctx, chatID, fmt.Sprintf("Unknown command /%s. Try /help.", command))
	}
}

// handleText is the free-text save path: parse, duplicate check, metadata
// enrichment, save, confirmation.
func (b *Bot) handleText(ctx context.Context, chatID, text string) {
	parsed := quote.ParseMessage(text)
	if parsed.Quote == "" {
		b.reply(ctx, chatID, "I couldn't find a quote in your message. Send me some text to save!")
		return
	}

	input := quote.SaveInput{
		Text: parsed.Quote,
		URL:  parsed.URL,
		Tags: parsed.Tags,
	}

	// Enrichment is best effort and never blocks the save.
	if parsed.URL != nil {
		article := b.metadata.Fetch(ctx, *parsed.URL)
		input.SourceTitle = article.Title
		input.SourceAuthor = article.Author
		if article.Domain != "" {
			domain := article.Domain
			input.SourceDomain = &domain
		}
	}

	id, err := b.quotes.Save(ctx, chatID, input)
	switch {
	case errors.Is(err, quote.ErrDuplicate):
		b.reply(ctx, chatID, "This quote was already saved recently.")
		return
	case errors.Is(err, quote.ErrEmptyText):
		b.reply(ctx, chatID, "I couldn't find a quote in your message. Send me some text to save!")
		return
	case err != nil:
		b.log.Error().Err(err).Msg("quote save failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}

	metrics.QuotesSavedTotal.Inc()
	b.reply(ctx, chatID, confirmSave(id, parsed, input))
}

func confirmSave(id uint, parsed quote.Parsed, input quote.SaveInput) string {
	response := fmt.Sprintf("Saved (#%d): \"%s\"", id, Truncate(parsed.Quote, 100))

	title := deref(input.SourceTitle)
	domain := deref(input.SourceDomain)
	author := deref(input.SourceAuthor)
	if title != "" || domain != "" {
		source := title
		if source == "" {
			source = domain
		}
		if author != "" {
			source += " by " + author
		} else if domain != "" && title != "" {
			source += " (" + domain + ")"
		}
		response += "\nFrom: " + source
	}

	if len(parsed.Tags) > 0 {
		response += "\nTags: " + hashTags(parsed.Tags)
	}
	return response
}

func (b *Bot) handleStats(ctx context.Context, chatID string) {
	stats, err := b.quotes.Stats(ctx, chatID)
	if err != nil {
		b.log.Error().Err(err).Msg("stats query failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}

	var tagLines strings.Builder
	if len(stats.TopTags) > 0 {
		tagLines.WriteString("\n\nTop tags:")
		for _, tc := range stats.TopTags {
			fmt.Fprintf(&tagLines, "\n  #%s: %d", tc.Tag, tc.Count)
		}
	}

	b.reply(ctx, chatID, fmt.Sprintf(
		"Your ReadWiser Stats\n\nTotal quotes: %d\nAdded this week: %d\nFavorites: %d%s",
		stats.Total, stats.ThisWeek, stats.Favorites, tagLines.String()))
}

func (b *Bot) handleRandom(ctx context.Context, chatID string) {
	quotes, err := b.quotes.Sample(ctx, chatID, 1, true)
	if err != nil {
		b.log.Error().Err(err).Msg("random sample failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, "No quotes saved yet. Send me some!")
		return
	}
	b.reply(ctx, chatID, FormatQuote(quotes[0], true))
}

func (b *Bot) handleLast(ctx context.Context, chatID string, args []string) {
	n := 5
	if len(args) > 0 {
		if parsed, err := strconv.Atoi(args[0]); err == nil && parsed > 0 {
			n = min(parsed, 10)
		}
	}

	quotes, err := b.quotes.Recent(ctx, chatID, n)
	if err != nil {
		b.log.Error().Err(err).Msg("recent query failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, "No quotes saved yet.")
		return
	}

	var response strings.Builder
	fmt.Fprintf(&response, "Last %d quote(s):\n\n", len(quotes))
	for _, q := range quotes {
		response.WriteString(FormatQuote(q, true) + "\n\n")
	}
	b.reply(ctx, chatID, CapMessage(response.String()))
}

func (b *Bot) handleSearch(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /search <keyword>")
		return
	}
	keyword := strings.Join(args, " ")
	quotes, err := b.quotes.Search(ctx, chatID, keyword)
	if err != nil {
		b.log.Error().Err(err).Msg("search failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, fmt.Sprintf("No quotes found containing \"%s\"", keyword))
		return
	}
	b.replyMatches(ctx, chatID, fmt.Sprintf("Found %d quote(s) for \"%s\":", len(quotes), keyword), quotes)
}

func (b *Bot) handleTag(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /tag <tagname>")
		return
	}
	tag := strings.TrimPrefix(args[0], "#")
	quotes, err := b.quotes.ByTag(ctx, chatID, tag)
	if err != nil {
		b.log.Error().Err(err).Msg("tag lookup failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, fmt.Sprintf("No quotes found with tag #%s", tag))
		return
	}
	b.replyMatches(ctx, chatID, fmt.Sprintf("Found %d quote(s) with #%s:", len(quotes), tag), quotes)
}

func (b *Bot) handleSource(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /source <domain>")
		return
	}
	domain := args[0]
	quotes, err := b.quotes.BySource(ctx, chatID, domain)
	if err != nil {
		b.log.Error().Err(err).Msg("source lookup failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, fmt.Sprintf("No quotes found from %s", domain))
		return
	}
	b.replyMatches(ctx, chatID, fmt.Sprintf("Found %d quote(s) from %s:", len(quotes), domain), quotes)
}

// replyMatches renders up to five results under a header line.
func (b *Bot) replyMatches(ctx context.Context, chatID, header string, quotes []quote.Quote) {
	var response strings.Builder
	response.WriteString(header + "\n\n")
	for i, q := range quotes {
		if i == 5 {
			break
		}
		response.WriteString(FormatQuote(q, true) + "\n\n")
	}
	b.reply(ctx, chatID, CapMessage(response.String()))
}

func (b *Bot) handleFav(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /fav <quote_id>")
		return
	}
	id, ok := parseID(args[0])
	if !ok {
		b.reply(ctx, chatID, "Invalid quote ID. Use a number.")
		return
	}

	status, err := b.quotes.ToggleFavorite(ctx, chatID, id)
	if err != nil {
		b.log.Error().Err(err).Msg("favorite toggle failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if status == nil {
		b.reply(ctx, chatID, fmt.Sprintf("Quote #%d not found.", id))
		return
	}

	verb := "removed from"
	if *status {
		verb = "added to"
	}
	b.reply(ctx, chatID, fmt.Sprintf("Quote #%d %s favorites.", id, verb))
}

func (b *Bot) handleFavorites(ctx context.Context, chatID string) {
	quotes, err := b.quotes.Favorites(ctx, chatID)
	if err != nil {
		b.log.Error().Err(err).Msg("favorites query failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if len(quotes) == 0 {
		b.reply(ctx, chatID, "No favorite quotes yet. Use /fav <id> to add some!")
		return
	}

	var response strings.Builder
	fmt.Fprintf(&response, "Your %d favorite quote(s):\n\n", len(quotes))
	for i, q := range quotes {
		if i == 10 {
			fmt.Fprintf(&response, "... and %d more", len(quotes)-10)
			break
		}
		response.WriteString(FormatQuote(q, true) + "\n\n")
	}
	b.reply(ctx, chatID, CapMessage(response.String()))
}

func (b *Bot) handleDelete(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "Usage: /delete <quote_id>")
		return
	}
	id, ok := parseID(args[0])
	if !ok {
		b.reply(ctx, chatID, "Invalid quote ID. Use a number.")
		return
	}

	existing, err := b.quotes.Get(ctx, chatID, id)
	if err != nil {
		b.log.Error().Err(err).Msg("delete lookup failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if existing == nil {
		b.reply(ctx, chatID, fmt.Sprintf("Quote #%d not found.", id))
		return
	}

	deleted, err := b.quotes.Delete(ctx, chatID, id)
	if err != nil || !deleted {
		b.log.Error().Err(err).Uint("quote_id", id).Msg("delete failed")
		b.reply(ctx, chatID, "Failed to delete quote.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Deleted quote #%d:\n\"%s\"", id, Truncate(existing.Text, 50)))
}

func (b *Bot) handleExport(ctx context.Context, chatID string) {
	count, err := b.quotes.Count(ctx, chatID)
	if err != nil {
		b.log.Error().Err(err).Msg("export count failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if count == 0 {
		b.reply(ctx, chatID, "No quotes to export.")
		return
	}

	data, err := b.quotes.Export(ctx, chatID)
	if err != nil {
		b.log.Error().Err(err).Msg("export failed")
		b.reply(ctx, chatID, genericFailure)
		return
	}

	caption := fmt.Sprintf("Exported %d quotes", count)
	if err := b.transport.SendDocument(ctx, chatID, "readwiser_quotes.json", caption, data); err != nil {
		b.log.Error().Err(err).Msg("export upload failed")
	}
}

func (b *Bot) handleDigestNow(ctx context.Context, chatID string) {
	if err := b.SendDigestTo(ctx, chatID); err != nil {
		b.log.Error().Err(err).Msg("on-demand digest failed")
		b.reply(ctx, chatID, genericFailure)
	}
}

func parseID(arg string) (uint, bool) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
