package bot

import (
	"fmt"
	"strings"

	"readwiser/internal/domain/quote"
)

// MaxMessageLength is the practical cap for outbound message bodies, leaving
// headroom under Telegram's 4096-character limit.
const MaxMessageLength = 4000

// FormatQuote renders one quote for display.
func FormatQuote(q quote.Quote, showID bool) string {
	var b strings.Builder
	if showID {
		fmt.Fprintf(&b, "[#%d] ", q.ID)
	}
	fmt.Fprintf(&b, "\"%s\"", q.Text)
	if q.IsFavorite {
		b.WriteString(" *")
	}

	var source []string
	if q.SourceTitle != nil && *q.SourceTitle != "" {
		source = append(source, *q.SourceTitle)
	}
	if q.SourceAuthor != nil && *q.SourceAuthor != "" {
		source = append(source, "by "+*q.SourceAuthor)
	} else if q.SourceDomain != nil && *q.SourceDomain != "" {
		source = append(source, "("+*q.SourceDomain+")")
	}
	if len(source) > 0 {
		b.WriteString("\n  -- " + strings.Join(source, " "))
	}

	if q.URL != nil && *q.URL != "" {
		b.WriteString("\n  " + *q.URL)
	}
	if len(q.Tags) > 0 {
		b.WriteString("\n  " + hashTags(q.Tags))
	}
	return b.String()
}

// FormatDigest renders the numbered digest body, already capped for sending.
func FormatDigest(quotes []quote.Quote, total int64) string {
	if len(quotes) == 0 {
		return "Your Weekly Quote Digest\n\nNo quotes saved yet. Start sending me quotes to build your collection!"
	}

	var b strings.Builder
	b.WriteString("Your Weekly Quote Digest\n\n")
	for i, q := range quotes {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, FormatQuote(q, false))
	}
	fmt.Fprintf(&b, "Total saved: %d quotes", total)
	return CapMessage(b.String())
}

// CapMessage truncates a message body to MaxMessageLength, marking the cut.
func CapMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageLength {
		return text
	}
	return string(runes[:MaxMessageLength-3]) + "..."
}

// Truncate shortens text to length with an ellipsis.
func Truncate(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length-3]) + "..."
}

func hashTags(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}
