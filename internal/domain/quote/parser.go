package quote

import (
	"regexp"
	"strings"
)

// Parsing limits. MaxQuoteLength leaves room under Telegram's 4096-character
// message cap for formatting added by the reply path.
const (
	MaxQuoteLength = 4000
	MaxURLLength   = 2048
	MaxTagLength   = 50
	MaxTags        = 20
)

// Parsed is the result of breaking a raw message into structured fields.
type Parsed struct {
	Quote string
	URL   *string
	Tags  []string
}

var (
	urlPattern = regexp.MustCompile(`https?://\S+`)
	tagPattern = regexp.MustCompile(`#(\w+)`)

	// strictURLPattern is the storage-grade check: scheme, a host that is a
	// dotted domain name, localhost or a dotted-quad IP, an optional port and
	// an optional path/query/fragment.
	strictURLPattern = regexp.MustCompile(
		`^https?://(localhost|(\d{1,3}\.){3}\d{1,3}|([A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,})(:\d+)?([/?#]\S*)?$`)

	tagToken   = regexp.MustCompile(`^\w+$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ParseMessage extracts the quote text, an optional URL and tags from a raw
// message. It is total: any input produces a usable Parsed, malformed pieces
// are dropped rather than failing the whole message.
func ParseMessage(text string) Parsed {
	if text == "" {
		return Parsed{Quote: "", URL: nil, Tags: []string{}}
	}

	// Bound the work done on pathological input. The allowance above
	// MaxQuoteLength covers the URL and tag tokens that get stripped below.
	text = truncate(text, MaxQuoteLength*2)

	var url *string
	rawURL := urlPattern.FindString(text)
	if rawURL != "" {
		if valid := ValidateURL(rawURL); valid != "" {
			url = &valid
		}
	}

	rawTags := tagPattern.FindAllStringSubmatch(text, -1)
	tags := []string{}
	seen := map[string]bool{}
	for i, match := range rawTags {
		if i >= MaxTags {
			break
		}
		tag := validateTag(match[1])
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	// The quote is whatever remains once the URL token and every raw #tag
	// occurrence are removed, valid or not.
	body := text
	if rawURL != "" {
		body = strings.ReplaceAll(body, rawURL, "")
	}
	for _, match := range rawTags {
		body = strings.ReplaceAll(body, "#"+match[1], "")
	}

	body = strings.TrimSpace(body)
	body = stripSurroundingQuotes(body)
	body = whitespace.ReplaceAllString(body, " ")
	body = truncate(body, MaxQuoteLength)

	return Parsed{Quote: body, URL: url, Tags: tags}
}

// ValidateURL returns the URL if it passes the storage-grade checks, or the
// empty string when it should be treated as absent.
func ValidateURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || len(url) > MaxURLLength {
		return ""
	}
	if !strictURLPattern.MatchString(url) {
		return ""
	}
	return url
}

func validateTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || len(tag) > MaxTagLength {
		return ""
	}
	if !tagToken.MatchString(tag) {
		return ""
	}
	return tag
}

// stripSurroundingQuotes removes one layer of matching double or single
// quotes around the whole text.
func stripSurroundingQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
