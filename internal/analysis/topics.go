package analysis

import (
	"sort"
	"strings"
	"unicode"

	"github.com/trendscout-agent/internal/models"
)

const (
	topHashtags = 20
	topKeywords = 30
	topMentions = 20
	minTokenLen = 3
)

// stopwords are skipped during keyword extraction. Hashtags are never
// filtered.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "his": {}, "has": {}, "had": {}, "how": {},
	"who": {}, "get": {}, "got": {}, "its": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "your": {}, "have": {}, "more": {}, "will": {},
	"what": {}, "when": {}, "than": {}, "then": {}, "them": {}, "they": {},
	"were": {}, "been": {}, "just": {}, "like": {}, "into": {}, "over": {},
	"only": {}, "also": {}, "some": {}, "here": {}, "there": {}, "their": {},
	"about": {}, "would": {}, "could": {}, "which": {}, "these": {},
	"because": {}, "really": {}, "going": {}, "dont": {}, "youre": {},
	"http": {}, "https": {},
}

// counter accumulates counts while remembering first-seen order, so
// ties rank deterministically by first occurrence.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(token string) {
	if _, seen := c.counts[token]; !seen {
		c.order = append(c.order, token)
	}
	c.counts[token]++
}

// top returns the k most frequent tokens, descending by count, ties
// broken by first-seen order
func (c *counter) top(k int) []models.TopicCount {
	out := make([]models.TopicCount, 0, len(c.order))
	for _, token := range c.order {
		out = append(out, models.TopicCount{Topic: token, Count: c.counts[token]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// ExtractTopics builds the hashtag, keyword and mention frequency
// tables across the full record collection (outliers are not
// privileged). Hashtags come from the explicit hashtag field plus
// #tokens in captions, lowercased with the # stripped. Keywords come
// from caption text with URLs, stopwords and short tokens filtered
// out. Mentions are @tokens, lowercased with the @ stripped.
func ExtractTopics(records []*models.Record) models.TopicTables {
	hashtags := newCounter()
	keywords := newCounter()
	mentions := newCounter()

	for _, rec := range records {
		for _, tag := range rec.Hashtags {
			if t := normalizeHashtag(tag); t != "" {
				hashtags.add(t)
			}
		}

		for _, raw := range strings.Fields(rec.Caption) {
			if isURL(raw) {
				continue
			}
			if strings.HasPrefix(raw, "#") {
				if t := normalizeHashtag(raw); t != "" {
					hashtags.add(t)
				}
				continue
			}
			if strings.HasPrefix(raw, "@") {
				if m := normalizeKeyword(raw); m != "" {
					mentions.add(m)
				}
				continue
			}
			token := normalizeKeyword(raw)
			if len(token) < minTokenLen {
				continue
			}
			if _, skip := stopwords[token]; skip {
				continue
			}
			keywords.add(token)
		}
	}

	return models.TopicTables{
		Hashtags: hashtags.top(topHashtags),
		Keywords: keywords.top(topKeywords),
		Mentions: mentions.top(topMentions),
	}
}

// isURL flags caption tokens that are links, which must never count
// as keywords
func isURL(token string) bool {
	lower := strings.ToLower(token)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "http") ||
		strings.HasPrefix(lower, "www.")
}

func normalizeHashtag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// normalizeKeyword lowercases a token and strips anything that is not
// a letter or digit
func normalizeKeyword(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
