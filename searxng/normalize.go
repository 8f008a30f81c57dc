package searxng

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/poiesic/searchdeck/core"
)

// missingMarker is injected by some upstream engines when a snippet omits
// query terms; everything after it is boilerplate and gets truncated.
const missingMarker = "...Missing:"

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// normalizer converts raw upstream snippets into plain text.
type normalizer struct {
	policyPool sync.Pool
}

func newNormalizer() *normalizer {
	return &normalizer{
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}
}

// Normalize cleans, deduplicates and bounds a raw upstream result list.
// When limit > 0 the raw list is truncated before cleaning, matching the
// upstream contract (limit bounds candidates, not survivors). Entries with
// empty title or content after cleaning are dropped, as are duplicate URLs
// (first occurrence wins). Upstream order is preserved.
func (n *normalizer) Normalize(raw []rawResult, limit int) []core.SearchResult {
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	results := make([]core.SearchResult, 0, len(raw))
	uniqueURLs := make(map[string]bool, len(raw))

	for _, r := range raw {
		if r.Content == "" || uniqueURLs[r.URL] {
			continue
		}

		title := n.cleanFragment(r.Title)
		content := stripEmoji(n.cleanFragment(r.Content))

		if idx := strings.Index(content, missingMarker); idx >= 0 {
			content = strings.TrimSpace(content[:idx]) + "..."
		}

		if title == "" || content == "" {
			continue
		}

		results = append(results, core.SearchResult{
			Title:   title,
			Content: content,
			URL:     r.URL,
		})
		uniqueURLs[r.URL] = true
	}

	return results
}

// cleanFragment strips markup from an HTML snippet and collapses the
// remaining whitespace into single spaces.
func (n *normalizer) cleanFragment(fragment string) string {
	policy := n.policyPool.Get().(*bluemonday.Policy)
	cleaned := policy.Sanitize(fragment)
	n.policyPool.Put(policy)

	return strings.TrimSpace(html.UnescapeString(
		repeatedSpaceRegex.ReplaceAllString(cleaned, " "),
	))
}

// stripEmoji removes emoji and emoji-joining code points, preserving the
// spacing around them. Collapsed double spaces left behind by removed
// emoji are folded back to one.
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmojiRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(b.String(), " "))
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, transport, symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // misc symbols and arrows (stars etc.)
		return true
	case r == 0xFE0F || r == 0xFE0E: // variation selectors
		return true
	case r == 0x200D: // zero-width joiner
		return true
	}
	return false
}
