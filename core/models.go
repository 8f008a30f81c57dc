package core

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// SearchResult is a single normalized result returned by the upstream
// metasearch engine. After normalization Title and Content are plain text
// (no markup, no emoji) and URL is unique within a result list.
type SearchResult struct {
	Title   string
	Content string
	URL     string
}

// Document returns the lower-cased text used to embed the result for
// similarity ranking: title, url and content joined by newlines.
func (r *SearchResult) Document() string {
	return strings.ToLower(r.Title + "\n" + r.URL + "\n" + r.Content)
}

// MarshalJSON encodes the result as the positional triple
// ["title", "content", "url"] used by the HTTP API.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{r.Title, r.Content, r.URL})
}

// UnmarshalJSON decodes the positional triple form.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var triple [3]string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSearchResult, err)
	}
	r.Title = triple[0]
	r.Content = triple[1]
	r.URL = triple[2]
	return nil
}

// QueryKey generates a deterministic 64-bit key from a query string using
// BLAKE2b hashing. Identical queries always produce identical keys, so the
// key is safe to use as a cache address regardless of the query's bytes.
func QueryKey(query string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(query))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
