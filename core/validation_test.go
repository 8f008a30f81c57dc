package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearchResult(t *testing.T) {
	t.Run("valid result", func(t *testing.T) {
		result := &SearchResult{Title: "t", Content: "c", URL: "https://example.com"}
		require.NoError(t, ValidateSearchResult(result))
	})

	t.Run("nil result", func(t *testing.T) {
		err := ValidateSearchResult(nil)
		assert.ErrorIs(t, err, ErrInvalidSearchResult)
	})

	t.Run("empty title", func(t *testing.T) {
		result := &SearchResult{Content: "c", URL: "u"}
		err := ValidateSearchResult(result)
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("empty content", func(t *testing.T) {
		result := &SearchResult{Title: "t", URL: "u"}
		err := ValidateSearchResult(result)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("empty url", func(t *testing.T) {
		result := &SearchResult{Title: "t", Content: "c"}
		err := ValidateSearchResult(result)
		assert.ErrorIs(t, err, ErrEmptyURL)
	})
}

func TestValidateSearchResultList(t *testing.T) {
	t.Run("unique urls pass", func(t *testing.T) {
		results := []SearchResult{
			{Title: "a", Content: "a", URL: "https://a.example"},
			{Title: "b", Content: "b", URL: "https://b.example"},
		}
		require.NoError(t, ValidateSearchResultList(results))
	})

	t.Run("duplicate urls fail", func(t *testing.T) {
		results := []SearchResult{
			{Title: "a", Content: "a", URL: "https://a.example"},
			{Title: "b", Content: "b", URL: "https://a.example"},
		}
		err := ValidateSearchResultList(results)
		assert.ErrorIs(t, err, ErrDuplicateURL)
	})

	t.Run("empty list passes", func(t *testing.T) {
		require.NoError(t, ValidateSearchResultList(nil))
	})
}
