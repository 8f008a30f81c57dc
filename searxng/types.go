package searxng

// searchResponse represents the JSON response from SearXNG.
type searchResponse struct {
	Query           string      `json:"query"`
	NumberOfResults int         `json:"number_of_results"`
	Results         []rawResult `json:"results"`
}

// rawResult represents a single un-normalized search result.
type rawResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"` // Snippet
	Engine  string  `json:"engine"`
	Score   float64 `json:"score"`
}
