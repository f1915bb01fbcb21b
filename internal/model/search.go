package model

// SearchIntent tags a web-search result with the kind of query that
// produced it.
type SearchIntent string

const (
	IntentNews     SearchIntent = "news"
	IntentLegal    SearchIntent = "legal"
	IntentPresence SearchIntent = "presence"
)

// SearchResult is one ranked web-search hit.
type SearchResult struct {
	URL       string       `json:"url"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Relevance float64      `json:"relevance"`
	Intent    SearchIntent `json:"intent"`
}
