package search

const (
	TypeProcess  = "process"
	TypeDocument = "document"
	TypeEntity   = "entity"
)

// AllTypes is the search order when no type filter is given.
var AllTypes = []string{TypeProcess, TypeDocument, TypeEntity}

// Candidate is a row that matched the term in SQL and still needs scoring.
type Candidate struct {
	ID          int64    `db:"id"`
	Title       string   `db:"title"`
	Description string   `db:"description"`
	Category    string   `db:"category"`
	Tags        []string `db:"tags"`
}

type Result struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	URL         string   `json:"url"`
	Relevance   int      `json:"relevance"`
}

type Query struct {
	Term     string
	Types    []string
	Category string
	Limit    int
}
