// Package sommelier holds the request and response types shared by the
// recommendation lambda, the local server and the cli.
package sommelier

// Error codes returned in the response body.
const (
	CodeMissingQuery = "MISSING_QUERY"
	CodeUnknownError = "UNKNOWN_ERROR"
)

// DefaultResultCount is the number of texts returned per ranking.
const DefaultResultCount = 3

type QueryRequest struct {
	Query *string `json:"query"`
}

type Recommendations struct {
	Search    []string `json:"search"`
	Recommend []string `json:"recommend"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
