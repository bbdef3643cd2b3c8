package vectorize

// upsertLine is one NDJSON record of an upsert body.
type upsertLine struct {
	ID     string    `json:"id"`
	Values []float32 `json:"values"`
}

// upsertResult is the result of an upsert. The write is applied
// asynchronously under MutationID.
type upsertResult struct {
	MutationID string `json:"mutationId"`
}

// queryRequest is the request body for a v2 query.
type queryRequest struct {
	Vector         []float32 `json:"vector"`
	TopK           int       `json:"topK"`
	ReturnValues   bool      `json:"returnValues"`
	ReturnMetadata string    `json:"returnMetadata"`
}

// queryResult is the result of a v2 query.
type queryResult struct {
	Count   int          `json:"count"`
	Matches []queryMatch `json:"matches"`
}

type queryMatch struct {
	ID     string    `json:"id"`
	Score  float32   `json:"score"`
	Values []float32 `json:"values,omitempty"`
}
