// internal/workers/recruitment/search-candidates/queries/response.go
package queries

import (
	"encoding/json"
	"fmt"
	"io"
)

type Hit struct {
	ID    string   `json:"_id"`
	Score *float64 `json:"_score"`
}

type SearchResponse struct {
	Took     int64 `json:"took"`
	TimedOut bool  `json:"timed_out"`
	Hits     struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []Hit    `json:"hits"`
	} `json:"hits"`
}

type ErrorResponse struct {
	Status int `json:"status"`
	Error  struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func DecodeSearchResponse(r io.Reader) (*SearchResponse, error) {
	var resp SearchResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &resp, nil
}

// DecodeError reads an error body. Unparseable bodies yield a zero value.
func DecodeError(r io.Reader) ErrorResponse {
	var resp ErrorResponse
	_ = json.NewDecoder(r).Decode(&resp)
	return resp
}
