// internal/workers/recruitment/search-candidates/models.go
package searchcandidates

import (
	"recruitment-workers/internal/matching"
	"recruitment-workers/internal/workers/recruitment/search-candidates/queries"
)

type Input struct {
	Requisition *matching.Requisition `json:"requisition"`
	IndexName   string                `json:"indexName,omitempty"`
	Pagination  queries.Pagination    `json:"pagination"`
}

type CandidateHit struct {
	CandidateID string  `json:"candidateId"`
	SearchScore float64 `json:"searchScore"`
}

type Output struct {
	Candidates []CandidateHit `json:"candidates"`
	TotalHits  int64          `json:"totalHits"`
	MaxScore   float64        `json:"maxScore"`
	Took       int64          `json:"took"` // milliseconds
}
