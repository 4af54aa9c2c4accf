// internal/workers/recruitment/rank-candidates/models.go
package rankcandidates

import "recruitment-workers/internal/matching"

type Input struct {
	RequisitionID string                      `json:"requisitionId,omitempty"`
	Requisition   *matching.Requisition       `json:"requisition,omitempty"`
	CandidateIDs  []string                    `json:"candidateIds"`
	SearchResults []SearchResult              `json:"candidates,omitempty"`
	Profiles      []matching.CandidateProfile `json:"profiles,omitempty"`
	Limit         int                         `json:"limit,omitempty"`
	MinScore      int                         `json:"minScore,omitempty"`
}

// SearchResult is one hit from search-candidates.
type SearchResult struct {
	CandidateID string  `json:"candidateId"`
	SearchScore float64 `json:"searchScore"`
}

type RankedCandidate struct {
	CandidateID  string  `json:"candidateId"`
	Rank         int     `json:"rank"`
	MatchScore   int     `json:"matchScore"`
	MatchedCount int     `json:"matchedCount"`
	PartialCount int     `json:"partialCount"`
	MissingCount int     `json:"missingCount"`
	SearchScore  float64 `json:"searchScore,omitempty"`
}

type Output struct {
	RankedCandidates []RankedCandidate `json:"rankedCandidates"`
	EvaluatedCount   int               `json:"evaluatedCount"`
	SkippedCount     int               `json:"skippedCount"`
}
