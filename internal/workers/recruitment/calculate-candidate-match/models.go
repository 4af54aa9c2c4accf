// internal/workers/recruitment/calculate-candidate-match/models.go
package calculatecandidatematch

import "recruitment-workers/internal/matching"

type Input struct {
	CandidateID   string                     `json:"candidateId"`
	RequisitionID string                     `json:"requisitionId"`
	Candidate     *matching.CandidateProfile `json:"candidate,omitempty"`
	Requisition   *matching.Requisition      `json:"requisition,omitempty"`
	MatchStrategy string                     `json:"matchStrategy,omitempty"`
}

type Output struct {
	MatchScore    int                   `json:"matchScore"`
	Matches       []matching.MatchEntry `json:"matches"`
	EarnedPoints  int                   `json:"earnedPoints"`
	TotalPoints   int                   `json:"totalPoints"`
	MatchedCount  int                   `json:"matchedCount"`
	PartialCount  int                   `json:"partialCount"`
	MissingCount  int                   `json:"missingCount"`
	MatchStrategy string                `json:"matchStrategy"`
}

func newOutput(result matching.MatchResult, strategy string) *Output {
	counts := result.Counts()
	matches := result.Matches
	if matches == nil {
		matches = []matching.MatchEntry{}
	}
	return &Output{
		MatchScore:    result.Score,
		Matches:       matches,
		EarnedPoints:  result.EarnedPoints,
		TotalPoints:   result.TotalPoints,
		MatchedCount:  counts.Matched,
		PartialCount:  counts.Partial,
		MissingCount:  counts.Missing,
		MatchStrategy: strategy,
	}
}
