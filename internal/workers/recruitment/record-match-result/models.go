// internal/workers/recruitment/record-match-result/models.go
package recordmatchresult

import "recruitment-workers/internal/matching"

type Input struct {
	CandidateID   string                `json:"candidateId"`
	RequisitionID string                `json:"requisitionId"`
	MatchScore    int                   `json:"matchScore"`
	Matches       []matching.MatchEntry `json:"matches"`
	EarnedPoints  int                   `json:"earnedPoints"`
	TotalPoints   int                   `json:"totalPoints"`
}

type Output struct {
	MatchID    string `json:"matchId"`
	Status     string `json:"status"`     // "created" or "updated"
	RecordedAt string `json:"recordedAt"` // ISO 8601
}
