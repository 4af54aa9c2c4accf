// internal/models/match.go
package models

import (
	"encoding/json"
	"time"
)

const (
	MatchStatusCreated = "created"
	MatchStatusUpdated = "updated"
)

// MatchRecord is a row of candidate_matches.
type MatchRecord struct {
	ID            string          `json:"id"`
	CandidateID   string          `json:"candidateId"`
	RequisitionID string          `json:"requisitionId"`
	MatchScore    int             `json:"matchScore"`
	EarnedPoints  int             `json:"earnedPoints"`
	TotalPoints   int             `json:"totalPoints"`
	Matches       json.RawMessage `json:"matches"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type AuditEntry struct {
	EventType    string                 `json:"eventType"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    time.Time              `json:"createdAt"`
}
