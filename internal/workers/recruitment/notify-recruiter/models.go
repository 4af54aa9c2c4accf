// internal/workers/recruitment/notify-recruiter/models.go
package notifyrecruiter

import "recruitment-workers/internal/models"

type Input struct {
	RequisitionID string `json:"requisitionId"`
	CandidateID   string `json:"candidateId"`
	CandidateName string `json:"candidateName,omitempty"`
	MatchScore    int    `json:"matchScore"`
	MatchedCount  int    `json:"matchedCount"`
	MissingCount  int    `json:"missingCount"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled", "skipped"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const TypeCandidateMatch = "candidate_match"

var defaultTemplate = models.NotificationTemplate{
	ID:      "candidate-match-v1",
	Type:    TypeCandidateMatch,
	Subject: "Nuevo candidato para {{requisitionTitle}} ({{matchScore}}%)",
	Body: "Hola {{recruiterName}}, el candidato {{candidateName}} obtuvo {{matchScore}}% de compatibilidad " +
		"con la vacante {{requisitionTitle}}. Requisitos cumplidos: {{matchedCount}}, faltantes: {{missingCount}}.",
	SMSBody: "{{candidateName}}: {{matchScore}}% para {{requisitionTitle}}",
}
