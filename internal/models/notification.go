// internal/models/notification.go
package models

const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
	NotificationSkipped  = "skipped"
)

// Recruiter is the notification target for a requisition.
type Recruiter struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	RequisitionTitle string `json:"requisitionTitle"`
}

type Notification struct {
	ID            string                 `json:"id"`
	RecipientID   string                 `json:"recipientId"`
	RequisitionID string                 `json:"requisitionId"`
	CandidateID   string                 `json:"candidateId"`
	Type          string                 `json:"type"`    // "candidate_match"
	Channel       string                 `json:"channel"` // "email", "sms"
	Status        string                 `json:"status"`
	Payload       map[string]interface{} `json:"payload"`
	SentAt        string                 `json:"sentAt"`
}

type NotificationTemplate struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
	SMSBody  string `json:"smsBody,omitempty"`
}
