// internal/workers/recruitment/validate-match-request/models.go
package validatematchrequest

import (
	"encoding/json"

	"recruitment-workers/internal/common/validation"
)

type Input struct {
	Candidate   json.RawMessage `json:"candidate"`
	Requisition json.RawMessage `json:"requisition"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
