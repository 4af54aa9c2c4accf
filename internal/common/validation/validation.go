// internal/common/validation/validation.go
package validation

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Document string

const (
	DocumentCandidate   Document = "candidate"
	DocumentRequisition Document = "requisition"
)

const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeInvalidValue         = "INVALID_VALUE"
)

const rootField = "(root)"

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var (
	schemasOnce sync.Once
	schemas     map[Document]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[Document]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = make(map[Document]*gojsonschema.Schema)
		for _, doc := range []Document{DocumentCandidate, DocumentRequisition} {
			raw, err := schemaFS.ReadFile("schemas/" + string(doc) + ".json")
			if err != nil {
				schemasErr = fmt.Errorf("read %s schema: %w", doc, err)
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", doc, err)
				return
			}
			schemas[doc] = schema
		}
	})
	return schemas, schemasErr
}

// Validate checks a decoded document (map, struct or slice) against the
// embedded schema. Field paths are prefixed with the document name.
func Validate(doc Document, payload interface{}) (*ValidationResult, error) {
	return validate(doc, gojsonschema.NewGoLoader(payload))
}

// ValidateJSON is Validate for raw JSON bytes.
func ValidateJSON(doc Document, raw []byte) (*ValidationResult, error) {
	return validate(doc, gojsonschema.NewBytesLoader(raw))
}

func ValidateCandidate(payload interface{}) (*ValidationResult, error) {
	return Validate(DocumentCandidate, payload)
}

func ValidateRequisition(payload interface{}) (*ValidationResult, error) {
	return Validate(DocumentRequisition, payload)
}

func validate(doc Document, loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	all, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[doc]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q", doc)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", doc, err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, toValidationError(doc, re))
	}
	return out, nil
}

func toValidationError(doc Document, re gojsonschema.ResultError) ValidationError {
	field := re.Field()
	code := CodeInvalidValue

	switch re.Type() {
	case "required":
		code = CodeRequiredFieldMissing
		if property, ok := re.Details()["property"].(string); ok {
			if field == rootField {
				field = property
			} else {
				field = field + "." + property
			}
		}
	case "invalid_type":
		code = CodeInvalidType
	}

	if field == rootField || field == "" {
		field = string(doc)
	} else {
		field = string(doc) + "." + field
	}

	return ValidationError{Field: field, Message: re.Description(), Code: code}
}

// Missing builds the result for an absent document.
func Missing(doc Document) *ValidationResult {
	return &ValidationResult{
		Valid: false,
		Errors: []ValidationError{{
			Field:   string(doc),
			Message: "required field missing",
			Code:    CodeRequiredFieldMissing,
		}},
	}
}

// Merge combines results, keeping error order.
func Merge(results ...*ValidationResult) *ValidationResult {
	out := &ValidationResult{Valid: true}
	for _, r := range results {
		if r == nil {
			continue
		}
		if !r.Valid {
			out.Valid = false
		}
		out.Errors = append(out.Errors, r.Errors...)
	}
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	return len(vr.GetErrorsForField(field)) > 0
}

// GetErrorsForField returns errors for field and anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	e164Pattern  = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone accepts E.164 numbers only, which is what SNS requires.
func ValidatePhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}
