// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"
)

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

var knownStatuses = map[string]bool{
	StatusPlanned:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusVerified:   true,
}

// ActivityRegistry is the on-disk catalogue of BPMN service tasks the
// worker-manager can serve.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one task type. InputSchema and OutputSchema map a
// process variable name to its JSON type ("string", "integer", "array", ...).
type Activity struct {
	ID                   string            `json:"id"`
	DisplayName          string            `json:"displayName"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	Version              string            `json:"version"`
	TaskType             string            `json:"taskType"`
	ImplementationStatus string            `json:"implementationStatus"`
	InputSchema          map[string]string `json:"inputSchema,omitempty"`
	OutputSchema         map[string]string `json:"outputSchema,omitempty"`
	ErrorCodes           []string          `json:"errorCodes"`
	Timeout              string            `json:"timeout"`
	Retries              int               `json:"retries"`
	Workflows            []string          `json:"workflows,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
}

// TimeoutDuration parses Timeout ("10s", "1m30s"). An empty timeout yields
// zero and no error.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	return d, nil
}

func (a *Activity) validate() error {
	if a.TaskType == "" {
		return fmt.Errorf("activity %s missing required field: taskType", a.ID)
	}
	if a.Version == "" {
		return fmt.Errorf("activity %s missing required field: version", a.ID)
	}
	if a.ImplementationStatus != "" && !knownStatuses[a.ImplementationStatus] {
		return fmt.Errorf("activity %s has unknown implementationStatus %q", a.ID, a.ImplementationStatus)
	}
	if a.Retries < 0 {
		return fmt.Errorf("activity %s has negative retries", a.ID)
	}
	_, err := a.TimeoutDuration()
	return err
}
