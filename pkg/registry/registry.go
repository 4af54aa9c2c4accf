// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrDuplicateID      = errors.New("duplicate activity id")
)

func Load(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrNew returns an empty registry when path does not exist.
func LoadOrNew(path string) (*ActivityRegistry, error) {
	reg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().Format(time.RFC3339),
			Activities:  []Activity{},
		}, nil
	}
	return reg, err
}

func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks ids are unique and every activity has a task type, a
// version, a known status and a parseable timeout.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool, len(r.Activities))
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if ids[activity.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, activity.ID)
		}
		ids[activity.ID] = true

		if err := activity.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Find looks an activity up by task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Missing returns the task types that have no registry entry.
func (r *ActivityRegistry) Missing(taskTypes []string) []string {
	var missing []string
	for _, tt := range taskTypes {
		if _, ok := r.Find(tt); !ok {
			missing = append(missing, tt)
		}
	}
	return missing
}

func (r *ActivityRegistry) Add(activity Activity) error {
	if activity.ID == "" {
		return fmt.Errorf("activity missing required field: id")
	}
	if err := activity.validate(); err != nil {
		return err
	}
	for _, existing := range r.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, activity.ID)
		}
	}
	r.Activities = append(r.Activities, activity)
	return nil
}

// Update sets one field of the activity with the given id. The change is
// discarded if it leaves the activity invalid.
func (r *ActivityRegistry) Update(id, field, value string) error {
	for i := range r.Activities {
		if r.Activities[i].ID != id {
			continue
		}
		updated := r.Activities[i]
		a := &updated
		switch field {
		case "status":
			a.ImplementationStatus = value
		case "version":
			a.Version = value
		case "displayName":
			a.DisplayName = value
		case "description":
			a.Description = value
		case "category":
			a.Category = value
		case "taskType":
			a.TaskType = value
		case "timeout":
			a.Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			a.Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		if err := a.validate(); err != nil {
			return err
		}
		r.Activities[i] = updated
		return nil
	}
	return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
}
