// internal/workers/recruitment/search-candidates/config.go
package searchcandidates

import (
	"time"

	"recruitment-workers/internal/common/config"
)

type Config struct {
	DefaultIndex string
	Timeout      time.Duration
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		DefaultIndex: "candidates",
		Timeout:      30 * time.Second,
	}
	if app == nil {
		return cfg
	}
	if app.Matching.CandidateIndex != "" {
		cfg.DefaultIndex = app.Matching.CandidateIndex
	}
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
