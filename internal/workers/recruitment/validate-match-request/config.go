// internal/workers/recruitment/validate-match-request/config.go
package validatematchrequest

import (
	"time"

	"recruitment-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// FailOnInvalid throws MATCH_REQUEST_INVALID instead of completing the
	// job with isValid=false.
	FailOnInvalid bool
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		Timeout:       5 * time.Second,
		FailOnInvalid: true,
	}
	if app != nil {
		if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
			cfg.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return cfg
}
