// internal/workers/recruitment/calculate-candidate-match/config.go
package calculatecandidatematch

import (
	"strings"
	"time"

	"recruitment-workers/internal/common/config"
	"recruitment-workers/internal/matching"
)

type Config struct {
	Strategy string
	Timeout  time.Duration
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		Strategy: matching.StrategyContains,
		Timeout:  10 * time.Second,
	}
	if app == nil {
		return cfg
	}
	if app.Matching.Strategy != "" {
		cfg.Strategy = strings.ToLower(strings.TrimSpace(app.Matching.Strategy))
	}
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
