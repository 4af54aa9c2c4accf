// internal/workers/recruitment/rank-candidates/config.go
package rankcandidates

import (
	"time"

	"recruitment-workers/internal/common/config"
	"recruitment-workers/internal/matching"
)

type Config struct {
	MaxItems    int
	Concurrency int
	Strategy    string
	Timeout     time.Duration
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		MaxItems:    20,
		Concurrency: 8,
		Strategy:    matching.StrategyContains,
		Timeout:     30 * time.Second,
	}
	if app == nil {
		return cfg
	}
	if app.Matching.RankLimit > 0 {
		cfg.MaxItems = app.Matching.RankLimit
	}
	if app.Matching.RankConcurrency > 0 {
		cfg.Concurrency = app.Matching.RankConcurrency
	}
	if app.Matching.Strategy != "" {
		cfg.Strategy = app.Matching.Strategy
	}
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
