// internal/workers/recruitment/record-match-result/config.go
package recordmatchresult

import (
	"time"

	"recruitment-workers/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	WriteAudit bool
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		Timeout:    10 * time.Second,
		WriteAudit: true,
	}
	if app == nil {
		return cfg
	}
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
