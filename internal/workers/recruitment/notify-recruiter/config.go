// internal/workers/recruitment/notify-recruiter/config.go
package notifyrecruiter

import (
	"time"

	"recruitment-workers/internal/common/config"
)

type Config struct {
	EmailEnabled      bool
	SMSEnabled        bool
	FromEmail         string
	MinScore          int
	SMSScoreThreshold int
	Timeout           time.Duration
}

func LoadConfig(app *config.Config) *Config {
	cfg := &Config{
		SMSScoreThreshold: 80,
		Timeout:           30 * time.Second,
	}
	if app == nil {
		return cfg
	}
	n := app.Notifications
	cfg.EmailEnabled = n.Email.Enabled
	cfg.FromEmail = n.Email.FromEmail
	cfg.SMSEnabled = n.SMS.Enabled
	cfg.MinScore = n.MinScore
	if n.SMSScoreThreshold > 0 {
		cfg.SMSScoreThreshold = n.SMSScoreThreshold
	}
	if wc := config.GetWorkerConfig(app, TaskType); wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
