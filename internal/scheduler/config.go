package scheduler

import (
	"time"
)

// Config controls scheduler cadence.
type Config struct {
	// RunInterval is how often the scheduler wakes up to evaluate jobs.
	RunInterval time.Duration
	// JobTimeout bounds a single job execution.
	JobTimeout time.Duration
	// EnabledJobs restricts which jobs run. Empty means all jobs.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

func ProvideConfig() Config {
	return DefaultConfig()
}
