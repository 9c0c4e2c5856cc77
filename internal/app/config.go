package app

import "errors"

// Config holds the process-level settings an App needs to run. Everything
// about the data pipeline lives in the file at ConfigPath.
type Config struct {
	ConfigPath string // hcl file or directory
	Listen     string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Listen == "" {
		return nil, errors.New("Listen is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("HealthcheckPort cannot be negative")
	}
	return &cfg, nil
}
