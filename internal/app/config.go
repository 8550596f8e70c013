package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string // json files
	ModulesPath  string // hcl manifests

	EventsURL       string
	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Concurrency     int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
