package app

import (
	"errors"
	"fmt"

	"github.com/vk/rebuild/stamp"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string            // hcl file or directory
	Target       string            // stage to build; empty means the pipeline's own target
	Vars         map[string]string // variable overrides
	Passes       int               // number of build passes over the pipeline

	Stamp     string // file stamping policy: exists, modified, or hash
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.Passes < 1 {
		return nil, fmt.Errorf("Passes must be at least 1, got %d", cfg.Passes)
	}
	if _, err := stamp.ParseFileStamper(cfg.Stamp); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FileStamper returns the configured file stamping policy. Config validation
// has already parsed it, so a failure here is a programmer error.
func (c *Config) FileStamper() stamp.FileStamper {
	s, err := stamp.ParseFileStamper(c.Stamp)
	if err != nil {
		panic(err)
	}
	return s
}
