package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Suite describes one benchmark run: the environments to attack, the
// endpoints inside each environment, and optional load overrides.
type Suite struct {
	Name         string             `yaml:"name"`
	Environments []SuiteEnvironment `yaml:"environments"`
	Load         SuiteLoad          `yaml:"load"`
}

// SuiteEnvironment names one deployment and its endpoints.
type SuiteEnvironment struct {
	Name      string          `yaml:"name"`
	BaseURL   string          `yaml:"baseURL"`
	Endpoints []SuiteEndpoint `yaml:"endpoints"`
}

// SuiteEndpoint is one HTTP target inside an environment.
type SuiteEndpoint struct {
	Method string            `yaml:"method"`
	Path   string            `yaml:"path"`
	Body   string            `yaml:"body"`
	Header map[string]string `yaml:"header"`
}

// SuiteLoad overrides the harness defaults for this suite. Zero values
// fall back to the benchmark section of the main config.
type SuiteLoad struct {
	Rate     int           `yaml:"rate"`
	Duration time.Duration `yaml:"duration"`
	Workers  int           `yaml:"workers"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoadSuite reads and validates a benchmark suite file.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if err := suite.validate(); err != nil {
		return nil, err
	}
	return &suite, nil
}

func (s *Suite) validate() error {
	if len(s.Environments) == 0 {
		return fmt.Errorf("suite %s declares no environments", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Environments))
	for _, env := range s.Environments {
		if env.Name == "" {
			return fmt.Errorf("suite %s has an unnamed environment", s.Name)
		}
		if _, dup := seen[env.Name]; dup {
			return fmt.Errorf("suite %s declares environment %s twice", s.Name, env.Name)
		}
		seen[env.Name] = struct{}{}
		if env.BaseURL == "" {
			return fmt.Errorf("environment %s has no baseURL", env.Name)
		}
		if len(env.Endpoints) == 0 {
			return fmt.Errorf("environment %s has no endpoints", env.Name)
		}
		for _, ep := range env.Endpoints {
			if ep.Path == "" {
				return fmt.Errorf("environment %s has an endpoint without a path", env.Name)
			}
		}
	}
	return nil
}
