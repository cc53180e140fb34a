// Package batch runs lists of goals on a cron schedule from YAML
// batch files.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GoalSpec is one goal entry in a batch file
type GoalSpec struct {
	Goal        string   `yaml:"goal"`
	Context     string   `yaml:"context,omitempty"`
	Constraints []string `yaml:"constraints,omitempty"`
	PlanOnly    bool     `yaml:"plan_only,omitempty"`
}

// BatchConfig represents a scheduled batch of goals
type BatchConfig struct {
	Name     string     `yaml:"name"`
	Cron     string     `yaml:"cron"`
	MaxGoals int        `yaml:"max_goals"`
	Goals    []GoalSpec `yaml:"goals"`
}

// ScheduleConfig holds all batch configurations
type ScheduleConfig struct {
	Batches []BatchConfig `yaml:"batches"`
}

// Validate checks if the config is valid
func (c *BatchConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("batch name is required")
	}
	if c.Cron == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := ParseCron(c.Cron); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	if len(c.Goals) == 0 {
		return fmt.Errorf("batch %q has no goals", c.Name)
	}
	for i, g := range c.Goals {
		if g.Goal == "" {
			return fmt.Errorf("batch %q: goal %d is empty", c.Name, i)
		}
	}
	if c.MaxGoals <= 0 {
		c.MaxGoals = 10 // Default
	}
	return nil
}

// LoadScheduleConfig loads batch configuration from a YAML file
func LoadScheduleConfig(path string) (*ScheduleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ScheduleConfig{}, nil
		}
		return nil, err
	}

	var cfg ScheduleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	for i := range cfg.Batches {
		if err := cfg.Batches[i].Validate(); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
	}

	return &cfg, nil
}
