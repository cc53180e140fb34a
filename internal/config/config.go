package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Safety     SafetyConfig     `toml:"safety"`
	Confidence ConfidenceConfig `toml:"confidence"`
	Executor   ExecutorConfig   `toml:"executor"`
	Web        WebConfig        `toml:"web"`
	Watcher    WatcherConfig    `toml:"watcher"`
	Logging    LoggingConfig    `toml:"logging"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath  string `toml:"database_path"`
	MinGoalLength int    `toml:"min_goal_length"`
}

// SafetyConfig holds safety gate settings
type SafetyConfig struct {
	StrictMode        bool     `toml:"strict_mode"`
	AllowedCategories []string `toml:"allowed_categories"`
}

// ConfidenceConfig holds estimator weights and thresholds
type ConfidenceConfig struct {
	ClarityWeight    float64 `toml:"clarity_weight"`
	HistoricalWeight float64 `toml:"historical_weight"`
	ComplexityWeight float64 `toml:"complexity_weight"`
	MinConfidence    float64 `toml:"min_confidence"`
	CautionThreshold float64 `toml:"caution_threshold"`
}

// ExecutorConfig holds task execution settings
type ExecutorConfig struct {
	Parallel         bool `toml:"parallel"`
	MaxParallelTasks int  `toml:"max_parallel_tasks"`
	VerboseLogging   bool `toml:"verbose_logging"`
	TimeoutSeconds   int  `toml:"timeout_seconds"`
}

// WebConfig holds web API settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// WatcherConfig holds goal drop-directory settings
type WatcherConfig struct {
	GoalDir string `toml:"goal_dir"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Format string `toml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath:  filepath.Join(home, ".goalflow", "goalflow.db"),
			MinGoalLength: 10,
		},
		Safety: SafetyConfig{
			StrictMode: false,
		},
		Confidence: ConfidenceConfig{
			ClarityWeight:    0.35,
			HistoricalWeight: 0.35,
			ComplexityWeight: 0.30,
			MinConfidence:    0.4,
			CautionThreshold: 0.6,
		},
		Executor: ExecutorConfig{
			Parallel:         false,
			MaxParallelTasks: 3,
			TimeoutSeconds:   300,
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Watcher: WatcherConfig{
			GoalDir: filepath.Join(home, ".goalflow", "goals"),
		},
		Logging: LoggingConfig{
			Format: "console",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.Watcher.GoalDir = ExpandPath(cfg.Watcher.GoalDir)

	return cfg, nil
}

// CategoryAllowed returns true if the safety category is explicitly
// allowed by configuration
func (c *SafetyConfig) CategoryAllowed(category string) bool {
	for _, allowed := range c.AllowedCategories {
		if allowed == category {
			return true
		}
	}
	return false
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "goalflow", "config.toml")
}
