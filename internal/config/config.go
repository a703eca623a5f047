package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/svnscope/svnscope-go/internal/errors"
)

// Config holds all configuration settings
type Config struct {
	// Repository under analysis
	Repository RepositoryConfig `yaml:"repository"`

	// Diff-result cache
	Cache CacheConfig `yaml:"cache"`

	// Line-count reconciliation
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Commit grouping
	Commits CommitsConfig `yaml:"commits"`

	// Report-data export
	Storage StorageConfig `yaml:"storage"`
}

type RepositoryConfig struct {
	WorkingCopy string `yaml:"working_copy"`
	Module      string `yaml:"module"`
}

type CacheConfig struct {
	Path string `yaml:"path"`
}

type ReconcileConfig struct {
	Workers   int `yaml:"workers"`
	RateLimit int `yaml:"rate_limit"` // subprocess launches per second, 0 = unthrottled
}

type CommitsConfig struct {
	Window time.Duration `yaml:"window"`
}

type StorageConfig struct {
	Type      string `yaml:"type"` // "sqlite"
	LocalPath string `yaml:"local_path"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Repository: RepositoryConfig{
			WorkingCopy: ".",
		},
		Cache: CacheConfig{
			Path: filepath.Join(homeDir, ".svnscope", "diffcache.db"),
		},
		Reconcile: ReconcileConfig{
			Workers:   8,
			RateLimit: 25,
		},
		Commits: CommitsConfig{
			Window: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".svnscope", "report.db"),
		},
	}
}

// Load loads configuration from file, environment and defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("repository", cfg.Repository)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("reconcile", cfg.Reconcile)
	v.SetDefault("commits", cfg.Commits)
	v.SetDefault("storage", cfg.Storage)

	v.SetEnvPrefix("SVNSCOPE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".svnscope")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".svnscope"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, defaults apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the inputs the pipeline cannot start without.
func (c *Config) Validate() error {
	if c.Repository.WorkingCopy == "" {
		return errors.ConfigError("repository.working_copy is required")
	}
	info, err := os.Stat(c.Repository.WorkingCopy)
	if err != nil {
		return errors.ConfigErrorf("repository.working_copy %s: %v", c.Repository.WorkingCopy, err)
	}
	if !info.IsDir() {
		return errors.ConfigErrorf("repository.working_copy %s is not a directory", c.Repository.WorkingCopy)
	}
	if c.Reconcile.Workers < 0 {
		return errors.ConfigError("reconcile.workers must not be negative")
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
}
