package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".harmony"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("HARMONY_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // Use defaults if we can't find a config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If the file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("HARMONY_PATHS", &cfg.Paths)
	envconfig.Process("HARMONY_MODEL", &cfg.Model)
	envconfig.Process("HARMONY_EMBEDDING", &cfg.Embedding)
	envconfig.Process("HARMONY_CLUSTERING", &cfg.Clustering)
	envconfig.Process("HARMONY_DEBATE", &cfg.Debate)
	envconfig.Process("HARMONY_INTERVENTIONS", &cfg.Interventions)
	envconfig.Process("HARMONY_CONSENSUS", &cfg.Consensus)
	envconfig.Process("HARMONY_OPENAI", &cfg.Providers.OpenAI)
	envconfig.Process("HARMONY_GATEWAY", &cfg.Gateway)
	envconfig.Process("HARMONY_INGEST_KAFKA", &cfg.Ingest.Kafka)
	envconfig.Process("HARMONY_CHANNELS_SLACK", &cfg.Channels.Slack)

	// Fallback for API key
	if cfg.Providers.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Providers.OpenAI.APIKey = key
		}
	}

	// Expand ~ in paths
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Paths.DataDir = filepath.Join(home, cfg.Paths.DataDir[1:])
		}
	}

	if len(cfg.Clustering.KRange) == 0 {
		cfg.Clustering.KRange = DefaultConfig().Clustering.KRange
	}

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DBPath returns the path of the sqlite database inside the data dir.
func DBPath(cfg *Config) string {
	return filepath.Join(cfg.Paths.DataDir, "harmony.db")
}
