package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	SyncURL       string `json:"syncUrl"`
	SyncToken     string `json:"syncToken"`
	UserID        string `json:"userId"`
	SearchContent bool   `json:"searchContent"`
	WordsPerMin   int    `json:"wordsPerMinute"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		WordsPerMin: 238,
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
// SYNC_URL, SYNC_TOKEN and USER_ID environment variables override the file.
func LoadConfig(path string) (*Config, error) {
	config, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYNC_URL"); v != "" {
		config.SyncURL = v
	}
	if v := os.Getenv("SYNC_TOKEN"); v != "" {
		config.SyncToken = v
	}
	if v := os.Getenv("USER_ID"); v != "" {
		config.UserID = v
	}

	return config, nil
}

func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config.WordsPerMin <= 0 {
		config.WordsPerMin = DefaultConfig().WordsPerMin
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/marginalia/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marginalia", "config.json"), nil
}
