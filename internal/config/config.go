package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port      string `json:"port"`
		StaticDir string `json:"static_dir"`
		Debug     bool   `json:"debug"`
	} `json:"server"`

	Cache struct {
		Engine string `json:"engine"` // "memory", "sqlite" or "redis"
		// Path is the database file for sqlite and the connection URL for redis.
		Path string `json:"path"`
	} `json:"cache"`

	API struct {
		FoodURL        string `json:"food_url"`
		PetURL         string `json:"pet_url"`
		BeautyURL      string `json:"beauty_url"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"api"`

	Scanner struct {
		// Enabled turns on the server-side GStreamer camera pipeline.
		// Browser deployments leave it off and decode on-device.
		Enabled bool `json:"enabled"`
		Width   int  `json:"width"`
		Height  int  `json:"height"`
	} `json:"scanner"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Handle missing values
	if config.Server.Port == "" {
		// Fail if port is not set
		return nil, fmt.Errorf("server port is not set in config file")
	}
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = "./static"
	}
	if config.Cache.Engine == "" {
		config.Cache.Engine = "memory"
	}
	if config.Cache.Engine == "sqlite" && config.Cache.Path == "" {
		config.Cache.Path = "products.db"
	}
	if config.API.TimeoutSeconds <= 0 {
		config.API.TimeoutSeconds = 10
	}

	return &config, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("NUTRISCAN_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
