package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string
	DBPath       string
	BaseURL      string
	SourceSystem string
	FetchTimeout time.Duration
	RunInterval  time.Duration
	RunOnStart   bool
}

// Load builds the config from defaults, an optional YAML file named by
// CONFIG_PATH, and environment variables, in that order of precedence.
func Load() Config {
	cfg := Config{
		Port:         "8080",
		DBPath:       "bronze.db",
		BaseURL:      "https://fakestoreapi.com",
		SourceSystem: "fakestoreapi",
		FetchTimeout: 10 * time.Second,
		RunInterval:  0,
		RunOnStart:   true,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loadFile(&cfg, path)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.SourceSystem = getEnv("SOURCE_SYSTEM", cfg.SourceSystem)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RunInterval = getEnvDuration("RUN_INTERVAL", cfg.RunInterval)
	cfg.RunOnStart = getEnvBool("RUN_ON_START", cfg.RunOnStart)

	return cfg
}

// fileConfig mirrors Config with string durations, since yaml.v3 has no
// native time.Duration decoding.
type fileConfig struct {
	Port         string `yaml:"port"`
	DBPath       string `yaml:"dbPath"`
	BaseURL      string `yaml:"baseUrl"`
	SourceSystem string `yaml:"sourceSystem"`
	FetchTimeout string `yaml:"fetchTimeout"`
	RunInterval  string `yaml:"runInterval"`
	RunOnStart   *bool  `yaml:"runOnStart"`
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config file not read", "path", path, "error", err)
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("config file not parsed", "path", path, "error", err)
		return
	}

	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.SourceSystem != "" {
		cfg.SourceSystem = fc.SourceSystem
	}
	if d, err := time.ParseDuration(fc.FetchTimeout); err == nil && fc.FetchTimeout != "" {
		cfg.FetchTimeout = d
	}
	if d, err := time.ParseDuration(fc.RunInterval); err == nil && fc.RunInterval != "" {
		cfg.RunInterval = d
	}
	if fc.RunOnStart != nil {
		cfg.RunOnStart = *fc.RunOnStart
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}
