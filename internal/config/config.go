package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// EnvConfig holds process configuration. Values come from the environment
// (with .env support); a YAML file named by TASKPOCKET_CONFIG overrides them.
type EnvConfig struct {
	APP_PORT string `yaml:"app_port"`

	API_BASE_URL string `yaml:"api_base_url"`
	API_TOKEN    string `yaml:"api_token"`
	API_USER_ID  int    `yaml:"api_user_id"`
	API_USERNAME string `yaml:"api_username"`

	DATA_DIR             string `yaml:"data_dir"`
	HTTP_TIMEOUT_SECONDS int    `yaml:"http_timeout_seconds"`
	LOG_FILE_PATH        string `yaml:"log_file_path"`
	LOG_LEVEL            string `yaml:"log_level"`
}

// DefaultEnvConfig is populated by LoadEnvConfig.
var DefaultEnvConfig EnvConfig

// LoadEnvConfig reads configuration from the environment and the optional
// YAML override file. A missing .env file is not an error.
func LoadEnvConfig() error {
	_ = godotenv.Load()

	cfg := EnvConfig{
		APP_PORT:             getEnv("APP_PORT", "8083"),
		API_BASE_URL:         getEnv("API_BASE_URL", "http://localhost:8000/api"),
		API_TOKEN:            os.Getenv("API_TOKEN"),
		API_USERNAME:         os.Getenv("API_USERNAME"),
		DATA_DIR:             getEnv("DATA_DIR", "./data"),
		LOG_FILE_PATH:        os.Getenv("LOG_FILE_PATH"),
		LOG_LEVEL:            getEnv("LOG_LEVEL", "info"),
		HTTP_TIMEOUT_SECONDS: 10,
	}

	if v := os.Getenv("API_USER_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_USER_ID %q: %w", v, err)
		}
		cfg.API_USER_ID = id
	}
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.HTTP_TIMEOUT_SECONDS = secs
	}

	if path := os.Getenv("TASKPOCKET_CONFIG"); path != "" {
		if err := applyYAMLOverrides(path, &cfg); err != nil {
			return err
		}
	}

	DefaultEnvConfig = cfg
	return nil
}

func applyYAMLOverrides(path string, cfg *EnvConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var overrides EnvConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if overrides.APP_PORT != "" {
		cfg.APP_PORT = overrides.APP_PORT
	}
	if overrides.API_BASE_URL != "" {
		cfg.API_BASE_URL = overrides.API_BASE_URL
	}
	if overrides.API_TOKEN != "" {
		cfg.API_TOKEN = overrides.API_TOKEN
	}
	if overrides.API_USER_ID != 0 {
		cfg.API_USER_ID = overrides.API_USER_ID
	}
	if overrides.API_USERNAME != "" {
		cfg.API_USERNAME = overrides.API_USERNAME
	}
	if overrides.DATA_DIR != "" {
		cfg.DATA_DIR = overrides.DATA_DIR
	}
	if overrides.HTTP_TIMEOUT_SECONDS != 0 {
		cfg.HTTP_TIMEOUT_SECONDS = overrides.HTTP_TIMEOUT_SECONDS
	}
	if overrides.LOG_FILE_PATH != "" {
		cfg.LOG_FILE_PATH = overrides.LOG_FILE_PATH
	}
	if overrides.LOG_LEVEL != "" {
		cfg.LOG_LEVEL = overrides.LOG_LEVEL
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
