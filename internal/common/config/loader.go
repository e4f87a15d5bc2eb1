// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like TRANSCRIPTION_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so the
// loader behaves the same from cmd/, package tests, and the repo root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from well-known env vars when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.Transcription.APIKey == "" {
		if val := os.Getenv("TRANSCRIPTION_API_KEY"); val != "" {
			cfg.APIs.Transcription.APIKey = val
		} else if val := os.Getenv("DEEPGRAM_API_KEY"); val != "" {
			cfg.APIs.Transcription.APIKey = val
		}
	}

	if cfg.APIs.Evaluation.APIKey == "" {
		if val := os.Getenv("EVALUATION_API_KEY"); val != "" {
			cfg.APIs.Evaluation.APIKey = val
		} else if val := os.Getenv("GROQ_API_KEY"); val != "" {
			cfg.APIs.Evaluation.APIKey = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Retry policy defaults
	if cfg.Inference.MaxAttempts == 0 {
		cfg.Inference.MaxAttempts = 3
	}
	if cfg.Inference.BackoffBase == 0 {
		cfg.Inference.BackoffBase = 1000
	}
	if cfg.Inference.MaxWait == 0 {
		cfg.Inference.MaxWait = 60000
	}

	// Endpoint defaults
	if cfg.APIs.Transcription.Timeout == 0 {
		cfg.APIs.Transcription.Timeout = 60000
	}
	if cfg.APIs.Transcription.Model == "" {
		cfg.APIs.Transcription.Model = "nova-2"
	}
	if cfg.APIs.Evaluation.Timeout == 0 {
		cfg.APIs.Evaluation.Timeout = 45000
	}
	if cfg.APIs.Evaluation.Model == "" {
		cfg.APIs.Evaluation.Model = "llama-3.3-70b-versatile"
	}
	if cfg.APIs.Evaluation.Temperature == 0 {
		cfg.APIs.Evaluation.Temperature = 0.3
	}
	if cfg.APIs.Evaluation.MaxTokens == 0 {
		cfg.APIs.Evaluation.MaxTokens = 600
	}

	// Question supplier defaults
	if cfg.Questions.DefaultCount == 0 {
		cfg.Questions.DefaultCount = 3
	}
	if cfg.Questions.CacheTTL == 0 {
		cfg.Questions.CacheTTL = 900000 // 15 minutes
	}

	if cfg.Visual.Timeout == 0 {
		cfg.Visual.Timeout = 30000
	}
	if cfg.Media.FFmpegPath == "" {
		cfg.Media.FFmpegPath = "ffmpeg"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9090"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.APIs.Transcription.BaseURL == "" {
		return fmt.Errorf("apis.transcription.base_url is required")
	}
	if cfg.APIs.Evaluation.BaseURL == "" {
		return fmt.Errorf("apis.evaluation.base_url is required")
	}
	if cfg.Questions.BankPath == "" {
		return fmt.Errorf("questions.bank_path is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
