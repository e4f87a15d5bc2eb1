// internal/common/config/config.go
package config

// Config is the main application configuration struct. It is constructed once
// at startup and passed by reference into every component; no package reads
// the environment after Load returns.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Inference InferenceConfig `mapstructure:"inference"`
	APIs      APIsConfig      `mapstructure:"apis"`
	Questions QuestionsConfig `mapstructure:"questions"`
	Visual    VisualConfig    `mapstructure:"visual"`
	Media     MediaConfig     `mapstructure:"media"`
	Cache     RedisConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// InferenceConfig holds the retry/backoff policy shared by all inference calls.
type InferenceConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BackoffBase int `mapstructure:"backoff_base"` // milliseconds
	MaxWait     int `mapstructure:"max_wait"`     // milliseconds, cap for 503 warm-up waits
}

// APIsConfig holds settings for the external inference endpoints.
type APIsConfig struct {
	Transcription EndpointConfig `mapstructure:"transcription"`
	Evaluation    EndpointConfig `mapstructure:"evaluation"`
}

// EndpointConfig describes one external inference endpoint.
type EndpointConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// QuestionsConfig holds settings for the question supplier.
type QuestionsConfig struct {
	BankPath     string `mapstructure:"bank_path"`
	DefaultCount int    `mapstructure:"default_count"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // milliseconds
}

// VisualConfig holds settings for the external visual analyzer service.
type VisualConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// MediaConfig holds settings for the audio extraction tool.
type MediaConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
