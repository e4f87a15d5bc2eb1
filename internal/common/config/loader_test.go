// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
apis:
  transcription:
    base_url: https://api.deepgram.com
  evaluation:
    base_url: https://api.groq.com/openai/v1
questions:
  bank_path: configs/question_bank.json
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Inference.MaxAttempts)
	assert.Equal(t, 1000, cfg.Inference.BackoffBase)
	assert.Equal(t, 60000, cfg.Inference.MaxWait)
	assert.Equal(t, "nova-2", cfg.APIs.Transcription.Model)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.APIs.Evaluation.Model)
	assert.Equal(t, 0.3, cfg.APIs.Evaluation.Temperature)
	assert.Equal(t, 3, cfg.Questions.DefaultCount)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.App.MetricsAddr)
}

func TestLoadFromFile_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "no transcription url",
			content: `
apis:
  evaluation:
    base_url: https://api.groq.com/openai/v1
questions:
  bank_path: bank.json
`,
		},
		{
			name: "no bank path",
			content: `
apis:
  transcription:
    base_url: https://api.deepgram.com
  evaluation:
    base_url: https://api.groq.com/openai/v1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfigFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_EnvKeyOverride(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-from-env")
	t.Setenv("GROQ_API_KEY", "groq-from-env")

	cfg, err := LoadFromFile(writeConfigFile(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "dg-from-env", cfg.APIs.Transcription.APIKey)
	assert.Equal(t, "groq-from-env", cfg.APIs.Evaluation.APIKey)
}

func TestLoadFromFile_ExplicitKeyWinsOverEnv(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "dg-from-env")

	content := `
apis:
  transcription:
    base_url: https://api.deepgram.com
    api_key: dg-from-file
  evaluation:
    base_url: https://api.groq.com/openai/v1
questions:
  bank_path: bank.json
`
	cfg, err := LoadFromFile(writeConfigFile(t, content))
	require.NoError(t, err)
	// Env fills only empty keys.
	assert.Equal(t, "dg-from-file", cfg.APIs.Transcription.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
