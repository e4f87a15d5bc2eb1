// internal/media/visual_test.go
package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
)

func writeTempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answer.webm")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o644))
	return path
}

func TestHTTPVisualAnalyzer_Analyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("video")
		require.NoError(t, err)
		assert.Equal(t, "answer.webm", header.Filename)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"eyeContact": 82, "posture": 91}`))
	}))
	defer server.Close()

	analyzer := NewHTTPVisualAnalyzer(config.VisualConfig{BaseURL: server.URL, Timeout: 5000}, logger.NewTestLogger(t))
	metrics, err := analyzer.Analyze(context.Background(), writeTempVideo(t))

	require.Nil(t, err)
	assert.Equal(t, 82, metrics.EyeContact)
	assert.Equal(t, 91, metrics.Posture)
}

func TestHTTPVisualAnalyzer_Analyze_ClampsOutOfRangeValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"eyeContact": 140, "posture": -5}`))
	}))
	defer server.Close()

	analyzer := NewHTTPVisualAnalyzer(config.VisualConfig{BaseURL: server.URL, Timeout: 5000}, logger.NewTestLogger(t))
	metrics, err := analyzer.Analyze(context.Background(), writeTempVideo(t))

	require.Nil(t, err)
	assert.Equal(t, 100, metrics.EyeContact)
	assert.Equal(t, 0, metrics.Posture)
}

func TestHTTPVisualAnalyzer_Analyze_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	analyzer := NewHTTPVisualAnalyzer(config.VisualConfig{BaseURL: server.URL, Timeout: 5000}, logger.NewTestLogger(t))
	_, err := analyzer.Analyze(context.Background(), writeTempVideo(t))

	require.NotNil(t, err)
	assert.Equal(t, errors.ErrCodeVisualAnalysisFailed, err.Code)
}

func TestHTTPVisualAnalyzer_Analyze_MissingFile(t *testing.T) {
	analyzer := NewHTTPVisualAnalyzer(config.VisualConfig{BaseURL: "http://localhost:1", Timeout: 1000}, logger.NewTestLogger(t))
	_, err := analyzer.Analyze(context.Background(), "/does/not/exist.webm")

	require.NotNil(t, err)
	assert.Equal(t, errors.ErrCodeVisualAnalysisFailed, err.Code)
}
