// internal/media/visual.go
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"interview-analyzer/internal/analysis/scoring"
	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
)

// ==========================
// VISUAL ANALYSIS
// ==========================

// VisualAnalyzer produces eye contact and posture percentages for a
// recorded answer.
type VisualAnalyzer interface {
	Analyze(ctx context.Context, videoPath string) (scoring.VisualMetrics, *errors.StandardError)
}

// HTTPVisualAnalyzer posts the recording to the frame-analysis service and
// reads the aggregated percentages back.
type HTTPVisualAnalyzer struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewHTTPVisualAnalyzer(cfg config.VisualConfig, log logger.Logger) *HTTPVisualAnalyzer {
	return &HTTPVisualAnalyzer{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log,
	}
}

func (a *HTTPVisualAnalyzer) Analyze(ctx context.Context, videoPath string) (scoring.VisualMetrics, *errors.StandardError) {
	var zero scoring.VisualMetrics

	file, err := os.Open(videoPath)
	if err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", filepath.Base(videoPath))
	if err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	if _, err := io.Copy(part, file); err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	if err := writer.Close(); err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", &body)
	if err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Visual analysis request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zero, errors.NewVisualAnalysisFailedError(resp.Status)
	}

	var metrics scoring.VisualMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return zero, errors.NewVisualAnalysisFailedError(err.Error())
	}
	return clampMetrics(metrics), nil
}

func clampMetrics(m scoring.VisualMetrics) scoring.VisualMetrics {
	m.EyeContact = clampPercent(m.EyeContact)
	m.Posture = clampPercent(m.Posture)
	return m
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
