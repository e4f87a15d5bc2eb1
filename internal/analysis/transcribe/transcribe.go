// internal/analysis/transcribe/transcribe.go
package transcribe

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/inference"
)

// ==========================
// AUDIO TRANSCRIBER
// ==========================

// Transcriber converts raw audio bytes into a transcript via a hosted
// speech-to-text endpoint.
type Transcriber struct {
	client *inference.Client
	cfg    config.EndpointConfig
	logger logger.Logger
}

func NewTranscriber(client *inference.Client, cfg config.EndpointConfig, log logger.Logger) *Transcriber {
	return &Transcriber{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

// channelResponse is the primary provider shape:
// results.channels[0].alternatives[0].transcript.
type channelResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// segmentResponse is the alternate shape some providers return:
// a bare array of {"text": "..."} segments.
type segmentResponse []struct {
	Text string `json:"text"`
}

// Transcribe posts audio and returns the recognized transcript. An answer
// with no recognizable speech yields an empty string and no error.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, *errors.StandardError) {
	query := url.Values{}
	query.Set("model", t.cfg.Model)
	query.Set("language", "en")
	query.Set("smart_format", "true")
	query.Set("punctuate", "true")

	outcome := t.client.Call(ctx, inference.Request{
		Endpoint:    "transcription",
		URL:         t.cfg.BaseURL + "/v1/listen",
		Body:        audio,
		ContentType: "audio/wav",
		Query:       query,
		Timeout:     config.GetDuration(t.cfg.Timeout),
	})
	if !outcome.Success() {
		t.logger.Error("Transcription call failed", map[string]interface{}{
			"error_code": outcome.Err.Code,
			"model":      t.cfg.Model,
		})
		return "", outcome.Err
	}

	transcript, err := extractTranscript(outcome.Body)
	if err != nil {
		t.logger.Error("Transcription response unrecognized", map[string]interface{}{
			"model": t.cfg.Model,
		})
		return "", err
	}
	return transcript, nil
}

// extractTranscript normalizes both known provider response shapes into a
// single transcript string.
func extractTranscript(body []byte) (string, *errors.StandardError) {
	trimmed := strings.TrimSpace(string(body))

	if strings.HasPrefix(trimmed, "[") {
		var segments segmentResponse
		if err := json.Unmarshal(body, &segments); err != nil {
			return "", errors.NewTranscriptionFailedError("unrecognized segment response")
		}
		parts := make([]string, 0, len(segments))
		for _, seg := range segments {
			if seg.Text != "" {
				parts = append(parts, seg.Text)
			}
		}
		return strings.TrimSpace(strings.Join(parts, " ")), nil
	}

	var resp channelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.NewTranscriptionFailedError("unrecognized channel response")
	}
	if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		// A syntactically valid response with no channels means no speech
		// was recognized, not a provider fault.
		return "", nil
	}
	return strings.TrimSpace(resp.Results.Channels[0].Alternatives[0].Transcript), nil
}
