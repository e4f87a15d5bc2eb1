// internal/media/audio.go
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
)

// ==========================
// AUDIO EXTRACTION
// ==========================

// AudioExtractor pulls a mono 16kHz WAV track out of a recorded answer.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) ([]byte, *errors.StandardError)
}

// FFmpegExtractor shells out to ffmpeg. The output format is fixed to what
// the transcription provider accepts: pcm_s16le, 16kHz, single channel.
type FFmpegExtractor struct {
	binary string
	logger logger.Logger
}

func NewFFmpegExtractor(binary string, log logger.Logger) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegExtractor{binary: binary, logger: log}
}

func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath string) ([]byte, *errors.StandardError) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, errors.NewAudioExtractionFailedError(fmt.Errorf("input not readable: %w", err))
	}

	outPath := filepath.Join(os.TempDir(), "audio-"+uuid.New().String()+".wav")
	defer os.Remove(outPath)

	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outPath,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Error("ffmpeg extraction failed", map[string]interface{}{
			"input":  videoPath,
			"stderr": stderr.String(),
		})
		return nil, errors.NewAudioExtractionFailedError(err)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.NewAudioExtractionFailedError(err)
	}
	return audio, nil
}
