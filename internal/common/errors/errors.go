// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Inference call errors
const (
	ErrCodeConfigError       ErrorCode = "CONFIG_ERROR"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeLoadingTimeout    ErrorCode = "LOADING_TIMEOUT"
	ErrCodeAPIError          ErrorCode = "API_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeNetworkError      ErrorCode = "NETWORK_ERROR"

	ErrCodeParseError ErrorCode = "PARSE_ERROR"

	ErrCodeAudioExtractionFailed ErrorCode = "AUDIO_EXTRACTION_FAILED"
	ErrCodeTranscriptionFailed   ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeVisualAnalysisFailed  ErrorCode = "VISUAL_ANALYSIS_FAILED"
	ErrCodeQuestionBankInvalid   ErrorCode = "QUESTION_BANK_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigError creates a non-retryable missing-credentials error. It fails
// fast: the caller must not attempt any network I/O.
func NewConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigError,
		Message:   "API credentials not configured",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitExceededError is surfaced after the bounded retry loop exhausts
// its attempts against HTTP 429 responses.
func NewRateLimitExceededError(endpoint string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Rate limit exceeded. Please try again later.",
		Details:   fmt.Sprintf("endpoint: %s, attempts: %d", endpoint, attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLoadingTimeoutError is surfaced when an endpoint keeps reporting warm-up
// (HTTP 503) past the retry bound or with an estimated wait above the cap.
func NewLoadingTimeoutError(endpoint string, estimatedSeconds float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoadingTimeout,
		Message:   fmt.Sprintf("Model is loading. Please try again in %.0fs.", estimatedSeconds),
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIError creates a non-retryable error for any other non-200 status.
func NewAPIError(endpoint string, statusCode int) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIError,
		Message:   fmt.Sprintf("API error: %d", statusCode),
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a transport-level timeout error.
func NewTimeoutError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Request timeout. Endpoint may be overloaded.",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError creates a transport-level connectivity error.
func NewNetworkError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   "Network error contacting endpoint",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError records an unrecoverable response-parse failure. It is
// absorbed locally into a fallback record, never surfaced as a hard failure.
func NewParseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Failed to parse evaluation response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAudioExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAudioExtractionFailed,
		Message:   "Failed to extract audio from media",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTranscriptionFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionFailed,
		Message:   "Transcription failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewVisualAnalysisFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVisualAnalysisFailed,
		Message:   "Visual analysis failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQuestionBankInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuestionBankInvalid,
		Message:   "Question bank resource is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// HandledWithinCall reports whether a status observed mid-call is absorbed by
// the client's own retry loop rather than surfaced immediately.
func HandledWithinCall(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimitExceeded, ErrCodeLoadingTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "RATE_LIMIT") || strings.Contains(codeStr, "LOADING") ||
		strings.Contains(codeStr, "API") || strings.Contains(codeStr, "TIMEOUT") ||
		strings.Contains(codeStr, "NETWORK"):
		return "INFERENCE"
	case strings.Contains(codeStr, "PARSE"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "AUDIO") || strings.Contains(codeStr, "TRANSCRIPTION") ||
		strings.Contains(codeStr, "VISUAL"):
		return "MEDIA"
	default:
		return "OTHER"
	}
}
