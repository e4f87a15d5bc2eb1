// internal/analysis/evaluate/evaluator.go
package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/inference"
)

// ==========================
// ANSWER EVALUATOR
// ==========================

// Evaluator scores a candidate's answer against the asked question using a
// chat-completions style endpoint. All network failure handling lives in the
// inference client; the evaluator only decides what a failed call means for
// the analysis record.
type Evaluator struct {
	client *inference.Client
	cfg    config.EndpointConfig
	logger logger.Logger
}

func NewEvaluator(client *inference.Client, cfg config.EndpointConfig, log logger.Logger) *Evaluator {
	return &Evaluator{
		client: client,
		cfg:    cfg,
		logger: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate returns a normalized Result for the given answer. The Result is
// always fully shaped: a hard call failure yields a zero-score record (plus
// the typed error for the caller), and malformed content degrades through
// Extract's fallback path with no error return.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Result, *errors.StandardError) {
	prompt := buildPrompt(req)

	body, err := json.Marshal(chatRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		stdErr := errors.NewParseError(err.Error())
		return unavailableResult(stdErr.Message), stdErr
	}

	outcome := e.client.Call(ctx, inference.Request{
		Endpoint:    "evaluation",
		URL:         e.cfg.BaseURL + "/chat/completions",
		Body:        body,
		ContentType: "application/json",
		Timeout:     config.GetDuration(e.cfg.Timeout),
	})
	if !outcome.Success() {
		e.logger.Error("Evaluation call failed", map[string]interface{}{
			"error_code": outcome.Err.Code,
			"model":      e.cfg.Model,
		})
		return unavailableResult(outcome.Err.Message), outcome.Err
	}

	var envelope chatResponse
	if err := json.Unmarshal(outcome.Body, &envelope); err != nil || len(envelope.Choices) == 0 {
		e.logger.Warn("Evaluation response envelope malformed", map[string]interface{}{
			"model": e.cfg.Model,
		})
		return fallbackResult(), nil
	}

	result := Extract(envelope.Choices[0].Message.Content)
	if result.Error != "" {
		e.logger.Warn("Evaluation content required fallback parsing", map[string]interface{}{
			"model": e.cfg.Model,
		})
	}
	return result, nil
}

func unavailableResult(detail string) Result {
	return Result{
		Score:       0,
		Reasoning:   "Evaluation unavailable",
		Suggestions: []Suggestion{},
		Error:       detail,
	}
}

// buildPrompt assembles the evaluation instruction with optional candidate
// profile and delivery-metrics sections. Sections the caller left empty are
// omitted entirely rather than rendered blank.
func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are an expert interview coach evaluating a candidate's answer.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", req.Question)
	fmt.Fprintf(&b, "Candidate's Answer: %s\n", req.Transcript)

	profile := profileSection(req)
	if profile != "" {
		b.WriteString("\nCandidate Profile:\n")
		b.WriteString(profile)
	}

	metrics := metricsSection(req)
	if metrics != "" {
		b.WriteString("\nDelivery Metrics:\n")
		b.WriteString(metrics)
	}

	b.WriteString(`
Evaluate the answer and respond with ONLY a JSON object in this exact format:
{
  "score": <number 1-10>,
  "reasoning": "<brief explanation of the score>",
  "suggestions": [
    {"improvement": "<what to improve>", "context": "<where it applies>", "better_approach": "<how to do it better>"},
    {"improvement": "...", "context": "...", "better_approach": "..."},
    {"improvement": "...", "context": "...", "better_approach": "..."}
  ],
  "confidence_assessment": "<assessment of the candidate's confidence>",
  "communication_quality": "<assessment of communication clarity>",
  "behavioral_insights": {
    "eye_contact_analysis": "<feedback on eye contact>",
    "filler_word_impact": "<how filler words affected the answer>",
    "speech_pace_feedback": "<feedback on speaking pace>"
  }
}

Provide exactly 3 suggestions. Do not include any text outside the JSON object.`)

	return b.String()
}

func profileSection(req Request) string {
	var lines []string
	if req.CandidateName != "" {
		lines = append(lines, fmt.Sprintf("- Name: %s", req.CandidateName))
	}
	if req.Role != "" {
		lines = append(lines, fmt.Sprintf("- Target role: %s", req.Role))
	}
	if req.ExperienceYears != "" {
		lines = append(lines, fmt.Sprintf("- Experience: %s years", req.ExperienceYears))
	}
	if req.SalaryExpectation != "" {
		lines = append(lines, fmt.Sprintf("- Salary expectation: %s", req.SalaryExpectation))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func metricsSection(req Request) string {
	var lines []string
	if req.Visual != nil {
		lines = append(lines,
			fmt.Sprintf("- Eye contact: %d%%", req.Visual.EyeContact),
			fmt.Sprintf("- Posture: %d%%", req.Visual.Posture))
	}
	if req.Speech != nil {
		lines = append(lines,
			fmt.Sprintf("- Words per minute: %.1f", req.Speech.WordsPerMinute),
			fmt.Sprintf("- Filler words used: %d", req.Speech.FillerCount),
			fmt.Sprintf("- Total words: %d", req.Speech.WordCount))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
