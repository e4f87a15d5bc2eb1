// internal/analysis/evaluate/extractor.go
package evaluate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fixed defaults applied during normalization. Changing these changes the
// wire-visible fallback behavior, so they are deliberately package constants.
const (
	defaultScore        = 5.0
	minScore            = 1.0
	maxScore            = 10.0
	suggestionCount     = 3
	defaultReasoning    = "No reasoning provided"
	defaultConfidence   = "Moderate confidence displayed"
	defaultQuality      = "Clear communication"
	parseFailureMessage = "Failed to parse evaluation response"

	parseFailureReasoning = "Unable to parse detailed evaluation. The model response was not in the expected format."
)

var padSuggestion = Suggestion{
	Improvement:    "Continue practicing interview questions",
	Context:        "General",
	BetterApproach: "Practice with a variety of question types",
}

var parseFailureSuggestions = []Suggestion{
	{Improvement: "Provide more specific examples", Context: "General"},
	{Improvement: "Structure your answer more clearly", Context: "General"},
	{Improvement: "Include technical details where relevant", Context: "General"},
}

// Extract recovers a validated Result from free-form model text. It never
// returns an error: unparseable input degrades to a fixed fallback record
// with the Error field set. Normalization is idempotent; running Extract on
// the JSON form of its own output reproduces that output.
func Extract(raw string) Result {
	candidate := CandidateJSON(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return fallbackResult()
	}

	return normalize(parsed)
}

// CandidateJSON strips an optional fenced code block and slices between the
// first opening and last closing brace. Model output often wraps its JSON in
// markdown fences or pads it with prose; both are routine, not errors.
func CandidateJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

func fallbackResult() Result {
	suggestions := make([]Suggestion, suggestionCount)
	copy(suggestions, parseFailureSuggestions)
	return Result{
		Score:                defaultScore,
		Reasoning:            parseFailureReasoning,
		Suggestions:          suggestions,
		ConfidenceAssessment: defaultConfidence,
		CommunicationQuality: defaultQuality,
		Error:                parseFailureMessage,
	}
}

// normalize coerces each field independently so one malformed field never
// poisons the rest of the record.
func normalize(parsed map[string]interface{}) Result {
	return Result{
		Score:                normalizeScore(parsed["score"]),
		Reasoning:            stringOr(parsed["reasoning"], defaultReasoning),
		Suggestions:          normalizeSuggestions(parsed["suggestions"]),
		ConfidenceAssessment: stringOr(parsed["confidence_assessment"], defaultConfidence),
		CommunicationQuality: stringOr(parsed["communication_quality"], defaultQuality),
		BehavioralInsights:   normalizeInsights(parsed["behavioral_insights"]),
	}
}

func normalizeScore(v interface{}) float64 {
	score, ok := toFloat(v)
	if !ok {
		return defaultScore
	}
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		// Strict parse: "8abc" is not a score.
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func stringOr(v interface{}, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		if val == "" {
			return fallback
		}
		return val
	default:
		// Coerce non-string reasoning the same way the upstream models
		// sometimes emit it (numbers, nested objects).
		return fmt.Sprintf("%v", val)
	}
}

// normalizeSuggestions accepts either plain strings or structured objects and
// returns exactly suggestionCount entries, truncating or padding as needed.
func normalizeSuggestions(v interface{}) []Suggestion {
	items, ok := v.([]interface{})
	if !ok {
		if v != nil {
			items = []interface{}{v}
		}
	}

	normalized := make([]Suggestion, 0, suggestionCount)
	for _, item := range items {
		if len(normalized) == suggestionCount {
			break
		}
		switch s := item.(type) {
		case string:
			// Same empty-string defaulting as the structured branch, so a
			// record normalizes identically no matter which shape it
			// arrived in.
			normalized = append(normalized, Suggestion{
				Improvement: stringOr(s, "Continue practicing"),
				Context:     "General",
			})
		case map[string]interface{}:
			normalized = append(normalized, Suggestion{
				Improvement:    stringOr(s["improvement"], "Continue practicing"),
				Context:        stringOr(s["context"], "General"),
				BetterApproach: stringOrEmpty(s["better_approach"]),
			})
		default:
			normalized = append(normalized, Suggestion{
				Improvement: fmt.Sprintf("%v", s),
				Context:     "General",
			})
		}
	}

	for len(normalized) < suggestionCount {
		normalized = append(normalized, padSuggestion)
	}

	return normalized
}

func stringOrEmpty(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func normalizeInsights(v interface{}) BehavioralInsights {
	m, ok := v.(map[string]interface{})
	if !ok {
		return BehavioralInsights{}
	}
	return BehavioralInsights{
		EyeContactAnalysis: stringOrEmpty(m["eye_contact_analysis"]),
		FillerWordImpact:   stringOrEmpty(m["filler_word_impact"]),
		SpeechPaceFeedback: stringOrEmpty(m["speech_pace_feedback"]),
	}
}
