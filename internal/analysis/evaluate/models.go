// internal/analysis/evaluate/models.go
package evaluate

import (
	"interview-analyzer/internal/analysis/scoring"
	"interview-analyzer/internal/analysis/speech"
)

// Suggestion is one actionable improvement tied to a spot in the transcript.
type Suggestion struct {
	Improvement    string `json:"improvement"`
	Context        string `json:"context"`
	BetterApproach string `json:"better_approach"`
}

// BehavioralInsights carries the model's read on the non-verbal signals. Keys
// are fixed; absent values normalize to empty strings.
type BehavioralInsights struct {
	EyeContactAnalysis string `json:"eye_contact_analysis"`
	FillerWordImpact   string `json:"filler_word_impact"`
	SpeechPaceFeedback string `json:"speech_pace_feedback"`
}

// Result is the validated content evaluation. Score is always within [1, 10]
// after extraction; Suggestions always has exactly 3 entries. Error is empty
// on success.
type Result struct {
	Score                float64            `json:"score"`
	Reasoning            string             `json:"reasoning"`
	Suggestions          []Suggestion       `json:"suggestions"`
	ConfidenceAssessment string             `json:"confidence_assessment"`
	CommunicationQuality string             `json:"communication_quality"`
	BehavioralInsights   BehavioralInsights `json:"behavioral_insights"`
	Error                string             `json:"error,omitempty"`
}

// Request carries the evaluation context for one answer. Visual and speech
// metrics are optional; when present they are surfaced to the model as
// additional judging context.
type Request struct {
	Question          string
	Transcript        string
	Role              string
	CandidateName     string
	ExperienceYears   string
	SalaryExpectation string
	Visual            *scoring.VisualMetrics
	Speech            *speech.Metrics
}
