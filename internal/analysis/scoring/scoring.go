// internal/analysis/scoring/scoring.go

// Package scoring combines the content, visual, and speech sub-signals into
// one bounded score. Inputs are pre-validated by their producers, so Score is
// a total function: it cannot fail.
package scoring

import (
	"math"

	"interview-analyzer/internal/analysis/speech"
)

const (
	targetWPM        = 130.0
	maxWPMPenalty    = 50.0
	maxFillerPenalty = 30.0

	contentWeight = 0.5
	visualWeight  = 0.3
	speechWeight  = 0.2
)

// VisualMetrics is the external analyzer's output, read-only to this core.
type VisualMetrics struct {
	EyeContact int `json:"eyeContact"`
	Posture    int `json:"posture"`
}

// CompositeScore holds the 0-100 sub-scores and the weighted overall score.
type CompositeScore struct {
	ContentScore float64 `json:"contentScore"`
	VisualScore  float64 `json:"visualScore"`
	SpeechScore  float64 `json:"speechScore"`
	OverallScore int     `json:"overallScore"`
}

// Score maps the 1-10 content scale onto 0-100, averages the visual signals,
// and penalizes speech pace deviation and filler words. Absent speech (wpm 0)
// takes the maximum pace penalty so a missing transcript degrades the score
// instead of inflating it.
func Score(contentRaw float64, visual VisualMetrics, sp speech.Metrics) CompositeScore {
	contentScore := contentRaw * 10

	visualScore := float64(visual.EyeContact+visual.Posture) / 2

	wpmPenalty := maxWPMPenalty
	if sp.WordsPerMinute > 0 {
		wpmPenalty = math.Min(maxWPMPenalty, math.Abs(sp.WordsPerMinute-targetWPM)*0.5)
	}
	fillerPenalty := math.Min(maxFillerPenalty, float64(sp.FillerCount)*5)
	speechScore := math.Max(0, 100-wpmPenalty-fillerPenalty)

	overall := int(math.Round(
		contentScore*contentWeight +
			visualScore*visualWeight +
			speechScore*speechWeight))

	return CompositeScore{
		ContentScore: contentScore,
		VisualScore:  visualScore,
		SpeechScore:  speechScore,
		OverallScore: overall,
	}
}
