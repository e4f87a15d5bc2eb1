// internal/analysis/speech/speech.go

// Package speech computes delivery metrics from a transcript. It is a pure
// function over text and duration with no external dependencies.
package speech

import (
	"math"
	"strings"
)

// Metrics holds the per-answer speech delivery measurements.
type Metrics struct {
	WordCount      int     `json:"wordCount"`
	WordsPerMinute float64 `json:"wordsPerMinute"`
	FillerCount    int     `json:"fillerCount"`
}

// fillerPhrases are matched as lowercase substrings, not aligned tokens, so
// "like" inside a longer word still counts. That mirrors the documented
// counting rule; do not switch to token matching.
var fillerPhrases = []string{"um", "uh", "like", "you know", "actually", "basically", "literally"}

// Compute returns all-zero metrics for an empty transcript. WordsPerMinute is
// zero whenever durationSeconds is non-positive, regardless of length.
func Compute(transcript string, durationSeconds float64) Metrics {
	if transcript == "" {
		return Metrics{}
	}

	words := strings.Fields(transcript)
	wordCount := len(words)

	wpm := 0.0
	if durationSeconds > 0 {
		wpm = float64(wordCount) / (durationSeconds / 60.0)
		wpm = math.Round(wpm*10) / 10
	}

	lowered := strings.ToLower(transcript)
	fillerCount := 0
	for _, filler := range fillerPhrases {
		fillerCount += strings.Count(lowered, filler)
	}

	return Metrics{
		WordCount:      wordCount,
		WordsPerMinute: wpm,
		FillerCount:    fillerCount,
	}
}
