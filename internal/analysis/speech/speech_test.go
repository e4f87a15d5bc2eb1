// internal/analysis/speech/speech_test.go
package speech

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_EmptyTranscript(t *testing.T) {
	m := Compute("", 30)

	assert.Equal(t, 0, m.WordCount)
	assert.Equal(t, 0.0, m.WordsPerMinute)
	assert.Equal(t, 0, m.FillerCount)
}

func TestCompute_TenSecondAnswer(t *testing.T) {
	// 10 words, one filler, 10 seconds: 60 wpm.
	m := Compute("um I think the answer is about system design tradeoffs", 10)

	assert.Equal(t, 10, m.WordCount)
	assert.Equal(t, 60.0, m.WordsPerMinute)
	assert.Equal(t, 1, m.FillerCount)
}

func TestCompute_ZeroDuration(t *testing.T) {
	m := Compute("some words here", 0)

	assert.Equal(t, 3, m.WordCount)
	assert.Equal(t, 0.0, m.WordsPerMinute, "wpm is undefined without a duration")
}

func TestCompute_WPMRounding(t *testing.T) {
	// 7 words over 13 seconds: 32.307... rounds to 32.3.
	m := Compute("one two three four five six seven", 13)

	assert.Equal(t, 32.3, m.WordsPerMinute)
}

func TestCompute_FillerCounting(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       int
	}{
		{
			name:       "case insensitive",
			transcript: "Um, I was Like, you know, just thinking",
			want:       3,
		},
		{
			name:       "multi word phrase",
			transcript: "you know it was you know difficult",
			want:       2,
		},
		{
			name:       "substring occurrences count",
			transcript: "I was drumming alike melody",
			want:       2, // "um" inside "drumming", "like" inside "alike"
		},
		{
			name:       "mixed sentence",
			transcript: "Um, I think uh this is basically correct, um.",
			want:       4, // "um" twice, "uh" once, "basically" once
		},
		{
			name:       "no fillers",
			transcript: "the project shipped on schedule",
			want:       0,
		},
		{
			name:       "repeated same filler",
			transcript: "um um um",
			want:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.transcript, 60)
			assert.Equal(t, tt.want, m.FillerCount)
		})
	}
}

func TestCompute_LongTranscript(t *testing.T) {
	transcript := strings.TrimSpace(strings.Repeat("word ", 260))
	m := Compute(transcript, 120)

	assert.Equal(t, 260, m.WordCount)
	assert.Equal(t, 130.0, m.WordsPerMinute)
}
