// internal/analysis/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-analyzer/internal/analysis/evaluate"
	"interview-analyzer/internal/analysis/scoring"
	"interview-analyzer/internal/analysis/speech"
	"interview-analyzer/internal/analysis/transcribe"
	"interview-analyzer/internal/common/errors"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/common/metrics"
	"interview-analyzer/internal/common/observability"
	"interview-analyzer/internal/media"
)

// ==========================
// ANALYSIS PIPELINE
// ==========================

// Request describes one recorded answer to analyze.
type Request struct {
	MediaPath         string
	DurationSeconds   float64
	QuestionID        string
	QuestionText      string
	Role              string
	CandidateName     string
	ExperienceYears   string
	SalaryExpectation string
}

// Result is the complete analysis record for one answer. Partial signal
// failures are carried in the per-signal error fields; the record itself is
// always fully shaped.
type Result struct {
	AnalysisID string `json:"analysisId"`
	QuestionID string `json:"questionId,omitempty"`

	Transcript string                 `json:"transcript"`
	Speech     speech.Metrics         `json:"speechMetrics"`
	Visual     scoring.VisualMetrics  `json:"visualMetrics"`
	Evaluation evaluate.Result        `json:"evaluation"`
	Composite  scoring.CompositeScore `json:"composite"`

	TranscriptionError *errors.StandardError `json:"transcriptionError,omitempty"`
	EvaluationError    *errors.StandardError `json:"evaluationError,omitempty"`
	VisualError        *errors.StandardError `json:"visualError,omitempty"`
}

// Analyzer runs the three analysis signals for a recording and joins them
// into one composite score.
type Analyzer struct {
	extractor   media.AudioExtractor
	transcriber *transcribe.Transcriber
	evaluator   *evaluate.Evaluator
	visual      media.VisualAnalyzer
	obs         *observability.Observability
	logger      logger.Logger
}

func NewAnalyzer(
	extractor media.AudioExtractor,
	transcriber *transcribe.Transcriber,
	evaluator *evaluate.Evaluator,
	visual media.VisualAnalyzer,
	obs *observability.Observability,
	log logger.Logger,
) *Analyzer {
	return &Analyzer{
		extractor:   extractor,
		transcriber: transcriber,
		evaluator:   evaluator,
		visual:      visual,
		obs:         obs,
		logger:      log,
	}
}

// Analyze produces the analysis record for one answer. Visual analysis runs
// concurrently with the transcription and evaluation chain; the composite
// score is the synchronous join. The returned Result is complete even when
// individual signals fail.
func (a *Analyzer) Analyze(ctx context.Context, req Request) *Result {
	start := time.Now()
	result := &Result{
		AnalysisID: uuid.New().String(),
		QuestionID: req.QuestionID,
	}

	metrics.AnalysesActive.Inc()
	defer metrics.AnalysesActive.Dec()

	a.logger.Info("Starting analysis", map[string]interface{}{
		"analysis_id": result.AnalysisID,
		"media_path":  req.MediaPath,
	})

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		a.runVisual(ctx, req, result)
	}()

	go func() {
		defer wg.Done()
		a.runSpeechChain(ctx, req, result)
	}()

	wg.Wait()

	result.Composite = scoring.Score(result.Evaluation.Score, result.Visual, result.Speech)

	status := "completed"
	if result.TranscriptionError != nil || result.EvaluationError != nil {
		status = "degraded"
	}
	metrics.AnalysesTotal.WithLabelValues(status).Inc()
	if a.obs != nil {
		a.obs.RecordAnalysisProcessed(ctx, status)
		a.obs.RecordAnalysisDuration(ctx, time.Since(start), status)
	}

	a.logger.Info("Analysis finished", map[string]interface{}{
		"analysis_id":   result.AnalysisID,
		"status":        status,
		"overall_score": result.Composite.OverallScore,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return result
}

func (a *Analyzer) runVisual(ctx context.Context, req Request, result *Result) {
	if a.visual == nil {
		result.VisualError = errors.NewVisualAnalysisFailedError("no visual analyzer configured")
		return
	}
	visual, err := a.visual.Analyze(ctx, req.MediaPath)
	if err != nil {
		result.VisualError = err
		return
	}
	result.Visual = visual
}

// runSpeechChain runs extraction, transcription and evaluation in order.
// Audio extraction failure is fatal to this chain only; evaluation still
// runs on an empty transcript when transcription failed, matching the rule
// that every answer gets a fully-shaped record.
func (a *Analyzer) runSpeechChain(ctx context.Context, req Request, result *Result) {
	audio, extractErr := a.extractor.Extract(ctx, req.MediaPath)
	if extractErr != nil {
		result.TranscriptionError = extractErr
	} else {
		transcript, err := a.transcriber.Transcribe(ctx, audio)
		if err != nil {
			result.TranscriptionError = err
		} else {
			result.Transcript = transcript
		}
	}

	result.Speech = speech.Compute(result.Transcript, req.DurationSeconds)

	evalResult, evalErr := a.evaluator.Evaluate(ctx, evaluate.Request{
		Question:          req.QuestionText,
		Transcript:        result.Transcript,
		Role:              req.Role,
		CandidateName:     req.CandidateName,
		ExperienceYears:   req.ExperienceYears,
		SalaryExpectation: req.SalaryExpectation,
		Speech:            &result.Speech,
	})
	result.Evaluation = evalResult
	result.EvaluationError = evalErr
}
