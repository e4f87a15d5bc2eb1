// cmd/analyzer/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"interview-analyzer/internal/analysis/evaluate"
	"interview-analyzer/internal/analysis/pipeline"
	"interview-analyzer/internal/analysis/questions"
	"interview-analyzer/internal/analysis/transcribe"
	"interview-analyzer/internal/common/cache"
	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/common/observability"
	"interview-analyzer/internal/inference"
	"interview-analyzer/internal/media"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	mediaPath := flag.String("media", "", "path to the recorded answer")
	duration := flag.Float64("duration", 0, "answer duration in seconds")
	role := flag.String("role", "", "target role")
	questionText := flag.String("question", "", "question that was asked (omit to pick from the supplier)")
	candidateName := flag.String("candidate", "", "candidate name")
	experience := flag.String("experience", "", "years of experience")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting analyzer",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if *mediaPath == "" {
		zapLog.Fatal("missing required -media flag")
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis (question cache is optional) ---
	var redis *cache.RedisClient
	if cfg.Cache.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = cache.NewRedis(cfg.Cache)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, question caching disabled", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	// --- Wire the pipeline ---
	transcriptionClient := inference.NewClient(cfg.APIs.Transcription.APIKey, "Token", cfg.Inference, log)
	evaluationClient := inference.NewClient(cfg.APIs.Evaluation.APIKey, "Bearer", cfg.Inference, log)

	transcriber := transcribe.NewTranscriber(transcriptionClient, cfg.APIs.Transcription, log)
	evaluator := evaluate.NewEvaluator(evaluationClient, cfg.APIs.Evaluation, log)
	extractor := media.NewFFmpegExtractor(cfg.Media.FFmpegPath, log)

	var visual media.VisualAnalyzer
	if cfg.Visual.BaseURL != "" {
		visual = media.NewHTTPVisualAnalyzer(cfg.Visual, log)
	}

	bank, bankErr := questions.LoadBank(cfg.Questions.BankPath)
	if bankErr != nil {
		zapLog.Fatal("question bank load failed", zap.String("details", bankErr.Details))
	}

	analyzer := pipeline.NewAnalyzer(extractor, transcriber, evaluator, visual, obs, log)

	// --- Resolve the question ---
	questionID := ""
	text := *questionText
	if text == "" {
		supplier := questions.NewSupplier(evaluationClient, cfg.APIs.Evaluation, bank, redis, cfg.Questions, log)
		set := supplier.Supply(ctx, questions.Profile{
			Role:            *role,
			ExperienceYears: parseYears(*experience),
		})
		if len(set.Questions) == 0 {
			zapLog.Fatal("no questions available for role", zap.String("role", *role))
		}
		zapLog.Info("Question selected",
			zap.String("source", set.Source),
			zap.String("question_id", set.Questions[0].ID),
		)
		questionID = set.Questions[0].ID
		text = set.Questions[0].Text
	}

	// --- Run the analysis ---
	result := analyzer.Analyze(ctx, pipeline.Request{
		MediaPath:       *mediaPath,
		DurationSeconds: *duration,
		QuestionID:      questionID,
		QuestionText:    text,
		Role:            *role,
		CandidateName:   *candidateName,
		ExperienceYears: *experience,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		zapLog.Fatal("result marshal failed", zap.Error(err))
	}
	fmt.Println(string(out))
}

func parseYears(s string) float64 {
	var years float64
	fmt.Sscanf(s, "%g", &years)
	return years
}
