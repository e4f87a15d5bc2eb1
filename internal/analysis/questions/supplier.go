// internal/analysis/questions/supplier.go
package questions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"interview-analyzer/internal/analysis/evaluate"
	"interview-analyzer/internal/common/cache"
	"interview-analyzer/internal/common/config"
	"interview-analyzer/internal/common/logger"
	"interview-analyzer/internal/inference"
)

// ==========================
// QUESTION SUPPLIER
// ==========================

const (
	SourceDynamic = "dynamic"
	SourceStatic  = "static"
)

// Profile describes the candidate the questions are tailored to.
type Profile struct {
	Role            string   `json:"role"`
	ExperienceYears float64  `json:"experienceYears"`
	Skills          []string `json:"skills,omitempty"`
}

// Set is one supplied question list. Source says whether the questions were
// model-generated or came from the static bank, so callers can tell a
// degraded response apart from a tailored one.
type Set struct {
	Questions []Question `json:"questions"`
	Source    string     `json:"source"`
}

// Supplier produces interview questions, preferring model-generated sets and
// degrading to the static bank when generation fails. Generated sets are
// cached in Redis keyed by the candidate profile so repeat sessions for the
// same profile do not burn model quota.
type Supplier struct {
	client   *inference.Client
	cfg      config.EndpointConfig
	bank     *Bank
	cache    *cache.RedisClient
	cacheTTL int
	count    int
	logger   logger.Logger
}

func NewSupplier(client *inference.Client, cfg config.EndpointConfig, bank *Bank, redis *cache.RedisClient, qcfg config.QuestionsConfig, log logger.Logger) *Supplier {
	return &Supplier{
		client:   client,
		cfg:      cfg,
		bank:     bank,
		cache:    redis,
		cacheTTL: qcfg.CacheTTL,
		count:    qcfg.DefaultCount,
		logger:   log,
	}
}

// Supply returns a question set for the profile. It never returns an error:
// any failure along the dynamic path falls through to the static bank, and
// only an empty bank yields an empty static set.
func (s *Supplier) Supply(ctx context.Context, profile Profile) Set {
	key := s.cacheKey(profile)

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached
	}

	if generated := s.generate(ctx, profile); len(generated) > 0 {
		set := Set{Questions: generated, Source: SourceDynamic}
		s.toCache(ctx, key, set)
		return set
	}

	s.logger.Warn("Question generation unavailable, using static bank", map[string]interface{}{
		"role": profile.Role,
	})
	return Set{
		Questions: s.bank.ForRole(profile.Role, s.count),
		Source:    SourceStatic,
	}
}

func (s *Supplier) cacheKey(profile Profile) string {
	fingerprint := fmt.Sprintf("%s|%s|%s",
		NormalizeRole(profile.Role),
		strconv.FormatFloat(profile.ExperienceYears, 'f', 1, 64),
		strings.ToLower(strings.Join(profile.Skills, ",")))
	sum := sha256.Sum256([]byte(fingerprint))
	return "questions:" + hex.EncodeToString(sum[:16])
}

func (s *Supplier) fromCache(ctx context.Context, key string) (Set, bool) {
	if s.cache == nil {
		return Set{}, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return Set{}, false
	}
	var set Set
	if err := json.Unmarshal([]byte(raw), &set); err != nil || len(set.Questions) == 0 {
		return Set{}, false
	}
	return set, true
}

func (s *Supplier) toCache(ctx context.Context, key string, set Set) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(set)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), config.GetDuration(s.cacheTTL)); err != nil {
		s.logger.Warn("Question cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

type generatedSet struct {
	Questions []string `json:"questions"`
}

// generate asks the evaluation model for a tailored question set. Any
// failure returns nil so the caller falls back to the bank.
func (s *Supplier) generate(ctx context.Context, profile Profile) []Question {
	body, err := json.Marshal(map[string]interface{}{
		"model": s.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": s.generationPrompt(profile)},
		},
		"temperature": s.cfg.Temperature,
		"max_tokens":  s.cfg.MaxTokens,
	})
	if err != nil {
		return nil
	}

	outcome := s.client.Call(ctx, inference.Request{
		Endpoint:    "questions",
		URL:         s.cfg.BaseURL + "/chat/completions",
		Body:        body,
		ContentType: "application/json",
		Timeout:     config.GetDuration(s.cfg.Timeout),
	})
	if !outcome.Success() {
		return nil
	}

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(outcome.Body, &envelope); err != nil || len(envelope.Choices) == 0 {
		return nil
	}

	var set generatedSet
	candidate := evaluate.CandidateJSON(envelope.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(candidate), &set); err != nil || len(set.Questions) == 0 {
		return nil
	}

	if len(set.Questions) > s.count {
		set.Questions = set.Questions[:s.count]
	}
	qs := make([]Question, 0, len(set.Questions))
	for _, text := range set.Questions {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		qs = append(qs, Question{
			ID:         uuid.New().String(),
			Role:       profile.Role,
			Text:       text,
			Difficulty: difficultyFor(profile.ExperienceYears),
		})
	}
	return qs
}

func (s *Supplier) generationPrompt(profile Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d interview questions for a %s candidate with %.1f years of experience.\n",
		s.count, profile.Role, profile.ExperienceYears)
	if len(profile.Skills) > 0 {
		fmt.Fprintf(&b, "Key skills: %s.\n", strings.Join(profile.Skills, ", "))
	}
	fmt.Fprintf(&b, "Difficulty guidance: %s.\n", difficultyGuidance(profile.ExperienceYears))
	b.WriteString(`Respond with ONLY a JSON object: {"questions": ["<question 1>", "<question 2>", ...]}`)
	return b.String()
}

// difficultyGuidance mirrors how difficulty scales with seniority: juniors
// get mostly fundamentals, seniors get design and tradeoff questions.
func difficultyGuidance(years float64) string {
	switch {
	case years < 2:
		return "easy to medium, focus on fundamentals and basic problem solving"
	case years < 5:
		return "medium to hard, mix practical scenarios with some depth"
	default:
		return "hard, emphasize system design, tradeoffs and leadership situations"
	}
}

func difficultyFor(years float64) string {
	switch {
	case years < 2:
		return "easy"
	case years < 5:
		return "medium"
	default:
		return "hard"
	}
}
