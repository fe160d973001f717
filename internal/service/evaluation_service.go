package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/domain"
)

// EvaluationService is the entry point used by the HTTP, MCP and CLI surfaces. It wraps the pure
// evaluators with structured logging and optional verdict memoization.
type EvaluationService struct {
	logger *logrus.Logger
	brain  *BrainEvaluator
	liver  *LiverBiliaryEvaluator
	cache  domain.VerdictCache
}

var _ domain.Evaluator = (*EvaluationService)(nil)

// NewEvaluationService creates an evaluation service. cache may be nil.
func NewEvaluationService(logger *logrus.Logger, cache domain.VerdictCache) *EvaluationService {
	return &EvaluationService{
		logger: logger,
		brain:  NewBrainEvaluator(),
		liver:  NewLiverBiliaryEvaluator(),
		cache:  cache,
	}
}

// EvaluateBrain evaluates a neuro finding state.
func (s *EvaluationService) EvaluateBrain(ctx context.Context, findings domain.BrainFindings) (*domain.Verdict, error) {
	return s.evaluate(ctx, domain.ModuleBrain, findings, func() domain.Verdict {
		return s.brain.Evaluate(findings)
	})
}

// EvaluateLiverBiliary gates the state on its own exam modality and evaluates it.
func (s *EvaluationService) EvaluateLiverBiliary(ctx context.Context, findings domain.LiverBiliaryFindings) (*domain.Verdict, error) {
	gated := ApplyModality(findings, findings.Exam.Modality)
	return s.evaluate(ctx, domain.ModuleLiverBiliary, gated, func() domain.Verdict {
		return s.liver.Evaluate(gated)
	})
}

// ApplyModality switches the liver/biliary state to modality m.
func (s *EvaluationService) ApplyModality(findings domain.LiverBiliaryFindings, m domain.Modality) domain.LiverBiliaryFindings {
	s.logger.WithFields(logrus.Fields{
		"from": findings.Exam.Modality.String(),
		"to":   m.String(),
	}).Debug("Applying modality gate")
	return ApplyModality(findings, m)
}

// SuggestLesion returns lesion hints and suggested differentials.
func (s *EvaluationService) SuggestLesion(findings domain.LesionFindings) domain.LesionHints {
	hints := SuggestLesion(findings)
	s.logger.WithFields(logrus.Fields{
		"hints":       len(hints.Hints),
		"suggestions": len(hints.Suggestions),
	}).Debug("Lesion hints derived")
	return hints
}

// SuggestFollowUp returns the recommended lesion follow-up.
func (s *EvaluationService) SuggestFollowUp(findings domain.LesionFindings, definitive bool) domain.FollowUpSuggestion {
	return SuggestFollowUp(findings, definitive)
}

// NormalizeDifferentials rescales enabled percents to a total of 100.
func (s *EvaluationService) NormalizeDifferentials(diffs []domain.Differential) []domain.Differential {
	out := NormalizePercents(diffs)
	s.logger.WithFields(logrus.Fields{
		"before": EnabledPercentSum(diffs),
		"after":  EnabledPercentSum(out),
	}).Debug("Differentials normalized")
	return out
}

// ApplySuggestions merges suggestions into the differential list.
func (s *EvaluationService) ApplySuggestions(diffs []domain.Differential, suggestions []domain.SuggestedDifferential, mode domain.WeightMode) []domain.Differential {
	return ApplySuggestions(diffs, suggestions, mode)
}

// ComposeLesionReport renders the lesion report.
func (s *EvaluationService) ComposeLesionReport(input domain.LesionReportInput) domain.LesionReport {
	report := ComposeLesionReport(input)
	fields := logrus.Fields{
		"follow_up": report.FollowUp.FollowUp.String(),
		"hints":     len(report.Hints.Hints),
	}
	if report.Advisory != nil {
		fields["percent_sum"] = report.Advisory.Sum
	}
	s.logger.WithFields(fields).Info("Lesion report composed")
	return report
}

// evaluate runs eval, consulting the verdict cache first. Cache errors are logged and treated
// as misses.
func (s *EvaluationService) evaluate(ctx context.Context, module domain.Module, input any, eval func() domain.Verdict) (*domain.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s evaluation cancelled: %w", module, err)
	}
	startTime := time.Now()

	key, keyErr := VerdictCacheKey(module, input)
	if keyErr != nil {
		s.logger.WithError(keyErr).WithField("module", module).Warn("Failed to derive verdict cache key")
	}

	if s.cache != nil && keyErr == nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var cached domain.Verdict
			err := json.Unmarshal(data, &cached)
			if err == nil {
				s.logger.WithFields(logrus.Fields{
					"module":    module,
					"cache_key": key,
				}).Debug("Verdict cache hit")
				return &cached, nil
			}
			s.logger.WithError(err).WithField("cache_key", key).Warn("Discarding undecodable cached verdict")
		}
	}

	verdict := eval()

	if s.cache != nil && keyErr == nil {
		if data, err := json.Marshal(verdict); err == nil {
			if err := s.cache.Set(ctx, key, data); err != nil {
				s.logger.WithError(err).WithField("cache_key", key).Warn("Failed to cache verdict")
			}
		}
	}

	fields := logrus.Fields(verdict.LogFields())
	fields["processing_time"] = time.Since(startTime)
	fields["matched_rules"] = len(verdict.MatchedRules)
	s.logger.WithFields(fields).Info("Evaluation completed")

	return &verdict, nil
}

// VerdictCacheKey derives the memoization key for an input snapshot: the module name followed
// by the SHA-256 of the input's JSON encoding.
func VerdictCacheKey(module domain.Module, input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s input: %w", module, err)
	}
	sum := sha256.Sum256(data)
	return string(module) + ":" + hex.EncodeToString(sum[:]), nil
}
