package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
)

type fakeVerdictCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	gets   int
	hits   int
	setErr error
}

func newFakeVerdictCache() *fakeVerdictCache {
	return &fakeVerdictCache{data: make(map[string][]byte)}
}

func (c *fakeVerdictCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *fakeVerdictCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func acuteInfarctFindings() domain.BrainFindings {
	return domain.BrainFindings{Stroke: domain.StrokeFindings{
		DWIBright:   domain.FindingYes,
		ADCLow:      domain.FindingYes,
		FLAIRChange: domain.FindingNo,
	}}
}

func TestEvaluationService_EvaluateBrain(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := NewEvaluationService(logger, nil)

	verdict, err := svc.EvaluateBrain(context.Background(), acuteInfarctFindings())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.Equal(t, domain.ModuleBrain, verdict.Module)
	assert.Equal(t, domain.TriageEmergent, verdict.Triage)
	assert.Contains(t, verdict.MatchedRules, "NEURO-ISCH-ACUTE")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Evaluation completed", entry.Message)
	assert.Equal(t, "EMERGENT", entry.Data["triage"])
	assert.Equal(t, "brain", entry.Data["module"])
	assert.Contains(t, entry.Data, "processing_time")
}

func TestEvaluationService_Deterministic(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := NewEvaluationService(logger, nil)
	ctx := context.Background()

	first, err := svc.EvaluateLiverBiliary(ctx, ctLesion(domain.LiverCT{
		Attenuation: domain.IntensityHypo,
		Enhancement: domain.CTEnhancementNone,
	}))
	require.NoError(t, err)
	second, err := svc.EvaluateLiverBiliary(ctx, ctLesion(domain.LiverCT{
		Attenuation: domain.IntensityHypo,
		Enhancement: domain.CTEnhancementNone,
	}))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("verdicts differ between identical calls (-first +second):\n%s", diff)
	}
}

func TestEvaluationService_GatesOnExamModality(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := NewEvaluationService(logger, nil)

	// A CT exam still carrying a stale MR hemangioma pattern must not read it.
	state := populatedLiverState()
	state.Exam.Modality = domain.ModalityCT
	state.Liver.CT = domain.LiverCT{}
	state.Liver.MR.T1Signal = domain.IntensityIso

	verdict, err := svc.EvaluateLiverBiliary(context.Background(), state)
	require.NoError(t, err)
	assert.NotContains(t, verdict.MatchedRules, "LIVER-HEMANGIOMA")
}

func TestEvaluationService_Cache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cache := newFakeVerdictCache()
	svc := NewEvaluationService(logger, cache)
	ctx := context.Background()

	fresh, err := svc.EvaluateBrain(ctx, acuteInfarctFindings())
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
	assert.Len(t, cache.data, 1)

	cached, err := svc.EvaluateBrain(ctx, acuteInfarctFindings())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	if diff := cmp.Diff(fresh, cached, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cached verdict differs (-fresh +cached):\n%s", diff)
	}

	// A different input is a different key.
	_, err = svc.EvaluateBrain(ctx, domain.BrainFindings{})
	require.NoError(t, err)
	assert.Len(t, cache.data, 2)
}

func TestEvaluationService_CacheFailuresAreMisses(t *testing.T) {
	t.Run("set error", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		cache := newFakeVerdictCache()
		cache.setErr = errors.New("connection refused")
		svc := NewEvaluationService(logger, cache)

		verdict, err := svc.EvaluateBrain(context.Background(), acuteInfarctFindings())
		require.NoError(t, err)
		assert.Equal(t, domain.TriageEmergent, verdict.Triage)

		var warned bool
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && e.Message == "Failed to cache verdict" {
				warned = true
			}
		}
		assert.True(t, warned)
	})

	t.Run("undecodable entry", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		cache := newFakeVerdictCache()
		svc := NewEvaluationService(logger, cache)

		key, err := VerdictCacheKey(domain.ModuleBrain, acuteInfarctFindings())
		require.NoError(t, err)
		cache.data[key] = []byte("{not json")

		verdict, err := svc.EvaluateBrain(context.Background(), acuteInfarctFindings())
		require.NoError(t, err)
		assert.Contains(t, verdict.MatchedRules, "NEURO-ISCH-ACUTE")
		assert.Equal(t, "Discarding undecodable cached verdict", hook.Entries[0].Message)

		// the recomputed verdict replaced the broken entry
		assert.True(t, strings.HasPrefix(string(cache.data[key]), "{"))
		assert.NotEqual(t, "{not json", string(cache.data[key]))
	})
}

func TestEvaluationService_Cancelled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cache := newFakeVerdictCache()
	svc := NewEvaluationService(logger, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict, err := svc.EvaluateBrain(ctx, acuteInfarctFindings())
	assert.Nil(t, verdict)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "brain evaluation cancelled")
	assert.Zero(t, cache.gets)
}

func TestVerdictCacheKey(t *testing.T) {
	a, err := VerdictCacheKey(domain.ModuleBrain, acuteInfarctFindings())
	require.NoError(t, err)
	b, err := VerdictCacheKey(domain.ModuleBrain, acuteInfarctFindings())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "brain:"))
	assert.Len(t, a, len("brain:")+64)

	other, err := VerdictCacheKey(domain.ModuleLiverBiliary, acuteInfarctFindings())
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	_, err = VerdictCacheKey(domain.ModuleBrain, make(chan int))
	assert.Error(t, err)
}

func TestEvaluationService_LesionOperations(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc := NewEvaluationService(logger, nil)

	hints := svc.SuggestLesion(domain.LesionFindings{Diffusion: domain.DiffusionRestricted})
	assert.Len(t, hints.Suggestions, 2)

	diffs := svc.ApplySuggestions(domain.DefaultDifferentials(), hints.Suggestions, domain.WeightModePercent)
	assert.Equal(t, PercentTotal, EnabledPercentSum(diffs))
	assert.Equal(t, diffs, svc.NormalizeDifferentials(diffs))

	report := svc.ComposeLesionReport(domain.LesionReportInput{
		Findings:      domain.LesionFindings{Diffusion: domain.DiffusionRestricted},
		Differentials: diffs,
		Mode:          domain.WeightModePercent,
	})
	assert.Nil(t, report.Advisory)
	assert.Equal(t, domain.FollowUpDynamicMRI, svc.SuggestFollowUp(domain.LesionFindings{}, false).FollowUp)
	assert.Equal(t, "Lesion report composed", hook.LastEntry().Message)
}
