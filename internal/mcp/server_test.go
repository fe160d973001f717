package mcp

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/service"
)

type recordingCopier struct {
	mu    sync.Mutex
	texts []string
}

func (c *recordingCopier) Copy(text string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	done := make(chan struct{})
	close(done)
	return done
}

func connectInMemory(t *testing.T, opts ...Option) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	srv := NewServer(domain.MCPConfig{ServerName: "radassist", ServerVersion: "test"},
		service.NewEvaluationService(logger, nil), logger, opts...)

	t1, t2 := sdkmcp.NewInMemoryTransports()
	_, err := srv.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

// callTool calls name and decodes the text content into out.
func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool %s failed: %s", name, textOf(res))
	require.NoError(t, json.Unmarshal([]byte(textOf(res)), out))
}

func callToolExpectError(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return err.Error()
	}
	require.True(t, res.IsError, "expected %s to fail", name)
	return textOf(res)
}

func textOf(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListTools(t *testing.T) {
	session := connectInMemory(t)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
	want := append([]string(nil), toolNames...)
	sort.Strings(want)
	sort.Strings(names)
	assert.Equal(t, want, names)
}

func TestEvaluateBrainTool(t *testing.T) {
	session := connectInMemory(t)

	var verdict domain.Verdict
	callTool(t, session, toolEvaluateBrain, map[string]any{
		"findings": map[string]any{
			"stroke": map[string]any{"dwi_bright": "YES", "adc_low": "YES", "flair_change": "NO"},
		},
	}, &verdict)

	assert.Equal(t, domain.TriageEmergent, verdict.Triage)
	assert.Contains(t, verdict.MatchedRules, "NEURO-ISCH-ACUTE")
}

func TestEvaluateLiverTool(t *testing.T) {
	session := connectInMemory(t)

	var verdict domain.Verdict
	callTool(t, session, toolEvaluateLiver, map[string]any{
		"findings": map[string]any{"exam": map[string]any{"modality": "CT"}},
	}, &verdict)

	assert.True(t, verdict.IsPlaceholder())
}

func TestEvaluateTool_InvalidToken(t *testing.T) {
	session := connectInMemory(t)

	msg := callToolExpectError(t, session, toolEvaluateBrain, map[string]any{
		"findings": map[string]any{"stroke": map[string]any{"dwi_bright": "maybe"}},
	})
	assert.Contains(t, msg, "invalid brain findings")
}

func TestApplyModalityTool(t *testing.T) {
	session := connectInMemory(t)

	var out modalityOutput
	callTool(t, session, toolApplyModality, map[string]any{
		"modality": "MR",
		"findings": map[string]any{
			"exam":  map[string]any{"modality": "CT", "ct_phase": "ARTERIAL"},
			"liver": map[string]any{"ct": map[string]any{"washout": "YES"}},
		},
	}, &out)

	assert.Equal(t, domain.ModalityMR, out.Modality)
	assert.Equal(t, domain.CTPhaseUnknown, out.Findings.Exam.CTPhase)
	assert.Equal(t, domain.LiverCT{}, out.Findings.Liver.CT)

	msg := callToolExpectError(t, session, toolApplyModality, map[string]any{
		"modality": "PET",
		"findings": map[string]any{},
	})
	assert.Contains(t, msg, "invalid modality")
}

func TestSuggestLesionTool(t *testing.T) {
	session := connectInMemory(t)

	var out suggestOutput
	callTool(t, session, toolSuggestLesion, map[string]any{
		"findings": map[string]any{"diffusion": "RESTRICTED"},
	}, &out)
	require.Len(t, out.Hints.Suggestions, 2)
	assert.Equal(t, domain.FollowUpDynamicMRI, out.FollowUp.FollowUp)
	assert.Empty(t, out.Differentials)

	callTool(t, session, toolSuggestLesion, map[string]any{
		"findings": map[string]any{"diffusion": "RESTRICTED"},
		"mode":     "PERCENT",
		"differentials": []map[string]any{
			{"name": "HEMANGIOMA", "enabled": true, "percent": 50},
		},
	}, &out)
	require.Len(t, out.Differentials, 1)
	assert.Nil(t, out.Advisory)
	assert.Equal(t, 100, out.Differentials[0].Percent)
}

func TestNormalizeTool(t *testing.T) {
	session := connectInMemory(t)

	var out normalizeOutput
	callTool(t, session, toolNormalize, map[string]any{
		"differentials": []map[string]any{
			{"name": "HCC", "enabled": true, "percent": 0},
			{"name": "FNH", "enabled": true, "percent": 0},
			{"name": "ADENOMA", "enabled": true, "percent": 0},
		},
	}, &out)

	assert.Equal(t, 100, out.Sum)
	assert.Equal(t, []int{34, 33, 33}, []int{
		out.Differentials[0].Percent, out.Differentials[1].Percent, out.Differentials[2].Percent,
	})
}

func TestComposeReportTool(t *testing.T) {
	copier := &recordingCopier{}
	session := connectInMemory(t, WithReportCopier(copier))

	var report domain.LesionReport
	callTool(t, session, toolComposeReport, map[string]any{
		"input": map[string]any{
			"findings":   map[string]any{"segment": "S7", "size": "18", "morphology": "SOLID"},
			"assessment": map[string]any{"confidence": "MEDIUM"},
		},
	}, &report)

	assert.Contains(t, report.Report, "At liver segment S7")
	copier.mu.Lock()
	defer copier.mu.Unlock()
	require.Len(t, copier.texts, 1)
	assert.Equal(t, report.Report, copier.texts[0])
}
