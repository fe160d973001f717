package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/casefile"
	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/service"
)

const (
	toolEvaluateBrain = "evaluate_brain"
	toolEvaluateLiver = "evaluate_liver_biliary"
	toolApplyModality = "apply_modality"
	toolSuggestLesion = "suggest_lesion_differentials"
	toolNormalize     = "normalize_differentials"
	toolComposeReport = "compose_lesion_report"
)

var toolNames = []string{
	toolEvaluateBrain, toolEvaluateLiver, toolApplyModality,
	toolSuggestLesion, toolNormalize, toolComposeReport,
}

// Finding states arrive as plain objects and are decoded with the domain token parsers, so the
// published input schemas stay loose and enum spelling is checked in one place.

type evaluateInput struct {
	Findings map[string]any `json:"findings" jsonschema:"finding state object; enum fields take tokens such as YES, NO, HYPER"`
}

type modalityInput struct {
	Findings map[string]any `json:"findings" jsonschema:"liver/biliary finding state"`
	Modality string         `json:"modality" jsonschema:"target modality: CT, MR or BOTH"`
}

type modalityOutput struct {
	Findings domain.LiverBiliaryFindings `json:"findings"`
	Modality domain.Modality             `json:"modality"`
}

type suggestInput struct {
	Findings      map[string]any   `json:"findings" jsonschema:"lesion findings"`
	Definitive    bool             `json:"definitive,omitempty" jsonschema:"a definitive diagnosis was made"`
	Differentials []map[string]any `json:"differentials,omitempty" jsonschema:"current differential list to merge the suggestions into"`
	Mode          string           `json:"mode,omitempty" jsonschema:"weight mode: LEVEL or PERCENT"`
}

type suggestOutput struct {
	Hints         domain.LesionHints        `json:"hints"`
	FollowUp      domain.FollowUpSuggestion `json:"follow_up"`
	Differentials []domain.Differential     `json:"differentials,omitempty"`
	Advisory      *domain.PercentAdvisory   `json:"advisory,omitempty"`
}

type normalizeInput struct {
	Differentials []map[string]any `json:"differentials" jsonschema:"differentials with name, enabled and percent"`
}

type normalizeOutput struct {
	Differentials []domain.Differential `json:"differentials"`
	Sum           int                   `json:"sum"`
}

type composeInput struct {
	Input map[string]any `json:"input" jsonschema:"lesion report input: findings, differentials, mode, assessment, extra_findings, follow_up, recommendation"`
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolEvaluateBrain,
		Description: "Evaluate a brain MRI/CT finding state. Returns triage, ordered impressions, differentials, next steps and warnings.",
	}, s.handleEvaluateBrain)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolEvaluateLiver,
		Description: "Evaluate a liver, gallbladder and bile duct finding state gated by the exam modality.",
	}, s.handleEvaluateLiver)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolApplyModality,
		Description: "Switch the exam modality of a liver/biliary state and clear the findings of the inactive modality.",
	}, s.handleApplyModality)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolSuggestLesion,
		Description: "Suggest liver lesion differentials and follow-up from imaging features. Optionally merges the suggestions into a differential list.",
	}, s.handleSuggestLesion)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolNormalize,
		Description: "Rescale the percents of enabled differentials so they total exactly 100.",
	}, s.handleNormalize)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        toolComposeReport,
		Description: "Compose the structured liver lesion report text.",
	}, s.handleComposeReport)
}

func (s *Server) toolLogger(tool string) *logrus.Entry {
	return s.logger.WithField("tool", tool)
}

func (s *Server) handleEvaluateBrain(ctx context.Context, _ *sdkmcp.CallToolRequest, in evaluateInput) (*sdkmcp.CallToolResult, any, error) {
	start := time.Now()
	var findings domain.BrainFindings
	if err := casefile.Convert(in.Findings, &findings); err != nil {
		return nil, nil, fmt.Errorf("invalid brain findings: %w", err)
	}

	verdict, err := s.evaluator.EvaluateBrain(ctx, findings)
	if err != nil {
		return nil, nil, err
	}
	s.toolLogger(toolEvaluateBrain).WithField("duration", time.Since(start)).Debug("Tool completed")
	return nil, verdict, nil
}

func (s *Server) handleEvaluateLiver(ctx context.Context, _ *sdkmcp.CallToolRequest, in evaluateInput) (*sdkmcp.CallToolResult, any, error) {
	start := time.Now()
	var findings domain.LiverBiliaryFindings
	if err := casefile.Convert(in.Findings, &findings); err != nil {
		return nil, nil, fmt.Errorf("invalid liver/biliary findings: %w", err)
	}

	verdict, err := s.evaluator.EvaluateLiverBiliary(ctx, findings)
	if err != nil {
		return nil, nil, err
	}
	s.toolLogger(toolEvaluateLiver).WithField("duration", time.Since(start)).Debug("Tool completed")
	return nil, verdict, nil
}

func (s *Server) handleApplyModality(_ context.Context, _ *sdkmcp.CallToolRequest, in modalityInput) (*sdkmcp.CallToolResult, any, error) {
	var findings domain.LiverBiliaryFindings
	if err := casefile.Convert(in.Findings, &findings); err != nil {
		return nil, nil, fmt.Errorf("invalid liver/biliary findings: %w", err)
	}
	var modality domain.Modality
	if err := modality.UnmarshalText([]byte(in.Modality)); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidModality, err)
	}

	return nil, modalityOutput{
		Findings: s.evaluator.ApplyModality(findings, modality),
		Modality: modality,
	}, nil
}

func (s *Server) handleSuggestLesion(_ context.Context, _ *sdkmcp.CallToolRequest, in suggestInput) (*sdkmcp.CallToolResult, any, error) {
	var findings domain.LesionFindings
	if err := casefile.Convert(in.Findings, &findings); err != nil {
		return nil, nil, fmt.Errorf("invalid lesion findings: %w", err)
	}

	out := suggestOutput{
		Hints:    s.evaluator.SuggestLesion(findings),
		FollowUp: s.evaluator.SuggestFollowUp(findings, in.Definitive),
	}

	if len(in.Differentials) > 0 {
		var diffs []domain.Differential
		if err := casefile.Convert(in.Differentials, &diffs); err != nil {
			return nil, nil, fmt.Errorf("invalid differentials: %w", err)
		}
		var mode domain.WeightMode
		if err := mode.UnmarshalText([]byte(in.Mode)); err != nil {
			return nil, nil, err
		}
		out.Differentials = s.evaluator.ApplySuggestions(diffs, out.Hints.Suggestions, mode)
		out.Advisory = service.CheckPercents(out.Differentials, mode)
	}
	return nil, out, nil
}

func (s *Server) handleNormalize(_ context.Context, _ *sdkmcp.CallToolRequest, in normalizeInput) (*sdkmcp.CallToolResult, any, error) {
	var diffs []domain.Differential
	if err := casefile.Convert(in.Differentials, &diffs); err != nil {
		return nil, nil, fmt.Errorf("invalid differentials: %w", err)
	}

	out := s.evaluator.NormalizeDifferentials(diffs)
	return nil, normalizeOutput{Differentials: out, Sum: service.EnabledPercentSum(out)}, nil
}

func (s *Server) handleComposeReport(_ context.Context, _ *sdkmcp.CallToolRequest, in composeInput) (*sdkmcp.CallToolResult, any, error) {
	var input domain.LesionReportInput
	if err := casefile.Convert(in.Input, &input); err != nil {
		return nil, nil, fmt.Errorf("invalid lesion report input: %w", err)
	}
	if len(input.Differentials) == 0 {
		input.Differentials = domain.DefaultDifferentials()
	}

	report := s.evaluator.ComposeLesionReport(input)
	if s.copier != nil {
		s.copier.Copy(report.Report)
	}
	return nil, report, nil
}
