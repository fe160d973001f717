package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/domain"
)

// engineContext holds state for a single scenario
type engineContext struct {
	svc *EvaluationService

	brain   *domain.BrainFindings
	liver   *domain.LiverBiliaryFindings
	verdict *domain.Verdict

	diffs []domain.Differential
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	ec := &engineContext{}

	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		logger := logrus.New()
		logger.SetLevel(logrus.FatalLevel)
		*ec = engineContext{svc: NewEvaluationService(logger, nil)}
		return ctx, nil
	})

	sc.Step(`^a brain finding state:$`, ec.aBrainFindingState)
	sc.Step(`^a liver/biliary finding state:$`, ec.aLiverFindingState)
	sc.Step(`^the state is evaluated$`, ec.theStateIsEvaluated)
	sc.Step(`^an impression "([^"]*)" is reported with urgency "([^"]*)"$`, ec.anImpressionIsReportedWithUrgency)
	sc.Step(`^the impression "([^"]*)" reads "([^"]*)"$`, ec.theImpressionReads)
	sc.Step(`^the reasoning of "([^"]*)" mentions "([^"]*)"$`, ec.theReasoningMentions)
	sc.Step(`^the primary impression is "([^"]*)"$`, ec.thePrimaryImpressionIs)
	sc.Step(`^only the placeholder impression is reported$`, ec.onlyThePlaceholderIsReported)
	sc.Step(`^the triage is "([^"]*)"$`, ec.theTriageIs)
	sc.Step(`^the differentials include "([^"]*)"$`, ec.theDifferentialsInclude)
	sc.Step(`^a warning mentions "([^"]*)"$`, ec.aWarningMentions)

	sc.Step(`^the differentials:$`, ec.theDifferentials)
	sc.Step(`^the differentials are normalized$`, ec.theDifferentialsAreNormalized)
	sc.Step(`^the enabled percents sum to (\d+)$`, ec.theEnabledPercentsSumTo)
	sc.Step(`^the percent of "([^"]*)" is (\d+)$`, ec.thePercentOfIs)

	sc.Step(`^the modality is switched to "([^"]*)"$`, ec.theModalityIsSwitchedTo)
	sc.Step(`^no MR finding remains$`, ec.noMRFindingRemains)
	sc.Step(`^the CT phase is "([^"]*)"$`, ec.theCTPhaseIs)
	sc.Step(`^the MR T2 signal is "([^"]*)"$`, ec.theMRT2SignalIs)
}

func (ec *engineContext) aBrainFindingState(doc *godog.DocString) error {
	var f domain.BrainFindings
	if err := json.Unmarshal([]byte(doc.Content), &f); err != nil {
		return fmt.Errorf("invalid brain state: %w", err)
	}
	ec.brain = &f
	return nil
}

func (ec *engineContext) aLiverFindingState(doc *godog.DocString) error {
	var f domain.LiverBiliaryFindings
	if err := json.Unmarshal([]byte(doc.Content), &f); err != nil {
		return fmt.Errorf("invalid liver/biliary state: %w", err)
	}
	ec.liver = &f
	return nil
}

func (ec *engineContext) theStateIsEvaluated(ctx context.Context) error {
	var err error
	switch {
	case ec.brain != nil:
		ec.verdict, err = ec.svc.EvaluateBrain(ctx, *ec.brain)
	case ec.liver != nil:
		ec.verdict, err = ec.svc.EvaluateLiverBiliary(ctx, *ec.liver)
	default:
		return fmt.Errorf("no finding state given")
	}
	return err
}

func (ec *engineContext) impression(code string) (domain.Impression, error) {
	if ec.verdict == nil {
		return domain.Impression{}, fmt.Errorf("state was not evaluated")
	}
	for _, imp := range ec.verdict.Impressions {
		if imp.Code == code {
			return imp, nil
		}
	}
	return domain.Impression{}, fmt.Errorf("impression %s not reported; got %v", code, ec.verdict.MatchedRules)
}

func (ec *engineContext) anImpressionIsReportedWithUrgency(code, urgency string) error {
	imp, err := ec.impression(code)
	if err != nil {
		return err
	}
	if imp.Urgency.String() != urgency {
		return fmt.Errorf("impression %s urgency=%s want=%s", code, imp.Urgency, urgency)
	}
	return nil
}

func (ec *engineContext) theImpressionReads(code, text string) error {
	imp, err := ec.impression(code)
	if err != nil {
		return err
	}
	if !strings.Contains(imp.Text, text) {
		return fmt.Errorf("impression %s text %q does not contain %q", code, imp.Text, text)
	}
	return nil
}

func (ec *engineContext) theReasoningMentions(code, text string) error {
	imp, err := ec.impression(code)
	if err != nil {
		return err
	}
	if !strings.Contains(imp.Reasoning, text) {
		return fmt.Errorf("reasoning of %s does not mention %q\nReasoning:\n%s", code, text, imp.Reasoning)
	}
	return nil
}

func (ec *engineContext) thePrimaryImpressionIs(code string) error {
	if ec.verdict == nil {
		return fmt.Errorf("state was not evaluated")
	}
	primary, ok := ec.verdict.Primary()
	if !ok {
		return fmt.Errorf("verdict has no impressions")
	}
	if primary.Code != code {
		return fmt.Errorf("primary impression=%s want=%s", primary.Code, code)
	}
	return nil
}

func (ec *engineContext) onlyThePlaceholderIsReported() error {
	if ec.verdict == nil || !ec.verdict.IsPlaceholder() {
		return fmt.Errorf("expected the placeholder verdict, got %+v", ec.verdict)
	}
	return nil
}

func (ec *engineContext) theTriageIs(triage string) error {
	if ec.verdict == nil {
		return fmt.Errorf("state was not evaluated")
	}
	if ec.verdict.Triage.String() != triage {
		return fmt.Errorf("triage=%s want=%s", ec.verdict.Triage, triage)
	}
	return nil
}

func (ec *engineContext) theDifferentialsInclude(name string) error {
	if ec.verdict == nil {
		return fmt.Errorf("state was not evaluated")
	}
	for _, d := range ec.verdict.Differentials {
		if d == name {
			return nil
		}
	}
	return fmt.Errorf("differential %q missing from %v", name, ec.verdict.Differentials)
}

func (ec *engineContext) aWarningMentions(text string) error {
	if ec.verdict == nil {
		return fmt.Errorf("state was not evaluated")
	}
	for _, w := range ec.verdict.Warnings {
		if strings.Contains(w, text) {
			return nil
		}
	}
	return fmt.Errorf("no warning mentions %q; got %v", text, ec.verdict.Warnings)
}

func (ec *engineContext) theDifferentials(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("differential table needs a header and at least one row")
	}
	ec.diffs = nil
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 3 {
			return fmt.Errorf("expected 3 cells per row, got %d", len(row.Cells))
		}
		var d domain.Differential
		if err := d.Name.UnmarshalText([]byte(row.Cells[0].Value)); err != nil {
			return err
		}
		enabled, err := strconv.ParseBool(row.Cells[1].Value)
		if err != nil {
			return fmt.Errorf("invalid enabled flag %q: %w", row.Cells[1].Value, err)
		}
		percent, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return fmt.Errorf("invalid percent %q: %w", row.Cells[2].Value, err)
		}
		d.Enabled, d.Percent = enabled, percent
		ec.diffs = append(ec.diffs, d)
	}
	return nil
}

func (ec *engineContext) theDifferentialsAreNormalized() error {
	ec.diffs = ec.svc.NormalizeDifferentials(ec.diffs)
	return nil
}

func (ec *engineContext) theEnabledPercentsSumTo(expected int) error {
	if got := EnabledPercentSum(ec.diffs); got != expected {
		return fmt.Errorf("enabled percent sum=%d want=%d", got, expected)
	}
	return nil
}

func (ec *engineContext) thePercentOfIs(name string, expected int) error {
	for _, d := range ec.diffs {
		if d.Name.String() == name {
			if d.Percent != expected {
				return fmt.Errorf("percent of %s=%d want=%d", name, d.Percent, expected)
			}
			return nil
		}
	}
	return fmt.Errorf("differential %s not in list", name)
}

func (ec *engineContext) theModalityIsSwitchedTo(modality string) error {
	if ec.liver == nil {
		return fmt.Errorf("no liver/biliary state given")
	}
	var m domain.Modality
	if err := m.UnmarshalText([]byte(modality)); err != nil {
		return err
	}
	switched := ec.svc.ApplyModality(*ec.liver, m)
	ec.liver = &switched
	return nil
}

func (ec *engineContext) noMRFindingRemains() error {
	if ec.liver.Liver.MR != (domain.LiverMR{}) {
		return fmt.Errorf("MR findings remain: %+v", ec.liver.Liver.MR)
	}
	if ec.liver.Exam.MRSequences != (domain.MRSequences{}) {
		return fmt.Errorf("MR sequences remain: %+v", ec.liver.Exam.MRSequences)
	}
	return nil
}

func (ec *engineContext) theCTPhaseIs(phase string) error {
	if got := ec.liver.Exam.CTPhase.String(); got != phase {
		return fmt.Errorf("CT phase=%s want=%s", got, phase)
	}
	return nil
}

func (ec *engineContext) theMRT2SignalIs(signal string) error {
	if got := ec.liver.Liver.MR.T2Signal.String(); got != signal {
		return fmt.Errorf("MR T2 signal=%s want=%s", got, signal)
	}
	return nil
}
