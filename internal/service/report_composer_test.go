package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
)

func reportSection(t *testing.T, report, header string) string {
	t.Helper()
	idx := strings.Index(report, header+"\n")
	require.GreaterOrEqual(t, idx, 0, "missing section %q", header)
	body := report[idx+len(header)+1:]
	if end := strings.Index(body, "\n\n"); end >= 0 {
		body = body[:end]
	}
	return body
}

func baseLesionInput() domain.LesionReportInput {
	return domain.LesionReportInput{
		Findings: domain.LesionFindings{
			Segment:    domain.SegmentS7,
			Size:       "18",
			Morphology: domain.MorphologySolid,
			CTDensity:  domain.IntensityHypo,
			T2:         domain.IntensityHyper,
		},
		Differentials: domain.DefaultDifferentials(),
		Assessment:    domain.LesionAssessment{Confidence: domain.LikelihoodMedium},
	}
}

func TestComposeLesionReport_Structure(t *testing.T) {
	out := ComposeLesionReport(baseLesionInput())

	headers := []string{"FINDINGS:", "ADDITIONAL FINDINGS:", "ASSESSMENT:", "RECOMMENDATION/FOLLOW-UP:"}
	last := -1
	for _, h := range headers {
		idx := strings.Index(out.Report, h)
		require.Greater(t, idx, last, "section %q out of order", h)
		last = idx
	}

	assert.Equal(t,
		"At liver segment S7, a solid lesion measuring approximately 18 mm, hypodense on CT, hyperintense on T2, is seen.\n"+
			"Information on the enhancement pattern is limited.",
		reportSection(t, out.Report, "FINDINGS:"))
	assert.Equal(t, "Not specified.", reportSection(t, out.Report, "ADDITIONAL FINDINGS:"))
	assert.Empty(t, reportSection(t, out.Report, "RECOMMENDATION/FOLLOW-UP:"))
}

func TestComposeLesionReport_LevelMode(t *testing.T) {
	out := ComposeLesionReport(baseLesionInput())

	assert.Equal(t,
		"Current imaging findings are nonspecific; the differential diagnosis includes:\n"+
			"- High likelihood: Hemangioma.\n"+
			"- Medium likelihood: Metastasis.\n"+
			"Confidence level: Medium.",
		reportSection(t, out.Report, "ASSESSMENT:"))
	assert.Nil(t, out.Advisory)
}

func TestComposeLesionReport_PercentMode(t *testing.T) {
	in := baseLesionInput()
	in.Mode = domain.WeightModePercent
	in.Differentials[1].Percent = 60 // Metastasis above Hemangioma

	out := ComposeLesionReport(in)

	assert.Contains(t, out.Report, "- Probability distribution: Metastasis (60%), Hemangioma (55%).")
	require.NotNil(t, out.Advisory)
	assert.Equal(t, 115, out.Advisory.Sum)

	in.Differentials = NormalizePercents(in.Differentials)
	assert.Nil(t, ComposeLesionReport(in).Advisory)
}

func TestComposeLesionReport_DisabledDifferentialsOmitted(t *testing.T) {
	in := baseLesionInput()
	in.Differentials[1].Enabled = false
	in.Differentials[8] = domain.Differential{Name: domain.DiagnosisOther, Enabled: true, Likelihood: domain.LikelihoodLow, Note: "lymphoma"}

	out := ComposeLesionReport(in)

	assert.NotContains(t, out.Report, "Metastasis")
	assert.Contains(t, out.Report, "- Low likelihood: Other (lymphoma).")
}

func TestComposeLesionReport_NoDifferentials(t *testing.T) {
	in := baseLesionInput()
	for i := range in.Differentials {
		in.Differentials[i].Enabled = false
	}

	out := ComposeLesionReport(in)
	assert.Equal(t,
		"No differential diagnosis is specified for the lesion. Clinical correlation and comparison with prior studies are recommended. Confidence level: Medium.",
		reportSection(t, out.Report, "ASSESSMENT:"))
}

func TestComposeLesionReport_Definitive(t *testing.T) {
	in := baseLesionInput()
	in.Assessment = domain.LesionAssessment{
		Definitive:          true,
		DefinitiveDiagnosis: domain.DiagnosisHemangioma,
		Confidence:          domain.LikelihoodHigh,
	}

	out := ComposeLesionReport(in)
	assert.Equal(t,
		"Current imaging findings are consistent with Hemangioma; the stated confidence level is High.",
		reportSection(t, out.Report, "ASSESSMENT:"))
	assert.Equal(t, domain.FollowUpNone, out.FollowUp.FollowUp)
}

func TestComposeLesionReport_LIRADS(t *testing.T) {
	in := baseLesionInput()
	in.Assessment.LIRADSEnabled = true

	out := ComposeLesionReport(in)
	assert.Equal(t, LIRADSContextNote, out.LIRADSNote)
	assert.Contains(t, out.Report, "Confidence level: Medium.\nLI-RADS not selected. Clinical context: unknown.")

	in.Assessment.LIRADS = domain.LIRADS4
	in.Findings.Risk = domain.RiskContext{Cirrhosis: true, HCV: true}
	out = ComposeLesionReport(in)
	assert.Empty(t, out.LIRADSNote)
	assert.Contains(t, out.Report, "LI-RADS (optional): LR-4. Clinical context: cirrhosis, chronic HCV.")
}

func TestComposeLesionReport_Contrast(t *testing.T) {
	tests := []struct {
		name     string
		findings domain.LesionFindings
		want     string
	}{
		{
			name:     "no enhancement",
			findings: domain.LesionFindings{GeneralEnhancement: domain.GeneralEnhancementNone},
			want:     "No enhancement is seen after contrast.",
		},
		{
			name:     "peripheral",
			findings: domain.LesionFindings{GeneralEnhancement: domain.GeneralEnhancementPeripheral},
			want:     "A peripheral enhancement pattern is seen after contrast.",
		},
		{
			name: "dynamic phases with capsule",
			findings: domain.LesionFindings{
				HasDynamic: true,
				Arterial:   domain.IntensityHyper,
				Portal:     domain.IntensityHypo,
				Capsule:    domain.FindingYes,
			},
			want: "On dynamic evaluation the lesion is hyperenhancing in the arterial phase, hypoenhancing in the portal venous phase; in addition, a capsule appearance is seen.",
		},
		{
			name:     "dynamic without phase data",
			findings: domain.LesionFindings{HasDynamic: true},
			want:     "Dynamic phase evaluation was not performed or information is limited.",
		},
		{
			name: "phase data ignored without a dynamic study",
			findings: domain.LesionFindings{
				Arterial: domain.IntensityHyper,
				Capsule:  domain.FindingYes,
			},
			want: "Information on the enhancement pattern is limited.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseLesionInput()
			in.Findings = tt.findings
			out := ComposeLesionReport(in)

			findings := reportSection(t, out.Report, "FINDINGS:")
			lines := strings.Split(findings, "\n")
			require.Len(t, lines, 2)
			assert.Equal(t, "At liver segment unspecified, a mixed lesion of unspecified size is seen.", lines[0])
			assert.Equal(t, tt.want, lines[1])
		})
	}
}

func TestComposeLesionReport_FollowUpAndExtras(t *testing.T) {
	in := baseLesionInput()
	in.ExtraFindings = "  Small hiatal hernia.  "
	in.FollowUp = domain.FollowUpDynamicMRI
	in.Recommendation = "Compare with prior CT."

	out := ComposeLesionReport(in)
	assert.Equal(t, "Small hiatal hernia.", reportSection(t, out.Report, "ADDITIONAL FINDINGS:"))
	assert.True(t, strings.HasSuffix(out.Report, "RECOMMENDATION/FOLLOW-UP:\nDynamic liver MRI. Compare with prior CT."))

	assert.Equal(t, domain.FollowUpDynamicMRI, out.FollowUp.FollowUp, "no dynamic study suggests dynamic MRI")
	assert.NotEmpty(t, out.Hints.Hints)
}

func TestComposeLesionReport_Deterministic(t *testing.T) {
	in := baseLesionInput()
	in.Mode = domain.WeightModePercent
	assert.Equal(t, ComposeLesionReport(in), ComposeLesionReport(in))
}
