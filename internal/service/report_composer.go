package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/radassist-mcp-server/internal/domain"
)

// LIRADSContextNote is raised when LI-RADS is enabled without an at-risk liver context.
const LIRADSContextNote = "No appropriate clinical context is selected for LI-RADS."

// ComposeLesionReport renders the structured lesion report together with its advisories.
// Disabled differentials never appear in the text. A percent advisory does not block the report.
func ComposeLesionReport(in domain.LesionReportInput) domain.LesionReport {
	f := ApplyDynamicGate(in.Findings)

	findings := lesionDescription(f) + "\n" + lesionContrastText(f)

	extra := strings.TrimSpace(in.ExtraFindings)
	if extra == "" {
		extra = "Not specified."
	}

	var sb strings.Builder
	sb.WriteString("FINDINGS:\n")
	sb.WriteString(findings)
	sb.WriteString("\n\nADDITIONAL FINDINGS:\n")
	sb.WriteString(extra)
	sb.WriteString("\n\nASSESSMENT:\n")
	sb.WriteString(lesionAssessmentText(in, f.Risk))
	sb.WriteString("\n\nRECOMMENDATION/FOLLOW-UP:\n")
	sb.WriteString(followUpText(in.FollowUp, in.Recommendation))

	report := domain.LesionReport{
		Report:   sb.String(),
		Advisory: CheckPercents(in.Differentials, in.Mode),
		FollowUp: SuggestFollowUp(f, in.Assessment.Definitive),
		Hints:    SuggestLesion(f),
	}
	if in.Assessment.LIRADSEnabled && !f.Risk.Selected() {
		report.LIRADSNote = LIRADSContextNote
	}
	return report
}

func intensityWord(i domain.Intensity, ct bool) string {
	suffix := "intense"
	if ct {
		suffix = "dense"
	}
	switch i {
	case domain.IntensityHypo:
		return "hypo" + suffix
	case domain.IntensityIso:
		return "iso" + suffix
	case domain.IntensityHyper:
		return "hyper" + suffix
	case domain.IntensityMixed:
		return "heterogeneous"
	default:
		return ""
	}
}

func lesionDescription(f domain.LesionFindings) string {
	segment := "unspecified"
	if f.Segment != domain.SegmentUnknown && f.Segment.String() != "UNKNOWN" {
		segment = f.Segment.Label()
	}

	size := "of unspecified size"
	if raw := strings.TrimSpace(f.Size); raw != "" {
		size = "measuring approximately " + raw + " " + strings.ToLower(f.SizeUnit.String())
	}

	morphology := "mixed"
	switch f.Morphology {
	case domain.MorphologySolid:
		morphology = "solid"
	case domain.MorphologyCystic:
		morphology = "cystic"
	}

	var qualifiers []string
	if w := intensityWord(f.CTDensity, true); w != "" {
		qualifiers = append(qualifiers, w+" on CT")
	}
	if w := intensityWord(f.T1, false); w != "" {
		qualifiers = append(qualifiers, w+" on T1")
	}
	if w := intensityWord(f.T2, false); w != "" {
		qualifiers = append(qualifiers, w+" on T2")
	}

	text := fmt.Sprintf("At liver segment %s, a %s lesion %s", segment, morphology, size)
	if len(qualifiers) > 0 {
		text += ", " + strings.Join(qualifiers, ", ") + ","
	}
	return text + " is seen."
}

func phaseWord(i domain.Intensity) string {
	switch i {
	case domain.IntensityHypo:
		return "hypoenhancing"
	case domain.IntensityIso:
		return "isoenhancing"
	case domain.IntensityHyper:
		return "hyperenhancing"
	case domain.IntensityMixed:
		return "heterogeneous"
	default:
		return ""
	}
}

func lesionContrastText(f domain.LesionFindings) string {
	if !f.HasDynamic {
		switch f.GeneralEnhancement {
		case domain.GeneralEnhancementNone:
			return "No enhancement is seen after contrast."
		case domain.GeneralEnhancementPeripheral:
			return "A peripheral enhancement pattern is seen after contrast."
		case domain.GeneralEnhancementHomogeneous:
			return "A homogeneous enhancement pattern is seen after contrast."
		case domain.GeneralEnhancementHeterogeneous:
			return "A heterogeneous enhancement pattern is seen after contrast."
		default:
			return "Information on the enhancement pattern is limited."
		}
	}

	var phases []string
	if w := phaseWord(f.Arterial); w != "" {
		phases = append(phases, w+" in the arterial phase")
	}
	if w := phaseWord(f.Portal); w != "" {
		phases = append(phases, w+" in the portal venous phase")
	}
	if w := phaseWord(f.Delayed); w != "" {
		phases = append(phases, w+" in the delayed phase")
	}

	capsule := ""
	switch f.Capsule {
	case domain.FindingYes:
		capsule = "a capsule appearance is seen"
	case domain.FindingNo:
		capsule = "no capsule appearance is seen"
	}

	if len(phases) == 0 && capsule == "" {
		return "Dynamic phase evaluation was not performed or information is limited."
	}

	base := "Dynamic phase signal intensities are not specified"
	if len(phases) > 0 {
		base = "On dynamic evaluation the lesion is " + strings.Join(phases, ", ")
	}
	if capsule != "" {
		return base + "; in addition, " + capsule + "."
	}
	return base + "."
}

func liradsText(a domain.LesionAssessment, risk domain.RiskContext) string {
	if !a.LIRADSEnabled {
		return ""
	}
	li := " LI-RADS not selected."
	if a.LIRADS != domain.LIRADSUnknown && a.LIRADS.String() != "UNKNOWN" {
		li = " LI-RADS (optional): " + a.LIRADS.Label() + "."
	}
	return li + " Clinical context: " + strings.Join(risk.Labels(), ", ") + "."
}

func lesionAssessmentText(in domain.LesionReportInput, risk domain.RiskContext) string {
	a := in.Assessment
	conf := a.Confidence.Label()
	li := liradsText(a, risk)

	if a.Definitive {
		return fmt.Sprintf("Current imaging findings are consistent with %s; the stated confidence level is %s.%s",
			a.DefinitiveDiagnosis.Label(), conf, li)
	}

	var enabled []domain.Differential
	for _, d := range in.Differentials {
		if d.Enabled {
			enabled = append(enabled, d)
		}
	}
	if len(enabled) == 0 {
		return fmt.Sprintf("No differential diagnosis is specified for the lesion. Clinical correlation and comparison with prior studies are recommended. Confidence level: %s.%s", conf, li)
	}

	lines := []string{"Current imaging findings are nonspecific; the differential diagnosis includes:"}
	if in.Mode == domain.WeightModePercent {
		sorted := make([]domain.Differential, len(enabled))
		copy(sorted, enabled)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Percent > sorted[j].Percent })
		parts := make([]string, 0, len(sorted))
		for _, d := range sorted {
			parts = append(parts, fmt.Sprintf("%s (%d%%)", d.DisplayName(), clampPercent(d.Percent)))
		}
		lines = append(lines, "- Probability distribution: "+strings.Join(parts, ", ")+".")
	} else {
		for _, level := range []domain.Likelihood{domain.LikelihoodHigh, domain.LikelihoodMedium, domain.LikelihoodLow} {
			var names []string
			for _, d := range enabled {
				if d.Likelihood == level {
					names = append(names, d.DisplayName())
				}
			}
			if len(names) > 0 {
				lines = append(lines, fmt.Sprintf("- %s likelihood: %s.", level.Label(), strings.Join(names, ", ")))
			}
		}
	}

	lines = append(lines, fmt.Sprintf("Confidence level: %s.", conf))
	if li = strings.TrimSpace(li); li != "" {
		lines = append(lines, li)
	}
	return strings.Join(lines, "\n")
}

func followUpText(f domain.FollowUp, recommendation string) string {
	base := f.Label()
	extra := strings.TrimSpace(recommendation)
	switch {
	case base == "":
		return extra
	case extra == "":
		return base
	default:
		return base + ". " + extra
	}
}
