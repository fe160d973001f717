package service

import (
	"github.com/radassist-mcp-server/internal/domain"
)

// Hint engine percents attached to each suggested differential.
const (
	cystPercent               = 70
	hemangiomaDynamicPercent  = 65
	hemangiomaPatternPercent  = 60
	hccWashoutPercent         = 40
	adenomaWashoutPercent     = 15
	hccCapsulePercent         = 45
	metastasisRestrictPercent = 35
	abscessRestrictPercent    = 15
)

// LargeLesionFollowUpMM triggers dynamic MR characterization for nonspecific lesions.
const LargeLesionFollowUpMM = 20

// SuggestLesion runs the independent lesion pattern checks and returns advisory hints and
// suggested differentials. Duplicate names keep the suggestion with the higher percent.
func SuggestLesion(f domain.LesionFindings) domain.LesionHints {
	f = ApplyDynamicGate(f)

	var (
		hints     []string
		suggested []domain.SuggestedDifferential
	)
	suggest := func(name domain.DiagnosisName, l domain.Likelihood, pct int, why string) {
		suggested = append(suggested, domain.SuggestedDifferential{Name: name, Likelihood: l, Percent: pct, Rationale: why})
	}

	aHyper := f.ArterialHyper()
	washout := f.WashoutLike()
	capsule := f.HasDynamic && f.Capsule.IsYes()

	noEnhancement := f.GeneralEnhancement == domain.GeneralEnhancementNone
	if f.HasDynamic {
		noEnhancement = f.Arterial == domain.IntensityUnknown &&
			f.Portal == domain.IntensityUnknown &&
			f.Delayed == domain.IntensityUnknown
	}
	if f.Morphology == domain.MorphologyCystic && noEnhancement {
		hints = append(hints, "Cystic morphology predominates; a simple cyst may be considered (clinical correlation).")
		suggest(domain.DiagnosisSimpleCyst, domain.LikelihoodHigh, cystPercent, "Cystic morphology without enhancement.")
	}

	if f.T2 == domain.IntensityHyper && f.Diffusion == domain.DiffusionNotRestricted {
		switch {
		case f.HasDynamic:
			if f.Arterial == domain.IntensityHyper &&
				(f.Delayed == domain.IntensityIso || f.Delayed == domain.IntensityHyper) {
				hints = append(hints, "T2 hyperintensity with a dynamic fill-in pattern may be consistent with hemangioma (phase timing matters).")
				suggest(domain.DiagnosisHemangioma, domain.LikelihoodHigh, hemangiomaDynamicPercent, "T2 hyper, no restriction and dynamic fill-in pattern.")
			}
		case f.GeneralEnhancement == domain.GeneralEnhancementPeripheral:
			hints = append(hints, "T2 hyperintensity with a peripheral enhancement pattern may be consistent with hemangioma.")
			suggest(domain.DiagnosisHemangioma, domain.LikelihoodHigh, hemangiomaPatternPercent, "T2 hyper with peripheral pattern.")
		}
	}

	if aHyper && washout {
		hints = append(hints, "Arterial hyperenhancement with washout-like appearance may favor a hypervascular malignancy (including HCC); interpret with the clinical context.")
		suggest(domain.DiagnosisHCC, domain.LikelihoodMedium, hccWashoutPercent, "Arterial hyper with washout.")
		suggest(domain.DiagnosisAdenoma, domain.LikelihoodLow, adenomaWashoutPercent, "Hypervascular lesion in the differential.")
	}

	if aHyper && capsule {
		hints = append(hints, "Arterial hyperenhancement with a capsule appearance may favor malignancy (in an at-risk liver).")
		suggest(domain.DiagnosisHCC, domain.LikelihoodMedium, hccCapsulePercent, "Arterial hyper with capsule.")
	}

	if f.Diffusion == domain.DiffusionRestricted {
		hints = append(hints, "Restricted diffusion may support options such as abscess or metastasis (with clinical, laboratory and dynamic pattern correlation).")
		suggest(domain.DiagnosisMetastasis, domain.LikelihoodMedium, metastasisRestrictPercent, "Restricted diffusion present.")
		suggest(domain.DiagnosisAbscess, domain.LikelihoodLow, abscessRestrictPercent, "If clinically concordant.")
	}

	if !f.Risk.Selected() {
		hints = append(hints, "Without an at-risk liver context (cirrhosis, HBV, HCV etc.) LI-RADS interpretation remains limited.")
	}

	return domain.LesionHints{
		Hints:       uniq(hints),
		Suggestions: dedupeSuggestions(suggested),
	}
}

// dedupeSuggestions keeps one suggestion per name, preferring the higher percent, in
// first-seen order.
func dedupeSuggestions(in []domain.SuggestedDifferential) []domain.SuggestedDifferential {
	out := make([]domain.SuggestedDifferential, 0, len(in))
	index := make(map[domain.DiagnosisName]int, len(in))
	for _, s := range in {
		if i, ok := index[s.Name]; ok {
			if s.Percent > out[i].Percent {
				out[i] = s
			}
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

// SuggestFollowUp picks the recommended follow-up by fixed priority.
func SuggestFollowUp(f domain.LesionFindings, definitive bool) domain.FollowUpSuggestion {
	f = ApplyDynamicGate(f)

	if definitive {
		return domain.FollowUpSuggestion{
			FollowUp: domain.FollowUpNone,
			Message:  "Definitive diagnosis stated: follow-up may be planned if clinically required.",
		}
	}
	if !f.HasDynamic {
		return domain.FollowUpSuggestion{
			FollowUp: domain.FollowUpDynamicMRI,
			Message:  "Dynamic phase information is limited: dynamic liver MRI may be considered for characterization.",
		}
	}
	if f.ArterialHyper() && f.WashoutLike() && f.Risk.Selected() {
		return domain.FollowUpSuggestion{
			FollowUp: domain.FollowUpDynamicMRI,
			Message:  "With arterial hyperenhancement, washout and an at-risk liver, dynamic MRI may be appropriate for further characterization or staging.",
		}
	}
	if f.Diffusion == domain.DiffusionRestricted {
		return domain.FollowUpSuggestion{
			FollowUp: domain.FollowUpClinicalCorrelation,
			Message:  "Restricted diffusion: clinical/laboratory correlation and, if needed, further evaluation with dynamic MR/CT may be considered.",
		}
	}
	if size, ok := f.SizeMM(); ok && size >= LargeLesionFollowUpMM {
		return domain.FollowUpSuggestion{
			FollowUp: domain.FollowUpDynamicMRI,
			Message:  "For a lesion ≥20 mm (especially with nonspecific findings) dynamic MRI may be considered for further characterization.",
		}
	}
	return domain.FollowUpSuggestion{
		FollowUp: domain.FollowUpUltrasound,
		Message:  "For a low-risk or nonspecific appearance, short-interval ultrasound follow-up may be considered (depending on the clinical context).",
	}
}

// ApplySuggestions merges suggestions into the editable differential list: matching entries are
// enabled and take the suggested likelihood and percent. Entries without a suggestion are left
// as they are. In percent mode the result is normalized.
func ApplySuggestions(diffs []domain.Differential, suggestions []domain.SuggestedDifferential, mode domain.WeightMode) []domain.Differential {
	out := make([]domain.Differential, len(diffs))
	copy(out, diffs)
	if len(suggestions) == 0 {
		return out
	}

	byName := make(map[domain.DiagnosisName]domain.SuggestedDifferential, len(suggestions))
	for _, s := range dedupeSuggestions(suggestions) {
		byName[s.Name] = s
	}
	for i, d := range out {
		s, ok := byName[d.Name]
		if !ok {
			continue
		}
		out[i].Enabled = true
		out[i].Likelihood = s.Likelihood
		out[i].Percent = clampPercent(s.Percent)
	}

	if mode == domain.WeightModePercent {
		return NormalizePercents(out)
	}
	return out
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > PercentTotal {
		return PercentTotal
	}
	return p
}
