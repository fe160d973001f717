package service

import (
	"github.com/radassist-mcp-server/internal/domain"
)

// ApplyModality returns a copy of f with the exam switched to modality m and every field of the
// inactive modality reset to its cleared default. An unknown or invalid modality returns f as is.
func ApplyModality(f domain.LiverBiliaryFindings, m domain.Modality) domain.LiverBiliaryFindings {
	if !m.IsValid() {
		return f
	}

	next := f
	next.Exam.Modality = m

	switch m {
	case domain.ModalityCT:
		next = clearMR(next)
		if next.Exam.CTPhase == domain.CTPhaseUnknown {
			next.Exam.CTPhase = domain.CTPhasePortalVenous
		}
	case domain.ModalityMR:
		next = clearCT(next)
		if next.Exam.MRSequences.None() {
			next.Exam.MRSequences = domain.DefaultMRSequences()
		}
	case domain.ModalityBoth:
		if next.Exam.CTPhase == domain.CTPhaseUnknown {
			next.Exam.CTPhase = domain.CTPhasePortalVenous
		}
		if next.Exam.MRSequences.None() {
			next.Exam.MRSequences = domain.DefaultMRSequences()
		}
	}
	return next
}

func clearCT(f domain.LiverBiliaryFindings) domain.LiverBiliaryFindings {
	f.Exam.CTPhase = domain.CTPhaseUnknown
	f.Liver.CT = domain.LiverCT{}
	return f
}

func clearMR(f domain.LiverBiliaryFindings) domain.LiverBiliaryFindings {
	f.Exam.MRSequences = domain.MRSequences{}
	f.Liver.MR = domain.LiverMR{}
	return f
}

// ApplyDynamicGate clears the phase observations of a lesion examined without a dynamic study.
func ApplyDynamicGate(f domain.LesionFindings) domain.LesionFindings {
	if f.HasDynamic {
		return f
	}
	f.Arterial = domain.IntensityUnknown
	f.Portal = domain.IntensityUnknown
	f.Delayed = domain.IntensityUnknown
	f.Capsule = domain.FindingUnknown
	return f
}
