package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/radassist-mcp-server/internal/domain"
)

func populatedLiverState() domain.LiverBiliaryFindings {
	return domain.LiverBiliaryFindings{
		Exam: domain.Exam{
			Modality:    domain.ModalityBoth,
			CTPhase:     domain.CTPhaseUnknown,
			MRSequences: domain.MRSequences{T2: true, HBP: true},
		},
		Liver: domain.LiverFindings{
			HasLesion: true,
			CT: domain.LiverCT{
				Attenuation:   domain.IntensityHypo,
				Enhancement:   domain.CTEnhancementPeripheralNodular,
				DelayedFillIn: domain.FindingYes,
				Washout:       domain.FindingNo,
			},
			MR: domain.LiverMR{
				T1Signal:                 domain.IntensityHypo,
				T2Signal:                 domain.IntensityHyper,
				DWIRestriction:           domain.FindingNo,
				InOutPhase:               domain.ChemicalShiftNoDrop,
				ArterialHyperenhancement: domain.FindingYes,
				Washout:                  domain.FindingNo,
				Capsule:                  domain.FindingNo,
				HBPHypointense:           domain.FindingYes,
			},
		},
	}
}

func TestApplyModality_CT(t *testing.T) {
	in := populatedLiverState()
	out := ApplyModality(in, domain.ModalityCT)

	assert.Equal(t, domain.ModalityCT, out.Exam.Modality)
	assert.Equal(t, domain.LiverMR{}, out.Liver.MR)
	assert.Equal(t, domain.MRSequences{}, out.Exam.MRSequences)
	assert.Equal(t, domain.CTPhasePortalVenous, out.Exam.CTPhase)
	assert.Equal(t, in.Liver.CT, out.Liver.CT)

	// input is not modified
	assert.Equal(t, domain.IntensityHyper, in.Liver.MR.T2Signal)

	t.Run("explicit phase is kept", func(t *testing.T) {
		in := populatedLiverState()
		in.Exam.CTPhase = domain.CTPhaseArterial
		assert.Equal(t, domain.CTPhaseArterial, ApplyModality(in, domain.ModalityCT).Exam.CTPhase)
	})
}

func TestApplyModality_MR(t *testing.T) {
	in := populatedLiverState()
	in.Exam.CTPhase = domain.CTPhaseDelayed
	out := ApplyModality(in, domain.ModalityMR)

	assert.Equal(t, domain.ModalityMR, out.Exam.Modality)
	assert.Equal(t, domain.LiverCT{}, out.Liver.CT)
	assert.Equal(t, domain.CTPhaseUnknown, out.Exam.CTPhase)
	assert.Equal(t, in.Liver.MR, out.Liver.MR)
	assert.Equal(t, domain.MRSequences{T2: true, HBP: true}, out.Exam.MRSequences)

	t.Run("defaults sequences when none set", func(t *testing.T) {
		in := populatedLiverState()
		in.Exam.MRSequences = domain.MRSequences{}
		out := ApplyModality(in, domain.ModalityMR)
		assert.Equal(t, domain.MRSequences{T1: true, T2: true, DWI: true, DynamicContrast: true}, out.Exam.MRSequences)
	})
}

func TestApplyModality_Both(t *testing.T) {
	in := populatedLiverState()
	out := ApplyModality(in, domain.ModalityBoth)

	assert.Equal(t, in.Liver, out.Liver)
	assert.Equal(t, domain.CTPhasePortalVenous, out.Exam.CTPhase)
	assert.Equal(t, in.Exam.MRSequences, out.Exam.MRSequences)

	cleared := in
	cleared.Exam.MRSequences = domain.MRSequences{}
	assert.Equal(t, domain.DefaultMRSequences(), ApplyModality(cleared, domain.ModalityBoth).Exam.MRSequences)
}

func TestApplyModality_UnknownIsIdentity(t *testing.T) {
	in := populatedLiverState()
	for _, m := range []domain.Modality{domain.ModalityUnknown, domain.Modality(17), domain.Modality(-1)} {
		if diff := cmp.Diff(in, ApplyModality(in, m)); diff != "" {
			t.Errorf("ApplyModality(%v) changed state (-want +got):\n%s", m, diff)
		}
	}
}

func TestApplyModality_Idempotent(t *testing.T) {
	for _, m := range []domain.Modality{domain.ModalityCT, domain.ModalityMR, domain.ModalityBoth} {
		once := ApplyModality(populatedLiverState(), m)
		twice := ApplyModality(once, m)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("ApplyModality(%v) not idempotent (-once +twice):\n%s", m, diff)
		}
	}
}

func TestApplyModality_SwitchDropsStaleMRPattern(t *testing.T) {
	// MR data alone reads as hemangioma; after switching to CT only the CT cyst pattern remains.
	in := populatedLiverState()
	in.Liver.CT = domain.LiverCT{Attenuation: domain.IntensityHypo, Enhancement: domain.CTEnhancementNone}
	in.Liver.MR.T1Signal = domain.IntensityIso

	e := NewLiverBiliaryEvaluator()
	assert.Equal(t, "LIVER-CYST", e.Evaluate(ApplyModality(in, domain.ModalityCT)).MatchedRules[0])

	in.Liver.CT = domain.LiverCT{}
	assert.Equal(t, "LIVER-HEMANGIOMA", e.Evaluate(ApplyModality(in, domain.ModalityMR)).MatchedRules[0])
	assert.Equal(t, "LIVER-NONSPECIFIC", e.Evaluate(ApplyModality(in, domain.ModalityCT)).MatchedRules[0])
}

func TestApplyDynamicGate(t *testing.T) {
	f := domain.LesionFindings{
		Arterial: domain.IntensityHyper,
		Portal:   domain.IntensityHypo,
		Delayed:  domain.IntensityHypo,
		Capsule:  domain.FindingYes,
		T2:       domain.IntensityHyper,
	}

	gated := ApplyDynamicGate(f)
	assert.Equal(t, domain.IntensityUnknown, gated.Arterial)
	assert.Equal(t, domain.IntensityUnknown, gated.Portal)
	assert.Equal(t, domain.IntensityUnknown, gated.Delayed)
	assert.Equal(t, domain.FindingUnknown, gated.Capsule)
	assert.Equal(t, domain.IntensityHyper, gated.T2)

	f.HasDynamic = true
	assert.Equal(t, f, ApplyDynamicGate(f))
}
