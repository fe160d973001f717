package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/radassist-mcp-server/internal/domain"
)

type liverRule = Rule[domain.LiverBiliaryFindings]

// LargeLesionMM is the size from which a liver lesion always gets a workup note.
const LargeLesionMM = 20

// LiverBiliaryEvaluator maps a liver, gallbladder and bile duct finding state to a verdict.
// The state is expected to be gated already; CT and MR patterns are OR'd without checking
// which modality is active.
type LiverBiliaryEvaluator struct {
	table RuleTable[domain.LiverBiliaryFindings]
}

// NewLiverBiliaryEvaluator creates a liver/biliary evaluator with its rule table initialized.
func NewLiverBiliaryEvaluator() *LiverBiliaryEvaluator {
	e := &LiverBiliaryEvaluator{}
	e.initializeRules()
	return e
}

// Rules exposes the rule table for inspection.
func (e *LiverBiliaryEvaluator) Rules() *RuleTable[domain.LiverBiliaryFindings] {
	return &e.table
}

// Evaluate runs the liver, gallbladder and bile duct chains. Triage is the maximum contribution.
func (e *LiverBiliaryEvaluator) Evaluate(f domain.LiverBiliaryFindings) domain.Verdict {
	b := &verdictBuilder{}
	e.table.Evaluate(f, b)

	if b.empty() {
		b.impression(domain.Impression{
			Region:     domain.RegionGeneral,
			Code:       domain.PlaceholderCode,
			Text:       "Select findings to get suggestions",
			Reasoning:  "No liver lesion, gallbladder or bile duct pathology is marked.",
			Confidence: domain.LikelihoodLow,
			Urgency:    domain.TriageRoutine,
		})
	}

	v := b.build(domain.ModuleLiverBiliary)
	v.ReportSentence = composeLiverReport(f, v)
	return v
}

func (e *LiverBiliaryEvaluator) initializeRules() {
	t := &e.table

	hasLesion := func(f domain.LiverBiliaryFindings) bool { return f.Liver.HasLesion }
	t.addChain(domain.RegionLiver, "lesion_pattern", hasLesion,
		liverRule{Code: "LIVER-CYST", Name: "Simple cyst", Match: matchSimpleCyst, Apply: applySimpleCyst},
		liverRule{Code: "LIVER-HEMANGIOMA", Name: "Hemangioma", Match: matchHemangioma, Apply: applyHemangioma},
		liverRule{Code: "LIVER-ABSCESS", Name: "Abscess", Match: matchLiverAbscess, Apply: applyLiverAbscess},
		liverRule{Code: "LIVER-HCC", Name: "HCC", Match: matchHCC, Apply: applyHCC},
		liverRule{Code: "LIVER-METASTASIS", Name: "Metastasis", Match: matchLiverMetastasis, Apply: applyLiverMetastasis},
		liverRule{Code: "LIVER-FNH", Name: "FNH", Match: matchFNH, Apply: applyFNH},
		liverRule{Code: "LIVER-ADENOMA", Name: "Adenoma", Match: matchAdenoma, Apply: applyAdenoma},
		liverRule{Code: "LIVER-NONSPECIFIC", Name: "Nonspecific lesion", Match: always[domain.LiverBiliaryFindings], Apply: applyNonspecificLesion},
	)
	t.addChain(domain.RegionLiver, "lesion_size", hasLesion,
		liverRule{Code: "LIVER-SIZE-20MM", Name: "Lesion 20 mm or larger", Match: matchLargeLesion, Apply: applyLargeLesion},
	)
	// Vascular invasion is read even when no lesion is marked.
	t.addChain(domain.RegionLiver, "vascular_invasion", nil,
		liverRule{Code: "LIVER-VASCULAR-INVASION", Name: "Vascular invasion", Match: matchVascularInvasion, Apply: applyVascularInvasion},
	)

	hasGB := func(f domain.LiverBiliaryFindings) bool { return f.Gallbladder.HasPathology }
	t.addChain(domain.RegionGallbladder, "gallbladder_content", hasGB,
		liverRule{Code: "GB-CHOLECYSTITIS", Name: "Acute cholecystitis", Match: matchCholecystitis, Apply: applyCholecystitis},
		liverRule{Code: "GB-CHOLELITHIASIS", Name: "Cholelithiasis", Match: matchCholelithiasis, Apply: applyCholelithiasis},
		liverRule{Code: "GB-SLUDGE", Name: "Sludge", Match: matchSludge, Apply: applySludge},
	)
	t.addChain(domain.RegionGallbladder, "gallbladder_polyp", hasGB,
		liverRule{Code: "GB-POLYP-10MM", Name: "Polyp 10 mm or larger", Match: polypAtLeast(10), Apply: applyLargePolyp},
		liverRule{Code: "GB-POLYP-6MM", Name: "Polyp 6 to 9 mm", Match: polypAtLeast(6), Apply: applyMediumPolyp},
		liverRule{Code: "GB-POLYP-SMALL", Name: "Small polyp", Match: polypAtLeast(0), Apply: applySmallPolyp},
	)

	hasBD := func(f domain.LiverBiliaryFindings) bool { return f.BileDuct.HasPathology }
	t.addChain(domain.RegionBileDuct, "stent", hasBD,
		liverRule{Code: "BD-STENT", Name: "Biliary stent", Match: matchStent, Apply: applyStent},
	)
	t.addChain(domain.RegionBileDuct, "pneumobilia", hasBD,
		liverRule{Code: "BD-PNEUMOBILIA", Name: "Pneumobilia", Match: matchPneumobilia, Apply: applyPneumobilia},
	)
	t.addChain(domain.RegionBileDuct, "duct_calibre", hasBD,
		liverRule{Code: "BD-CBD-STONE", Name: "Choledocholithiasis", Match: matchCBDStone, Apply: applyCBDStone},
		liverRule{Code: "BD-OBSTRUCTION", Name: "Obstruction pattern", Match: matchObstruction, Apply: applyObstruction},
		liverRule{Code: "BD-DILATATION", Name: "Dilatation", Match: matchDuctDilatation, Apply: applyDuctDilatation},
	)
}

func always[S any](S) bool { return true }

// --- liver lesion patterns ---

func matchSimpleCyst(f domain.LiverBiliaryFindings) bool {
	ct, mr := f.Liver.CT, f.Liver.MR
	simpleCT := ct.Attenuation == domain.IntensityHypo &&
		(ct.Enhancement == domain.CTEnhancementNone || ct.Enhancement == domain.CTEnhancementUnknown)
	simpleMR := mr.T1Signal == domain.IntensityHypo &&
		mr.T2Signal == domain.IntensityHyper &&
		!mr.DWIRestriction.IsYes() &&
		!mr.ArterialHyperenhancement.IsYes() &&
		!mr.Washout.IsYes()
	return simpleCT || simpleMR
}

func applySimpleCyst(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-CYST",
		Text:       "Appearance consistent with a simple cyst",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageRoutine,
	})
	b.differential("Biliary hamartoma (multiple small cysts)", "Atypical/complicated cyst (proteinaceous or hemorrhagic content)")
	b.nextStep(
		"Is there any enhancement? (not expected in a simple cyst)",
		"Wall, septation or nodule (favors a complicated cyst)",
		"Absence of DWI restriction (favors a cyst)",
	)
}

func matchHemangioma(f domain.LiverBiliaryFindings) bool {
	ct, mr := f.Liver.CT, f.Liver.MR
	phase := f.Exam.CTPhase
	ctPattern := ct.Enhancement == domain.CTEnhancementPeripheralNodular &&
		(ct.DelayedFillIn.IsYes() || phase == domain.CTPhaseDelayed || phase == domain.CTPhaseMultiphase)
	mrPattern := (mr.T2Signal == domain.IntensityHyper || mr.T2Signal == domain.IntensityMixed) &&
		!mr.Washout.IsYes() &&
		!mr.DWIRestriction.IsYes() &&
		(mr.ArterialHyperenhancement.IsYes() || f.Exam.MRSequences.DynamicContrast)
	return ctPattern || mrPattern
}

func applyHemangioma(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-HEMANGIOMA",
		Text:       "Typical enhancement pattern favoring hemangioma",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageRoutine,
	})
	b.differential("Hypervascular metastasis (in atypical cases)", "HCC (especially on a cirrhotic background)", "FNH")
	b.nextStep(
		"Peripheral nodular enhancement with delayed fill-in (favors hemangioma)",
		"Marked T2 hyperintensity on MR, light-bulb sign (favors hemangioma)",
		"Rim enhancement, multiplicity or restriction keep metastasis in the differential",
	)
}

func matchLiverAbscess(f domain.LiverBiliaryFindings) bool {
	if !f.Context.FeverInfection.IsYes() {
		return false
	}
	ct, mr := f.Liver.CT, f.Liver.MR
	abscessCT := ct.Enhancement == domain.CTEnhancementRim
	abscessMR := mr.DWIRestriction.IsYes() &&
		(mr.ArterialHyperenhancement.IsYes() || f.Exam.MRSequences.DynamicContrast)
	return abscessCT || abscessMR
}

func applyLiverAbscess(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-ABSCESS",
		Text:       "Abscess/infection favored (if clinically concordant)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
	})
	b.warn("Possible infection/abscess: clinical and laboratory correlation, with urgent evaluation when appropriate, is recommended.")
	b.differential("Necrotic metastasis", "Necrotic HCC", "Biloma")
	b.nextStep(
		"Rim enhancement with marked DWI restriction (favors abscess)",
		"Gas foci or fluid level (favors abscess when present)",
		"Correlate with fever, leukocytosis and CRP",
	)
}

func matchHCC(f domain.LiverBiliaryFindings) bool {
	if !f.Context.Cirrhosis.IsYes() {
		return false
	}
	ct, mr := f.Liver.CT, f.Liver.MR
	hccCT := ct.Washout.IsYes() &&
		(ct.Enhancement == domain.CTEnhancementHypervascular || ct.Enhancement == domain.CTEnhancementWashout)
	hccMR := mr.ArterialHyperenhancement.IsYes() && (mr.Washout.IsYes() || mr.HBPHypointense.IsYes())
	return hccCT || hccMR
}

func applyHCC(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-HCC",
		Text:       "HCC favored given a cirrhotic background with arterial hyperenhancement/washout",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageUrgent,
	})
	b.warn("HCC pattern: correlation with clinical data and prior studies, and hepatology/oncology evaluation when appropriate, is recommended.")
	b.differential("Dysplastic nodule", "Hypervascular metastasis", "Cholangiocarcinoma (atypical)")
	b.nextStep(
		"Arterial hyperenhancement with portal/delayed washout and capsule",
		"Is there vascular invasion or portal vein thrombus?",
		"Hypointensity on HBP, if acquired, supports HCC",
	)
}

func matchLiverMetastasis(f domain.LiverBiliaryFindings) bool {
	multiple := f.Liver.LesionCount == domain.LesionCountMultiple
	malignancy := f.Context.KnownMalignancy.IsYes()
	metCT := f.Liver.CT.Enhancement == domain.CTEnhancementRim || (malignancy && multiple)
	metMR := multiple && (malignancy || f.Liver.MR.DWIRestriction.IsYes())
	return metCT || metMR
}

func applyLiverMetastasis(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-METASTASIS",
		Text:       "Metastasis favored (known malignancy, multiple foci or rim enhancement)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
	})
	b.differential("HCC (in cirrhosis)", "Cholangiocarcinoma", "Atypical hemangioma")
	b.nextStep(
		"Lesion count (multiplicity) and target/rim pattern",
		"DWI restriction (favors metastasis when present)",
		"Correlate with primary malignancy history and systemic staging",
	)
}

func matchFNH(f domain.LiverBiliaryFindings) bool {
	mr := f.Liver.MR
	if !mr.ArterialHyperenhancement.IsYes() || mr.Washout.IsYes() || mr.DWIRestriction.IsYes() {
		return false
	}
	if f.Exam.MRSequences.HBP {
		return !mr.HBPHypointense.IsYes()
	}
	return true
}

func applyFNH(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-FNH",
		Text:       "FNH favored (if concordant with dynamic MR features)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
	})
	b.differential("Hepatic adenoma", "Hypervascular metastasis", "Atypical hemangioma")
	b.nextStep(
		"Central scar (favors FNH when present)",
		"On HBP FNH is usually iso/hyperintense while adenoma is mostly hypointense",
		"Fat content: in/out-phase signal drop may favor adenoma",
	)
}

func matchAdenoma(f domain.LiverBiliaryFindings) bool {
	mr := f.Liver.MR
	return mr.ArterialHyperenhancement.IsYes() && mr.InOutPhase == domain.ChemicalShiftSignalDrop
}

func applyAdenoma(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-ADENOMA",
		Text:       "Possible hepatic adenoma (if concordant with in/out-phase fat content)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
	})
	b.differential("FNH", "Hypervascular metastasis", "HCC (on a high-risk background)")
	b.nextStep(
		"In/out-phase signal drop (intralesional fat)",
		"Hemorrhage or necrosis (may occur in adenoma)",
		"Usually hypointense on HBP when acquired",
	)
}

func applyNonspecificLesion(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionLiver,
		Code:       "LIVER-NONSPECIFIC",
		Text:       "Nonspecific; further characterization is recommended based on imaging findings",
		Confidence: domain.LikelihoodLow,
		Urgency:    domain.TriageRoutine,
	})
	b.differential("Hemangioma (atypical)", "Metastasis", "HCC", "FNH/Adenoma", "Abscess (if clinically concordant)")
	b.nextStep(
		"Dynamic contrast pattern (arterial/portal/delayed phase)",
		"DWI/ADC restriction",
		"Cirrhosis or malignancy history",
	)
}

func matchLargeLesion(f domain.LiverBiliaryFindings) bool {
	return f.Liver.SizeMM() >= LargeLesionMM
}

func applyLargeLesion(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.nextStep("Size ≥2 cm: characterization and clinical correlation are important; further imaging or follow-up is recommended when appropriate.")
}

func matchVascularInvasion(f domain.LiverBiliaryFindings) bool {
	return f.Liver.VascularInvasion.IsYes()
}

func applyVascularInvasion(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	if !f.Liver.HasLesion {
		b.impression(domain.Impression{
			Region:     domain.RegionLiver,
			Code:       "LIVER-VASCULAR-INVASION",
			Text:       "Vascular invasion suspected without a characterized lesion",
			Confidence: domain.LikelihoodMedium,
			Urgency:    domain.TriageEmergent,
		})
	}
	b.escalate(domain.TriageEmergent)
	b.warn("Suspected vascular invasion: emergent priority is recommended.")
	b.nextStep("Assess portal/hepatic vein thrombus and its relation to the arterial phase.")
}

// --- gallbladder ---

func matchCholecystitis(f domain.LiverBiliaryFindings) bool {
	g := f.Gallbladder
	return (g.Stones.IsYes() || g.Sludge.IsYes()) &&
		(g.WallMM() >= 4 || g.PericholecysticFluid.IsYes() || g.Distension.IsYes())
}

func applyCholecystitis(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-CHOLECYSTITIS",
		Text:       "Findings favor acute cholecystitis (if clinically concordant)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Stones with wall thickening and pericholecystic fluid or distension together favor cholecystitis.",
	})
	b.warn("Suspected cholecystitis: clinical-laboratory correlation and urgent surgical evaluation when appropriate are recommended.")
	b.differential("Chronic cholecystitis", "Acalculous cholecystitis", "Hepatitis/congestive wall thickening")
}

func matchCholelithiasis(f domain.LiverBiliaryFindings) bool {
	return f.Gallbladder.Stones.IsYes()
}

func applyCholelithiasis(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-CHOLELITHIASIS",
		Text:       "Cholelithiasis (stones) is seen",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Evaluate for cholecystitis if wall thickening or pericholecystic fluid is present.",
	})
}

func matchSludge(f domain.LiverBiliaryFindings) bool {
	return f.Gallbladder.Sludge.IsYes()
}

func applySludge(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-SLUDGE",
		Text:       "Content consistent with sludge is seen",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Evaluate the bile ducts for choledocholithiasis.",
	})
	b.differential("Microlithiasis", "Hemobilia (if clinically concordant)")
}

func polypAtLeast(mm float64) func(domain.LiverBiliaryFindings) bool {
	return func(f domain.LiverBiliaryFindings) bool {
		size := f.Gallbladder.PolypSizeMM()
		return size > 0 && size >= mm
	}
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func applyLargePolyp(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-POLYP-10MM",
		Text:       fmt.Sprintf("%s mm polypoid lesion (≥10 mm); malignancy risk may be increased", formatMM(f.Gallbladder.PolypSizeMM())),
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Compare size and growth with prior studies.",
	})
	b.warn("Polyp ≥10 mm: surgical/gastroenterology evaluation should be considered.")
}

func applyMediumPolyp(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-POLYP-6MM",
		Text:       fmt.Sprintf("%s mm polypoid lesion; follow-up may be recommended depending on risk factors", formatMM(f.Gallbladder.PolypSizeMM())),
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
	})
}

func applySmallPolyp(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionGallbladder,
		Code:       "GB-POLYP-SMALL",
		Text:       fmt.Sprintf("%s mm small polypoid lesion; low risk (follow-up if appropriate)", formatMM(f.Gallbladder.PolypSizeMM())),
		Confidence: domain.LikelihoodLow,
		Urgency:    domain.TriageRoutine,
	})
}

// --- bile ducts ---

func matchStent(f domain.LiverBiliaryFindings) bool {
	return f.BileDuct.StentPresent.IsYes()
}

func applyStent(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionBileDuct,
		Code:       "BD-STENT",
		Text:       "A stent is seen",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageRoutine,
	})
}

func matchPneumobilia(f domain.LiverBiliaryFindings) bool {
	return f.BileDuct.Pneumobilia.IsYes()
}

func applyPneumobilia(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionBileDuct,
		Code:       "BD-PNEUMOBILIA",
		Text:       "Pneumobilia is seen (may be expected after stent placement or sphincterotomy)",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageRoutine,
	})
}

func cholestaticUrgency(f domain.LiverBiliaryFindings) domain.Triage {
	if f.Context.Jaundice.IsYes() {
		return domain.TriageUrgent
	}
	return domain.TriageRoutine
}

func matchCBDStone(f domain.LiverBiliaryFindings) bool {
	d := f.BileDuct
	return d.CBDDilated() &&
		(d.StoneSuspected.IsYes() || (!d.AbruptCutoff.IsYes() && !d.StoneSuspected.IsNo()))
}

func applyCBDStone(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionBileDuct,
		Code:       "BD-CBD-STONE",
		Text:       "Choledocholithiasis favored (CBD dilatation with or without suspected filling defect)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    cholestaticUrgency(f),
		NextStep:   "Confirmation and treatment planning with MRCP/EUS/ERCP may be considered according to the clinical picture.",
	})
	b.differential("CBD stricture", "Neoplastic obstruction")
	if f.Context.Jaundice.IsYes() {
		b.warn("With jaundice/cholestasis, choledocholithiasis or obstruction should be evaluated with priority.")
	}
}

func matchObstruction(f domain.LiverBiliaryFindings) bool {
	d := f.BileDuct
	return d.AbruptCutoff.IsYes() ||
		(d.IHDDilatation.IsYes() && d.EHDDilatation.IsYes() && !d.StoneSuspected.IsYes())
}

func applyObstruction(f domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionBileDuct,
		Code:       "BD-OBSTRUCTION",
		Text:       "Obstruction pattern (abrupt cutoff/dilatation); stricture or neoplastic obstruction possible",
		Confidence: domain.LikelihoodMedium,
		Urgency:    cholestaticUrgency(f),
		NextStep:   "Level of obstruction (hilar vs distal), associated mass or lymphadenopathy, correlation with MRCP or contrast-enhanced imaging.",
	})
	b.differential("Cholangiocarcinoma", "Pancreatic head mass", "Postoperative stricture", "Stone (atypical)")
	if f.Context.Jaundice.IsYes() {
		b.warn("With accompanying cholestasis, urgent gastroenterology evaluation may be considered.")
	}
}

func matchDuctDilatation(f domain.LiverBiliaryFindings) bool {
	return f.BileDuct.CBDDilated() || f.BileDuct.IHDDilatation.IsYes()
}

func applyDuctDilatation(_ domain.LiverBiliaryFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionBileDuct,
		Code:       "BD-DILATATION",
		Text:       "Dilatation is seen (clinical-laboratory correlation recommended)",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "CBD calibre should be interpreted together with age and surgical history.",
	})
	b.differential("Prior stone passage", "Sphincter dysfunction", "Stricture")
}

// --- report sentence ---

// MaxReportDifferentials bounds the differential names quoted in the report sentence.
const MaxReportDifferentials = 4

func composeLiverReport(f domain.LiverBiliaryFindings, v domain.Verdict) string {
	var phrases []string

	if f.Liver.HasLesion {
		phrase := "a liver lesion"
		if f.Liver.Segment != domain.SegmentUnknown && f.Liver.Segment.String() != "UNKNOWN" {
			phrase += " in segment " + f.Liver.Segment.Label()
		}
		if size := f.Liver.SizeMM(); size > 0 {
			phrase += " measuring " + formatMM(size) + " mm"
		}
		phrases = append(phrases, phrase)
	}

	if g := f.Gallbladder; g.HasPathology {
		var bits []string
		if g.Stones.IsYes() {
			bits = append(bits, "stones")
		}
		if g.Sludge.IsYes() {
			bits = append(bits, "sludge")
		}
		if g.WallMM() >= 4 {
			bits = append(bits, "wall thickening")
		}
		if g.PericholecysticFluid.IsYes() {
			bits = append(bits, "pericholecystic fluid")
		}
		if len(bits) > 0 {
			phrases = append(phrases, "gallbladder "+strings.Join(bits, " + "))
		}
		if polyp := g.PolypSizeMM(); polyp > 0 {
			phrases = append(phrases, "a "+formatMM(polyp)+" mm gallbladder polypoid lesion")
		}
	}

	if d := f.BileDuct; d.HasPathology {
		var bits []string
		if cbd := d.CBDSizeMM(); cbd > 0 {
			bits = append(bits, "CBD ~"+formatMM(cbd)+" mm")
		}
		if d.IHDDilatation.IsYes() {
			bits = append(bits, "intrahepatic dilatation")
		}
		if d.EHDDilatation.IsYes() {
			bits = append(bits, "extrahepatic dilatation")
		}
		if d.StoneSuspected.IsYes() {
			bits = append(bits, "suspected stone")
		}
		if d.AbruptCutoff.IsYes() {
			bits = append(bits, "abrupt cutoff")
		}
		if d.StentPresent.IsYes() {
			bits = append(bits, "stent")
		}
		if d.Pneumobilia.IsYes() {
			bits = append(bits, "pneumobilia")
		}
		if len(bits) > 0 {
			phrases = append(phrases, "bile ducts with "+strings.Join(bits, ", "))
		}
	}

	var sb strings.Builder
	sb.WriteString(f.Exam.Modality.Label())
	sb.WriteString(" examination")
	if len(phrases) > 0 {
		sb.WriteString(" demonstrates ")
		sb.WriteString(strings.Join(phrases, "; "))
	}
	sb.WriteString(". ")

	if v.IsPlaceholder() {
		sb.WriteString("No structured findings are selected. ")
	} else if primary, ok := v.Primary(); ok {
		sb.WriteString("Imaging findings are most consistent with: ")
		sb.WriteString(strings.TrimSuffix(primary.Text, "."))
		sb.WriteString(". ")
	}

	if diffs := v.Differentials; len(diffs) > 0 {
		if len(diffs) > MaxReportDifferentials {
			diffs = diffs[:MaxReportDifferentials]
		}
		sb.WriteString("Differential considerations include ")
		sb.WriteString(strings.Join(diffs, ", "))
		sb.WriteString(". ")
	}

	switch v.Triage {
	case domain.TriageEmergent:
		sb.WriteString("Expedited evaluation with clinical and laboratory correlation is recommended.")
	case domain.TriageUrgent:
		sb.WriteString("Prioritized evaluation with clinical and laboratory correlation is recommended.")
	default:
		sb.WriteString("Correlation with clinical data and prior studies is recommended.")
	}
	return sb.String()
}
