package service

import (
	"fmt"
	"strings"

	"github.com/radassist-mcp-server/internal/domain"
)

type brainRule = Rule[domain.BrainFindings]

// BrainEvaluator maps a neuro finding state to a triage verdict.
type BrainEvaluator struct {
	table RuleTable[domain.BrainFindings]
}

// NewBrainEvaluator creates a neuro evaluator with its rule table initialized.
func NewBrainEvaluator() *BrainEvaluator {
	e := &BrainEvaluator{}
	e.initializeRules()
	return e
}

// Rules exposes the rule table for inspection.
func (e *BrainEvaluator) Rules() *RuleTable[domain.BrainFindings] {
	return &e.table
}

// Evaluate runs every neuro rule chain. It is pure and total: a state with nothing selected
// yields the single placeholder impression.
func (e *BrainEvaluator) Evaluate(f domain.BrainFindings) domain.Verdict {
	b := &verdictBuilder{}
	e.table.Evaluate(f, b)

	if b.empty() {
		b.impression(domain.Impression{
			Region:     domain.RegionGeneral,
			Code:       domain.PlaceholderCode,
			Text:       "Select findings to get suggestions",
			Reasoning:  "Mark observations in the stroke, hemorrhage, mass, chronic or cystic groups. Free text may be added as a clinical note.",
			ReportLine: "Correlation with clinical information is recommended.",
			Confidence: domain.LikelihoodLow,
			Urgency:    domain.TriageRoutine,
		})
	}

	v := b.build(domain.ModuleBrain)
	v.ReportSentence = composeBrainReport(f.ClinicalNote, v.Impressions)
	return v
}

// composeBrainReport renders the optional clinical note followed by one bullet per impression.
func composeBrainReport(note string, impressions []domain.Impression) string {
	lines := make([]string, 0, len(impressions)+1)
	if note = strings.TrimSpace(note); note != "" {
		lines = append(lines, "Clinical note: "+note)
	}
	for _, imp := range impressions {
		if imp.ReportLine != "" {
			lines = append(lines, "• "+imp.ReportLine)
		}
	}
	return strings.Join(lines, "\n")
}

func (e *BrainEvaluator) initializeRules() {
	t := &e.table

	// Ischemia: true restriction and its DWI-only mimic are mutually exclusive.
	t.addChain(domain.RegionStroke, "ischemia", nil,
		brainRule{Code: "NEURO-ISCH-ACUTE", Name: "Acute restriction", Match: matchAcuteRestriction, Apply: applyAcuteInfarct},
		brainRule{Code: "NEURO-ISCH-SHINE", Name: "DWI without ADC drop", Match: matchShineThrough, Apply: applyShineThrough},
	)

	t.addChain(domain.RegionHemorrhage, "hemorrhage", nil,
		brainRule{Code: "NEURO-BLEED", Name: "Hemorrhage signal", Match: domain.BrainFindings.HasBleedSignal, Apply: applyHemorrhage},
	)
	t.addChain(domain.RegionHemorrhage, "hemorrhagic_transformation", domain.BrainFindings.HasBleedSignal,
		brainRule{Code: "NEURO-BLEED-HT", Name: "Hemorrhagic transformation", Match: matchHemorrhagicTransformation, Apply: applyHemorrhagicTransformation},
	)

	t.addChain(domain.RegionMass, "ring_enhancement", nil,
		brainRule{Code: "NEURO-MASS-ABSCESS", Name: "Ring enhancement with restricted center", Match: matchAbscess, Apply: applyAbscess},
		brainRule{Code: "NEURO-MASS-RING", Name: "Ring enhancement", Match: matchRingLesion, Apply: applyRingLesion},
	)

	noAcute := func(f domain.BrainFindings) bool { return !f.HasAcuteRestriction() }
	lacunar := func(f domain.BrainFindings) bool { return noAcute(f) && f.Chronic.LacunarLike.IsYes() }

	t.addChain(domain.RegionChronic, "small_vessel", noAcute,
		brainRule{Code: "NEURO-CHR-SVD", Name: "Small-vessel FLAIR change", Match: matchSmallVessel, Apply: applySmallVessel},
	)
	// Size buckets make the cavity rules mutually exclusive.
	t.addChain(domain.RegionChronic, "cavity", lacunar,
		brainRule{Code: "NEURO-CHR-PVS", Name: "Perivascular space", Match: matchPVS, Apply: applyPVS},
		brainRule{Code: "NEURO-CHR-LACUNE", Name: "Lacune", Match: matchLacune, Apply: applyLacune},
		brainRule{Code: "NEURO-CHR-ATYPICAL", Name: "Atypical cavity", Match: matchAtypicalCavity, Apply: applyAtypicalCavity},
	)
	t.addChain(domain.RegionChronic, "mesial_temporal", lacunar,
		brainRule{Code: "NEURO-CHR-MTL", Name: "Mesial temporal cystic focus", Match: matchMesialTemporal, Apply: applyMesialTemporal},
	)

	cystic := func(f domain.BrainFindings) bool { return f.Cystic.Present.IsYes() }
	posteriorFossa := func(f domain.BrainFindings) bool { return cystic(f) && f.Cystic.Location.IsPosteriorFossa() }

	t.addChain(domain.RegionCystic, "compartment", cystic,
		brainRule{Code: "NEURO-CYST-ARACHNOID", Name: "Arachnoid cyst", Match: matchArachnoidCyst, Apply: applyArachnoidCyst},
		brainRule{Code: "NEURO-CYST-EPIDERMOID", Name: "Epidermoid", Match: matchEpidermoid, Apply: applyEpidermoid},
		brainRule{Code: "NEURO-CYST-ENCEPHALOMALACIA", Name: "Encephalomalacia", Match: matchEncephalomalacia, Apply: applyEncephalomalacia},
	)
	t.addChain(domain.RegionCystic, "posterior_fossa", posteriorFossa,
		brainRule{Code: "NEURO-CYST-MEGA-CM", Name: "Mega cisterna magna", Match: matchMegaCisternaMagna, Apply: applyMegaCisternaMagna},
		brainRule{Code: "NEURO-CYST-DANDY-WALKER", Name: "Dandy-Walker spectrum", Match: matchDandyWalker, Apply: applyDandyWalker},
	)
	t.addChain(domain.RegionCystic, "dural_sinus", cystic,
		brainRule{Code: "NEURO-CYST-GRANULATION", Name: "Arachnoid granulation", Match: matchArachnoidGranulation, Apply: applyArachnoidGranulation},
	)
	t.addChain(domain.RegionCystic, "not_simple_csf", cystic,
		brainRule{Code: "NEURO-CYST-NOT-SIMPLE", Name: "Enhancement or mass effect", Match: matchNotSimpleCSF, Apply: applyNotSimpleCSF},
	)
}

func territoryLabel(t domain.VascularTerritory) string {
	if t == domain.TerritoryUnknown || t.String() == "UNKNOWN" {
		return "undetermined"
	}
	if t == domain.TerritoryVertebrobasilar {
		return "vertebrobasilar"
	}
	return t.String()
}

func findingLabel(f domain.Finding) string {
	return strings.ToLower(f.String())
}

// --- ischemia ---

func matchAcuteRestriction(f domain.BrainFindings) bool {
	return f.HasAcuteRestriction()
}

func applyAcuteInfarct(f domain.BrainFindings, b *verdictBuilder) {
	hyperacute := f.Stroke.FLAIRChange.IsNo()
	text := "Acute to early subacute ischemic infarct likely"
	stage := "change present → favors a later stage"
	if hyperacute {
		text = "Acute/hyperacute ischemic infarct likely"
		stage = "not prominent → earlier stage likely"
	}
	b.impression(domain.Impression{
		Region:     domain.RegionStroke,
		Code:       "NEURO-ISCH-ACUTE",
		Text:       text,
		Reasoning:  fmt.Sprintf("DWI hyperintensity with low ADC is consistent with restricted diffusion. FLAIR %s. Vascular territory: %s.", stage, territoryLabel(f.Stroke.Territory)),
		ReportLine: "An area of diffusion restriction, hyperintense on DWI and hypointense on the ADC map, is consistent with acute ischemic infarction. Staging with FLAIR correlation is recommended.",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageEmergent,
		NextStep:   "Emergent evaluation under the thrombolysis/thrombectomy pathway with CT, CT angiography or perfusion as clinically appropriate; vascular imaging for large vessel occlusion.",
	})
}

func matchShineThrough(f domain.BrainFindings) bool {
	return f.Stroke.DWIBright.IsYes() && !f.Stroke.ADCLow.IsYes()
}

func applyShineThrough(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionStroke,
		Code:       "NEURO-ISCH-SHINE",
		Text:       "DWI hyperintensity: T2 shine-through, artifact or subacute-chronic stage possible",
		Reasoning:  "When DWI hyperintensity is not accompanied by low ADC, causes other than true restriction (T2 shine-through), artifact or a later stage become more likely.",
		ReportLine: "The DWI hyperintensity does not show a corresponding ADC decrease to support true restriction; T2 shine-through or artifact should be considered and clinico-radiological correlation is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Compare ADC and FLAIR; correlate with contrast-enhanced imaging or angiography if needed.",
	})
	b.differential("T2 shine-through", "Susceptibility or motion artifact", "Subacute-chronic infarct")
}

// --- hemorrhage ---

func massUrgent(h domain.HemorrhageFindings) bool {
	return h.MassEffect == domain.MassEffectMarked ||
		h.MidlineShift == domain.MidlineShift5mmOrMore ||
		h.Hydrocephalus.IsYes()
}

// bleedEtiology picks the etiology text by fixed priority: trauma, hypertension at a typical
// site, anticoagulation, then correlation.
func bleedEtiology(h domain.HemorrhageFindings) string {
	switch {
	case h.TraumaHistory.IsYes():
		return "Traumatic etiology is favored"
	case h.Hypertension.IsYes() && h.Location.IsHypertensiveSite():
		return "Favors hypertensive hemorrhage"
	case h.Anticoagulant.IsYes():
		return "Anticoagulant or coagulopathy related bleeding is more likely"
	default:
		return "Clinical and imaging correlation is needed for etiology"
	}
}

func bleedTypeText(h domain.HemorrhageFindings) string {
	switch {
	case h.BleedType.IsSpecified():
		return h.BleedType.Description()
	case h.SulcalSAH.IsYes():
		return "subarachnoid hemorrhage (SAH) likely"
	case h.IVH.IsYes():
		return "intraventricular hemorrhage (IVH) likely"
	default:
		return "findings favor hemorrhage"
	}
}

func bleedNextStep(h domain.HemorrhageFindings) string {
	switch {
	case h.BleedType == domain.BleedTypeSAH || h.SulcalSAH.IsYes():
		return "CT angiography (and DSA when clinically appropriate) for aneurysm or AVM; emergent neurosurgery/neurology consultation."
	case h.BleedType == domain.BleedTypeEDH || h.BleedType == domain.BleedTypeSDH || h.TraumaHistory.IsYes():
		return "Neurosurgical evaluation within the trauma protocol; emergent intervention plan if mass effect or clinical deterioration."
	case massUrgent(h):
		return "Emergent clinical evaluation for mass effect, midline shift or hydrocephalus; serial imaging and neurosurgery consultation as needed."
	case h.Anticoagulant.IsYes():
		return "Emergent coagulation laboratory correlation and coordination with the clinical team for reversal protocols."
	default:
		return "Further clinical and, if needed, angiographic or perfusion workup for etiology (hypertension, CAA, AVM, tumor, venous)."
	}
}

func applyHemorrhage(f domain.BrainFindings, b *verdictBuilder) {
	h := f.Hemorrhage
	urgency := domain.TriageUrgent
	if massUrgent(h) {
		urgency = domain.TriageEmergent
	}

	var positive []string
	if h.CTHyperdense.IsYes() {
		positive = append(positive, "CT hyperdensity")
	}
	if f.Stroke.Susceptibility.IsYes() {
		positive = append(positive, "GRE/SWI signal loss")
	}
	if h.SulcalSAH.IsYes() {
		positive = append(positive, "SAH")
	}
	if h.IVH.IsYes() {
		positive = append(positive, "IVH")
	}

	var reasoning []string
	if len(positive) > 0 {
		reasoning = append(reasoning, "Favoring hemorrhage: "+strings.Join(positive, " / ")+".")
	}
	reasoning = append(reasoning,
		fmt.Sprintf("Location: %s. Size: %s. Mass effect: %s. Midline shift: %s. Hydrocephalus: %s.",
			strings.ToLower(h.Location.String()), strings.ToLower(h.Size.String()),
			strings.ToLower(h.MassEffect.String()), strings.ToLower(h.MidlineShift.String()),
			findingLabel(h.Hydrocephalus)),
		bleedEtiology(h)+".",
	)

	b.impression(domain.Impression{
		Region:     domain.RegionHemorrhage,
		Code:       "NEURO-BLEED",
		Text:       "Hemorrhage: " + bleedTypeText(h),
		Reasoning:  strings.Join(reasoning, " "),
		ReportLine: "Findings favor intracranial hemorrhage. Type and location are reported, with assessment of mass effect, midline shift and the ventricular system. Correlation with clinical and laboratory data (coagulation, anticoagulant use) is recommended.",
		Confidence: domain.LikelihoodHigh,
		Urgency:    urgency,
		NextStep:   bleedNextStep(h),
	})
}

func matchHemorrhagicTransformation(f domain.BrainFindings) bool {
	return f.Stroke.DWIBright.IsYes() && (f.Stroke.Susceptibility.IsYes() || f.Hemorrhage.CTHyperdense.IsYes())
}

func applyHemorrhagicTransformation(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionHemorrhage,
		Code:       "NEURO-BLEED-HT",
		Text:       "Possible hemorrhagic transformation of an ischemic focus",
		Reasoning:  "CT hyperdensity or GRE/SWI hemorrhage within an area matching DWI/ADC ischemia may represent hemorrhagic transformation.",
		ReportLine: "A hemorrhagic component is seen within the area consistent with ischemic infarction, favoring hemorrhagic transformation; emergent correlation is recommended for thrombolytic/antithrombotic planning.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageEmergent,
		NextStep:   "Emergent clinical evaluation for thrombolytic/antithrombotic decisions; follow-up CT according to bleed volume and mass effect.",
	})
}

// --- mass / infection ---

func matchAbscess(f domain.BrainFindings) bool {
	return f.Mass.RingEnhancement.IsYes() && f.Mass.RestrictedCenter.IsYes()
}

func applyAbscess(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionMass,
		Code:       "NEURO-MASS-ABSCESS",
		Text:       "Ring-enhancing lesion with central restriction: favors abscess",
		Reasoning:  fmt.Sprintf("Classic pattern: ring enhancement with marked central restriction increases the likelihood of pyogenic abscess. Edema: %s.", strings.ToLower(f.Mass.Edema.String())),
		ReportLine: "A ring-enhancing lesion is seen; central diffusion restriction may be interpreted as favoring abscess. Clinical and laboratory correlation and neurology/infectious disease evaluation are recommended.",
		Confidence: domain.LikelihoodHigh,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Clinical infection signs with CRP and leukocyte count, and treatment response follow-up; surgical consultation if needed.",
	})
	b.differential("Pyogenic abscess", "Necrotic neoplasm")
}

func matchRingLesion(f domain.BrainFindings) bool {
	return f.Mass.RingEnhancement.IsYes() && !f.Mass.RestrictedCenter.IsYes()
}

func applyRingLesion(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionMass,
		Code:       "NEURO-MASS-RING",
		Text:       "Ring-enhancing lesion: neoplastic/necrotic differential",
		Reasoning:  "Ring enhancement alone is not specific. Without central restriction the differential widens to metastasis, glioblastoma and radiation necrosis.",
		ReportLine: "Ring-enhancing lesion(s) are seen. Without marked diffusion restriction, neoplastic or necrotic processes should be considered; MR perfusion, spectroscopy and clinical correlation are recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "MR perfusion, MR spectroscopy and systemic screening for suspected metastasis.",
	})
	b.differential("Metastasis", "Glioblastoma", "Radiation necrosis")
}

// --- chronic ---

func matchSmallVessel(f domain.BrainFindings) bool {
	return f.Chronic.SmallVesselFLAIR.IsYes()
}

func applySmallVessel(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionChronic,
		Code:       "NEURO-CHR-SVD",
		Text:       "Chronic small vessel disease (white matter change) likely",
		Reasoning:  "Periventricular or deep white matter FLAIR hyperintensities may be consistent with chronic small vessel disease.",
		ReportLine: "Nonspecific FLAIR hyperintensities in the periventricular and/or deep white matter are consistent with chronic small vessel disease.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Correlate with vascular risk factors (hypertension, diabetes, dyslipidemia); compare with prior studies.",
	})
}

func lacuneRegionLabel(r domain.LacuneRegion) string {
	return strings.ToLower(strings.ReplaceAll(r.String(), "_", " "))
}

func matchPVS(f domain.BrainFindings) bool {
	c := f.Chronic
	return c.CSFSignal.IsYes() &&
		c.Size == domain.LacuneSizeUpTo3mm &&
		c.MassEffect == domain.MassEffectNone &&
		c.Region != domain.LacuneRegionMesialTemporal
}

func applyPVS(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionChronic,
		Code:       "NEURO-CHR-PVS",
		Text:       "Favors perivascular space (PVS)",
		Reasoning:  fmt.Sprintf("Small (≤3mm) CSF-signal focus without mass effect. Location: %s.", lacuneRegionLabel(f.Chronic.Region)),
		ReportLine: "Small foci with CSF signal characteristics in the deep structures/deep white matter are consistent with perivascular (Virchow-Robin) spaces.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "No further action for a typical appearance; correlate with clinical data and prior studies.",
	})
}

func matchLacune(f domain.BrainFindings) bool {
	return f.Chronic.Size == domain.LacuneSize4To15mm && f.Chronic.MassEffect == domain.MassEffectNone
}

func applyLacune(f domain.BrainFindings, b *verdictBuilder) {
	rim := f.Chronic.FLAIRRim.IsYes()
	imp := domain.Impression{
		Region:     domain.RegionChronic,
		Code:       "NEURO-CHR-LACUNE",
		Text:       "Sequela of lacunar infarct likely",
		Reasoning:  fmt.Sprintf("Small cavitary focus (4-15mm) without mass effect. Location: %s. FLAIR rim absent or unknown.", lacuneRegionLabel(f.Chronic.Region)),
		ReportLine: "The small deep cavitary lesion may be consistent with the sequela of a lacunar infarct.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Clinical evaluation of vascular risk factors; comparison with prior studies is recommended.",
	}
	if rim {
		imp.Text = "Sequela of lacunar infarct likely (supported by gliotic rim)"
		imp.Reasoning = fmt.Sprintf("Small cavitary focus (4-15mm) without mass effect. Location: %s. A surrounding FLAIR rim/gliosis supports a lacune.", lacuneRegionLabel(f.Chronic.Region))
		imp.ReportLine = "A small deep cavitary lesion with a surrounding gliotic FLAIR rim is consistent with the sequela of a lacunar infarct."
		imp.Confidence = domain.LikelihoodHigh
	}
	b.impression(imp)
}

func matchAtypicalCavity(f domain.BrainFindings) bool {
	c := f.Chronic
	return c.Size == domain.LacuneSizeOver15mm ||
		c.MassEffect == domain.MassEffectMild ||
		c.MassEffect == domain.MassEffectMarked
}

func applyAtypicalCavity(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionChronic,
		Code:       "NEURO-CHR-ATYPICAL",
		Text:       "Atypical cavitary lesion: differential beyond lacune/PVS",
		Reasoning:  fmt.Sprintf("Size or mass effect is atypical for a lacune or PVS. Size: %s, mass effect: %s.", strings.ToLower(f.Chronic.Size.String()), strings.ToLower(f.Chronic.MassEffect.String())),
		ReportLine: "The cavitary lesion is atypical for a lacune or PVS because of its size or mass effect; evaluation for other causes (old hematoma cavity, cystic tumor/necrosis, encephalomalacia) is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Compare with prior imaging; further evaluation with contrast-enhanced MR, perfusion or spectroscopy if needed.",
	})
	b.differential("Old hematoma cavity", "Cystic tumor/necrosis", "Encephalomalacia")
}

func matchMesialTemporal(f domain.BrainFindings) bool {
	return f.Chronic.Region == domain.LacuneRegionMesialTemporal && f.Chronic.CSFSignal.IsYes()
}

func applyMesialTemporal(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionChronic,
		Code:       "NEURO-CHR-MTL",
		Text:       "Mesial temporal/hippocampal cystic focus: dedicated differential needed",
		Reasoning:  "Small CSF-signal foci in this region can mimic PVS; choroidal fissure cyst and hippocampal sulcus remnant should be considered.",
		ReportLine: "A small CSF-signal cystic focus is seen in the mesial temporal region; given the location, differentiation from benign cystic structures other than perivascular space is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Correlate across planes and with prior imaging; thin-section follow-up if needed.",
	})
	b.differential("Choroidal fissure cyst", "Hippocampal sulcus remnant")
	b.warn("Mesial temporal location: small CSF-signal foci here are ambiguous and should not be reported as PVS without dedicated review.")
}

// --- cystic ---

func cysticLocationLabel(l domain.CysticLocation) string {
	return strings.ToLower(strings.ReplaceAll(l.String(), "_", " "))
}

func matchArachnoidCyst(f domain.BrainFindings) bool {
	c := f.Cystic
	return c.Compartment == domain.CompartmentExtraAxial &&
		c.IsCSFPattern() &&
		!c.DWIRestriction.IsYes() &&
		c.Enhancement.IsAbsentOrUnknown() &&
		c.LocalMassEffect != domain.PresencePresent
}

func applyArachnoidCyst(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-ARACHNOID",
		Text:       "Favors arachnoid cyst (extra-axial, CSF signal)",
		Reasoning:  fmt.Sprintf("Extra-axial location with a CSF signal pattern (T1 low/T2 high with FLAIR suppression). No DWI restriction and no meaningful enhancement. Location: %s.", cysticLocationLabel(f.Cystic.Location)),
		ReportLine: "An extra-axial cystic structure with CSF signal characteristics may be consistent with an arachnoid cyst. Correlation for mass effect on adjacent structures and comparison with prior studies are recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Neurosurgical evaluation if symptomatic; follow-up if growth or compression is suspected.",
	})
}

func matchEpidermoid(f domain.BrainFindings) bool {
	c := f.Cystic
	return c.Compartment == domain.CompartmentExtraAxial &&
		c.LooksLikeCSF.IsYes() &&
		(c.FLAIRSuppressed.IsNo() || c.DWIRestriction.IsYes())
}

func applyEpidermoid(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-EPIDERMOID",
		Text:       "Favors epidermoid (CSF-like but without FLAIR suppression or with DWI restriction)",
		Reasoning:  fmt.Sprintf("Signal may resemble CSF, but incomplete FLAIR suppression and/or DWI restriction are strong clues for epidermoid. Location: %s.", cysticLocationLabel(f.Cystic.Location)),
		ReportLine: "An extra-axial cystic/heterogeneous lesion shows CSF-like signal, but lack of FLAIR suppression and/or diffusion restriction may be consistent with an epidermoid. Clinical and sequence correlation is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Confirm on DWI/ADC with thin sections; neurosurgery consultation if symptomatic.",
	})
}

func matchEncephalomalacia(f domain.BrainFindings) bool {
	c := f.Cystic
	return c.Compartment == domain.CompartmentIntraAxial &&
		c.LooksLikeCSF.IsYes() &&
		c.GliosisRim.IsYes() &&
		c.LocalMassEffect != domain.PresencePresent &&
		c.Enhancement.IsAbsentOrUnknown()
}

func applyEncephalomalacia(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-ENCEPHALOMALACIA",
		Text:       "Favors encephalomalacia / chronic sequela (intra-axial cavity with gliosis)",
		Reasoning:  fmt.Sprintf("Intra-axial CSF-signal cavity with surrounding gliotic change (FLAIR rim). No mass effect. Location: %s.", cysticLocationLabel(f.Cystic.Location)),
		ReportLine: "An intra-axial cavity with CSF signal characteristics and surrounding gliotic change may be consistent with encephalomalacia/chronic sequela. Correlation with clinical data and prior studies is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Correlate with a history of prior infarct or trauma; compare with prior studies if needed.",
	})
}

func matchMegaCisternaMagna(f domain.BrainFindings) bool {
	c := f.Cystic
	return c.CommunicatesWith4V.IsNo() &&
		!c.VermianHypoplasia.IsYes() &&
		!c.FourthVentricleEnlarged.IsYes() &&
		c.IsCSFPattern()
}

func applyMegaCisternaMagna(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-MEGA-CM",
		Text:       "Favors mega cisterna magna",
		Reasoning:  "Enlarged cisterna magna without clear communication with the fourth ventricle, without vermian hypoplasia and without fourth ventricle enlargement favors mega cisterna magna.",
		ReportLine: "The cisterna magna is enlarged without clear communication with the fourth ventricle or findings of vermian hypoplasia; this may be consistent with mega cisterna magna.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Clinical correlation; detailed posterior fossa evaluation if an associated anomaly is suspected.",
	})
}

func matchDandyWalker(f domain.BrainFindings) bool {
	c := f.Cystic
	communicates := c.CommunicatesWith4V.IsYes() || c.CommunicatesWith4V == domain.FindingUnknown
	return (c.VermianHypoplasia.IsYes() || c.FourthVentricleEnlarged.IsYes()) &&
		communicates &&
		c.IsCSFPattern()
}

func applyDandyWalker(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-DANDY-WALKER",
		Text:       "Dandy-Walker spectrum / variant possible",
		Reasoning:  "Cystic posterior fossa enlargement with vermian hypoplasia and/or fourth ventricle enlargement and communication may favor the Dandy-Walker spectrum.",
		ReportLine: "Cystic posterior fossa enlargement with vermian developmental anomaly and/or fourth ventricle enlargement or communication may be consistent with the Dandy-Walker spectrum. Clinical and detailed posterior fossa correlation is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Thin-section evaluation of posterior fossa anatomy; pediatric/neurology consultation when appropriate.",
	})
}

func matchArachnoidGranulation(f domain.BrainFindings) bool {
	c := f.Cystic
	nearSinus := c.Compartment == domain.CompartmentDuralSinus || c.Location == domain.CysticLocationDuralSinus
	return nearSinus &&
		c.LooksLikeCSF.IsYes() &&
		c.LocalMassEffect != domain.PresencePresent &&
		c.Enhancement.IsAbsentOrUnknown()
}

func applyArachnoidGranulation(_ domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-GRANULATION",
		Text:       "Favors arachnoid granulation",
		Reasoning:  "A CSF-like signal or filling defect adjacent to a dural venous sinus, in a typical location without mass effect, may be consistent with arachnoid granulation.",
		ReportLine: "A CSF-like signal/filling defect adjacent to a dural venous sinus may be consistent with arachnoid granulation. Correlation with clinical data and prior studies is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageRoutine,
		NextStep:   "Correlate with MRV or contrast-enhanced imaging in atypical or suspicious cases.",
	})
}

func matchNotSimpleCSF(f domain.BrainFindings) bool {
	c := f.Cystic
	return c.Enhancement == domain.CysticEnhancementRim ||
		c.Enhancement == domain.CysticEnhancementNodular ||
		c.LocalMassEffect == domain.PresencePresent
}

func applyNotSimpleCSF(f domain.BrainFindings, b *verdictBuilder) {
	b.impression(domain.Impression{
		Region:     domain.RegionCystic,
		Code:       "NEURO-CYST-NOT-SIMPLE",
		Text:       "Enhancement/mass effect in a cystic lesion: differential beyond a simple CSF space",
		Reasoning:  fmt.Sprintf("Enhancement pattern: %s. Mass effect: %s. These findings widen the differential beyond benign CSF spaces such as PVS or arachnoid cyst.", strings.ToLower(f.Cystic.Enhancement.String()), strings.ToLower(f.Cystic.LocalMassEffect.String())),
		ReportLine: "Because of enhancement and/or mass effect in the cystic lesion, further evaluation for differentials other than a simple perivascular space or arachnoid cyst (cystic tumor/necrosis, infection, posthemorrhagic cavity) is recommended.",
		Confidence: domain.LikelihoodMedium,
		Urgency:    domain.TriageUrgent,
		NextStep:   "Contrast-enhanced MR with DWI/ADC and, if needed, perfusion or spectroscopy; clinical correlation.",
	})
	b.differential("Cystic tumor/necrosis", "Infectious process", "Posthemorrhagic cavity")
	b.warn("Not a simple CSF space: enhancement or local mass effect broadens the differential.")
}
