package domain

import (
	"math"
	"strconv"
	"strings"
)

// Morphology is the gross appearance of a focal liver lesion.
type Morphology int

const (
	MorphologyUnknown Morphology = iota
	MorphologySolid
	MorphologyCystic
	MorphologyMixed
)

var morphologyTokens = []string{"UNKNOWN", "SOLID", "CYSTIC", "MIXED"}

func (m Morphology) String() string               { return enumToken(m, morphologyTokens) }
func (m Morphology) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *Morphology) UnmarshalText(b []byte) error {
	return parseEnum("morphology", b, morphologyTokens, m)
}

// Diffusion is the diffusion-weighted behaviour of a lesion.
type Diffusion int

const (
	DiffusionUnknown Diffusion = iota
	DiffusionRestricted
	DiffusionNotRestricted
)

var diffusionTokens = []string{"UNKNOWN", "RESTRICTED", "NOT_RESTRICTED"}

func (d Diffusion) String() string               { return enumToken(d, diffusionTokens) }
func (d Diffusion) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *Diffusion) UnmarshalText(b []byte) error {
	return parseEnumAliased("diffusion", b, diffusionTokens, map[string]Diffusion{"NO": DiffusionNotRestricted}, d)
}

// GeneralEnhancement is the overall enhancement impression when no dynamic study exists.
type GeneralEnhancement int

const (
	GeneralEnhancementUnknown GeneralEnhancement = iota
	GeneralEnhancementNone
	GeneralEnhancementPeripheral
	GeneralEnhancementHomogeneous
	GeneralEnhancementHeterogeneous
)

var generalEnhancementTokens = []string{"UNKNOWN", "NONE", "PERIPHERAL", "HOMOGENEOUS", "HETEROGENEOUS"}

func (e GeneralEnhancement) String() string               { return enumToken(e, generalEnhancementTokens) }
func (e GeneralEnhancement) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *GeneralEnhancement) UnmarshalText(b []byte) error {
	return parseEnum("general_enhancement", b, generalEnhancementTokens, e)
}

// SizeUnit is the unit a lesion size was entered in.
type SizeUnit int

const (
	SizeUnitMM SizeUnit = iota
	SizeUnitCM
)

var sizeUnitTokens = []string{"MM", "CM"}

func (u SizeUnit) String() string               { return enumToken(u, sizeUnitTokens) }
func (u SizeUnit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *SizeUnit) UnmarshalText(b []byte) error {
	return parseEnum("size_unit", b, sizeUnitTokens, u)
}

// RiskContext flags background liver disease relevant to LI-RADS.
type RiskContext struct {
	Cirrhosis bool `json:"cirrhosis"`
	HBV       bool `json:"hbv"`
	HCV       bool `json:"hcv"`
	Other     bool `json:"other"`
}

// Selected reports whether any risk factor is flagged.
func (r RiskContext) Selected() bool {
	return r.Cirrhosis || r.HBV || r.HCV || r.Other
}

// Labels lists the flagged risk factors, or "unknown" when none is flagged.
func (r RiskContext) Labels() []string {
	var out []string
	if r.Cirrhosis {
		out = append(out, "cirrhosis")
	}
	if r.HBV {
		out = append(out, "chronic HBV")
	}
	if r.HCV {
		out = append(out, "chronic HCV")
	}
	if r.Other {
		out = append(out, "other risk factor")
	}
	if len(out) == 0 {
		out = append(out, "unknown")
	}
	return out
}

// LesionFindings is the finding state of the liver-lesion hint engine.
type LesionFindings struct {
	Segment            LiverSegment       `json:"segment"`
	Size               string             `json:"size"`
	SizeUnit           SizeUnit           `json:"size_unit"`
	Morphology         Morphology         `json:"morphology"`
	CTDensity          Intensity          `json:"ct_density"`
	T1                 Intensity          `json:"t1"`
	T2                 Intensity          `json:"t2"`
	Diffusion          Diffusion          `json:"diffusion"`
	HasDynamic         bool               `json:"has_dynamic"`
	Arterial           Intensity          `json:"arterial"`
	Portal             Intensity          `json:"portal"`
	Delayed            Intensity          `json:"delayed"`
	Capsule            Finding            `json:"capsule"`
	GeneralEnhancement GeneralEnhancement `json:"general_enhancement"`
	Risk               RiskContext        `json:"risk_context"`
}

// SizeMM parses the entered size into millimetres. A comma is accepted as decimal separator.
// Non-numeric, non-finite and non-positive sizes report false.
func (l LesionFindings) SizeMM() (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(l.Size), ",", ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	if l.SizeUnit == SizeUnitCM {
		v *= 10
	}
	return v, true
}

// ArterialHyper reports arterial phase hyperenhancement on a dynamic study.
func (l LesionFindings) ArterialHyper() bool {
	return l.HasDynamic && l.Arterial == IntensityHyper
}

// WashoutLike reports portal or delayed phase hypoenhancement on a dynamic study.
func (l LesionFindings) WashoutLike() bool {
	return l.HasDynamic && (l.Portal == IntensityHypo || l.Delayed == IntensityHypo)
}

// DiagnosisName is the closed vocabulary of liver lesion differentials.
type DiagnosisName int

const (
	DiagnosisOther DiagnosisName = iota
	DiagnosisHemangioma
	DiagnosisMetastasis
	DiagnosisFNH
	DiagnosisHCC
	DiagnosisAdenoma
	DiagnosisSimpleCyst
	DiagnosisAbscess
	DiagnosisCholangiocarcinoma
)

var diagnosisTokens = []string{
	"OTHER", "HEMANGIOMA", "METASTASIS", "FNH", "HCC", "ADENOMA", "SIMPLE_CYST", "ABSCESS", "CHOLANGIOCARCINOMA",
}

var diagnosisLabels = []string{
	"Other", "Hemangioma", "Metastasis", "FNH", "HCC", "Adenoma", "Simple cyst", "Abscess", "Cholangiocarcinoma",
}

func (d DiagnosisName) String() string               { return enumToken(d, diagnosisTokens) }
func (d DiagnosisName) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DiagnosisName) UnmarshalText(b []byte) error {
	return parseEnumAliased("diagnosis", b, diagnosisTokens, map[string]DiagnosisName{"CYST": DiagnosisSimpleCyst}, d)
}

// Label returns the report spelling of the diagnosis.
func (d DiagnosisName) Label() string { return enumToken(d, diagnosisLabels) }

// DiagnosisOrder is the declaration order of the differential vocabulary.
var DiagnosisOrder = []DiagnosisName{
	DiagnosisHemangioma, DiagnosisMetastasis, DiagnosisFNH, DiagnosisHCC, DiagnosisAdenoma,
	DiagnosisSimpleCyst, DiagnosisAbscess, DiagnosisCholangiocarcinoma, DiagnosisOther,
}

// Differential is a candidate diagnosis in the user's editable list.
type Differential struct {
	Name       DiagnosisName `json:"name"`
	Enabled    bool          `json:"enabled"`
	Likelihood Likelihood    `json:"likelihood"`
	Percent    int           `json:"percent"`
	Note       string        `json:"note,omitempty"`
}

// DisplayName returns the label used in reports. "Other" carries its note when present.
func (d Differential) DisplayName() string {
	if d.Name == DiagnosisOther {
		if note := strings.TrimSpace(d.Note); note != "" {
			return d.Name.Label() + " (" + note + ")"
		}
	}
	return d.Name.Label()
}

// DefaultDifferentials returns the starting differential list: every diagnosis, with
// hemangioma and metastasis enabled.
func DefaultDifferentials() []Differential {
	out := make([]Differential, 0, len(DiagnosisOrder))
	for _, name := range DiagnosisOrder {
		d := Differential{Name: name, Likelihood: LikelihoodLow}
		switch name {
		case DiagnosisHemangioma:
			d.Enabled, d.Likelihood, d.Percent = true, LikelihoodHigh, 55
		case DiagnosisMetastasis:
			d.Enabled, d.Likelihood, d.Percent = true, LikelihoodMedium, 25
		}
		out = append(out, d)
	}
	return out
}

// WeightMode selects qualitative levels or percentages for differential weights.
type WeightMode int

const (
	WeightModeLevel WeightMode = iota
	WeightModePercent
)

var weightModeTokens = []string{"LEVEL", "PERCENT"}

func (m WeightMode) String() string               { return enumToken(m, weightModeTokens) }
func (m WeightMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *WeightMode) UnmarshalText(b []byte) error {
	return parseEnum("weight_mode", b, weightModeTokens, m)
}

// SuggestedDifferential is an advisory differential produced by the hint engine.
type SuggestedDifferential struct {
	Name       DiagnosisName `json:"name"`
	Likelihood Likelihood    `json:"likelihood"`
	Percent    int           `json:"percent"`
	Rationale  string        `json:"rationale"`
}

// LesionHints is the hint engine output.
type LesionHints struct {
	Hints       []string                `json:"hints"`
	Suggestions []SuggestedDifferential `json:"suggestions"`
}

// FollowUp is a recommended follow-up action for a liver lesion.
type FollowUp int

const (
	FollowUpUnknown FollowUp = iota
	FollowUpNone
	FollowUpDynamicMRI
	FollowUpTriphasicCT
	FollowUpUltrasound
	FollowUpClinicalCorrelation
)

var followUpTokens = []string{"UNKNOWN", "NONE", "DYNAMIC_MRI", "TRIPHASIC_CT", "US_FOLLOW_UP", "CLINICAL_CORRELATION"}

func (f FollowUp) String() string               { return enumToken(f, followUpTokens) }
func (f FollowUp) MarshalText() ([]byte, error) { return []byte(f.String()), nil }
func (f *FollowUp) UnmarshalText(b []byte) error {
	return parseEnum("follow_up", b, followUpTokens, f)
}

// Label returns the report wording of the follow-up action.
func (f FollowUp) Label() string {
	switch f {
	case FollowUpNone:
		return "No follow-up required"
	case FollowUpDynamicMRI:
		return "Dynamic liver MRI"
	case FollowUpTriphasicCT:
		return "Triphasic liver CT"
	case FollowUpUltrasound:
		return "Ultrasound follow-up"
	case FollowUpClinicalCorrelation:
		return "Correlation with clinical data and prior studies"
	default:
		return ""
	}
}

// FollowUpSuggestion is the recommended follow-up with its rationale.
type FollowUpSuggestion struct {
	FollowUp FollowUp `json:"follow_up"`
	Message  string   `json:"message"`
}

// LIRADS is an optional LI-RADS category.
type LIRADS int

const (
	LIRADSUnknown LIRADS = iota
	LIRADS1
	LIRADS2
	LIRADS3
	LIRADS4
	LIRADS5
	LIRADSM
	LIRADSTIV
)

var liradsTokens = []string{"UNKNOWN", "LR_1", "LR_2", "LR_3", "LR_4", "LR_5", "LR_M", "LR_TIV"}

func (l LIRADS) String() string               { return enumToken(l, liradsTokens) }
func (l LIRADS) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *LIRADS) UnmarshalText(b []byte) error {
	return parseEnum("lirads", b, liradsTokens, l)
}

// Label returns the conventional spelling, e.g. "LR-4".
func (l LIRADS) Label() string {
	return strings.ReplaceAll(l.String(), "_", "-")
}

// LesionAssessment is the reader's overall assessment for the lesion report.
type LesionAssessment struct {
	Definitive          bool          `json:"definitive"`
	DefinitiveDiagnosis DiagnosisName `json:"definitive_diagnosis"`
	Confidence          Likelihood    `json:"confidence"`
	LIRADSEnabled       bool          `json:"lirads_enabled"`
	LIRADS              LIRADS        `json:"lirads"`
}

// LesionReportInput gathers everything the lesion report composer renders.
type LesionReportInput struct {
	Findings       LesionFindings   `json:"findings"`
	Differentials  []Differential   `json:"differentials"`
	Mode           WeightMode       `json:"mode"`
	Assessment     LesionAssessment `json:"assessment"`
	ExtraFindings  string           `json:"extra_findings"`
	FollowUp       FollowUp         `json:"follow_up"`
	Recommendation string           `json:"recommendation"`
}

// PercentAdvisory is the non-blocking notice raised when enabled percents do not total 100.
type PercentAdvisory struct {
	Sum     int    `json:"sum"`
	Message string `json:"message"`
}

// LesionReport is the composed lesion report with its advisories.
type LesionReport struct {
	Report     string             `json:"report"`
	Advisory   *PercentAdvisory   `json:"advisory,omitempty"`
	FollowUp   FollowUpSuggestion `json:"follow_up_suggestion"`
	Hints      LesionHints        `json:"hints"`
	LIRADSNote string             `json:"lirads_note,omitempty"`
}
