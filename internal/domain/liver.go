package domain

import "math"

// Numeric ranges for liver and biliary measurements, in millimetres.
const (
	MaxLesionSizeMM = 500
	MaxWallMM       = 30
	MaxPolypMM      = 50
	MaxCBDMM        = 30
)

// ClampMM bounds a measurement to [lo, hi]. Non-finite input maps to lo.
func ClampMM(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Modality is the imaging technique context for the liver/biliary module.
type Modality int

const (
	ModalityUnknown Modality = iota
	ModalityCT
	ModalityMR
	ModalityBoth
)

var modalityTokens = []string{"UNKNOWN", "CT", "MR", "BOTH"}

func (m Modality) String() string               { return enumToken(m, modalityTokens) }
func (m Modality) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *Modality) UnmarshalText(b []byte) error {
	return parseEnumAliased("modality", b, modalityTokens,
		map[string]Modality{"CT_MR": ModalityBoth, "CT+MR": ModalityBoth, "MRI": ModalityMR}, m)
}

// IsValid reports whether m is CT, MR or BOTH.
func (m Modality) IsValid() bool {
	return m >= ModalityCT && m <= ModalityBoth
}

// Label returns the modality prefix used in report sentences.
func (m Modality) Label() string {
	switch m {
	case ModalityCT:
		return "CT"
	case ModalityMR:
		return "MR"
	case ModalityBoth:
		return "CT + MR"
	default:
		return "Imaging"
	}
}

// CTPhase is the acquired CT contrast phase.
type CTPhase int

const (
	CTPhaseUnknown CTPhase = iota
	CTPhaseNoncontrast
	CTPhaseArterial
	CTPhasePortalVenous
	CTPhaseDelayed
	CTPhaseMultiphase
)

var ctPhaseTokens = []string{"UNKNOWN", "NONCONTRAST", "ARTERIAL", "PORTAL_VENOUS", "DELAYED", "MULTIPHASE"}

var ctPhaseAliases = map[string]CTPhase{
	"NC": CTPhaseNoncontrast, "ART": CTPhaseArterial, "PVP": CTPhasePortalVenous,
	"DEL": CTPhaseDelayed, "MULTI": CTPhaseMultiphase,
}

func (p CTPhase) String() string               { return enumToken(p, ctPhaseTokens) }
func (p CTPhase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *CTPhase) UnmarshalText(b []byte) error {
	return parseEnumAliased("ct_phase", b, ctPhaseTokens, ctPhaseAliases, p)
}

// LesionCount distinguishes solitary from multiple lesions.
type LesionCount int

const (
	LesionCountUnknown LesionCount = iota
	LesionCountSingle
	LesionCountMultiple
)

var lesionCountTokens = []string{"UNKNOWN", "SINGLE", "MULTIPLE"}

func (c LesionCount) String() string               { return enumToken(c, lesionCountTokens) }
func (c LesionCount) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *LesionCount) UnmarshalText(b []byte) error {
	return parseEnum("lesion_count", b, lesionCountTokens, c)
}

// LiverSegment is a Couinaud segment.
type LiverSegment int

const (
	SegmentUnknown LiverSegment = iota
	SegmentS1
	SegmentS2
	SegmentS3
	SegmentS4a
	SegmentS4b
	SegmentS5
	SegmentS6
	SegmentS7
	SegmentS8
)

var segmentTokens = []string{"UNKNOWN", "S1", "S2", "S3", "S4A", "S4B", "S5", "S6", "S7", "S8"}

var segmentAliases = map[string]LiverSegment{
	"I": SegmentS1, "II": SegmentS2, "III": SegmentS3, "IVA": SegmentS4a, "IVB": SegmentS4b,
	"V": SegmentS5, "VI": SegmentS6, "VII": SegmentS7, "VIII": SegmentS8,
}

func (s LiverSegment) String() string               { return enumToken(s, segmentTokens) }
func (s LiverSegment) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *LiverSegment) UnmarshalText(b []byte) error {
	return parseEnumAliased("segment", b, segmentTokens, segmentAliases, s)
}

// Label returns the conventional segment spelling, e.g. "S4a".
func (s LiverSegment) Label() string {
	switch s {
	case SegmentS4a:
		return "S4a"
	case SegmentS4b:
		return "S4b"
	default:
		return s.String()
	}
}

// Margin describes the lesion border.
type Margin int

const (
	MarginUnknown Margin = iota
	MarginSharp
	MarginIllDefined
)

var marginTokens = []string{"UNKNOWN", "SHARP", "ILL_DEFINED"}

func (m Margin) String() string               { return enumToken(m, marginTokens) }
func (m Margin) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *Margin) UnmarshalText(b []byte) error {
	return parseEnum("margin", b, marginTokens, m)
}

// CTEnhancement is the CT enhancement pattern of a liver lesion.
type CTEnhancement int

const (
	CTEnhancementUnknown CTEnhancement = iota
	CTEnhancementNone
	CTEnhancementHypervascular
	CTEnhancementRim
	CTEnhancementPeripheralNodular
	CTEnhancementHeterogeneous
	CTEnhancementProgressive
	CTEnhancementWashout
)

var ctEnhancementTokens = []string{
	"UNKNOWN", "NONE", "HYPERVASCULAR", "RIM", "PERIPHERAL_NODULAR",
	"HETEROGENEOUS", "PROGRESSIVE", "WASHOUT",
}

func (e CTEnhancement) String() string               { return enumToken(e, ctEnhancementTokens) }
func (e CTEnhancement) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *CTEnhancement) UnmarshalText(b []byte) error {
	return parseEnum("ct_enhancement", b, ctEnhancementTokens, e)
}

// ChemicalShift is the in-phase versus opposed-phase signal behaviour.
type ChemicalShift int

const (
	ChemicalShiftUnknown ChemicalShift = iota
	ChemicalShiftSignalDrop
	ChemicalShiftNoDrop
)

var chemicalShiftTokens = []string{"UNKNOWN", "SIGNAL_DROP", "NO_DROP"}

func (c ChemicalShift) String() string               { return enumToken(c, chemicalShiftTokens) }
func (c ChemicalShift) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *ChemicalShift) UnmarshalText(b []byte) error {
	return parseEnum("chemical_shift", b, chemicalShiftTokens, c)
}

// MRSequences flags which MR sequences were acquired.
type MRSequences struct {
	T1              bool `json:"t1"`
	T2              bool `json:"t2"`
	DWI             bool `json:"dwi_adc"`
	InOutPhase      bool `json:"in_out_phase"`
	DynamicContrast bool `json:"dynamic_contrast"`
	HBP             bool `json:"hbp"`
}

// None reports whether no sequence is flagged.
func (s MRSequences) None() bool {
	return s == MRSequences{}
}

// DefaultMRSequences is the protocol assumed when MR is selected with no sequence flagged.
func DefaultMRSequences() MRSequences {
	return MRSequences{T1: true, T2: true, DWI: true, DynamicContrast: true}
}

// Exam describes the examination performed.
type Exam struct {
	Modality    Modality    `json:"modality"`
	CTPhase     CTPhase     `json:"ct_phase"`
	MRSequences MRSequences `json:"mr_sequences"`
}

// ClinicalContext is the patient background relevant to liver and biliary findings.
type ClinicalContext struct {
	KnownMalignancy Finding `json:"known_malignancy"`
	Cirrhosis       Finding `json:"cirrhosis"`
	FeverInfection  Finding `json:"fever_infection"`
	Jaundice        Finding `json:"jaundice_cholestasis"`
}

// LiverCT holds the CT-only liver lesion observations.
type LiverCT struct {
	Attenuation   Intensity     `json:"attenuation_nc"`
	Enhancement   CTEnhancement `json:"enhancement_pattern"`
	DelayedFillIn Finding       `json:"delayed_fill_in"`
	Washout       Finding       `json:"washout"`
}

// LiverMR holds the MR-only liver lesion observations.
type LiverMR struct {
	T1Signal                 Intensity     `json:"t1_signal"`
	T2Signal                 Intensity     `json:"t2_signal"`
	DWIRestriction           Finding       `json:"dwi_restriction"`
	InOutPhase               ChemicalShift `json:"in_phase_vs_opposed"`
	ArterialHyperenhancement Finding       `json:"arterial_hyperenhancement"`
	Washout                  Finding       `json:"washout"`
	Capsule                  Finding       `json:"capsule"`
	HBPHypointense           Finding       `json:"hbp_hypointense"`
}

// LiverFindings describe the dominant liver lesion.
type LiverFindings struct {
	HasLesion                 bool         `json:"has_lesion"`
	LesionCount               LesionCount  `json:"lesion_count"`
	LargestSizeMM             float64      `json:"largest_size_mm"`
	Segment                   LiverSegment `json:"segment"`
	Margin                    Margin       `json:"margin"`
	CapsuleRetraction         Finding      `json:"capsule_retraction"`
	BiliaryDilatationAdjacent Finding      `json:"biliary_dilatation_adjacent"`
	FattyLiver                Finding      `json:"fatty_liver"`
	VascularInvasion          Finding      `json:"vascular_invasion"`
	CT                        LiverCT      `json:"ct"`
	MR                        LiverMR      `json:"mr"`
}

// SizeMM returns the clamped lesion size.
func (l LiverFindings) SizeMM() float64 {
	return ClampMM(l.LargestSizeMM, 0, MaxLesionSizeMM)
}

// GallbladderFindings describe gallbladder pathology.
type GallbladderFindings struct {
	HasPathology         bool    `json:"has_pathology"`
	Stones               Finding `json:"stones"`
	WallThicknessMM      float64 `json:"wall_thickening_mm"`
	PericholecysticFluid Finding `json:"pericholecystic_fluid"`
	Distension           Finding `json:"distension"`
	Sludge               Finding `json:"sludge"`
	PolypMM              float64 `json:"polyp_mm"`
}

// WallMM returns the clamped wall thickness.
func (g GallbladderFindings) WallMM() float64 {
	return ClampMM(g.WallThicknessMM, 0, MaxWallMM)
}

// PolypSizeMM returns the clamped polyp size.
func (g GallbladderFindings) PolypSizeMM() float64 {
	return ClampMM(g.PolypMM, 0, MaxPolypMM)
}

// BileDuctFindings describe biliary tree pathology.
type BileDuctFindings struct {
	HasPathology   bool    `json:"has_pathology"`
	IHDDilatation  Finding `json:"ihd_dilatation"`
	EHDDilatation  Finding `json:"ehd_dilatation"`
	CBDMM          float64 `json:"cbd_mm"`
	StoneSuspected Finding `json:"stone_suspected"`
	AbruptCutoff   Finding `json:"abrupt_cutoff"`
	StentPresent   Finding `json:"stent_present"`
	Pneumobilia    Finding `json:"pneumobilia"`
}

// CBDSizeMM returns the clamped common bile duct calibre.
func (b BileDuctFindings) CBDSizeMM() float64 {
	return ClampMM(b.CBDMM, 0, MaxCBDMM)
}

// CBDDilated reports a common bile duct of 7 mm or more, or extrahepatic dilatation.
func (b BileDuctFindings) CBDDilated() bool {
	return b.CBDSizeMM() >= 7 || b.EHDDilatation.IsYes()
}

// LiverBiliaryFindings is the liver, gallbladder and bile duct finding state for one case.
type LiverBiliaryFindings struct {
	Exam        Exam                `json:"exam"`
	Context     ClinicalContext     `json:"context"`
	Liver       LiverFindings       `json:"liver"`
	Gallbladder GallbladderFindings `json:"gallbladder"`
	BileDuct    BileDuctFindings    `json:"bile_duct"`
}
