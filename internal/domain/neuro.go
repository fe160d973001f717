package domain

// VascularTerritory is the arterial territory of an ischemic focus.
type VascularTerritory int

const (
	TerritoryUnknown VascularTerritory = iota
	TerritoryMCA
	TerritoryACA
	TerritoryPCA
	TerritoryVertebrobasilar
)

var territoryTokens = []string{"UNKNOWN", "MCA", "ACA", "PCA", "VERTEBROBASILAR"}

func (v VascularTerritory) String() string               { return enumToken(v, territoryTokens) }
func (v VascularTerritory) MarshalText() ([]byte, error) { return []byte(v.String()), nil }
func (v *VascularTerritory) UnmarshalText(b []byte) error {
	return parseEnum("vascular_territory", b, territoryTokens, v)
}

// MassEffect grades mass effect on adjacent structures.
type MassEffect int

const (
	MassEffectUnknown MassEffect = iota
	MassEffectNone
	MassEffectMild
	MassEffectMarked
)

var massEffectTokens = []string{"UNKNOWN", "NONE", "MILD", "MARKED"}

func (m MassEffect) String() string               { return enumToken(m, massEffectTokens) }
func (m MassEffect) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *MassEffect) UnmarshalText(b []byte) error {
	return parseEnum("mass_effect", b, massEffectTokens, m)
}

// BleedType is an explicitly selected intracranial hemorrhage type.
type BleedType int

const (
	BleedTypeUnknown BleedType = iota
	BleedTypeIPH
	BleedTypeSAH
	BleedTypeSDH
	BleedTypeEDH
	BleedTypeContusion
	BleedTypeHemorrhagicTransformation
)

var bleedTypeTokens = []string{"UNKNOWN", "IPH", "SAH", "SDH", "EDH", "CONTUSION", "HEMORRHAGIC_TRANSFORMATION"}

func (t BleedType) String() string               { return enumToken(t, bleedTypeTokens) }
func (t BleedType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *BleedType) UnmarshalText(b []byte) error {
	return parseEnum("bleed_type", b, bleedTypeTokens, t)
}

// IsSpecified reports whether a declared bleed type was selected.
func (t BleedType) IsSpecified() bool {
	return t > BleedTypeUnknown && t <= BleedTypeHemorrhagicTransformation
}

// Description returns the report wording for the bleed type.
func (t BleedType) Description() string {
	switch t {
	case BleedTypeIPH:
		return "intraparenchymal hemorrhage (IPH)"
	case BleedTypeSAH:
		return "subarachnoid hemorrhage (SAH)"
	case BleedTypeSDH:
		return "subdural hematoma (SDH)"
	case BleedTypeEDH:
		return "epidural hematoma (EDH)"
	case BleedTypeContusion:
		return "hemorrhagic contusion"
	case BleedTypeHemorrhagicTransformation:
		return "hemorrhagic transformation"
	default:
		return "unspecified hemorrhage"
	}
}

// BleedLocation is the dominant location of a hemorrhage.
type BleedLocation int

const (
	BleedLocationUnknown BleedLocation = iota
	BleedLocationLobar
	BleedLocationDeep
	BleedLocationBrainstem
	BleedLocationCerebellum
	BleedLocationIntraventricular
)

var bleedLocationTokens = []string{"UNKNOWN", "LOBAR", "DEEP", "BRAINSTEM", "CEREBELLUM", "INTRAVENTRICULAR"}

func (l BleedLocation) String() string               { return enumToken(l, bleedLocationTokens) }
func (l BleedLocation) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *BleedLocation) UnmarshalText(b []byte) error {
	return parseEnum("bleed_location", b, bleedLocationTokens, l)
}

// IsHypertensiveSite reports whether the location is typical for hypertensive hemorrhage.
func (l BleedLocation) IsHypertensiveSite() bool {
	switch l {
	case BleedLocationDeep, BleedLocationBrainstem, BleedLocationCerebellum:
		return true
	default:
		return false
	}
}

// BleedSize is a coarse hematoma size.
type BleedSize int

const (
	BleedSizeUnknown BleedSize = iota
	BleedSizeSmall
	BleedSizeMedium
	BleedSizeLarge
)

var bleedSizeTokens = []string{"UNKNOWN", "SMALL", "MEDIUM", "LARGE"}

func (s BleedSize) String() string               { return enumToken(s, bleedSizeTokens) }
func (s BleedSize) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *BleedSize) UnmarshalText(b []byte) error {
	return parseEnum("bleed_size", b, bleedSizeTokens, s)
}

// MidlineShift buckets midline displacement.
type MidlineShift int

const (
	MidlineShiftUnknown MidlineShift = iota
	MidlineShiftNone
	MidlineShiftUnder5mm
	MidlineShift5mmOrMore
)

var midlineShiftTokens = []string{"UNKNOWN", "NONE", "UNDER_5MM", "5MM_OR_MORE"}

func (m MidlineShift) String() string               { return enumToken(m, midlineShiftTokens) }
func (m MidlineShift) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *MidlineShift) UnmarshalText(b []byte) error {
	return parseEnum("midline_shift", b, midlineShiftTokens, m)
}

// LacuneSize buckets the size of a small cavitary focus.
type LacuneSize int

const (
	LacuneSizeUnknown LacuneSize = iota
	LacuneSizeUpTo3mm
	LacuneSize4To15mm
	LacuneSizeOver15mm
)

var lacuneSizeTokens = []string{"UNKNOWN", "UP_TO_3MM", "4_TO_15MM", "OVER_15MM"}

func (s LacuneSize) String() string               { return enumToken(s, lacuneSizeTokens) }
func (s LacuneSize) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *LacuneSize) UnmarshalText(b []byte) error {
	return parseEnum("lacune_size", b, lacuneSizeTokens, s)
}

// LacuneRegion is the location of a small cavitary focus.
type LacuneRegion int

const (
	LacuneRegionUnknown LacuneRegion = iota
	LacuneRegionCentrumSemiovale
	LacuneRegionBasalGanglia
	LacuneRegionInternalCapsule
	LacuneRegionThalamus
	LacuneRegionPons
	LacuneRegionMesialTemporal
	LacuneRegionDeepWhiteMatter
)

var lacuneRegionTokens = []string{
	"UNKNOWN", "CENTRUM_SEMIOVALE", "BASAL_GANGLIA", "INTERNAL_CAPSULE",
	"THALAMUS", "PONS", "MESIAL_TEMPORAL", "DEEP_WHITE_MATTER",
}

func (r LacuneRegion) String() string               { return enumToken(r, lacuneRegionTokens) }
func (r LacuneRegion) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *LacuneRegion) UnmarshalText(b []byte) error {
	return parseEnum("lacune_region", b, lacuneRegionTokens, r)
}

// Compartment is the anatomic compartment of a cystic lesion.
type Compartment int

const (
	CompartmentUnknown Compartment = iota
	CompartmentIntraAxial
	CompartmentExtraAxial
	CompartmentVentricular
	CompartmentDuralSinus
)

var compartmentTokens = []string{"UNKNOWN", "INTRA_AXIAL", "EXTRA_AXIAL", "VENTRICULAR", "DURAL_SINUS"}

func (c Compartment) String() string               { return enumToken(c, compartmentTokens) }
func (c Compartment) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *Compartment) UnmarshalText(b []byte) error {
	return parseEnum("compartment", b, compartmentTokens, c)
}

// CysticEnhancement is the enhancement pattern of a cystic lesion.
type CysticEnhancement int

const (
	CysticEnhancementUnknown CysticEnhancement = iota
	CysticEnhancementNone
	CysticEnhancementRim
	CysticEnhancementNodular
)

var cysticEnhancementTokens = []string{"UNKNOWN", "NONE", "RIM", "NODULAR"}

func (e CysticEnhancement) String() string               { return enumToken(e, cysticEnhancementTokens) }
func (e CysticEnhancement) MarshalText() ([]byte, error) { return []byte(e.String()), nil }
func (e *CysticEnhancement) UnmarshalText(b []byte) error {
	return parseEnum("cystic_enhancement", b, cysticEnhancementTokens, e)
}

// IsAbsentOrUnknown reports whether no meaningful enhancement was recorded.
func (e CysticEnhancement) IsAbsentOrUnknown() bool {
	return e != CysticEnhancementRim && e != CysticEnhancementNodular
}

// CysticLocation is the location of a cystic lesion.
type CysticLocation int

const (
	CysticLocationUnknown CysticLocation = iota
	CysticLocationCisternaMagna
	CysticLocationFourthVentricle
	CysticLocationCerebellopontineAngle
	CysticLocationSuprasellar
	CysticLocationConvexity
	CysticLocationMesialTemporal
	CysticLocationDeepCavity
	CysticLocationDuralSinus
)

var cysticLocationTokens = []string{
	"UNKNOWN", "CISTERNA_MAGNA", "FOURTH_VENTRICLE", "CEREBELLOPONTINE_ANGLE", "SUPRASELLAR",
	"CONVEXITY", "MESIAL_TEMPORAL", "DEEP_CAVITY", "DURAL_SINUS",
}

func (l CysticLocation) String() string               { return enumToken(l, cysticLocationTokens) }
func (l CysticLocation) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *CysticLocation) UnmarshalText(b []byte) error {
	return parseEnum("cystic_location", b, cysticLocationTokens, l)
}

// IsPosteriorFossa reports whether the location is in the posterior fossa.
func (l CysticLocation) IsPosteriorFossa() bool {
	return l == CysticLocationCisternaMagna || l == CysticLocationFourthVentricle
}

// StrokeFindings are the diffusion and susceptibility observations for ischemia.
type StrokeFindings struct {
	DWIBright      Finding           `json:"dwi_bright"`
	ADCLow         Finding           `json:"adc_low"`
	FLAIRChange    Finding           `json:"flair_change"`
	Susceptibility Finding           `json:"susceptibility"`
	Territory      VascularTerritory `json:"territory"`
}

// HemorrhageFindings are the CT/MR observations for intracranial hemorrhage.
type HemorrhageFindings struct {
	CTHyperdense  Finding       `json:"ct_hyperdense"`
	SulcalSAH     Finding       `json:"sulcal_sah"`
	IVH           Finding       `json:"ivh"`
	MassEffect    MassEffect    `json:"mass_effect"`
	BleedType     BleedType     `json:"bleed_type"`
	Location      BleedLocation `json:"location"`
	Size          BleedSize     `json:"size"`
	MidlineShift  MidlineShift  `json:"midline_shift"`
	Hydrocephalus Finding       `json:"hydrocephalus"`
	Anticoagulant Finding       `json:"anticoagulant"`
	TraumaHistory Finding       `json:"trauma_history"`
	Hypertension  Finding       `json:"hypertension_history"`
}

// MassFindings describe an enhancing mass or infection.
type MassFindings struct {
	RingEnhancement  Finding  `json:"ring_enhancement"`
	RestrictedCenter Finding  `json:"restricted_center"`
	Edema            Presence `json:"edema"`
}

// ChronicFindings describe small-vessel change, lacunes and perivascular spaces.
type ChronicFindings struct {
	LacunarLike      Finding      `json:"lacunar_like"`
	SmallVesselFLAIR Finding      `json:"small_vessel_flair"`
	CSFSignal        Finding      `json:"csf_signal"`
	Size             LacuneSize   `json:"size"`
	MassEffect       MassEffect   `json:"mass_effect"`
	FLAIRRim         Finding      `json:"flair_rim"`
	Region           LacuneRegion `json:"region"`
}

// CysticFindings drive the cystic-lesion differential.
type CysticFindings struct {
	Present                 Finding           `json:"present"`
	Compartment             Compartment       `json:"compartment"`
	LooksLikeCSF            Finding           `json:"looks_like_csf"`
	FLAIRSuppressed         Finding           `json:"flair_suppressed"`
	DWIRestriction          Finding           `json:"dwi_restriction"`
	Enhancement             CysticEnhancement `json:"enhancement"`
	GliosisRim              Finding           `json:"gliosis_rim"`
	LocalMassEffect         Presence          `json:"local_mass_effect"`
	Location                CysticLocation    `json:"location"`
	CommunicatesWith4V      Finding           `json:"communicates_with_4v"`
	VermianHypoplasia       Finding           `json:"vermian_hypoplasia"`
	FourthVentricleEnlarged Finding           `json:"fourth_ventricle_enlarged"`
}

// IsCSFPattern reports T1-low/T2-high signal with FLAIR suppression.
func (c CysticFindings) IsCSFPattern() bool {
	return c.LooksLikeCSF.IsYes() && c.FLAIRSuppressed.IsYes()
}

// BrainFindings is the neuro finding state for one case.
type BrainFindings struct {
	ClinicalNote string             `json:"clinical_note,omitempty"`
	Stroke       StrokeFindings     `json:"stroke"`
	Hemorrhage   HemorrhageFindings `json:"hemorrhage"`
	Mass         MassFindings       `json:"mass"`
	Chronic      ChronicFindings    `json:"chronic"`
	Cystic       CysticFindings     `json:"cystic"`
}

// HasAcuteRestriction reports DWI-bright with ADC-low.
func (b BrainFindings) HasAcuteRestriction() bool {
	return b.Stroke.DWIBright.IsYes() && b.Stroke.ADCLow.IsYes()
}

// HasBleedSignal reports any observation favoring hemorrhage.
func (b BrainFindings) HasBleedSignal() bool {
	h := b.Hemorrhage
	return h.CTHyperdense.IsYes() ||
		b.Stroke.Susceptibility.IsYes() ||
		h.SulcalSAH.IsYes() ||
		h.IVH.IsYes() ||
		h.BleedType.IsSpecified()
}
