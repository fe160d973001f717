// Package domain contains the closed vocabularies, finding-state records and verdict types
// shared by the radiology decision-support rule engine.
//
// Every finding field is a named integer type whose zero value is the "unknown" member, so a
// field that was never touched is always a legal value that matches no trigger.
package domain

import (
	"fmt"
	"strings"
)

// enumToken returns the canonical token for v. Values outside the declared range render as the
// zero member so that they route into the unknown branch instead of panicking.
func enumToken[T ~int](v T, tokens []string) string {
	if int(v) < 0 || int(v) >= len(tokens) {
		return tokens[0]
	}
	return tokens[v]
}

// parseEnum decodes a token into out. Matching is case-insensitive; spaces and dashes are read
// as underscores and UNK, NA and the empty string select the zero member.
func parseEnum[T ~int](kind string, text []byte, tokens []string, out *T) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "", "UNK", "NA", "N/A":
		*out = 0
		return nil
	}
	for i, tok := range tokens {
		if s == tok {
			*out = T(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q", ErrInvalidEnumValue, kind, string(text))
}

// parseEnumAliased is parseEnum with additional accepted spellings.
func parseEnumAliased[T ~int](kind string, text []byte, tokens []string, aliases map[string]T, out *T) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	if v, ok := aliases[s]; ok {
		*out = v
		return nil
	}
	return parseEnum(kind, text, tokens, out)
}

// Finding is a tri-state observation.
type Finding int

const (
	FindingUnknown Finding = iota
	FindingYes
	FindingNo
)

var findingTokens = []string{"UNKNOWN", "YES", "NO"}

func (f Finding) String() string               { return enumToken(f, findingTokens) }
func (f Finding) MarshalText() ([]byte, error) { return []byte(f.String()), nil }
func (f *Finding) UnmarshalText(b []byte) error {
	return parseEnum("finding", b, findingTokens, f)
}

// IsYes reports whether the observation was positively recorded.
func (f Finding) IsYes() bool { return f == FindingYes }

// IsNo reports whether the observation was explicitly recorded as absent.
func (f Finding) IsNo() bool { return f == FindingNo }

// Presence records whether a feature is present, absent or not assessed.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresenceAbsent
	PresencePresent
)

var presenceTokens = []string{"UNKNOWN", "ABSENT", "PRESENT"}

func (p Presence) String() string               { return enumToken(p, presenceTokens) }
func (p Presence) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *Presence) UnmarshalText(b []byte) error {
	return parseEnum("presence", b, presenceTokens, p)
}

// Intensity is a signal intensity or attenuation relative to background parenchyma.
type Intensity int

const (
	IntensityUnknown Intensity = iota
	IntensityHypo
	IntensityIso
	IntensityHyper
	IntensityMixed
)

var intensityTokens = []string{"UNKNOWN", "HYPO", "ISO", "HYPER", "MIXED"}

func (i Intensity) String() string               { return enumToken(i, intensityTokens) }
func (i Intensity) MarshalText() ([]byte, error) { return []byte(i.String()), nil }
func (i *Intensity) UnmarshalText(b []byte) error {
	return parseEnum("intensity", b, intensityTokens, i)
}

// Triage is the ordered severity of a verdict. Higher values are more severe.
type Triage int

const (
	TriageRoutine Triage = iota
	TriageUrgent
	TriageEmergent
)

var triageTokens = []string{"ROUTINE", "URGENT", "EMERGENT"}

func (t Triage) String() string               { return enumToken(t, triageTokens) }
func (t Triage) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *Triage) UnmarshalText(b []byte) error {
	return parseEnumAliased("triage", b, triageTokens, map[string]Triage{"STAT": TriageEmergent}, t)
}

// IsValid reports whether t is a declared severity level.
func (t Triage) IsValid() bool {
	return t >= TriageRoutine && t <= TriageEmergent
}

// Max returns the more severe of t and other.
func (t Triage) Max(other Triage) Triage {
	if other > t {
		return other
	}
	return t
}

// Likelihood is a qualitative confidence level.
type Likelihood int

const (
	LikelihoodLow Likelihood = iota
	LikelihoodMedium
	LikelihoodHigh
)

var likelihoodTokens = []string{"LOW", "MEDIUM", "HIGH"}

func (l Likelihood) String() string               { return enumToken(l, likelihoodTokens) }
func (l Likelihood) MarshalText() ([]byte, error) { return []byte(l.String()), nil }
func (l *Likelihood) UnmarshalText(b []byte) error {
	return parseEnum("likelihood", b, likelihoodTokens, l)
}

// Label returns the capitalized form used in report text.
func (l Likelihood) Label() string {
	switch l {
	case LikelihoodHigh:
		return "High"
	case LikelihoodMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// Module identifies one of the clinical evaluators.
type Module string

const (
	ModuleBrain        Module = "brain"
	ModuleLiverBiliary Module = "liver_biliary"
	ModuleLiverLesion  Module = "liver_lesion"
)

// IsValid reports whether m names a known evaluator.
func (m Module) IsValid() bool {
	switch m {
	case ModuleBrain, ModuleLiverBiliary, ModuleLiverLesion:
		return true
	default:
		return false
	}
}

// Region is an anatomic or clinical grouping of triggers. Triggers in different regions are
// evaluated independently.
type Region string

const (
	RegionGeneral       Region = "general"
	RegionStroke        Region = "stroke"
	RegionHemorrhage    Region = "hemorrhage"
	RegionMass          Region = "mass"
	RegionChronic       Region = "chronic"
	RegionCystic        Region = "cystic"
	RegionLiver         Region = "liver"
	RegionGallbladder   Region = "gallbladder"
	RegionBileDuct      Region = "bile_duct"
	RegionLesionPattern Region = "lesion_pattern"
)

// Tag returns the prefix carried by impressions of this region, or "" for untagged regions.
func (r Region) Tag() string {
	switch r {
	case RegionLiver:
		return "Liver lesion"
	case RegionGallbladder:
		return "Gallbladder"
	case RegionBileDuct:
		return "Bile ducts"
	default:
		return ""
	}
}
