package domain

// PlaceholderCode marks the impression emitted when no trigger matched.
const PlaceholderCode = "placeholder"

// Impression is one ordered entry of a verdict.
type Impression struct {
	Region     Region     `json:"region"`
	Code       string     `json:"code"`
	Text       string     `json:"text"`
	Reasoning  string     `json:"reasoning,omitempty"`
	ReportLine string     `json:"report_line,omitempty"`
	Confidence Likelihood `json:"confidence"`
	Urgency    Triage     `json:"urgency"`
	NextStep   string     `json:"next_step,omitempty"`
}

// Title returns the impression text prefixed with its region tag, if the region has one.
func (i Impression) Title() string {
	if tag := i.Region.Tag(); tag != "" {
		return tag + ": " + i.Text
	}
	return i.Text
}

// Verdict is the complete output of one evaluation call.
type Verdict struct {
	Module         Module       `json:"module"`
	Triage         Triage       `json:"triage"`
	Impressions    []Impression `json:"impressions"`
	Differentials  []string     `json:"differentials"`
	NextSteps      []string     `json:"next_steps"`
	Warnings       []string     `json:"warnings"`
	ReportSentence string       `json:"report_sentence"`
	MatchedRules   []string     `json:"matched_rules"`
}

// Titles returns the impression titles in priority order.
func (v Verdict) Titles() []string {
	out := make([]string, 0, len(v.Impressions))
	for _, imp := range v.Impressions {
		out = append(out, imp.Title())
	}
	return out
}

// Primary returns the first impression.
func (v Verdict) Primary() (Impression, bool) {
	if len(v.Impressions) == 0 {
		return Impression{}, false
	}
	return v.Impressions[0], true
}

// IsPlaceholder reports whether the verdict carries only the "no findings" impression.
func (v Verdict) IsPlaceholder() bool {
	return len(v.Impressions) == 1 && v.Impressions[0].Code == PlaceholderCode
}

// LogFields returns structured logging fields for the verdict.
func (v Verdict) LogFields() map[string]any {
	return map[string]any{
		"module":        string(v.Module),
		"triage":        v.Triage.String(),
		"impressions":   len(v.Impressions),
		"differentials": len(v.Differentials),
		"warnings":      len(v.Warnings),
		"placeholder":   v.IsPlaceholder(),
	}
}
