package domain

import (
	"context"
)

// Evaluator is the rule-engine surface exposed to transports (HTTP, MCP, CLI).
type Evaluator interface {
	EvaluateBrain(ctx context.Context, findings BrainFindings) (*Verdict, error)
	EvaluateLiverBiliary(ctx context.Context, findings LiverBiliaryFindings) (*Verdict, error)
	ApplyModality(findings LiverBiliaryFindings, modality Modality) LiverBiliaryFindings
	SuggestLesion(findings LesionFindings) LesionHints
	SuggestFollowUp(findings LesionFindings, definitive bool) FollowUpSuggestion
	NormalizeDifferentials(differentials []Differential) []Differential
	ApplySuggestions(differentials []Differential, suggestions []SuggestedDifferential, mode WeightMode) []Differential
	ComposeLesionReport(input LesionReportInput) LesionReport
}

// VerdictCache memoizes encoded verdicts keyed on an input snapshot hash.
type VerdictCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// ReportCopier copies composed report text to an external clipboard.
type ReportCopier interface {
	Copy(text string) <-chan struct{}
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	GetLoggingConfig() *LoggingConfig
	Reload() error
	Validate() error
	IsProduction() bool
}
