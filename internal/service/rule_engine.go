package service

import (
	"strings"

	"github.com/radassist-mcp-server/internal/domain"
)

// Rule is a named trigger predicate paired with the verdict entries it contributes.
// Match and Apply receive the finding state by value and must not retain it.
type Rule[S any] struct {
	Code  string
	Name  string
	Match func(s S) bool
	Apply func(s S, b *verdictBuilder)
}

// RuleChain is the ordered rule list of one region. The first matching rule applies.
// When, if set, gates the whole chain.
type RuleChain[S any] struct {
	Region domain.Region
	Name   string
	When   func(s S) bool
	Rules  []Rule[S]
}

// RuleTable holds the independent chains of one evaluator in evaluation order.
type RuleTable[S any] struct {
	chains []RuleChain[S]
}

// addChain appends a chain to the table.
func (t *RuleTable[S]) addChain(region domain.Region, name string, when func(s S) bool, rules ...Rule[S]) {
	t.chains = append(t.chains, RuleChain[S]{
		Region: region,
		Name:   name,
		When:   when,
		Rules:  rules,
	})
}

// Evaluate runs every chain against s, applying at most one rule per chain.
func (t *RuleTable[S]) Evaluate(s S, b *verdictBuilder) {
	for _, chain := range t.chains {
		if chain.When != nil && !chain.When(s) {
			continue
		}
		for _, rule := range chain.Rules {
			if !rule.Match(s) {
				continue
			}
			b.matched = append(b.matched, rule.Code)
			rule.Apply(s, b)
			break
		}
	}
}

// Chains returns the chain definitions in evaluation order.
func (t *RuleTable[S]) Chains() []RuleChain[S] {
	return t.chains
}

// Codes lists every rule code in evaluation order.
func (t *RuleTable[S]) Codes() []string {
	var codes []string
	for _, chain := range t.chains {
		for _, rule := range chain.Rules {
			codes = append(codes, rule.Code)
		}
	}
	return codes
}

// verdictBuilder accumulates verdict entries during one evaluation.
type verdictBuilder struct {
	triage        domain.Triage
	impressions   []domain.Impression
	differentials []string
	nextSteps     []string
	warnings      []string
	matched       []string
}

// impression appends an entry and raises triage to its urgency.
func (b *verdictBuilder) impression(imp domain.Impression) {
	b.impressions = append(b.impressions, imp)
	b.escalate(imp.Urgency)
	if imp.NextStep != "" {
		b.nextSteps = append(b.nextSteps, imp.NextStep)
	}
}

func (b *verdictBuilder) differential(names ...string) {
	b.differentials = append(b.differentials, names...)
}

func (b *verdictBuilder) nextStep(steps ...string) {
	b.nextSteps = append(b.nextSteps, steps...)
}

func (b *verdictBuilder) warn(msgs ...string) {
	b.warnings = append(b.warnings, msgs...)
}

func (b *verdictBuilder) escalate(t domain.Triage) {
	if !t.IsValid() {
		return
	}
	b.triage = b.triage.Max(t)
}

func (b *verdictBuilder) empty() bool {
	return len(b.impressions) == 0
}

// build returns the verdict with every list de-duplicated in first-occurrence order.
func (b *verdictBuilder) build(module domain.Module) domain.Verdict {
	return domain.Verdict{
		Module:        module,
		Triage:        b.triage,
		Impressions:   uniqImpressions(b.impressions),
		Differentials: uniq(b.differentials),
		NextSteps:     uniq(b.nextSteps),
		Warnings:      uniq(b.warnings),
		MatchedRules:  uniq(b.matched),
	}
}

// uniq drops empty and repeated strings, keeping first occurrences. The result is never nil.
func uniq(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func uniqImpressions(in []domain.Impression) []domain.Impression {
	out := make([]domain.Impression, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, imp := range in {
		title := imp.Title()
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, imp)
	}
	return out
}
