package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
)

func TestRuleTable_FirstMatchPerChain(t *testing.T) {
	var table RuleTable[int]
	hit := func(code string) func(int, *verdictBuilder) {
		return func(_ int, b *verdictBuilder) {
			b.impression(domain.Impression{Code: code, Text: code, Urgency: domain.TriageUrgent})
		}
	}
	positive := func(n int) bool { return n > 0 }
	even := func(n int) bool { return n%2 == 0 }

	table.addChain(domain.RegionGeneral, "sign", nil,
		Rule[int]{Code: "POS", Match: positive, Apply: hit("POS")},
		Rule[int]{Code: "EVEN", Match: even, Apply: hit("EVEN")},
	)
	table.addChain(domain.RegionGeneral, "parity", nil,
		Rule[int]{Code: "EVEN-2", Match: even, Apply: hit("EVEN-2")},
	)
	table.addChain(domain.RegionGeneral, "gated", func(n int) bool { return n > 100 },
		Rule[int]{Code: "BIG", Match: positive, Apply: hit("BIG")},
	)

	b := &verdictBuilder{}
	table.Evaluate(4, b)
	v := b.build(domain.ModuleBrain)

	assert.Equal(t, []string{"POS", "EVEN-2"}, v.MatchedRules)
	assert.Equal(t, []string{"POS", "EVEN-2"}, v.Titles())
	assert.Equal(t, domain.TriageUrgent, v.Triage)
	assert.Equal(t, []string{"POS", "EVEN", "EVEN-2", "BIG"}, table.Codes())
	assert.Len(t, table.Chains(), 3)
}

func TestVerdictBuilder_Build(t *testing.T) {
	b := &verdictBuilder{}
	require.True(t, b.empty())

	b.impression(domain.Impression{Region: domain.RegionLiver, Text: "cyst", NextStep: "step"})
	b.impression(domain.Impression{Region: domain.RegionLiver, Text: "cyst", NextStep: "step"})
	b.differential("a", " a ", "", "b")
	b.warn("w", "w")
	b.escalate(domain.Triage(42))
	b.escalate(domain.TriageUrgent)
	b.escalate(domain.TriageRoutine)

	v := b.build(domain.ModuleLiverBiliary)

	assert.Equal(t, domain.ModuleLiverBiliary, v.Module)
	assert.Equal(t, domain.TriageUrgent, v.Triage)
	assert.Len(t, v.Impressions, 1)
	assert.Equal(t, "Liver lesion: cyst", v.Impressions[0].Title())
	assert.Equal(t, []string{"a", "b"}, v.Differentials)
	assert.Equal(t, []string{"step"}, v.NextSteps)
	assert.Equal(t, []string{"w"}, v.Warnings)
	assert.NotNil(t, v.MatchedRules)
}

func TestUniq(t *testing.T) {
	assert.Equal(t, []string{}, uniq(nil))
	assert.Equal(t, []string{"x", "y"}, uniq([]string{"x", "", "y", "x", "  "}))
}
