package service

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radassist-mcp-server/internal/domain"
)

func diffsFrom(enabled []bool, percents []int) []domain.Differential {
	out := make([]domain.Differential, len(percents))
	for i, p := range percents {
		out[i] = domain.Differential{
			Name:    domain.DiagnosisOrder[i%len(domain.DiagnosisOrder)],
			Enabled: enabled[i],
			Percent: p,
		}
	}
	return out
}

func percents(diffs []domain.Differential) []int {
	out := make([]int, len(diffs))
	for i, d := range diffs {
		out[i] = d.Percent
	}
	return out
}

func TestNormalizePercents(t *testing.T) {
	tests := []struct {
		name     string
		enabled  []bool
		percents []int
		want     []int
	}{
		{
			name:     "two equal enabled with a disabled entry",
			enabled:  []bool{true, true, false},
			percents: []int{10, 10, 80},
			want:     []int{50, 50, 80},
		},
		{
			name:     "thirds put the drift on the first entry",
			enabled:  []bool{true, true, true},
			percents: []int{1, 1, 1},
			want:     []int{34, 33, 33},
		},
		{
			name:     "all zero splits evenly",
			enabled:  []bool{true, true, true},
			percents: []int{0, 0, 0},
			want:     []int{34, 33, 33},
		},
		{
			name:     "all zero remainder goes to earliest entries",
			enabled:  []bool{true, true, true, true, true, true, true},
			percents: []int{0, 0, 0, 0, 0, 0, 0},
			want:     []int{15, 15, 14, 14, 14, 14, 14},
		},
		{
			name:     "disabled entries are skipped for the remainder",
			enabled:  []bool{false, true, true, true},
			percents: []int{5, 0, 0, 0},
			want:     []int{5, 34, 33, 33},
		},
		{
			name:     "halves round up and negative drift lands on the first entry",
			enabled:  []bool{true, true},
			percents: []int{1, 7},
			want:     []int{12, 88},
		},
		{
			name:     "drift below zero carries to the next entry",
			enabled:  []bool{true, true, true},
			percents: []int{0, 1, 7},
			want:     []int{0, 12, 88},
		},
		{
			name:     "negative percent counts as zero",
			enabled:  []bool{true, true},
			percents: []int{-5, 10},
			want:     []int{0, 100},
		},
		{
			name:     "already normalized is unchanged",
			enabled:  []bool{true, true, false},
			percents: []int{55, 45, 10},
			want:     []int{55, 45, 10},
		},
		{
			name:     "none enabled is identity",
			enabled:  []bool{false, false},
			percents: []int{30, 90},
			want:     []int{30, 90},
		},
		{
			name:     "empty input",
			enabled:  []bool{},
			percents: []int{},
			want:     []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := diffsFrom(tt.enabled, tt.percents)
			snapshot := diffsFrom(tt.enabled, tt.percents)

			out := NormalizePercents(in)

			assert.Equal(t, tt.want, percents(out))
			assert.Equal(t, snapshot, in, "input must not be modified")
		})
	}
}

func TestNormalizePercents_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(20240611))

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(9)
		enabled := make([]bool, n)
		values := make([]int, n)
		anyEnabled := false
		for j := range values {
			enabled[j] = rng.Intn(4) != 0
			anyEnabled = anyEnabled || enabled[j]
			switch rng.Intn(5) {
			case 0:
				values[j] = 0
			case 1:
				values[j] = rng.Intn(1000)
			default:
				values[j] = rng.Intn(101)
			}
		}
		in := diffsFrom(enabled, values)

		out := NormalizePercents(in)
		require.Len(t, out, n)

		if anyEnabled {
			assert.Equal(t, PercentTotal, EnabledPercentSum(out), "conservation for %v %v", enabled, values)
		}
		for j := range out {
			if !enabled[j] {
				assert.Equal(t, in[j], out[j], "disabled entry changed")
				continue
			}
			assert.GreaterOrEqual(t, out[j].Percent, 0)
			assert.LessOrEqual(t, out[j].Percent, PercentTotal)
		}

		if diff := cmp.Diff(out, NormalizePercents(out)); diff != "" {
			t.Fatalf("normalize not idempotent for %v %v (-once +twice):\n%s", enabled, values, diff)
		}
	}
}

func TestCheckPercents(t *testing.T) {
	off := diffsFrom([]bool{true, true, false}, []int{50, 30, 40})

	advisory := CheckPercents(off, domain.WeightModePercent)
	require.NotNil(t, advisory)
	assert.Equal(t, 80, advisory.Sum)
	assert.Contains(t, advisory.Message, "Percent total 80 (ideal 100)")

	assert.Nil(t, CheckPercents(off, domain.WeightModeLevel))
	assert.Nil(t, CheckPercents(NormalizePercents(off), domain.WeightModePercent))
	assert.Nil(t, CheckPercents(diffsFrom([]bool{false}, []int{10}), domain.WeightModePercent))
}
