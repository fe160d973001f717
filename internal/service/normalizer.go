package service

import (
	"fmt"

	"github.com/radassist-mcp-server/internal/domain"
)

// PercentTotal is the sum enabled differential percents are normalized to.
const PercentTotal = 100

// NormalizePercents rescales the percents of the enabled differentials so they sum to exactly 100,
// keeping their proportions. Disabled entries are returned unchanged. The input is not modified.
//
// With a non-positive sum, 100 is split evenly and the remainder goes one point at a time to the
// earliest enabled entries. Otherwise each percent is rounded half-up and the whole rounding
// drift is added to the first enabled entry; if that would leave the entry outside 0..100 the
// excess carries over to the following enabled entries in order.
func NormalizePercents(diffs []domain.Differential) []domain.Differential {
	out := make([]domain.Differential, len(diffs))
	copy(out, diffs)

	var enabled []int
	sum := 0
	for i, d := range out {
		if !d.Enabled {
			continue
		}
		enabled = append(enabled, i)
		if d.Percent > 0 {
			sum += d.Percent
		}
	}
	if len(enabled) == 0 {
		return out
	}

	if sum <= 0 {
		n := len(enabled)
		base, rem := PercentTotal/n, PercentTotal%n
		for k, i := range enabled {
			out[i].Percent = base
			if k < rem {
				out[i].Percent++
			}
		}
		return out
	}

	total := 0
	for _, i := range enabled {
		p := out[i].Percent
		if p < 0 {
			p = 0
		}
		// round(p/sum*100) with halves rounded up, in integer arithmetic
		out[i].Percent = (2*PercentTotal*p + sum) / (2 * sum)
		total += out[i].Percent
	}

	drift := PercentTotal - total
	for _, i := range enabled {
		if drift == 0 {
			break
		}
		next := out[i].Percent + drift
		switch {
		case next < 0:
			drift = next
			next = 0
		case next > PercentTotal:
			drift = next - PercentTotal
			next = PercentTotal
		default:
			drift = 0
		}
		out[i].Percent = next
	}
	return out
}

// EnabledPercentSum returns the sum of percents over enabled differentials.
func EnabledPercentSum(diffs []domain.Differential) int {
	sum := 0
	for _, d := range diffs {
		if d.Enabled {
			sum += d.Percent
		}
	}
	return sum
}

// CheckPercents returns the advisory raised in percent mode when enabled percents do not total
// 100, or nil when no advisory applies.
func CheckPercents(diffs []domain.Differential, mode domain.WeightMode) *domain.PercentAdvisory {
	if mode != domain.WeightModePercent {
		return nil
	}
	anyEnabled := false
	for _, d := range diffs {
		if d.Enabled {
			anyEnabled = true
			break
		}
	}
	if !anyEnabled {
		return nil
	}
	sum := EnabledPercentSum(diffs)
	if sum == PercentTotal {
		return nil
	}
	return &domain.PercentAdvisory{
		Sum:     sum,
		Message: fmt.Sprintf("Percent total %d (ideal %d). Normalize to rescale enabled differentials.", sum, PercentTotal),
	}
}
