package matching

// BudgetFallbackMax is the ceiling used when a profile leaves its upper
// budget unset.
const BudgetFallbackMax = 100000.0

// BudgetRange is a normalised monthly budget window. Min <= Max always holds.
type BudgetRange struct {
	Min float64
	Max float64
}

// NormalizeBudget turns raw profile values into a BudgetRange. Negative
// minimums clamp to zero, an unset maximum falls back to the minimum (or to
// BudgetFallbackMax when both are unset) and inverted bounds are swapped.
func NormalizeBudget(min, max float64) BudgetRange {
	if min < 0 {
		min = 0
	}
	if max <= 0 {
		if min > 0 {
			max = min
		} else {
			max = BudgetFallbackMax
		}
	}
	if max < min {
		min, max = max, min
	}
	if min == 0 && max == 0 {
		max = BudgetFallbackMax
	}
	return BudgetRange{Min: min, Max: max}
}

// Bounded reports whether the range carries a real upper limit.
func (r BudgetRange) Bounded() bool {
	return r.Max < BudgetFallbackMax
}

// Overlap returns the width of the intersection of two ranges, or zero.
func (r BudgetRange) Overlap(other BudgetRange) float64 {
	lower := maxFloat(r.Min, other.Min)
	upper := minFloat(r.Max, other.Max)
	if upper <= lower {
		return 0
	}
	return upper - lower
}

// Span returns the width of the smallest range covering both.
func (r BudgetRange) Span(other BudgetRange) float64 {
	return maxFloat(r.Max, other.Max) - minFloat(r.Min, other.Min)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
