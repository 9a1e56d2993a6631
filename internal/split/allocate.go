package split

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Allocate distributes total cents proportionally to weights using the
// largest remainder method. The result always sums to total; leftover
// cents go to the largest fractional parts, earlier positions first on ties.
func Allocate(total int64, weights []decimal.Decimal) []int64 {
	out := make([]int64, len(weights))
	if len(weights) == 0 {
		return out
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if !sum.IsPositive() {
		return out
	}

	type frac struct {
		rem decimal.Decimal
		idx int
	}
	fracs := make([]frac, len(weights))
	totalDec := decimal.NewFromInt(total)

	var allocated int64
	for i, w := range weights {
		exact := totalDec.Mul(w).Div(sum)
		floor := exact.Floor()
		out[i] = floor.IntPart()
		allocated += out[i]
		fracs[i] = frac{rem: exact.Sub(floor), idx: i}
	}

	sort.SliceStable(fracs, func(a, b int) bool {
		return fracs[a].rem.GreaterThan(fracs[b].rem)
	})

	for left, i := total-allocated, 0; left > 0; left, i = left-1, i+1 {
		out[fracs[i%len(fracs)].idx]++
	}

	return out
}
