package rankingdomain

// PpTotals is a player's decay-weighted pp total with its sub-component
// breakdown.
type PpTotals struct {
	Pp      float64 `json:"pp"`
	AccPp   float64 `json:"accPp"`
	PassPp  float64 `json:"passPp"`
	TechPp  float64 `json:"techPp"`
	BonusPp float64 `json:"bonusPp"`
}

// ScoreWeight pairs a score with the decay weight applied to it, so callers
// can persist the weight back per-score.
type ScoreWeight struct {
	ID     int64
	Weight float64
}

// WeightedTotals orders ranked scores best-first and sums pp (and each pp
// sub-component) under the decay curve. The returned weights follow the
// sorted order.
func WeightedTotals(ranked []EligibleScore, curve *WeightCurve) (PpTotals, []ScoreWeight) {
	sorted := sortByPpDesc(ranked)

	var totals PpTotals
	weights := make([]ScoreWeight, len(sorted))
	for i, s := range sorted {
		w := curve.Weight(i)
		totals.Pp += s.Pp * w
		totals.AccPp += s.AccPp * w
		totals.PassPp += s.PassPp * w
		totals.TechPp += s.TechPp * w
		totals.BonusPp += s.BonusPp * w
		weights[i] = ScoreWeight{ID: s.ID, Weight: w}
	}
	return totals, weights
}
