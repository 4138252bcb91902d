package rankingdomain

import "math"

// Weight-curve bases for the aggregation contexts that use decay weighting.
const (
	// BasePlayerTotal decays a player's ranked scores into their pp total.
	BasePlayerTotal = 0.965
	// BaseEvent decays event-scoped pp.
	BaseEvent = 0.925
	// BaseTopAcc decays the rolling top-100 weighted-accuracy statistic.
	BaseTopAcc = 0.95
	// BaseTopRank grows with index so worse ranks deeper in the top-100 cost
	// more; the summed quantity is the rank number itself.
	BaseTopRank = 1.05
)

// WeightCurve is base^i precomputed for i in [0, size). The curve is invoked
// per-score per-player across the whole population every refresh, so lookups
// must not hit math.Pow on the hot path.
type WeightCurve struct {
	base  float64
	cache []float64
}

func NewWeightCurve(base float64, size int) *WeightCurve {
	if size < 1 {
		size = 1
	}
	cache := make([]float64, size)
	w := 1.0
	for i := range cache {
		cache[i] = w
		w *= base
	}
	return &WeightCurve{base: base, cache: cache}
}

// Weight returns base^i. Indices beyond the cache fall back to math.Pow.
func (c *WeightCurve) Weight(i int) float64 {
	if i < 0 {
		return 1
	}
	if i < len(c.cache) {
		return c.cache[i]
	}
	return math.Pow(c.base, float64(i))
}

func (c *WeightCurve) Base() float64 { return c.base }

// Size is how many indices the curve has precomputed.
func (c *WeightCurve) Size() int { return len(c.cache) }

// Curves bundles the curve set one refresh pass needs.
type Curves struct {
	PlayerTotal *WeightCurve
	Event       *WeightCurve
	TopAcc      *WeightCurve
	TopRank     *WeightCurve
}

func NewCurves(cacheSize int) *Curves {
	return &Curves{
		PlayerTotal: NewWeightCurve(BasePlayerTotal, cacheSize),
		Event:       NewWeightCurve(BaseEvent, cacheSize),
		TopAcc:      NewWeightCurve(BaseTopAcc, cacheSize),
		TopRank:     NewWeightCurve(BaseTopRank, cacheSize),
	}
}
