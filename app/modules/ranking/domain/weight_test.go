package rankingdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightCurve_Monotonicity(t *testing.T) {
	bases := []float64{0.925, 0.95, 0.965, 0.5, 0.999}
	for _, base := range bases {
		curve := NewWeightCurve(base, 256)
		for i := 0; i < 300; i++ {
			assert.Less(t, curve.Weight(i+1), curve.Weight(i),
				"weight must strictly decrease for base %v at index %d", base, i)
		}
	}
}

func TestWeightCurve_CacheMatchesFallback(t *testing.T) {
	curve := NewWeightCurve(0.965, 50)

	// Index 49 is cached, 50 falls back to math.Pow; the seam must agree
	// with the recurrence to within float noise.
	cached := curve.Weight(49)
	assert.InDelta(t, cached*0.965, curve.Weight(50), 1e-12)
}

func TestWeightCurve_IndexZeroIsOne(t *testing.T) {
	for _, base := range []float64{0.925, 0.95, 0.965, 1.05} {
		curve := NewWeightCurve(base, 10)
		require.Equal(t, 1.0, curve.Weight(0))
	}
}

func TestWeightCurve_TopRankGrows(t *testing.T) {
	curve := NewWeightCurve(BaseTopRank, 128)
	for i := 0; i < 100; i++ {
		assert.Greater(t, curve.Weight(i+1), curve.Weight(i))
	}
}

func TestNewCurves(t *testing.T) {
	curves := NewCurves(10000)
	assert.Equal(t, BasePlayerTotal, curves.PlayerTotal.Base())
	assert.Equal(t, BaseEvent, curves.Event.Base())
	assert.Equal(t, BaseTopAcc, curves.TopAcc.Base())
	assert.Equal(t, BaseTopRank, curves.TopRank.Base())
}
