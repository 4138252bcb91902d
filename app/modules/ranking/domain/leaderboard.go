package rankingdomain

import "sort"

// DifficultyRating is the opaque rating output the pp calculator consumes.
// How the numbers are produced is not this module's concern.
type DifficultyRating struct {
	Stars      float64
	AccRating  float64
	PassRating float64
	TechRating float64
}

// PpBreakdown is one score's recomputed pp and sub-components.
type PpBreakdown struct {
	Pp      float64
	AccPp   float64
	PassPp  float64
	TechPp  float64
	BonusPp float64
}

// PpCalculator converts a difficulty rating, an accuracy, and the score's
// modifier string into a pp breakdown. Injected so the curve can evolve
// without touching the recompute pipeline.
type PpCalculator func(rating DifficultyRating, accuracy float64, modifiers string) PpBreakdown

// DefaultPpCalculator is a smooth exponential accuracy curve over the three
// rating axes. Accuracy below 50% earns nothing.
func DefaultPpCalculator(rating DifficultyRating, accuracy float64, modifiers string) PpBreakdown {
	if accuracy <= 0.5 {
		return PpBreakdown{}
	}

	// Normalized 0..1 over the useful accuracy range, then squared so the
	// curve rewards the last few percent disproportionately.
	curve := (accuracy - 0.5) * 2
	curve *= curve

	accPp := rating.AccRating * curve * 34
	passPp := rating.PassRating * 15.2
	techPp := rating.TechRating * curve * 16.6

	return PpBreakdown{
		Pp:     accPp + passPp + techPp,
		AccPp:  accPp,
		PassPp: passPp,
		TechPp: techPp,
	}
}

// LeaderboardScore is the rank-assignment view of one score on a single
// leaderboard during a pp recompute.
type LeaderboardScore struct {
	ID            int64
	Pp            float64
	ModifiedScore int64
	Timestamp     int64
	Rank          int
}

// AssignScoreRanks assigns dense 1-based ranks to a leaderboard's scores,
// best pp first. Ties fall back to higher modified score, then to the
// earlier score.
func AssignScoreRanks(scores []*LeaderboardScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Pp != scores[j].Pp {
			return scores[i].Pp > scores[j].Pp
		}
		if scores[i].ModifiedScore != scores[j].ModifiedScore {
			return scores[i].ModifiedScore > scores[j].ModifiedScore
		}
		return scores[i].Timestamp < scores[j].Timestamp
	})
	for i, s := range scores {
		s.Rank = i + 1
	}
}
