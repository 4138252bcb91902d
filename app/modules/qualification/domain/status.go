package qualificationdomain

import "github.com/Cadence-Arcade/rankcore/internal/sharedtypes"

// transitions enumerates the legal status moves. A difficulty holds exactly
// one status; anything not listed here is rejected before any guard logic
// runs.
var transitions = map[sharedtypes.DifficultyStatus][]sharedtypes.DifficultyStatus{
	sharedtypes.StatusUnranked:   {sharedtypes.StatusNominated},
	sharedtypes.StatusNominated:  {sharedtypes.StatusQualified, sharedtypes.StatusUnrankable, sharedtypes.StatusUnranked},
	sharedtypes.StatusQualified:  {sharedtypes.StatusRanked, sharedtypes.StatusUnrankable, sharedtypes.StatusUnranked},
	sharedtypes.StatusRanked:     {sharedtypes.StatusUnranked},
	sharedtypes.StatusUnrankable: {sharedtypes.StatusUnranked},
}

// CanTransition reports whether moving a difficulty from one status to
// another is legal.
func CanTransition(from, to sharedtypes.DifficultyStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
