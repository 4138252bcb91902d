// Package qualificationdomain holds the pure workflow rules for map
// qualification and reweighting.
package qualificationdomain

// Modifier coefficient defaults. Speed and obstruction modifiers grant a
// score bonus; no-fail costs half the score.
const (
	DefaultSpeedBonus = 0.04
	DefaultSuperFast  = 0.1
	DefaultGhostNotes = 0.04
	DefaultNoArrows   = 0.02
	DefaultNoFail     = -0.5
	PunitiveNoFail    = -1.0
)

// ModifierCurve holds the per-modifier score multiplier offsets for one
// difficulty.
type ModifierCurve struct {
	FS float64 `json:"fs"`
	SF float64 `json:"sf"`
	GN float64 `json:"gn"`
	DA float64 `json:"da"`
	NF float64 `json:"nf"`
}

// DefaultModifiers returns the curve a difficulty carries before moderation
// touches it.
func DefaultModifiers() ModifierCurve {
	return ModifierCurve{
		FS: DefaultSpeedBonus,
		SF: DefaultSuperFast,
		GN: DefaultGhostNotes,
		DA: DefaultNoArrows,
		NF: DefaultNoFail,
	}
}

// Nominated returns the curve as it stands while a map is under review:
// positive coefficients doubled, no-fail punitive. Unvalidated maps must not
// earn full credit under easing modifiers.
func (m ModifierCurve) Nominated() ModifierCurve {
	return ModifierCurve{
		FS: m.FS * 2,
		SF: m.SF * 2,
		GN: m.GN * 2,
		DA: m.DA * 2,
		NF: PunitiveNoFail,
	}
}

// Withdrawn undoes Nominated: halves the doubled coefficients and restores
// the standard no-fail penalty.
func (m ModifierCurve) Withdrawn() ModifierCurve {
	return ModifierCurve{
		FS: m.FS / 2,
		SF: m.SF / 2,
		GN: m.GN / 2,
		DA: m.DA / 2,
		NF: DefaultNoFail,
	}
}
