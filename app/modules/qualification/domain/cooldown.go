package qualificationdomain

import (
	"fmt"
	"time"
)

// NominationCooldown is how long a self-nominating mapper must wait between
// nominations of the same content hash. Reviewers are exempt.
const NominationCooldown = 7 * 24 * time.Hour

// CooldownRemaining returns how long is left on the cooldown started at
// lastNomination. Zero or negative means the cooldown has expired.
func CooldownRemaining(lastNomination, now time.Time) time.Duration {
	return NominationCooldown - now.Sub(lastNomination)
}

// CooldownMessage renders the rejection reason for an active cooldown. Days
// are rounded down, so "wait 0 days" can appear on the final day.
func CooldownMessage(remaining time.Duration) string {
	days := int(remaining.Hours() / 24)
	return fmt.Sprintf("wait %d days before nominating this map again", days)
}
