package sharedtypes

// Role is a moderation role attached to a caller identity. The engine never
// authenticates anyone; callers arrive with their roles already resolved.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleRankedTeam       Role = "rankedteam"
	RoleJuniorRankedTeam Role = "juniorrankedteam"
)

// Caller is the identity on whose behalf an administrative operation runs.
type Caller struct {
	ID    PlayerID `json:"id"`
	Roles []Role   `json:"roles"`
}

func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the caller holds any reviewer role, junior
// included.
func (c Caller) IsReviewer() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleRankedTeam) || c.HasRole(RoleJuniorRankedTeam)
}

// JuniorRestricted reports whether the junior-reviewer restrictions apply.
// A caller is restricted iff they hold juniorrankedteam and neither admin
// nor rankedteam; admin always overrides.
func (c Caller) JuniorRestricted() bool {
	if c.HasRole(RoleAdmin) || c.HasRole(RoleRankedTeam) {
		return false
	}
	return c.HasRole(RoleJuniorRankedTeam)
}
