package sharedtypes

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// PlayerID identifies a player account.
type PlayerID string

func (id PlayerID) String() string { return string(id) }

// LeaderboardID identifies one (song, difficulty, mode) leaderboard.
type LeaderboardID string

func (id LeaderboardID) String() string { return string(id) }

// SongID identifies a song across all of its difficulties.
type SongID string

// ContentHash identifies the uploaded content of a song. Re-uploads of the
// same map share a hash, which is what the nomination cooldown keys on.
type ContentHash string

// ReviewID identifies a qualification or reweight record.
type ReviewID uuid.UUID

func NewReviewID() ReviewID { return ReviewID(uuid.New()) }

func (id ReviewID) String() string { return uuid.UUID(id).String() }

func (id ReviewID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ReviewID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ReviewID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return fmt.Errorf("invalid review id: %w", err)
	}
	*id = ReviewID(parsed)
	return nil
}

func (id ReviewID) Value() (driver.Value, error) {
	return id.String(), nil
}

func (id *ReviewID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into ReviewID", src)
	}
}

// Country is an ISO 3166-1 alpha-2 country code, lowercase.
type Country string

// DifficultyStatus is the rankability state of a leaderboard's difficulty.
// A difficulty holds exactly one status at a time.
type DifficultyStatus string

const (
	StatusUnranked   DifficultyStatus = "unranked"
	StatusNominated  DifficultyStatus = "nominated"
	StatusQualified  DifficultyStatus = "qualified"
	StatusRanked     DifficultyStatus = "ranked"
	StatusUnrankable DifficultyStatus = "unrankable"
	StatusInEvent    DifficultyStatus = "inevent"
	StatusOutdated   DifficultyStatus = "outdated"
	StatusOST        DifficultyStatus = "ost"
)

// InReview reports whether scores set while in this status carry the
// qualification flag (excluded from ranked stats).
func (s DifficultyStatus) InReview() bool {
	return s == StatusNominated || s == StatusQualified
}
