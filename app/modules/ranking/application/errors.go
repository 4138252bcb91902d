package rankingservice

import "errors"

var (
	// ErrUnauthorized means the caller lacks a required role.
	ErrUnauthorized = errors.New("caller is not allowed to perform this operation")
	// ErrPlayerNotFound means the player does not exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrLeaderboardNotFound means the leaderboard's difficulty is unknown.
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
)
