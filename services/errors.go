package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate
// them to HTTP status codes; anything not listed here surfaces as an
// internal error.
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	ErrNegativeGoals   = errors.New("goals cannot be negative")
	ErrSamePlayer      = errors.New("a match needs two distinct players")
	ErrInvalidRounds   = errors.New("rounds per matchup must be at least 1")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")

	ErrTournamentCompleted = errors.New("tournament is completed")
	ErrNotOwner            = errors.New("only the tournament owner may do this")
	ErrPlayerInRoster      = errors.New("player is already in the tournament")
	ErrPlayerNotInRoster   = errors.New("player is not in the tournament")

	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
