package core

import "errors"

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidPlayer      = errors.New("invalid player ID")
	ErrTooManyPlayers     = errors.New("too many players")
	ErrBlocked            = errors.New("tile is not passable")
)
