package fow

import "errors"

var (
	ErrInvalidFogType   = errors.New("invalid fog of war type")
	ErrUnchangedFogType = errors.New("fog of war type already active")
	ErrInvalidOpacity   = errors.New("invalid opacity levels")
	ErrInvalidBlur      = errors.New("invalid blur parameters")
	ErrInvalidEasing    = errors.New("invalid easing step count")
	ErrInvalidTileSize  = errors.New("tile size must be a positive multiple of 4")
	ErrInvalidMapSize   = errors.New("invalid map dimensions")
	ErrInvalidFogTable  = errors.New("invalid legacy fog table")
	ErrInvalidSheet     = errors.New("invalid legacy fog sprite sheet")
	ErrInvalidWorkers   = errors.New("worker count must not be negative")
	ErrNotInitialized   = errors.New("fog of war is not initialized")
	ErrSurfaceTooSmall  = errors.New("viewport fog surface is smaller than the viewport")
)
