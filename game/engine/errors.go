package engine

import "errors"

var (
	ErrInvalidLevel     = errors.New("invalid level")
	ErrEmptyLevel       = errors.New("level has no rows")
	ErrNoPusher         = errors.New("level has no pusher")
	ErrMultiplePushers  = errors.New("level has more than one pusher")
	ErrUnbounded        = errors.New("pusher can reach padding outside the walls")
	ErrLevelOutOfRange  = errors.New("level index out of range")
	ErrLastLevel        = errors.New("already on the last level")
	ErrEmptyCollection  = errors.New("collection has no levels")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNoSolution       = errors.New("level has no solution")
	ErrSearchLimit      = errors.New("solver state limit reached")
	ErrBoardMismatch    = errors.New("saved board does not fit the level")
)
