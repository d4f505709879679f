package engine

import "errors"

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrEmptyGrid        = errors.New("grid has no cells")
	ErrNonRectangular   = errors.New("layout rows differ in length")
	ErrGridTooLarge     = errors.New("grid exceeds maximum size")
	ErrUnknownCell      = errors.New("unknown cell character")
	ErrMissingGoal      = errors.New("grid has no goal cell")
	ErrMultipleGoals    = errors.New("grid has more than one goal cell")
	ErrInvalidConfig    = errors.New("invalid level configuration")
	ErrInvalidState     = errors.New("invalid game state")
)
