package domain

import "errors"

var (
	ErrUnknownDimension      = errors.New("unknown breakdown dimension")
	ErrConflictingDimensions = errors.New("conflicting breakdown dimensions")
	ErrConflictingFilters    = errors.New("conflicting date filters")
	ErrInvalidRange          = errors.New("date range start is after end")
)
