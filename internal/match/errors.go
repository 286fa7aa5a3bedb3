package match

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is matched by errors.Is for any InsufficientDataError.
var ErrInsufficientData = errors.New("match: insufficient ink")

// InsufficientDataError is returned when the unknown has too few points to
// be treated as a drawn symbol.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("match: insufficient ink: %d points, need more than %d", e.Points, MinInkPoints)
}

// Is reports whether target is ErrInsufficientData.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
