package clock

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidLocale   = errors.New("invalid locale")
)

// ConstructionError reports a clock that cannot be built from its Config.
// It is never recovered inside the package; callers abort initialization.
type ConstructionError struct {
	Field string
	Value string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("clock %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}
