package loader

import (
	"errors"
	"fmt"
)

var (
	ErrRequest = errors.New("error making collection request")
	ErrStatus  = errors.New("error status from collection endpoint")
	ErrDecode  = errors.New("error decoding collection body")
)

// FetchError describes a failed load. Kind is one of ErrRequest, ErrStatus
// or ErrDecode and matches with errors.Is.
type FetchError struct {
	Collection string
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("collection %s: %v: got %d", e.Collection, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("collection %s: %v: %v", e.Collection, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}
