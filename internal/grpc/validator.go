package server

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const maxNameLength = 64

// RequestValidator checks the country and collection names sent by callers
type RequestValidator struct {
	allowedPunct map[rune]bool
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		allowedPunct: map[rune]bool{
			' ': true,
			'-': true,
			'_': true,
			'.': true,
			'\'': true,
		},
	}
}

// Validate checks that name is present, short enough and made of letters,
// digits and a few separators
func (v *RequestValidator) Validate(kind, name string) error {
	if name == "" {
		return fmt.Errorf("missing %s", kind)
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("invalid %s: not valid UTF-8", kind)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%s exceeds %d characters", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || v.allowedPunct[r] {
			continue
		}
		return fmt.Errorf("invalid %s: unexpected character %q", kind, r)
	}

	return nil
}
