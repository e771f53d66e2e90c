package server

import (
	"strings"
	"testing"
)

func TestRequestValidator_Validate(t *testing.T) {
	validator := NewRequestValidator()

	tests := []struct {
		name       string
		kind       string
		value      string
		wantErr    bool
		errMessage string
	}{
		{
			name:    "valid country",
			kind:    "country",
			value:   "Italy",
			wantErr: false,
		},
		{
			name:    "valid country with spaces and accents",
			kind:    "country",
			value:   "Côte d'Ivoire",
			wantErr: false,
		},
		{
			name:    "valid collection",
			kind:    "collection",
			value:   "users_v2.main",
			wantErr: false,
		},
		{
			name:       "missing value",
			kind:       "collection",
			value:      "",
			wantErr:    true,
			errMessage: "missing collection",
		},
		{
			name:       "too long",
			kind:       "country",
			value:      strings.Repeat("a", maxNameLength+1),
			wantErr:    true,
			errMessage: "country exceeds 64 characters",
		},
		{
			name:       "path separator",
			kind:       "collection",
			value:      "../users",
			wantErr:    true,
			errMessage: "invalid collection: unexpected character '/'",
		},
		{
			name:       "invalid utf8",
			kind:       "country",
			value:      "\xff",
			wantErr:    true,
			errMessage: "invalid country: not valid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.kind, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMessage {
				t.Errorf("Validate() error message = %v, want %v", err.Error(), tt.errMessage)
			}
		})
	}
}
