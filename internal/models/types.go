package models

import "time"

// Record is an opaque mapping of field name to value returned by a remote collection
type Record map[string]any

// String returns the field as a string, or "" when it is missing or not a string
func (r Record) String(field string) string {
	v, ok := r[field].(string)
	if !ok {
		return ""
	}
	return v
}

// Status is the lifecycle state of a remote collection
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String
func ParseStatus(s string) Status {
	switch s {
	case "ready":
		return StatusReady
	case "failed":
		return StatusFailed
	default:
		return StatusLoading
	}
}

// Terminal reports whether no further transition can happen
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// LoadEntry is one journaled load outcome
type LoadEntry struct {
	Collection string        `json:"collection"`
	Endpoint   string        `json:"endpoint"`
	Status     Status        `json:"status"`
	Items      int           `json:"items"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	At         time.Time     `json:"at"`
}

// Sample is one journaled clock reading
type Sample struct {
	Country       string    `json:"country"`
	Timezone      string    `json:"timezone"`
	FormattedTime string    `json:"formatted_time"`
	FormattedDate string    `json:"formatted_date"`
	Updates       int       `json:"updates"`
	At            time.Time `json:"at"`
}
