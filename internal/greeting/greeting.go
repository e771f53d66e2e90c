// Package greeting builds Italian salutation lines for user records.
package greeting

import (
	"strings"

	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

// Record fields read by Line
const (
	FieldName    = "name"
	FieldSurname = "surname"
	FieldGender  = "gender"
)

// Salutation maps a gender code to its title: "M" to "Sig.", "F" to
// "Sig.ra", anything else to "".
func Salutation(gender string) string {
	switch gender {
	case "M":
		return "Sig."
	case "F":
		return "Sig.ra"
	default:
		return ""
	}
}

// Line greets one user, e.g. "Buongiorno Sig.ra Sadie Adler". Missing parts
// are skipped without leaving double spaces.
func Line(user models.Record) string {
	parts := []string{"Buongiorno"}
	for _, p := range []string{
		Salutation(user.String(FieldGender)),
		user.String(FieldName),
		user.String(FieldSurname),
	} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Lines greets every user in order
func Lines(users []models.Record) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = Line(u)
	}
	return out
}
