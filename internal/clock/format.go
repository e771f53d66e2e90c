package clock

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

const timeLayout = "15:04:05"

// dateLayouts holds the full-date layout (weekday, day, month name, year)
// of every supported locale. Month and weekday names are translated by monday.
var dateLayouts = map[monday.Locale]string{
	monday.LocaleEnUS: "Monday, January 2, 2006",
	monday.LocaleEnGB: "Monday 2 January 2006",
	monday.LocaleItIT: "Monday 2 January 2006",
	monday.LocaleFrFR: "Monday 2 January 2006",
	monday.LocaleNlNL: "Monday 2 January 2006",
	monday.LocaleDeDE: "Monday, 2. January 2006",
	monday.LocaleEsES: "Monday, 2 de January de 2006",
	monday.LocalePtPT: "Monday, 2 de January de 2006",
	monday.LocalePtBR: "Monday, 2 de January de 2006",
}

// Digits is the zero-padded second split into its two characters
type Digits struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// String joins both digits back together
func (d Digits) String() string {
	return d.First + d.Second
}

// SplitSeconds returns the two digits of sec, zero-padded
func SplitSeconds(sec int) Digits {
	s := fmt.Sprintf("%02d", sec)
	return Digits{First: s[:1], Second: s[1:2]}
}

type formatter struct {
	loc    *time.Location
	locale monday.Locale
	layout string
}

func newFormatter(timezone, locale string) (formatter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return formatter{}, &ConstructionError{
			Field: "timezone",
			Value: timezone,
			Err:   fmt.Errorf("%w: %v", ErrInvalidTimezone, err),
		}
	}

	ml, err := resolveLocale(locale)
	if err != nil {
		return formatter{}, &ConstructionError{Field: "locale", Value: locale, Err: err}
	}

	return formatter{loc: loc, locale: ml, layout: dateLayouts[ml]}, nil
}

// resolveLocale maps a BCP-47 tag such as "it-IT" or "it" to a monday locale
func resolveLocale(locale string) (monday.Locale, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLocale, err)
	}

	base, _ := tag.Base()
	region, _ := tag.Region()
	ml := monday.Locale(base.String() + "_" + region.String())
	if _, ok := dateLayouts[ml]; !ok {
		return "", fmt.Errorf("%w: unsupported locale %s", ErrInvalidLocale, ml)
	}
	return ml, nil
}

func (f formatter) time(t time.Time) string {
	return t.In(f.loc).Format(timeLayout)
}

func (f formatter) date(t time.Time) string {
	return monday.Format(t.In(f.loc), f.layout, f.locale)
}

// zoneBadge returns the second segment of an IANA name ("Europe/Rome" -> "Rome")
func zoneBadge(timezone string) string {
	parts := strings.Split(timezone, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
