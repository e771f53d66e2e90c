// Package render draws clocks and collections as terminal boxes.
//
// Output is plain text with lipgloss styling; colours are dropped
// automatically when the output is not a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

// DefaultMaxItems caps the number of records listed per collection
const DefaultMaxItems = 20

var (
	Primary     = lipgloss.Color("#2196F3")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#8a94a6")
	Destructive = lipgloss.Color("#e53935")
)

// Theme holds the styles used by every view
type Theme struct {
	Frame   lipgloss.Style
	Title   lipgloss.Style
	Time    lipgloss.Style
	Seconds lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Time:    lipgloss.NewStyle().Bold(true),
		Seconds: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Muted:   lipgloss.NewStyle().Foreground(Muted),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(Destructive).
			Padding(0, 1),
	}
}

// Renderer turns dashboard state into strings
type Renderer struct {
	Theme    Theme
	MaxItems int
}

func New() *Renderer {
	return &Renderer{Theme: DefaultTheme(), MaxItems: DefaultMaxItems}
}

// Clock renders one clock. Hidden or never shown clocks render as "".
func (r *Renderer) Clock(snap clock.Snapshot) string {
	if !snap.Visible || snap.Updates == 0 {
		return ""
	}

	title := r.Theme.Title.Render(snap.Country)
	if snap.ZoneBadge != "" {
		title += " " + r.Theme.Muted.Render(snap.ZoneBadge)
	}

	hhmm := strings.TrimSuffix(snap.FormattedTime, snap.SecondsDigits.String())
	timeLine := r.Theme.Time.Render(hhmm) +
		r.Theme.Seconds.Render(snap.SecondsDigits.First) +
		r.Theme.Seconds.Render(snap.SecondsDigits.Second)

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		timeLine,
		snap.FormattedDate,
		r.Theme.Muted.Render("UTC"+snap.UTCOffset),
	)
	return r.Theme.Frame.Render(body)
}

// Collection renders the state of a collection, labelling each record with
// displayField. A failed collection renders as an empty list under an error
// banner.
func (r *Renderer) Collection(col *loader.Collection, displayField string) string {
	title := r.Theme.Title.Render(col.Name())

	var lines []string
	switch col.Status() {
	case models.StatusLoading:
		lines = append(lines, title, r.Theme.Muted.Render("Loading..."))
	case models.StatusFailed:
		lines = append(lines, title, r.Theme.Error.Render(errorText(col.Err())))
	case models.StatusReady:
		items := col.Items()
		title += " " + r.Theme.Muted.Render(fmt.Sprintf("(%s)", humanize.Comma(int64(col.Total()))))
		lines = append(lines, title)
		if len(items) == 0 {
			lines = append(lines, r.Theme.Muted.Render("No items"))
		}
		for i, item := range items {
			if r.MaxItems > 0 && i == r.MaxItems {
				rest := len(items) - i
				lines = append(lines, r.Theme.Muted.Render(fmt.Sprintf("... and %s more", humanize.Comma(int64(rest)))))
				break
			}
			lines = append(lines, "• "+Label(item, displayField))
		}
	}

	return r.Theme.Frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Dashboard lays out the visible clocks side by side above the collections
func (r *Renderer) Dashboard(clocks []clock.Snapshot, cols []*loader.Collection, displayField func(string) string) string {
	var clockViews []string
	for _, snap := range clocks {
		if view := r.Clock(snap); view != "" {
			clockViews = append(clockViews, view)
		}
	}

	sections := []string{}
	if len(clockViews) > 0 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, clockViews...))
	}
	for _, col := range cols {
		sections = append(sections, r.Collection(col, displayField(col.Name())))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Label is the visible text of a record: the display field when present,
// otherwise its id
func Label(item models.Record, displayField string) string {
	if v, ok := item[displayField]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	if id, ok := item["id"]; ok {
		return fmt.Sprintf("#%v", id)
	}
	return "(unnamed)"
}

func errorText(err error) string {
	if err == nil {
		return "Failed to load"
	}
	return "Failed to load: " + err.Error()
}
