// Package display derives the values shown in section tables: ages, dates,
// status badges and prices. Every function is pure.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
)

// Placeholder is rendered for absent values.
const Placeholder = "-"

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006, 15:04"
	clockLayout    = "15:04"
)

// layouts the endpoint is known to emit, most specific first.
var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123,
}

// ParseTime parses a date or date-time in any of the layouts the endpoint
// emits. Fractional seconds are accepted wherever seconds are.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Years returns the completed years between birth and today.
func Years(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	return years
}

// Age renders the age for a birth date, or Placeholder when the date is
// absent or unreadable.
func Age(birth string, today time.Time) string {
	t, ok := ParseTime(birth)
	if !ok {
		return Placeholder
	}
	return fmt.Sprintf("%d", Years(t, today))
}

// FormatDate renders day.month.year. Unreadable input is returned as is.
func FormatDate(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	t, ok := ParseTime(v)
	if !ok {
		return v
	}
	return t.Format(dateLayout)
}

// FormatDateTime renders day.month.year, hour:minute.
func FormatDateTime(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	t, ok := ParseTime(v)
	if !ok {
		return v
	}
	return t.Format(dateTimeLayout)
}

// FormatClock renders the hour:minute part of a date-time.
func FormatClock(v string) string {
	if strings.TrimSpace(v) == "" {
		return Placeholder
	}
	t, ok := ParseTime(v)
	if !ok {
		return v
	}
	return t.Format(clockLayout)
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Text renders s or Placeholder when blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Price renders a decimal amount in roubles.
func Price(v float64) string {
	return fmt.Sprintf("%.2f ₽", v)
}

// Severity is the visual weight of a badge.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeveritySecondary   Severity = "secondary"
	SeverityDestructive Severity = "destructive"
	SeverityOutline     Severity = "outline"
)

// Badge is a status label with its severity.
type Badge struct {
	Label    string
	Severity Severity
}

func (b Badge) String() string {
	if b.Severity == SeverityDefault {
		return b.Label
	}
	return fmt.Sprintf("%s (%s)", b.Label, b.Severity)
}

var badges = map[clinicapi.Status]Badge{
	clinicapi.StatusActive:    {Label: "Active", Severity: SeverityDefault},
	clinicapi.StatusInactive:  {Label: "Inactive", Severity: SeveritySecondary},
	clinicapi.StatusScheduled: {Label: "Scheduled", Severity: SeverityDefault},
	clinicapi.StatusCompleted: {Label: "Completed", Severity: SeveritySecondary},
	clinicapi.StatusCancelled: {Label: "Cancelled", Severity: SeverityDestructive},
}

// StatusBadge maps a status to its badge. Unknown statuses keep their
// literal value as the label with a neutral severity.
func StatusBadge(s clinicapi.Status) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Severity: SeverityOutline}
}
