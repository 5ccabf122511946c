package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	today := day(2025, time.June, 15)

	tests := []struct {
		birth string
		want  string
	}{
		{"2000-06-15", "25"},
		{"2000-06-16", "24"},
		{"2000-06-14", "25"},
		{"2000-07-01", "24"},
		{"2000-05-30", "25"},
		{"2025-06-15", "0"},
		{"2000-06-15 00:00:00", "25"},
		{"", Placeholder},
		{"not a date", Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.birth, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(tt.birth, today))
		})
	}
}

func TestYears_LeapDay(t *testing.T) {
	birth := day(2004, time.February, 29)
	assert.Equal(t, 20, Years(birth, day(2025, time.February, 28)))
	assert.Equal(t, 21, Years(birth, day(2025, time.March, 1)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15.06.2000", FormatDate("2000-06-15"))
	assert.Equal(t, "15.06.2025", FormatDate("2025-06-15 10:30:00"))
	assert.Equal(t, "15.06.2025", FormatDate("Sun, 15 Jun 2025 00:00:00 GMT"))
	assert.Equal(t, Placeholder, FormatDate(""))
	assert.Equal(t, "someday", FormatDate("someday"))
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "15.06.2025, 10:30", FormatDateTime("2025-06-15 10:30:00"))
	assert.Equal(t, "15.06.2025, 10:30", FormatDateTime("2025-06-15T10:30"))
	assert.Equal(t, "15.06.2025, 10:30", FormatDateTime("2025-06-15T10:30:00+03:00"))
	assert.Equal(t, "15.06.2025, 10:30", FormatDateTime("2025-06-15 10:30:00.123456+00:00"))
	assert.Equal(t, Placeholder, FormatDateTime(""))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "10:30", FormatClock("2025-06-15 10:30:00"))
	assert.Equal(t, "00:00", FormatClock("2025-06-15"))
	assert.Equal(t, Placeholder, FormatClock(" "))
	assert.Equal(t, "soon", FormatClock("soon"))
}

func TestFormatting_IsIdempotent(t *testing.T) {
	in := "2025-06-15 10:30:00"
	first := FormatDateTime(in)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, FormatDateTime(in))
		assert.Equal(t, FormatDate(in), FormatDate(in))
	}
	assert.Equal(t, "2025-06-15 10:30:00", in)
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status clinicapi.Status
		want   Badge
	}{
		{clinicapi.StatusActive, Badge{"Active", SeverityDefault}},
		{clinicapi.StatusInactive, Badge{"Inactive", SeveritySecondary}},
		{clinicapi.StatusScheduled, Badge{"Scheduled", SeverityDefault}},
		{clinicapi.StatusCompleted, Badge{"Completed", SeveritySecondary}},
		{clinicapi.StatusCancelled, Badge{"Cancelled", SeverityDestructive}},
		{clinicapi.Status("no-show"), Badge{"no-show", SeverityOutline}},
		{clinicapi.Status(""), Badge{"", SeverityOutline}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusBadge(tt.status))
		})
	}
}

func TestBadge_String(t *testing.T) {
	assert.Equal(t, "Scheduled", StatusBadge(clinicapi.StatusScheduled).String())
	assert.Equal(t, "Cancelled (destructive)", StatusBadge(clinicapi.StatusCancelled).String())
}

func TestTextAndDeref(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", Deref(&s))
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, Placeholder, Text("  "))
	assert.Equal(t, "+7 999", Text("+7 999"))
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "1500.50 ₽", Price(1500.5))
	assert.Equal(t, "0.00 ₽", Price(0))
}
