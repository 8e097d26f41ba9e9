package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/econs/opsboard/schedule"
)

func TestParseDate_RoundTrip(t *testing.T) {
	// Serializing to YYYY-MM-DD and parsing back yields an equal Date,
	// across multiple years including leap-year boundaries.

	start := schedule.NewDate(2023, time.January, 1)
	end := schedule.NewDate(2026, time.January, 1)
	for d := start; d.Before(end); d = d.AddDays(1) {
		parsed, err := schedule.ParseDate(d.String())
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", d.String(), err)
		}
		if !parsed.Equal(d) {
			t.Fatalf("round-trip mismatch: %s != %s", parsed, d)
		}
	}
}

func TestParseDate_LeapDay(t *testing.T) {
	d, err := schedule.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("leap day should parse: %v", err)
	}
	if d.AddDays(1).String() != "2024-03-01" {
		t.Errorf("day after leap day = %s, want 2024-03-01", d.AddDays(1))
	}

	if _, err := schedule.ParseDate("2025-02-29"); !errors.Is(err, schedule.ErrInvalidDate) {
		t.Errorf("2025-02-29 should fail with ErrInvalidDate, got %v", err)
	}
}

func TestParseDate_Malformed(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "2025/07/26", "2025-13-01", "2025-07-32", "26-07-2025"} {
		if _, err := schedule.ParseDate(s); !errors.Is(err, schedule.ErrInvalidDate) {
			t.Errorf("ParseDate(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestDate_ComparisonAtDayGranularity(t *testing.T) {
	// FromTime drops the time-of-day component, so two timestamps on the
	// same day compare equal.

	morning := schedule.FromTime(time.Date(2025, time.July, 26, 8, 30, 0, 0, time.UTC))
	evening := schedule.FromTime(time.Date(2025, time.July, 26, 23, 59, 59, 0, time.UTC))
	if !morning.Equal(evening) {
		t.Error("timestamps on the same day must compare equal")
	}
	if !morning.BeforeOrEqual(evening) || !morning.AfterOrEqual(evening) {
		t.Error("inclusive comparisons must hold for equal dates")
	}
}

func TestYearMonth_DerivedFromDate(t *testing.T) {
	d := schedule.NewDate(2025, time.July, 15)
	ym := d.YearMonth()
	if ym.String() != "2025-07" {
		t.Errorf("YearMonth = %s, want 2025-07", ym)
	}
	if !ym.Contains(d) {
		t.Error("month must contain its own date")
	}
	if ym.Contains(schedule.NewDate(2025, time.August, 1)) {
		t.Error("month boundary must be respected")
	}
}

func TestParseYearMonth(t *testing.T) {
	ym, err := schedule.ParseYearMonth("2025-07")
	if err != nil {
		t.Fatalf("ParseYearMonth: %v", err)
	}
	if ym.Year != 2025 || ym.Month != time.July {
		t.Errorf("got %+v", ym)
	}

	for _, s := range []string{"", "2025", "2025-00", "2025-13", "july-2025"} {
		if _, err := schedule.ParseYearMonth(s); !errors.Is(err, schedule.ErrInvalidMonth) {
			t.Errorf("ParseYearMonth(%q): expected ErrInvalidMonth, got %v", s, err)
		}
	}
}
