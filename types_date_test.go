package capgains

import (
	"testing"
	"time"
)

func TestDateSub_HoldingPeriod(t *testing.T) {
	cases := []struct {
		acquired, disposed Date
		days               int
	}{
		{NewDate(2024, time.January, 10), NewDate(2024, time.June, 10), 152},
		{NewDate(2024, time.June, 1), NewDate(2025, time.June, 1), 365},
		{NewDate(2023, time.June, 1), NewDate(2024, time.June, 1), 366}, // leap year
		{NewDate(2025, time.March, 1), NewDate(2025, time.March, 1), 0},
	}
	for _, c := range cases {
		if got := c.disposed.Sub(c.acquired); got != c.days {
			t.Errorf("%s.Sub(%s) = %d, want %d", c.disposed, c.acquired, got, c.days)
		}
	}
}

func TestDateOf_TruncatesToUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	est := time.FixedZone("EST", -5*3600)
	got := DateOf(time.Date(2025, time.March, 1, 23, 30, 0, 0, est))
	if want := NewDate(2025, time.March, 2); got != want {
		t.Errorf("DateOf() = %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
	}{
		{"2025-07-01", NewDate(2025, time.July, 1)},
		{"2025-7-1", NewDate(2025, time.July, 1)},
		{" 2025-07-01 ", NewDate(2025, time.July, 1)},
		{"2025-07-01T15:04:05Z", NewDate(2025, time.July, 1)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDate(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	if _, err := ParseDate("not-a-date"); err == nil {
		t.Error("ParseDate accepted garbage")
	}
}

func TestDateAdd(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	if got := d.Add(1); got != NewDate(2024, time.February, 29) {
		t.Errorf("Add(1) = %s, want 2024-02-29", got)
	}
	if got := d.Add(-365); got != NewDate(2023, time.February, 28) {
		t.Errorf("Add(-365) = %s, want 2023-02-28", got)
	}
}
