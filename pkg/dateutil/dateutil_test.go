package dateutil

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Wednesday returns Monday",
			input:    time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), // Wednesday
			expected: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),  // Monday
		},
		{
			name:     "Monday returns same Monday",
			input:    time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC), // Monday
			expected: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Sunday returns previous Monday",
			input:    time.Date(2025, 1, 19, 12, 0, 0, 0, time.UTC), // Sunday
			expected: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),  // Previous Monday
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StartOfWeek(tt.input)

			if !result.Equal(tt.expected) {
				t.Errorf("StartOfWeek(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"),
					result.Format("2006-01-02 Mon"),
					tt.expected.Format("2006-01-02 Mon"))
			}
		})
	}
}

func TestGetWeekNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		wantYear int
		wantWeek int
	}{
		{
			name:     "Mid January 2025",
			input:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			wantYear: 2025,
			wantWeek: 3,
		},
		{
			name:     "Start of year",
			input:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			wantYear: 2025,
			wantWeek: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, week := GetWeekNumber(tt.input)

			if year != tt.wantYear || week != tt.wantWeek {
				t.Errorf("GetWeekNumber(%v) = (%v, %v), want (%v, %v)",
					tt.input, year, week, tt.wantYear, tt.wantWeek)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "Same day different times",
			a:    time.Date(2025, 1, 13, 7, 45, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "Adjacent days across times",
			a:    time.Date(2025, 1, 13, 18, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 14, 7, 45, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "Two day gap",
			a:    time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 16, 8, 0, 0, 0, time.UTC),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseUntisDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"Valid date", "20250113", time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), false},
		{"Too short", "2025113", time.Time{}, true},
		{"Not a date", "abcdefgh", time.Time{}, true},
		{"Month out of range", "20251313", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUntisDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseUntisDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseUntisDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUntisTime(t *testing.T) {
	date := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		input    string
		wantHour int
		wantMin  int
		wantErr  bool
	}{
		{"Morning with leading zero", "0745", 7, 45, false},
		{"Afternoon", "1330", 13, 30, false},
		{"Missing padding", "745", 0, 0, true},
		{"Minute out of range", "0975", 0, 0, true},
		{"Empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUntisTime(date, tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseUntisTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMin {
				t.Errorf("ParseUntisTime(%q) = %v, want %02d:%02d", tt.input, got, tt.wantHour, tt.wantMin)
			}
			if !IsSameDay(got, date) {
				t.Errorf("ParseUntisTime(%q) moved the date: %v", tt.input, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"ISO date", "2025-01-13", time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), false},
		{"German date", "13.01.2025", time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), false},
		{"Untis date", "20250113", time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local), false},
		{"Garbage", "next monday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
