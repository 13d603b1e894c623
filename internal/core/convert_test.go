package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantFloat float64
	}{
		// Valid: plain
		{name: "positive integer", input: "123", wantValid: true, wantFloat: 123},
		{name: "zero", input: "0", wantValid: true, wantFloat: 0},
		{name: "negative integer", input: "-456", wantValid: true, wantFloat: -456},
		{name: "explicit plus", input: "+7", wantValid: true, wantFloat: 7},
		{name: "decimal", input: "123.45", wantValid: true, wantFloat: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, wantFloat: 0.99},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantFloat: 99},
		{name: "surrounding whitespace", input: "  42  ", wantValid: true, wantFloat: 42},

		// Valid: currency and accounting
		{name: "dollar", input: "$1234.56", wantValid: true, wantFloat: 1234.56},
		{name: "euro", input: "€99", wantValid: true, wantFloat: 99},
		{name: "pound", input: "£5.50", wantValid: true, wantFloat: 5.5},
		{name: "thousands separator", input: "1,234,567.89", wantValid: true, wantFloat: 1234567.89},
		{name: "accounting negative", input: "(123.45)", wantValid: true, wantFloat: -123.45},
		{name: "accounting negative with currency", input: "($1,234.56)", wantValid: true, wantFloat: -1234.56},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "mixed", input: "12abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "scientific notation", input: "1e5", wantValid: false},
		{name: "lone sign", input: "-", wantValid: false},
		{name: "lone point", input: ".", wantValid: false},
		{name: "currency only", input: "$", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseNumber(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ParseNumber(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
				return
			}
			if !tt.wantValid {
				return
			}

			f, err := result.Float64Value()
			if err != nil {
				t.Fatalf("Float64Value() error: %v", err)
			}
			if !f.Valid {
				t.Fatalf("Float64Value() returned invalid")
			}
			if diff := f.Float64 - tt.wantFloat; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, f.Float64, tt.wantFloat)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantYear  int
		wantMonth time.Month
		wantDay   int
	}{
		{name: "ISO", input: "2024-01-15", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "ISO leap day", input: "2024-02-29", wantValid: true, wantYear: 2024, wantMonth: time.February, wantDay: 29},
		{name: "US slashes", input: "1/15/2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},
		{name: "US padded", input: "01/05/2024", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 5},
		{name: "year first slashes", input: "2024/03/10", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "dots", input: "3.10.2024", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "compact", input: "20240310", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "month name", input: "Mar 10, 2024", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "day month name", input: "10 Mar 2024", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "RFC3339", input: "2024-03-10T08:00:00Z", wantValid: true, wantYear: 2024, wantMonth: time.March, wantDay: 10},
		{name: "whitespace", input: " 2024-01-15 ", wantValid: true, wantYear: 2024, wantMonth: time.January, wantDay: 15},

		{name: "empty", input: "", wantValid: false},
		{name: "bad month", input: "2024-13-01", wantValid: false},
		{name: "bad day", input: "2023-02-29", wantValid: false},
		{name: "text", input: "tomorrow", wantValid: false},
		{name: "number", input: "12345", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)

			if ok != tt.wantValid {
				t.Errorf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantValid)
				return
			}
			if !tt.wantValid {
				return
			}

			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q) = %s, want %04d-%02d-%02d",
					tt.input, got.Format("2006-01-02"), tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestParseDate_TwoDigitYear(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()
	TwoDigitYearPivot = 10

	pivotYear := time.Now().Year() + TwoDigitYearPivot

	tests := []struct {
		input string
	}{
		{"1/2/06"},
		{"1/2/60"},
		{"1/2/99"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if !ok {
				t.Fatalf("ParseDate(%q) returned invalid", tt.input)
			}
			if got.Year() > pivotYear {
				t.Errorf("ParseDate(%q) year = %d, should not exceed %d", tt.input, got.Year(), pivotYear)
			}
			if got.Year() < pivotYear-100 {
				t.Errorf("ParseDate(%q) year = %d, should be within a century of %d", tt.input, got.Year(), pivotYear)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// IsGUID / ParseTurn Tests
// ----------------------------------------------------------------------------

func TestIsGUID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"550E8400-E29B-41D4-A716-446655440000", true},
		{"00000000-0000-0000-0000-000000000000", true},
		{"{550e8400-e29b-41d4-a716-446655440000}", false},
		{"urn:uuid:550e8400-e29b-41d4-a716-446655440000", false},
		{"550e8400e29b41d4a716446655440000", false},
		{"550e8400-e29b-41d4-a716-44665544000g", false},
		{"550e8400-e29b-41d4-a716", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsGUID(tt.input); got != tt.want {
				t.Errorf("IsGUID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTurn(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" 12 ", 12, true},
		{"0", 0, true},
		{"-3", -3, true},
		{"1.0", 0, false},
		{"one", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTurn(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTurn(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
