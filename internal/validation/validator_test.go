package validation

import (
	"testing"
	"time"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "hello", true},
		{"String with leading/trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidStringLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		min      int
		max      int
		expected bool
	}{
		{"Empty string, min 1", "", 1, 10, false},
		{"Too long", "very long string", 1, 5, false},
		{"Exactly max", "hello", 1, 5, true},
		{"Trims before measuring", "  hello  ", 1, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsValidStringLength(tt.input, tt.min, tt.max)
			if result != tt.expected {
				t.Errorf("IsValidStringLength(%q, %d, %d) = %v, expected %v", tt.input, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidTaskName(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"Write report", true},
		{"Fix bug #123: login", true},
		{"Review (draft) v2.1", true},
		{"line\nbreak", false},
		{"tab\there", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validator.IsValidTaskName(tt.input); got != tt.expected {
				t.Errorf("IsValidTaskName(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidUserID(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"alice", true},
		{"alice.smith@example.com", true},
		{"user-42", true},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validator.IsValidUserID(tt.input); got != tt.expected {
				t.Errorf("IsValidUserID(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidator_IsValidTimeShorthand(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		input    string
		expected bool
	}{
		{"30m", true},
		{"2h", true},
		{"1d", true},
		{"2w", true},
		{"3mo", true},
		{"1y", true},
		{"0h", false},
		{"h", false},
		{"2x", false},
		{"-1d", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := validator.IsValidTimeShorthand(tt.input); got != tt.expected {
				t.Errorf("IsValidTimeShorthand(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidator_ParseTimeShorthand(t *testing.T) {
	validator := NewValidator()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"30m", time.Date(2024, 3, 15, 11, 30, 0, 0, time.UTC)},
		{"2h", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"1d", time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)},
		{"2w", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"1mo", time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validator.ParseTimeShorthand(tt.input, now)
			if err != nil {
				t.Fatalf("ParseTimeShorthand(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("ParseTimeShorthand(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}

	if _, err := validator.ParseTimeShorthand("soon", now); err == nil {
		t.Error("ParseTimeShorthand(\"soon\") expected error")
	}
}

func TestValidator_IsValidDateRange(t *testing.T) {
	validator := NewValidator()
	now := time.Now()
	past := now.Add(-time.Hour)

	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		expected bool
	}{
		{"Both nil", nil, nil, true},
		{"Open end", &past, nil, true},
		{"Ordered", &past, &now, true},
		{"Equal", &now, &now, true},
		{"Reversed", &now, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validator.IsValidDateRange(tt.start, tt.end); got != tt.expected {
				t.Errorf("IsValidDateRange() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
