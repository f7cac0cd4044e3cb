package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		layouts  []string
		expected string
		hasError bool
	}{
		{"upper case month name", "15/JAN/2024 14:30", []string{LayoutSlashMonthName}, "2024-01-15 14:30:00", false},
		{"mixed case month name", "03/Feb/2023 09:05", []string{LayoutSlashMonthName}, "2023-02-03 09:05:00", false},
		{"extra whitespace", " 15/JAN/2024   14:30 ", []string{LayoutSlashMonthName}, "2024-01-15 14:30:00", false},
		{"dash numeric", "01-03-2024 08:15", []string{LayoutDashNumeric}, "2024-03-01 08:15:00", false},
		{"common layouts fallback", "2024-06-30 23:59", nil, "2024-06-30 23:59:00", false},
		{"already canonical", "2024-06-30 23:59:10", nil, "2024-06-30 23:59:10", false},
		{"wrong layout", "15/JAN/2024 14:30", []string{LayoutDashNumeric}, "", true},
		{"invalid month", "15/XYZ/2024 14:30", []string{LayoutSlashMonthName}, "", true},
		{"empty", "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.value, tt.layouts...)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatCanonical(t *testing.T) {
	ts := time.Date(2024, time.January, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "2024-01-05 07:08:09", FormatCanonical(ts))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-01", MonthKey("2024-01-15 14:30:00"))
	assert.Equal(t, "", MonthKey("2024"))
}
