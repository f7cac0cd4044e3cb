// Package dateutils parses the datetime literals found in bank notifications and renders
// them in the canonical ledger format.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts seen in notification text. Month names match case-insensitively ("15/JAN/2024").
const (
	LayoutCanonical      = "2006-01-02 15:04:05"
	LayoutSlashMonthName = "02/Jan/2006 15:04"
	LayoutDashNumeric    = "02-01-2006 15:04"
	LayoutDashNumericS   = "02-01-2006 15:04:05"
	LayoutSlashNumeric   = "02/01/2006 15:04"
	LayoutSlashNumericS  = "02/01/2006 15:04:05"
	LayoutISOMinutes     = "2006-01-02 15:04"
)

// CommonLayouts is tried when a pattern does not declare its own layouts.
var CommonLayouts = []string{
	LayoutCanonical,
	LayoutISOMinutes,
	LayoutSlashMonthName,
	LayoutSlashNumericS,
	LayoutSlashNumeric,
	LayoutDashNumericS,
	LayoutDashNumeric,
	time.RFC3339,
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(value string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}

// ParseDateTime parses value with the first layout that accepts it, in the local zone.
// With no layouts, CommonLayouts is used.
func ParseDateTime(value string, layouts ...string) (time.Time, error) {
	value = CleanDateString(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if len(layouts) == 0 {
		layouts = CommonLayouts
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime: %s", value)
}

// Normalize parses value and renders it in LayoutCanonical.
func Normalize(value string, layouts ...string) (string, error) {
	t, err := ParseDateTime(value, layouts...)
	if err != nil {
		return "", err
	}
	return FormatCanonical(t), nil
}

// FormatCanonical renders t as YYYY-MM-DD HH:mm:ss.
func FormatCanonical(t time.Time) string {
	return t.Format(LayoutCanonical)
}

// MonthKey renders the YYYY-MM month a canonical datetime belongs to.
func MonthKey(canonical string) string {
	if len(canonical) < 7 {
		return ""
	}
	return canonical[:7]
}
