// Package currencyutils parses and formats the monetary fields of notification text.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousandsSeparators = strings.NewReplacer(",", "", "'", "", " ", "", "\u00a0", "")
	currencyCode        = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ParseAmount parses an amount as written in bank notifications ("1,250.00", "12'000.5").
// Thousands separators are stripped; the dot is the only decimal separator.
// An empty string parses as zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := thousandsSeparators.Replace(strings.TrimSpace(amountStr))
	if cleaned == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// NormalizeCurrency upper-cases a captured currency code. Anything that is not a
// 3-letter code yields fallback.
func NormalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if currencyCode.MatchString(code) {
		return code
	}
	return fallback
}

// IsCurrencyCode reports whether code is an upper-case 3-letter code.
func IsCurrencyCode(code string) bool {
	return currencyCode.MatchString(code)
}

// FormatAmount renders "USD 1250.00". Two decimal places, no thousands separators.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}
