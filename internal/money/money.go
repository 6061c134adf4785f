// Package money provides minor-unit parsing, formatting and
// overflow-checked arithmetic.
//
// All ledger amounts are int64 cents. Parsing accepts fixed-precision
// decimal strings; everything downstream is integer math.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/fairsplit/fairsplit/internal/models"
)

// ErrInvalidAmount indicates a string that does not parse as a positive
// fixed-precision decimal amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimal converts a decimal string to cents with half-up rounding on
// the third decimal place. It accepts both dot (12.34) and comma (12,34)
// separators. The result is always positive cents.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234, nil
//	ParseDecimal("12,34")  -> 1234, nil
//	ParseDecimal("12.345") -> 1234, nil (rounds down)
//	ParseDecimal("12.346") -> 1235, nil (rounds up)
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive amounts are expressible
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	var whole int64
	for _, r := range intPart {
		d := int64(r - '0')
		if whole > (math.MaxInt64-d)/10 {
			return 0, models.ErrOverflow
		}
		whole = whole*10 + d
	}

	// First two fractional digits, half-up on the third
	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			cents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				cents++
			}
		}
	}
	total, err := CheckedMul(whole, 100)
	if err != nil {
		return 0, err
	}
	if total, err = CheckedAdd(total, cents); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, ErrInvalidAmount
	}
	return total, nil
}

// Format renders cents as a decimal string, e.g. 1234 -> "12.34",
// -5 -> "-0.05".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// CheckedAdd returns a+b, or models.ErrOverflow if the sum is not
// representable.
func CheckedAdd(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, models.ErrOverflow
	}
	return a + b, nil
}

// CheckedSub returns a-b, or models.ErrOverflow if the difference is not
// representable.
func CheckedSub(a, b int64) (int64, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, models.ErrOverflow
	}
	return a - b, nil
}

// CheckedMul returns a*b, or models.ErrOverflow if the product is not
// representable. Both factors are expected to be non-negative.
func CheckedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, models.ErrOverflow
	}
	return a * b, nil
}
