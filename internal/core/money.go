// Package core provides the money type shared by every demo.
//
// Amounts are kept in integer cents so totals and aggregates never drift;
// conversion to floating point only happens for percentages and display.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in cents. Negative values are allowed for derived
// figures such as a balance or an overspent budget.
type Money struct {
	Cents int64
}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNegativeMoney = errors.New("amount cannot be negative")
)

// Dollars builds a Money value from a whole dollar amount.
func Dollars(d int64) Money {
	return Money{Cents: d * 100}
}

// Validate requires a strictly positive amount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Times multiplies the amount by an integer quantity.
func (m Money) Times(n int) Money { return Money{Cents: m.Cents * int64(n)} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Float returns the dollar value as a float64 for display and ratios.
// Use cents for arithmetic.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as "$12.34" (or "-$12.34").
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := "$" + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalText renders the amount as a plain decimal ("12.34") so JSON
// payloads carry dollars rather than cents.
func (m Money) MarshalText() ([]byte, error) {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return []byte(fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)), nil
}

// UnmarshalText accepts the same non-negative decimal forms as
// ParseDecimalToCents, plus zero.
func (m *Money) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("%w: %s", ErrNegativeMoney, s)
	}
	if isZeroDecimal(s) {
		m.Cents = 0
		return nil
	}
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// Both dot (12.34) and comma (12,34) separators are accepted. The result is
// always positive; signs, zero and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
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
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney parses a non-negative amount, allowing zero.
func ParseMoney(s string) (Money, error) {
	var m Money
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return Money{}, err
	}
	return m, nil
}

// allDigits accepts ASCII digits only; the parser does byte arithmetic on them.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isZeroDecimal(s string) bool {
	if s == "" {
		return false
	}
	s = strings.ReplaceAll(s, ",", ".")
	seenDot := false
	for _, r := range s {
		switch {
		case r == '0':
		case r == '.' && !seenDot:
			seenDot = true
		default:
			return false
		}
	}
	return s != "."
}
