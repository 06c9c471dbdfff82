package rates

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

var currencyNames = map[string]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"INR": "Indian Rupee",
	"MXN": "Mexican Peso",
}

// CurrencyName returns the display name for code, or code itself when unknown.
func CurrencyName(code string) string {
	if name, ok := currencyNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

type Currency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Currencies lists every code in the snapshot, sorted by code.
func Currencies(s Snapshot) []Currency {
	out := make([]Currency, 0, len(s.Rates))
	for code := range s.Rates {
		out = append(out, Currency{Code: code, Name: CurrencyName(code)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Convert multiplies amount by the snapshot's rate for to, rounded to 4 decimals.
// Negative or non-finite amounts and results are rejected with ErrInvalidAmount.
func Convert(amount float64, to string, s Snapshot) (float64, error) {
	if amount < 0 || !finite(amount) {
		return 0, fmt.Errorf("%w: %g", ErrInvalidAmount, amount)
	}
	rate, ok := s.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	res := round4(amount * rate)
	if !finite(res) {
		return 0, fmt.Errorf("%w: %g %s overflows", ErrInvalidAmount, amount, to)
	}
	return res, nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Conversion is the converter form state.
type Conversion struct {
	From   string  `json:"fromCurrency" validate:"required,len=3,alpha"`
	To     string  `json:"toCurrency" validate:"required,len=3,alpha"`
	Amount float64 `json:"amount" validate:"gte=0,lte=1e12"`
	Result float64 `json:"result"`
}

// DefaultConversion converts 1 USD to EUR.
func DefaultConversion() Conversion {
	return Conversion{From: "USD", To: "EUR", Amount: 1}
}

// Swap exchanges the currencies and clears the result.
func (c Conversion) Swap() Conversion {
	c.From, c.To = c.To, c.From
	c.Result = 0
	return c
}

// Apply recomputes Result from s. s must be for c.From.
func (c Conversion) Apply(s Snapshot) (Conversion, error) {
	if !strings.EqualFold(s.Base, c.From) {
		return c, fmt.Errorf("%w: snapshot is for %s, not %s", ErrUnknownCurrency, s.Base, c.From)
	}
	res, err := Convert(c.Amount, c.To, s)
	if err != nil {
		return c, err
	}
	c.Result = res
	return c, nil
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Trend compares the newest point with the oldest. Fewer than two points is Flat.
func Trend(points []Point) Direction {
	if len(points) < 2 {
		return Flat
	}
	first, last := points[0].Rate, points[len(points)-1].Rate
	switch {
	case last > first:
		return Up
	case last < first:
		return Down
	default:
		return Flat
	}
}
