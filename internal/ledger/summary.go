package ledger

import (
	"time"

	"showcase/internal/core"
)

type CategoryTotal struct {
	Category
	Total      core.Money `json:"total"`
	Percentage float64    `json:"percentage"`
	// Bar is Percentage clamped to [0, 100] for progress bars.
	Bar float64 `json:"bar"`
}

type MonthSummary struct {
	Income          core.Money `json:"income"`
	Expenses        core.Money `json:"expenses"`
	Balance         core.Money `json:"balance"`
	BudgetRemaining core.Money `json:"budgetRemaining"`
}

// CategoryTotals sums expenses per non-income category, in category order,
// and expresses each total as a percentage of budget. A zero budget yields
// zero percentages.
func CategoryTotals(transactions []Transaction, categories []Category, budget core.Money) []CategoryTotal {
	sums := make(map[int]core.Money, len(categories))
	for _, t := range transactions {
		if t.Type == Expense {
			sums[t.CategoryID] = sums[t.CategoryID].Add(t.Amount)
		}
	}

	out := make([]CategoryTotal, 0, len(categories))
	for _, c := range categories {
		if c.ID == IncomeCategoryID {
			continue
		}
		total := sums[c.ID]
		pct := 0.0
		if budget.Cents > 0 {
			pct = total.Float() * 100 / budget.Float()
		}
		out = append(out, CategoryTotal{Category: c, Total: total, Percentage: pct, Bar: ClampPercent(pct)})
	}
	return out
}

// MonthlySummary totals the transactions dated in the same calendar month
// and year as now, in now's location.
func MonthlySummary(transactions []Transaction, now time.Time, budget core.Money) MonthSummary {
	year, month, _ := now.Date()
	var s MonthSummary
	for _, t := range transactions {
		y, m, _ := t.Date.In(now.Location()).Date()
		if y != year || m != month {
			continue
		}
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	s.BudgetRemaining = budget.Sub(s.Expenses)
	return s
}

// ClampPercent caps a percentage to [0, 100] for progress bars.
func ClampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
