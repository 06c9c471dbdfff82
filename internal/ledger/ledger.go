// Package ledger tracks income and expense transactions against a monthly
// budget and derives the category breakdown and monthly summary from them.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"showcase/internal/core"
)

type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// IncomeCategoryID is reserved for income; it never receives expenses and
// is left out of the budget breakdown.
const IncomeCategoryID = 1

// MaxDescription is the longest description accepted, in characters.
const MaxDescription = 200

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownType      = errors.New("unknown transaction type")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryMismatch = errors.New("category does not match transaction type")
	ErrNegativeBudget   = errors.New("budget cannot be negative")
	ErrDescriptionLong  = errors.New("description too long")
)

func (t Type) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownType, t)
}

type Category struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Color string `json:"color" yaml:"color"`
}

type Transaction struct {
	ID          int64      `json:"id"`
	Type        Type       `json:"type"`
	Amount      core.Money `json:"amount"`
	CategoryID  int        `json:"categoryId"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
}

// Draft is a transaction the user has not committed yet.
type Draft struct {
	Type        Type
	Amount      core.Money
	CategoryID  int
	Description string
	// Date defaults to the time of Add when zero.
	Date time.Time
}

// Ledger is a value type. Transactions are append-only; the only way to
// change one is to delete it.
type Ledger struct {
	transactions []Transaction
	categories   []Category
	budget       core.Money
	lastID       int64
}

// New builds a ledger over a fixed category list. The list must contain
// the reserved income category.
func New(categories []Category, budget core.Money) (Ledger, error) {
	if budget.Cents < 0 {
		return Ledger{}, ErrNegativeBudget
	}
	hasIncome := false
	seen := make(map[int]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c.ID]; dup {
			return Ledger{}, fmt.Errorf("duplicate category id %d", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.ID == IncomeCategoryID {
			hasIncome = true
		}
	}
	if !hasIncome {
		return Ledger{}, fmt.Errorf("%w: reserved income category %d missing", ErrUnknownCategory, IncomeCategoryID)
	}
	cats := make([]Category, len(categories))
	copy(cats, categories)
	return Ledger{categories: cats, budget: budget}, nil
}

func (l Ledger) Budget() core.Money { return l.budget }

// SetBudget returns a ledger with a new budget. Zero is allowed.
func (l Ledger) SetBudget(m core.Money) (Ledger, error) {
	if m.Cents < 0 {
		return l, ErrNegativeBudget
	}
	l.budget = m
	return l, nil
}

func (l Ledger) Categories() []Category {
	out := make([]Category, len(l.categories))
	copy(out, l.categories)
	return out
}

func (l Ledger) Category(id int) (Category, bool) {
	for _, c := range l.categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Transactions returns the transactions in the order they were added.
func (l Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// Recent returns the transactions newest first, for display.
func (l Ledger) Recent() []Transaction {
	out := make([]Transaction, len(l.transactions))
	for i, t := range l.transactions {
		out[len(out)-1-i] = t
	}
	return out
}

func (l Ledger) Len() int { return len(l.transactions) }

// Validate checks a draft against the ledger's categories.
func (l Ledger) Validate(d Draft) error {
	if err := d.Type.Validate(); err != nil {
		return err
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if n := utf8.RuneCountInString(d.Description); n > MaxDescription {
		return fmt.Errorf("%w: %d characters, max %d", ErrDescriptionLong, n, MaxDescription)
	}
	if _, ok := l.Category(d.CategoryID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, d.CategoryID)
	}
	isIncomeCategory := d.CategoryID == IncomeCategoryID
	if (d.Type == Income) != isIncomeCategory {
		return fmt.Errorf("%w: %s in category %d", ErrCategoryMismatch, d.Type, d.CategoryID)
	}
	return nil
}

// Add validates the draft and appends it with a fresh id.
func (l Ledger) Add(d Draft, now time.Time) (Ledger, Transaction, error) {
	if err := l.Validate(d); err != nil {
		return l, Transaction{}, err
	}
	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	date := d.Date
	if date.IsZero() {
		date = now
	}
	tx := Transaction{
		ID:          id,
		Type:        d.Type,
		Amount:      d.Amount,
		CategoryID:  d.CategoryID,
		Description: strings.TrimSpace(d.Description),
		Date:        date,
	}
	next := l
	next.transactions = append(l.Transactions(), tx)
	next.lastID = id
	return next, tx, nil
}

// Restore appends already-identified transactions, e.g. seed data. Ids
// must be unique across the ledger.
func (l Ledger) Restore(txs ...Transaction) (Ledger, error) {
	next := l
	next.transactions = l.Transactions()
	seen := make(map[int64]struct{}, len(l.transactions)+len(txs))
	for _, t := range l.transactions {
		seen[t.ID] = struct{}{}
	}
	for _, t := range txs {
		if _, dup := seen[t.ID]; dup {
			return l, fmt.Errorf("duplicate transaction id %d", t.ID)
		}
		if err := l.Validate(Draft{Type: t.Type, Amount: t.Amount, CategoryID: t.CategoryID, Description: t.Description}); err != nil {
			return l, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		seen[t.ID] = struct{}{}
		next.transactions = append(next.transactions, t)
		if t.ID > next.lastID {
			next.lastID = t.ID
		}
	}
	return next, nil
}

// Delete removes the transaction with id. Unknown ids are ignored.
func (l Ledger) Delete(id int64) Ledger {
	out := make([]Transaction, 0, len(l.transactions))
	for _, t := range l.transactions {
		if t.ID != id {
			out = append(out, t)
		}
	}
	next := l
	next.transactions = out
	return next
}

// CategoryTotals is the budget breakdown for this ledger.
func (l Ledger) CategoryTotals() []CategoryTotal {
	return CategoryTotals(l.transactions, l.categories, l.budget)
}

// Summary is the monthly summary for the month containing now.
func (l Ledger) Summary(now time.Time) MonthSummary {
	return MonthlySummary(l.transactions, now, l.budget)
}
