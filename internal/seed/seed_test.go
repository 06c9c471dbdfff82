package seed

import (
	"strings"
	"testing"
	"time"

	"showcase/internal/core"
	"showcase/internal/kanban"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if n := d.Catalog().Len(); n != 10 {
		t.Errorf("catalog has %d products, want 10", n)
	}
	if p, ok := d.Catalog().Lookup(7); !ok || p.Price != core.Dollars(899) {
		t.Errorf("Lookup(7) = %+v, %v", p, ok)
	}
	if len(d.Projects) != 15 {
		t.Errorf("Projects = %d, want 15", len(d.Projects))
	}
	if d.Budget() != core.Dollars(2500) {
		t.Errorf("Budget() = %s", d.Budget())
	}

	available := 0
	for _, p := range d.Projects {
		if p.Available() {
			available++
		}
	}
	if available != 5 {
		t.Errorf("available projects = %d, want 5", available)
	}
}

func TestBoardAndLedger(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	b, err := d.Board(now)
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if got := len(b.Tasks(kanban.Todo)); got != 2 {
		t.Errorf("todo tasks = %d, want 2", got)
	}

	l, err := d.Ledger(now, d.Budget())
	if err != nil {
		t.Fatalf("Ledger() error = %v", err)
	}
	s := l.Summary(now)
	if s.Income != core.Dollars(3000) || s.Expenses != core.Dollars(280) {
		t.Errorf("Summary() = %+v", s)
	}
	for _, tx := range l.Transactions() {
		if tx.Date.After(now) {
			t.Errorf("transaction %d dated in the future: %v", tx.ID, tx.Date)
		}
	}
}

func TestRoom(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	r := d.Room(now)
	msgs := r.Messages()
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want 4", len(msgs))
	}
	if !msgs[2].IsOwn || msgs[0].IsOwn {
		t.Error("only messages by You should be own")
	}
	if got := now.Sub(msgs[0].Timestamp); got != 5*time.Minute {
		t.Errorf("first message age = %v", got)
	}
	if r.OnlineCount() != 3 {
		t.Errorf("OnlineCount() = %d", r.OnlineCount())
	}
}

func TestParseRejectsBadData(t *testing.T) {
	tests := map[string]string{
		"bad price":    "products:\n  - {id: 1, name: A, category: home, price: abc}\nledger: {budget: '1', categories: [{id: 1, name: Income}]}\n",
		"bad category": "products:\n  - {id: 1, name: A, category: toys, price: '1'}\nledger: {budget: '1', categories: [{id: 1, name: Income}]}\n",
		"no income":    "ledger: {budget: '1', categories: [{id: 2, name: Food}]}\n",
		"bad bucket":   "tasks:\n  - {id: 1, text: x, priority: low, bucket: later}\nledger: {budget: '1', categories: [{id: 1, name: Income}]}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Error("Parse() error = nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/seed.yaml")
	if err == nil || !strings.Contains(err.Error(), "read seed") {
		t.Errorf("Load() error = %v", err)
	}
}
