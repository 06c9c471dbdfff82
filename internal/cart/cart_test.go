package cart

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"showcase/internal/catalog"
	"showcase/internal/core"
)

var (
	headphones = catalog.Product{ID: 1, Name: "Wireless Headphones", Category: catalog.Electronics, Price: core.Dollars(99), Image: "🎧"}
	shoes      = catalog.Product{ID: 2, Name: "Running Shoes", Category: catalog.Sports, Price: core.Dollars(120), Image: "👟"}
)

func TestAddMergesByID(t *testing.T) {
	c := Cart{}.Add(headphones).Add(headphones)
	if c.Len() != 1 {
		t.Fatalf("expected one line, got %d", c.Len())
	}
	l, _ := c.Line(headphones.ID)
	if l.Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", l.Quantity)
	}
	if got, want := c.Total(), core.Dollars(198); got != want {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestScenarioHeadphonesShoesHeadphones(t *testing.T) {
	c := Cart{}.Add(headphones).Add(shoes).Add(headphones)

	want := []Line{
		{ID: 1, Name: "Wireless Headphones", Price: core.Dollars(99), Image: "🎧", Quantity: 2},
		{ID: 2, Name: "Running Shoes", Price: core.Dollars(120), Image: "👟", Quantity: 1},
	}
	if diff := cmp.Diff(want, c.Lines()); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
	if got := c.Total(); got != core.Dollars(318) {
		t.Fatalf("total = %s, want $318.00", got)
	}
	if got := c.Count(); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	base := Cart{}.Add(headphones).Add(shoes)
	snapshot := base.Lines()

	base.Add(headphones)
	base.Remove(shoes.ID)
	if _, err := base.SetQuantity(headphones.ID, 7); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	if diff := cmp.Diff(snapshot, base.Lines()); diff != "" {
		t.Fatalf("receiver mutated (-before +after):\n%s", diff)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	c := Cart{}.Add(headphones)
	got := c.Remove(42)
	if diff := cmp.Diff(c.Lines(), got.Lines()); diff != "" {
		t.Fatalf("remove of absent id changed cart:\n%s", diff)
	}
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	carts := []Cart{
		{},
		Cart{}.Add(headphones),
		Cart{}.Add(headphones).Add(shoes).Add(shoes),
	}
	for i, c := range carts {
		for _, id := range []int{headphones.ID, shoes.ID, 99} {
			viaSet, err := c.SetQuantity(id, 0)
			if err != nil {
				t.Fatalf("cart %d id %d: %v", i, id, err)
			}
			if diff := cmp.Diff(c.Remove(id).Lines(), viaSet.Lines()); diff != "" {
				t.Fatalf("cart %d id %d: SetQuantity(0) != Remove (-remove +set):\n%s", i, id, diff)
			}
		}
	}
}

func TestSetQuantityRejectsNegative(t *testing.T) {
	c := Cart{}.Add(headphones)
	got, err := c.SetQuantity(headphones.ID, -1)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if diff := cmp.Diff(c.Lines(), got.Lines()); diff != "" {
		t.Fatalf("cart changed on rejected update:\n%s", diff)
	}
}

func TestSetQuantityRejectsAboveMax(t *testing.T) {
	c := Cart{}.Add(headphones)
	for _, qty := range []int{MaxQuantity + 1, 1_000_000_000_000_000_000} {
		got, err := c.SetQuantity(headphones.ID, qty)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("SetQuantity(%d) error = %v, want ErrInvalidQuantity", qty, err)
		}
		if got.Total() != core.Dollars(99) {
			t.Fatalf("SetQuantity(%d) total = %s, want unchanged $99.00", qty, got.Total())
		}
	}

	c, err := c.SetQuantity(headphones.ID, MaxQuantity)
	if err != nil {
		t.Fatalf("SetQuantity(MaxQuantity): %v", err)
	}
	if c.Total() != core.Dollars(99*MaxQuantity) {
		t.Fatalf("total = %s", c.Total())
	}
}

func TestAddStopsAtMaxQuantity(t *testing.T) {
	c, _ := Cart{}.Add(shoes).SetQuantity(shoes.ID, MaxQuantity)
	c = c.Add(shoes)
	if l, _ := c.Line(shoes.ID); l.Quantity != MaxQuantity {
		t.Fatalf("quantity = %d, want %d", l.Quantity, MaxQuantity)
	}
}

func TestSetQuantityReplaces(t *testing.T) {
	c, err := Cart{}.Add(headphones).Add(shoes).SetQuantity(shoes.ID, 4)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if c.Count() != 5 {
		t.Fatalf("count = %d, want 5", c.Count())
	}
	if c.Total() != core.Dollars(99+4*120) {
		t.Fatalf("total = %s", c.Total())
	}
}

func TestEmptyCart(t *testing.T) {
	var c Cart
	if !c.IsEmpty() || c.Total() != (core.Money{}) || c.Count() != 0 {
		t.Fatalf("zero cart not empty: %+v", c.Lines())
	}
	if !(Cart{}).Add(shoes).Clear().IsEmpty() {
		t.Fatal("Clear left lines behind")
	}
}
