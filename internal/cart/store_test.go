package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStore_LedgerPerCustomer(t *testing.T) {
	s := NewStore()

	a := s.Ledger("cust-a")
	b := s.Ledger("cust-b")
	if a == b {
		t.Fatal("expected distinct ledgers for distinct customers")
	}

	a.AddItem(menuItem("burger", "Burger", "5.99"))
	if len(b.Lines()) != 0 {
		t.Error("customer b's ledger should be unaffected by customer a")
	}

	if s.Ledger("cust-a") != a {
		t.Error("expected the same ledger instance on repeated lookup")
	}
}

func TestStore_Drop(t *testing.T) {
	s := NewStore()
	g := s.Ledger("cust-a")
	g.AddItem(menuItem("burger", "Burger", "5.99"))

	s.Drop("cust-a")

	if len(s.Ledger("cust-a").Lines()) != 0 {
		t.Error("expected a fresh empty ledger after drop")
	}
}

func TestStore_ChangeListener(t *testing.T) {
	type change struct {
		customerID string
		lineCount  int
	}
	var changes []change

	s := NewStore(func(customerID string, lines []Line, total decimal.Decimal) {
		changes = append(changes, change{customerID: customerID, lineCount: len(lines)})
	})

	s.Ledger("cust-a").AddItem(menuItem("burger", "Burger", "5.99"))
	s.Ledger("cust-b").AddItem(menuItem("fries", "Fries", "2.50"))
	s.Ledger("cust-a").Clear()

	want := []change{
		{"cust-a", 1},
		{"cust-b", 1},
		{"cust-a", 0},
	}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(changes))
	}
	for i, w := range want {
		if changes[i] != w {
			t.Errorf("change %d: expected %+v, got %+v", i, w, changes[i])
		}
	}
}
