package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// ChangeListener receives every ledger change in the store, tagged with the
// owning customer id.
type ChangeListener func(customerID string, lines []Line, total decimal.Decimal)

// Store owns one ledger per customer for the lifetime of the process. Carts
// are session state: they are not persisted, the durable record is the order
// created at checkout.
type Store struct {
	mu        sync.Mutex
	ledgers   map[string]*Ledger
	listeners []ChangeListener
}

func NewStore(listeners ...ChangeListener) *Store {
	return &Store{
		ledgers:   make(map[string]*Ledger),
		listeners: listeners,
	}
}

// Ledger returns the customer's ledger, creating an empty one on first use.
func (s *Store) Ledger(customerID string) *Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.ledgers[customerID]; ok {
		return g
	}

	g := NewLedger()
	for _, listen := range s.listeners {
		listen := listen
		g.Subscribe(func(lines []Line, total decimal.Decimal) {
			listen(customerID, lines, total)
		})
	}
	s.ledgers[customerID] = g
	return g
}

// Drop discards the customer's ledger, ending the session.
func (s *Store) Drop(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, customerID)
}
