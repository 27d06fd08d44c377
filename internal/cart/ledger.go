package cart

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quickbite-app/quickbite/internal/domain"
)

// Line is one (item, quantity) entry in a ledger. Name and unit price are
// snapshotted from the catalog when the line is added, so a mid-session price
// change never alters what the customer already put in the cart.
type Line struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Observer is invoked after every mutation that changed ledger state. The
// slice passed in is a private copy.
type Observer func(lines []Line, total decimal.Decimal)

// Ledger holds the current customer's selected items. Lines are unique by
// item id and kept in insertion order. Mutations are driven by discrete user
// actions; a single coarse mutex guards them because HTTP handler goroutines
// share the instance. "Not found" cases are deliberate no-ops, never errors:
// a stale tap (removing an already-removed line) must be harmless.
type Ledger struct {
	mu        sync.Mutex
	lines     []Line
	observers map[int]Observer
	nextObs   int
}

func NewLedger() *Ledger {
	return &Ledger{observers: make(map[int]Observer)}
}

// AddItem merges the item into the ledger: an existing line gains quantity 1,
// otherwise a new line with quantity 1 is appended.
func (g *Ledger) AddItem(item domain.MenuItem) {
	g.mu.Lock()
	for i := range g.lines {
		if g.lines[i].ItemID == item.ID {
			g.lines[i].Quantity++
			g.notifyLocked()
			return
		}
	}
	g.lines = append(g.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	})
	g.notifyLocked()
}

// UpdateQuantity sets the line's quantity to exactly quantity. A quantity of
// zero or less removes the line. An absent item id is a no-op.
func (g *Ledger) UpdateQuantity(itemID string, quantity int) {
	g.mu.Lock()
	for i := range g.lines {
		if g.lines[i].ItemID != itemID {
			continue
		}
		if quantity <= 0 {
			g.lines = append(g.lines[:i], g.lines[i+1:]...)
		} else {
			g.lines[i].Quantity = quantity
		}
		g.notifyLocked()
		return
	}
	g.mu.Unlock()
}

// RemoveItem removes the line for itemID, if any.
func (g *Ledger) RemoveItem(itemID string) {
	g.mu.Lock()
	for i := range g.lines {
		if g.lines[i].ItemID == itemID {
			g.lines = append(g.lines[:i], g.lines[i+1:]...)
			g.notifyLocked()
			return
		}
	}
	g.mu.Unlock()
}

// Clear empties the ledger. Observers are only notified when there was
// something to clear.
func (g *Ledger) Clear() {
	g.mu.Lock()
	if len(g.lines) == 0 {
		g.mu.Unlock()
		return
	}
	g.lines = nil
	g.notifyLocked()
}

// Lines returns a copy of the current lines in insertion order.
func (g *Ledger) Lines() []Line {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copyLinesLocked()
}

// Total is the exact decimal sum of unit price x quantity over all lines.
func (g *Ledger) Total() decimal.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.totalLocked()
}

// Subscribe registers an observer and returns its unsubscribe function.
func (g *Ledger) Subscribe(obs Observer) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextObs
	g.nextObs++
	g.observers[id] = obs
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.observers, id)
	}
}

// Snapshot captures the ledger contents as immutable order lines for
// submission. The ledger itself is not modified.
func (g *Ledger) Snapshot(now time.Time) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	lines := make([]domain.OrderLine, 0, len(g.lines))
	for _, l := range g.lines {
		lines = append(lines, domain.OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return Snapshot{
		Lines:      lines,
		Total:      g.totalLocked(),
		CapturedAt: now,
	}
}

func (g *Ledger) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range g.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (g *Ledger) copyLinesLocked() []Line {
	lines := make([]Line, len(g.lines))
	copy(lines, g.lines)
	return lines
}

// notifyLocked releases the mutex and delivers the new state to observers.
// Delivery happens outside the lock so an observer may call back into the
// ledger without deadlocking.
func (g *Ledger) notifyLocked() {
	lines := g.copyLinesLocked()
	total := g.totalLocked()
	observers := make([]Observer, 0, len(g.observers))
	for _, obs := range g.observers {
		observers = append(observers, obs)
	}
	g.mu.Unlock()

	for _, obs := range observers {
		obs(lines, total)
	}
}

// Snapshot is the full cart state captured at checkout time.
type Snapshot struct {
	Lines      []domain.OrderLine `json:"lines"`
	Total      decimal.Decimal    `json:"total"`
	CapturedAt time.Time          `json:"captured_at"`
}
