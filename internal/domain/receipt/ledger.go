package receipt

import "sync"

// Ledger is an in-memory append-only list of receipts. Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries []Receipt
	byID    map[string]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]int)}
}

// Commit appends a receipt.
func (l *Ledger) Commit(r Receipt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, r)
	if r.ID != "" {
		l.byID[r.ID] = len(l.entries) - 1
	}
}

// Entries returns a copy of all receipts in commit order.
func (l *Ledger) Entries() []Receipt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Receipt, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of committed receipts.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Get returns the receipt with the given ID.
func (l *Ledger) Get(id string) (Receipt, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return Receipt{}, false
	}
	return l.entries[i], true
}
