package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Line is a single product entry in a cart. UnitPricePaise is the catalog
// price captured when the line was added; re-adding the product refreshes
// it, and order creation validates stock against the catalog.
type Line struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPricePaise int64     `json:"unit_price_paise"`
	ImageURL       string    `json:"image_url,omitempty"`
	Quantity       int       `json:"quantity"`
}

// SubtotalPaise returns the line total.
func (l Line) SubtotalPaise() int64 {
	return l.UnitPricePaise * int64(l.Quantity)
}

// Snapshot is the serializable form of a cart, persisted per scope.
type Snapshot struct {
	Lines   []Line `json:"lines"`
	Version int64  `json:"version"`
}

// Store is an in-memory cart for one scope. All mutations go through the
// mutex; lines keep insertion order so rendering is stable.
type Store struct {
	mu      sync.Mutex
	scope   string
	lines   []Line
	version int64
}

// NewStore builds an empty cart store for the given scope.
func NewStore(scope string) *Store {
	return &Store{scope: scope}
}

// Restore replaces the store contents with a previously persisted snapshot.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make([]Line, len(snap.Lines))
	copy(s.lines, snap.Lines)
	s.version = snap.Version
}

// Scope returns the identity the store belongs to.
func (s *Store) Scope() string {
	return s.scope
}

// Add merges the provided line into the cart. An existing line for the same
// product has its quantity incremented and its price and name refreshed.
func (s *Store) Add(line Line) {
	if line.Quantity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID == line.ProductID {
			s.lines[i].Quantity += line.Quantity
			s.lines[i].Name = line.Name
			s.lines[i].UnitPricePaise = line.UnitPricePaise
			s.lines[i].ImageURL = line.ImageURL
			s.version++
			return
		}
	}
	s.lines = append(s.lines, line)
	s.version++
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes
// the line. Unknown products are ignored.
func (s *Store) SetQuantity(productID uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].Quantity = quantity
		}
		s.version++
		return
	}
}

// Remove deletes the line for the given product, if present.
func (s *Store) Remove(productID uuid.UUID) {
	s.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.version++
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalPaise sums all line subtotals.
func (s *Store) TotalPaise() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, line := range s.lines {
		total += line.SubtotalPaise()
	}
	return total
}

// Count returns the total number of units across lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Snapshot captures the current contents for persistence.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Lines: lines, Version: s.version}
}
