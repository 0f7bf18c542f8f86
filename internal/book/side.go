package book

import (
	"github.com/tidwall/btree"
)

// PriceLevels is the ordered map from price to PriceLevel that backs one
// side of the book. Bids and asks share this same generic type,
// parameterised only by their comparator, so the matching loop never has
// to duplicate itself per side.
type PriceLevels = btree.BTreeG[*PriceLevel]

// BookSide is a price-indexed queue structure for one side of the book
// (bids or asks), traversed in a fixed best-first direction.
type BookSide struct {
	levels *PriceLevels
}

// NewBidSide returns a book side ordered highest-price-first, for resting
// buy orders.
func NewBidSide() *BookSide {
	return &BookSide{
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.PriceLevel > b.PriceLevel
		}),
	}
}

// NewAskSide returns a book side ordered lowest-price-first, for resting
// sell orders.
func NewAskSide() *BookSide {
	return &BookSide{
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.PriceLevel < b.PriceLevel
		}),
	}
}

// Best returns the best (first-in-traversal-order) price level, if any.
// It returns a mutable handle: the matching engine drains the level's
// queue directly through it.
func (s *BookSide) Best() (*PriceLevel, bool) {
	return s.levels.MinMut()
}

// DeleteLevel erases a level once its queue has been drained.
func (s *BookSide) DeleteLevel(level *PriceLevel) {
	s.levels.Delete(level)
}

// Append adds an order to the back of the level for price, creating the
// level if it does not already exist.
func (s *BookSide) Append(price float64, o *Order) {
	level, ok := s.levels.GetMut(&PriceLevel{PriceLevel: price})
	if !ok {
		s.levels.Set(&PriceLevel{PriceLevel: price, Orders: []*Order{o}})
		return
	}
	level.Append(o)
}

// Remove locates order by identity at its own price level and removes it,
// erasing the level if it becomes empty. Reports whether the order was
// found.
func (s *BookSide) Remove(o *Order) bool {
	level, ok := s.levels.GetMut(&PriceLevel{PriceLevel: o.Price})
	if !ok {
		return false
	}
	found := level.removeByID(o.ID)
	if level.Empty() {
		s.levels.Delete(level)
	}
	return found
}

// Items returns a best-first snapshot of every non-empty level currently
// resting on this side. Intended for reporting (CLI print, depth queries,
// metrics gauges); it is not on the hot matching path.
func (s *BookSide) Items() []*PriceLevel {
	return s.levels.Items()
}

// Depth returns the number of resting price levels and the total resting
// order count across them.
func (s *BookSide) Depth() (levels int, orders int) {
	items := s.levels.Items()
	levels = len(items)
	for _, level := range items {
		orders += len(level.Orders)
	}
	return levels, orders
}

// Len reports the number of distinct price levels currently resting.
func (s *BookSide) Len() int {
	return s.levels.Len()
}
