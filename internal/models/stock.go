package models

import "time"

// StockItem is per-product warehouse stock. QuantityReserved is an
// accounting-only hold against on-hand stock, not a physical
// allocation. Both quantities are never negative.
type StockItem struct {
	ID               uint64
	ProductID        uint64
	QuantityTotal    int
	QuantityReserved int
	Location         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available returns the quantity that can still be reserved.
func (s *StockItem) Available() int {
	if a := s.QuantityTotal - s.QuantityReserved; a > 0 {
		return a
	}
	return 0
}
