package models

import "time"

// Product is a catalog entry. Orders snapshot its price at checkout
// and never read it back afterwards.
type Product struct {
	ID        uint64
	SKU       string
	Name      string
	PriceB2C  float64
	PriceB2B  float64
	Currency  string
	CreatedAt time.Time
}

// PriceFor returns the price for the account kind.
func (p *Product) PriceFor(isB2B bool) float64 {
	if isB2B {
		return p.PriceB2B
	}
	return p.PriceB2C
}
