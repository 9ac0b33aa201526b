package domain

import "time"

// Product is the catalog record for a book. ExternalProductID is nil until the
// payment processor registration has been linked back; a product with a nil
// external id is an orphan awaiting reconciliation.
type Product struct {
	ID                string
	Title             string
	Author            string
	Description       string
	PriceCents        int64
	Category          string
	CoverURL          string
	ExternalProductID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Linked reports whether the processor-side record has been linked back.
func (p *Product) Linked() bool {
	return p.ExternalProductID != nil && *p.ExternalProductID != ""
}
