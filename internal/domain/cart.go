package domain

// CartLine is a single item entry in a cart. Quantity is always >= 0; a line
// set to zero is removed rather than stored.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}
