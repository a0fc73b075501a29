package domain

// CartLineItem is the persisted shape of one cart entry. Identity is the
// product ID; a quantity below 1 means the item must be removed, never stored.
type CartLineItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

func (i CartLineItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// CartItem is the view shape of a line item inside the Cart aggregate.
type CartItem struct {
	Product    Product `json:"product"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// Cart is derived from the line-item list on every read, never persisted.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}
