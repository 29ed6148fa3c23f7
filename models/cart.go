package models

// LineItem is one product entry in a cart. The JSON shape is the persisted
// format: {id, title, price, image, quantity}.
type LineItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

func (i LineItem) Subtotal() int {
	return i.Price * i.Quantity
}

type CartSnapshot struct {
	Items     []LineItem `json:"items"`
	Total     int        `json:"total"`
	ItemCount int        `json:"item_count"`
	Empty     bool       `json:"empty"`
}
