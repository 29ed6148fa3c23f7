package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type CheckoutResponse struct {
	Status          string       `json:"status"`
	RedirectTo      string       `json:"redirect_to,omitempty"`
	RedirectAfterMs int64        `json:"redirect_after_ms,omitempty"`
	OrderID         string       `json:"order_id,omitempty"`
	Cart            CartSnapshot `json:"cart"`
}

type CartResponse struct {
	Cart  CartSnapshot      `json:"cart"`
	Views map[string]string `json:"views,omitempty"`
}
