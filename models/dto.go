package models

type AddItemRequest struct {
	ProductID string `json:"product_id" form:"product_id" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" form:"quantity" binding:"required"`
}
