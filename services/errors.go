package services

import "errors"

const (
	ErrMsgCartEmpty       = "Cart is empty"
	ErrMsgProductNotFound = "Product not found"
)

var ErrUnknownAction = errors.New("unknown cart action")
