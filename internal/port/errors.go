package port

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrOrderNotFound   = errors.New("order not found")
)
