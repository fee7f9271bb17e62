package sales

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("sales order not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrEmptyOrder        = errors.New("a sales order needs at least one item")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrNotEnoughStock    = errors.New("not enough stock available")
	ErrInvalidCustomItem = errors.New("custom items need a name, a positive quantity and a positive price")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrLineNotFound      = errors.New("cart line not found")
)
