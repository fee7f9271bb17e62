package inventory

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateSKU      = errors.New("sku already used by another product")
	ErrInvalidCategory   = errors.New("invalid product category")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("stock cannot go below zero")
)
