package client

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("client not found")
	ErrFieldNotFound    = errors.New("custom field not found")
	ErrInvalidFieldType = errors.New("custom field type must be text, file or image")
	ErrHasDocuments     = errors.New("client has orders or sales orders and cannot be deleted")
)
