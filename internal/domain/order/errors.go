package order

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("order not found")
	ErrServiceNotFound    = errors.New("service not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrAssignmentNotFound = errors.New("worker is not assigned to this order")
	ErrNoServices         = errors.New("an order needs at least one service")
	ErrNoWorkers          = errors.New("an order needs at least one worker assignment")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order status change not allowed")
	ErrInitialPayment     = errors.New("initial payment must be positive with at most two decimals and not exceed the order total")
	ErrMethodRequired     = errors.New("payment method is required with an initial payment")
)
