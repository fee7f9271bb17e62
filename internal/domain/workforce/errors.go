package workforce

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrWorkerNotFound  = errors.New("worker not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrRateNotFound    = errors.New("project is not assigned to worker")
	ErrAlreadyAssigned = errors.New("project already assigned to worker")
	ErrNegativeRate    = errors.New("rate must not be negative and needs at most two decimals")
)
