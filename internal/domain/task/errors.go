package task

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("task not found")
	ErrDeductionNotFound   = errors.New("deduction not found")
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrUnknownStatus       = errors.New("unknown task status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrLateReasonRequired  = errors.New("late reason is required for tasks dated before today")
	ErrDelayReasonRequired = errors.New("delay reason is required")
	ErrInvalidDeduction    = errors.New("deduction amount must be positive with at most two decimals")
)
