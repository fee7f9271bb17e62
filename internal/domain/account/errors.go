package account

import (
	"errors"
	"fmt"

	"bizops/internal/tenant"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCurrency    = errors.New("currency is not supported")
	ErrInvalidTimezone    = errors.New("unknown timezone")

	// Both wrap tenant.ErrNoTenant; the session middleware answers them with 401.
	ErrUserNotFound = fmt.Errorf("%w: user not found", tenant.ErrNoTenant)
	ErrOrgNotFound  = fmt.Errorf("%w: organization not found", tenant.ErrNoTenant)
)
