package billing

import "errors"

var (
	ErrInvalidAmount    = errors.New("payment amount must be positive with at most two decimals")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrOverpayment      = errors.New("payment exceeds outstanding balance")
	ErrDocumentNotFound = errors.New("billable document not found")
	ErrRevisionConflict = errors.New("document was modified concurrently")
	ErrUnknownKind      = errors.New("unknown document kind")
)
