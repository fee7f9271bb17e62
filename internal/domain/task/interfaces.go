package task

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bizops/internal/tenant"
)

// Workforce resolves workers, projects and the rate a new task is billed at.
type Workforce interface {
	WorkerExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
	ProjectExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
	RateFor(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID) (decimal.Decimal, bool, error)
}
