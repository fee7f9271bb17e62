package order

import (
	"context"

	"github.com/google/uuid"

	"bizops/internal/tenant"
)

type Clients interface {
	Exists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
}

type Workforce interface {
	WorkerExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
	ProjectExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
}
