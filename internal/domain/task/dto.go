package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateInput struct {
	WorkerID    uuid.UUID `json:"worker_id" validate:"required"`
	ProjectID   uuid.UUID `json:"project_id" validate:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"max=1000"`
	LateReason  string    `json:"late_reason" validate:"max=500"`
}

type StatusInput struct {
	Status      Status `json:"status"`
	DelayReason string `json:"delay_reason"`
}

type DeductionInput struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type ListFilter struct {
	WorkerID *uuid.UUID
	Status   *Status
	// From and To are inclusive calendar dates.
	From *time.Time
	To   *time.Time
}

type createRequest struct {
	WorkerID    uuid.UUID `json:"worker_id" binding:"required"`
	ProjectID   uuid.UUID `json:"project_id" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	Description string    `json:"description"`
	LateReason  string    `json:"late_reason"`
}

type statusRequest struct {
	Status      Status `json:"status" binding:"required"`
	DelayReason string `json:"delay_reason"`
}

type deductionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required"`
}

type updateRequest struct {
	Description string `json:"description"`
}
