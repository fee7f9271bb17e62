package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizops/internal/domain/billing"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusPending, StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanMoveTo(next Status) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// WorkerStatus tracks one worker's part of an order.
type WorkerStatus string

const (
	WorkerPending    WorkerStatus = "pending"
	WorkerInProgress WorkerStatus = "in_progress"
	WorkerCompleted  WorkerStatus = "completed"
)

func (s WorkerStatus) Valid() bool {
	switch s {
	case WorkerPending, WorkerInProgress, WorkerCompleted:
		return true
	}
	return false
}

// CatalogService is a priced service an order line can be made of.
type CatalogService struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	Cost           decimal.Decimal `json:"cost" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (CatalogService) TableName() string {
	return "services"
}

func (cs *CatalogService) BeforeCreate(_ *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_org_number"`
	ClientID       uuid.UUID  `json:"client_id" gorm:"type:uuid;not null;index"`
	OrderNumber    string     `json:"order_number" gorm:"not null;uniqueIndex:idx_orders_org_number"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date" gorm:"type:date"`
	Status         Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedBy      uuid.UUID  `json:"created_by" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	billing.Ledger `gorm:"embedded"`

	Services     []OrderService     `json:"services" gorm:"foreignKey:OrderID"`
	Workers      []OrderWorker      `json:"workers" gorm:"foreignKey:OrderID"`
	CustomFields []OrderCustomField `json:"custom_fields" gorm:"foreignKey:OrderID"`
	Payments     []billing.Payment  `json:"payments,omitempty" gorm:"-"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderService is one priced line. Name and cost are copied from the catalog when the order is made.
type OrderService struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ServiceID      uuid.UUID       `json:"service_id" gorm:"type:uuid;not null"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost" gorm:"type:decimal(14,2);not null"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	LineTotal      decimal.Decimal `json:"line_total" gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (l *OrderService) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type OrderWorker struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID    `json:"organization_id" gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID    `json:"order_id" gorm:"type:uuid;not null;index"`
	WorkerID       uuid.UUID    `json:"worker_id" gorm:"type:uuid;not null;index"`
	ProjectID      uuid.UUID    `json:"project_id" gorm:"type:uuid;not null"`
	Status         WorkerStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (w *OrderWorker) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type OrderCustomField struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	OrderID        uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	Title          string    `json:"title" gorm:"not null"`
	Value          string    `json:"value"`
	Type           string    `json:"type" gorm:"type:varchar(10);not null;default:'text'"`
	CreatedAt      time.Time `json:"created_at"`
}

func (f *OrderCustomField) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
