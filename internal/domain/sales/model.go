package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizops/internal/domain/billing"
)

type SalesOrder struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_orders_org_number"`
	ClientID       uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`
	OrderNumber    string    `json:"order_number" gorm:"not null;uniqueIndex:idx_sales_orders_org_number"`
	Notes          string    `json:"notes"`
	CreatedBy      uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	billing.Ledger `gorm:"embedded"`

	Items    []Item            `json:"items" gorm:"foreignKey:SalesOrderID"`
	Payments []billing.Payment `json:"payments,omitempty" gorm:"-"`
}

func (SalesOrder) TableName() string {
	return "sales_orders"
}

func (o *SalesOrder) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Item is a sold line. Product lines copy the product's name and price at sale time.
type Item struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	SalesOrderID   uuid.UUID       `json:"sales_order_id" gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID      `json:"product_id" gorm:"type:uuid"`
	Name           string          `json:"name" gorm:"not null"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2);not null"`
	TotalPrice     decimal.Decimal `json:"total_price" gorm:"type:decimal(14,2);not null"`
	IsCustomItem   bool            `json:"is_custom_item" gorm:"not null;default:false"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Item) TableName() string {
	return "sales_order_items"
}

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
