package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryRawMaterial  Category = "raw_material"
	CategoryFinishedGood Category = "finished_good"
	CategoryPackaging    Category = "packaging"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryRawMaterial, CategoryFinishedGood, CategoryPackaging, CategoryOther:
		return true
	}
	return false
}

type Product struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_products_org_sku"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	SKU            string          `json:"sku" gorm:"column:sku;not null;uniqueIndex:idx_products_org_sku"`
	Category       Category        `json:"category" gorm:"type:varchar(20);not null;default:'other'"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,2);not null;default:0"`
	StockQuantity  int             `json:"stock_quantity" gorm:"not null;default:0"`
	ReorderPoint   int             `json:"reorder_point" gorm:"not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the product is at or below its reorder point.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.ReorderPoint
}
