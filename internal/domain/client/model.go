package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldText  FieldType = "text"
	FieldFile  FieldType = "file"
	FieldImage FieldType = "image"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldFile, FieldImage:
		return true
	}
	return false
}

type Client struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	CustomFields []CustomField `json:"custom_fields" gorm:"foreignKey:ClientID"`

	// TotalBalance is computed on read from orders and sales orders.
	TotalBalance decimal.Decimal `json:"total_balance" gorm:"-"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CustomField holds free text, or a stored file reference for file and image fields.
type CustomField struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	ClientID       uuid.UUID `json:"client_id" gorm:"type:uuid;not null;index"`
	Title          string    `json:"title" gorm:"not null"`
	Value          string    `json:"value"`
	Type           FieldType `json:"type" gorm:"type:varchar(10);not null;default:'text'"`
	CreatedAt      time.Time `json:"created_at"`
}

func (CustomField) TableName() string {
	return "client_custom_fields"
}

func (f *CustomField) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
