package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentKind names a billable document lineage. Each kind lives in its own table.
type DocumentKind string

const (
	KindOrder DocumentKind = "order"
	KindSale  DocumentKind = "sales_order"
)

var kindTables = map[DocumentKind]string{
	KindOrder: "orders",
	KindSale:  "sales_orders",
}

func (k DocumentKind) Table() (string, error) {
	t, ok := kindTables[k]
	if !ok {
		return "", ErrUnknownKind
	}
	return t, nil
}

type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "unpaid"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusPaid          PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid:
		return true
	}
	return false
}

type Method string

const (
	MethodCash         Method = "cash"
	MethodMobileMoney  Method = "mobile_money"
	MethodBankTransfer Method = "bank_transfer"
	MethodOther        Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodMobileMoney, MethodBankTransfer, MethodOther:
		return true
	}
	return false
}

// Ledger is the money state shared by every billable document. Embed it with gorm:"embedded".
type Ledger struct {
	TotalAmount        decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null;default:0"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance" gorm:"type:decimal(14,2);not null;default:0"`
	PaymentStatus      PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'unpaid'"`
	Revision           int64           `json:"revision" gorm:"not null;default:1"`
}

// Payment is append-only.
type Payment struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	DocumentKind   DocumentKind    `json:"document_kind" gorm:"type:varchar(20);not null;index:idx_payments_document"`
	DocumentID     uuid.UUID       `json:"document_id" gorm:"type:uuid;not null;index:idx_payments_document"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Method         Method          `json:"payment_method" gorm:"type:varchar(20);not null"`
	Reference      string          `json:"transaction_reference"`
	RecordedBy     uuid.UUID       `json:"recorded_by" gorm:"type:uuid"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// documentRow is the slice of an orders or sales_orders row the payment routine touches.
type documentRow struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	OrderNumber    string
	Ledger         `gorm:"embedded"`
}
