package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizops/internal/domain/billing"
	"bizops/internal/domain/inventory"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

const numberPrefix = "SO"

type Clients interface {
	Exists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
}

// Stock reads and decrements product stock inside a caller-owned transaction.
type Stock interface {
	FindTx(tx *gorm.DB, scope tenant.Scope, id uuid.UUID) (*inventory.Product, error)
	Decrement(tx *gorm.DB, scope tenant.Scope, id uuid.UUID, qty int) error
}

// ItemInput is a product line when ProductID is set, a custom line otherwise.
type ItemInput struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Name      string          `json:"name" validate:"max=160"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateInput struct {
	ClientID uuid.UUID   `json:"client_id" validate:"required"`
	Items    []ItemInput `json:"items" validate:"dive"`
	Notes    string      `json:"notes" validate:"max=2000"`
}

type PaymentInput struct {
	Amount           decimal.Decimal `json:"amount"`
	Method           billing.Method  `json:"payment_method"`
	Reference        string          `json:"transaction_reference"`
	ExpectedRevision *int64          `json:"expected_revision"`
}

type Service struct {
	db       *gorm.DB
	payments *billing.Service
	clients  Clients
	stock    Stock
	log      *zap.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, payments *billing.Service, clients Clients, stock Stock, log *zap.Logger) *Service {
	return &Service{db: db, payments: payments, clients: clients, stock: stock, log: log, now: time.Now}
}

// Quote builds a cart from items against current stock without writing anything.
func (s *Service) Quote(ctx context.Context, scope tenant.Scope, items []ItemInput) (*Cart, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.fillCart(s.db.WithContext(ctx), scope, items)
}

// CreateSalesOrder inserts the order and its items and takes the sold quantities
// out of stock in one transaction. A shortfall on any product aborts all of it.
func (s *Service) CreateSalesOrder(ctx context.Context, scope tenant.Scope, in CreateInput) (*SalesOrder, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if ok, err := s.clients.Exists(ctx, scope, in.ClientID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrClientNotFound
	}

	now := s.now()
	so := &SalesOrder{
		ID:             uuid.New(),
		OrganizationID: scope.OrgID,
		ClientID:       in.ClientID,
		OrderNumber:    billing.NewNumber(numberPrefix, now),
		Notes:          strings.TrimSpace(in.Notes),
		CreatedBy:      scope.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.fillCart(tx, scope, in.Items)
		if err != nil {
			return err
		}
		for _, l := range cart.Lines() {
			if l.ProductID != nil {
				if err := s.stock.Decrement(tx, scope, *l.ProductID, l.Quantity); err != nil {
					if errors.Is(err, inventory.ErrInsufficientStock) {
						return fmt.Errorf("%w: %s", ErrNotEnoughStock, l.Name)
					}
					return err
				}
			}
			so.Items = append(so.Items, Item{
				OrganizationID: scope.OrgID,
				ProductID:      l.ProductID,
				Name:           l.Name,
				Quantity:       l.Quantity,
				UnitPrice:      l.UnitPrice,
				TotalPrice:     l.Total(),
				IsCustomItem:   l.IsCustomItem,
			})
		}
		so.Ledger = billing.NewLedger(cart.Total())
		if err := tx.Create(so).Error; err != nil {
			return fmt.Errorf("insert sales order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sales order created",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("order_number", so.OrderNumber),
		zap.Int("items", len(so.Items)),
		zap.String("total", so.TotalAmount.String()),
	)
	return s.Get(ctx, scope, so.ID)
}

func (s *Service) fillCart(db *gorm.DB, scope tenant.Scope, items []ItemInput) (*Cart, error) {
	cart := &Cart{}
	for _, it := range items {
		if it.ProductID == nil {
			if err := cart.AddCustom(it.Name, it.Quantity, it.UnitPrice); err != nil {
				return nil, err
			}
			continue
		}
		p, err := s.stock.FindTx(db, scope, *it.ProductID)
		if err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, *it.ProductID)
			}
			return nil, err
		}
		if err := cart.AddProductQuantity(*p, it.Quantity); err != nil {
			return nil, err
		}
	}
	if cart.Empty() {
		return nil, ErrEmptyOrder
	}
	return cart, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*SalesOrder, error) {
	var so SalesOrder
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Where("id = ?", id).
		First(&so).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	payments, err := s.payments.ListPayments(ctx, scope, billing.KindSale, so.ID)
	if err != nil {
		return nil, err
	}
	so.Payments = payments
	return &so, nil
}

type ListFilter struct {
	ClientID      *uuid.UUID
	PaymentStatus *billing.PaymentStatus
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) ([]SalesOrder, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(scope.Apply).Preload("Items")
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *f.PaymentStatus)
	}
	var orders []SalesOrder
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) RecordPayment(ctx context.Context, scope tenant.Scope, id uuid.UUID, in PaymentInput) (*billing.Receipt, error) {
	return s.payments.RecordPayment(ctx, scope, billing.PaymentInput{
		Kind:             billing.KindSale,
		DocumentID:       id,
		Amount:           in.Amount,
		Method:           in.Method,
		Reference:        in.Reference,
		ExpectedRevision: in.ExpectedRevision,
	})
}
