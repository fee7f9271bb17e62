package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizops/internal/database"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type Input struct {
	Name          string          `json:"name" validate:"required,max=160"`
	Description   string          `json:"description" validate:"max=1000"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	Category      Category        `json:"category"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0,cents"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	ReorderPoint  int             `json:"reorder_point" validate:"gte=0"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) Create(ctx context.Context, scope tenant.Scope, in Input) (*Product, error) {
	if err := check(scope, &in); err != nil {
		return nil, err
	}
	p := &Product{OrganizationID: scope.OrgID}
	apply(p, in)
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, scope tenant.Scope, id uuid.UUID, in Input) (*Product, error) {
	if err := check(scope, &in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	apply(p, in)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Product, error) {
	return find(s.db.WithContext(ctx), scope, id)
}

// FindTx loads a product inside the caller's transaction.
func (s *Service) FindTx(tx *gorm.DB, scope tenant.Scope, id uuid.UUID) (*Product, error) {
	return find(tx, scope, id)
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, category Category) ([]Product, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(scope.Apply)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var products []Product
	if err := q.Order("name asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// LowStock lists products whose stock is at or below their reorder point.
func (s *Service) LowStock(ctx context.Context, scope tenant.Scope) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Where("stock_quantity <= reorder_point").
		Order("stock_quantity asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes the product whatever its stock. Sales items keep their own copy of name and price.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", id).Delete(&Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock adds delta (which may be negative) to the stock level.
func (s *Service) AdjustStock(ctx context.Context, scope tenant.Scope, id uuid.UUID, delta int) (*Product, error) {
	if delta == 0 {
		return s.Get(ctx, scope, id)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := find(tx, scope, id); err != nil {
			return err
		}
		res := tx.Model(&Product{}).
			Scopes(scope.Apply).
			Where("id = ? AND stock_quantity + ? >= 0", id, delta).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNegativeStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("stock adjusted",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("product_id", id.String()),
		zap.Int("delta", delta),
	)
	return s.Get(ctx, scope, id)
}

// Decrement takes qty units out of stock inside tx. It fails without writing when
// fewer than qty units are left.
func (s *Service) Decrement(tx *gorm.DB, scope tenant.Scope, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	res := tx.Model(&Product{}).
		Scopes(scope.Apply).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := find(tx, scope, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (s *Service) Count(ctx context.Context, scope tenant.Scope) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Product{}).Scopes(scope.Apply).Count(&n).Error
	return n, err
}

func find(db *gorm.DB, scope tenant.Scope, id uuid.UUID) (*Product, error) {
	var p Product
	if err := db.Scopes(scope.Apply).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func check(scope tenant.Scope, in *Input) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if errs := validator.Validate(in); errs != nil {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if !in.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

func apply(p *Product, in Input) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	p.Category = in.Category
	p.UnitPrice = in.UnitPrice
	p.StockQuantity = in.StockQuantity
	p.ReorderPoint = in.ReorderPoint
}
