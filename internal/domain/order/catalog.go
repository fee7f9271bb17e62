package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type CatalogInput struct {
	Name        string          `json:"name" validate:"required,max=160"`
	Description string          `json:"description" validate:"max=1000"`
	Cost        decimal.Decimal `json:"cost" validate:"gte=0,cents"`
}

func (s *Service) CreateCatalogService(ctx context.Context, scope tenant.Scope, in CatalogInput) (*CatalogService, error) {
	if err := checkCatalog(scope, in); err != nil {
		return nil, err
	}
	cs := &CatalogService{
		OrganizationID: scope.OrgID,
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Cost:           in.Cost,
	}
	if err := s.db.WithContext(ctx).Create(cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

// UpdateCatalogService changes the catalog only. Lines of existing orders keep their copied cost.
func (s *Service) UpdateCatalogService(ctx context.Context, scope tenant.Scope, id uuid.UUID, in CatalogInput) (*CatalogService, error) {
	if err := checkCatalog(scope, in); err != nil {
		return nil, err
	}
	var cs CatalogService
	if err := s.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", id).First(&cs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	cs.Name = strings.TrimSpace(in.Name)
	cs.Description = strings.TrimSpace(in.Description)
	cs.Cost = in.Cost
	if err := s.db.WithContext(ctx).Save(&cs).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}

func (s *Service) ListCatalogServices(ctx context.Context, scope tenant.Scope) ([]CatalogService, error) {
	var out []CatalogService
	if err := s.db.WithContext(ctx).Scopes(scope.Apply).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteCatalogService(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", id).Delete(&CatalogService{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// catalogByID loads the requested catalog entries, failing if any is missing.
func catalogByID(db *gorm.DB, scope tenant.Scope, ids []uuid.UUID) (map[uuid.UUID]CatalogService, error) {
	var found []CatalogService
	if err := db.Scopes(scope.Apply).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]CatalogService, len(found))
	for _, cs := range found {
		out[cs.ID] = cs
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
		}
	}
	return out, nil
}

func checkCatalog(scope tenant.Scope, in CatalogInput) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if errs := validator.Validate(in); errs != nil {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	return nil
}
