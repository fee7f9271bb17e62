package upload

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bizops/internal/tenant"
)

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Upload, error)
	Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error
	List(ctx context.Context, scope tenant.Scope, clientID *uuid.UUID) ([]*Upload, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) GetByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Upload, error) {
	var u Upload
	err := r.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(scope.Apply).Where("id = ?", id).Delete(&Upload{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, scope tenant.Scope, clientID *uuid.UUID) ([]*Upload, error) {
	q := r.db.WithContext(ctx).Scopes(scope.Apply)
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	var uploads []*Upload
	err := q.Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}
