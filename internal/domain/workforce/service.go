package workforce

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
	"bizops/internal/pkg/money"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type WorkerInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
	Whatsapp string `json:"whatsapp" validate:"max=40"`
	ImageURL string `json:"image_url" validate:"max=500"`
}

type ProjectInput struct {
	Name      string          `json:"name" validate:"required,max=120"`
	BasePrice decimal.Decimal `json:"base_price" validate:"gte=0,cents"`
}

// CascadeFunc removes rows owned by a worker that live outside this package.
type CascadeFunc func(tx *gorm.DB, scope tenant.Scope, workerID uuid.UUID) error

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	cascades []CascadeFunc
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// OnWorkerDelete registers fn to run inside the worker delete transaction.
func (s *Service) OnWorkerDelete(fn CascadeFunc) {
	s.cascades = append(s.cascades, fn)
}

func (s *Service) CreateWorker(ctx context.Context, scope tenant.Scope, in WorkerInput) (*Worker, error) {
	if err := checkInput(scope, in); err != nil {
		return nil, err
	}
	w := &Worker{OrganizationID: scope.OrgID}
	applyWorker(w, in)
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) UpdateWorker(ctx context.Context, scope tenant.Scope, id uuid.UUID, in WorkerInput) (*Worker, error) {
	if err := checkInput(scope, in); err != nil {
		return nil, err
	}
	w, err := s.findWorker(s.db.WithContext(ctx), scope, id)
	if err != nil {
		return nil, err
	}
	applyWorker(w, in)
	if err := s.db.WithContext(ctx).Save(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) GetWorker(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Worker, error) {
	var w Worker
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("Rates", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Rates.Project").
		Where("id = ?", id).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *Service) ListWorkers(ctx context.Context, scope tenant.Scope) ([]Worker, error) {
	var workers []Worker
	if err := s.db.WithContext(ctx).Scopes(scope.Apply).Order("name asc").Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (s *Service) CountWorkers(ctx context.Context, scope tenant.Scope) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Worker{}).Scopes(scope.Apply).Count(&n).Error
	return n, err
}

// DeleteWorker removes the worker, its rates and whatever the registered cascades own.
func (s *Service) DeleteWorker(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findWorker(tx, scope, id); err != nil {
			return err
		}
		for _, fn := range s.cascades {
			if err := fn(tx, scope, id); err != nil {
				return err
			}
		}
		if err := tx.Scopes(scope.Apply).Where("worker_id = ?", id).Delete(&WorkerProjectRate{}).Error; err != nil {
			return err
		}
		if err := tx.Scopes(scope.Apply).Where("id = ?", id).Delete(&Worker{}).Error; err != nil {
			return err
		}
		s.log.Info("worker deleted", zap.String("org_id", scope.OrgID.String()), zap.String("worker_id", id.String()))
		return nil
	})
}

func (s *Service) CreateProject(ctx context.Context, scope tenant.Scope, in ProjectInput) (*Project, error) {
	if err := checkInput(scope, in); err != nil {
		return nil, err
	}
	p := &Project{OrganizationID: scope.OrgID, Name: strings.TrimSpace(in.Name), BasePrice: in.BasePrice}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject changes the catalog entry. Existing rates and tasks keep their amounts.
func (s *Service) UpdateProject(ctx context.Context, scope tenant.Scope, id uuid.UUID, in ProjectInput) (*Project, error) {
	if err := checkInput(scope, in); err != nil {
		return nil, err
	}
	p, err := s.findProject(s.db.WithContext(ctx), scope, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.BasePrice = in.BasePrice
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProjects(ctx context.Context, scope tenant.Scope) ([]Project, error) {
	var projects []Project
	if err := s.db.WithContext(ctx).Scopes(scope.Apply).Order("name asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) DeleteProject(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findProject(tx, scope, id); err != nil {
			return err
		}
		if err := tx.Scopes(scope.Apply).Where("project_id = ?", id).Delete(&WorkerProjectRate{}).Error; err != nil {
			return err
		}
		return tx.Scopes(scope.Apply).Where("id = ?", id).Delete(&Project{}).Error
	})
}

// AssignProject links a project to a worker. A nil rate takes the project's base price.
func (s *Service) AssignProject(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID, rate *decimal.Decimal) (*WorkerProjectRate, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if rate != nil && (rate.IsNegative() || !money.IsCents(*rate)) {
		return nil, ErrNegativeRate
	}

	var out *WorkerProjectRate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.findWorker(tx, scope, workerID); err != nil {
			return err
		}
		p, err := s.findProject(tx, scope, projectID)
		if err != nil {
			return err
		}
		r := &WorkerProjectRate{OrganizationID: scope.OrgID, WorkerID: workerID, ProjectID: projectID, Rate: p.BasePrice}
		if rate != nil {
			r.Rate = *rate
		}
		if err := tx.Create(r).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyAssigned
			}
			return err
		}
		r.Project = p
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRate changes the rate for future tasks only.
func (s *Service) UpdateRate(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID, rate decimal.Decimal) (*WorkerProjectRate, error) {
	if rate.IsNegative() || !money.IsCents(rate) {
		return nil, ErrNegativeRate
	}
	r, err := s.findRate(ctx, scope, workerID, projectID)
	if err != nil {
		return nil, err
	}
	r.Rate = rate
	if err := s.db.WithContext(ctx).Model(r).Update("rate", rate).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) UnassignProject(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Where("worker_id = ? AND project_id = ?", workerID, projectID).
		Delete(&WorkerProjectRate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRateNotFound
	}
	return nil
}

func (s *Service) WorkerExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	return s.exists(ctx, scope, &Worker{}, id)
}

func (s *Service) ProjectExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	return s.exists(ctx, scope, &Project{}, id)
}

// RateFor returns the current rate for (worker, project) and whether one is assigned.
func (s *Service) RateFor(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID) (decimal.Decimal, bool, error) {
	r, err := s.findRate(ctx, scope, workerID, projectID)
	if err != nil {
		if errors.Is(err, ErrRateNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return r.Rate, true, nil
}

func (s *Service) exists(ctx context.Context, scope tenant.Scope, model any, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Scopes(scope.Apply).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Service) findWorker(db *gorm.DB, scope tenant.Scope, id uuid.UUID) (*Worker, error) {
	var w Worker
	if err := db.Scopes(scope.Apply).Where("id = ?", id).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (s *Service) findProject(db *gorm.DB, scope tenant.Scope, id uuid.UUID) (*Project, error) {
	var p Project
	if err := db.Scopes(scope.Apply).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) findRate(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID) (*WorkerProjectRate, error) {
	var r WorkerProjectRate
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Where("worker_id = ? AND project_id = ?", workerID, projectID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}
	return &r, nil
}

func applyWorker(w *Worker, in WorkerInput) {
	w.Name = strings.TrimSpace(in.Name)
	w.Phone = strings.TrimSpace(in.Phone)
	w.Email = strings.TrimSpace(in.Email)
	w.Whatsapp = strings.TrimSpace(in.Whatsapp)
	w.ImageURL = strings.TrimSpace(in.ImageURL)
}

func checkInput(scope tenant.Scope, in any) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if errs := validator.Validate(in); errs != nil {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	return nil
}
