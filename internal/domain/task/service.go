package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bizops/internal/pkg/money"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

type Service struct {
	db        *gorm.DB
	workforce Workforce
	log       *zap.Logger
	now       func() time.Time
}

func NewService(db *gorm.DB, workforce Workforce, log *zap.Logger) *Service {
	return &Service{db: db, workforce: workforce, log: log, now: time.Now}
}

// Create records a pending task billed at the worker's current project rate.
// A task dated before today needs a late reason.
func (s *Service) Create(ctx context.Context, scope tenant.Scope, in CreateInput) (*Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	date := tenant.Civil(in.Date)
	// Reasons are stored as written; only blank ones are refused.
	lateReason := in.LateReason
	if date.Before(scope.Today(s.now())) && strings.TrimSpace(lateReason) == "" {
		return nil, ErrLateReasonRequired
	}

	if ok, err := s.workforce.WorkerExists(ctx, scope, in.WorkerID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrWorkerNotFound
	}
	if ok, err := s.workforce.ProjectExists(ctx, scope, in.ProjectID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrProjectNotFound
	}

	// Missing rate bills at zero; the amount is never recomputed.
	amount, _, err := s.workforce.RateFor(ctx, scope, in.WorkerID, in.ProjectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := &Task{
		OrganizationID:  scope.OrgID,
		WorkerID:        in.WorkerID,
		ProjectID:       in.ProjectID,
		Date:            date,
		Description:     strings.TrimSpace(in.Description),
		Amount:          amount,
		Status:          StatusPending,
		StatusChangedAt: &now,
		Deductions:      []Deduction{},
	}
	if strings.TrimSpace(lateReason) != "" {
		t.LateReason = &lateReason
	}

	if err := s.db.WithContext(ctx).Omit("Deductions").Create(t).Error; err != nil {
		return nil, err
	}
	s.log.Info("task created",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("task_id", t.ID.String()),
		zap.String("amount", amount.String()),
		zap.Bool("late", t.LateReason != nil),
	)
	return t, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Task, error) {
	var t Task
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("Deductions", orderByCreated).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) ([]Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(scope.Apply).Preload("Deductions", orderByCreated)
	if f.WorkerID != nil {
		q = q.Where("worker_id = ?", *f.WorkerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("date >= ?", tenant.Civil(*f.From))
	}
	if f.To != nil {
		q = q.Where("date < ?", tenant.Civil(*f.To).AddDate(0, 0, 1))
	}

	var tasks []Task
	if err := q.Order("date desc").Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ChangeStatus moves a task along a declared edge and applies the edge's side effects.
func (s *Service) ChangeStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, in StatusInput) (*Task, error) {
	delayReason := in.DelayReason
	if in.Status == StatusDelayed && strings.TrimSpace(delayReason) == "" {
		return nil, ErrDelayReasonRequired
	}

	var out *Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Task
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(scope.Apply).Where("id = ?", id).First(&t).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := Transition(t.Status, in.Status); err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{
			"status":            in.Status,
			"status_changed_at": now,
		}
		switch in.Status {
		case StatusCompleted:
			updates["completed_at"] = now
		case StatusDelayed:
			updates["delay_reason"] = delayReason
		}

		res := tx.Model(&Task{}).Where("id = ? AND status = ?", t.ID, t.Status).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}

		if err := tx.Preload("Deductions", orderByCreated).Where("id = ?", t.ID).First(&t).Error; err != nil {
			return err
		}
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UpdateDescription(ctx context.Context, scope tenant.Scope, id uuid.UUID, description string) (*Task, error) {
	res := s.db.WithContext(ctx).Model(&Task{}).Scopes(scope.Apply).Where("id = ?", id).
		Update("description", strings.TrimSpace(description))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, scope, id)
}

func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scope.Apply).Where("task_id = ?", id).Delete(&Deduction{}).Error; err != nil {
			return err
		}
		res := tx.Scopes(scope.Apply).Where("id = ?", id).Delete(&Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteForWorker removes every task of a worker. It runs inside the caller's transaction.
func (s *Service) DeleteForWorker(tx *gorm.DB, scope tenant.Scope, workerID uuid.UUID) error {
	sub := tx.Model(&Task{}).Select("id").Where("organization_id = ? AND worker_id = ?", scope.OrgID, workerID)
	if err := tx.Scopes(scope.Apply).Where("task_id IN (?)", sub).Delete(&Deduction{}).Error; err != nil {
		return err
	}
	return tx.Scopes(scope.Apply).Where("worker_id = ?", workerID).Delete(&Task{}).Error
}

func (s *Service) AddDeduction(ctx context.Context, scope tenant.Scope, taskID uuid.UUID, in DeductionInput) (*Deduction, error) {
	if !in.Amount.IsPositive() || !money.IsCents(in.Amount) {
		return nil, ErrInvalidDeduction
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if _, err := s.Get(ctx, scope, taskID); err != nil {
		return nil, err
	}

	d := &Deduction{OrganizationID: scope.OrgID, TaskID: taskID, Amount: in.Amount, Reason: reason}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// RemoveDeduction deletes one deduction. The task's own amount never changes.
func (s *Service) RemoveDeduction(ctx context.Context, scope tenant.Scope, taskID, deductionID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Where("id = ? AND task_id = ?", deductionID, taskID).
		Delete(&Deduction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeductionNotFound
	}
	return nil
}

func (s *Service) ListDeductions(ctx context.Context, scope tenant.Scope, filter ListFilter) ([]Deduction, error) {
	tasks, err := s.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	var out []Deduction
	for _, t := range tasks {
		out = append(out, t.Deductions...)
	}
	return out, nil
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}
