package order

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
	"gorm.io/gorm/clause"

	"bizops/internal/domain/billing"
	"bizops/internal/pkg/money"
	"bizops/internal/pkg/validator"
	"bizops/internal/tenant"
)

const numberPrefix = "ORD"

type LineInput struct {
	ServiceID uuid.UUID `json:"service_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type AssignmentInput struct {
	WorkerID  uuid.UUID `json:"worker_id" validate:"required"`
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
}

type FieldInput struct {
	Title string `json:"title" validate:"required,max=120"`
	Value string `json:"value" validate:"max=2000"`
	Type  string `json:"type" validate:"omitempty,oneof=text file image"`
}

type CreateInput struct {
	ClientID       uuid.UUID         `json:"client_id" validate:"required"`
	Services       []LineInput       `json:"services" validate:"dive"`
	Workers        []AssignmentInput `json:"workers" validate:"dive"`
	Description    string            `json:"description" validate:"max=2000"`
	DueDate        *time.Time        `json:"due_date"`
	CustomFields   []FieldInput      `json:"custom_fields" validate:"dive"`
	InitialPayment *decimal.Decimal  `json:"initial_payment"`
	PaymentMethod  billing.Method    `json:"payment_method"`
}

type StatusInput struct {
	Status           Status `json:"status"`
	ExpectedRevision *int64 `json:"expected_revision"`
}

type PaymentInput struct {
	Amount           decimal.Decimal `json:"amount"`
	Method           billing.Method  `json:"payment_method"`
	Reference        string          `json:"transaction_reference"`
	ExpectedRevision *int64          `json:"expected_revision"`
}

type ListFilter struct {
	ClientID *uuid.UUID
	Status   *Status
}

type Service struct {
	db        *gorm.DB
	payments  *billing.Service
	clients   Clients
	workforce Workforce
	log       *zap.Logger
	now       func() time.Time
}

func NewService(db *gorm.DB, payments *billing.Service, clients Clients, workforce Workforce, log *zap.Logger) *Service {
	return &Service{db: db, payments: payments, clients: clients, workforce: workforce, log: log, now: time.Now}
}

// CreateOrder prices the lines from the catalog and writes the order, its lines,
// assignments, custom fields and optional initial payment in one transaction.
func (s *Service) CreateOrder(ctx context.Context, scope tenant.Scope, in CreateInput) (*Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if errs := validator.Validate(in); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, validator.Summary(errs))
	}
	if len(in.Services) == 0 {
		return nil, ErrNoServices
	}
	if len(in.Workers) == 0 {
		return nil, ErrNoWorkers
	}
	if err := s.checkParties(ctx, scope, in); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(in.Services))
	for i, l := range in.Services {
		ids[i] = l.ServiceID
	}
	catalog, err := catalogByID(s.db.WithContext(ctx), scope, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:             uuid.New(),
		OrganizationID: scope.OrgID,
		ClientID:       in.ClientID,
		OrderNumber:    billing.NewNumber(numberPrefix, now),
		Description:    strings.TrimSpace(in.Description),
		Status:         StatusPending,
		CreatedBy:      scope.UserID,
	}
	if in.DueDate != nil {
		due := tenant.Civil(*in.DueDate)
		o.DueDate = &due
	}

	total := decimal.Zero
	for _, l := range in.Services {
		cs := catalog[l.ServiceID]
		lineTotal := cs.Cost.Mul(decimal.NewFromInt(int64(l.Quantity)))
		total = total.Add(lineTotal)
		o.Services = append(o.Services, OrderService{
			OrganizationID: scope.OrgID,
			ServiceID:      cs.ID,
			Name:           cs.Name,
			Cost:           cs.Cost,
			Quantity:       l.Quantity,
			LineTotal:      lineTotal,
		})
	}
	o.Ledger = billing.NewLedger(total)

	for _, w := range in.Workers {
		o.Workers = append(o.Workers, OrderWorker{
			OrganizationID: scope.OrgID,
			WorkerID:       w.WorkerID,
			ProjectID:      w.ProjectID,
			Status:         WorkerPending,
		})
	}
	for _, f := range in.CustomFields {
		typ := f.Type
		if typ == "" {
			typ = "text"
		}
		o.CustomFields = append(o.CustomFields, OrderCustomField{
			OrganizationID: scope.OrgID,
			Title:          strings.TrimSpace(f.Title),
			Value:          f.Value,
			Type:           typ,
		})
	}

	if in.InitialPayment != nil {
		if err := checkInitialPayment(*in.InitialPayment, in.PaymentMethod, total); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if in.InitialPayment == nil {
			return nil
		}
		_, err := s.payments.RecordPaymentTx(tx, scope, billing.PaymentInput{
			Kind:       billing.KindOrder,
			DocumentID: o.ID,
			Amount:     *in.InitialPayment,
			Method:     in.PaymentMethod,
			Reference:  "Initial payment for order " + o.OrderNumber,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", total.String()),
		zap.Bool("initial_payment", in.InitialPayment != nil),
	)
	return s.Get(ctx, scope, o.ID)
}

func checkInitialPayment(amount decimal.Decimal, method billing.Method, total decimal.Decimal) error {
	if !amount.IsPositive() || !money.IsCents(amount) || amount.GreaterThan(total) {
		return ErrInitialPayment
	}
	if method == "" {
		return ErrMethodRequired
	}
	if !method.Valid() {
		return billing.ErrInvalidMethod
	}
	return nil
}

func (s *Service) checkParties(ctx context.Context, scope tenant.Scope, in CreateInput) error {
	ok, err := s.clients.Exists(ctx, scope, in.ClientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClientNotFound
	}
	for _, w := range in.Workers {
		if ok, err := s.workforce.WorkerExists(ctx, scope, w.WorkerID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s", ErrWorkerNotFound, w.WorkerID)
		}
		if ok, err := s.workforce.ProjectExists(ctx, scope, w.ProjectID); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, w.ProjectID)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Order, error) {
	var o Order
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("Services", orderByCreated).
		Preload("Workers", orderByCreated).
		Preload("CustomFields", orderByCreated).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	payments, err := s.payments.ListPayments(ctx, scope, billing.KindOrder, o.ID)
	if err != nil {
		return nil, err
	}
	o.Payments = payments
	return &o, nil
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) ([]Order, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Scopes(scope.Apply).Preload("Services", orderByCreated)
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var orders []Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ChangeStatus moves the order along an allowed edge. Completed and cancelled orders are final.
func (s *Service) ChangeStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, in StatusInput) (*Order, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(scope.Apply).Where("id = ?", id).First(&o).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if in.ExpectedRevision != nil && *in.ExpectedRevision != o.Revision {
			return billing.ErrRevisionConflict
		}
		if !o.Status.CanMoveTo(in.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, in.Status)
		}
		return billing.CompareAndSwap(tx, billing.KindOrder, o.ID, o.Revision, map[string]any{"status": in.Status}, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order status changed",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("order_id", id.String()),
		zap.String("status", string(in.Status)),
	)
	return s.Get(ctx, scope, id)
}

func (s *Service) UpdateWorkerStatus(ctx context.Context, scope tenant.Scope, orderID, workerID uuid.UUID, status WorkerStatus) (*OrderWorker, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&OrderWorker{}).
		Scopes(scope.Apply).
		Where("order_id = ? AND worker_id = ?", orderID, workerID).
		Updates(map[string]any{"status": status, "updated_at": s.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAssignmentNotFound
	}
	var ow OrderWorker
	if err := db.Scopes(scope.Apply).Where("order_id = ? AND worker_id = ?", orderID, workerID).First(&ow).Error; err != nil {
		return nil, err
	}
	return &ow, nil
}

// RecordPayment applies a payment to the order through the shared billing routine.
func (s *Service) RecordPayment(ctx context.Context, scope tenant.Scope, orderID uuid.UUID, in PaymentInput) (*billing.Receipt, error) {
	return s.payments.RecordPayment(ctx, scope, billing.PaymentInput{
		Kind:             billing.KindOrder,
		DocumentID:       orderID,
		Amount:           in.Amount,
		Method:           in.Method,
		Reference:        in.Reference,
		ExpectedRevision: in.ExpectedRevision,
	})
}

func (s *Service) Count(ctx context.Context, scope tenant.Scope) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Order{}).Scopes(scope.Apply).Count(&n).Error
	return n, err
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc")
}
