package billing

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

	"bizops/internal/pkg/money"
	"bizops/internal/tenant"
)

type PaymentInput struct {
	Kind       DocumentKind
	DocumentID uuid.UUID
	Amount     decimal.Decimal
	Method     Method
	Reference  string
	// ExpectedRevision, when set, must match the document's current revision.
	ExpectedRevision *int64
}

type Receipt struct {
	Payment Payment `json:"payment"`
	Ledger  Ledger  `json:"ledger"`
}

// Service reconciles payments for every billable document kind.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

func (s *Service) RecordPayment(ctx context.Context, scope tenant.Scope, in PaymentInput) (*Receipt, error) {
	if err := validateInput(scope, in); err != nil {
		return nil, err
	}

	var receipt *Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.record(tx, scope, in)
		receipt = r
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("kind", string(in.Kind)),
		zap.String("document_id", in.DocumentID.String()),
		zap.String("amount", in.Amount.String()),
		zap.String("balance", receipt.Ledger.OutstandingBalance.String()),
	)
	return receipt, nil
}

// RecordPaymentTx records a payment inside a transaction owned by the caller.
func (s *Service) RecordPaymentTx(tx *gorm.DB, scope tenant.Scope, in PaymentInput) (*Receipt, error) {
	if err := validateInput(scope, in); err != nil {
		return nil, err
	}
	return s.record(tx, scope, in)
}

func (s *Service) ListPayments(ctx context.Context, scope tenant.Scope, kind DocumentKind, documentID uuid.UUID) ([]Payment, error) {
	var payments []Payment
	err := s.db.WithContext(ctx).
		Scopes(scope.Apply).
		Where("document_kind = ? AND document_id = ?", kind, documentID).
		Order("created_at asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func validateInput(scope tenant.Scope, in PaymentInput) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if _, err := in.Kind.Table(); err != nil {
		return err
	}
	if !in.Amount.IsPositive() || !money.IsCents(in.Amount) {
		return ErrInvalidAmount
	}
	if !in.Method.Valid() {
		return ErrInvalidMethod
	}
	return nil
}

func (s *Service) record(tx *gorm.DB, scope tenant.Scope, in PaymentInput) (*Receipt, error) {
	table, err := in.Kind.Table()
	if err != nil {
		return nil, err
	}

	var doc documentRow
	err = tx.Table(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scope.Apply).
		Where("id = ?", in.DocumentID).
		Take(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if in.ExpectedRevision != nil && *in.ExpectedRevision != doc.Revision {
		return nil, ErrRevisionConflict
	}

	next, err := doc.Ledger.Apply(in.Amount)
	if err != nil {
		return nil, err
	}

	if err := CompareAndSwap(tx, in.Kind, doc.ID, doc.Revision, map[string]any{
		"outstanding_balance": next.OutstandingBalance,
		"payment_status":      next.PaymentStatus,
	}, s.now()); err != nil {
		return nil, err
	}

	payment := Payment{
		OrganizationID: scope.OrgID,
		DocumentKind:   in.Kind,
		DocumentID:     doc.ID,
		Amount:         in.Amount,
		Method:         in.Method,
		Reference:      strings.TrimSpace(in.Reference),
		RecordedBy:     scope.UserID,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	return &Receipt{Payment: payment, Ledger: next}, nil
}

// CompareAndSwap updates fields of a document only if its revision is still revision,
// bumping the revision by one. A lost race returns ErrRevisionConflict.
func CompareAndSwap(tx *gorm.DB, kind DocumentKind, id uuid.UUID, revision int64, fields map[string]any, now time.Time) error {
	table, err := kind.Table()
	if err != nil {
		return err
	}
	updates := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	updates["revision"] = revision + 1
	updates["updated_at"] = now

	res := tx.Table(table).Where("id = ? AND revision = ?", id, revision).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRevisionConflict
	}
	return nil
}
