package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"bizops/internal/tenant"
)

// orderDoc and saleDoc stand in for the real document tables.
type orderDoc struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null"`
	OrderNumber    string
	Ledger         `gorm:"embedded"`
	UpdatedAt      time.Time
}

func (orderDoc) TableName() string { return "orders" }

type saleDoc orderDoc

func (saleDoc) TableName() string { return "sales_orders" }

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:billing_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&orderDoc{}, &saleDoc{}, &Payment{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(db, zap.NewNop()), db
}

func seedOrder(t *testing.T, db *gorm.DB, scope tenant.Scope, total string) uuid.UUID {
	t.Helper()
	doc := orderDoc{ID: uuid.New(), OrganizationID: scope.OrgID, OrderNumber: "ORD-1", Ledger: NewLedger(dec(total))}
	require.NoError(t, db.Create(&doc).Error)
	return doc.ID
}

func loadLedger(t *testing.T, db *gorm.DB, id uuid.UUID) Ledger {
	t.Helper()
	var doc orderDoc
	require.NoError(t, db.First(&doc, "id = ?", id).Error)
	return doc.Ledger
}

func testScope() tenant.Scope {
	return tenant.New(uuid.New(), uuid.New(), "GHS", "UTC")
}

func TestRecordPaymentUpdatesBalanceAndStatus(t *testing.T) {
	svc, db := setupTestService(t)
	scope := testScope()
	id := seedOrder(t, db, scope, "200")

	rec, err := svc.RecordPayment(context.Background(), scope, PaymentInput{
		Kind: KindOrder, DocumentID: id, Amount: dec("50"), Method: MethodCash, Reference: " walk-in ",
	})
	require.NoError(t, err)
	assert.True(t, rec.Ledger.OutstandingBalance.Equal(dec("150")))
	assert.Equal(t, StatusPartiallyPaid, rec.Ledger.PaymentStatus)
	assert.Equal(t, "walk-in", rec.Payment.Reference)
	assert.Equal(t, scope.UserID, rec.Payment.RecordedBy)

	stored := loadLedger(t, db, id)
	assert.True(t, stored.OutstandingBalance.Equal(dec("150")))
	assert.Equal(t, StatusPartiallyPaid, stored.PaymentStatus)
	assert.Equal(t, int64(2), stored.Revision)

	_, err = svc.RecordPayment(context.Background(), scope, PaymentInput{
		Kind: KindOrder, DocumentID: id, Amount: dec("150"), Method: MethodBankTransfer,
	})
	require.NoError(t, err)
	stored = loadLedger(t, db, id)
	assert.True(t, stored.OutstandingBalance.IsZero())
	assert.Equal(t, StatusPaid, stored.PaymentStatus)

	payments, err := svc.ListPayments(context.Background(), scope, KindOrder, id)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	svc, db := setupTestService(t)
	scope := testScope()
	id := seedOrder(t, db, scope, "100")

	_, err := svc.RecordPayment(context.Background(), scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("50"), Method: MethodCash})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("60"), Method: MethodCash})
	assert.ErrorIs(t, err, ErrOverpayment)

	stored := loadLedger(t, db, id)
	assert.True(t, stored.OutstandingBalance.Equal(dec("50")), "balance must be untouched")

	var count int64
	require.NoError(t, db.Model(&Payment{}).Where("document_id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count, "no payment row for a rejected payment")
}

func TestRecordPaymentValidatesInput(t *testing.T) {
	svc, db := setupTestService(t)
	scope := testScope()
	id := seedOrder(t, db, scope, "100")
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("0"), Method: MethodCash})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordPayment(ctx, scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("10"), Method: "cheque"})
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = svc.RecordPayment(ctx, scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("99.995"), Method: MethodCash})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, loadLedger(t, db, id).OutstandingBalance.Equal(dec("100")))

	_, err = svc.RecordPayment(ctx, scope, PaymentInput{Kind: "invoice", DocumentID: id, Amount: dec("10"), Method: MethodCash})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = svc.RecordPayment(ctx, tenant.Scope{}, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("10"), Method: MethodCash})
	assert.ErrorIs(t, err, tenant.ErrNoTenant)
}

func TestRecordPaymentIsTenantScoped(t *testing.T) {
	svc, db := setupTestService(t)
	owner := testScope()
	other := testScope()
	id := seedOrder(t, db, owner, "100")

	_, err := svc.RecordPayment(context.Background(), other, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("10"), Method: MethodCash})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.True(t, loadLedger(t, db, id).OutstandingBalance.Equal(dec("100")))
}

func TestRecordPaymentRevisionCheck(t *testing.T) {
	svc, db := setupTestService(t)
	scope := testScope()
	id := seedOrder(t, db, scope, "100")
	ctx := context.Background()

	stale := int64(1)
	_, err := svc.RecordPayment(ctx, scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("10"), Method: MethodCash, ExpectedRevision: &stale})
	require.NoError(t, err)

	// Second writer still holds revision 1.
	_, err = svc.RecordPayment(ctx, scope, PaymentInput{Kind: KindOrder, DocumentID: id, Amount: dec("10"), Method: MethodCash, ExpectedRevision: &stale})
	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.True(t, loadLedger(t, db, id).OutstandingBalance.Equal(dec("90")))
}

func TestCompareAndSwapDetectsLostUpdate(t *testing.T) {
	_, db := setupTestService(t)
	scope := testScope()
	id := seedOrder(t, db, scope, "100")
	now := time.Now()

	require.NoError(t, CompareAndSwap(db, KindOrder, id, 1, map[string]any{"order_number": "ORD-2"}, now))
	err := CompareAndSwap(db, KindOrder, id, 1, map[string]any{"order_number": "ORD-3"}, now)
	assert.ErrorIs(t, err, ErrRevisionConflict)

	var doc orderDoc
	require.NoError(t, db.First(&doc, "id = ?", id).Error)
	assert.Equal(t, "ORD-2", doc.OrderNumber)
	assert.Equal(t, int64(2), doc.Revision)
}

func TestRecordPaymentOnSalesOrder(t *testing.T) {
	svc, db := setupTestService(t)
	scope := testScope()
	doc := saleDoc{ID: uuid.New(), OrganizationID: scope.OrgID, OrderNumber: "SO-1", Ledger: NewLedger(dec("30"))}
	require.NoError(t, db.Create(&doc).Error)

	rec, err := svc.RecordPayment(context.Background(), scope, PaymentInput{Kind: KindSale, DocumentID: doc.ID, Amount: dec("30"), Method: MethodMobileMoney})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, rec.Ledger.PaymentStatus)
	assert.Equal(t, KindSale, rec.Payment.DocumentKind)
}
