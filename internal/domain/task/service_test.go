package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"bizops/internal/tenant"
)

/* ==================== MOCKS ==================== */

type MockWorkforce struct {
	mock.Mock
}

func (m *MockWorkforce) WorkerExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkforce) ProjectExists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkforce) RateFor(ctx context.Context, scope tenant.Scope, workerID, projectID uuid.UUID) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, scope, workerID, projectID)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

/* ==================== HELPERS ==================== */

var fixedNow = time.Date(2026, 3, 11, 15, 30, 0, 0, time.UTC) // a Wednesday

func setupTestService(t *testing.T) (*Service, *MockWorkforce) {
	t.Helper()
	dsn := fmt.Sprintf("file:task_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Task{}, &Deduction{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	wf := new(MockWorkforce)
	svc := NewService(db, wf, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, wf
}

func newScope() tenant.Scope {
	return tenant.New(uuid.New(), uuid.New(), "GHS", "UTC")
}

func expectKnown(wf *MockWorkforce, rate decimal.Decimal, found bool) {
	wf.On("WorkerExists", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	wf.On("ProjectExists", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	wf.On("RateFor", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(rate, found, nil)
}

func newTask(t *testing.T, svc *Service, scope tenant.Scope) *Task {
	t.Helper()
	created, err := svc.Create(context.Background(), scope, CreateInput{
		WorkerID:  uuid.New(),
		ProjectID: uuid.New(),
		Date:      fixedNow,
	})
	require.NoError(t, err)
	return created
}

/* ==================== TESTS ==================== */

func TestCreateUsesWorkerRate(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.RequireFromString("120.50"), true)
	scope := newScope()

	created := newTask(t, svc, scope)
	assert.Equal(t, StatusPending, created.Status)
	assert.True(t, decimal.RequireFromString("120.50").Equal(created.Amount))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), created.Date)
	assert.Nil(t, created.LateReason)
	assert.NotNil(t, created.StatusChangedAt)
	wf.AssertExpectations(t)
}

func TestCreateWithoutRateBillsZero(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.Zero, false)

	created := newTask(t, svc, newScope())
	assert.True(t, created.Amount.IsZero())
}

func TestCreatePastDateNeedsLateReason(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(50), true)
	ctx := context.Background()
	scope := newScope()

	in := CreateInput{WorkerID: uuid.New(), ProjectID: uuid.New(), Date: fixedNow.AddDate(0, 0, -1)}
	_, err := svc.Create(ctx, scope, in)
	assert.ErrorIs(t, err, ErrLateReasonRequired)

	in.LateReason = "   "
	_, err = svc.Create(ctx, scope, in)
	assert.ErrorIs(t, err, ErrLateReasonRequired)

	in.LateReason = "  forgot to log it \n"
	created, err := svc.Create(ctx, scope, in)
	require.NoError(t, err)
	require.NotNil(t, created.LateReason)
	assert.Equal(t, "  forgot to log it \n", *created.LateReason)

	stored, err := svc.Get(ctx, scope, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LateReason)
	assert.Equal(t, "  forgot to log it \n", *stored.LateReason)

	// future dates are fine without a reason
	in.LateReason = ""
	in.Date = fixedNow.AddDate(0, 0, 2)
	_, err = svc.Create(ctx, scope, in)
	assert.NoError(t, err)
}

func TestCreateLateCheckUsesTenantTimezone(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(10), true)
	// 02:00 UTC on the 12th is still the 11th in New York.
	svc.now = func() time.Time { return time.Date(2026, 3, 12, 2, 0, 0, 0, time.UTC) }
	scope := tenant.New(uuid.New(), uuid.New(), "USD", "America/New_York")

	_, err := svc.Create(context.Background(), scope, CreateInput{
		WorkerID:  uuid.New(),
		ProjectID: uuid.New(),
		Date:      time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
}

func TestCreateUnknownWorker(t *testing.T) {
	svc, wf := setupTestService(t)
	wf.On("WorkerExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	_, err := svc.Create(context.Background(), newScope(), CreateInput{
		WorkerID:  uuid.New(),
		ProjectID: uuid.New(),
		Date:      fixedNow,
	})
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	wf.AssertNotCalled(t, "RateFor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRequiresIDsAndDate(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, newScope(), CreateInput{Date: fixedNow})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, newScope(), CreateInput{WorkerID: uuid.New(), ProjectID: uuid.New()})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangeStatusToCompletedStampsTime(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(80), true)
	ctx := context.Background()
	scope := newScope()
	created := newTask(t, svc, scope)

	later := fixedNow.Add(2 * time.Hour)
	svc.now = func() time.Time { return later }

	updated, err := svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, later.Equal(*updated.CompletedAt))
	require.NotNil(t, updated.StatusChangedAt)
	assert.True(t, later.Equal(*updated.StatusChangedAt))

	// completed is terminal
	_, err = svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusPending})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeStatusDelayedNeedsReason(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(80), true)
	ctx := context.Background()
	scope := newScope()
	created := newTask(t, svc, scope)

	_, err := svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusDelayed})
	assert.ErrorIs(t, err, ErrDelayReasonRequired)
	_, err = svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusDelayed, DelayReason: " \t"})
	assert.ErrorIs(t, err, ErrDelayReasonRequired)

	updated, err := svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusDelayed, DelayReason: " client away "})
	require.NoError(t, err)
	assert.Equal(t, StatusDelayed, updated.Status)
	require.NotNil(t, updated.DelayReason)
	assert.Equal(t, " client away ", *updated.DelayReason)
	assert.Nil(t, updated.CompletedAt)

	_, err = svc.ChangeStatus(ctx, scope, created.ID, StatusInput{Status: StatusDelayed, DelayReason: "again"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(80), true)
	scope := newScope()
	created := newTask(t, svc, scope)

	_, err := svc.ChangeStatus(context.Background(), scope, created.ID, StatusInput{Status: "archived"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestDeductionsAffectNetOnly(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(100), true)
	ctx := context.Background()
	scope := newScope()
	created := newTask(t, svc, scope)

	_, err := svc.AddDeduction(ctx, scope, created.ID, DeductionInput{Amount: decimal.Zero, Reason: "x"})
	assert.ErrorIs(t, err, ErrInvalidDeduction)
	_, err = svc.AddDeduction(ctx, scope, created.ID, DeductionInput{Amount: decimal.RequireFromString("0.005"), Reason: "x"})
	assert.ErrorIs(t, err, ErrInvalidDeduction)
	_, err = svc.AddDeduction(ctx, scope, created.ID, DeductionInput{Amount: decimal.NewFromInt(5), Reason: " "})
	assert.ErrorIs(t, err, ErrValidation)

	d1, err := svc.AddDeduction(ctx, scope, created.ID, DeductionInput{Amount: decimal.NewFromInt(30), Reason: "late"})
	require.NoError(t, err)
	_, err = svc.AddDeduction(ctx, scope, created.ID, DeductionInput{Amount: decimal.NewFromInt(90), Reason: "damaged"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, scope, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Deductions, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Amount))
	assert.True(t, decimal.NewFromInt(-20).Equal(got.Net()), "net is not clamped")

	require.NoError(t, svc.RemoveDeduction(ctx, scope, created.ID, d1.ID))
	assert.ErrorIs(t, svc.RemoveDeduction(ctx, scope, created.ID, d1.ID), ErrDeductionNotFound)

	got, err = svc.Get(ctx, scope, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Net()))
}

func TestListFilters(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(20), true)
	ctx := context.Background()
	scope := newScope()
	worker := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, scope, CreateInput{
			WorkerID:  worker,
			ProjectID: uuid.New(),
			Date:      fixedNow.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	other := newTask(t, svc, scope)
	_, err := svc.ChangeStatus(ctx, scope, other.ID, StatusInput{Status: StatusCompleted})
	require.NoError(t, err)

	all, err := svc.List(ctx, scope, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := svc.List(ctx, scope, ListFilter{WorkerID: &worker})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
	assert.True(t, mine[0].Date.After(mine[2].Date), "newest first")

	done := StatusCompleted
	completed, err := svc.List(ctx, scope, ListFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, other.ID, completed[0].ID)

	from := fixedNow.AddDate(0, 0, 1)
	to := fixedNow.AddDate(0, 0, 1)
	day, err := svc.List(ctx, scope, ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, day, 1)
}

func TestTenantIsolation(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(20), true)
	ctx := context.Background()
	a, b := newScope(), newScope()
	created := newTask(t, svc, a)

	_, err := svc.Get(ctx, b, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.ChangeStatus(ctx, b, created.ID, StatusInput{Status: StatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddDeduction(ctx, b, created.ID, DeductionInput{Amount: decimal.NewFromInt(1), Reason: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, b, created.ID), ErrNotFound)

	listed, err := svc.List(ctx, b, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.Get(ctx, a, created.ID)
	assert.NoError(t, err)
}

func TestDeleteForWorker(t *testing.T) {
	svc, wf := setupTestService(t)
	expectKnown(wf, decimal.NewFromInt(20), true)
	ctx := context.Background()
	scope := newScope()
	worker := uuid.New()

	kept := newTask(t, svc, scope)
	gone, err := svc.Create(ctx, scope, CreateInput{WorkerID: worker, ProjectID: uuid.New(), Date: fixedNow})
	require.NoError(t, err)
	_, err = svc.AddDeduction(ctx, scope, gone.ID, DeductionInput{Amount: decimal.NewFromInt(1), Reason: "x"})
	require.NoError(t, err)

	err = svc.db.Transaction(func(tx *gorm.DB) error {
		return svc.DeleteForWorker(tx, scope, worker)
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, scope, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, scope, kept.ID)
	assert.NoError(t, err)

	var n int64
	require.NoError(t, svc.db.Model(&Deduction{}).Where("task_id = ?", gone.ID).Count(&n).Error)
	assert.Zero(t, n)
}
