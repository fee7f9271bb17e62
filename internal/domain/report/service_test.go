package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bizops/internal/domain/task"
	"bizops/internal/domain/workforce"
	"bizops/internal/tenant"
)

/* ==================== MOCKS ==================== */

type MockTasks struct {
	mock.Mock
}

func (m *MockTasks) List(ctx context.Context, scope tenant.Scope, f task.ListFilter) ([]task.Task, error) {
	args := m.Called(ctx, scope, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

type MockWorkforce struct {
	mock.Mock
}

func (m *MockWorkforce) GetWorker(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*workforce.Worker, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workforce.Worker), args.Error(1)
}

func (m *MockWorkforce) CountWorkers(ctx context.Context, scope tenant.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkforce) ListProjects(ctx context.Context, scope tenant.Scope) ([]workforce.Project, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]workforce.Project), args.Error(1)
}

/* ==================== HELPERS ==================== */

// Wednesday; the week runs Mon 9 Mar to Sun 15 Mar 2026.
var fixedNow = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTask(worker, project uuid.UUID, date time.Time, status task.Status, amount string, deductions ...string) task.Task {
	t := task.Task{
		ID:        uuid.New(),
		WorkerID:  worker,
		ProjectID: project,
		Date:      date,
		Status:    status,
		Amount:    amt(amount),
	}
	for _, d := range deductions {
		t.Deductions = append(t.Deductions, task.Deduction{Amount: amt(d), Reason: "test"})
	}
	return t
}

func setup() (*Service, *MockTasks, *MockWorkforce) {
	tasks := new(MockTasks)
	wf := new(MockWorkforce)
	svc := NewService(tasks, wf, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, tasks, wf
}

func newScope() tenant.Scope {
	return tenant.New(uuid.New(), uuid.New(), "GHS", "UTC")
}

/* ==================== TESTS ==================== */

func TestWeeklyFinancialBucketsByDay(t *testing.T) {
	svc, tasks, _ := setup()
	scope := newScope()
	a, b, p := uuid.New(), uuid.New(), uuid.New()

	week := []task.Task{
		newTask(a, p, day(9), task.StatusCompleted, "100", "20"),
		newTask(b, p, day(9), task.StatusPending, "50"),
		newTask(a, p, day(12), task.StatusCompleted, "30", "45"),
	}
	tasks.On("List", mock.Anything, scope, mock.MatchedBy(func(f task.ListFilter) bool {
		return f.From != nil && f.From.Equal(day(9)) && f.To != nil && f.To.Equal(day(15))
	})).Return(week, nil)

	rep, err := svc.WeeklyFinancial(context.Background(), scope, time.Time{})
	require.NoError(t, err)

	require.Len(t, rep.Days, 7)
	assert.Equal(t, day(9), rep.Days[0].Date)
	assert.Equal(t, day(15), rep.Days[6].Date)
	assert.Equal(t, 2, rep.Days[0].Count)
	assert.Equal(t, "150", rep.Days[0].Gross.String())
	assert.Equal(t, "130", rep.Days[0].Net.String())
	assert.Equal(t, "-15", rep.Days[3].Net.String(), "net is never clamped")
	assert.Equal(t, 0, rep.Days[1].Count)

	assert.Equal(t, 3, rep.Totals.Count)
	assert.Equal(t, "180", rep.Totals.Gross.String())
	assert.Equal(t, "65", rep.Totals.Deductions.String())
	assert.Equal(t, "115", rep.Totals.Net.String())

	require.Len(t, rep.Workers, 2)
	assert.Equal(t, a, rep.Workers[0].WorkerID)
	assert.Equal(t, "65", rep.Workers[0].Totals.Net.String())
	tasks.AssertExpectations(t)
}

func TestWeeklyFinancialForGivenDate(t *testing.T) {
	svc, tasks, _ := setup()
	scope := newScope()
	tasks.On("List", mock.Anything, scope, mock.MatchedBy(func(f task.ListFilter) bool {
		return f.From.Equal(day(2)) && f.To.Equal(day(8))
	})).Return([]task.Task{}, nil)

	rep, err := svc.WeeklyFinancial(context.Background(), scope, day(8))
	require.NoError(t, err)
	assert.Equal(t, day(2), rep.Window.Start)
	assert.True(t, rep.Totals.Net.IsZero())
}

func TestWorkerReport(t *testing.T) {
	svc, tasks, wf := setup()
	scope := newScope()
	w := &workforce.Worker{ID: uuid.New(), Name: "Ama Owusu", Whatsapp: "+233 20 123 4567"}
	p := workforce.Project{ID: uuid.New(), Name: "Braiding"}

	// newest first, as task.Service.List returns them
	all := []task.Task{
		newTask(w.ID, p.ID, day(11), task.StatusPending, "40"),
		newTask(w.ID, p.ID, day(10), task.StatusCompleted, "100", "10"),
		newTask(w.ID, p.ID, day(9), task.StatusInProgress, "20"),
		newTask(w.ID, p.ID, day(2), task.StatusCompleted, "500"),
	}
	wf.On("GetWorker", mock.Anything, scope, w.ID).Return(w, nil)
	wf.On("ListProjects", mock.Anything, scope).Return([]workforce.Project{p}, nil)
	tasks.On("List", mock.Anything, scope, mock.Anything).Return(all, nil)

	rep, err := svc.WorkerReport(context.Background(), scope, w.ID, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Stats.AllTimeCount)
	assert.Equal(t, 3, rep.Stats.WeeklyCount)
	assert.Equal(t, 1, rep.Stats.DailyCount)
	assert.Equal(t, 1, rep.Stats.AssignedCount)
	assert.Equal(t, 1, rep.Stats.CompletedCount)
	assert.Equal(t, "90", rep.Stats.CompletedEarnings.String())
	assert.Equal(t, "150", rep.Stats.WeeklyProjectTotal.String())

	require.Len(t, rep.Rows, 3)
	assert.Equal(t, day(9), rep.Rows[0].Date, "rows oldest first")
	assert.Equal(t, "Braiding", rep.Rows[0].Project)
	assert.Equal(t, "10", rep.Rows[1].Deductions.String())
	assert.Equal(t, 3, rep.Week.Count)
}

func TestWorkerReportUnknownWorker(t *testing.T) {
	svc, _, wf := setup()
	scope := newScope()
	wf.On("GetWorker", mock.Anything, scope, mock.Anything).Return(nil, workforce.ErrWorkerNotFound)

	_, err := svc.WorkerReport(context.Background(), scope, uuid.New(), time.Time{})
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestOverview(t *testing.T) {
	svc, tasks, wf := setup()
	scope := newScope()
	w, p := uuid.New(), uuid.New()

	tasks.On("List", mock.Anything, scope, task.ListFilter{}).Return([]task.Task{
		newTask(w, p, day(11), task.StatusPending, "40"),
		newTask(w, p, day(10), task.StatusDelayed, "10", "15"),
		newTask(w, p, day(2), task.StatusCompleted, "100"),
	}, nil)
	wf.On("CountWorkers", mock.Anything, scope).Return(int64(4), nil)

	ov, err := svc.Overview(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 3, ov.TotalTasks)
	assert.Equal(t, 1, ov.StatusCounts[task.StatusPending])
	assert.Equal(t, 1, ov.StatusCounts[task.StatusDelayed])
	assert.Equal(t, 0, ov.StatusCounts[task.StatusInProgress])
	assert.Equal(t, int64(4), ov.TotalWorkers)
	assert.Equal(t, "135", ov.TotalPayouts.String())
	assert.Equal(t, 2, ov.ThisWeek.Count)
	assert.Equal(t, "35", ov.ThisWeek.Net.String())
}
