package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bizops/internal/domain/task"
	"bizops/internal/domain/workforce"
	"bizops/internal/pkg/earnings"
	"bizops/internal/tenant"
)

var ErrWorkerNotFound = errors.New("worker not found")

type Tasks interface {
	List(ctx context.Context, scope tenant.Scope, f task.ListFilter) ([]task.Task, error)
}

type Workforce interface {
	GetWorker(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*workforce.Worker, error)
	CountWorkers(ctx context.Context, scope tenant.Scope) (int64, error)
	ListProjects(ctx context.Context, scope tenant.Scope) ([]workforce.Project, error)
}

// FinancialReport is one Monday-Sunday week of task money, day by day.
type FinancialReport struct {
	Currency string               `json:"currency"`
	Window   earnings.Window      `json:"window"`
	Days     []earnings.DayBucket `json:"days"`
	Totals   earnings.Totals      `json:"totals"`
	Workers  []WorkerWeek         `json:"workers"`
}

type WorkerWeek struct {
	WorkerID uuid.UUID       `json:"worker_id"`
	Totals   earnings.Totals `json:"totals"`
}

type TaskRow struct {
	TaskID      uuid.UUID       `json:"task_id"`
	Date        time.Time       `json:"date"`
	Project     string          `json:"project"`
	Description string          `json:"description"`
	Status      task.Status     `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Deductions  decimal.Decimal `json:"deductions"`
	Net         decimal.Decimal `json:"net"`
}

type WorkerReport struct {
	Currency string               `json:"currency"`
	Worker   workforce.Worker     `json:"worker"`
	Window   earnings.Window      `json:"window"`
	Stats    earnings.WorkerStats `json:"stats"`
	Week     earnings.Totals      `json:"week"`
	Rows     []TaskRow            `json:"rows"`
}

type Overview struct {
	Currency     string              `json:"currency"`
	TotalTasks   int                 `json:"total_tasks"`
	StatusCounts map[task.Status]int `json:"status_counts"`
	TotalWorkers int64               `json:"total_workers"`
	TotalPayouts decimal.Decimal     `json:"total_payouts"`
	ThisWeek     earnings.Totals     `json:"this_week"`
}

type Service struct {
	tasks     Tasks
	workforce Workforce
	log       *zap.Logger
	now       func() time.Time
}

func NewService(tasks Tasks, wf Workforce, log *zap.Logger) *Service {
	return &Service{tasks: tasks, workforce: wf, log: log, now: time.Now}
}

// WeeklyFinancial reports the week containing day. A zero day means the organization's today.
func (s *Service) WeeklyFinancial(ctx context.Context, scope tenant.Scope, day time.Time) (*FinancialReport, error) {
	week := earnings.WeekOf(s.reference(scope, day))
	tasks, err := s.tasks.List(ctx, scope, task.ListFilter{From: &week.Start, To: &week.End})
	if err != nil {
		return nil, err
	}
	items := task.Items(tasks)

	byWorker := make(map[uuid.UUID][]earnings.Item)
	var order []uuid.UUID
	for _, it := range items {
		if _, ok := byWorker[it.WorkerID]; !ok {
			order = append(order, it.WorkerID)
		}
		byWorker[it.WorkerID] = append(byWorker[it.WorkerID], it)
	}
	workers := make([]WorkerWeek, 0, len(order))
	for _, id := range order {
		workers = append(workers, WorkerWeek{WorkerID: id, Totals: earnings.Total(byWorker[id])})
	}

	return &FinancialReport{
		Currency: scope.Currency,
		Window:   week,
		Days:     earnings.GroupByDay(items, week),
		Totals:   earnings.Total(items),
		Workers:  workers,
	}, nil
}

// WorkerReport summarizes one worker for the week containing day, with a row per task of that week.
func (s *Service) WorkerReport(ctx context.Context, scope tenant.Scope, workerID uuid.UUID, day time.Time) (*WorkerReport, error) {
	w, err := s.workforce.GetWorker(ctx, scope, workerID)
	if err != nil {
		if errors.Is(err, workforce.ErrWorkerNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, scope, task.ListFilter{WorkerID: &workerID})
	if err != nil {
		return nil, err
	}
	projects, err := s.workforce.ListProjects(ctx, scope)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	ref := s.reference(scope, day)
	week := earnings.WeekOf(ref)
	// noon keeps the reference on the same calendar date in any zone
	stats := earnings.Summarize(task.Items(tasks), ref.Add(12*time.Hour), time.UTC)

	var weekItems []earnings.Item
	rows := make([]TaskRow, 0)
	for i := len(tasks) - 1; i >= 0; i-- {
		t := tasks[i]
		if !week.Contains(t.Date) {
			continue
		}
		weekItems = append(weekItems, t.Item())
		rows = append(rows, TaskRow{
			TaskID:      t.ID,
			Date:        t.Date,
			Project:     names[t.ProjectID],
			Description: t.Description,
			Status:      t.Status,
			Amount:      t.Amount,
			Deductions:  t.DeductionTotal(),
			Net:         t.Net(),
		})
	}

	return &WorkerReport{
		Currency: scope.Currency,
		Worker:   *w,
		Window:   week,
		Stats:    stats,
		Week:     earnings.Total(weekItems),
		Rows:     rows,
	}, nil
}

func (s *Service) Overview(ctx context.Context, scope tenant.Scope) (*Overview, error) {
	tasks, err := s.tasks.List(ctx, scope, task.ListFilter{})
	if err != nil {
		return nil, err
	}
	workers, err := s.workforce.CountWorkers(ctx, scope)
	if err != nil {
		return nil, err
	}

	counts := map[task.Status]int{
		task.StatusPending:    0,
		task.StatusInProgress: 0,
		task.StatusDelayed:    0,
		task.StatusCompleted:  0,
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	items := task.Items(tasks)
	week := earnings.WeekOf(scope.Today(s.now()))
	var weekItems []earnings.Item
	for _, it := range items {
		if week.Contains(it.Date) {
			weekItems = append(weekItems, it)
		}
	}

	return &Overview{
		Currency:     scope.Currency,
		TotalTasks:   len(tasks),
		StatusCounts: counts,
		TotalWorkers: workers,
		TotalPayouts: earnings.Total(items).Net,
		ThisWeek:     earnings.Total(weekItems),
	}, nil
}

func (s *Service) reference(scope tenant.Scope, day time.Time) time.Time {
	if day.IsZero() {
		return scope.Today(s.now())
	}
	return tenant.Civil(day)
}
