package task

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizops/internal/pkg/earnings"
)

type Task struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID  uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	WorkerID        uuid.UUID       `json:"worker_id" gorm:"type:uuid;not null;index"`
	ProjectID       uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;index"`
	Date            time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null;default:0"`
	Status          Status          `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	LateReason      *string         `json:"late_reason"`
	DelayReason     *string         `json:"delay_reason"`
	CompletedAt     *time.Time      `json:"completed_at"`
	StatusChangedAt *time.Time      `json:"status_changed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Deductions []Deduction `json:"deductions" gorm:"foreignKey:TaskID"`
}

func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Net is the task amount minus its deductions. It can be negative.
func (t Task) Net() decimal.Decimal {
	return earnings.Net(t.Amount, t.deductionAmounts())
}

func (t Task) DeductionTotal() decimal.Decimal {
	return earnings.Sum(t.deductionAmounts())
}

func (t Task) deductionAmounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(t.Deductions))
	for i, d := range t.Deductions {
		out[i] = d.Amount
	}
	return out
}

// Item adapts the task for the earnings reductions.
func (t Task) Item() earnings.Item {
	return earnings.Item{
		WorkerID:   t.WorkerID,
		Date:       t.Date,
		Status:     string(t.Status),
		Amount:     t.Amount,
		Deductions: t.deductionAmounts(),
	}
}

func Items(tasks []Task) []earnings.Item {
	out := make([]earnings.Item, len(tasks))
	for i, t := range tasks {
		out[i] = t.Item()
	}
	return out
}

type Deduction struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	TaskID         uuid.UUID       `json:"task_id" gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Reason         string          `json:"reason" gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (d *Deduction) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
