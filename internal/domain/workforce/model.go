package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Worker struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Whatsapp       string    `json:"whatsapp"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Rates []WorkerProjectRate `json:"rates,omitempty" gorm:"foreignKey:WorkerID"`
}

func (w *Worker) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Project is a kind of billable work.
type Project struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	Name           string          `json:"name" gorm:"not null"`
	BasePrice      decimal.Decimal `json:"base_price" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WorkerProjectRate is what a task for (worker, project) is billed at when created.
type WorkerProjectRate struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid;not null;index"`
	WorkerID       uuid.UUID       `json:"worker_id" gorm:"type:uuid;not null;uniqueIndex:idx_worker_project"`
	ProjectID      uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_worker_project"`
	Rate           decimal.Decimal `json:"rate" gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (r *WorkerProjectRate) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
