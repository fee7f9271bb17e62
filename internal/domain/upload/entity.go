package upload

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload is a file stored on local disk. Client custom fields of type file or image hold its URL.
type Upload struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"column:organization_id;type:uuid;not null;index" json:"organization_id"`
	ClientID       *uuid.UUID `gorm:"column:client_id;type:uuid;index" json:"client_id,omitempty"`
	UploadedBy     uuid.UUID  `gorm:"column:uploaded_by;type:uuid" json:"uploaded_by"`
	OriginalName   string     `gorm:"column:original_name" json:"name"`
	FilePath       string     `gorm:"column:file_path" json:"-"`
	FileURL        string     `gorm:"column:file_url" json:"url"`
	MimeType       string     `gorm:"column:mime_type" json:"mime_type"`
	Size           int64      `gorm:"column:size" json:"size"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }

func (u *Upload) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
