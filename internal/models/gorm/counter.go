package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationCounter is the per-category sequence behind registration numbers.
type RegistrationCounter struct {
	Category  string    `gorm:"column:category;primaryKey"`
	Value     int64     `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RegistrationCounter) TableName() string {
	return "registration_counters"
}

// TemporaryRegistration binds a verified email to a T/ prefixed number before
// the volunteer completes registration.
type TemporaryRegistration struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	RegNumber string    `gorm:"column:reg_number;uniqueIndex;not null" json:"reg_number"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (TemporaryRegistration) TableName() string {
	return "temporary_registrations"
}

func (t *TemporaryRegistration) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
