package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Admin struct {
	ID                  string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Name                string     `gorm:"column:name;not null" json:"name"`
	Email               string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Phone               string     `gorm:"column:phone;uniqueIndex;not null" json:"phone"`
	PasswordHash        string     `gorm:"column:password_hash;not null" json:"-"`
	ResetPasswordToken  *string    `gorm:"column:reset_password_token;index" json:"-"`
	ResetPasswordExpire *time.Time `gorm:"column:reset_password_expire" json:"-"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
