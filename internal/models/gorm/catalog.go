package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID            string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Description   string    `gorm:"column:description;not null" json:"description"`
	Image         string    `gorm:"column:image" json:"image"`
	ImagePublicID string    `gorm:"column:image_public_id" json:"-"`
	Eligibility   string    `gorm:"column:eligibility" json:"eligibility,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type JobRole struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relationships
	Courses []Course `gorm:"many2many:job_role_courses" json:"courses"`
}

// TableName specifies the table name for GORM
func (JobRole) TableName() string {
	return "job_roles"
}

func (j *JobRole) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	return nil
}
