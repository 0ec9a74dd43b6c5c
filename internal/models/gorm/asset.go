package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetKind string

const (
	AssetSignature  AssetKind = "signature"
	AssetLetterhead AssetKind = "letterhead"
	AssetDocument   AssetKind = "document"
)

func (k AssetKind) Valid() bool {
	switch k {
	case AssetSignature, AssetLetterhead, AssetDocument:
		return true
	}
	return false
}

// Asset is an admin managed file: signature images, letterhead files and
// generic documents.
type Asset struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Kind      AssetKind `gorm:"column:kind;index;not null" json:"kind"`
	Name      string    `gorm:"column:name" json:"name"`
	OwnerID   string    `gorm:"column:owner_id" json:"owner_id,omitempty"`
	Subject   string    `gorm:"column:subject" json:"subject,omitempty"`
	URL       string    `gorm:"column:url;not null" json:"url"`
	PublicID  string    `gorm:"column:public_id;uniqueIndex;not null" json:"public_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// SentMessage logs a letterhead mailed to one recipient.
type SentMessage struct {
	ID      string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Email   string    `gorm:"column:email;index;not null" json:"email"`
	Subject string    `gorm:"column:subject;not null" json:"subject"`
	Message string    `gorm:"column:message" json:"message"`
	FileURL string    `gorm:"column:file_url" json:"file_url"`
	Error   *string   `gorm:"column:error" json:"error,omitempty"`
	SentAt  time.Time `gorm:"column:sent_at;autoCreateTime" json:"sent_at"`
}

func (SentMessage) TableName() string {
	return "sent_messages"
}

func (m *SentMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
