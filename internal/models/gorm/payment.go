package gorm

import (
	"time"

	"anara-skills/registrar/internal/constants"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRequest is raised by a volunteer and released after a quorum of
// distinct admins approve it. Version guards concurrent status writes.
type PaymentRequest struct {
	ID                 string                  `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	VolunteerID        string                  `gorm:"column:volunteer_id;type:uuid;index;not null" json:"volunteer_id"`
	VolunteerRegNumber string                  `gorm:"column:volunteer_reg_number;not null" json:"volunteer_reg_number"`
	UserCount          int                     `gorm:"column:user_count;not null" json:"user_count"`
	Amount             *int                    `gorm:"column:amount" json:"amount,omitempty"`
	Status             constants.PaymentStatus `gorm:"column:status;default:pending;index" json:"status"`
	RejectionReason    *string                 `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	GatewayPaymentID   *string                 `gorm:"column:gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewayOrderID     *string                 `gorm:"column:gateway_order_id" json:"gateway_order_id,omitempty"`
	PaymentDate        *time.Time              `gorm:"column:payment_date" json:"payment_date,omitempty"`
	RequestDate        time.Time               `gorm:"column:request_date;autoCreateTime" json:"request_date"`
	Version            int                     `gorm:"column:version;not null;default:1" json:"version"`

	// Relationships
	Approvals []PaymentApproval `gorm:"foreignKey:PaymentRequestID" json:"approvals"`
}

// TableName specifies the table name for GORM
func (PaymentRequest) TableName() string {
	return "payment_requests"
}

func (p *PaymentRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = constants.PaymentStatusPending
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// PaymentApproval is one admin's vote. The composite unique index keeps an
// admin from appearing twice on the same request.
type PaymentApproval struct {
	ID               string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	PaymentRequestID string    `gorm:"column:payment_request_id;type:uuid;not null;uniqueIndex:idx_payment_approval_admin" json:"payment_request_id"`
	AdminID          string    `gorm:"column:admin_id;type:uuid;not null;uniqueIndex:idx_payment_approval_admin" json:"admin_id"`
	ApprovedAt       time.Time `gorm:"column:approved_at;not null" json:"approved_at"`
}

// TableName specifies the table name for GORM
func (PaymentApproval) TableName() string {
	return "payment_approvals"
}

func (a *PaymentApproval) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
