package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"

	"gorm.io/gorm"
)

// errVersionConflict signals that another writer bumped the request version
// between our read and our conditional update.
var errVersionConflict = errors.New("payment request version changed")

// PaymentService runs the payment request approval workflow:
// pending -> approved (quorum of distinct admins) -> paid, or pending -> rejected.
type PaymentService struct {
	db      *gorm.DB
	metrics *metrics.MetricsRegistry
	Now     func() time.Time
}

func NewPaymentService(db *gorm.DB, m *metrics.MetricsRegistry) *PaymentService {
	return &PaymentService{db: db, metrics: m, Now: time.Now}
}

// AmountForUserCount applies the fixed amount tiers. Counts that match no
// tier keep the supplied amount, which may be nil.
func AmountForUserCount(userCount int, supplied *int) *int {
	tier := func(v int) *int { return &v }
	switch {
	case userCount == 50:
		return tier(50)
	case userCount == 200:
		return tier(75)
	case userCount > 200:
		return tier(100)
	default:
		return supplied
	}
}

func (s *PaymentService) CreateRequest(ctx context.Context, volunteerID string, userCount int, amount *int) (*gormModels.PaymentRequest, error) {
	if userCount <= 0 {
		return nil, validationError("User count must be greater than zero.")
	}

	var volunteer gormModels.Volunteer
	err := s.db.WithContext(ctx).Where("id = ?", volunteerID).First(&volunteer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, "Volunteer not found")
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load volunteer", err)
	}
	if volunteer.IsBlocked {
		return nil, newError(KindForbidden, CodeAccountBlocked, constants.MsgAccountBlocked)
	}

	req := &gormModels.PaymentRequest{
		VolunteerID:        volunteer.ID,
		VolunteerRegNumber: volunteer.RegNumber,
		UserCount:          userCount,
		Amount:             AmountForUserCount(userCount, amount),
		Status:             constants.PaymentStatusPending,
		RequestDate:        s.Now(),
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to create payment request", err)
	}

	s.metrics.PaymentTransition("create", string(req.Status))
	logging.Info("Payment request created",
		"request_id", req.ID,
		"volunteer_reg_number", req.VolunteerRegNumber,
		"user_count", userCount,
	)
	return req, nil
}

func (s *PaymentService) ListForVolunteer(ctx context.Context, volunteerID string) ([]gormModels.PaymentRequest, error) {
	var out []gormModels.PaymentRequest
	err := s.db.WithContext(ctx).
		Preload("Approvals").
		Where("volunteer_id = ?", volunteerID).
		Order("request_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list payment requests", err)
	}
	return out, nil
}

// ListAll returns every request, optionally filtered by status.
func (s *PaymentService) ListAll(ctx context.Context, status string) ([]gormModels.PaymentRequest, error) {
	q := s.db.WithContext(ctx).Preload("Approvals").Order("request_date DESC")
	if status != "" {
		st := constants.PaymentStatus(strings.ToLower(status))
		if !st.Valid() {
			return nil, validationError(fmt.Sprintf("Unknown payment status %q.", status))
		}
		q = q.Where("status = ?", st)
	}

	var out []gormModels.PaymentRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list payment requests", err)
	}
	return out, nil
}

func (s *PaymentService) Get(ctx context.Context, requestID string) (*gormModels.PaymentRequest, error) {
	return s.load(s.db.WithContext(ctx), requestID)
}

func (s *PaymentService) load(tx *gorm.DB, requestID string) (*gormModels.PaymentRequest, error) {
	var req gormModels.PaymentRequest
	err := tx.Preload("Approvals").Where("id = ?", requestID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, constants.MsgPaymentNotFound)
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load payment request", err)
	}
	return &req, nil
}

// writeVersioned moves req to the values in updates only if nobody else has
// written it since it was read.
func writeVersioned(tx *gorm.DB, req *gormModels.PaymentRequest, updates map[string]interface{}) error {
	updates["version"] = req.Version + 1
	res := tx.Model(&gormModels.PaymentRequest{}).
		Where("id = ? AND version = ?", req.ID, req.Version).
		Updates(updates)
	if res.Error != nil {
		return dependencyError(CodeStorageFailed, "failed to update payment request", res.Error)
	}
	if res.RowsAffected == 0 {
		return errVersionConflict
	}
	req.Version++
	return nil
}

// withVersionRetry reruns fn in a fresh transaction while it loses the
// optimistic concurrency race.
func (s *PaymentService) withVersionRetry(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	for attempt := 1; attempt <= constants.PaymentMaxWriteRetry; attempt++ {
		err := s.db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, errVersionConflict) {
			return err
		}
		s.metrics.WriteConflict("payment_" + op)
		logging.Warn("Payment request write conflict, retrying", "operation", op, "attempt", attempt)
	}
	return newError(KindConflict, CodeConcurrentUpdate, "Payment request is being updated concurrently, please retry.")
}

// Approve records adminID's approval and moves a pending request to approved
// once the quorum is reached.
func (s *PaymentService) Approve(ctx context.Context, requestID, adminID string) (*dtos.ApprovalResult, error) {
	var result *dtos.ApprovalResult

	err := s.withVersionRetry(ctx, "approve", func(tx *gorm.DB) error {
		req, err := s.load(tx, requestID)
		if err != nil {
			return err
		}

		for _, a := range req.Approvals {
			if a.AdminID == adminID {
				return newError(KindConflict, CodeAlreadyApproved, constants.MsgAlreadyApproved)
			}
		}

		approval := gormModels.PaymentApproval{
			PaymentRequestID: req.ID,
			AdminID:          adminID,
			ApprovedAt:       s.Now(),
		}
		if err := tx.Create(&approval).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindConflict, CodeAlreadyApproved, constants.MsgAlreadyApproved)
			}
			return dependencyError(CodeStorageFailed, "failed to record approval", err)
		}

		var count int64
		if err := tx.Model(&gormModels.PaymentApproval{}).Where("payment_request_id = ?", req.ID).Count(&count).Error; err != nil {
			return dependencyError(CodeStorageFailed, "failed to count approvals", err)
		}

		status := req.Status
		if count >= constants.PaymentApprovalQuorum && req.Status == constants.PaymentStatusPending {
			status = constants.PaymentStatusApproved
		}
		if err := writeVersioned(tx, req, map[string]interface{}{"status": status}); err != nil {
			return err
		}

		result = &dtos.ApprovalResult{
			RequestID:     req.ID,
			Status:        string(status),
			ApprovalCount: int(count),
			Message:       approvalMessage(req.Status, status, int(count)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentTransition("approve", result.Status)
	logging.Info("Payment request approval recorded",
		"request_id", requestID,
		"admin_id", adminID,
		"approvals", result.ApprovalCount,
		"status", result.Status,
	)
	return result, nil
}

func approvalMessage(before, after constants.PaymentStatus, count int) string {
	if before == constants.PaymentStatusPending && after == constants.PaymentStatusApproved {
		return constants.MsgPaymentApproved
	}
	if after == constants.PaymentStatusPending {
		return fmt.Sprintf("Payment request approval recorded (%d/%d approvals)", count, constants.PaymentApprovalQuorum)
	}
	return fmt.Sprintf("Approval recorded (%d approvals), request is %s", count, after)
}

// Reject is only allowed from pending and is terminal.
func (s *PaymentService) Reject(ctx context.Context, requestID string, reason *string) (*gormModels.PaymentRequest, error) {
	var out *gormModels.PaymentRequest

	err := s.withVersionRetry(ctx, "reject", func(tx *gorm.DB) error {
		req, err := s.load(tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != constants.PaymentStatusPending {
			return invalidState(req.Status, "rejected")
		}

		updates := map[string]interface{}{"status": constants.PaymentStatusRejected}
		if reason != nil && strings.TrimSpace(*reason) != "" {
			r := strings.TrimSpace(*reason)
			updates["rejection_reason"] = r
			req.RejectionReason = &r
		}
		if err := writeVersioned(tx, req, updates); err != nil {
			return err
		}
		req.Status = constants.PaymentStatusRejected
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentTransition("reject", string(out.Status))
	logging.Info("Payment request rejected", "request_id", requestID)
	return out, nil
}

// MarkPaid is only allowed from approved and is terminal.
func (s *PaymentService) MarkPaid(ctx context.Context, requestID, gatewayPaymentID, gatewayOrderID string) (*gormModels.PaymentRequest, error) {
	gatewayPaymentID = strings.TrimSpace(gatewayPaymentID)
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	if gatewayPaymentID == "" || gatewayOrderID == "" {
		return nil, validationError("Payment id and order id are required.")
	}

	var out *gormModels.PaymentRequest

	err := s.withVersionRetry(ctx, "mark_paid", func(tx *gorm.DB) error {
		req, err := s.load(tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != constants.PaymentStatusApproved {
			return newError(KindConflict, CodeInvalidState, constants.MsgOnlyApprovedPaid).
				withMeta("status", string(req.Status))
		}

		paidAt := s.Now()
		err = writeVersioned(tx, req, map[string]interface{}{
			"status":             constants.PaymentStatusPaid,
			"gateway_payment_id": gatewayPaymentID,
			"gateway_order_id":   gatewayOrderID,
			"payment_date":       paidAt,
		})
		if err != nil {
			return err
		}
		req.Status = constants.PaymentStatusPaid
		req.GatewayPaymentID = &gatewayPaymentID
		req.GatewayOrderID = &gatewayOrderID
		req.PaymentDate = &paidAt
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentTransition("mark_paid", string(out.Status))
	logging.Info("Payment request marked as paid", "request_id", requestID, "gateway_order_id", gatewayOrderID)
	return out, nil
}

func invalidState(current constants.PaymentStatus, target string) *ServiceError {
	return newError(KindConflict, CodeInvalidState,
		fmt.Sprintf("Payment request is %s and cannot be %s", current, target)).
		withMeta("status", string(current))
}
